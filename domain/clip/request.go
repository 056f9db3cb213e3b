package clip

import (
	"math"
	"strconv"
	"strings"
)

// Request represents a single clip job: a source URL and a trim window in seconds
type Request struct {
	URL   string
	Start float64
	End   float64
}

// ValidateOptions controls the optional checks applied by Request.Validate
type ValidateOptions struct {
	// RequireOrderedWindow rejects requests where End <= Start.
	// Off by default: such requests pass validation and export an empty clip.
	RequireOrderedWindow bool
}

// ParseRequest builds a Request from the three positional CLI arguments:
// source URL, start time and end time (seconds, real-valued)
func ParseRequest(args []string) (*Request, error) {
	if len(args) != 3 {
		return nil, ErrUsage
	}

	start, err := parseSeconds(args[1])
	if err != nil {
		return nil, NewUsageError("invalid start_time %q: %v", args[1], err)
	}

	end, err := parseSeconds(args[2])
	if err != nil {
		return nil, NewUsageError("invalid end_time %q: %v", args[2], err)
	}

	return &Request{
		URL:   args[0],
		Start: start,
		End:   end,
	}, nil
}

func parseSeconds(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, strconv.ErrRange
	}
	return v, nil
}

// Validate checks the trim window against the source duration.
// It must run after probing and before download.
func (r *Request) Validate(meta Metadata, opts ValidateOptions) error {
	if r.Start < 0 {
		return NewValidationError("start time %s must not be negative", FormatSeconds(r.Start))
	}

	if r.Start >= meta.Duration || r.End > meta.Duration {
		return NewValidationError("Time range exceeds video duration of %s seconds",
			strconv.FormatFloat(meta.Duration, 'f', -1, 64))
	}

	if opts.RequireOrderedWindow && r.End <= r.Start {
		return NewValidationError("end time %s must be after start time %s",
			FormatSeconds(r.End), FormatSeconds(r.Start))
	}

	return nil
}

// Window returns the requested trim window in milliseconds
func (r *Request) Window() Window {
	return Window{
		StartMS: toMillis(r.Start),
		EndMS:   toMillis(r.End),
	}
}

// toMillis truncates toward zero after the float multiplication
func toMillis(seconds float64) int64 {
	return int64(seconds * 1000)
}

// FormatSeconds renders a seconds value the way it appears in output filenames:
// shortest round-trip decimal, always with a fractional part (10 -> "10.0").
// Exponents below -4 or from 16 up switch to scientific form (1e-05, 1e+16).
func FormatSeconds(v float64) string {
	sci := strconv.FormatFloat(v, 'e', -1, 64)
	if exp, err := strconv.Atoi(sci[strings.LastIndexByte(sci, 'e')+1:]); err == nil && (exp < -4 || exp >= 16) {
		return sci
	}

	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// Window is a half-open [StartMS, EndMS) slice of audio in milliseconds
type Window struct {
	StartMS int64
	EndMS   int64
}

// Clamp limits both bounds to [0, lengthMS]
func (w Window) Clamp(lengthMS int64) Window {
	return Window{
		StartMS: clamp(w.StartMS, 0, lengthMS),
		EndMS:   clamp(w.EndMS, 0, lengthMS),
	}
}

// Empty returns true if the window selects no audio
func (w Window) Empty() bool {
	return w.EndMS <= w.StartMS
}

// Seconds returns the window length in seconds
func (w Window) Seconds() float64 {
	return float64(w.EndMS-w.StartMS) / 1000
}

func clamp(v, lo, hi int64) int64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
