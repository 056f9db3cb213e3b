package clip

// Seconds is a duration in seconds that always encodes to JSON with a
// fractional part, so 10 is written as 10.0
type Seconds float64

// MarshalJSON implements json.Marshaler
func (s Seconds) MarshalJSON() ([]byte, error) {
	return []byte(FormatSeconds(float64(s))), nil
}

// Result describes a successfully exported clip
type Result struct {
	OutputPath string  // absolute path of the exported file on disk
	PublicPath string  // path relative to the public root, e.g. /temp_audio/x.mp3
	Title      string  // source title as reported by the fetcher
	Duration   float64 // requested window length in seconds
}

// SuccessPayload is the JSON object reported when a job succeeds.
// Field order is part of the output contract.
type SuccessPayload struct {
	Success    bool    `json:"success"`
	Message    string  `json:"message"`
	OutputFile string  `json:"output_file"`
	Title      string  `json:"title"`
	Duration   Seconds `json:"duration"`
}

// FailurePayload is the JSON object reported when a job fails at any stage
type FailurePayload struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// NewSuccessPayload builds the success payload for a result
func NewSuccessPayload(r *Result) SuccessPayload {
	return SuccessPayload{
		Success:    true,
		Message:    SuccessMessage,
		OutputFile: r.PublicPath,
		Title:      r.Title,
		Duration:   Seconds(r.Duration),
	}
}

// NewFailurePayload builds the failure payload for err
func NewFailurePayload(err error) FailurePayload {
	return FailurePayload{
		Success: false,
		Message: err.Error(),
	}
}
