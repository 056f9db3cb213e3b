package clip

import (
	"encoding/json"
	"fmt"
	"io"

	"yt-audio-clipper/domain/clip"
)

// Report writes one JSON line for the job outcome: the success payload
// if err is nil, otherwise the failure payload.
func Report(output io.Writer, result *clip.Result, err error) error {
	var payload any
	if err != nil {
		payload = clip.NewFailurePayload(err)
	} else {
		payload = clip.NewSuccessPayload(result)
	}

	return WriteJSON(output, payload)
}

// WriteJSON encodes v as a single line and flushes output if it supports it
func WriteJSON(output io.Writer, v any) error {
	enc := json.NewEncoder(output)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to write result: %w", err)
	}

	if f, ok := output.(interface{ Sync() error }); ok {
		// stdout may not support fsync; that is not a reporting failure
		_ = f.Sync()
	}
	return nil
}
