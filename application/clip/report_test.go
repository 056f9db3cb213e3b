package clip

import (
	"bytes"
	"errors"
	"testing"

	"yt-audio-clipper/domain/clip"
)

func TestReport_FieldOrder(t *testing.T) {
	var buf bytes.Buffer
	result := &clip.Result{
		PublicPath: "/temp_audio/A & B_1.0_2.0.mp3",
		Title:      "A & B",
		Duration:   1,
	}

	if err := Report(&buf, result, nil); err != nil {
		t.Fatalf("Report() unexpected error: %v", err)
	}

	want := `{"success":true,"message":"Audio extracted successfully","output_file":"/temp_audio/A & B_1.0_2.0.mp3","title":"A & B","duration":1.0}` + "\n"
	if buf.String() != want {
		t.Errorf("Report() = %q, want %q", buf.String(), want)
	}
}

func TestReport_FailureHasOnlyMessage(t *testing.T) {
	var buf bytes.Buffer

	if err := Report(&buf, nil, errors.New("boom")); err != nil {
		t.Fatalf("Report() unexpected error: %v", err)
	}

	want := `{"success":false,"message":"boom"}` + "\n"
	if buf.String() != want {
		t.Errorf("Report() = %q, want %q", buf.String(), want)
	}
}
