package clip

import (
	"path"
	"strings"
)

const (
	// OutputExtension is the extension of both the fetched artifact and the exported clip
	OutputExtension = ".mp3"

	// OutputSubdirectory is the directory under the public root that holds exported clips
	OutputSubdirectory = "temp_audio"

	// SuccessMessage is reported on every successful job
	SuccessMessage = "Audio extracted successfully"
)

var titleReplacer = strings.NewReplacer("/", "_", "\\", "_", "\x00", "_")

// OutputFilename returns <title>_<start>_<end>.mp3 using the literal request times.
// Path separators in the title are replaced so the file always lands in the output directory.
func OutputFilename(title string, req *Request) string {
	return titleReplacer.Replace(title) + "_" + FormatSeconds(req.Start) + "_" + FormatSeconds(req.End) + OutputExtension
}

// PublicPath returns the path reported to callers, relative to the public root
func PublicPath(filename string) string {
	return path.Join("/", OutputSubdirectory, filename)
}
