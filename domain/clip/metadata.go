package clip

// DefaultTitle is used when the source reports no title
const DefaultTitle = "unknown_title"

// Metadata describes the source media as reported by the fetcher before download
type Metadata struct {
	Title    string
	Duration float64 // seconds
}
