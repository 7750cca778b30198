package models

// PageContent is the readable part of a fetched page.
type PageContent struct {
	URL   string
	Title string
	Body  string
	// ContentFound is false when no container matched and Body holds the sentinel text.
	ContentFound bool
	// Container names the rule that located Body.
	Container string
}

// FaqRecord is one question/answer pair produced from a chunk.
type FaqRecord struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// ChunkResult holds the outcome of generating FAQs for a single chunk.
type ChunkResult struct {
	Index   int
	Text    string
	Raw     string
	Records []FaqRecord
	Err     error
}
