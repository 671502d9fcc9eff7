package model

// Claim represents a candidate factual assertion extracted from a page
type Claim struct {
	Text     string   `json:"text"`               // Trimmed fragment text
	Score    int      `json:"score"`              // Claim-likelihood score (>= 2 to qualify)
	Node     int      `json:"-"`                  // Handle into the per-scan element registry
	Location Location `json:"location,omitempty"` // Where the fragment sits in the document
}

// Location describes the position of a claim within the scanned document.
// There is no layout engine here, so position is document order rather than
// pixel coordinates.
type Location struct {
	Index   int  `json:"index"`   // 0-based document order of the source element
	Visible bool `json:"visible"` // Whether the element is rendered at all
}
