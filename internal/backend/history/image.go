package history

// GeneratedImage is one entry of the generation history. Records are never
// mutated after creation.
type GeneratedImage struct {
	ID         string `json:"id"`
	Prompt     string `json:"prompt"`
	ImageURL   string `json:"imageUrl"`
	Timestamp  int64  `json:"timestamp"` // epoch milliseconds
	Dimensions string `json:"dimensions"`
	Style      string `json:"style"`
}

// NewImage carries the caller-supplied fields of a record; the store assigns
// ID and Timestamp.
type NewImage struct {
	Prompt     string `json:"prompt"`
	ImageURL   string `json:"imageUrl"`
	Dimensions string `json:"dimensions"`
	Style      string `json:"style"`
}
