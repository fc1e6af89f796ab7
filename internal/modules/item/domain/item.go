package domain

// MaxTextLen caps the body text of every ingested item.
const MaxTextLen = 1024

// NewsItem represents a single candidate item awaiting moderation.
// Immutable after creation except for ImagePath, which is cleared once the
// staged image file is deleted on moderation resolution.
type NewsItem struct {
	ID         string   `json:"id"`
	Kind       ItemKind `json:"kind"`
	Text       string   `json:"text"`
	ImagePath  string   `json:"image_path,omitempty"`
	SourceURL  string   `json:"source_url"`
	SourceName string   `json:"source_name"`
}

// ClampText trims text to MaxTextLen, respecting rune boundaries.
func ClampText(s string) string {
	runes := []rune(s)
	if len(runes) > MaxTextLen {
		return string(runes[:MaxTextLen])
	}
	return s
}

// Excerpt returns at most n runes of s.
func Excerpt(s string, n int) string {
	runes := []rune(s)
	if len(runes) > n {
		return string(runes[:n])
	}
	return s
}
