package entities

import (
	"strings"
	"time"
)

// Meme is an image in the library with its searchable metadata
type Meme struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Keywords  []string  `json:"keywords"`
	ImageURL  string    `json:"imageUrl"`
	FileName  string    `json:"fileName"`
	FileSize  int64     `json:"fileSize"`
	CreatedAt time.Time `json:"createdAt"`
}

// IsLocal reports whether the image is embedded in the record as a data URI
// rather than referenced from remote storage.
func (m Meme) IsLocal() bool {
	return strings.HasPrefix(m.ImageURL, "data:")
}

// Matches reports whether term occurs, case-insensitively, in the title or in
// any keyword. A blank term matches every meme.
func (m Meme) Matches(term string) bool {
	if strings.TrimSpace(term) == "" {
		return true
	}
	needle := strings.ToLower(term)
	if strings.Contains(strings.ToLower(m.Title), needle) {
		return true
	}
	for _, keyword := range m.Keywords {
		if strings.Contains(strings.ToLower(keyword), needle) {
			return true
		}
	}
	return false
}

// ParseKeywords splits a comma-separated keyword list, trimming each entry
// and dropping empty ones.
func ParseKeywords(raw string) []string {
	keywords := make([]string, 0)
	for _, part := range strings.Split(raw, ",") {
		if k := strings.TrimSpace(part); k != "" {
			keywords = append(keywords, k)
		}
	}
	return keywords
}

// FilterMemes returns the memes matching term, preserving order
func FilterMemes(memes []Meme, term string) []Meme {
	filtered := make([]Meme, 0, len(memes))
	for _, m := range memes {
		if m.Matches(term) {
			filtered = append(filtered, m)
		}
	}
	return filtered
}
