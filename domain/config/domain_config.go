package config

import "time"

// DomainConfig holds the configurable business rules of the meme library
type DomainConfig struct {
	// Interaction ledger
	RetentionWeeks int
	LedgerKey      string

	// Local fallback
	LocalMemesKey string

	// Upload constraints
	MaxUploadBytes    int64
	ContentTypePrefix string
	UploadTimeout     time.Duration
	ImagePathPrefix   string
	RequireKeywords   bool
}

// DefaultDomainConfig returns the default domain configuration
func DefaultDomainConfig() *DomainConfig {
	return &DomainConfig{
		RetentionWeeks: 4,
		LedgerKey:      "meme-interactions",

		LocalMemesKey: "memes",

		MaxUploadBytes:    10 * 1024 * 1024,
		ContentTypePrefix: "image/",
		UploadTimeout:     30 * time.Second,
		ImagePathPrefix:   "memes/",
		RequireKeywords:   true,
	}
}
