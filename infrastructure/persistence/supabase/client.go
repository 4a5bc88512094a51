// Package supabase keeps meme images in Supabase Storage and the meme catalog
// in a Supabase (PostgREST) table.
package supabase

import (
	"fmt"

	sb "github.com/supabase-community/supabase-go"
)

// NewClient connects to a Supabase project
func NewClient(url, key string) (*sb.Client, error) {
	client, err := sb.NewClient(url, key, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create supabase client: %w", err)
	}
	return client, nil
}
