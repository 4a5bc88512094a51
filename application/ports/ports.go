package ports

import (
	"context"
	"time"

	"github.com/Jabramco/memebase/domain/core/entities"
)

// KeyValueStore persists small documents under string keys. It backs the
// interaction ledger and the list of memes saved without remote storage.
type KeyValueStore interface {
	// Load returns the value stored under key; found is false when the key
	// has never been written
	Load(ctx context.Context, key string) (value []byte, found bool, err error)

	// Save replaces the value stored under key
	Save(ctx context.Context, key string, value []byte) error
}

// ObjectStore holds meme images
type ObjectStore interface {
	// PutImage stores data at path and returns a public URL for it
	PutImage(ctx context.Context, data []byte, path, contentType string) (string, error)

	// DeleteImage removes the object behind a URL returned by PutImage
	DeleteImage(ctx context.Context, url string) error
}

// MemeRepository is the remote meme catalog
type MemeRepository interface {
	// Insert stores a meme and returns it with its catalog ID assigned
	Insert(ctx context.Context, meme *entities.Meme) (*entities.Meme, error)

	// ListAll returns every meme ordered by creation time, newest first
	ListAll(ctx context.Context) ([]entities.Meme, error)

	// Delete removes a meme; deleting an unknown ID is not an error
	Delete(ctx context.Context, id string) error
}

// Event types published by the library
const (
	EventMemeCreated   = "meme.created"
	EventMemeDeleted   = "meme.deleted"
	EventBulkCompleted = "bulk.completed"
)

// Event is a notification about a change in the library
type Event struct {
	Type       string                 `json:"type"`
	Detail     map[string]interface{} `json:"detail"`
	OccurredAt time.Time              `json:"occurredAt"`
}

// EventPublisher delivers events to interested consumers. Delivery is best
// effort; callers log failures and carry on.
type EventPublisher interface {
	Publish(ctx context.Context, event Event) error
}
