package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/Jabramco/memebase/domain/core/entities"
)

// InMemoryMemeRepository provides an in-memory implementation of MemeRepository
type InMemoryMemeRepository struct {
	mu    sync.RWMutex
	memes map[string]entities.Meme
}

// NewInMemoryMemeRepository creates a new in-memory meme repository
func NewInMemoryMemeRepository() *InMemoryMemeRepository {
	return &InMemoryMemeRepository{memes: make(map[string]entities.Meme)}
}

// Insert stores meme, assigning an ID when it has none
func (r *InMemoryMemeRepository) Insert(ctx context.Context, meme *entities.Meme) (*entities.Meme, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	stored := *meme
	if stored.ID == "" {
		stored.ID = uuid.New().String()
	}
	r.memes[stored.ID] = stored
	return &stored, nil
}

// ListAll returns every meme, newest first
func (r *InMemoryMemeRepository) ListAll(ctx context.Context) ([]entities.Meme, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	memes := make([]entities.Meme, 0, len(r.memes))
	for _, m := range r.memes {
		memes = append(memes, m)
	}
	sort.Slice(memes, func(i, j int) bool {
		if memes[i].CreatedAt.Equal(memes[j].CreatedAt) {
			return memes[i].ID < memes[j].ID
		}
		return memes[i].CreatedAt.After(memes[j].CreatedAt)
	})
	return memes, nil
}

// Delete removes a meme
func (r *InMemoryMemeRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.memes, id)
	return nil
}
