package services

import (
	"context"
	"sync"

	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/Jabramco/memebase/application/ports"
	"github.com/Jabramco/memebase/domain/core/entities"
)

// LocalMemeStore keeps memes that could not be stored remotely as a JSON
// array under a single key, newest first.
type LocalMemeStore struct {
	mu     sync.Mutex
	store  ports.KeyValueStore
	key    string
	logger *zap.Logger
}

// NewLocalMemeStore creates a local meme store writing under key
func NewLocalMemeStore(store ports.KeyValueStore, key string, logger *zap.Logger) *LocalMemeStore {
	return &LocalMemeStore{store: store, key: key, logger: logger}
}

// List returns the locally saved memes, newest first. An unreadable list is
// reported as empty.
func (l *LocalMemeStore) List(ctx context.Context) ([]entities.Meme, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.load(ctx)
}

// Prepend adds meme at the head of the list
func (l *LocalMemeStore) Prepend(ctx context.Context, meme entities.Meme) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	memes, err := l.load(ctx)
	if err != nil {
		return err
	}
	return l.save(ctx, append([]entities.Meme{meme}, memes...))
}

// Remove deletes the meme with id and reports whether it was present
func (l *LocalMemeStore) Remove(ctx context.Context, id string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	memes, err := l.load(ctx)
	if err != nil {
		return false, err
	}

	kept := memes[:0]
	removed := false
	for _, m := range memes {
		if m.ID == id {
			removed = true
			continue
		}
		kept = append(kept, m)
	}
	if !removed {
		return false, nil
	}
	return true, l.save(ctx, kept)
}

func (l *LocalMemeStore) load(ctx context.Context) ([]entities.Meme, error) {
	data, found, err := l.store.Load(ctx, l.key)
	if err != nil {
		return nil, err
	}
	memes := make([]entities.Meme, 0)
	if !found || len(data) == 0 {
		return memes, nil
	}
	if err := json.Unmarshal(data, &memes); err != nil {
		l.logger.Warn("Local meme list is unreadable, treating as empty", zap.Error(err))
		return make([]entities.Meme, 0), nil
	}
	if memes == nil {
		memes = make([]entities.Meme, 0)
	}
	return memes, nil
}

func (l *LocalMemeStore) save(ctx context.Context, memes []entities.Meme) error {
	data, err := json.Marshal(memes)
	if err != nil {
		return err
	}
	return l.store.Save(ctx, l.key, data)
}
