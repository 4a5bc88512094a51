package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Jabramco/memebase/domain/core/entities"
)

func TestInMemoryKeyValueStore(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryKeyValueStore()

	_, found, err := store.Load(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, found)

	value := []byte(`{"a":1}`)
	require.NoError(t, store.Save(ctx, "k", value))
	value[0] = 'X'

	got, found, err := store.Load(ctx, "k")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, `{"a":1}`, string(got))
}

func TestInMemoryMemeRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryMemeRepository()
	base := time.Date(2024, time.March, 6, 12, 0, 0, 0, time.UTC)

	_, err := repo.Insert(ctx, &entities.Meme{ID: "old", CreatedAt: base})
	require.NoError(t, err)
	saved, err := repo.Insert(ctx, &entities.Meme{CreatedAt: base.Add(time.Hour)})
	require.NoError(t, err)
	assert.NotEmpty(t, saved.ID)

	memes, err := repo.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, memes, 2)
	assert.Equal(t, saved.ID, memes[0].ID)
	assert.Equal(t, "old", memes[1].ID)

	require.NoError(t, repo.Delete(ctx, "old"))
	require.NoError(t, repo.Delete(ctx, "never-existed"))
	memes, _ = repo.ListAll(ctx)
	assert.Len(t, memes, 1)
}

func TestInMemoryMemeRepository_InsertHonorsCancellation(t *testing.T) {
	repo := NewInMemoryMemeRepository()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := repo.Insert(ctx, &entities.Meme{ID: "late"})
	assert.ErrorIs(t, err, context.Canceled)

	memes, err := repo.ListAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, memes)
}

func TestInMemoryObjectStore(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryObjectStore("http://localhost:8080/images/")

	url, err := store.PutImage(ctx, []byte("png"), "memes/1_a.png", "image/png")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/images/memes/1_a.png", url)

	data, contentType, ok := store.Get("memes/1_a.png")
	require.True(t, ok)
	assert.Equal(t, "png", string(data))
	assert.Equal(t, "image/png", contentType)

	require.NoError(t, store.DeleteImage(ctx, url))
	assert.Equal(t, 0, store.Len())
}

func TestInMemoryObjectStore_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewInMemoryObjectStore("http://x").PutImage(ctx, []byte("a"), "p", "image/png")
	assert.ErrorIs(t, err, context.Canceled)
}
