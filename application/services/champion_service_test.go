package services

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Jabramco/memebase/domain/core/entities"
	"github.com/Jabramco/memebase/domain/core/valueobjects"
	"github.com/Jabramco/memebase/infrastructure/persistence/memory"
	"github.com/Jabramco/memebase/pkg/observability"
)

func TestChampionService_CurrentChampion(t *testing.T) {
	ctx := context.Background()
	f := newMemeFixture(t, nil, nil)
	interactions := newInteractionService(memory.NewInMemoryKeyValueStore(), march6)
	metrics := observability.NewCollector("memebase_test")
	champions := NewChampionService(interactions, f.svc, zap.NewNop(), metrics)

	_, _ = f.repo.Insert(ctx, &entities.Meme{ID: "a", Title: "A", CreatedAt: march6})
	_, _ = f.repo.Insert(ctx, &entities.Meme{ID: "b", Title: "B", CreatedAt: march6})

	champ, err := champions.CurrentChampion(ctx)
	require.NoError(t, err)
	assert.Nil(t, champ)

	_, _ = interactions.RecordInteraction(ctx, "a", valueobjects.KindView)
	_, _ = interactions.RecordInteraction(ctx, "b", valueobjects.KindCopy)

	champ, err = champions.CurrentChampion(ctx)
	require.NoError(t, err)
	require.NotNil(t, champ)
	assert.Equal(t, "b", champ.Meme.ID)
	assert.Equal(t, 3, champ.Stats.TotalScore)
	assert.Equal(t, valueobjects.WeekID("2024-W10"), champ.Week)

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.ChampionLookups.WithLabelValues("none")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.ChampionLookups.WithLabelValues("found")))
}

func TestChampionService_IgnoresDeletedWinner(t *testing.T) {
	ctx := context.Background()
	interactions := newInteractionService(memory.NewInMemoryKeyValueStore(), march6)
	champions := NewChampionService(interactions, nil, zap.NewNop(), nil)

	_, _ = interactions.RecordInteraction(ctx, "gone", valueobjects.KindCopy)
	_, _ = interactions.RecordInteraction(ctx, "here", valueobjects.KindView)

	assert.Nil(t, champions.SelectFrom(ctx, []entities.Meme{{ID: "here"}}))
}

func TestChampionService_ListFailure(t *testing.T) {
	lister := &stubLister{err: errors.New("offline")}
	champions := NewChampionService(newInteractionService(memory.NewInMemoryKeyValueStore(), march6), lister, zap.NewNop(), nil)

	_, err := champions.CurrentChampion(context.Background())
	assert.Error(t, err)
}

type stubLister struct {
	memes []entities.Meme
	err   error
}

func (s *stubLister) List(ctx context.Context) ([]entities.Meme, error) {
	return s.memes, s.err
}
