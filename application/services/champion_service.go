package services

import (
	"context"

	"go.uber.org/zap"

	"github.com/Jabramco/memebase/domain/core/entities"
	domainservices "github.com/Jabramco/memebase/domain/services"
	"github.com/Jabramco/memebase/pkg/observability"
)

// MemeLister supplies the collection the weekly champion is resolved against
type MemeLister interface {
	List(ctx context.Context) ([]entities.Meme, error)
}

// ChampionService answers "meme of the week" queries
type ChampionService struct {
	interactions *InteractionService
	memes        MemeLister
	logger       *zap.Logger
	metrics      *observability.Collector
}

// NewChampionService creates a new champion service
func NewChampionService(interactions *InteractionService, memes MemeLister, logger *zap.Logger, metrics *observability.Collector) *ChampionService {
	return &ChampionService{
		interactions: interactions,
		memes:        memes,
		logger:       logger,
		metrics:      metrics,
	}
}

// CurrentChampion returns the meme of the current week, or nil when no meme
// in the collection has a positive score this week.
func (s *ChampionService) CurrentChampion(ctx context.Context) (*domainservices.Champion, error) {
	memes, err := s.memes.List(ctx)
	if err != nil {
		return nil, err
	}
	return s.SelectFrom(ctx, memes), nil
}

// SelectFrom resolves the current week's champion against memes
func (s *ChampionService) SelectFrom(ctx context.Context, memes []entities.Meme) *domainservices.Champion {
	week := s.interactions.CurrentWeek()
	champ := domainservices.SelectChampion(s.interactions.Snapshot(ctx), week, memes)

	s.metrics.RecordChampionLookup(champ != nil)
	if champ != nil {
		s.logger.Debug("Meme of the week selected",
			zap.String("week", week.String()),
			zap.String("memeID", champ.Meme.ID),
			zap.Int("totalScore", champ.Stats.TotalScore),
		)
	}
	return champ
}
