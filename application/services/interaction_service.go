package services

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/Jabramco/memebase/application/ports"
	"github.com/Jabramco/memebase/domain/config"
	"github.com/Jabramco/memebase/domain/core/aggregates"
	"github.com/Jabramco/memebase/domain/core/entities"
	"github.com/Jabramco/memebase/domain/core/valueobjects"
	"github.com/Jabramco/memebase/pkg/errors"
	"github.com/Jabramco/memebase/pkg/observability"
)

// InteractionService maintains the weekly interaction ledger.
//
// The ledger is stored as a single document, so every mutation is a
// load-modify-save of the whole ledger. The mutex makes this service the
// single writer within the process. Storage problems never fail a caller:
// unreadable ledgers are treated as empty and failed saves are logged.
type InteractionService struct {
	mu      sync.Mutex
	store   ports.KeyValueStore
	cfg     *config.DomainConfig
	now     func() time.Time
	logger  *zap.Logger
	metrics *observability.Collector
	tracer  trace.Tracer
}

// NewInteractionService creates a new interaction service
func NewInteractionService(
	store ports.KeyValueStore,
	cfg *config.DomainConfig,
	now func() time.Time,
	logger *zap.Logger,
	metrics *observability.Collector,
	tracer trace.Tracer,
) *InteractionService {
	if now == nil {
		now = time.Now
	}
	return &InteractionService{
		store:   store,
		cfg:     cfg,
		now:     now,
		logger:  logger,
		metrics: metrics,
		tracer:  tracerOrNoop(tracer),
	}
}

// CurrentWeek returns the week bucket of the service clock
func (s *InteractionService) CurrentWeek() valueobjects.WeekID {
	return valueobjects.WeekIDAt(s.now())
}

// RecordInteraction adds one interaction of kind for memeID to the current
// week and returns the updated record.
func (s *InteractionService) RecordInteraction(ctx context.Context, memeID string, kind valueobjects.InteractionKind) (entities.InteractionRecord, error) {
	ctx, span := s.tracer.Start(ctx, "InteractionService.RecordInteraction",
		trace.WithAttributes(
			attribute.String("meme.id", memeID),
			attribute.String("interaction.kind", string(kind)),
		),
	)
	defer span.End()

	if strings.TrimSpace(memeID) == "" {
		err := errors.NewValidationError("meme id is required")
		spanError(span, err, "invalid meme id")
		return entities.InteractionRecord{}, err
	}
	kind, err := valueobjects.ParseInteractionKind(string(kind))
	if err != nil {
		verr := errors.NewValidationError(err.Error())
		spanError(span, verr, "invalid interaction kind")
		return entities.InteractionRecord{}, verr
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	week := s.CurrentWeek()
	ledger := s.load(ctx)
	rec := ledger.Record(week, memeID, kind)
	s.persist(ctx, ledger)
	span.SetAttributes(
		attribute.String("week", week.String()),
		attribute.Int("score.total", rec.TotalScore),
	)

	s.metrics.RecordInteraction(kind.String())
	s.logger.Debug("Interaction recorded",
		zap.String("memeID", memeID),
		zap.String("kind", kind.String()),
		zap.String("week", week.String()),
		zap.Int("totalScore", rec.TotalScore),
	)
	return rec, nil
}

// Stats returns the current-week record of memeID, zero-valued when the meme
// has no interactions this week.
func (s *InteractionService) Stats(ctx context.Context, memeID string) entities.InteractionRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.load(ctx).Stats(s.CurrentWeek(), memeID)
}

// Snapshot returns the ledger as currently stored
func (s *InteractionService) Snapshot(ctx context.Context) *aggregates.InteractionLedger {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.load(ctx)
}

// CleanupOldInteractions drops every week bucket outside the retention
// window ending at the current week and returns the number of buckets
// removed. Running it twice in the same week removes nothing the second time.
func (s *InteractionService) CleanupOldInteractions(ctx context.Context) int {
	ctx, span := s.tracer.Start(ctx, "InteractionService.CleanupOldInteractions")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	keep := valueobjects.RetentionWeeks(s.now(), s.cfg.RetentionWeeks)
	ledger := s.load(ctx)
	pruned := ledger.Retain(keep)
	s.persist(ctx, ledger)
	span.SetAttributes(attribute.Int("buckets.pruned", pruned))

	s.metrics.RecordBucketsPruned(pruned)
	s.logger.Info("Interaction ledger cleaned up",
		zap.Int("pruned", pruned),
		zap.Int("remaining", len(ledger.Weeks())),
	)
	return pruned
}

func (s *InteractionService) load(ctx context.Context) *aggregates.InteractionLedger {
	data, found, err := s.store.Load(ctx, s.cfg.LedgerKey)
	if err != nil {
		trace.SpanFromContext(ctx).RecordError(err)
		s.logger.Warn("Failed to load interaction ledger, starting empty", zap.Error(err))
		return aggregates.NewInteractionLedger()
	}
	if !found {
		return aggregates.NewInteractionLedger()
	}

	ledger, err := aggregates.ParseLedger(data)
	if err != nil {
		trace.SpanFromContext(ctx).RecordError(err)
		s.logger.Warn("Stored interaction ledger is unreadable, starting empty", zap.Error(err))
		return aggregates.NewInteractionLedger()
	}
	return ledger
}

func (s *InteractionService) persist(ctx context.Context, ledger *aggregates.InteractionLedger) {
	data, err := ledger.Encode()
	if err == nil {
		err = s.store.Save(ctx, s.cfg.LedgerKey, data)
	}
	if err != nil {
		spanError(trace.SpanFromContext(ctx), err, "ledger not persisted")
		s.metrics.RecordLedgerPersistFailure()
		s.logger.Error("Failed to persist interaction ledger", zap.Error(err))
	}
}
