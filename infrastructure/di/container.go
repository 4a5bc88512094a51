// Package di wires the application from configuration.
package di

import (
	"context"
	"errors"
	"fmt"
	"time"

	sb "github.com/supabase-community/supabase-go"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/Jabramco/memebase/application/services"
	domainservices "github.com/Jabramco/memebase/domain/services"
	"github.com/Jabramco/memebase/infrastructure/config"
	"github.com/Jabramco/memebase/infrastructure/messaging/eventbridge"
	"github.com/Jabramco/memebase/infrastructure/persistence/dynamodb"
	"github.com/Jabramco/memebase/infrastructure/persistence/memory"
	"github.com/Jabramco/memebase/infrastructure/persistence/supabase"
	"github.com/Jabramco/memebase/pkg/observability"
)

// Container holds the wired application
type Container struct {
	Config   *config.Config
	Logger   *zap.Logger
	LogLevel zap.AtomicLevel
	Metrics  *observability.Collector
	Tracer   trace.Tracer

	// Images is set when images are kept in memory and served by the API
	Images *memory.InMemoryObjectStore

	Suggester    domainservices.TitleSuggester
	Interactions *services.InteractionService
	Memes        *services.MemeService
	Bulk         *services.BulkIngestionService
	Champion     *services.ChampionService

	closers []func() error
}

// NewContainer builds every component selected by cfg
func NewContainer(ctx context.Context, cfg *config.Config, logger *zap.Logger, level zap.AtomicLevel) (*Container, error) {
	c := &Container{
		Config:   cfg,
		Logger:   logger,
		LogLevel: level,
	}
	if cfg.EnableMetrics {
		c.Metrics = observability.NewCollector("memebase")
	}

	now, err := ProvideClock(cfg)
	if err != nil {
		return nil, err
	}

	tp, shutdownTracing, err := ProvideTracerProvider(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}
	c.Tracer = tp.Tracer(services.TracerName)
	c.closers = append(c.closers, func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return shutdownTracing(ctx)
	})

	var (
		ddb    dynamodb.Client
		events eventbridge.Client
	)
	if cfg.UsesAWS() {
		awsCfg, err := ProvideAWSConfig(ctx, cfg)
		if err != nil {
			c.Close()
			return nil, fmt.Errorf("failed to load AWS config: %w", err)
		}
		ddb = ProvideDynamoDBClient(awsCfg)
		if cfg.EventBusName != "" {
			events = ProvideEventBridgeClient(awsCfg)
		}
	}

	var supa *sb.Client
	if cfg.CatalogDriver == config.DriverSupabase || cfg.ObjectStoreDriver == config.DriverSupabase {
		supa, err = supabase.NewClient(cfg.SupabaseURL, cfg.SupabaseKey)
		if err != nil {
			c.Close()
			return nil, err
		}
	}

	kv, closeKV, err := ProvideKeyValueStore(cfg, ddb, logger)
	if err != nil {
		c.Close()
		return nil, err
	}
	c.closers = append(c.closers, closeKV)

	repo, err := ProvideMemeRepository(cfg, ddb, supa, logger)
	if err != nil {
		c.Close()
		return nil, err
	}
	objects, images, err := ProvideObjectStore(cfg, supa, logger)
	if err != nil {
		c.Close()
		return nil, err
	}
	c.Images = images

	domain := ProvideDomainConfig(cfg)
	publisher := ProvideEventPublisher(cfg, events, logger)
	local := services.NewLocalMemeStore(kv, domain.LocalMemesKey, logger)

	c.Suggester = domainservices.NewDefaultTitleSuggester()
	c.Interactions = services.NewInteractionService(kv, domain, now, logger, c.Metrics, c.Tracer)
	c.Memes = services.NewMemeService(repo, objects, local, publisher, domain, logger, c.Metrics, c.Tracer)
	c.Bulk = services.NewBulkIngestionService(c.Memes, c.Suggester, logger, c.Tracer)
	c.Champion = services.NewChampionService(c.Interactions, c.Memes, logger, c.Metrics)

	logger.Info("Container initialized",
		zap.String("kvDriver", cfg.KVDriver),
		zap.String("catalogDriver", cfg.CatalogDriver),
		zap.String("objectStoreDriver", cfg.ObjectStoreDriver),
		zap.Bool("events", cfg.EventBusName != ""),
		zap.Bool("metrics", cfg.EnableMetrics),
		zap.String("tracing", cfg.TracingExporter),
	)
	return c, nil
}

// Close releases resources held by the container
func (c *Container) Close() error {
	var errs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	c.closers = nil
	return errors.Join(errs...)
}
