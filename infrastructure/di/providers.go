package di

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awseventbridge "github.com/aws/aws-sdk-go-v2/service/eventbridge"
	sb "github.com/supabase-community/supabase-go"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/Jabramco/memebase/application/ports"
	domainconfig "github.com/Jabramco/memebase/domain/config"
	"github.com/Jabramco/memebase/infrastructure/config"
	"github.com/Jabramco/memebase/infrastructure/messaging/eventbridge"
	"github.com/Jabramco/memebase/infrastructure/persistence/dynamodb"
	"github.com/Jabramco/memebase/infrastructure/persistence/memory"
	"github.com/Jabramco/memebase/infrastructure/persistence/sqlite"
	"github.com/Jabramco/memebase/infrastructure/persistence/supabase"
	"github.com/Jabramco/memebase/infrastructure/resilience"
	"github.com/Jabramco/memebase/pkg/observability"
)

// ProvideTracerProvider creates the tracer provider for the configured
// exporter. The returned function flushes pending spans.
func ProvideTracerProvider(ctx context.Context, cfg *config.Config) (trace.TracerProvider, observability.ShutdownFunc, error) {
	return observability.NewTracerProvider(ctx, observability.TracingConfig{
		ServiceName: "memebase",
		Environment: cfg.Environment,
		Exporter:    cfg.TracingExporter,
		Endpoint:    cfg.OTLPEndpoint,
		SampleRate:  cfg.TraceSampleRate,
	})
}

// ProvideDomainConfig derives the business rules from the configuration
func ProvideDomainConfig(cfg *config.Config) *domainconfig.DomainConfig {
	domain := domainconfig.DefaultDomainConfig()
	domain.UploadTimeout = cfg.UploadTimeout
	domain.MaxUploadBytes = cfg.MaxUploadBytes
	return domain
}

// ProvideClock returns a clock reading wall time in the configured time zone
func ProvideClock(cfg *config.Config) (func() time.Time, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	return func() time.Time { return time.Now().In(loc) }, nil
}

// ProvideAWSConfig creates AWS configuration
func ProvideAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	return awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.AWSRegion),
	)
}

// ProvideDynamoDBClient creates a DynamoDB client
func ProvideDynamoDBClient(awsCfg aws.Config) *awsdynamodb.Client {
	return awsdynamodb.NewFromConfig(awsCfg)
}

// ProvideEventBridgeClient creates an EventBridge client
func ProvideEventBridgeClient(awsCfg aws.Config) *awseventbridge.Client {
	return awseventbridge.NewFromConfig(awsCfg)
}

// ProvideKeyValueStore selects the store behind the ledger and the local
// meme list. The returned closer releases it.
func ProvideKeyValueStore(cfg *config.Config, ddb dynamodb.Client, logger *zap.Logger) (ports.KeyValueStore, func() error, error) {
	noop := func() error { return nil }

	switch cfg.KVDriver {
	case config.DriverMemory:
		return memory.NewInMemoryKeyValueStore(), noop, nil
	case config.DriverSQLite:
		store, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil
	case config.DriverDynamoDB:
		return dynamodb.NewKeyValueStore(ddb, cfg.TableName, logger), noop, nil
	default:
		return nil, nil, fmt.Errorf("unknown key-value driver %q", cfg.KVDriver)
	}
}

// ProvideMemeRepository selects the remote meme catalog
func ProvideMemeRepository(cfg *config.Config, ddb dynamodb.Client, client *sb.Client, logger *zap.Logger) (ports.MemeRepository, error) {
	switch cfg.CatalogDriver {
	case config.DriverMemory:
		return memory.NewInMemoryMemeRepository(), nil
	case config.DriverDynamoDB:
		return dynamodb.NewMemeRepository(ddb, cfg.TableName, logger), nil
	case config.DriverSupabase:
		return supabase.NewMemeRepository(client, cfg.SupabaseTable, logger), nil
	default:
		return nil, fmt.Errorf("unknown catalog driver %q", cfg.CatalogDriver)
	}
}

// ProvideObjectStore selects where images go. Remote stores sit behind a
// circuit breaker. The in-memory store is also returned so its images can be
// served over HTTP.
func ProvideObjectStore(cfg *config.Config, client *sb.Client, logger *zap.Logger) (ports.ObjectStore, *memory.InMemoryObjectStore, error) {
	switch cfg.ObjectStoreDriver {
	case config.DriverMemory:
		images := memory.NewInMemoryObjectStore(cfg.PublicBaseURL)
		return images, images, nil
	case config.DriverSupabase:
		store := supabase.NewObjectStore(client.Storage, cfg.SupabaseBucket, logger)
		return resilience.NewBreakerObjectStore(store, resilience.DefaultBreakerConfig("supabase-storage"), logger), nil, nil
	case config.DriverNone:
		return resilience.UnavailableObjectStore{}, nil, nil
	default:
		return nil, nil, fmt.Errorf("unknown object store driver %q", cfg.ObjectStoreDriver)
	}
}

// ProvideEventPublisher publishes to EventBridge when a bus is configured
// and logs events otherwise
func ProvideEventPublisher(cfg *config.Config, client eventbridge.Client, logger *zap.Logger) ports.EventPublisher {
	if cfg.EventBusName == "" || client == nil {
		return eventbridge.NewLogPublisher(logger)
	}
	return eventbridge.NewPublisher(client, cfg.EventBusName, logger)
}
