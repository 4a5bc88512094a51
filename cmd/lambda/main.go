// Package main runs the HTTP API on AWS Lambda behind an API Gateway HTTP API.
// Scheduled EventBridge invocations prune old interaction weeks in place of
// the in-process cron.
package main

import (
	"context"
	"log"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	chiadapter "github.com/awslabs/aws-lambda-go-api-proxy/chi"
	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/Jabramco/memebase/infrastructure/config"
	"github.com/Jabramco/memebase/infrastructure/di"
	"github.com/Jabramco/memebase/infrastructure/scheduler"
	"github.com/Jabramco/memebase/interfaces/http/rest"
	"github.com/Jabramco/memebase/pkg/observability"
)

var (
	chiLambda *chiadapter.ChiLambdaV2
	container *di.Container
	coldStart = true
)

func init() {
	start := time.Now()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	logger, level, err := observability.NewLogger(cfg.Environment, cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}

	container, err = di.NewContainer(context.Background(), cfg, logger, level)
	if err != nil {
		logger.Fatal("Failed to initialize container", zap.Error(err))
	}

	// Old weeks are pruned once per cold start, then by scheduled events
	scheduler.RunOnce(context.Background(), container.Interactions, logger, "cold start")

	router, ok := rest.NewRouter(container).Setup().(*chi.Mux)
	if !ok {
		logger.Fatal("Router is not a chi.Mux")
	}
	chiLambda = chiadapter.NewV2(router)

	logger.Info("Lambda cold start completed", zap.Duration("duration", time.Since(start)))
}

// Handler serves API Gateway requests and scheduled cleanup events
func Handler(ctx context.Context, raw json.RawMessage) (interface{}, error) {
	logger := container.Logger
	if coldStart {
		coldStart = false
		logger.Debug("First invocation after cold start")
	}

	var scheduled events.CloudWatchEvent
	if err := json.Unmarshal(raw, &scheduled); err == nil && scheduled.Source == "aws.events" {
		pruned := scheduler.RunOnce(ctx, container.Interactions, logger.With(zap.String("detailType", scheduled.DetailType)), "scheduled event")
		return map[string]int{"pruned": pruned}, nil
	}

	var req events.APIGatewayV2HTTPRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		logger.Error("Unsupported event", zap.Error(err))
		return nil, err
	}
	return chiLambda.ProxyWithContextV2(ctx, req)
}

func main() {
	lambda.Start(Handler)
}
