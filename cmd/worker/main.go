package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"housy-backend/internal/bootstrap"
	"housy-backend/internal/events"
	"housy-backend/internal/shared/config"
	"housy-backend/internal/shared/telemetry"
)

func main() {
	cfg := config.Load()
	telemetry.Init(cfg.LogLevel)
	defer telemetry.Sync()

	if cfg.EventsQueueURL == "" {
		telemetry.Error("EVENTS_SQS_QUEUE_URL is required", nil)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := events.NewSQSClient(ctx, cfg.AWSRegion)
	if err != nil {
		telemetry.Error("sqs client init failed", map[string]any{"error": err.Error()})
		os.Exit(1)
	}

	app, err := bootstrap.Build(ctx, cfg)
	if err != nil {
		telemetry.Error("bootstrap failed", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
	defer app.Close()

	consumer := &events.Consumer{
		Client:          client,
		QueueURL:        cfg.EventsQueueURL,
		Handlers:        handlers(app.EnrichmentService),
		Concurrency:     cfg.WorkerConcurrency,
		ShutdownTimeout: cfg.WorkerShutdownTimeout,
	}
	consumer.Run(ctx)
}
