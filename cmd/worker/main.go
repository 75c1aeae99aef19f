package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"phPortfolio/internal/config"
	"phPortfolio/internal/metrics"
	"phPortfolio/internal/storage"
	"phPortfolio/internal/tasks"
	"phPortfolio/internal/worker"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using environment variables")
	}
	cfg := config.MustLoad()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	storageClient, err := storage.NewClient(cfg.MinIO)
	if err != nil {
		log.Fatalf("init storage client: %v", err)
	}
	logger.Info("storage client ready", slog.String("bucket", cfg.MinIO.Bucket))

	redisAddr := cfg.Redis.Addr()
	redisClient := redis.NewClient(&redis.Options{Addr: redisAddr})
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Error("close redis client failed", slog.Any("error", err))
		}
	}()

	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		log.Fatalf("ping redis: %v", err)
	}

	server := asynq.NewServer(asynq.RedisClientOpt{Addr: redisAddr}, asynq.Config{
		Concurrency: cfg.Worker.Concurrency,
	})

	ingestHandler := worker.NewImageIngestHandler(
		storageClient,
		redisClient,
		logger,
		cfg.API.InternalSecret,
		cfg.Worker.InternalAPIBaseURL,
	)
	previewHandler := worker.NewProjectPreviewHandler(
		storageClient,
		worker.NewRodSnapshotter(logger, int(cfg.API.PreviewWidth)),
		redisClient,
		logger,
		cfg.API.FrontendBaseURL,
	)

	mux := asynq.NewServeMux()
	mux.Use(metrics.AsynqMetricsMiddleware())
	mux.Handle(tasks.TypeImageIngest, ingestHandler)
	mux.Handle(tasks.TypeProjectPreview, previewHandler)

	if addr := cfg.Worker.MetricsAddr; addr != "" {
		go func() {
			metricsMux := http.NewServeMux()
			metricsMux.Handle("/metrics", promhttp.Handler())
			if err := http.ListenAndServe(addr, metricsMux); err != nil {
				logger.Error("worker metrics server stopped", slog.Any("error", err))
			}
		}()
	}

	logger.Info("worker service started",
		slog.String("redis_addr", redisAddr),
		slog.Int("concurrency", cfg.Worker.Concurrency),
	)
	if err := server.Run(mux); err != nil {
		logger.Error("worker server stopped", slog.Any("error", err))
	}
}
