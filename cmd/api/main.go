package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"phPortfolio/internal/api"
	"phPortfolio/internal/auth"
	"phPortfolio/internal/config"
	"phPortfolio/internal/database"
	"phPortfolio/internal/render"
	"phPortfolio/internal/storage"
	"phPortfolio/internal/store"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using environment variables")
	}
	cfg := config.MustLoad()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	logger.Info("api bootstrapped",
		slog.String("db_host", cfg.Database.Host),
		slog.Int("db_port", cfg.Database.Port),
		slog.String("db_name", cfg.Database.Name),
	)

	db, err := database.InitDatabase(cfg.Database)
	if err != nil {
		log.Fatalf("init database: %v", err)
	}
	logger.Info("database connection ready")

	ctx := context.Background()
	svc := store.NewService(store.NewGormKV(db), logger)
	if err := svc.Init(ctx); err != nil {
		log.Fatalf("load portfolio: %v", err)
	}

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr()})
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Error("close redis client failed", slog.Any("error", err))
		}
	}()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Fatalf("ping redis: %v", err)
	}

	sessions, err := auth.NewSessions(redisClient, cfg.Auth.SessionSecret, cfg.Auth.SessionTTL)
	if err != nil {
		log.Fatalf("init sessions: %v", err)
	}

	storageClient, err := storage.NewClient(cfg.MinIO)
	if err != nil {
		log.Fatalf("init storage client: %v", err)
	}
	logger.Info("storage client ready", slog.String("bucket", cfg.MinIO.Bucket))

	taskClient := asynq.NewClient(asynq.RedisClientOpt{Addr: cfg.Redis.Addr()})
	defer taskClient.Close()

	var scanner api.Scanner
	if cfg.Clamd.Address != "" {
		scanner = api.NewClamdScanner(cfg.Clamd.Address)
		logger.Info("upload scanning enabled", slog.String("clamd", cfg.Clamd.Address))
	}

	svc.OnChange(api.ChangeNotifier(redisClient, logger))
	svc.OnChange(api.ChangeMetrics)

	router := api.NewRouter(cfg, logger)
	api.RegisterRoutes(router, api.Deps{
		Store:          svc,
		Sessions:       sessions,
		Limiter:        auth.NewLoginLimiter(redisClient, cfg.Auth.LoginRateLimit),
		Redis:          redisClient,
		Storage:        storageClient,
		Tasks:          taskClient,
		Scanner:        scanner,
		Logger:         logger,
		InternalSecret: cfg.API.InternalSecret,
		AllowedOrigins: cfg.API.AllowedOrigins,
		Preview: render.Options{
			ContainerAspect: 16.0 / 9.0,
			ContainerWidth:  cfg.API.PreviewWidth,
			Scale:           cfg.API.PreviewScale,
		},
		PageCacheTTL: cfg.API.PageCacheTTL,
	})

	address := fmt.Sprintf(":%d", cfg.API.Port)
	logger.Info("api listening", slog.String("addr", address))
	if err := router.Run(address); err != nil {
		log.Fatalf("failed to start api server: %v", err)
	}
}
