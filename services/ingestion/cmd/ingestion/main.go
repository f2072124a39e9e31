package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	pkgconfig "github.com/Skotchmaster/doc_platform/pkg/config"
	pkgdb "github.com/Skotchmaster/doc_platform/pkg/db"
	"github.com/Skotchmaster/doc_platform/pkg/events"
	"github.com/Skotchmaster/doc_platform/pkg/logging"
	"github.com/Skotchmaster/doc_platform/pkg/mq"
	"github.com/Skotchmaster/doc_platform/services/ingestion/internal/config"
	"github.com/Skotchmaster/doc_platform/services/ingestion/internal/handler"
	"github.com/Skotchmaster/doc_platform/services/ingestion/internal/repo"
	"github.com/Skotchmaster/doc_platform/services/ingestion/internal/service"
)

func main() {
	pkgconfig.LoadDotenv("services/ingestion/.env", ".env")
	cfg := config.Load()

	logger := logging.New(os.Getenv("LOG_LEVEL")).With("service", "ingestion")
	slog.SetDefault(logger)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	db, err := pkgdb.Open(ctx, cfg.DatabaseURL)
	cancel()
	if err != nil {
		log.Fatalf("db open: %v", err)
	}
	defer pkgdb.Close(db)

	rp := &repo.GormRepo{DB: db}
	ctx, cancel = context.WithTimeout(context.Background(), 30*time.Second)
	if err := rp.Migrate(ctx); err != nil {
		log.Fatalf("migrate: %v", err)
	}
	cancel()

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()

	publisher, closeEvents := events.New(cfg.KafkaBrokers)
	defer func() { _ = closeEvents() }()

	svc := &service.IngestionService{
		Repo:   rp,
		Events: publisher,
		Delay:  service.RandomDelay(cfg.MinDelay, cfg.MaxDelay),
	}

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	runCtx = logging.IntoContext(runCtx, logger)

	srv := mq.NewServer(rdb)
	(&handler.Handlers{Svc: svc, Background: runCtx}).Register(srv)

	if err := srv.Run(runCtx); err != nil {
		logger.Error("mq_server_failed", "error", err)
	}
	svc.Wait()
	logger.Info("ingestion_stopped")
}
