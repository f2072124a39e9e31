package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"

	"github.com/Skotchmaster/doc_platform/gateway/internal/ability"
	"github.com/Skotchmaster/doc_platform/gateway/internal/authn"
	"github.com/Skotchmaster/doc_platform/gateway/internal/authz"
	"github.com/Skotchmaster/doc_platform/gateway/internal/config"
	"github.com/Skotchmaster/doc_platform/gateway/internal/httpserver"
	"github.com/Skotchmaster/doc_platform/gateway/internal/metrics"
	"github.com/Skotchmaster/doc_platform/gateway/internal/repo"
	"github.com/Skotchmaster/doc_platform/gateway/internal/revocation"
	"github.com/Skotchmaster/doc_platform/gateway/internal/search"
	"github.com/Skotchmaster/doc_platform/gateway/internal/service"
	"github.com/Skotchmaster/doc_platform/gateway/internal/storage"
	pkgconfig "github.com/Skotchmaster/doc_platform/pkg/config"
	pkgdb "github.com/Skotchmaster/doc_platform/pkg/db"
	"github.com/Skotchmaster/doc_platform/pkg/events"
	"github.com/Skotchmaster/doc_platform/pkg/logging"
	"github.com/Skotchmaster/doc_platform/pkg/mq"
)

func main() {
	pkgconfig.LoadDotenv("gateway/.env", ".env")
	cfg := config.Load()

	logger := logging.New(os.Getenv("LOG_LEVEL")).With("service", "gateway")
	slog.SetDefault(logger)
	if len(cfg.JWTSecret) == 0 {
		logger.Warn("jwt_secret_missing", "reason", "register and login will fail until JWT_SECRET is set")
	}

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
	if cfg.SeedOnStart {
		if err := rp.Seed(ctx); err != nil {
			log.Fatalf("seed: %v", err)
		}
	}
	cancel()

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()
	revocations := revocation.NewStore(rdb)

	publisher, closeEvents := events.New(cfg.KafkaBrokers)
	defer func() { _ = closeEvents() }()

	files, err := storage.NewLocal(cfg.UploadPath, cfg.UploadMaxFileSize)
	if err != nil {
		log.Fatalf("storage: %v", err)
	}

	docSvc := &service.DocumentService{Repo: rp, Files: files, Events: publisher}
	if cfg.ElasticURL != "" {
		es, err := search.NewClient(cfg.ElasticURL, cfg.ElasticUser, cfg.ElasticPassword)
		if err != nil {
			log.Fatalf("elasticsearch: %v", err)
		}
		docSvc.Index = search.NewIndex(es, cfg.ElasticIndex)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	e := echo.New()
	e.HideBanner = true
	httpserver.Register(e, &httpserver.Deps{
		Logger: logger,
		AuthHandler: &httpserver.AuthHTTP{Svc: &service.AuthService{
			Users:       rp,
			Revocations: revocations,
			Events:      publisher,
			Metrics:     m,
			Secret:      cfg.JWTSecret,
			Expiry:      cfg.JWTExpiry,
		}},
		UserHandler:     &httpserver.UserHTTP{Svc: &service.UserService{Repo: rp}},
		DocumentHandler: &httpserver.DocumentHTTP{Svc: docSvc},
		IngestionHandler: &httpserver.IngestionHTTP{Svc: &service.IngestionService{
			MQ:      mq.NewClient(rdb, cfg.MQTimeout),
			Lookups: rp,
		}},
		Resolver: &authn.Resolver{Revocations: revocations, Identities: rp, Secret: cfg.JWTSecret},
		Gate:     &authz.Gate{Abilities: &ability.Builder{Store: rp}},
		Policies: authz.DefaultPolicies(),
		Metrics:  m,

		LoginRatePerSecond: cfg.LoginRatePerSecond,
		Ready: func(ctx context.Context) error {
			return errors.Join(pkgdb.Ping(ctx, db), revocations.Ping(ctx))
		},
	})

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           e,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
	}

	go func() {
		logger.Info("gateway_listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown_failed", "error", err)
	}
	logger.Info("gateway_stopped")
}
