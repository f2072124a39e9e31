package config

import (
	"os"
	"time"

	pkgconfig "github.com/Skotchmaster/doc_platform/pkg/config"
)

type Config struct {
	DatabaseURL  string
	Redis        pkgconfig.Redis
	KafkaBrokers []string

	// Processing of a new ingestion starts after a random whole-second delay in
	// [MinDelay, MaxDelay].
	MinDelay time.Duration
	MaxDelay time.Duration
}

func Load() *Config {
	cfg := &Config{
		DatabaseURL:  pkgconfig.MustNonEmpty(os.Getenv("DATABASE_URL"), "DATABASE_URL"),
		Redis:        pkgconfig.LoadRedis(),
		KafkaBrokers: pkgconfig.CSV(os.Getenv("KAFKA_BROKERS")),
		MinDelay:     pkgconfig.EnvDurationDefault("INGESTION_MIN_DELAY", 20*time.Second),
		MaxDelay:     pkgconfig.EnvDurationDefault("INGESTION_MAX_DELAY", 30*time.Second),
	}
	pkgconfig.MustNonEmpty(cfg.Redis.Addr, "REDIS_ADDR")
	if cfg.MaxDelay < cfg.MinDelay {
		cfg.MaxDelay = cfg.MinDelay
	}
	return cfg
}
