package config

import (
	"os"
	"strconv"
	"time"

	pkgconfig "github.com/Skotchmaster/doc_platform/pkg/config"
)

type Config struct {
	ListenAddr  string
	DatabaseURL string

	// JWTSecret may be empty; token issuance then fails with a configuration error.
	JWTSecret []byte
	JWTExpiry string

	Redis pkgconfig.Redis

	KafkaBrokers []string

	ElasticURL      string
	ElasticUser     string
	ElasticPassword string
	ElasticIndex    string

	UploadPath        string
	UploadMaxFileSize int64

	LoginRatePerSecond float64
	MQTimeout          time.Duration
	SeedOnStart        bool
}

func Load() *Config {
	cfg := &Config{
		ListenAddr:  pkgconfig.EnvDefault("GATEWAY_ADDR", ":8080"),
		DatabaseURL: pkgconfig.MustNonEmpty(os.Getenv("DATABASE_URL"), "DATABASE_URL"),

		JWTSecret: []byte(os.Getenv("JWT_SECRET")),
		JWTExpiry: pkgconfig.EnvDefault("JWT_EXPIRY", "2h"),

		Redis: pkgconfig.LoadRedis(),

		KafkaBrokers: pkgconfig.CSV(os.Getenv("KAFKA_BROKERS")),

		ElasticURL:      os.Getenv("ELASTIC_URL"),
		ElasticUser:     os.Getenv("ELASTIC_USER"),
		ElasticPassword: os.Getenv("ELASTIC_PASSWORD"),
		ElasticIndex:    pkgconfig.EnvDefault("ELASTIC_INDEX", "documents"),

		UploadPath:        pkgconfig.EnvDefault("UPLOAD_PATH", "./uploads"),
		UploadMaxFileSize: int64(pkgconfig.EnvIntDefault("UPLOAD_MAX_FILE_SIZE", 1<<20)),

		LoginRatePerSecond: floatDefault("LOGIN_RATE_PER_SECOND", 5),
		MQTimeout:          pkgconfig.EnvDurationDefault("MQ_TIMEOUT", 10*time.Second),
		SeedOnStart:        pkgconfig.EnvDefault("SEED_ON_START", "true") == "true",
	}
	pkgconfig.MustNonEmpty(cfg.Redis.Addr, "REDIS_ADDR")
	return cfg
}

func floatDefault(key string, def float64) float64 {
	v, err := strconv.ParseFloat(os.Getenv(key), 64)
	if err != nil || v < 0 {
		return def
	}
	return v
}
