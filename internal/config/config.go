// Package config содержит логику чтения конфигурации сервиса магазина.
package config

import (
	"flag"
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config содержит параметры конфигурации сервиса магазина.
type Config struct {
	RunAddress   string `env:"RUN_ADDRESS"`
	DatabaseURI  string `env:"DATABASE_URI"`
	AuthSecret   string `env:"AUTH_SECRET"`
	AdminEmail   string `env:"ADMIN_EMAIL"`
	AtomicLedger bool   `env:"ATOMIC_LEDGER"`
	S3Bucket     string `env:"S3_BUCKET"`
	S3Region     string `env:"S3_REGION"`
	S3Endpoint   string `env:"S3_ENDPOINT"`
}

// Parse считывает конфигурацию из флагов командной строки и переменных окружения.
func Parse() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	envRunAddress := cfg.RunAddress
	envDatabaseURI := cfg.DatabaseURI
	envAuthSecret := cfg.AuthSecret
	envAdminEmail := cfg.AdminEmail
	envAtomicLedger := cfg.AtomicLedger
	envS3Bucket := cfg.S3Bucket
	envS3Region := cfg.S3Region
	envS3Endpoint := cfg.S3Endpoint

	flag.StringVar(&cfg.RunAddress, "a", "localhost:8080", "address and port for HTTP server")
	flag.StringVar(&cfg.DatabaseURI, "d", "", "database URI")
	flag.StringVar(&cfg.AuthSecret, "s", "", "secret key for auth cookie signing")
	flag.StringVar(&cfg.AdminEmail, "m", "", "email of the store administrator")
	flag.BoolVar(&cfg.AtomicLedger, "t", false, "run ledger updates in a single transaction")
	flag.StringVar(&cfg.S3Bucket, "b", "", "S3 bucket for product images")
	flag.StringVar(&cfg.S3Region, "g", "", "S3 region")
	flag.StringVar(&cfg.S3Endpoint, "e", "", "custom S3 endpoint (MinIO etc.)")

	flag.Parse()

	if envRunAddress != "" {
		cfg.RunAddress = envRunAddress
	}
	if envDatabaseURI != "" {
		cfg.DatabaseURI = envDatabaseURI
	}
	if envAuthSecret != "" {
		cfg.AuthSecret = envAuthSecret
	}
	if envAdminEmail != "" {
		cfg.AdminEmail = envAdminEmail
	}
	if envAtomicLedger {
		cfg.AtomicLedger = true
	}
	if envS3Bucket != "" {
		cfg.S3Bucket = envS3Bucket
	}
	if envS3Region != "" {
		cfg.S3Region = envS3Region
	}
	if envS3Endpoint != "" {
		cfg.S3Endpoint = envS3Endpoint
	}

	if cfg.RunAddress == "" {
		cfg.RunAddress = "localhost:8080"
	}

	return cfg, nil
}
