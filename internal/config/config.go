package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	DBSource string
	Port     string
	Env      string

	MaxPurchaseAttempts int
	RetryDelayMin       time.Duration
	RetryDelayMax       time.Duration
}

func Load() (*Config, error) {
	dbSource := os.Getenv("DB_SOURCE")
	if dbSource == "" {
		return nil, fmt.Errorf("DB_SOURCE environment variable is required")
	}

	port := os.Getenv("SERVER_PORT")
	if port == "" {
		port = "8080"
	}

	env := os.Getenv("ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	maxAttempts, err := intEnv("MAX_PURCHASE_ATTEMPTS", 3)
	if err != nil {
		return nil, err
	}
	if maxAttempts < 1 {
		return nil, fmt.Errorf("MAX_PURCHASE_ATTEMPTS must be at least 1")
	}

	delayMinMs, err := intEnv("RETRY_DELAY_MIN_MS", 100)
	if err != nil {
		return nil, err
	}
	delayMaxMs, err := intEnv("RETRY_DELAY_MAX_MS", 2500)
	if err != nil {
		return nil, err
	}
	if delayMaxMs < delayMinMs {
		return nil, fmt.Errorf("RETRY_DELAY_MAX_MS must not be below RETRY_DELAY_MIN_MS")
	}

	return &Config{
		DBSource:            dbSource,
		Port:                port,
		Env:                 env,
		MaxPurchaseAttempts: maxAttempts,
		RetryDelayMin:       time.Duration(delayMinMs) * time.Millisecond,
		RetryDelayMax:       time.Duration(delayMaxMs) * time.Millisecond,
	}, nil
}

func intEnv(name string, fallback int) (int, error) {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", name, err)
	}
	return v, nil
}
