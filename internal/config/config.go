package config

import (
	"fmt"
	"time"

	env "github.com/caarlos0/env/v11"

	"github.com/josh-kwaku/fintrack/internal/fx"
	"github.com/josh-kwaku/fintrack/internal/store"
)

type Config struct {
	Store      string `env:"FINTRACK_STORE" envDefault:"sqlite"`
	SQLitePath string `env:"SQLITE_PATH" envDefault:"fintrack.db"`

	DBHost     string `env:"DB_HOST" envDefault:"localhost"`
	DBPort     int    `env:"DB_PORT" envDefault:"5432"`
	DBName     string `env:"DB_NAME" envDefault:"fintrack"`
	DBUser     string `env:"DB_USER"`
	DBPassword string `env:"DB_PASSWORD"`
	DBSSLMode  string `env:"DB_SSLMODE" envDefault:"disable"`

	DBConnectTimeoutS  int `env:"DB_CONNECT_TIMEOUT_S" envDefault:"5"`
	DBConnectAttempts  int `env:"DB_CONNECT_ATTEMPTS" envDefault:"5"`
	DBConnectBackoffMS int `env:"DB_CONNECT_BACKOFF_MS" envDefault:"500"`

	RatesURL       string `env:"RATES_URL" envDefault:"https://api.exchangeratesapi.io/v1"`
	RatesAccessKey string `env:"RATES_ACCESS_KEY"`
	RatesTimeoutS  int    `env:"RATES_TIMEOUT_S" envDefault:"10"`
	RatesAttempts  int    `env:"RATES_ATTEMPTS" envDefault:"3"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	AppEnv   string `env:"APP_ENV" envDefault:"production"`
}

func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}
	if _, err := store.ParseDialect(cfg.Store); err != nil {
		return nil, fmt.Errorf("config.Load: FINTRACK_STORE: %w", err)
	}
	return &cfg, nil
}

func (c *Config) StoreOptions() store.Options {
	return store.Options{
		Dialect:         store.Dialect(c.Store),
		Path:            c.SQLitePath,
		Host:            c.DBHost,
		Port:            c.DBPort,
		Database:        c.DBName,
		Username:        c.DBUser,
		Password:        c.DBPassword,
		SSLMode:         c.DBSSLMode,
		ConnectTimeout:  time.Duration(c.DBConnectTimeoutS) * time.Second,
		ConnectAttempts: c.DBConnectAttempts,
		ConnectBackoff:  time.Duration(c.DBConnectBackoffMS) * time.Millisecond,
	}
}

func (c *Config) RatesOptions() fx.ClientOptions {
	return fx.ClientOptions{
		BaseURL:   c.RatesURL,
		AccessKey: c.RatesAccessKey,
		Timeout:   time.Duration(c.RatesTimeoutS) * time.Second,
		Attempts:  c.RatesAttempts,
	}
}
