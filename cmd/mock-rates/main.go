package main

import (
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/josh-kwaku/fintrack/internal/logging"
	"github.com/josh-kwaku/fintrack/internal/middleware"
	"github.com/josh-kwaku/fintrack/internal/ratesrv"
)

type config struct {
	Addr     string `env:"MOCK_RATES_ADDR" envDefault:":8081"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	AppEnv   string `env:"APP_ENV" envDefault:"development"`
}

func main() {
	cfg, err := env.ParseAs[config]()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	logging.Init("mock-rates", cfg.LogLevel, cfg.AppEnv)

	h := middleware.Chain(ratesrv.New(nil).Handler(),
		middleware.Tracing,
		middleware.Logging,
		middleware.Recovery,
	)
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
	}

	slog.Info("mock rates started", "addr", cfg.Addr)
	if err := srv.ListenAndServe(); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}
