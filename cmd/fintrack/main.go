package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"path"

	"github.com/google/subcommands"
	"github.com/joho/godotenv"

	"github.com/josh-kwaku/fintrack/internal/config"
	"github.com/josh-kwaku/fintrack/internal/logging"
)

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("failed to read .env", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	logger := logging.Init("fintrack", cfg.LogLevel, cfg.AppEnv)

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	register(commander, &env{cfg: cfg})

	flag.Parse()
	ctx := logging.WithLogger(context.Background(), logger)
	os.Exit(int(commander.Execute(ctx)))
}

func register(c *subcommands.Commander, e *env) {
	c.Register(&initCmd{env: e}, "store")
	c.Register(&importCmd{env: e}, "store")
	c.Register(&exportCmd{env: e}, "store")
	c.Register(&deleteCmd{env: e}, "store")

	c.Register(&addLabelCmd{env: e}, "entities")
	c.Register(&addAccountCmd{env: e}, "entities")
	c.Register(&addRecordCmd{env: e}, "entities")
	c.Register(&listAccountsCmd{env: e}, "entities")
	c.Register(&listRecordsCmd{env: e}, "entities")

	c.Register(&latestCmd{env: e}, "balances")
	c.Register(&convertCmd{env: e}, "balances")
}
