package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/Rhymond/go-money"
	"github.com/google/subcommands"
	"github.com/shopspring/decimal"

	"github.com/josh-kwaku/fintrack/internal/config"
	"github.com/josh-kwaku/fintrack/internal/domain"
	"github.com/josh-kwaku/fintrack/internal/fx"
	"github.com/josh-kwaku/fintrack/internal/refdata"
	"github.com/josh-kwaku/fintrack/internal/service"
	"github.com/josh-kwaku/fintrack/internal/store"
)

// env lazily wires the store and client shared by every command.
type env struct {
	cfg    *config.Config
	store  *store.Store
	client *service.Client
	out    io.Writer
}

func (e *env) open() (*service.Client, error) {
	if e.client != nil {
		return e.client, nil
	}
	refs, err := refdata.Load()
	if err != nil {
		return nil, err
	}
	s, err := store.Open(e.cfg.StoreOptions())
	if err != nil {
		return nil, err
	}
	e.store = s
	e.client = service.NewClient(s, refs, fx.NewClient(e.cfg.RatesOptions()))
	return e.client, nil
}

func (e *env) stdout() io.Writer {
	if e.out != nil {
		return e.out
	}
	return os.Stdout
}

func (e *env) table() *tabwriter.Writer {
	return tabwriter.NewWriter(e.stdout(), 0, 4, 2, ' ', 0)
}

// fail reports err and maps validation problems to a usage error.
func fail(_ context.Context, err error) subcommands.ExitStatus {
	fmt.Fprintln(os.Stderr, "Error:", err)
	if errors.Is(err, domain.ErrValidation) {
		return subcommands.ExitUsageError
	}
	return subcommands.ExitFailure
}

// formatBalance renders amount with the currency's symbol and fraction digits.
func formatBalance(amount float64, code string) string {
	cur := *money.New(0, code).Currency()
	minor := decimal.NewFromFloat(amount).Shift(int32(cur.Fraction)).Round(0)
	return cur.Formatter().Format(minor.IntPart())
}

// listFlag collects a repeatable or comma separated flag.
type listFlag []string

func (l *listFlag) String() string { return strings.Join(*l, ",") }

func (l *listFlag) Set(v string) error {
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			*l = append(*l, part)
		}
	}
	return nil
}

func (l listFlag) values() []any {
	out := make([]any, len(l))
	for i, v := range l {
		out[i] = v
	}
	return out
}
