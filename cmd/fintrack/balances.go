package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/google/subcommands"

	"github.com/josh-kwaku/fintrack/internal/csvio"
	"github.com/josh-kwaku/fintrack/internal/fx"
	"github.com/josh-kwaku/fintrack/internal/repository"
)

var nowFunc = time.Now

type latestCmd struct {
	env      *env
	accounts listFlag
	at       string
	to       string
	rateDate string
}

func (*latestCmd) Name() string     { return "latest" }
func (*latestCmd) Synopsis() string { return "show the most recent balance of each account" }
func (*latestCmd) Usage() string {
	return `latest [-account <id>]... [-at <date>] [-to <currency> [-rate-date <date>]]

  Picks, for each account, the newest record dated on or before -at (default
  now). With -to the balances are converted and totalled; each record uses
  the rates of its own date unless -rate-date is given.
`
}

func (c *latestCmd) SetFlags(f *flag.FlagSet) {
	f.Var(&c.accounts, "account", "only these accounts (repeatable, default all)")
	f.StringVar(&c.at, "at", "", "cut-off date, YYYY-MM-DD or RFC 3339")
	f.StringVar(&c.to, "to", "", "convert balances to this currency")
	f.StringVar(&c.rateDate, "rate-date", "", "use exchange rates of this date for every record")
}

func (c *latestCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	client, err := c.env.open()
	if err != nil {
		return fail(ctx, err)
	}
	var at time.Time
	if c.at != "" {
		if at, err = csvio.ParseDate(c.at); err != nil {
			return fail(ctx, err)
		}
	}

	if c.to == "" {
		records, err := client.MostRecentRecords(ctx, c.accounts, at)
		if err != nil {
			return fail(ctx, err)
		}
		c.env.printRecords(records)
		return subcommands.ExitSuccess
	}

	var opts fx.Options
	if c.rateDate != "" {
		if opts.Date, err = csvio.ParseDate(c.rateDate); err != nil {
			return fail(ctx, err)
		}
	}
	balances, err := client.LatestBalances(ctx, c.accounts, at, c.to, opts)
	if err != nil {
		return fail(ctx, err)
	}
	c.env.printConversions(balances.Records)
	fmt.Fprintf(c.env.stdout(), "total: %s\n", formatBalance(balances.Total, balances.Currency))
	return subcommands.ExitSuccess
}

type convertCmd struct {
	env      *env
	accounts listFlag
	to       string
	date     string
}

func (*convertCmd) Name() string     { return "convert" }
func (*convertCmd) Synopsis() string { return "show records converted to another currency" }
func (*convertCmd) Usage() string {
	return `convert -to <currency> [-account <id>]... [-date <date>]

  Prints converted copies; stored records are not modified.
`
}

func (c *convertCmd) SetFlags(f *flag.FlagSet) {
	f.Var(&c.accounts, "account", "only these accounts (repeatable)")
	f.StringVar(&c.to, "to", "", "target currency (required)")
	f.StringVar(&c.date, "date", "", "use exchange rates of this date for every record")
}

func (c *convertCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.to == "" {
		return subcommands.ExitUsageError
	}
	client, err := c.env.open()
	if err != nil {
		return fail(ctx, err)
	}
	var opts fx.Options
	if c.date != "" {
		if opts.Date, err = csvio.ParseDate(c.date); err != nil {
			return fail(ctx, err)
		}
	}

	f := repository.Filter{}
	if len(c.accounts) > 0 {
		f["account_ids"] = c.accounts.values()
	}
	records, err := client.Records.List(ctx, f)
	if err != nil {
		return fail(ctx, err)
	}
	converted, err := client.ConvertRecords(ctx, records, c.to, opts)
	if err != nil {
		return fail(ctx, err)
	}
	c.env.printConversions(converted)
	return subcommands.ExitSuccess
}
