package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/google/subcommands"

	"github.com/josh-kwaku/fintrack/internal/csvio"
	"github.com/josh-kwaku/fintrack/internal/domain"
	"github.com/josh-kwaku/fintrack/internal/service"
)

const (
	kindAccounts = "accounts"
	kindRecords  = "records"
	kindLabels   = "labels"
)

type importCmd struct {
	env  *env
	kind string
	file string
}

func (*importCmd) Name() string     { return "import" }
func (*importCmd) Synopsis() string { return "import accounts or records from CSV" }
func (*importCmd) Usage() string {
	return `import -kind accounts|records [-file <path>]

  Reads CSV with a header row from -file or stdin. Every row is validated
  before anything is written; one bad row rejects the whole file.
`
}

func (c *importCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.kind, "kind", kindRecords, "accounts or records")
	f.StringVar(&c.file, "file", "", "CSV file (default stdin)")
}

func (c *importCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	client, err := c.env.open()
	if err != nil {
		return fail(ctx, err)
	}
	var in io.Reader = os.Stdin
	if c.file != "" {
		f, err := os.Open(c.file)
		if err != nil {
			return fail(ctx, err)
		}
		defer f.Close()
		in = f
	}

	n, err := importCSV(ctx, client, c.kind, in)
	if err != nil {
		return fail(ctx, err)
	}
	fmt.Fprintf(c.env.stdout(), "imported %d %s\n", n, c.kind)
	return subcommands.ExitSuccess
}

func importCSV(ctx context.Context, client *service.Client, kind string, in io.Reader) (int, error) {
	switch kind {
	case kindAccounts:
		accounts, err := csvio.ReadAccounts(in)
		if err != nil {
			return 0, err
		}
		if len(accounts) == 0 {
			return 0, nil
		}
		out, err := client.AddAccounts(ctx, accounts)
		return len(out), err
	case kindRecords:
		records, err := csvio.ReadRecords(in)
		if err != nil {
			return 0, err
		}
		if len(records) == 0 {
			return 0, nil
		}
		out, err := client.AddRecords(ctx, records)
		return len(out), err
	default:
		return 0, fmt.Errorf("kind %q: %w", kind, domain.ErrValidation)
	}
}

type exportCmd struct {
	env  *env
	kind string
	file string
}

func (*exportCmd) Name() string     { return "export" }
func (*exportCmd) Synopsis() string { return "export accounts or records as CSV" }
func (*exportCmd) Usage() string    { return "export -kind accounts|records [-file <path>]\n" }

func (c *exportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.kind, "kind", kindRecords, "accounts or records")
	f.StringVar(&c.file, "file", "", "output file (default stdout)")
}

func (c *exportCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	client, err := c.env.open()
	if err != nil {
		return fail(ctx, err)
	}
	out := c.env.stdout()
	if c.file != "" {
		f, err := os.Create(c.file)
		if err != nil {
			return fail(ctx, err)
		}
		defer f.Close()
		out = f
	}

	switch c.kind {
	case kindAccounts:
		accounts, err := client.Accounts.List(ctx, nil)
		if err == nil {
			err = csvio.WriteAccounts(out, accounts)
		}
		if err != nil {
			return fail(ctx, err)
		}
	case kindRecords:
		records, err := client.Records.List(ctx, nil)
		if err == nil {
			err = csvio.WriteRecords(out, records)
		}
		if err != nil {
			return fail(ctx, err)
		}
	default:
		return fail(ctx, fmt.Errorf("kind %q: %w", c.kind, domain.ErrValidation))
	}
	return subcommands.ExitSuccess
}

type deleteCmd struct {
	env  *env
	kind string
}

func (*deleteCmd) Name() string     { return "delete" }
func (*deleteCmd) Synopsis() string { return "delete labels, accounts or records by id" }
func (*deleteCmd) Usage() string {
	return `delete -kind labels|accounts|records <id>...

  Unknown ids are ignored. Accounts that still have records cannot be deleted.
`
}

func (c *deleteCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.kind, "kind", kindRecords, "labels, accounts or records")
}

func (c *deleteCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	client, err := c.env.open()
	if err != nil {
		return fail(ctx, err)
	}
	ids := f.Args()

	var n int64
	switch c.kind {
	case kindLabels:
		n, err = client.Labels.Delete(ctx, ids...)
	case kindAccounts:
		n, err = client.Accounts.Delete(ctx, ids...)
	case kindRecords:
		n, err = client.Records.Delete(ctx, ids...)
	default:
		err = fmt.Errorf("kind %q: %w", c.kind, domain.ErrValidation)
	}
	if err != nil {
		return fail(ctx, err)
	}
	fmt.Fprintf(c.env.stdout(), "deleted %d %s\n", n, c.kind)
	return subcommands.ExitSuccess
}
