package main

import (
	"context"
	"flag"
	"fmt"
	"strconv"

	"github.com/google/subcommands"

	"github.com/josh-kwaku/fintrack/internal/csvio"
	"github.com/josh-kwaku/fintrack/internal/domain"
	"github.com/josh-kwaku/fintrack/internal/fx"
	"github.com/josh-kwaku/fintrack/internal/repository"
)

type initCmd struct{ env *env }

func (*initCmd) Name() string     { return "init" }
func (*initCmd) Synopsis() string { return "create the labels, accounts and records tables" }
func (*initCmd) Usage() string    { return "init\n\n  Creates missing tables. Existing data is kept.\n" }

func (*initCmd) SetFlags(*flag.FlagSet) {}

func (c *initCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if _, err := c.env.open(); err != nil {
		return fail(ctx, err)
	}
	if err := c.env.store.EnsureSchema(ctx); err != nil {
		return fail(ctx, err)
	}
	fmt.Fprintf(c.env.stdout(), "schema ready (%s)\n", c.env.store.Dialect())
	return subcommands.ExitSuccess
}

type addLabelCmd struct {
	env         *env
	id          string
	name        string
	description string
}

func (*addLabelCmd) Name() string     { return "add-label" }
func (*addLabelCmd) Synopsis() string { return "add a label" }
func (*addLabelCmd) Usage() string {
	return "add-label -name <name> [-id <id>] [-description <text>]\n"
}

func (c *addLabelCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.id, "id", "", "label id (generated when empty)")
	f.StringVar(&c.name, "name", "", "label name (required)")
	f.StringVar(&c.description, "description", "", "free text description")
}

func (c *addLabelCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	client, err := c.env.open()
	if err != nil {
		return fail(ctx, err)
	}
	l, err := client.AddLabel(ctx, domain.Label{ID: c.id, Name: c.name, Description: c.description})
	if err != nil {
		return fail(ctx, err)
	}
	fmt.Fprintln(c.env.stdout(), l.ID)
	return subcommands.ExitSuccess
}

type addAccountCmd struct {
	env     *env
	id      string
	name    string
	country string
	label   string
}

func (*addAccountCmd) Name() string     { return "add-account" }
func (*addAccountCmd) Synopsis() string { return "add an account" }
func (*addAccountCmd) Usage() string {
	return `add-account -name <name> -country <alpha-3> [-id <id>] [-label <label id>]

  The country must be an ISO 3166 alpha-3 code such as USA or DEU.
`
}

func (c *addAccountCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.id, "id", "", "account id (generated when empty)")
	f.StringVar(&c.name, "name", "", "account name (required)")
	f.StringVar(&c.country, "country", "", "ISO alpha-3 country code (required)")
	f.StringVar(&c.label, "label", "", "id of an existing label")
}

func (c *addAccountCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	client, err := c.env.open()
	if err != nil {
		return fail(ctx, err)
	}
	a := domain.Account{ID: c.id, Name: c.name, CountryCode: c.country}
	if c.label != "" {
		a.LabelID = &c.label
	}
	a, err = client.AddAccount(ctx, a)
	if err != nil {
		return fail(ctx, err)
	}
	fmt.Fprintln(c.env.stdout(), a.ID)
	return subcommands.ExitSuccess
}

type addRecordCmd struct {
	env      *env
	id       string
	account  string
	date     string
	balance  string
	currency string
}

func (*addRecordCmd) Name() string     { return "add-record" }
func (*addRecordCmd) Synopsis() string { return "record an account balance" }
func (*addRecordCmd) Usage() string {
	return "add-record -account <id> -balance <amount> -currency <code> [-date YYYY-MM-DD] [-id <id>]\n"
}

func (c *addRecordCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.id, "id", "", "record id (generated when empty)")
	f.StringVar(&c.account, "account", "", "account id (required)")
	f.StringVar(&c.date, "date", "", "balance date, YYYY-MM-DD or RFC 3339 (default now)")
	f.StringVar(&c.balance, "balance", "", "balance amount (required)")
	f.StringVar(&c.currency, "currency", "", "ISO currency code (required)")
}

func (c *addRecordCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	client, err := c.env.open()
	if err != nil {
		return fail(ctx, err)
	}
	balance, err := strconv.ParseFloat(c.balance, 64)
	if err != nil {
		return fail(ctx, fmt.Errorf("balance %q: %w", c.balance, domain.ErrValidation))
	}
	r := domain.Record{ID: c.id, AccountID: c.account, Balance: balance, Currency: c.currency}
	if c.date == "" {
		r.Date = nowFunc()
	} else if r.Date, err = csvio.ParseDate(c.date); err != nil {
		return fail(ctx, err)
	}

	r, err = client.AddRecord(ctx, r)
	if err != nil {
		return fail(ctx, err)
	}
	fmt.Fprintln(c.env.stdout(), r.ID)
	return subcommands.ExitSuccess
}

type listAccountsCmd struct {
	env       *env
	countries listFlag
	labels    listFlag
}

func (*listAccountsCmd) Name() string     { return "list-accounts" }
func (*listAccountsCmd) Synopsis() string { return "list accounts" }
func (*listAccountsCmd) Usage() string    { return "list-accounts [-country <code>]... [-label <id>]...\n" }

func (c *listAccountsCmd) SetFlags(f *flag.FlagSet) {
	f.Var(&c.countries, "country", "only these countries (repeatable)")
	f.Var(&c.labels, "label", "only these labels (repeatable)")
}

func (c *listAccountsCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	client, err := c.env.open()
	if err != nil {
		return fail(ctx, err)
	}
	f := repository.Filter{}
	if len(c.countries) > 0 {
		f["country_codes"] = c.countries.values()
	}
	if len(c.labels) > 0 {
		f["label_ids"] = c.labels.values()
	}
	accounts, err := client.Accounts.List(ctx, f)
	if err != nil {
		return fail(ctx, err)
	}

	w := c.env.table()
	fmt.Fprintln(w, "ID\tNAME\tCOUNTRY\tLABEL")
	for _, a := range accounts {
		label := ""
		if a.LabelID != nil {
			label = *a.LabelID
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", a.ID, a.Name, a.CountryCode, label)
	}
	w.Flush()
	return subcommands.ExitSuccess
}

type listRecordsCmd struct {
	env        *env
	accounts   listFlag
	currencies listFlag
}

func (*listRecordsCmd) Name() string     { return "list-records" }
func (*listRecordsCmd) Synopsis() string { return "list balance records" }
func (*listRecordsCmd) Usage() string {
	return `list-records [-account <id>]... [-currency <code>]...

  Filters on different fields must all match; several values for the same
  field match any of them.
`
}

func (c *listRecordsCmd) SetFlags(f *flag.FlagSet) {
	f.Var(&c.accounts, "account", "only these accounts (repeatable)")
	f.Var(&c.currencies, "currency", "only these currencies (repeatable)")
}

func (c *listRecordsCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	client, err := c.env.open()
	if err != nil {
		return fail(ctx, err)
	}
	f := repository.Filter{}
	if len(c.accounts) > 0 {
		f["account_ids"] = c.accounts.values()
	}
	if len(c.currencies) > 0 {
		f["currencies"] = c.currencies.values()
	}
	records, err := client.Records.List(ctx, f)
	if err != nil {
		return fail(ctx, err)
	}
	c.env.printRecords(records)
	return subcommands.ExitSuccess
}

func (e *env) printRecords(records []domain.Record) {
	w := e.table()
	fmt.Fprintln(w, "ID\tDATE\tACCOUNT\tBALANCE")
	for _, r := range records {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", r.ID, r.Date.Format("2006-01-02"), r.AccountID, formatBalance(r.Balance, r.Currency))
	}
	w.Flush()
}

func (e *env) printConversions(conv []fx.Conversion) {
	w := e.table()
	fmt.Fprintln(w, "ID\tDATE\tACCOUNT\tBALANCE\tRATE")
	for _, c := range conv {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", c.ID, c.Date.Format("2006-01-02"), c.AccountID,
			formatBalance(c.Balance, c.Currency), strconv.FormatFloat(c.Rate, 'f', -1, 64))
	}
	w.Flush()
}
