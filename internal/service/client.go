package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/josh-kwaku/fintrack/internal/domain"
	"github.com/josh-kwaku/fintrack/internal/fx"
	"github.com/josh-kwaku/fintrack/internal/logging"
	"github.com/josh-kwaku/fintrack/internal/refdata"
	"github.com/josh-kwaku/fintrack/internal/repository"
)

// Client is the entry point for callers: it validates cross-entity rules
// before handing entities to the per-table resources.
type Client struct {
	Accounts *repository.Resource[domain.Account]
	Records  *repository.Resource[domain.Record]
	Labels   *repository.Resource[domain.Label]

	refs      *refdata.Sets
	converter *fx.Converter
	now       func() time.Time
}

func NewClient(db repository.Executor, refs *refdata.Sets, rates fx.RateSource) *Client {
	return &Client{
		Accounts:  repository.NewAccountRepository(db),
		Records:   repository.NewRecordRepository(db),
		Labels:    repository.NewLabelRepository(db),
		refs:      refs,
		converter: fx.NewConverter(rates),
		now:       time.Now,
	}
}

func (c *Client) AddLabel(ctx context.Context, l domain.Label) (domain.Label, error) {
	if l.ID == "" {
		l.ID = domain.NewID()
	}
	if err := l.Validate(); err != nil {
		return l, fmt.Errorf("AddLabel: %w", err)
	}
	if _, err := c.Labels.Create(ctx, []domain.Label{l}); err != nil {
		return l, fmt.Errorf("AddLabel: %w", err)
	}

	logging.FromContext(ctx).Info("label created", "label_id", l.ID)
	return l, nil
}

func (c *Client) AddAccount(ctx context.Context, a domain.Account) (domain.Account, error) {
	out, err := c.AddAccounts(ctx, []domain.Account{a})
	if err != nil {
		return a, fmt.Errorf("AddAccount: %w", err)
	}
	return out[0], nil
}

// AddAccounts validates every account and inserts them in one batch. Nothing
// is written when any account is rejected.
func (c *Client) AddAccounts(ctx context.Context, accounts []domain.Account) ([]domain.Account, error) {
	out := make([]domain.Account, len(accounts))
	labels := map[string]bool{}
	for i, a := range accounts {
		if a.ID == "" {
			a.ID = domain.NewID()
		}
		if err := a.Validate(); err != nil {
			return nil, fmt.Errorf("AddAccounts: %w", err)
		}
		if !c.refs.ValidCountry(a.CountryCode) {
			return nil, fmt.Errorf("AddAccounts: account %s country %q: %w", a.ID, a.CountryCode, domain.ErrUnknownCountry)
		}
		if a.HasLabel() {
			labels[*a.LabelID] = true
		}
		out[i] = a
	}

	if err := requireExisting(ctx, c.Labels, labels, domain.ErrUnknownLabel); err != nil {
		return nil, fmt.Errorf("AddAccounts: %w", err)
	}

	if _, err := c.Accounts.Create(ctx, out); err != nil {
		return nil, fmt.Errorf("AddAccounts: %w", err)
	}

	log := logging.FromContext(ctx)
	for _, a := range out {
		log.Info("account created", "account_id", a.ID, "country_code", a.CountryCode)
	}
	return out, nil
}

func (c *Client) AddRecord(ctx context.Context, r domain.Record) (domain.Record, error) {
	out, err := c.AddRecords(ctx, []domain.Record{r})
	if err != nil {
		return r, fmt.Errorf("AddRecord: %w", err)
	}
	return out[0], nil
}

// AddRecords validates every record and inserts them in one batch. Nothing
// is written when any record is rejected.
func (c *Client) AddRecords(ctx context.Context, records []domain.Record) ([]domain.Record, error) {
	out := make([]domain.Record, len(records))
	accounts := map[string]bool{}
	for i, r := range records {
		if r.ID == "" {
			r.ID = domain.NewID()
		}
		r.Date = r.Date.UTC()
		if err := r.Validate(); err != nil {
			return nil, fmt.Errorf("AddRecords: %w", err)
		}
		if !c.refs.ValidCurrency(r.Currency) {
			return nil, fmt.Errorf("AddRecords: record %s currency %q: %w", r.ID, r.Currency, domain.ErrUnknownCurrency)
		}
		accounts[r.AccountID] = true
		out[i] = r
	}

	if err := requireExisting(ctx, c.Accounts, accounts, domain.ErrUnknownAccount); err != nil {
		return nil, fmt.Errorf("AddRecords: %w", err)
	}

	if _, err := c.Records.Create(ctx, out); err != nil {
		return nil, fmt.Errorf("AddRecords: %w", err)
	}

	logging.FromContext(ctx).Info("records created", "count", len(out))
	return out, nil
}

// requireExisting fails with missing when any of ids is not stored.
func requireExisting[T any](ctx context.Context, res *repository.Resource[T], ids map[string]bool, missing error) error {
	if len(ids) == 0 {
		return nil
	}
	want := make([]string, 0, len(ids))
	for k := range ids {
		want = append(want, k)
	}
	sort.Strings(want)

	absent, err := res.Missing(ctx, want...)
	if err != nil {
		return err
	}
	if len(absent) > 0 {
		return fmt.Errorf("%q: %w", absent[0], missing)
	}
	return nil
}

// MostRecentRecords returns, per account, the record with the latest date not
// after endTime (zero means now). Equal dates resolve to the highest record
// id. Accounts without a qualifying record are left out; an empty accountIDs
// covers every account. Results are ordered by account id.
func (c *Client) MostRecentRecords(ctx context.Context, accountIDs []string, endTime time.Time) ([]domain.Record, error) {
	if endTime.IsZero() {
		endTime = c.now()
	}

	var f repository.Filter
	if len(accountIDs) > 0 {
		ids := make([]any, len(accountIDs))
		for i, id := range accountIDs {
			ids[i] = id
		}
		f = repository.Filter{"account_id": ids}
	}

	records, err := c.Records.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("MostRecentRecords: %w", err)
	}
	return latestPerAccount(records, endTime), nil
}

func latestPerAccount(records []domain.Record, endTime time.Time) []domain.Record {
	latest := map[string]domain.Record{}
	for _, r := range records {
		if r.Date.After(endTime) {
			continue
		}
		if cur, ok := latest[r.AccountID]; !ok || r.Newer(cur) {
			latest[r.AccountID] = r
		}
	}

	out := make([]domain.Record, 0, len(latest))
	for _, r := range latest {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AccountID < out[j].AccountID })
	return out
}

// Convert returns a copy of r in target currency; see fx.Converter.Convert.
func (c *Client) Convert(ctx context.Context, r domain.Record, target string, opts fx.Options) (domain.Record, error) {
	if !c.refs.ValidCurrency(target) {
		return r, fmt.Errorf("Convert: %q: %w", target, domain.ErrUnknownCurrency)
	}
	out, err := c.converter.Convert(ctx, r, target, opts)
	if err != nil {
		return r, fmt.Errorf("Convert: %w", err)
	}
	return out, nil
}

// ConvertRecords converts records to target and reports the rate used for
// each one.
func (c *Client) ConvertRecords(ctx context.Context, records []domain.Record, target string, opts fx.Options) ([]fx.Conversion, error) {
	if !c.refs.ValidCurrency(target) {
		return nil, fmt.Errorf("ConvertRecords: %q: %w", target, domain.ErrUnknownCurrency)
	}
	out, err := c.converter.ConvertAllRated(ctx, records, target, opts)
	if err != nil {
		return nil, fmt.Errorf("ConvertRecords: %w", err)
	}
	return out, nil
}

// Balances is the latest record of each account expressed in one currency.
type Balances struct {
	Currency string
	Records  []fx.Conversion
	Total    float64
}

// LatestBalances converts the most recent record of each account to target
// and sums them. Each record converts at its own date unless opts says
// otherwise.
func (c *Client) LatestBalances(ctx context.Context, accountIDs []string, endTime time.Time, target string, opts fx.Options) (*Balances, error) {
	latest, err := c.MostRecentRecords(ctx, accountIDs, endTime)
	if err != nil {
		return nil, fmt.Errorf("LatestBalances: %w", err)
	}
	converted, err := c.ConvertRecords(ctx, latest, target, opts)
	if err != nil {
		return nil, fmt.Errorf("LatestBalances: %w", err)
	}

	total := decimal.Zero
	for _, r := range converted {
		total = total.Add(decimal.NewFromFloat(r.Balance))
	}
	return &Balances{Currency: target, Records: converted, Total: total.Round(2).InexactFloat64()}, nil
}
