package fx

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/josh-kwaku/fintrack/internal/domain"
)

// Options selects where conversion rates come from. Rates wins over Date;
// with neither, each record is converted at its own date.
type Options struct {
	Date  time.Time
	Rates *RateTable
}

type Converter struct {
	source RateSource
}

func NewConverter(source RateSource) *Converter {
	return &Converter{source: source}
}

// Convert returns a copy of rec expressed in target. The rate table is keyed
// by the record's currency with target as base, so the new balance is
// balance / rate rounded to 2 decimals.
func (c *Converter) Convert(ctx context.Context, rec domain.Record, target string, opts Options) (domain.Record, error) {
	if opts.Rates == nil && rec.Currency == target {
		return rec, nil
	}

	table := opts.Rates
	if table == nil {
		date := opts.Date
		if date.IsZero() {
			date = rec.Date
		}
		var err error
		table, err = c.fetch(ctx, target, date, []string{rec.Currency})
		if err != nil {
			return rec, fmt.Errorf("Convert %s: %w", rec.ID, err)
		}
	}

	out, err := Apply(rec, target, table)
	if err != nil {
		return rec, fmt.Errorf("Convert: %w", err)
	}
	return out, nil
}

// Conversion is a converted record together with the rate it was divided
// by: units of the original currency per unit of the target.
type Conversion struct {
	domain.Record
	Rate float64
}

// ConvertAll converts every record to target. With opts.Date set the rate
// table is fetched once; otherwise once per distinct record date.
func (c *Converter) ConvertAll(ctx context.Context, recs []domain.Record, target string, opts Options) ([]domain.Record, error) {
	conv, err := c.ConvertAllRated(ctx, recs, target, opts)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Record, len(conv))
	for i, cv := range conv {
		out[i] = cv.Record
	}
	return out, nil
}

// ConvertAllRated is ConvertAll keeping the rate applied to each record.
func (c *Converter) ConvertAllRated(ctx context.Context, recs []domain.Record, target string, opts Options) ([]Conversion, error) {
	out := make([]Conversion, len(recs))

	if opts.Rates == nil && !opts.Date.IsZero() {
		table, err := c.fetch(ctx, target, opts.Date, currencies(recs, target))
		if err != nil {
			return nil, fmt.Errorf("ConvertAll: %w", err)
		}
		opts.Rates = table
	}

	tables := map[string]*RateTable{}
	for i, rec := range recs {
		table := opts.Rates
		if table == nil {
			if rec.Currency == target {
				out[i] = Conversion{Record: rec, Rate: 1}
				continue
			}
			day := dateParam(rec.Date)
			if tables[day] == nil {
				t, err := c.fetch(ctx, target, rec.Date, currenciesOn(recs, target, day))
				if err != nil {
					return nil, fmt.Errorf("ConvertAll: %w", err)
				}
				tables[day] = t
			}
			table = tables[day]
		}

		conv, err := applyRated(rec, target, table)
		if err != nil {
			return nil, fmt.Errorf("ConvertAll: %w", err)
		}
		out[i] = conv
	}
	return out, nil
}

// Apply converts rec with an already known rate table. A record already in
// target keeps its balance whatever the table says.
func Apply(rec domain.Record, target string, table *RateTable) (domain.Record, error) {
	conv, err := applyRated(rec, target, table)
	if err != nil {
		return rec, err
	}
	return conv.Record, nil
}

func applyRated(rec domain.Record, target string, table *RateTable) (Conversion, error) {
	out := rec
	out.Currency = target
	if rec.Currency == target {
		return Conversion{Record: out, Rate: 1}, nil
	}

	rate, ok := table.Rates[rec.Currency]
	if !ok || rate <= 0 {
		return Conversion{Record: rec}, fmt.Errorf("record %s: %s per %s on %s: %w",
			rec.ID, rec.Currency, target, table.Date, domain.ErrRateUnavailable)
	}

	out.Balance = decimal.NewFromFloat(rec.Balance).
		Div(decimal.NewFromFloat(rate)).
		Round(2).
		InexactFloat64()
	return Conversion{Record: out, Rate: rate}, nil
}

func (c *Converter) fetch(ctx context.Context, base string, date time.Time, symbols []string) (*RateTable, error) {
	if c.source == nil {
		return nil, fmt.Errorf("no rate source configured: %w", domain.ErrExternalService)
	}
	return c.source.Rates(ctx, base, date, symbols)
}

func currencies(recs []domain.Record, target string) []string {
	return collect(recs, target, func(domain.Record) bool { return true })
}

func currenciesOn(recs []domain.Record, target, day string) []string {
	return collect(recs, target, func(r domain.Record) bool { return dateParam(r.Date) == day })
}

func collect(recs []domain.Record, target string, keep func(domain.Record) bool) []string {
	seen := map[string]bool{}
	var out []string
	for _, r := range recs {
		if r.Currency == target || seen[r.Currency] || !keep(r) {
			continue
		}
		seen[r.Currency] = true
		out = append(out, r.Currency)
	}
	sort.Strings(out)
	return out
}
