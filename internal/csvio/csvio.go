// Package csvio reads and writes accounts and records as CSV with a header
// row. Column order in input files is free; unknown columns are ignored.
package csvio

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/josh-kwaku/fintrack/internal/domain"
)

var (
	recordHeader  = []string{"id", "date", "account_id", "balance", "currency"}
	accountHeader = []string{"id", "name", "country_code", "label_id"}
)

func ReadRecords(r io.Reader) ([]domain.Record, error) {
	var out []domain.Record
	err := read(r, []string{"date", "account_id", "balance", "currency"}, func(line int, get func(string) string) error {
		date, err := ParseDate(get("date"))
		if err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}
		balance, err := strconv.ParseFloat(get("balance"), 64)
		if err != nil {
			return fmt.Errorf("line %d: balance %q: %w", line, get("balance"), domain.ErrValidation)
		}
		out = append(out, domain.Record{
			ID:        get("id"),
			Date:      date,
			AccountID: get("account_id"),
			Balance:   balance,
			Currency:  strings.ToUpper(get("currency")),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("ReadRecords: %w", err)
	}
	return out, nil
}

func WriteRecords(w io.Writer, records []domain.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(recordHeader); err != nil {
		return fmt.Errorf("WriteRecords: %w", err)
	}
	for _, r := range records {
		row := []string{
			r.ID,
			r.Date.UTC().Format(time.RFC3339),
			r.AccountID,
			strconv.FormatFloat(r.Balance, 'f', -1, 64),
			r.Currency,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("WriteRecords: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("WriteRecords: %w", err)
	}
	return nil
}

func ReadAccounts(r io.Reader) ([]domain.Account, error) {
	var out []domain.Account
	err := read(r, []string{"name", "country_code"}, func(_ int, get func(string) string) error {
		a := domain.Account{
			ID:          get("id"),
			Name:        get("name"),
			CountryCode: strings.ToUpper(get("country_code")),
		}
		if label := get("label_id"); label != "" {
			a.LabelID = &label
		}
		out = append(out, a)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("ReadAccounts: %w", err)
	}
	return out, nil
}

func WriteAccounts(w io.Writer, accounts []domain.Account) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(accountHeader); err != nil {
		return fmt.Errorf("WriteAccounts: %w", err)
	}
	for _, a := range accounts {
		label := ""
		if a.LabelID != nil {
			label = *a.LabelID
		}
		if err := cw.Write([]string{a.ID, a.Name, a.CountryCode, label}); err != nil {
			return fmt.Errorf("WriteAccounts: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("WriteAccounts: %w", err)
	}
	return nil
}

// ParseDate accepts RFC 3339 timestamps and plain YYYY-MM-DD dates (UTC).
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if d, err := time.Parse(time.DateOnly, s); err == nil {
		return d, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("date %q: %w", s, domain.ErrValidation)
	}
	return t.UTC(), nil
}

func read(r io.Reader, required []string, row func(line int, get func(string) string) error) error {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil
	}
	if err != nil {
		return err
	}
	index := map[string]int{}
	for i, h := range header {
		index[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, col := range required {
		if _, ok := index[col]; !ok {
			return fmt.Errorf("missing column %q: %w", col, domain.ErrValidation)
		}
	}

	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		get := func(col string) string {
			i, ok := index[col]
			if !ok || i >= len(rec) {
				return ""
			}
			return strings.TrimSpace(rec[i])
		}
		if err := row(line, get); err != nil {
			return err
		}
	}
}
