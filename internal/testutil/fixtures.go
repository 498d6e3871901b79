package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/josh-kwaku/fintrack/internal/domain"
	"github.com/josh-kwaku/fintrack/internal/store"
)

// Date parses YYYY-MM-DD as midnight UTC.
func Date(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse(time.DateOnly, s)
	if err != nil {
		t.Fatalf("parse date %q: %v", s, err)
	}
	return d
}

func SeedLabel(t *testing.T, s *store.Store, id, name string) domain.Label {
	t.Helper()

	l := domain.Label{ID: id, Name: name, Description: name + " accounts"}
	_, err := s.Exec(context.Background(),
		`INSERT INTO labels (id, name, description) VALUES (`+marks(s, 3)+`)`,
		l.ID, l.Name, l.Description,
	)
	if err != nil {
		t.Fatalf("seed label %s: %v", id, err)
	}
	return l
}

func SeedAccount(t *testing.T, s *store.Store, id, country string) domain.Account {
	t.Helper()

	a := domain.Account{ID: id, Name: "Account " + id, CountryCode: country}
	_, err := s.Exec(context.Background(),
		`INSERT INTO accounts (id, name, country_code, label_id) VALUES (`+marks(s, 4)+`)`,
		a.ID, a.Name, a.CountryCode, a.LabelID,
	)
	if err != nil {
		t.Fatalf("seed account %s: %v", id, err)
	}
	return a
}

func SeedRecord(t *testing.T, s *store.Store, id, accountID, date string, balance float64, currency string) domain.Record {
	t.Helper()

	r := domain.Record{ID: id, Date: Date(t, date), AccountID: accountID, Balance: balance, Currency: currency}
	_, err := s.Exec(context.Background(),
		`INSERT INTO records (id, date, account_id, balance, currency) VALUES (`+marks(s, 5)+`)`,
		r.ID, r.Date, r.AccountID, r.Balance, r.Currency,
	)
	if err != nil {
		t.Fatalf("seed record %s: %v", id, err)
	}
	return r
}

func CountRows(t *testing.T, s *store.Store, table string) int {
	t.Helper()

	rows, err := s.Fetch(context.Background(), `SELECT COUNT(*) AS n FROM `+table)
	if err != nil {
		t.Fatalf("count %s: %v", table, err)
	}
	switch n := rows[0]["n"].(type) {
	case int64:
		return int(n)
	default:
		t.Fatalf("count %s: unexpected type %T", table, n)
		return 0
	}
}

func marks(s *store.Store, n int) string {
	out := ""
	for i := 1; i <= n; i++ {
		if i > 1 {
			out += ", "
		}
		out += s.Dialect().Placeholder(i)
	}
	return out
}
