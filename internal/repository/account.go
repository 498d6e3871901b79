package repository

import (
	"github.com/josh-kwaku/fintrack/internal/domain"
	"github.com/josh-kwaku/fintrack/internal/store"
)

var AccountSchema = Schema[domain.Account]{
	Table:   "accounts",
	Columns: []string{"id", "name", "country_code", "label_id"},
	OrderBy: "id",
	Filters: map[string]string{
		"ids":           "id",
		"name":          "name",
		"country_code":  "country_code",
		"country_codes": "country_code",
		"label_id":      "label_id",
		"label_ids":     "label_id",
	},
	ID: func(a domain.Account) string { return a.ID },
	Values: func(a domain.Account) []any {
		return []any{a.ID, a.Name, a.CountryCode, a.LabelID}
	},
	Scan: scanAccount,
}

func NewAccountRepository(db Executor) *Resource[domain.Account] {
	return New(db, AccountSchema)
}

func scanAccount(s store.Scanner) (domain.Account, error) {
	var a domain.Account
	err := s.Scan(&a.ID, &a.Name, &a.CountryCode, &a.LabelID)
	return a, err
}
