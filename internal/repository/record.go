package repository

import (
	"github.com/josh-kwaku/fintrack/internal/domain"
	"github.com/josh-kwaku/fintrack/internal/store"
)

var RecordSchema = Schema[domain.Record]{
	Table:   "records",
	Columns: []string{"id", "date", "account_id", "balance", "currency"},
	OrderBy: "date, id",
	Filters: map[string]string{
		"ids":         "id",
		"account_id":  "account_id",
		"account_ids": "account_id",
		"currency":    "currency",
		"currencies":  "currency",
	},
	ID: func(r domain.Record) string { return r.ID },
	Values: func(r domain.Record) []any {
		return []any{r.ID, r.Date.UTC(), r.AccountID, r.Balance, r.Currency}
	},
	Scan: scanRecord,
}

func NewRecordRepository(db Executor) *Resource[domain.Record] {
	return New(db, RecordSchema)
}

func scanRecord(s store.Scanner) (domain.Record, error) {
	var r domain.Record
	if err := s.Scan(&r.ID, &r.Date, &r.AccountID, &r.Balance, &r.Currency); err != nil {
		return r, err
	}
	r.Date = r.Date.UTC()
	return r, nil
}
