package repository

import (
	"github.com/josh-kwaku/fintrack/internal/domain"
	"github.com/josh-kwaku/fintrack/internal/store"
)

var LabelSchema = Schema[domain.Label]{
	Table:   "labels",
	Columns: []string{"id", "name", "description"},
	OrderBy: "id",
	Filters: map[string]string{
		"ids":  "id",
		"name": "name",
	},
	ID: func(l domain.Label) string { return l.ID },
	Values: func(l domain.Label) []any {
		return []any{l.ID, l.Name, l.Description}
	},
	Scan: scanLabel,
}

func NewLabelRepository(db Executor) *Resource[domain.Label] {
	return New(db, LabelSchema)
}

func scanLabel(s store.Scanner) (domain.Label, error) {
	var l domain.Label
	err := s.Scan(&l.ID, &l.Name, &l.Description)
	return l, err
}
