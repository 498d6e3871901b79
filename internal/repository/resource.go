package repository

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/josh-kwaku/fintrack/internal/domain"
	"github.com/josh-kwaku/fintrack/internal/store"
)

// Executor is the part of *store.Store a Resource needs.
type Executor interface {
	Dialect() store.Dialect
	Exec(ctx context.Context, query string, args ...any) (int64, error)
	ExecBatch(ctx context.Context, query string, rows [][]any) (int64, error)
	ExecTx(ctx context.Context, stmts []store.Statement) (int64, error)
	Query(ctx context.Context, query string, args []any, fn func(store.Scanner) error) error
}

// Schema describes how one entity type maps onto its table. Columns[0] is the
// primary key; Values must return arguments in Columns order and Scan must
// read them in the same order.
type Schema[T any] struct {
	Table   string
	Columns []string
	OrderBy string
	// Filters maps accepted filter field names to column names.
	Filters map[string]string

	ID     func(T) string
	Values func(T) []any
	Scan   func(store.Scanner) (T, error)
}

// Filter selects rows whose column matches any of the listed values; fields
// are combined with AND.
type Filter map[string][]any

// Resource provides CRUD and filtered listing for one entity type.
type Resource[T any] struct {
	db        Executor
	schema    Schema[T]
	maxParams int
}

func New[T any](db Executor, schema Schema[T]) *Resource[T] {
	return &Resource[T]{db: db, schema: schema, maxParams: db.Dialect().MaxParams()}
}

// Create inserts all items with multi-row INSERT statements. Items that fit
// the dialect's bind parameter limit go in one statement; larger batches are
// split and run in one transaction, so either every item is stored or none.
func (r *Resource[T]) Create(ctx context.Context, items []T) ([]T, error) {
	if len(items) == 0 {
		return items, nil
	}

	per := max(1, r.maxParams/len(r.schema.Columns))
	stmts := make([]store.Statement, 0, (len(items)+per-1)/per)
	for chunk := range slices.Chunk(items, per) {
		stmts = append(stmts, r.insert(chunk))
	}

	var err error
	if len(stmts) == 1 {
		_, err = r.db.Exec(ctx, stmts[0].Query, stmts[0].Args...)
	} else {
		_, err = r.db.ExecTx(ctx, stmts)
	}
	if err != nil {
		return nil, fmt.Errorf("%s.Create: %w", r.schema.Table, err)
	}
	return items, nil
}

func (r *Resource[T]) insert(items []T) store.Statement {
	b := r.builder()
	rows := make([]string, 0, len(items))
	for _, it := range items {
		rows = append(rows, "("+b.bindAll(r.schema.Values(it))+")")
	}
	q := `INSERT INTO ` + r.schema.Table + ` (` + r.columnList() + `) VALUES ` + strings.Join(rows, ", ")
	return store.Statement{Query: q, Args: b.args}
}

// Retrieve returns the items with the given ids. Ids without a match are
// skipped; no match at all yields an empty slice and a nil error.
func (r *Resource[T]) Retrieve(ctx context.Context, ids ...string) ([]T, error) {
	if len(ids) == 0 {
		return []T{}, nil
	}
	out, err := r.List(ctx, Filter{r.schema.Columns[0]: stringsToAny(ids)})
	if err != nil {
		return nil, fmt.Errorf("%s.Retrieve: %w", r.schema.Table, err)
	}
	return out, nil
}

// Get returns one item or domain.ErrNotFound.
func (r *Resource[T]) Get(ctx context.Context, id string) (T, error) {
	var zero T
	items, err := r.Retrieve(ctx, id)
	if err != nil {
		return zero, fmt.Errorf("%s.Get: %w", r.schema.Table, err)
	}
	if len(items) == 0 {
		return zero, fmt.Errorf("%s.Get %s: %w", r.schema.Table, id, domain.ErrNotFound)
	}
	return items[0], nil
}

// Missing returns the ids, in the order given, that have no stored row.
func (r *Resource[T]) Missing(ctx context.Context, ids ...string) ([]string, error) {
	found, err := r.Retrieve(ctx, ids...)
	if err != nil {
		return nil, fmt.Errorf("%s.Missing: %w", r.schema.Table, err)
	}
	have := make(map[string]bool, len(found))
	for _, it := range found {
		have[r.schema.ID(it)] = true
	}
	var out []string
	for _, id := range ids {
		if !have[id] {
			out = append(out, id)
		}
	}
	return out, nil
}

// Upsert inserts items or overwrites every column of rows with the same id.
func (r *Resource[T]) Upsert(ctx context.Context, items []T) error {
	if len(items) == 0 {
		return nil
	}

	b := r.builder()
	sets := make([]string, 0, len(r.schema.Columns)-1)
	for _, c := range r.schema.Columns[1:] {
		sets = append(sets, c+" = excluded."+c)
	}
	values := r.schema.Values(items[0])
	q := `INSERT INTO ` + r.schema.Table + ` (` + r.columnList() + `) VALUES (` + b.bindAll(values) + `)
		ON CONFLICT (` + r.schema.Columns[0] + `) DO UPDATE SET ` + strings.Join(sets, ", ")

	rows := make([][]any, 0, len(items))
	for _, it := range items {
		rows = append(rows, r.schema.Values(it))
	}
	if _, err := r.db.ExecBatch(ctx, q, rows); err != nil {
		return fmt.Errorf("%s.Upsert: %w", r.schema.Table, err)
	}
	return nil
}

// Delete removes the rows with the given ids. Unknown ids are ignored.
func (r *Resource[T]) Delete(ctx context.Context, ids ...string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	b := r.builder()
	q := `DELETE FROM ` + r.schema.Table + ` WHERE ` + r.schema.Columns[0] + ` IN (` + b.bindAll(stringsToAny(ids)) + `)`

	n, err := r.db.Exec(ctx, q, b.args...)
	if err != nil {
		return 0, fmt.Errorf("%s.Delete: %w", r.schema.Table, err)
	}
	return n, nil
}

// List returns the items matching f. An empty filter returns everything.
func (r *Resource[T]) List(ctx context.Context, f Filter) ([]T, error) {
	b := r.builder()
	where, empty, err := r.where(b, f)
	if err != nil {
		return nil, fmt.Errorf("%s.List: %w", r.schema.Table, err)
	}
	out := []T{}
	if empty {
		return out, nil
	}

	q := `SELECT ` + r.columnList() + ` FROM ` + r.schema.Table + where
	if r.schema.OrderBy != "" {
		q += ` ORDER BY ` + r.schema.OrderBy
	}

	err = r.db.Query(ctx, q, b.args, func(s store.Scanner) error {
		it, err := r.schema.Scan(s)
		if err != nil {
			return err
		}
		out = append(out, it)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s.List: %w", r.schema.Table, err)
	}
	return out, nil
}

// Count returns the number of rows matching f.
func (r *Resource[T]) Count(ctx context.Context, f Filter) (int, error) {
	b := r.builder()
	where, empty, err := r.where(b, f)
	if err != nil {
		return 0, fmt.Errorf("%s.Count: %w", r.schema.Table, err)
	}
	if empty {
		return 0, nil
	}

	var n int
	err = r.db.Query(ctx, `SELECT COUNT(*) FROM `+r.schema.Table+where, b.args, func(s store.Scanner) error {
		return s.Scan(&n)
	})
	if err != nil {
		return 0, fmt.Errorf("%s.Count: %w", r.schema.Table, err)
	}
	return n, nil
}

// where renders f as a WHERE clause. Field names are resolved through the
// schema so only known column names reach the query text; values are bound.
// empty is true when some field lists no acceptable value.
func (r *Resource[T]) where(b *builder, f Filter) (clause string, empty bool, err error) {
	if len(f) == 0 {
		return "", false, nil
	}

	fields := make([]string, 0, len(f))
	for field := range f {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	conds := make([]string, 0, len(fields))
	for _, field := range fields {
		col, ok := r.column(field)
		if !ok {
			return "", false, fmt.Errorf("%q: %w", field, domain.ErrUnknownFilter)
		}
		values := f[field]
		if len(values) == 0 {
			return "", true, nil
		}
		conds = append(conds, col+` IN (`+b.bindAll(values)+`)`)
	}
	return ` WHERE ` + strings.Join(conds, ` AND `), false, nil
}

func (r *Resource[T]) column(field string) (string, bool) {
	if field == r.schema.Columns[0] {
		return field, true
	}
	col, ok := r.schema.Filters[field]
	return col, ok
}

func (r *Resource[T]) columnList() string {
	return strings.Join(r.schema.Columns, ", ")
}

func (r *Resource[T]) builder() *builder {
	return &builder{dialect: r.db.Dialect()}
}

type builder struct {
	dialect store.Dialect
	args    []any
}

func (b *builder) bind(v any) string {
	b.args = append(b.args, v)
	return b.dialect.Placeholder(len(b.args))
}

func (b *builder) bindAll(vs []any) string {
	marks := make([]string, len(vs))
	for i, v := range vs {
		marks[i] = b.bind(v)
	}
	return strings.Join(marks, ", ")
}

func stringsToAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
