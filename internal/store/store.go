// Package store executes parameterized statements against a SQLite file or a
// Postgres server. Every call opens its own connection and closes it before
// returning, so a Store can be shared freely between goroutines.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/cenkalti/backoff/v4"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/josh-kwaku/fintrack/internal/domain"
	"github.com/josh-kwaku/fintrack/internal/logging"
)

const (
	defaultConnectAttempts = 5
	defaultConnectBackoff  = 500 * time.Millisecond
	defaultConnectTimeout  = 5 * time.Second
)

type Options struct {
	Dialect Dialect

	// SQLite
	Path string

	// Postgres
	Host     string
	Port     int
	Database string
	Username string
	Password string
	SSLMode  string

	ConnectTimeout  time.Duration
	ConnectAttempts int
	ConnectBackoff  time.Duration
}

// Scanner is satisfied by *sql.Row and *sql.Rows.
type Scanner interface {
	Scan(dest ...any) error
}

// Row is a fetched row keyed by column name.
type Row map[string]any

type Store struct {
	dialect  Dialect
	driver   string
	dsn      string
	attempts int
	backoff  time.Duration
	timeout  time.Duration
}

func Open(o Options) (*Store, error) {
	var dsn string
	switch o.Dialect {
	case DialectSQLite:
		if o.Path == "" {
			return nil, fmt.Errorf("Open: sqlite path required: %w", domain.ErrValidation)
		}
		dsn = sqliteDSN(o.Path)
	case DialectPostgres:
		if o.Host == "" || o.Database == "" {
			return nil, fmt.Errorf("Open: postgres host and database required: %w", domain.ErrValidation)
		}
		dsn = postgresDSN(o)
	default:
		return nil, fmt.Errorf("Open: unsupported dialect %q: %w", o.Dialect, domain.ErrValidation)
	}
	return newStore(o.Dialect, o.Dialect.driverName(), dsn, o), nil
}

func newStore(d Dialect, driver, dsn string, o Options) *Store {
	s := &Store{
		dialect:  d,
		driver:   driver,
		dsn:      dsn,
		attempts: o.ConnectAttempts,
		backoff:  o.ConnectBackoff,
		timeout:  o.ConnectTimeout,
	}
	if s.attempts <= 0 {
		s.attempts = defaultConnectAttempts
	}
	if s.backoff <= 0 {
		s.backoff = defaultConnectBackoff
	}
	if s.timeout <= 0 {
		s.timeout = defaultConnectTimeout
	}
	return s
}

func (s *Store) Dialect() Dialect {
	return s.dialect
}

// Exec runs a single statement and returns the number of affected rows.
func (s *Store) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	var affected int64
	err := s.withConn(ctx, func(db *sql.DB) error {
		res, err := db.ExecContext(ctx, query, args...)
		if err != nil {
			return statementErr(ctx, query, err)
		}
		affected, err = res.RowsAffected()
		if err != nil {
			return statementErr(ctx, query, err)
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("Exec: %w", err)
	}
	return affected, nil
}

// Statement is one query with its arguments.
type Statement struct {
	Query string
	Args  []any
}

// ExecBatch runs query once per parameter row inside one transaction. Either
// every row is applied or none is.
func (s *Store) ExecBatch(ctx context.Context, query string, rows [][]any) (int64, error) {
	stmts := make([]Statement, len(rows))
	for i, args := range rows {
		stmts[i] = Statement{Query: query, Args: args}
	}
	n, err := s.execTx(ctx, stmts)
	if err != nil {
		return 0, fmt.Errorf("ExecBatch: %w", err)
	}
	return n, nil
}

// ExecTx runs stmts in order inside one transaction on a single connection.
// Either all of them are applied or none is.
func (s *Store) ExecTx(ctx context.Context, stmts []Statement) (int64, error) {
	n, err := s.execTx(ctx, stmts)
	if err != nil {
		return 0, fmt.Errorf("ExecTx: %w", err)
	}
	return n, nil
}

func (s *Store) execTx(ctx context.Context, stmts []Statement) (int64, error) {
	if len(stmts) == 0 {
		return 0, nil
	}

	var affected int64
	err := s.withConn(ctx, func(db *sql.DB) error {
		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin: %w: %w", domain.ErrConnection, err)
		}
		defer tx.Rollback()

		for _, st := range stmts {
			res, err := tx.ExecContext(ctx, st.Query, st.Args...)
			if err != nil {
				return statementErr(ctx, st.Query, err)
			}
			n, err := res.RowsAffected()
			if err != nil {
				return statementErr(ctx, st.Query, err)
			}
			affected += n
		}

		if err := tx.Commit(); err != nil {
			return statementErr(ctx, "COMMIT", err)
		}
		return nil
	})
	return affected, err
}

// Query runs a SELECT and hands every row, in order, to fn.
func (s *Store) Query(ctx context.Context, query string, args []any, fn func(Scanner) error) error {
	err := s.withConn(ctx, func(db *sql.DB) error {
		rows, err := db.QueryContext(ctx, query, args...)
		if err != nil {
			return statementErr(ctx, query, err)
		}
		defer rows.Close()

		for rows.Next() {
			if err := fn(rows); err != nil {
				return fmt.Errorf("scan: %w", err)
			}
		}
		if err := rows.Err(); err != nil {
			return statementErr(ctx, query, err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("Query: %w", err)
	}
	return nil
}

// Fetch runs a SELECT and returns the rows as column to value maps.
func (s *Store) Fetch(ctx context.Context, query string, args ...any) ([]Row, error) {
	var out []Row
	err := s.withConn(ctx, func(db *sql.DB) error {
		rows, err := db.QueryContext(ctx, query, args...)
		if err != nil {
			return statementErr(ctx, query, err)
		}
		defer rows.Close()

		cols, err := rows.Columns()
		if err != nil {
			return statementErr(ctx, query, err)
		}

		for rows.Next() {
			vals := make([]any, len(cols))
			ptrs := make([]any, len(cols))
			for i := range vals {
				ptrs[i] = &vals[i]
			}
			if err := rows.Scan(ptrs...); err != nil {
				return fmt.Errorf("scan: %w", err)
			}
			row := make(Row, len(cols))
			for i, c := range cols {
				if b, ok := vals[i].([]byte); ok {
					row[c] = string(b)
					continue
				}
				row[c] = vals[i]
			}
			out = append(out, row)
		}
		if err := rows.Err(); err != nil {
			return statementErr(ctx, query, err)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("Fetch: %w", err)
	}
	return out, nil
}

func (s *Store) withConn(ctx context.Context, fn func(db *sql.DB) error) error {
	db, err := s.connect(ctx)
	if err != nil {
		return err
	}
	defer db.Close()
	return fn(db)
}

func (s *Store) connect(ctx context.Context) (*sql.DB, error) {
	db, err := sql.Open(s.driver, s.dsn)
	if err != nil {
		return nil, fmt.Errorf("connect: %w: %w", domain.ErrConnection, err)
	}
	db.SetMaxOpenConns(1)

	if err := s.ping(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect: %w: %w", domain.ErrConnection, err)
	}
	return db, nil
}

// ping establishes the connection. Only remote stores retry, and only while
// the failure is a network timeout.
func (s *Store) ping(ctx context.Context, db *sql.DB) error {
	log := logging.FromContext(ctx)
	attempt := 0

	op := func() error {
		attempt++
		pctx, cancel := context.WithTimeout(ctx, s.timeout)
		defer cancel()

		err := db.PingContext(pctx)
		if err == nil {
			return nil
		}
		if !s.dialect.Remote() || ctx.Err() != nil || !isTimeout(err) {
			return backoff.Permanent(err)
		}
		log.Warn("store connect timed out", "dialect", s.dialect, "attempt", attempt, "error", err)
		return err
	}

	b := backoff.WithMaxRetries(backoff.NewConstantBackOff(s.backoff), uint64(s.attempts-1))
	return backoff.Retry(op, backoff.WithContext(b, ctx))
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var nerr net.Error
	return errors.As(err, &nerr) && nerr.Timeout()
}

func statementErr(ctx context.Context, query string, err error) error {
	logging.FromContext(ctx).Debug("statement failed", "query", query, "error", err)
	return fmt.Errorf("%w: %w", domain.ErrStatement, err)
}
