package store

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"strings"
)

//go:embed schema/*.sql
var schemaFS embed.FS

// EnsureSchema creates the labels, accounts and records tables when they do
// not exist yet. Existing tables are left untouched.
func (s *Store) EnsureSchema(ctx context.Context) error {
	ddl, err := schemaFS.ReadFile("schema/" + string(s.dialect) + ".sql")
	if err != nil {
		return fmt.Errorf("EnsureSchema: %w", err)
	}

	err = s.withConn(ctx, func(db *sql.DB) error {
		for _, stmt := range splitStatements(string(ddl)) {
			if _, err := db.ExecContext(ctx, stmt); err != nil {
				return statementErr(ctx, stmt, err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("EnsureSchema: %w", err)
	}
	return nil
}

func splitStatements(ddl string) []string {
	var out []string
	for _, part := range strings.Split(ddl, ";") {
		if stmt := strings.TrimSpace(part); stmt != "" {
			out = append(out, stmt)
		}
	}
	return out
}
