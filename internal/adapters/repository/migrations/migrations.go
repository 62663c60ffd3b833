package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"sort"
)

// FS contains the embedded Postgres schema, applied in file name order.
//
//go:embed *.sql
var FS embed.FS

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Files returns the migration file names in the order Apply runs them.
func Files() ([]string, error) {
	names, err := fs.Glob(FS, "*.sql")
	if err != nil {
		return nil, err
	}
	sort.Strings(names)
	return names, nil
}

// Apply executes every migration file. Statements are idempotent, so Apply
// is safe to run on every start.
func Apply(ctx context.Context, db execer) error {
	names, err := Files()
	if err != nil {
		return fmt.Errorf("migrations: list: %w", err)
	}

	for _, name := range names {
		body, err := FS.ReadFile(name)
		if err != nil {
			return fmt.Errorf("migrations: read %s: %w", name, err)
		}
		if _, err := db.ExecContext(ctx, string(body)); err != nil {
			return fmt.Errorf("migrations: apply %s: %w", name, err)
		}
	}
	return nil
}
