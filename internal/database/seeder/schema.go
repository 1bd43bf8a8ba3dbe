package seeder

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"swipehire/internal/database"
)

// ErrSchemaMismatch means migrations have not produced the columns a seeder
// writes.
var ErrSchemaMismatch = errors.New("schema mismatch")

func requireColumns(ctx context.Context, db database.DB, table string, columns ...string) error {
	if table == "" {
		return fmt.Errorf("empty table")
	}

	rows, err := db.Query(ctx,
		`SELECT column_name FROM information_schema.columns WHERE table_schema = 'public' AND table_name = $1`,
		table,
	)
	if err != nil {
		return err
	}
	defer rows.Close()

	existing := map[string]struct{}{}
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return err
		}
		existing[c] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return err
	}

	var missing []string
	for _, col := range columns {
		if _, ok := existing[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s is missing %s", ErrSchemaMismatch, table, strings.Join(missing, ", "))
	}
	return nil
}
