package migration

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// lockKey serialises concurrent runners (server and importer starting together).
const lockKey int64 = 5829471163

var ErrChecksumMismatch = errors.New("migration checksum mismatch")

// Runner applies V<version>__<name>.sql files in version order. Dir, when
// set, wins over FS. An applied migration whose checksum changed is an error.
type Runner struct {
	Dir    string
	FS     fs.FS
	Logger zerolog.Logger
}

type Migration struct {
	Version  int64
	Name     string
	Filename string
	SQL      string
	Checksum string
}

var fileRe = regexp.MustCompile(`^V(\d+)__([A-Za-z0-9_.-]+)\.sql$`)

func (r Runner) Run(ctx context.Context, db *sql.DB) error {
	if db == nil {
		return errors.New("nil db")
	}

	src, origin := r.source()
	if src == nil {
		return errors.New("no migration source")
	}
	migs, err := loadMigrations(src)
	if err != nil {
		return err
	}
	if len(migs) == 0 {
		r.Logger.Warn().Str("source", origin).Msg("no migrations found")
		return nil
	}

	// Session-level advisory locks belong to one connection, so the whole run
	// stays on it.
	conn, err := db.Conn(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	if _, err := conn.ExecContext(ctx, `SELECT pg_advisory_lock($1)`, lockKey); err != nil {
		return fmt.Errorf("migration lock: %w", err)
	}
	defer func() {
		_, _ = conn.ExecContext(context.WithoutCancel(ctx), `SELECT pg_advisory_unlock($1)`, lockKey)
	}()

	if _, err := conn.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS schema_migrations (
	version BIGINT PRIMARY KEY,
	name TEXT NOT NULL,
	checksum TEXT NOT NULL,
	applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`); err != nil {
		return err
	}

	applied, err := appliedChecksums(ctx, conn)
	if err != nil {
		return err
	}

	count := 0
	for _, m := range migs {
		if sum, ok := applied[m.Version]; ok {
			if sum != m.Checksum {
				return fmt.Errorf("%w: version=%d name=%s", ErrChecksumMismatch, m.Version, m.Name)
			}
			continue
		}

		start := time.Now()
		if err := apply(ctx, conn, m); err != nil {
			return err
		}
		count++
		r.Logger.Info().Int64("version", m.Version).Str("name", m.Name).Dur("took", time.Since(start)).Msg("applied")
	}

	r.Logger.Debug().Str("source", origin).Int("applied", count).Int("total", len(migs)).Msg("migrations up to date")
	return nil
}

func (r Runner) source() (fs.FS, string) {
	if dir := strings.TrimSpace(r.Dir); dir != "" {
		return os.DirFS(dir), dir
	}
	if r.FS != nil {
		return r.FS, "embedded"
	}
	return nil, ""
}

// loadMigrations ignores files that do not match the naming scheme. A missing
// directory yields nothing.
func loadMigrations(src fs.FS) ([]Migration, error) {
	entries, err := fs.ReadDir(src, ".")
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	var migs []Migration
	for _, e := range entries {
		m := fileRe.FindStringSubmatch(e.Name())
		if e.IsDir() || m == nil {
			continue
		}
		v, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid migration version: %s", e.Name())
		}

		b, err := fs.ReadFile(src, e.Name())
		if err != nil {
			return nil, err
		}
		body := strings.TrimSpace(string(b))
		if body == "" {
			return nil, fmt.Errorf("empty migration file: %s", e.Name())
		}

		sum := sha256.Sum256([]byte(body))
		migs = append(migs, Migration{
			Version:  v,
			Name:     m[2],
			Filename: e.Name(),
			SQL:      body,
			Checksum: hex.EncodeToString(sum[:]),
		})
	}

	sort.Slice(migs, func(i, j int) bool { return migs[i].Version < migs[j].Version })
	for i := 1; i < len(migs); i++ {
		if migs[i].Version == migs[i-1].Version {
			return nil, fmt.Errorf("duplicate migration version: %d", migs[i].Version)
		}
	}
	return migs, nil
}

func appliedChecksums(ctx context.Context, conn *sql.Conn) (map[int64]string, error) {
	rows, err := conn.QueryContext(ctx, `SELECT version, checksum FROM schema_migrations`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[int64]string{}
	for rows.Next() {
		var v int64
		var sum string
		if err := rows.Scan(&v, &sum); err != nil {
			return nil, err
		}
		out[v] = sum
	}
	return out, rows.Err()
}

func apply(ctx context.Context, conn *sql.Conn, m Migration) error {
	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, m.SQL); err != nil {
		return fmt.Errorf("apply migration failed: version=%d file=%s: %w", m.Version, m.Filename, err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO schema_migrations (version, name, checksum) VALUES ($1, $2, $3)`,
		m.Version, m.Name, m.Checksum,
	); err != nil {
		return err
	}
	return tx.Commit()
}
