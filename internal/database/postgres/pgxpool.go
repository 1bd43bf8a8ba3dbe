package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"swipehire/internal/config"
	"swipehire/internal/database"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/rs/zerolog"
)

var errClosed = errors.New("postgres: pool is closed")

// querier is what pgxpool.Pool and pgx.Tx have in common.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// session adapts a querier to the database package's statement methods.
// pgx.Rows and pgx.Row already satisfy database.Rows and database.Row.
type session struct {
	q querier
}

func (s session) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	tag, err := s.q.Exec(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (s session) Query(ctx context.Context, query string, args ...any) (database.Rows, error) {
	return s.q.Query(ctx, query, args...)
}

func (s session) QueryRow(ctx context.Context, query string, args ...any) database.Row {
	return s.q.QueryRow(ctx, query, args...)
}

// Pool is the database.DB used by the server and the importer.
type Pool struct {
	session
	pool  *pgxpool.Pool
	sqlDB *sql.DB
}

type txSession struct {
	session
	tx pgx.Tx
}

func (t txSession) Commit(ctx context.Context) error   { return t.tx.Commit(ctx) }
func (t txSession) Rollback(ctx context.Context) error { return t.tx.Rollback(ctx) }

// DSN prefers DATABASE_URL and otherwise builds a keyword/value string from
// the DB_* settings, skipping blanks.
func DSN(cfg config.DatabaseConfig) string {
	if u := strings.TrimSpace(cfg.URL); u != "" {
		return u
	}
	pairs := [][2]string{
		{"host", strings.TrimSpace(cfg.DBHost)},
		{"port", strings.TrimSpace(cfg.DBPort)},
		{"user", strings.TrimSpace(cfg.DBUser)},
		{"password", cfg.DBPassword},
		{"dbname", strings.TrimSpace(cfg.DBName)},
		{"sslmode", strings.TrimSpace(cfg.DBSSLMode)},
	}
	var b strings.Builder
	for _, kv := range pairs {
		if kv[1] == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(kv[0] + "=" + kv[1])
	}
	return b.String()
}

func poolConfig(cfg config.DatabaseConfig) (*pgxpool.Config, error) {
	pcfg, err := pgxpool.ParseConfig(DSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("parse database config: %w", err)
	}
	if cfg.ConnectTimeout > 0 {
		pcfg.ConnConfig.ConnectTimeout = cfg.ConnectTimeout
	}
	if cfg.PoolMaxConns > 0 {
		pcfg.MaxConns = cfg.PoolMaxConns
	}
	if cfg.PoolMinConns > 0 {
		pcfg.MinConns = cfg.PoolMinConns
	}
	for dst, v := range map[*time.Duration]time.Duration{
		&pcfg.MaxConnLifetime:   cfg.PoolMaxConnLifetime,
		&pcfg.MaxConnIdleTime:   cfg.PoolMaxConnIdleTime,
		&pcfg.HealthCheckPeriod: cfg.PoolHealthCheckPeriod,
	} {
		if v > 0 {
			*dst = v
		}
	}
	return pcfg, nil
}

// Connect opens the pool and fails unless the first ping succeeds within
// ctx, or five seconds when ctx has no deadline.
func Connect(ctx context.Context, cfg config.DatabaseConfig, logger zerolog.Logger) (*Pool, error) {
	pcfg, err := poolConfig(cfg)
	if err != nil {
		return nil, err
	}
	p, err := pgxpool.NewWithConfig(ctx, pcfg)
	if err != nil {
		return nil, err
	}

	pingCtx, cancel := ctx, context.CancelFunc(func() {})
	if _, ok := ctx.Deadline(); !ok {
		pingCtx, cancel = context.WithTimeout(ctx, 5*time.Second)
	}
	defer cancel()
	if err := p.Ping(pingCtx); err != nil {
		p.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	logger.Info().
		Str("component", "postgres").
		Str("host", pcfg.ConnConfig.Host).
		Str("database", pcfg.ConnConfig.Database).
		Int32("max_conns", pcfg.MaxConns).
		Msg("connected")

	return &Pool{session: session{q: p}, pool: p, sqlDB: stdlib.OpenDBFromPool(p)}, nil
}

func (p *Pool) Ping(ctx context.Context) error {
	if p == nil || p.pool == nil {
		return errClosed
	}
	return p.pool.Ping(ctx)
}

func (p *Pool) Begin(ctx context.Context) (database.Tx, error) {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	return txSession{session: session{q: tx}, tx: tx}, nil
}

// SQLDB is a database/sql view over the same pool, for the migration runner.
func (p *Pool) SQLDB() *sql.DB {
	if p == nil {
		return nil
	}
	return p.sqlDB
}

func (p *Pool) Close() error {
	if p == nil || p.pool == nil {
		return nil
	}
	err := p.sqlDB.Close()
	p.pool.Close()
	return err
}
