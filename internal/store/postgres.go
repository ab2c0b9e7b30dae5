package store

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"sync"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JonMunkholm/bulkload/internal/config"
	"github.com/JonMunkholm/bulkload/internal/core"
)

// pgConditions names SQLSTATE codes in the vocabulary the user-facing
// error codes match on.
var pgConditions = map[string]string{
	"23505": "duplicate key",
	"23503": "foreign key",
	"22001": "value too long",
	"40P01": "deadlock",
	"57014": "timeout",
	"42P01": "table does not exist",
	"42703": "column does not exist",
}

func classifyPostgres(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if cond, ok := pgConditions[pgErr.Code]; ok {
			return fmt.Errorf("%s: %w", cond, err)
		}
	}
	return err
}

// PostgresURL returns DATABASE_URL, or one assembled from the individual
// DB_* settings.
func PostgresURL(cfg config.DatabaseConfig) string {
	if cfg.URL != "" {
		return cfg.URL
	}
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(cfg.User, cfg.Password),
		Host:   net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.DefaultPort())),
		Path:   "/" + cfg.Name,
	}
	return u.String()
}

type pgStore struct {
	pool *pgxpool.Pool

	mu    sync.Mutex
	plans map[string]string
}

// OpenPostgres creates a connection pool and pings it.
func OpenPostgres(ctx context.Context, cfg config.DatabaseConfig) (core.Store, error) {
	poolConfig, err := pgxpool.ParseConfig(PostgresURL(cfg))
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("parse database URL: %w", err))
	}

	poolConfig.MaxConns = int32(cfg.MaxConns)
	poolConfig.MinConns = int32(cfg.MinConns)
	poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime
	poolConfig.ConnConfig.ConnectTimeout = cfg.ConnectTimeout

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return &pgStore{pool: pool, plans: make(map[string]string)}, nil
}

func (s *pgStore) upsertSQL(plan core.UpsertPlan) string {
	key := plan.Key()

	s.mu.Lock()
	defer s.mu.Unlock()
	if q, ok := s.plans[key]; ok {
		return q
	}
	q := Postgres.UpsertSQL(plan)
	s.plans[key] = q
	return q
}

func (s *pgStore) Begin(ctx context.Context) (core.Tx, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", classifyPostgres(err))
	}
	return &pgTx{tx: tx, store: s}, nil
}

func (s *pgStore) TableExists(ctx context.Context, table string) (bool, error) {
	var n int64
	if err := s.pool.QueryRow(ctx, Postgres.TableExistsSQL(), table).Scan(&n); err != nil {
		return false, fmt.Errorf("check table %s: %w", table, classifyPostgres(err))
	}
	return n > 0, nil
}

func (s *pgStore) CreateTable(ctx context.Context, profile core.EntityProfile) error {
	ddl, err := Postgres.CreateTableSQL(profile)
	if err != nil {
		return err
	}
	if _, err := s.pool.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("create table %s: %w", profile.TargetTable, classifyPostgres(err))
	}
	return nil
}

func (s *pgStore) ColumnLength(ctx context.Context, table, column string) (int, error) {
	var n int64
	err := s.pool.QueryRow(ctx, Postgres.ColumnLengthSQL(), table, column).Scan(&n)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("column length %s.%s: %w", table, column, classifyPostgres(err))
	}
	return int(n), nil
}

func (s *pgStore) Close() error {
	s.pool.Close()
	return nil
}

// pgTx relies on pgx's per-connection statement cache for preparation.
type pgTx struct {
	tx    pgx.Tx
	store *pgStore
}

func (t *pgTx) Upsert(ctx context.Context, plan core.UpsertPlan, values []any) error {
	if _, err := t.tx.Exec(ctx, t.store.upsertSQL(plan), values...); err != nil {
		return classifyPostgres(err)
	}
	return nil
}

func (t *pgTx) Commit(ctx context.Context) error {
	if err := t.tx.Commit(ctx); err != nil {
		return classifyPostgres(err)
	}
	return nil
}

func (t *pgTx) Rollback(ctx context.Context) error {
	err := t.tx.Rollback(ctx)
	if errors.Is(err, pgx.ErrTxClosed) {
		return nil
	}
	return err
}
