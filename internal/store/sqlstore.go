package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/JonMunkholm/bulkload/internal/core"
)

// sqlStore implements core.Store over database/sql. MySQL and SQLite share
// it; only the dialect and error classification differ.
type sqlStore struct {
	db       *sql.DB
	dialect  Dialect
	classify func(error) error

	mu    sync.Mutex
	plans map[string]string // plan key -> upsert SQL
}

func newSQLStore(db *sql.DB, d Dialect, classify func(error) error) *sqlStore {
	if classify == nil {
		classify = func(err error) error { return err }
	}
	return &sqlStore{
		db:       db,
		dialect:  d,
		classify: classify,
		plans:    make(map[string]string),
	}
}

func (s *sqlStore) upsertSQL(plan core.UpsertPlan) string {
	key := plan.Key()

	s.mu.Lock()
	defer s.mu.Unlock()
	if q, ok := s.plans[key]; ok {
		return q
	}
	q := s.dialect.UpsertSQL(plan)
	s.plans[key] = q
	return q
}

func (s *sqlStore) Begin(ctx context.Context) (core.Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", s.classify(err))
	}
	return &sqlTx{tx: tx, store: s, stmts: make(map[string]*sql.Stmt)}, nil
}

func (s *sqlStore) TableExists(ctx context.Context, table string) (bool, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, s.dialect.TableExistsSQL(), table).Scan(&n); err != nil {
		return false, fmt.Errorf("check table %s: %w", table, s.classify(err))
	}
	return n > 0, nil
}

func (s *sqlStore) CreateTable(ctx context.Context, profile core.EntityProfile) error {
	ddl, err := s.dialect.CreateTableSQL(profile)
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create table %s: %w", profile.TargetTable, s.classify(err))
	}
	return nil
}

func (s *sqlStore) ColumnLength(ctx context.Context, table, column string) (int, error) {
	row := s.db.QueryRowContext(ctx, s.dialect.ColumnLengthSQL(), table, column)

	if s.dialect == SQLite {
		var decl string
		err := row.Scan(&decl)
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		if err != nil {
			return 0, fmt.Errorf("column length %s.%s: %w", table, column, s.classify(err))
		}
		return parseTypeLength(decl), nil
	}

	var n sql.NullInt64
	err := row.Scan(&n)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("column length %s.%s: %w", table, column, s.classify(err))
	}
	return int(n.Int64), nil
}

func (s *sqlStore) Close() error {
	return s.db.Close()
}

// sqlTx prepares each upsert shape once per transaction.
type sqlTx struct {
	tx    *sql.Tx
	store *sqlStore
	stmts map[string]*sql.Stmt
}

func (t *sqlTx) Upsert(ctx context.Context, plan core.UpsertPlan, values []any) error {
	key := plan.Key()
	stmt, ok := t.stmts[key]
	if !ok {
		var err error
		stmt, err = t.tx.PrepareContext(ctx, t.store.upsertSQL(plan))
		if err != nil {
			return fmt.Errorf("prepare upsert into %s: %w", plan.Table, t.store.classify(err))
		}
		t.stmts[key] = stmt
	}

	if _, err := stmt.ExecContext(ctx, values...); err != nil {
		return t.store.classify(err)
	}
	return nil
}

func (t *sqlTx) Commit(ctx context.Context) error {
	if err := t.tx.Commit(); err != nil {
		return t.store.classify(err)
	}
	return nil
}

func (t *sqlTx) Rollback(ctx context.Context) error {
	err := t.tx.Rollback()
	if errors.Is(err, sql.ErrTxDone) {
		return nil
	}
	return err
}
