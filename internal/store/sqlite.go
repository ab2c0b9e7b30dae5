package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/cenkalti/backoff/v4"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/JonMunkholm/bulkload/internal/config"
	"github.com/JonMunkholm/bulkload/internal/core"
)

func classifySQLite(err error) error {
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		switch liteErr.Code() & 0xff {
		case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED:
			return fmt.Errorf("timeout: %w", err)
		case sqlite3.SQLITE_TOOBIG:
			return fmt.Errorf("value too long: %w", err)
		}
	}
	return err
}

// SQLiteDSN returns the database file DSN with a busy timeout and a time
// format other drivers can read back.
func SQLiteDSN(cfg config.DatabaseConfig) string {
	dsn := cfg.URL
	if dsn == "" {
		dsn = cfg.Name
	}
	if strings.Contains(dsn, "?") {
		return dsn
	}
	return dsn + "?_pragma=busy_timeout(5000)&_time_format=sqlite"
}

// OpenSQLite opens (creating if needed) a SQLite database file. A single
// connection serializes writers so batches never see SQLITE_BUSY from
// themselves.
func OpenSQLite(ctx context.Context, cfg config.DatabaseConfig) (core.Store, error) {
	if cfg.URL == "" && cfg.Name == "" {
		return nil, backoff.Permanent(errors.New("sqlite needs DB_NAME (file path) or DATABASE_URL"))
	}

	db, err := sql.Open("sqlite", SQLiteDSN(cfg))
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("open sqlite: %w", err))
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	return newSQLStore(db, SQLite, classifySQLite), nil
}
