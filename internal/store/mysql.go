package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-sql-driver/mysql"

	"github.com/JonMunkholm/bulkload/internal/config"
	"github.com/JonMunkholm/bulkload/internal/core"
)

// mysqlConditions names server error numbers in the vocabulary the
// user-facing error codes match on.
var mysqlConditions = map[uint16]string{
	1062: "duplicate entry",
	1451: "foreign key",
	1452: "foreign key",
	1406: "data too long",
	1213: "deadlock",
	1205: "lock wait timeout",
	1146: "table doesn't exist",
	1054: "unknown column",
}

func classifyMySQL(err error) error {
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		if cond, ok := mysqlConditions[myErr.Number]; ok {
			return fmt.Errorf("%s: %w", cond, err)
		}
	}
	return err
}

// MySQLConfig builds the driver configuration. DATABASE_URL, when set, must
// be a go-sql-driver DSN (user:pass@tcp(host:3306)/db).
func MySQLConfig(cfg config.DatabaseConfig) (*mysql.Config, error) {
	if cfg.URL != "" {
		mc, err := mysql.ParseDSN(cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("parse DATABASE_URL: %w", err)
		}
		mc.ParseTime = true
		return mc, nil
	}

	mc := mysql.NewConfig()
	mc.User = cfg.User
	mc.Passwd = cfg.Password
	mc.Net = "tcp"
	mc.Addr = net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.DefaultPort()))
	mc.DBName = cfg.Name
	mc.ParseTime = true
	mc.Timeout = cfg.ConnectTimeout
	if cfg.Charset == "" {
		return mc, nil
	}

	// The driver keeps charset in unexported state; only the DSN parser
	// sets it.
	dsn := mc.FormatDSN()
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return mysql.ParseDSN(dsn + sep + "charset=" + url.QueryEscape(cfg.Charset))
}

// OpenMySQL connects to MySQL and verifies the connection with a ping.
// Configuration errors are permanent; network errors are retried by the
// caller.
func OpenMySQL(ctx context.Context, cfg config.DatabaseConfig) (core.Store, error) {
	mc, err := MySQLConfig(cfg)
	if err != nil {
		return nil, backoff.Permanent(err)
	}

	connector, err := mysql.NewConnector(mc)
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("mysql connector: %w", err))
	}

	db := sql.OpenDB(connector)
	db.SetMaxOpenConns(cfg.MaxConns)
	db.SetMaxIdleConns(cfg.MinConns)
	db.SetConnMaxLifetime(cfg.MaxConnLifetime)
	db.SetConnMaxIdleTime(cfg.MaxConnIdleTime)

	pingCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping mysql: %w", err)
	}

	return newSQLStore(db, MySQL, classifyMySQL), nil
}
