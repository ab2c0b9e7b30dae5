package store

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/JonMunkholm/bulkload/internal/core"
)

// Dialect names a SQL flavour and builds the statements that differ
// between them.
type Dialect string

const (
	Postgres Dialect = "postgres"
	MySQL    Dialect = "mysql"
	SQLite   Dialect = "sqlite"
)

// Quote quotes an identifier.
func (d Dialect) Quote(name string) string {
	if d == MySQL {
		return "`" + strings.ReplaceAll(name, "`", "``") + "`"
	}
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// Placeholder returns the bind parameter for the n-th (1-based) argument.
func (d Dialect) Placeholder(n int) string {
	if d == Postgres {
		return "$" + strconv.Itoa(n)
	}
	return "?"
}

func (d Dialect) quoteAll(names []string) string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = d.Quote(n)
	}
	return strings.Join(quoted, ", ")
}

// UpsertSQL builds a single-row insert-or-update for plan.
//
//	postgres: INSERT ... ON CONFLICT ("id") DO UPDATE SET "name" = EXCLUDED."name"
//	sqlite:   INSERT ... ON CONFLICT ("id") DO UPDATE SET "name" = excluded."name"
//	mysql:    INSERT ... ON DUPLICATE KEY UPDATE `name` = VALUES(`name`)
//
// When every column is part of the key or preserved there is nothing to
// update, and the statement only inserts missing rows.
func (d Dialect) UpsertSQL(plan core.UpsertPlan) string {
	var b strings.Builder

	fmt.Fprintf(&b, "INSERT INTO %s (%s) VALUES (", d.Quote(plan.Table), d.quoteAll(plan.Columns))
	for i := range plan.Columns {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(d.Placeholder(i + 1))
	}
	b.WriteByte(')')

	update := plan.UpdateColumns()

	if d == MySQL {
		b.WriteString(" ON DUPLICATE KEY UPDATE ")
		if len(update) == 0 {
			k := d.Quote(plan.ConflictKey[0])
			fmt.Fprintf(&b, "%s = %s", k, k)
			return b.String()
		}
		for i, c := range update {
			if i > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "%s = VALUES(%s)", d.Quote(c), d.Quote(c))
		}
		return b.String()
	}

	fmt.Fprintf(&b, " ON CONFLICT (%s) DO ", d.quoteAll(plan.ConflictKey))
	if len(update) == 0 {
		b.WriteString("NOTHING")
		return b.String()
	}

	excluded := "EXCLUDED"
	if d == SQLite {
		excluded = "excluded"
	}
	b.WriteString("UPDATE SET ")
	for i, c := range update {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s = %s.%s", d.Quote(c), excluded, d.Quote(c))
	}
	return b.String()
}

// ColumnType maps a portable column type to the dialect's DDL type.
func (d Dialect) ColumnType(c core.ColumnDef) string {
	switch c.Type {
	case core.ColumnInt:
		if d == MySQL {
			return "INT"
		}
		return "INTEGER"
	case core.ColumnBigInt:
		if d == SQLite {
			return "INTEGER"
		}
		return "BIGINT"
	case core.ColumnFloat:
		switch d {
		case Postgres:
			return "DOUBLE PRECISION"
		case MySQL:
			return "DOUBLE"
		}
		return "REAL"
	case core.ColumnVarchar:
		return fmt.Sprintf("VARCHAR(%d)", c.Length)
	case core.ColumnTimestamp:
		if d == Postgres {
			return "TIMESTAMP"
		}
		return "DATETIME"
	}
	return "TEXT"
}

// CreateTableSQL builds CREATE TABLE IF NOT EXISTS from the profile's
// declared columns. The conflict key becomes the primary key.
func (d Dialect) CreateTableSQL(p core.EntityProfile) (string, error) {
	if len(p.Columns) == 0 {
		return "", fmt.Errorf("%s: no columns declared for table %s", p.Name, p.TargetTable)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "CREATE TABLE IF NOT EXISTS %s (\n", d.Quote(p.TargetTable))
	for _, c := range p.Columns {
		fmt.Fprintf(&b, "    %s %s", d.Quote(c.Name), d.ColumnType(c))
		if c.NotNull || p.IsConflictKey(c.Name) {
			b.WriteString(" NOT NULL")
		}
		b.WriteString(",\n")
	}
	fmt.Fprintf(&b, "    PRIMARY KEY (%s)\n)", d.quoteAll(p.ConflictKey))
	return b.String(), nil
}

// TableExistsSQL counts tables named by the single bind argument.
func (d Dialect) TableExistsSQL() string {
	switch d {
	case Postgres:
		return "SELECT COUNT(*) FROM information_schema.tables WHERE table_schema = current_schema() AND table_name = $1"
	case MySQL:
		return "SELECT COUNT(*) FROM information_schema.tables WHERE table_schema = DATABASE() AND table_name = ?"
	}
	return "SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?"
}

// ColumnLengthSQL selects the column's declared length (postgres, mysql) or
// its declared type (sqlite, see parseTypeLength). Binds table then column.
func (d Dialect) ColumnLengthSQL() string {
	switch d {
	case Postgres:
		return "SELECT COALESCE(character_maximum_length, 0) FROM information_schema.columns " +
			"WHERE table_schema = current_schema() AND table_name = $1 AND column_name = $2"
	case MySQL:
		return "SELECT COALESCE(character_maximum_length, 0) FROM information_schema.columns " +
			"WHERE table_schema = DATABASE() AND table_name = ? AND column_name = ?"
	}
	return "SELECT type FROM pragma_table_info(?) WHERE name = ?"
}

// parseTypeLength extracts n from a declared type such as "VARCHAR(20)".
// Types without a length yield 0.
func parseTypeLength(decl string) int {
	open := strings.IndexByte(decl, '(')
	end := strings.IndexByte(decl, ')')
	if open < 0 || end < open {
		return 0
	}
	arg := decl[open+1 : end]
	if comma := strings.IndexByte(arg, ','); comma >= 0 {
		arg = arg[:comma]
	}
	n, err := strconv.Atoi(strings.TrimSpace(arg))
	if err != nil || n < 0 {
		return 0
	}
	return n
}
