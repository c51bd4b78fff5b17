// Package db holds SQL dialect helpers shared by the repositories.
package db

import (
	"database/sql"
	"strings"
)

type QueryRower interface {
	QueryRow(query string, args ...any) *sql.Row
}

// Dialect hides the few statements that differ between MySQL and SQLite.
type Dialect string

const (
	MySQL  Dialect = "mysql"
	SQLite Dialect = "sqlite3"
)

// DialectFor maps a driver name to its dialect; unknown drivers use MySQL.
func DialectFor(driver string) Dialect {
	if strings.HasPrefix(strings.ToLower(driver), "sqlite") {
		return SQLite
	}
	return MySQL
}

// AutoIncrementPK is the column definition of a surrogate key.
func (d Dialect) AutoIncrementPK() string {
	if d == SQLite {
		return "INTEGER PRIMARY KEY AUTOINCREMENT"
	}
	return "BIGINT PRIMARY KEY AUTO_INCREMENT"
}

// Random is the ORDER BY expression for random sampling.
func (d Dialect) Random() string {
	if d == SQLite {
		return "RANDOM()"
	}
	return "RAND()"
}

// Blob is the column type for compressed payloads.
func (d Dialect) Blob() string {
	if d == SQLite {
		return "BLOB"
	}
	return "MEDIUMBLOB"
}

// QuoteIdent quotes a table or column name.
func (d Dialect) QuoteIdent(name string) string {
	if d == SQLite {
		return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
	}
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

func (d Dialect) HasTable(q QueryRower, table string) bool {
	var name sql.NullString
	var err error
	if d == SQLite {
		err = q.QueryRow(`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ? LIMIT 1`, table).Scan(&name)
	} else {
		err = q.QueryRow(`
			SELECT table_name
			FROM information_schema.tables
			WHERE table_schema = DATABASE()
			  AND table_name = ?
			LIMIT 1
		`, table).Scan(&name)
	}
	if err != nil {
		return false
	}
	return name.Valid && name.String != ""
}

func (d Dialect) HasColumn(q QueryRower, table, column string) bool {
	var name sql.NullString
	var err error
	if d == SQLite {
		err = q.QueryRow(`SELECT name FROM pragma_table_info(?) WHERE name = ? LIMIT 1`, table, column).Scan(&name)
	} else {
		err = q.QueryRow(`
			SELECT column_name
			FROM information_schema.columns
			WHERE table_schema = DATABASE()
			  AND table_name = ?
			  AND column_name = ?
			LIMIT 1
		`, table, column).Scan(&name)
	}
	if err != nil {
		return false
	}
	return name.Valid && name.String != ""
}
