package repositories

import (
	"database/sql"
	"strings"

	"travelbot/internal/config"
	intdb "travelbot/internal/db"
)

// Store resolves the DB handle and SQL dialect shared by the repositories.
// Zero values fall back to the process-wide connection.
type Store struct {
	DB      *sql.DB
	Dialect intdb.Dialect
}

func (s Store) db() *sql.DB {
	if s.DB != nil {
		return s.DB
	}
	return config.DB
}

func (s Store) dialect() intdb.Dialect {
	if s.Dialect != "" {
		return s.Dialect
	}
	return intdb.DialectFor(config.Driver())
}

// where accumulates AND-ed predicates and their arguments.
type where struct {
	parts []string
	args  []any
}

func (w *where) add(expr string, args ...any) {
	w.parts = append(w.parts, expr)
	w.args = append(w.args, args...)
}

func (w where) String() string {
	if len(w.parts) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.parts, " AND ")
}

func likeTerm(s string) string {
	return "%" + strings.ToLower(strings.TrimSpace(s)) + "%"
}
