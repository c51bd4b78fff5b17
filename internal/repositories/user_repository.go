package repositories

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"travelbot/internal/domain/models"
)

// UserRepository stores registered users keyed by lower-cased email.
type UserRepository struct {
	Store
}

// FindByEmail loads a user; sql.ErrNoRows when absent.
func (r UserRepository) FindByEmail(ctx context.Context, email string) (models.User, error) {
	db := r.db()
	if db == nil {
		return models.User{}, sql.ErrConnDone
	}
	var u models.User
	var created int64
	err := db.QueryRowContext(ctx, `
		SELECT id, name, email, COALESCE(password_hash,''), created_at
		FROM users WHERE email = ? LIMIT 1`, normalizeEmail(email)).
		Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &created)
	if err != nil {
		return models.User{}, err
	}
	u.CreatedAt = time.Unix(created, 0)
	return u, nil
}

func (r UserRepository) Create(ctx context.Context, u models.User) (models.User, error) {
	db := r.db()
	if db == nil {
		return models.User{}, sql.ErrConnDone
	}
	u.Email = normalizeEmail(u.Email)
	u.Name = strings.TrimSpace(u.Name)
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now()
	}
	res, err := db.ExecContext(ctx, `INSERT INTO users (name, email, password_hash, created_at) VALUES (?, ?, ?, ?)`,
		u.Name, u.Email, u.PasswordHash, u.CreatedAt.Unix())
	if err != nil {
		return models.User{}, err
	}
	u.ID, _ = res.LastInsertId()
	return u, nil
}

func (r UserRepository) Count(ctx context.Context) (int, error) {
	db := r.db()
	if db == nil {
		return 0, sql.ErrConnDone
	}
	var n int
	err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n)
	return n, err
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
