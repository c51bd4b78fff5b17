package repositories

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"travelbot/internal/domain/models"
)

// QueryLogRepository records chat and search queries in user_queries.
type QueryLogRepository struct {
	Store
}

func (r QueryLogRepository) Insert(ctx context.Context, q models.UserQuery) (int64, error) {
	db := r.db()
	if db == nil {
		return 0, sql.ErrConnDone
	}
	if q.CreatedAt.IsZero() {
		q.CreatedAt = time.Now()
	}
	res, err := db.ExecContext(ctx, `
		INSERT INTO user_queries (user_email, user_query, intent, locations, dates, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		strings.ToLower(strings.TrimSpace(q.UserEmail)), q.Query, q.Intent, q.Locations, q.Dates, q.CreatedAt.Unix())
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// MostCommonLocation returns the locations value logged most often for the
// given intents, or "" when nothing matches. A non-empty email restricts the
// count to that user's queries. Ties resolve alphabetically.
func (r QueryLogRepository) MostCommonLocation(ctx context.Context, intents []string, email string) (string, error) {
	db := r.db()
	if db == nil {
		return "", sql.ErrConnDone
	}
	if len(intents) == 0 {
		return "", nil
	}
	var w where
	marks := make([]string, len(intents))
	args := make([]any, len(intents))
	for i, in := range intents {
		marks[i] = "?"
		args[i] = in
	}
	w.add("intent IN ("+strings.Join(marks, ", ")+")", args...)
	w.add("COALESCE(locations,'') <> ''")
	if email = strings.ToLower(strings.TrimSpace(email)); email != "" {
		w.add("user_email = ?", email)
	}

	var loc string
	var n int
	err := db.QueryRowContext(ctx, `SELECT locations, COUNT(*) AS n FROM user_queries`+w.String()+
		` GROUP BY locations ORDER BY n DESC, locations ASC LIMIT 1`, w.args...).Scan(&loc, &n)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return loc, nil
}

// Recent lists the latest queries of a user, newest first.
func (r QueryLogRepository) Recent(ctx context.Context, email string, limit int) ([]models.UserQuery, error) {
	db := r.db()
	if db == nil {
		return nil, sql.ErrConnDone
	}
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.QueryContext(ctx, `
		SELECT id, COALESCE(user_email,''), COALESCE(user_query,''), COALESCE(intent,''),
			COALESCE(locations,''), COALESCE(dates,''), created_at
		FROM user_queries WHERE user_email = ? ORDER BY id DESC LIMIT ?`,
		strings.ToLower(strings.TrimSpace(email)), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.UserQuery
	for rows.Next() {
		var q models.UserQuery
		var created int64
		if err := rows.Scan(&q.ID, &q.UserEmail, &q.Query, &q.Intent, &q.Locations, &q.Dates, &created); err != nil {
			return nil, err
		}
		q.CreatedAt = time.Unix(created, 0)
		out = append(out, q)
	}
	return out, rows.Err()
}
