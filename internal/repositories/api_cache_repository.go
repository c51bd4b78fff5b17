package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/golang/snappy"

	"travelbot/internal/domain/models"
)

// APICacheRepository keeps the last response per (service_type, cache_key)
// in api_data, snappy-compressed.
type APICacheRepository struct {
	Store
}

// Put replaces the cached payload for the key.
func (r APICacheRepository) Put(ctx context.Context, serviceType, key string, payload []byte) error {
	db := r.db()
	if db == nil {
		return sql.ErrConnDone
	}
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM api_data WHERE service_type = ? AND cache_key = ?`, serviceType, key); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO api_data (service_type, cache_key, response_data, created_at) VALUES (?, ?, ?, ?)`,
		serviceType, key, snappy.Encode(nil, payload), time.Now().Unix()); err != nil {
		return err
	}
	return tx.Commit()
}

// Get returns the cached entry; sql.ErrNoRows on a miss.
func (r APICacheRepository) Get(ctx context.Context, serviceType, key string) (models.CachedResponse, error) {
	db := r.db()
	if db == nil {
		return models.CachedResponse{}, sql.ErrConnDone
	}
	var raw []byte
	var created int64
	err := db.QueryRowContext(ctx, `
		SELECT response_data, created_at FROM api_data
		WHERE service_type = ? AND cache_key = ?
		ORDER BY created_at DESC LIMIT 1`, serviceType, key).Scan(&raw, &created)
	if err != nil {
		return models.CachedResponse{}, err
	}
	payload, err := snappy.Decode(nil, raw)
	if err != nil {
		return models.CachedResponse{}, fmt.Errorf("decode cached %s: %w", serviceType, err)
	}
	return models.CachedResponse{
		ServiceType: serviceType,
		CacheKey:    key,
		Payload:     payload,
		CreatedAt:   time.Unix(created, 0),
	}, nil
}

// PurgeOlderThan deletes entries created before cutoff.
func (r APICacheRepository) PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	db := r.db()
	if db == nil {
		return 0, sql.ErrConnDone
	}
	res, err := db.ExecContext(ctx, `DELETE FROM api_data WHERE created_at < ?`, cutoff.Unix())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
