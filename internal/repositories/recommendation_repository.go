package repositories

import (
	"context"
	"database/sql"

	"travelbot/internal/domain/models"
)

type RecommendationRepository struct {
	Store
}

// Random samples n general recommendations.
func (r RecommendationRepository) Random(ctx context.Context, n int) ([]models.Recommendation, error) {
	db := r.db()
	if db == nil {
		return nil, sql.ErrConnDone
	}
	if n <= 0 {
		n = 3
	}
	rows, err := db.QueryContext(ctx, `
		SELECT COALESCE(locations,''), COALESCE(intent,''), COALESCE(recommendation,'')
		FROM recommendations ORDER BY `+r.dialect().Random()+` LIMIT ?`, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Recommendation
	for rows.Next() {
		var rec models.Recommendation
		if err := rows.Scan(&rec.Locations, &rec.Intent, &rec.Recommendation); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
