package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/tonykolomeytsev/mpeix-backend-sub000/internal/models"
)

// SearchRepository persists schedule search results. The table doubles as
// a fallback search index while the upstream provider is down.
type SearchRepository struct {
	db *sqlx.DB
}

// NewSearchRepository creates a new search repository.
func NewSearchRepository(db *sqlx.DB) *SearchRepository {
	return &SearchRepository{db: db}
}

// Upsert stores results, overwriting any previous row with the same id.
func (r *SearchRepository) Upsert(ctx context.Context, results []models.SearchResult) error {
	if len(results) == 0 {
		return nil
	}

	const query = `INSERT INTO search_results (id, name, description, type, updated_at)
		VALUES (:id, :name, :description, :type, :updated_at)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			type = EXCLUDED.type,
			updated_at = EXCLUDED.updated_at`

	now := time.Now().UTC()
	for i := range results {
		row := results[i]
		row.UpdatedAt = now
		if _, err := r.db.NamedExecContext(ctx, query, &row); err != nil {
			return fmt.Errorf("upsert search result %d: %w", row.ID, err)
		}
	}
	return nil
}

// Select returns stored results whose name contains the query, ordered
// stably by name then id. A nil type matches all types.
func (r *SearchRepository) Select(ctx context.Context, query models.ScheduleSearchQuery, typ *models.ScheduleType) ([]models.SearchResult, error) {
	pattern := "%" + query.String() + "%"
	results := make([]models.SearchResult, 0)

	var err error
	if typ != nil {
		const withType = `SELECT id, name, description, type FROM search_results WHERE name ILIKE $1 AND type = $2 ORDER BY name ASC, id ASC`
		err = r.db.SelectContext(ctx, &results, withType, pattern, *typ)
	} else {
		const allTypes = `SELECT id, name, description, type FROM search_results WHERE name ILIKE $1 ORDER BY name ASC, id ASC`
		err = r.db.SelectContext(ctx, &results, allTypes, pattern)
	}
	if err != nil {
		return nil, fmt.Errorf("select search results: %w", err)
	}
	return results, nil
}
