package database

import (
	"context"
	"fmt"

	"proxy-discovery/pkg/models"
)

// CandidateQuery narrows GetCandidates. Zero fields do not filter.
type CandidateQuery struct {
	Protocol string
	Country  string
	Limit    int
}

// UpsertCandidates stores candidates, refreshing the metadata of endpoints
// that are already known. Capability flags are only overwritten by known
// values.
func (db *DB) UpsertCandidates(ctx context.Context, candidates []models.Candidate) (int64, error) {
	if len(candidates) == 0 {
		return 0, nil
	}

	res, err := db.NewInsert().
		Model(&candidates).
		On("CONFLICT (ip, port) DO UPDATE").
		Set("protocol = EXCLUDED.protocol").
		Set("host = EXCLUDED.host").
		Set("name = EXCLUDED.name").
		Set("country = COALESCE(NULLIF(EXCLUDED.country, ''), c.country)").
		Set("city = COALESCE(NULLIF(EXCLUDED.city, ''), c.city)").
		Set("ssl = CASE WHEN EXCLUDED.ssl = 'unknown' THEN c.ssl ELSE EXCLUDED.ssl END").
		Set("google = CASE WHEN EXCLUDED.google = 'unknown' THEN c.google ELSE EXCLUDED.google END").
		Set("batch = EXCLUDED.batch").
		Set("updated_at = CURRENT_TIMESTAMP").
		Exec(ctx)

	if err != nil {
		return 0, fmt.Errorf("error upserting candidates: %v", err)
	}

	n, _ := res.RowsAffected()
	return n, nil
}

// GetCandidates returns stored candidates, oldest first.
func (db *DB) GetCandidates(ctx context.Context, query CandidateQuery) ([]models.Candidate, error) {
	var candidates []models.Candidate
	q := db.NewSelect().Model(&candidates).Order("c.id")

	if query.Protocol != "" {
		q = q.Where("c.protocol = ?", query.Protocol)
	}
	if query.Country != "" {
		q = q.Where("c.country = ?", query.Country)
	}
	if query.Limit > 0 {
		q = q.Limit(query.Limit)
	}

	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("error getting candidates: %v", err)
	}

	return candidates, nil
}

// RemoveBatch deletes every candidate stored by one import.
func (db *DB) RemoveBatch(ctx context.Context, batch string) (int64, error) {
	res, err := db.NewDelete().
		Model((*models.Candidate)(nil)).
		Where("batch = ?", batch).
		Exec(ctx)

	if err != nil {
		return 0, fmt.Errorf("error removing batch: %v", err)
	}

	n, _ := res.RowsAffected()
	return n, nil
}
