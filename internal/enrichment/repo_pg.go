package enrichment

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

const pgForeignKeyViolation = "23503"

type PGRepo struct {
	DB *sql.DB
}

const paramsColumns = `id, property_id, title, description, price_estimate, recommended_photos, quality_of_life_score, location_details, created_at, updated_at`

func (r *PGRepo) Upsert(ctx context.Context, p Params) (Params, error) {
	photos, err := json.Marshal(nonNil(p.RecommendedPhotos))
	if err != nil {
		return Params{}, err
	}
	query := `
INSERT INTO enriched_property_params (id, property_id, title, description, price_estimate, recommended_photos, quality_of_life_score, location_details, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
ON CONFLICT (property_id) DO UPDATE SET
  title = EXCLUDED.title,
  description = EXCLUDED.description,
  price_estimate = EXCLUDED.price_estimate,
  recommended_photos = EXCLUDED.recommended_photos,
  quality_of_life_score = EXCLUDED.quality_of_life_score,
  location_details = EXCLUDED.location_details,
  updated_at = EXCLUDED.updated_at
RETURNING ` + paramsColumns
	out, err := scanParams(r.DB.QueryRowContext(ctx, query,
		p.ID,
		p.PropertyID,
		p.Title,
		p.Description,
		p.PriceEstimate,
		string(photos),
		p.QualityOfLifeScore,
		p.LocationDetails,
		p.CreatedAt,
		p.UpdatedAt,
	))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
			return Params{}, ErrPropertyNotFound
		}
		return Params{}, err
	}
	return out, nil
}

func (r *PGRepo) GetByProperty(ctx context.Context, propertyID string) (Params, error) {
	query := `SELECT ` + paramsColumns + ` FROM enriched_property_params WHERE property_id = $1`
	p, err := scanParams(r.DB.QueryRowContext(ctx, query, propertyID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Params{}, ErrNotFound
		}
		return Params{}, err
	}
	return p, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanParams(row rowScanner) (Params, error) {
	var (
		p      Params
		price  sql.NullFloat64
		photos []byte
	)
	if err := row.Scan(&p.ID, &p.PropertyID, &p.Title, &p.Description, &price, &photos,
		&p.QualityOfLifeScore, &p.LocationDetails, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return Params{}, err
	}
	p.PriceEstimate = price.Float64
	if len(photos) > 0 {
		if err := json.Unmarshal(photos, &p.RecommendedPhotos); err != nil {
			return Params{}, err
		}
	}
	p.RecommendedPhotos = nonNil(p.RecommendedPhotos)
	return p, nil
}

func nonNil(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}
