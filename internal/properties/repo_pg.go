package properties

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const propertyColumns = `id, title, description, price, bedrooms, bathrooms, location, latitude, longitude, status, user_id, created_at, updated_at`

func (r *PGRepo) Create(ctx context.Context, p Property) error {
	const query = `
INSERT INTO properties (id, title, description, price, bedrooms, bathrooms, location, latitude, longitude, status, user_id, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := r.DB.ExecContext(ctx, query,
		p.ID,
		p.Title,
		p.Description,
		p.Price,
		p.Bedrooms,
		p.Bathrooms,
		p.Location,
		nullableFloat(p.Latitude),
		nullableFloat(p.Longitude),
		nullableString(p.Status),
		nullableString(p.UserID),
		p.CreatedAt,
		p.UpdatedAt,
	)
	return err
}

func (r *PGRepo) GetByID(ctx context.Context, id string) (Property, error) {
	query := `SELECT ` + propertyColumns + ` FROM properties WHERE id = $1`
	p, err := scanProperty(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Property{}, ErrNotFound
		}
		return Property{}, err
	}
	return p, nil
}

func (r *PGRepo) List(ctx context.Context, f Filter) ([]Property, error) {
	var (
		where []string
		args  []any
	)
	if f.UserID != "" {
		args = append(args, f.UserID)
		where = append(where, fmt.Sprintf("user_id = $%d", len(args)))
	}
	if q := strings.TrimSpace(f.Query); q != "" {
		args = append(args, "%"+q+"%")
		where = append(where, fmt.Sprintf("(title ILIKE $%d OR location ILIKE $%d)", len(args), len(args)))
	}

	query := `SELECT ` + propertyColumns + ` FROM properties`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY created_at DESC, id ASC`

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Property, 0)
	for rows.Next() {
		p, err := scanProperty(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *PGRepo) Update(ctx context.Context, p Property) error {
	const query = `
UPDATE properties
SET title = $1, description = $2, price = $3, bedrooms = $4, bathrooms = $5, location = $6,
    latitude = $7, longitude = $8, status = $9, updated_at = $10
WHERE id = $11`
	res, err := r.DB.ExecContext(ctx, query,
		p.Title,
		p.Description,
		p.Price,
		p.Bedrooms,
		p.Bathrooms,
		p.Location,
		nullableFloat(p.Latitude),
		nullableFloat(p.Longitude),
		nullableString(p.Status),
		p.UpdatedAt,
		p.ID,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PGRepo) Delete(ctx context.Context, id string) (int64, error) {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM properties WHERE id = $1`, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProperty(row rowScanner) (Property, error) {
	var (
		p           Property
		lat, lng    sql.NullFloat64
		status, uid sql.NullString
	)
	if err := row.Scan(&p.ID, &p.Title, &p.Description, &p.Price, &p.Bedrooms, &p.Bathrooms, &p.Location,
		&lat, &lng, &status, &uid, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return Property{}, err
	}
	if lat.Valid {
		p.Latitude = &lat.Float64
	}
	if lng.Valid {
		p.Longitude = &lng.Float64
	}
	p.Status = status.String
	p.UserID = uid.String
	return p, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func nullableFloat(value *float64) any {
	if value == nil {
		return nil
	}
	return *value
}
