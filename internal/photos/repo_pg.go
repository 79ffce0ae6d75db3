package photos

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

const pgForeignKeyViolation = "23503"

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const photoColumns = `id, url, public_id, section, property_id, created_at, updated_at`

func (r *PGRepo) Create(ctx context.Context, p Photo) (Photo, error) {
	const query = `
INSERT INTO photos (url, public_id, section, property_id, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id`

	now := time.Now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = p.CreatedAt
	}

	var publicID sql.NullString
	if p.PublicID != "" {
		publicID = sql.NullString{String: p.PublicID, Valid: true}
	}

	err := r.DB.QueryRowContext(ctx, query,
		p.URL,
		publicID,
		string(p.Section),
		p.PropertyID,
		p.CreatedAt,
		p.UpdatedAt,
	).Scan(&p.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
			return Photo{}, ErrPropertyNotFound
		}
		return Photo{}, err
	}
	return p, nil
}

func (r *PGRepo) GetByID(ctx context.Context, id int64) (Photo, error) {
	query := `SELECT ` + photoColumns + ` FROM photos WHERE id = $1`
	p, err := scanPhoto(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Photo{}, ErrNotFound
		}
		return Photo{}, err
	}
	return p, nil
}

func (r *PGRepo) ListByProperty(ctx context.Context, propertyID string) ([]Photo, error) {
	query := `SELECT ` + photoColumns + ` FROM photos WHERE property_id = $1 ORDER BY created_at ASC, id ASC`
	rows, err := r.DB.QueryContext(ctx, query, propertyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Photo, 0)
	for rows.Next() {
		p, err := scanPhoto(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *PGRepo) UpdateSection(ctx context.Context, id int64, section Section, updatedAt time.Time) (Photo, error) {
	query := `UPDATE photos SET section = $1, updated_at = $2 WHERE id = $3 RETURNING ` + photoColumns
	p, err := scanPhoto(r.DB.QueryRowContext(ctx, query, string(section), updatedAt, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Photo{}, ErrNotFound
		}
		return Photo{}, err
	}
	return p, nil
}

func (r *PGRepo) Delete(ctx context.Context, id int64) (int64, error) {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM photos WHERE id = $1`, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPhoto(row rowScanner) (Photo, error) {
	var p Photo
	var publicID sql.NullString
	var section string
	if err := row.Scan(&p.ID, &p.URL, &publicID, &section, &p.PropertyID, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return Photo{}, err
	}
	p.Section = Section(section)
	if publicID.Valid {
		p.PublicID = publicID.String
	}
	return p, nil
}
