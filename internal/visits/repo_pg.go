package visits

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

const pgForeignKeyViolation = "23503"

type PGRepo struct {
	DB *sql.DB
}

const visitColumns = `id, date, status, property_id, user_id, created_at, updated_at`

func (r *PGRepo) Create(ctx context.Context, v Visit) (Visit, error) {
	const query = `
INSERT INTO visits (date, status, property_id, user_id, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id`
	err := r.DB.QueryRowContext(ctx, query,
		v.Date, string(v.Status), v.PropertyID, v.UserID, v.CreatedAt, v.UpdatedAt,
	).Scan(&v.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
			return Visit{}, ErrPropertyNotFound
		}
		return Visit{}, err
	}
	return v, nil
}

func (r *PGRepo) GetByID(ctx context.Context, id int64) (Visit, error) {
	v, err := scanVisit(r.DB.QueryRowContext(ctx, `SELECT `+visitColumns+` FROM visits WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Visit{}, ErrNotFound
		}
		return Visit{}, err
	}
	return v, nil
}

func (r *PGRepo) ListByUser(ctx context.Context, userID string) ([]Visit, error) {
	return r.list(ctx, `SELECT `+visitColumns+` FROM visits WHERE user_id = $1 ORDER BY date ASC, id ASC`, userID)
}

func (r *PGRepo) ListByProperty(ctx context.Context, propertyID string) ([]Visit, error) {
	return r.list(ctx, `SELECT `+visitColumns+` FROM visits WHERE property_id = $1 ORDER BY date ASC, id ASC`, propertyID)
}

func (r *PGRepo) list(ctx context.Context, query, arg string) ([]Visit, error) {
	rows, err := r.DB.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Visit, 0)
	for rows.Next() {
		v, err := scanVisit(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (r *PGRepo) Update(ctx context.Context, v Visit) (Visit, error) {
	query := `UPDATE visits SET date = $1, status = $2, updated_at = $3 WHERE id = $4 RETURNING ` + visitColumns
	out, err := scanVisit(r.DB.QueryRowContext(ctx, query, v.Date, string(v.Status), v.UpdatedAt, v.ID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Visit{}, ErrNotFound
		}
		return Visit{}, err
	}
	return out, nil
}

func (r *PGRepo) HasConflict(ctx context.Context, propertyID string, date time.Time, excludeID int64) (bool, error) {
	const query = `
SELECT EXISTS (
  SELECT 1 FROM visits
  WHERE property_id = $1 AND date = $2 AND status <> 'cancelled' AND id <> $3
)`
	var exists bool
	if err := r.DB.QueryRowContext(ctx, query, propertyID, date, excludeID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanVisit(row rowScanner) (Visit, error) {
	var v Visit
	var status string
	if err := row.Scan(&v.ID, &v.Date, &status, &v.PropertyID, &v.UserID, &v.CreatedAt, &v.UpdatedAt); err != nil {
		return Visit{}, err
	}
	v.Status = Status(status)
	v.Date = v.Date.UTC()
	return v, nil
}
