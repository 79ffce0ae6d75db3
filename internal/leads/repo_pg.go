package leads

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

const pgForeignKeyViolation = "23503"

type PGRepo struct {
	DB *sql.DB
}

const leadColumns = `id, user_id, property_id, message, created_at, updated_at`

func (r *PGRepo) Create(ctx context.Context, l Lead) error {
	const query = `
INSERT INTO leads (id, user_id, property_id, message, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6)`
	var userID sql.NullString
	if l.UserID != "" {
		userID = sql.NullString{String: l.UserID, Valid: true}
	}
	_, err := r.DB.ExecContext(ctx, query, l.ID, userID, l.PropertyID, l.Message, l.CreatedAt, l.UpdatedAt)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
		return ErrPropertyNotFound
	}
	return err
}

func (r *PGRepo) GetByID(ctx context.Context, id string) (Lead, error) {
	l, err := scanLead(r.DB.QueryRowContext(ctx, `SELECT `+leadColumns+` FROM leads WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Lead{}, ErrNotFound
		}
		return Lead{}, err
	}
	return l, nil
}

func (r *PGRepo) List(ctx context.Context, propertyID string) ([]Lead, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if propertyID == "" {
		rows, err = r.DB.QueryContext(ctx, `SELECT `+leadColumns+` FROM leads ORDER BY created_at DESC, id ASC`)
	} else {
		rows, err = r.DB.QueryContext(ctx, `SELECT `+leadColumns+` FROM leads WHERE property_id = $1 ORDER BY created_at DESC, id ASC`, propertyID)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Lead, 0)
	for rows.Next() {
		l, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (r *PGRepo) Delete(ctx context.Context, id string) (int64, error) {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM leads WHERE id = $1`, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLead(row rowScanner) (Lead, error) {
	var l Lead
	var userID sql.NullString
	if err := row.Scan(&l.ID, &userID, &l.PropertyID, &l.Message, &l.CreatedAt, &l.UpdatedAt); err != nil {
		return Lead{}, err
	}
	l.UserID = userID.String
	return l, nil
}
