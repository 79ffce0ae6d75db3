package users

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"housy-backend/internal/shared/auth"
)

func TestRegisterForcesClientRoleAndHashesPassword(t *testing.T) {
	svc := NewService(NewMemoryRepo())

	user, err := svc.Register(context.Background(), RegisterInput{Email: " Ana@Example.com ", Password: "secret1", Name: "Ana"})
	require.NoError(t, err)
	assert.Equal(t, auth.RoleClient, user.Role)
	assert.Equal(t, "ana@example.com", user.Email)
	assert.NotEqual(t, "secret1", user.PasswordHash)
	assert.NoError(t, auth.CheckPassword(user.PasswordHash, "secret1"))

	_, err = svc.Register(context.Background(), RegisterInput{Email: "ana@example.com", Password: "another1"})
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestRegisterValidation(t *testing.T) {
	svc := NewService(NewMemoryRepo())

	_, err := svc.Register(context.Background(), RegisterInput{Email: "not-an-email", Password: "secret1"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Register(context.Background(), RegisterInput{Email: "a@example.com", Password: "123"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestAuthenticate(t *testing.T) {
	svc := NewService(NewMemoryRepo())
	_, err := svc.Register(context.Background(), RegisterInput{Email: "bo@example.com", Password: "secret1"})
	require.NoError(t, err)

	user, err := svc.Authenticate(context.Background(), "BO@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "bo@example.com", user.Email)

	_, err = svc.Authenticate(context.Background(), "bo@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Authenticate(context.Background(), "nobody@example.com", "secret1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestUpsertOAuthCreatesOnce(t *testing.T) {
	svc := NewService(NewMemoryRepo())

	first, err := svc.UpsertOAuth(context.Background(), "g@example.com", "G")
	require.NoError(t, err)
	second, err := svc.UpsertOAuth(context.Background(), "g@example.com", "G")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, auth.RoleClient, first.Role)

	_, err = svc.Authenticate(context.Background(), "g@example.com", "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestUpdatePermissions(t *testing.T) {
	svc := NewService(NewMemoryRepo())
	user, err := svc.Register(context.Background(), RegisterInput{Email: "c@example.com", Password: "secret1"})
	require.NoError(t, err)

	self := auth.Claims{Role: auth.RoleClient}
	self.Subject = user.ID
	other := auth.Claims{Role: auth.RoleClient}
	other.Subject = "someone-else"
	admin := auth.Claims{Role: auth.RoleAdmin}
	admin.Subject = "admin-1"

	name := "Cleo"
	updated, err := svc.Update(context.Background(), self, user.ID, UpdateInput{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Cleo", updated.Name)

	_, err = svc.Update(context.Background(), other, user.ID, UpdateInput{Name: &name})
	assert.ErrorIs(t, err, auth.ErrForbidden)

	agent := auth.RoleAgent
	_, err = svc.Update(context.Background(), self, user.ID, UpdateInput{Role: &agent})
	assert.ErrorIs(t, err, auth.ErrForbidden)

	updated, err = svc.Update(context.Background(), admin, user.ID, UpdateInput{Role: &agent})
	require.NoError(t, err)
	assert.Equal(t, auth.RoleAgent, updated.Role)

	_, err = svc.Update(context.Background(), admin, "00000000-0000-0000-0000-000000000099", UpdateInput{Name: &name})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDelete(t *testing.T) {
	svc := NewService(NewMemoryRepo())
	user, err := svc.Register(context.Background(), RegisterInput{Email: "d@example.com", Password: "secret1"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), user.ID))
	assert.ErrorIs(t, svc.Delete(context.Background(), user.ID), ErrNotFound)
}

func TestPGRepoCreateMapsUniqueViolation(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	mock.ExpectExec("INSERT INTO users").
		WillReturnError(&pgconn.PgError{Code: "23505", Message: "duplicate key value"})

	repo := &PGRepo{DB: db}
	err = repo.Create(context.Background(), User{ID: "u1", Email: "a@example.com", Role: auth.RoleClient})
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestPGRepoGetByEmailScansRole(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	mock.ExpectQuery("SELECT (.+) FROM users WHERE lower\\(email\\)").
		WithArgs("a@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "name", "password_hash", "role", "phone", "created_at", "updated_at"}).
			AddRow("u1", "a@example.com", "A", "hash", "agent", nil, now, now))

	repo := &PGRepo{DB: db}
	user, err := repo.GetByEmail(context.Background(), "a@example.com")
	require.NoError(t, err)
	assert.Equal(t, auth.RoleAgent, user.Role)
	assert.Empty(t, user.Phone)
}
