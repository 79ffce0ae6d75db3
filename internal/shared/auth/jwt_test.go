package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestSignAndValidateRoundTrip(t *testing.T) {
	m := NewTokenManager("s3cret", time.Hour)

	token, err := m.Sign("user-1", RoleAgent, "agent@example.com")
	require.NoError(t, err)

	claims, err := m.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID())
	assert.Equal(t, RoleAgent, claims.Role)
	assert.Equal(t, "agent@example.com", claims.Email)
	require.NotNil(t, claims.ExpiresAt)
	require.NotNil(t, claims.IssuedAt)
}

func TestValidateRejectsExpiredByOneSecond(t *testing.T) {
	issued := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	signer := NewTokenManager("s3cret", time.Minute).WithClock(fixedClock(issued))
	token, err := signer.Sign("user-1", RoleAdmin, "")
	require.NoError(t, err)

	validator := NewTokenManager("s3cret", time.Minute).WithClock(fixedClock(issued.Add(time.Minute + time.Second)))
	_, err = validator.Validate(token)
	assert.True(t, errors.Is(err, ErrInvalidToken), "got %v", err)
}

func TestValidateRejectsBadInput(t *testing.T) {
	m := NewTokenManager("s3cret", time.Hour)
	good, err := m.Sign("user-1", RoleClient, "")
	require.NoError(t, err)

	other := NewTokenManager("different", time.Hour)
	forged, err := other.Sign("user-1", RoleAdmin, "")
	require.NoError(t, err)

	noExp := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Role:             RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{Subject: "user-1"},
	})
	noExpToken, err := noExp.SignedString([]byte("s3cret"))
	require.NoError(t, err)

	badRole := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Role: Role("owner"),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	badRoleToken, err := badRole.SignedString([]byte("s3cret"))
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{name: "empty", token: ""},
		{name: "malformed", token: "not.a.jwt"},
		{name: "wrong signature", token: forged},
		{name: "tampered", token: good[:strings.LastIndex(good, ".")] + ".AAAA"},
		{name: "missing exp", token: noExpToken},
		{name: "unknown role", token: badRoleToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := m.Validate(tt.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestValidateRejectsNoneAlgorithm(t *testing.T) {
	m := NewTokenManager("s3cret", time.Hour)
	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		Role: RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	token, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = m.Validate(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestSignRequiresSubjectAndRole(t *testing.T) {
	m := NewTokenManager("s3cret", time.Hour)
	_, err := m.Sign("", RoleAdmin, "")
	assert.Error(t, err)
	_, err = m.Sign("user-1", Role("root"), "")
	assert.Error(t, err)
}

func TestResolveSecret(t *testing.T) {
	s, err := ResolveSecret("dev", "")
	require.NoError(t, err)
	assert.Equal(t, "dev-secret", s)

	_, err = ResolveSecret("production", " ")
	assert.Error(t, err)

	s, err = ResolveSecret("production", "abc")
	require.NoError(t, err)
	assert.Equal(t, "abc", s)
}
