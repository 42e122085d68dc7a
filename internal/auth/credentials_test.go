package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/bookstore-api/internal/domain"
	apperrors "github.com/spec-kit/bookstore-api/pkg/util/errorutil"
)

type stubUserFinder struct {
	users map[string]*domain.User
	err   error
}

func (s stubUserFinder) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	user, ok := s.users[email]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return user, nil
}

func TestCredentialVerifier(t *testing.T) {
	hash, err := HashPassword("correct-horse", bcrypt.MinCost)
	require.NoError(t, err)
	stored := &domain.User{ID: 1, Email: "admin@example.com", Role: domain.RoleAdmin, PasswordHash: hash}
	verifier := NewCredentialVerifier(stubUserFinder{users: map[string]*domain.User{stored.Email: stored}})

	tests := []struct {
		name     string
		email    string
		password string
		code     string
	}{
		{name: "match", email: "admin@example.com", password: "correct-horse"},
		{name: "wrong password", email: "admin@example.com", password: "battery", code: apperrors.CodeUnauthorized},
		{name: "unknown email", email: "nobody@example.com", password: "correct-horse", code: apperrors.CodeUserNotFound},
		{name: "case sensitive email", email: "ADMIN@example.com", password: "correct-horse", code: apperrors.CodeUserNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, err := verifier.Verify(context.Background(), tt.email, tt.password)
			if tt.code == "" {
				require.NoError(t, err)
				require.Equal(t, stored, user)
				return
			}
			require.Nil(t, user)
			require.True(t, apperrors.HasCode(err, tt.code), "got %v", err)
		})
	}
}

func TestCredentialVerifier_StorageFailureIsInternal(t *testing.T) {
	verifier := NewCredentialVerifier(stubUserFinder{err: errors.New("connection reset")})

	_, err := verifier.Verify(context.Background(), "a@example.com", "pw")
	require.True(t, apperrors.HasCode(err, apperrors.CodeInternal))
}
