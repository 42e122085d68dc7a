package auth

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/bookstore-api/internal/domain"
	apperrors "github.com/spec-kit/bookstore-api/pkg/util/errorutil"
)

// UserByEmailFinder is the slice of user storage the credential verifier needs.
type UserByEmailFinder interface {
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

// CredentialVerifier checks an email/password pair against stored hashes.
type CredentialVerifier struct {
	users UserByEmailFinder
}

// NewCredentialVerifier constructs a verifier.
func NewCredentialVerifier(users UserByEmailFinder) *CredentialVerifier {
	return &CredentialVerifier{users: users}
}

// Verify returns the stored user when the password matches its hash.
func (v *CredentialVerifier) Verify(ctx context.Context, email, password string) (*domain.User, error) {
	user, err := v.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewUserNotFound(nil)
		}
		return nil, apperrors.MapError(err)
	}
	if err := ComparePassword(user.PasswordHash, password); err != nil {
		return nil, apperrors.NewUnauthorized("invalid credentials")
	}
	return user, nil
}
