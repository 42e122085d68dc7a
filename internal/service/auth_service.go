package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/bookstore-api/internal/auth"
	"github.com/spec-kit/bookstore-api/internal/domain"
	"github.com/spec-kit/bookstore-api/internal/repository"
	apperrors "github.com/spec-kit/bookstore-api/pkg/util/errorutil"
)

// LoginResult is a successful login: the user and its freshly minted tokens.
type LoginResult struct {
	User   *domain.User
	Tokens domain.TokenPair
}

// AuthService coordinates login, refresh and logout.
// One refresh token is persisted per user: login overwrites it, logout clears it,
// and refresh only honors the stored value.
type AuthService struct {
	users    repository.UserRepository
	verifier *auth.CredentialVerifier
	tokenMgr *auth.TokenManager
}

// NewAuthService builds the service.
func NewAuthService(users repository.UserRepository, tokenMgr *auth.TokenManager) *AuthService {
	return &AuthService{
		users:    users,
		verifier: auth.NewCredentialVerifier(users),
		tokenMgr: tokenMgr,
	}
}

// Login verifies credentials, issues an access/refresh pair and records the refresh token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.verifier.Verify(ctx, email, password)
	if err != nil {
		return nil, err
	}
	if user.Banned() {
		return nil, apperrors.NewForbidden("account is banned")
	}

	access, accessExp, err := s.tokenMgr.IssueAccessToken(domain.ClaimFor(user))
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	refresh, refreshExp, err := s.tokenMgr.IssueRefreshToken(user.ID)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	if err := s.users.UpdateRefreshToken(ctx, user.ID, &refresh); err != nil {
		return nil, userError(err)
	}
	user.RefreshToken = &refresh

	return &LoginResult{
		User: user,
		Tokens: domain.TokenPair{
			AccessToken:      access,
			AccessExpiresAt:  accessExp,
			RefreshToken:     refresh,
			RefreshExpiresAt: refreshExp,
		},
	}, nil
}

// Refresh exchanges a valid, still-current refresh token for a new access token.
// The refresh token itself is not rotated.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (string, time.Time, error) {
	userID, err := s.tokenMgr.ParseRefreshToken(refreshToken)
	if err != nil {
		return "", time.Time{}, auth.TokenError(err)
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", time.Time{}, apperrors.NewForbidden("refresh token is no longer valid; log in again")
		}
		return "", time.Time{}, apperrors.MapError(err)
	}
	if user.Banned() {
		return "", time.Time{}, apperrors.NewForbidden("account is banned")
	}
	if user.RefreshToken == nil || subtle.ConstantTimeCompare([]byte(*user.RefreshToken), []byte(refreshToken)) != 1 {
		return "", time.Time{}, apperrors.NewForbidden("refresh token is no longer valid; log in again")
	}

	access, exp, err := s.tokenMgr.IssueAccessToken(domain.ClaimFor(user))
	if err != nil {
		return "", time.Time{}, apperrors.NewInternalError(err)
	}
	return access, exp, nil
}

// Logout forgets the user's refresh token. Outstanding access tokens stay valid until expiry.
func (s *AuthService) Logout(ctx context.Context, userID int64) error {
	if err := s.users.UpdateRefreshToken(ctx, userID, nil); err != nil {
		return userError(err)
	}
	return nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}
