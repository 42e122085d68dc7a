package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/bookstore-api/internal/auth"
	"github.com/spec-kit/bookstore-api/internal/domain"
	apperrors "github.com/spec-kit/bookstore-api/pkg/util/errorutil"
)

func seedUser(t *testing.T, users *fakeUsers, email, password string, role domain.Role) *domain.User {
	t.Helper()
	hash, err := auth.HashPassword(password, bcrypt.MinCost)
	require.NoError(t, err)
	user := &domain.User{Email: email, Name: "Reader", Role: role, PasswordHash: hash}
	require.NoError(t, users.Create(context.Background(), user))
	return user
}

func newAuthFixture(t *testing.T) (*AuthService, *fakeUsers) {
	t.Helper()
	tm, err := auth.NewTokenManager("access-secret", "refresh-secret", 15*time.Minute, 7*24*time.Hour)
	require.NoError(t, err)
	users := newFakeUsers()
	return NewAuthService(users, tm), users
}

func TestAuthService_LoginIssuesTokensAndPersistsRefresh(t *testing.T) {
	ctx := context.Background()
	svc, users := newAuthFixture(t)
	user := seedUser(t, users, "admin@example.com", "secret-pw", domain.RoleAdmin)

	res, err := svc.Login(ctx, "admin@example.com", "secret-pw")
	require.NoError(t, err)
	require.Equal(t, user.ID, res.User.ID)

	claim, err := svc.TokenManager().ParseAccessToken(res.Tokens.AccessToken)
	require.NoError(t, err)
	require.Equal(t, domain.IdentityClaim{SubjectID: user.ID, Email: "admin@example.com", Role: domain.RoleAdmin}, claim)

	stored, err := users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.RefreshToken)
	require.Equal(t, res.Tokens.RefreshToken, *stored.RefreshToken)
}

func TestAuthService_LoginFailures(t *testing.T) {
	ctx := context.Background()
	svc, users := newAuthFixture(t)
	seedUser(t, users, "reader@example.com", "secret-pw", domain.RoleUser)

	_, err := svc.Login(ctx, "reader@example.com", "wrong")
	require.True(t, apperrors.HasCode(err, apperrors.CodeUnauthorized))

	_, err = svc.Login(ctx, "nobody@example.com", "secret-pw")
	require.True(t, apperrors.HasCode(err, apperrors.CodeUserNotFound))
}

func TestAuthService_RefreshIssuesFreshAccessTokens(t *testing.T) {
	ctx := context.Background()
	svc, users := newAuthFixture(t)
	seedUser(t, users, "reader@example.com", "secret-pw", domain.RoleUser)

	res, err := svc.Login(ctx, "reader@example.com", "secret-pw")
	require.NoError(t, err)

	first, _, err := svc.Refresh(ctx, res.Tokens.RefreshToken)
	require.NoError(t, err)
	second, _, err := svc.Refresh(ctx, res.Tokens.RefreshToken)
	require.NoError(t, err)
	require.NotEqual(t, first, second)

	claim, err := svc.TokenManager().ParseAccessToken(second)
	require.NoError(t, err)
	require.Equal(t, res.User.ID, claim.SubjectID)
}

func TestAuthService_RefreshRejectsSupersededToken(t *testing.T) {
	ctx := context.Background()
	svc, users := newAuthFixture(t)
	seedUser(t, users, "reader@example.com", "secret-pw", domain.RoleUser)

	sessionA, err := svc.Login(ctx, "reader@example.com", "secret-pw")
	require.NoError(t, err)
	sessionB, err := svc.Login(ctx, "reader@example.com", "secret-pw")
	require.NoError(t, err)

	_, _, err = svc.Refresh(ctx, sessionA.Tokens.RefreshToken)
	require.True(t, apperrors.HasCode(err, apperrors.CodeForbidden))

	_, _, err = svc.Refresh(ctx, sessionB.Tokens.RefreshToken)
	require.NoError(t, err)
}

func TestAuthService_RefreshRejectsDeletedUser(t *testing.T) {
	ctx := context.Background()
	svc, users := newAuthFixture(t)
	user := seedUser(t, users, "reader@example.com", "secret-pw", domain.RoleUser)

	res, err := svc.Login(ctx, "reader@example.com", "secret-pw")
	require.NoError(t, err)
	require.NoError(t, users.Delete(ctx, user.ID))

	_, _, err = svc.Refresh(ctx, res.Tokens.RefreshToken)
	require.True(t, apperrors.HasCode(err, apperrors.CodeForbidden))
}

func TestAuthService_RefreshRejectsForeignSignature(t *testing.T) {
	ctx := context.Background()
	svc, users := newAuthFixture(t)
	user := seedUser(t, users, "reader@example.com", "secret-pw", domain.RoleUser)

	other, err := auth.NewTokenManager("other-access", "other-refresh", time.Minute, time.Hour)
	require.NoError(t, err)
	forged, _, err := other.IssueRefreshToken(user.ID)
	require.NoError(t, err)

	_, _, err = svc.Refresh(ctx, forged)
	require.True(t, apperrors.HasCode(err, apperrors.CodeTokenInvalid))

	access, _, err := svc.TokenManager().IssueAccessToken(domain.ClaimFor(user))
	require.NoError(t, err)
	_, _, err = svc.Refresh(ctx, access)
	require.True(t, apperrors.HasCode(err, apperrors.CodeTokenInvalid))
}

func TestAuthService_LogoutRevokesRefresh(t *testing.T) {
	ctx := context.Background()
	svc, users := newAuthFixture(t)
	user := seedUser(t, users, "reader@example.com", "secret-pw", domain.RoleUser)

	res, err := svc.Login(ctx, "reader@example.com", "secret-pw")
	require.NoError(t, err)
	require.NoError(t, svc.Logout(ctx, user.ID))

	stored, err := users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	require.Nil(t, stored.RefreshToken)

	_, _, err = svc.Refresh(ctx, res.Tokens.RefreshToken)
	require.True(t, apperrors.HasCode(err, apperrors.CodeForbidden))

	require.True(t, apperrors.HasCode(svc.Logout(ctx, 999), apperrors.CodeUserNotFound))
}

func TestAuthService_BannedUserIsLockedOut(t *testing.T) {
	ctx := context.Background()
	svc, users := newAuthFixture(t)
	user := seedUser(t, users, "reader@example.com", "secret-pw", domain.RoleUser)

	res, err := svc.Login(ctx, "reader@example.com", "secret-pw")
	require.NoError(t, err)

	admin := NewAdminService(users, nil, nil, nil)
	banned, err := admin.BanUser(ctx, &domain.IdentityClaim{SubjectID: 99, Role: domain.RoleAdmin}, user.ID)
	require.NoError(t, err)
	require.True(t, banned.Banned())

	_, _, err = svc.Refresh(ctx, res.Tokens.RefreshToken)
	require.True(t, apperrors.HasCode(err, apperrors.CodeForbidden))

	_, err = svc.Login(ctx, "reader@example.com", "secret-pw")
	require.True(t, apperrors.HasCode(err, apperrors.CodeForbidden))
}

func TestUserService_PasswordChangeRevokesRefresh(t *testing.T) {
	ctx := context.Background()
	svc, users := newAuthFixture(t)
	user := seedUser(t, users, "reader@example.com", "secret-pw", domain.RoleUser)
	profiles := NewUserService(UserDependencies{UserRepo: users, BcryptCost: bcrypt.MinCost})

	res, err := svc.Login(ctx, "reader@example.com", "secret-pw")
	require.NoError(t, err)

	name := "Renamed"
	_, err = profiles.Update(ctx, user.ID, UserUpdateInput{Name: &name})
	require.NoError(t, err)
	_, _, err = svc.Refresh(ctx, res.Tokens.RefreshToken)
	require.NoError(t, err)

	password := "another-pw"
	updated, err := profiles.Update(ctx, user.ID, UserUpdateInput{Password: &password})
	require.NoError(t, err)
	require.Nil(t, updated.RefreshToken)

	stored, err := users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	require.Nil(t, stored.RefreshToken)

	_, _, err = svc.Refresh(ctx, res.Tokens.RefreshToken)
	require.True(t, apperrors.HasCode(err, apperrors.CodeForbidden))

	_, err = svc.Login(ctx, "reader@example.com", "another-pw")
	require.NoError(t, err)
}
