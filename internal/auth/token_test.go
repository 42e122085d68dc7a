package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/spec-kit/bookstore-api/internal/domain"
	apperrors "github.com/spec-kit/bookstore-api/pkg/util/errorutil"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestTokenManager(t *testing.T, clock *fakeClock) *TokenManager {
	t.Helper()
	tm, err := NewTokenManager("access-secret", "refresh-secret", 15*time.Minute, 7*24*time.Hour, WithClock(clock.Now))
	require.NoError(t, err)
	return tm
}

func TestNewTokenManager_RequiresSecrets(t *testing.T) {
	_, err := NewTokenManager("", "refresh", time.Minute, time.Hour)
	require.ErrorIs(t, err, ErrMissingSecret)

	_, err = NewTokenManager("access", "", time.Minute, time.Hour)
	require.ErrorIs(t, err, ErrMissingSecret)
}

func TestAccessToken_RoundTrip(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	tm := newTestTokenManager(t, clock)

	claim := domain.IdentityClaim{SubjectID: 42, Email: "reader@example.com", Role: domain.RoleAdmin}
	token, exp, err := tm.IssueAccessToken(claim)
	require.NoError(t, err)
	require.WithinDuration(t, clock.now.Add(15*time.Minute), exp, time.Second)

	clock.Advance(14 * time.Minute)
	decoded, err := tm.ParseAccessToken(token)
	require.NoError(t, err)
	require.Equal(t, claim, decoded)
}

func TestAccessToken_ExpiredIsDistinguishedFromInvalid(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	tm := newTestTokenManager(t, clock)

	token, _, err := tm.IssueAccessToken(domain.IdentityClaim{SubjectID: 1, Email: "a@example.com", Role: domain.RoleUser})
	require.NoError(t, err)

	clock.Advance(16 * time.Minute)
	_, err = tm.ParseAccessToken(token)
	require.ErrorIs(t, err, ErrTokenExpired)
	require.False(t, errors.Is(err, ErrTokenInvalid))
	require.True(t, apperrors.HasCode(TokenError(err), apperrors.CodeTokenExpired))
}

func TestAccessToken_WrongSecretIsInvalid(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	tm := newTestTokenManager(t, clock)
	other, err := NewTokenManager("another-secret", "refresh-secret", 15*time.Minute, time.Hour, WithClock(clock.Now))
	require.NoError(t, err)

	token, _, err := other.IssueAccessToken(domain.IdentityClaim{SubjectID: 1, Role: domain.RoleUser})
	require.NoError(t, err)

	_, err = tm.ParseAccessToken(token)
	require.ErrorIs(t, err, ErrTokenInvalid)
	require.True(t, apperrors.HasCode(TokenError(err), apperrors.CodeTokenInvalid))

	// a forged token stays invalid even once it would have expired
	clock.Advance(time.Hour)
	_, err = tm.ParseAccessToken(token)
	require.ErrorIs(t, err, ErrTokenInvalid)
}

func TestAccessToken_Malformed(t *testing.T) {
	tm := newTestTokenManager(t, &fakeClock{now: time.Now()})

	for _, raw := range []string{"", "not-a-token", "a.b.c"} {
		_, err := tm.ParseAccessToken(raw)
		require.ErrorIs(t, err, ErrTokenInvalid, raw)
	}
}

func TestRefreshToken_RoundTripAndExpiry(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	tm := newTestTokenManager(t, clock)

	token, exp, err := tm.IssueRefreshToken(7)
	require.NoError(t, err)
	require.WithinDuration(t, clock.now.Add(7*24*time.Hour), exp, time.Second)

	clock.Advance(6 * 24 * time.Hour)
	subject, err := tm.ParseRefreshToken(token)
	require.NoError(t, err)
	require.Equal(t, int64(7), subject)

	clock.Advance(2 * 24 * time.Hour)
	_, err = tm.ParseRefreshToken(token)
	require.ErrorIs(t, err, ErrTokenExpired)
}

func TestTokenTypesAreNotInterchangeable(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	tm, err := NewTokenManager("shared", "shared", 15*time.Minute, time.Hour, WithClock(clock.Now))
	require.NoError(t, err)

	access, _, err := tm.IssueAccessToken(domain.IdentityClaim{SubjectID: 3, Role: domain.RoleUser})
	require.NoError(t, err)
	refresh, _, err := tm.IssueRefreshToken(3)
	require.NoError(t, err)

	_, err = tm.ParseRefreshToken(access)
	require.ErrorIs(t, err, ErrTokenInvalid)
	_, err = tm.ParseAccessToken(refresh)
	require.ErrorIs(t, err, ErrTokenInvalid)
}

func TestIssuedTokensAreUnique(t *testing.T) {
	tm := newTestTokenManager(t, &fakeClock{now: time.Now()})
	claim := domain.IdentityClaim{SubjectID: 9, Role: domain.RoleUser}

	first, _, err := tm.IssueAccessToken(claim)
	require.NoError(t, err)
	second, _, err := tm.IssueAccessToken(claim)
	require.NoError(t, err)
	require.NotEqual(t, first, second)

	r1, _, err := tm.IssueRefreshToken(9)
	require.NoError(t, err)
	r2, _, err := tm.IssueRefreshToken(9)
	require.NoError(t, err)
	require.NotEqual(t, r1, r2)
}

func TestUnknownRoleDecodesAsUser(t *testing.T) {
	tm := newTestTokenManager(t, &fakeClock{now: time.Now()})

	token, _, err := tm.IssueAccessToken(domain.IdentityClaim{SubjectID: 5, Role: domain.Role("SUPERUSER")})
	require.NoError(t, err)

	claim, err := tm.ParseAccessToken(token)
	require.NoError(t, err)
	require.Equal(t, domain.RoleUser, claim.Role)
}
