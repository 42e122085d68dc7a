package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/spec-kit/bookstore-api/internal/domain"
	apperrors "github.com/spec-kit/bookstore-api/pkg/util/errorutil"
)

var (
	// ErrTokenExpired means the signature checked out but the token is past its expiry.
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenInvalid covers malformed tokens, bad signatures and wrong token types.
	ErrTokenInvalid = errors.New("token invalid")
	// ErrMissingSecret is returned when a TokenManager is built without signing keys.
	ErrMissingSecret = errors.New("token signing secret is empty")
)

// TokenType separates access from refresh tokens when both share one secret.
type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

// AccessClaims is the JWT payload of an access token.
type AccessClaims struct {
	UserID int64     `json:"uid"`
	Email  string    `json:"email"`
	Role   string    `json:"role"`
	Type   TokenType `json:"typ"`
	jwt.RegisteredClaims
}

// RefreshClaims is the JWT payload of a refresh token.
type RefreshClaims struct {
	UserID int64     `json:"uid"`
	Type   TokenType `json:"typ"`
	jwt.RegisteredClaims
}

// TokenManager handles issuing and validating JWT tokens.
type TokenManager struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	issuer        string
	now           func() time.Time
}

// TokenOption customizes a TokenManager.
type TokenOption func(*TokenManager)

// WithClock overrides the time source used for issuing and validating tokens.
func WithClock(now func() time.Time) TokenOption {
	return func(tm *TokenManager) {
		if now != nil {
			tm.now = now
		}
	}
}

// WithIssuer sets the iss claim on issued tokens.
func WithIssuer(issuer string) TokenOption {
	return func(tm *TokenManager) {
		tm.issuer = issuer
	}
}

// NewTokenManager builds a new manager. Both secrets are required.
func NewTokenManager(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration, opts ...TokenOption) (*TokenManager, error) {
	if accessSecret == "" || refreshSecret == "" {
		return nil, ErrMissingSecret
	}
	if accessTTL <= 0 {
		accessTTL = 15 * time.Minute
	}
	if refreshTTL <= 0 {
		refreshTTL = 7 * 24 * time.Hour
	}
	tm := &TokenManager{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(tm)
	}
	return tm, nil
}

// IssueAccessToken signs the identity claim into a short-lived access token.
func (tm *TokenManager) IssueAccessToken(claim domain.IdentityClaim) (string, time.Time, error) {
	now := tm.now()
	expiresAt := now.Add(tm.accessTTL)
	claims := &AccessClaims{
		UserID:           claim.SubjectID,
		Email:            claim.Email,
		Role:             string(domain.ParseRole(string(claim.Role))),
		Type:             TokenTypeAccess,
		RegisteredClaims: tm.registered(claim.SubjectID, now, expiresAt),
	}
	return tm.sign(claims, tm.accessSecret, expiresAt)
}

// IssueRefreshToken signs a long-lived refresh token for the subject.
func (tm *TokenManager) IssueRefreshToken(subjectID int64) (string, time.Time, error) {
	now := tm.now()
	expiresAt := now.Add(tm.refreshTTL)
	claims := &RefreshClaims{
		UserID:           subjectID,
		Type:             TokenTypeRefresh,
		RegisteredClaims: tm.registered(subjectID, now, expiresAt),
	}
	return tm.sign(claims, tm.refreshSecret, expiresAt)
}

// ParseAccessToken validates an access token and returns its identity claim.
func (tm *TokenManager) ParseAccessToken(tokenStr string) (domain.IdentityClaim, error) {
	claims := &AccessClaims{}
	if err := tm.parse(tokenStr, claims, tm.accessSecret); err != nil {
		return domain.IdentityClaim{}, err
	}
	if claims.Type != TokenTypeAccess || claims.UserID <= 0 {
		return domain.IdentityClaim{}, ErrTokenInvalid
	}
	return domain.IdentityClaim{
		SubjectID: claims.UserID,
		Email:     claims.Email,
		Role:      domain.ParseRole(claims.Role),
	}, nil
}

// ParseRefreshToken validates a refresh token and returns its subject id.
func (tm *TokenManager) ParseRefreshToken(tokenStr string) (int64, error) {
	claims := &RefreshClaims{}
	if err := tm.parse(tokenStr, claims, tm.refreshSecret); err != nil {
		return 0, err
	}
	if claims.Type != TokenTypeRefresh || claims.UserID <= 0 {
		return 0, ErrTokenInvalid
	}
	return claims.UserID, nil
}

// AccessTTL exposes the configured access token lifetime.
func (tm *TokenManager) AccessTTL() time.Duration {
	return tm.accessTTL
}

func (tm *TokenManager) registered(subjectID int64, now, expiresAt time.Time) jwt.RegisteredClaims {
	return jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Issuer:    tm.issuer,
		Subject:   strconv.FormatInt(subjectID, 10),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
		IssuedAt:  jwt.NewNumericDate(now),
	}
}

func (tm *TokenManager) sign(claims jwt.Claims, secret []byte, expiresAt time.Time) (string, time.Time, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expiresAt, nil
}

func (tm *TokenManager) parse(tokenStr string, claims jwt.Claims, secret []byte) error {
	parsed, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(tm.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return fmt.Errorf("%w: %v", ErrTokenExpired, err)
		}
		return fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	if !parsed.Valid {
		return ErrTokenInvalid
	}
	return nil
}

// TokenError maps token verification failures onto the API error taxonomy.
func TokenError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrTokenExpired):
		return apperrors.NewTokenExpired("token expired")
	default:
		return apperrors.NewTokenInvalid("invalid token")
	}
}
