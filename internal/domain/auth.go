package domain

import "time"

// IdentityClaim is the identity carried by an access token.
type IdentityClaim struct {
	SubjectID int64  `json:"subjectId"`
	Email     string `json:"email"`
	Role      Role   `json:"role"`
}

// ClaimFor builds the claim issued for a user.
func ClaimFor(user *User) IdentityClaim {
	return IdentityClaim{SubjectID: user.ID, Email: user.Email, Role: ParseRole(string(user.Role))}
}

// TokenPair is returned from a successful login.
type TokenPair struct {
	AccessToken      string
	AccessExpiresAt  time.Time
	RefreshToken     string
	RefreshExpiresAt time.Time
}
