package domain

import (
	"time"

	"github.com/choosyhq/sessiond/pkg/idx"
)

// TokenPair is what a successful login or refresh returns.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
}

// RefreshToken is a stored single-use credential. Token is the opaque
// string handed to the client ("<platform>:<base62 body>"); the sealed
// identity travels with it so a refresh can re-mint tokens without any
// other lookup.
type RefreshToken struct {
	ID             idx.ID
	SubjectKey     string
	Token          string
	SealedIdentity string
	ExpiresAt      time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Expired reports whether the token's lifetime has passed at now.
func (rt RefreshToken) Expired(now time.Time) bool {
	return now.After(rt.ExpiresAt)
}
