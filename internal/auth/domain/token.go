package domain

import "time"

// TokenTypeBearer is the only token type this service hands out.
const TokenTypeBearer = "Bearer"

// TokenPair is what login, signup and the external callback return.
type TokenPair struct {
	AccessToken  string        `json:"access_token"`
	RefreshToken string        `json:"refresh_token"`
	TokenType    string        `json:"token_type,omitempty"`
	ExpiresIn    time.Duration `json:"-"` // access token lifetime
}

// RefreshToken is the stored record backing a refresh token. There is at most
// one per principal; issuing a new one replaces it.
type RefreshToken struct {
	PrincipalID int64
	TokenHash   string // cryptox.FingerprintToken of the token value
	ExpiresAt   time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
