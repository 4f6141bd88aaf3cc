package domain

import "time"

// ProviderKakao marks principals created through the Kakao login flow.
const ProviderKakao = "kakao"

// Principal is an account that can hold tokens. External principals have no
// password hash and are created already verified.
type Principal struct {
	ID            int64
	Email         string // login id, unique
	Nickname      string
	PasswordHash  string // argon2 encoded, empty for external principals
	EmailVerified bool
	Provider      string // "" for local credentials
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// IsExternal reports whether the principal can only sign in through a provider.
func (p Principal) IsExternal() bool {
	return p.PasswordHash == ""
}
