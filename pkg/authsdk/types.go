package authsdk

// ============================================================================
// Error Types
// ============================================================================

// ErrorResponse is the JSON body of every error. Client code should use
// APIError instead.
type ErrorResponse struct {
	// Error is the machine readable error code
	Error string `json:"error" example:"invalid_credentials"`

	// ErrorDescription is a human readable explanation
	ErrorDescription string `json:"error_description" example:"invalid credentials"`
}

// ============================================================================
// Token Types
// ============================================================================

// TokenResponse is returned by signup, login, the provider callback and the
// test token endpoint.
type TokenResponse struct {
	// AccessToken is a short lived bearer token
	AccessToken string `json:"access_token"`

	// RefreshToken is redeemed at /api/token for new access tokens
	RefreshToken string `json:"refresh_token"`

	// TokenType is always "Bearer"
	TokenType string `json:"token_type"`

	// ExpiresIn is the access token lifetime in seconds
	ExpiresIn int `json:"expires_in"`
}

// RefreshResponse is returned by /api/token. The refresh token is the one
// that was presented; it is not rotated.
type RefreshResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// ============================================================================
// Request Types
// ============================================================================

type SignupRequest struct {
	Email           string `json:"email" example:"user@example.com"`
	Password        string `json:"password" example:"hunter22"`
	PasswordConfirm string `json:"password_confirm" example:"hunter22"`
	Nickname        string `json:"nickname" example:"hunter"`
}

type LoginRequest struct {
	Email    string `json:"email" example:"user@example.com"`
	Password string `json:"password" example:"hunter22"`
}

// RefreshRequest is the body of /api/token and /auth/logout.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type TestTokenRequest struct {
	Email string `json:"email" example:"user@example.com"`
}

// ============================================================================
// Profile Types
// ============================================================================

// ProfileResponse describes the authenticated principal.
type ProfileResponse struct {
	ID            int64  `json:"id"`
	Email         string `json:"email"`
	Nickname      string `json:"nickname"`
	EmailVerified bool   `json:"email_verified"`

	// Provider is the external identity provider, empty for local accounts
	Provider string `json:"provider,omitempty"`
}

// ============================================================================
// Health Types
// ============================================================================

// HealthResponse represents the response structure for health check endpoints.
// Used by both /livez and /readyz endpoints (readyz includes additional Checks field).
type HealthResponse struct {
	// Status indicates the overall health status (e.g., "ok")
	Status string `json:"status"`

	// Uptime is the service uptime duration as a string (e.g., "1h23m45s")
	Uptime string `json:"uptime,omitempty"`

	// Version is the service version string
	Version string `json:"version,omitempty"`

	// Checks contains readiness check results for critical dependencies (only for /readyz)
	Checks *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks represents the status of critical service dependencies.
type HealthChecks struct {
	// Database indicates the principal database status
	Database string `json:"database"`

	// RefreshStore indicates the refresh token store status
	RefreshStore string `json:"refresh_store"`

	// Signer indicates whether a signing key is loaded
	Signer string `json:"signer"`
}
