package auth_test

import (
	"testing"

	"github.com/aussiebroadwan/pres/pkg/authsdk"
	"github.com/stretchr/testify/require"
)

// TestSignupLoginRefresh tests the complete flow:
// 1. Sign up a new account
// 2. Log in with the same credentials
// 3. Refresh the access token
// 4. Verify the refresh token is not rotated and the old one is replaced by login
func TestSignupLoginRefresh(t *testing.T) {
	baseURL, cleanup := setupAuthContainer(t)
	defer cleanup()

	client := authsdk.NewSDKClient(baseURL)
	ctx := t.Context()

	signup := signupUser(t, client, "flow@example.com")

	login, err := client.Login(ctx, "flow@example.com", testPassword)
	require.NoError(t, err)
	assertTokenResponse(t, login)
	require.NotEqual(t, signup.RefreshToken, login.RefreshToken)

	t.Logf("Login successful")

	// Only the latest refresh token is valid.
	_, err = client.Refresh(ctx, signup.RefreshToken)
	assertAPIError(t, err, authsdk.ErrInvalidCredentials)

	refreshed, err := client.Refresh(ctx, login.RefreshToken)
	require.NoError(t, err)
	require.NotEmpty(t, refreshed.AccessToken)
	require.Equal(t, login.RefreshToken, refreshed.RefreshToken, "Refresh token is not rotated")

	t.Logf("Refresh successful")
}

// TestSessionProfileAndLogout drives the SDK session: profile, logout and
// the refresh token being unusable afterwards.
func TestSessionProfileAndLogout(t *testing.T) {
	baseURL, cleanup := setupAuthContainer(t)
	defer cleanup()

	client := authsdk.NewSDKClient(baseURL)
	ctx := t.Context()

	signupUser(t, client, "session@example.com")

	session, err := client.AuthenticateWithPassword(ctx, "session@example.com", testPassword)
	require.NoError(t, err)

	me, err := session.Me(ctx)
	require.NoError(t, err)
	require.Equal(t, "session@example.com", me.Email)
	require.Equal(t, "e2e", me.Nickname)
	require.Empty(t, me.Provider)

	refreshToken := session.RefreshToken()
	require.NoError(t, session.Logout(ctx))

	_, err = client.Refresh(ctx, refreshToken)
	assertAPIError(t, err, authsdk.ErrInvalidCredentials)

	// Logout is idempotent.
	require.NoError(t, client.Logout(ctx, refreshToken))
}

// TestLogoutAll verifies the bearer's refresh token is revoked.
func TestLogoutAll(t *testing.T) {
	baseURL, cleanup := setupAuthContainer(t)
	defer cleanup()

	client := authsdk.NewSDKClient(baseURL)
	ctx := t.Context()

	tokens := signupUser(t, client, "all@example.com")
	session := client.NewSessionFromTokens(tokens.AccessToken, tokens.RefreshToken, tokens.ExpiresIn)

	require.NoError(t, session.LogoutAll(ctx))

	_, err := client.Refresh(ctx, tokens.RefreshToken)
	assertAPIError(t, err, authsdk.ErrInvalidCredentials)
}

// TestCredentialErrors covers the uniform credential failure and duplicate signup.
func TestCredentialErrors(t *testing.T) {
	baseURL, cleanup := setupAuthContainer(t)
	defer cleanup()

	client := authsdk.NewSDKClient(baseURL)
	ctx := t.Context()

	signupUser(t, client, "taken@example.com")

	_, err := client.Signup(ctx, authsdk.SignupRequest{
		Email:           "taken@example.com",
		Password:        testPassword,
		PasswordConfirm: testPassword,
		Nickname:        "again",
	})
	assertAPIError(t, err, authsdk.ErrEmailTaken)

	_, err = client.Login(ctx, "taken@example.com", "wrong-password")
	assertAPIError(t, err, authsdk.ErrInvalidCredentials)

	_, err = client.Login(ctx, "nobody@example.com", testPassword)
	assertAPIError(t, err, authsdk.ErrInvalidCredentials)
}

// TestTestToken issues long-lived tokens for an existing account.
func TestTestToken(t *testing.T) {
	baseURL, cleanup := setupAuthContainer(t)
	defer cleanup()

	client := authsdk.NewSDKClient(baseURL)
	ctx := t.Context()

	signupUser(t, client, "qa@example.com")

	resp, err := client.TestToken(ctx, "qa@example.com")
	require.NoError(t, err)
	assertTokenResponse(t, resp)

	_, err = client.TestToken(ctx, "ghost@example.com")
	assertAPIError(t, err, authsdk.ErrInvalidCredentials)
}
