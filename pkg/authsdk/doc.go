/*
Package authsdk is a client for the pres authentication service and holds the
JSON types its endpoints exchange.

# SDKClient vs Session

  - SDKClient: unauthenticated operations (signup, login, refresh, health)
  - Session: authenticated operations with automatic access token refresh

	client := authsdk.NewSDKClient("https://auth.example.com")

	session, err := client.AuthenticateWithPassword(ctx, "user@example.com", "hunter22")
	if err != nil {
		return err
	}

	me, err := session.Me(ctx)

Tokens obtained through the provider login in a browser can be turned into a
session as well:

	session := client.NewSessionFromTokens(access, refresh, expiresIn)

# Token Refresh

Refresh tokens are not rotated: /api/token answers with a new access token and
the refresh token that was presented. A session refreshes its access token 30
seconds before it expires. Once the refresh token has been invalidated, by
Logout, LogoutAll or a newer login of the same account, every call fails with
ErrInvalidCredentials.

# Error Handling

Every non-2xx response is returned as an *APIError, comparable with errors.Is
against the predefined values:

	_, err := client.Login(ctx, email, password)
	if errors.Is(err, authsdk.ErrInvalidCredentials) {
		// wrong email or password
	}

# Thread Safety

Sessions are safe for concurrent use.
*/
package authsdk
