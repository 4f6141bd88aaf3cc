package authsdk

import (
	"context"
	"net/http"
)

// Me returns the principal behind the session.
func (s *Session) Me(ctx context.Context) (*ProfileResponse, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodGet, "/api/me", nil)
	if err != nil {
		return nil, err
	}

	var profile ProfileResponse
	if err := decodeJSON(resp, &profile, http.StatusOK); err != nil {
		return nil, err
	}

	return &profile, nil
}

// LogoutAll invalidates the principal's refresh token wherever it is held.
// Access tokens already issued stay valid until they expire.
func (s *Session) LogoutAll(ctx context.Context) error {
	resp, err := s.doAuthRequest(ctx, http.MethodPost, "/api/logout-all", nil)
	if err != nil {
		return err
	}
	return checkStatus(resp, http.StatusNoContent)
}
