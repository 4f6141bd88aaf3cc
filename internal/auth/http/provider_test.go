package http_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/aussiebroadwan/pres/internal/auth/handshake"
	"github.com/aussiebroadwan/pres/pkg/authsdk"
	"github.com/stretchr/testify/require"
)

// beginLogin starts a provider login and returns the handshake cookie and
// the state sent to the provider.
func (s *testServer) beginLogin(t *testing.T, query string) (*http.Cookie, string) {
	t.Helper()

	rec := s.do(t, http.MethodGet, "/auth/kakao/login"+query, nil, "")
	require.Equal(t, http.StatusFound, rec.Code, rec.Body.String())

	loc, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	require.Equal(t, "provider.test", loc.Host)

	var ck *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == handshake.CookieName {
			ck = c
		}
	}
	require.NotNil(t, ck)
	require.True(t, ck.HttpOnly)
	require.Equal(t, 18000, ck.MaxAge)

	return ck, loc.Query().Get("state")
}

func (s *testServer) callback(t *testing.T, ck *http.Cookie, query url.Values) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, "/auth/kakao/callback?"+query.Encode(), nil)
	if ck != nil {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func TestProviderLogin(t *testing.T) {
	s := newTestServer(t, false)
	ck, state := s.beginLogin(t, "")

	rec := s.callback(t, ck, url.Values{"code": {"c"}, "state": {state}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	pair := decode[authsdk.TokenResponse](t, rec)
	claims, err := s.codec.Verify(pair.AccessToken)
	require.NoError(t, err)
	require.Equal(t, "kakao@example.com", claims.Subject)

	// The cookie was expired on the way out.
	var cleared bool
	for _, c := range rec.Result().Cookies() {
		if c.Name == handshake.CookieName && c.MaxAge < 0 {
			cleared = true
		}
	}
	require.True(t, cleared)

	me := s.do(t, http.MethodGet, "/api/me", nil, pair.AccessToken)
	require.Equal(t, http.StatusOK, me.Code)
	profile := decode[authsdk.ProfileResponse](t, me)
	require.Equal(t, "kakao", profile.Provider)
	require.True(t, profile.EmailVerified)
}

func TestProviderLogin_ReturnTo(t *testing.T) {
	s := newTestServer(t, false)
	ck, state := s.beginLogin(t, "?return_to=%2Fapp%2Fhome")

	rec := s.callback(t, ck, url.Values{"code": {"c"}, "state": {state}})
	require.Equal(t, http.StatusFound, rec.Code)

	loc, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	require.Equal(t, "/app/home", loc.Path)

	frag, err := url.ParseQuery(loc.Fragment)
	require.NoError(t, err)
	require.True(t, s.codec.Validate(frag.Get("access_token")))
	require.NotEmpty(t, frag.Get("refresh_token"))

	t.Run("absolute return_to is refused", func(t *testing.T) {
		rec := s.do(t, http.MethodGet, "/auth/kakao/login?return_to=https%3A%2F%2Fevil.example", nil, "")
		requireError(t, rec, authsdk.ErrInvalidRequest)
	})

	// Browsers strip tabs and newlines, turning "/\t/host" into "//host".
	for _, raw := range []string{"/\t/evil.example", "/\n/evil.example", "/\r/evil.example", "/%09/evil.example"} {
		t.Run(fmt.Sprintf("control characters %q", raw), func(t *testing.T) {
			rec := s.do(t, http.MethodGet, "/auth/kakao/login?return_to="+url.QueryEscape(raw), nil, "")
			requireError(t, rec, authsdk.ErrInvalidRequest)
			require.Empty(t, rec.Result().Cookies(), "no handshake is started")
		})
	}
}

func TestProviderCallback_Rejections(t *testing.T) {
	s := newTestServer(t, false)

	t.Run("no handshake", func(t *testing.T) {
		rec := s.callback(t, nil, url.Values{"code": {"c"}, "state": {"whatever"}})
		requireError(t, rec, authsdk.ErrBadUpstreamRequest)
	})

	t.Run("state mismatch", func(t *testing.T) {
		ck, _ := s.beginLogin(t, "")
		rec := s.callback(t, ck, url.Values{"code": {"c"}, "state": {"forged"}})
		requireError(t, rec, authsdk.ErrBadUpstreamRequest)
	})

	t.Run("provider error", func(t *testing.T) {
		ck, state := s.beginLogin(t, "")
		rec := s.callback(t, ck, url.Values{"error": {"access_denied"}, "state": {state}})
		requireError(t, rec, authsdk.ErrBadUpstreamRequest)
	})

	t.Run("tampered cookie", func(t *testing.T) {
		ck, state := s.beginLogin(t, "")
		ck.Value = ck.Value[:len(ck.Value)-2] + "xx"
		rec := s.callback(t, ck, url.Values{"code": {"c"}, "state": {state}})
		requireError(t, rec, authsdk.ErrBadUpstreamRequest)
	})

	require.Zero(t, s.provider.exchanges.Load())

	t.Run("empty code makes no outbound call", func(t *testing.T) {
		ck, state := s.beginLogin(t, "")
		rec := s.callback(t, ck, url.Values{"state": {state}})
		requireError(t, rec, authsdk.ErrBadUpstreamRequest)
		require.Zero(t, s.provider.exchanges.Load())
	})
}
