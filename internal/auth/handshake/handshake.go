// Package handshake carries the state of an in-flight external login across
// the provider redirect. The server keeps nothing: the state travels in an
// encrypted, signed cookie that the callback reads back exactly once.
package handshake

import (
	"errors"
	"net/http"
	"time"

	"github.com/aussiebroadwan/pres/pkg/cryptox"
	"github.com/gorilla/securecookie"
)

const (
	// CookieName is the cookie holding the pending authorization request.
	CookieName = "oauth2_auth_request"

	// DefaultMaxAge bounds how long a user may take at the provider.
	DefaultMaxAge = 5 * time.Hour
)

// State is the pending authorization request.
type State struct {
	State    string    `json:"state"`
	Scope    string    `json:"scope,omitempty"`
	ReturnTo string    `json:"return_to,omitempty"`
	IssuedAt time.Time `json:"issued_at"`
}

type Config struct {
	Secret []byte // keys are derived from it; at least 32 bytes
	Path   string // defaults to "/"
	MaxAge time.Duration
	Secure bool
}

// Cache reads and writes State to the handshake cookie.
type Cache struct {
	codec  *securecookie.SecureCookie
	path   string
	maxAge time.Duration
	secure bool
	now    func() time.Time
}

func New(cfg Config) (*Cache, error) {
	if len(cfg.Secret) < 32 {
		return nil, errors.New("handshake: secret must be at least 32 bytes")
	}

	hashKey, err := cryptox.DeriveKey(cfg.Secret, "pres handshake hmac", 64)
	if err != nil {
		return nil, err
	}
	blockKey, err := cryptox.DeriveKey(cfg.Secret, "pres handshake aes", 32)
	if err != nil {
		return nil, err
	}

	if cfg.Path == "" {
		cfg.Path = "/"
	}
	if cfg.MaxAge <= 0 {
		cfg.MaxAge = DefaultMaxAge
	}

	codec := securecookie.New(hashKey, blockKey)
	codec.SetSerializer(securecookie.JSONEncoder{})
	codec.MaxAge(int(cfg.MaxAge.Seconds()))

	return &Cache{
		codec:  codec,
		path:   cfg.Path,
		maxAge: cfg.MaxAge,
		secure: cfg.Secure,
		now:    time.Now,
	}, nil
}

// WithClock replaces the clock used to stamp and expire states.
func (c *Cache) WithClock(now func() time.Time) *Cache {
	c.now = now
	return c
}

// Save writes st to the response. Saving nil, or a state without a value,
// removes the cookie instead.
func (c *Cache) Save(w http.ResponseWriter, st *State) error {
	if st == nil || st.State == "" {
		c.Remove(w)
		return nil
	}

	if st.IssuedAt.IsZero() {
		st.IssuedAt = c.now()
	}

	value, err := c.codec.Encode(CookieName, st)
	if err != nil {
		return err
	}

	http.SetCookie(w, c.cookie(value, int(c.maxAge.Seconds())))
	return nil
}

// Load returns the state carried by the request, if any. A missing,
// tampered or expired cookie all read as absent.
func (c *Cache) Load(r *http.Request) (*State, bool) {
	ck, err := r.Cookie(CookieName)
	if err != nil || ck.Value == "" {
		return nil, false
	}

	var st State
	if err := c.codec.Decode(CookieName, ck.Value, &st); err != nil {
		return nil, false
	}
	if st.State == "" || c.now().Sub(st.IssuedAt) > c.maxAge {
		return nil, false
	}

	return &st, true
}

// Remove expires the cookie on the client.
func (c *Cache) Remove(w http.ResponseWriter) {
	http.SetCookie(w, c.cookie("", -1))
}

// Consume loads the state and removes the cookie so a callback cannot be
// replayed with it.
func (c *Cache) Consume(w http.ResponseWriter, r *http.Request) (*State, bool) {
	st, ok := c.Load(r)
	c.Remove(w)
	return st, ok
}

func (c *Cache) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     c.path,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	}
}
