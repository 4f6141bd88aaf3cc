package jwtx

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Codec mints and checks HS256 tokens. It is stateless apart from the key
// provider and safe for concurrent use.
type Codec struct {
	keys   KeyProvider
	issuer string
	now    func() time.Time
	logger *slog.Logger
}

type Option func(*Codec)

// WithClock overrides time.Now, used for both issuing and expiry checks.
func WithClock(now func() time.Time) Option {
	return func(c *Codec) { c.now = now }
}

// WithLogger sets where rejected tokens are reported.
func WithLogger(l *slog.Logger) Option {
	return func(c *Codec) { c.logger = l }
}

func NewCodec(keys KeyProvider, issuer string, opts ...Option) *Codec {
	c := &Codec{
		keys:   keys,
		issuer: issuer,
		now:    time.Now,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Issuer returns the iss claim stamped on every token.
func (c *Codec) Issuer() string { return c.issuer }

// Issue signs a token for the principal valid for ttl from now.
func (c *Codec) Issue(principalID int64, subject string, ttl time.Duration) (string, error) {
	key, err := c.keys.SigningKey()
	if err != nil {
		return "", err
	}

	claims := NewClaims(c.issuer, principalID, subject, ttl, c.now())

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	t.Header["kid"] = key.ID

	signed, err := t.SignedString(key.Secret)
	if err != nil {
		return "", fmt.Errorf("jwtx: sign: %w", err)
	}
	return signed, nil
}

// Validate reports whether token carries a good signature, the expected
// issuer and an expiry still in the future. The reason for a rejection is
// logged, never returned.
func (c *Codec) Validate(token string) bool {
	if _, err := c.Verify(token); err != nil {
		c.logger.Debug("token rejected", slog.Any("err", err))
		return false
	}
	return true
}

// Verify is Validate with the reason: one of ErrMalformed, ErrMissingKID,
// ErrUnknownKID, ErrInvalidSig, ErrIssuer or ErrExpired.
func (c *Codec) Verify(token string) (Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(c.now),
		jwt.WithExpirationRequired(),
	}
	if c.issuer != "" {
		opts = append(opts, jwt.WithIssuer(c.issuer))
	}

	return c.parse(token, opts...)
}

// Claims decodes a token that already passed Validate. The signature is
// checked again but time based claims are not.
func (c *Codec) Claims(token string) (Claims, error) {
	return c.parse(token,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)
}

func (c *Codec) parse(token string, opts ...jwt.ParserOption) (Claims, error) {
	if token == "" {
		return Claims{}, ErrMalformed
	}

	// Strict decoding rejects non-zero padding bits, so no two encodings of
	// the same signature both verify.
	opts = append(opts, jwt.WithStrictDecoding())

	var claims Claims
	parsed, err := jwt.NewParser(opts...).ParseWithClaims(token, &claims, c.keyFunc)
	if err != nil {
		return Claims{}, classify(err)
	}
	if !parsed.Valid {
		return Claims{}, ErrMalformed
	}

	return claims, nil
}

func (c *Codec) keyFunc(t *jwt.Token) (any, error) {
	kid, _ := t.Header["kid"].(string)
	if kid == "" {
		return nil, ErrMissingKID
	}

	secret, err := c.keys.VerificationKey(kid)
	if err != nil {
		if errors.Is(err, ErrUnknownKID) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrUnknownKID, err)
	}
	return secret, nil
}
