package app

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/aussiebroadwan/pres/pkg/jwtx"
)

type Config struct {
	Issuer string // Optional: issuer claim for tokens (default: pres-auth)

	JWTSecret       string            // Required: HS256 signing secret, at least 32 bytes
	JWTKeyID        string            // Optional: kid for JWTSecret (default: derived from the secret)
	PreviousSecrets map[string]string // Optional: kid -> secret still accepted for verification
	AccessTTL       time.Duration     // Optional: access token lifetime (default: 2h)
	RefreshTTL      time.Duration     // Optional: refresh token lifetime (default: 14 days)
	TestTokens      bool              // Optional: enable POST /test-token (default: false)

	DatabaseFile  string // Optional: path to SQLite database file (default: ./auth.db)
	PepperFile    string // Optional: path to file containing pepper for password hashing (default: ./pepper)
	RefreshStore  string // Optional: refresh token store (sqlite, redis) (default: sqlite)
	RedisAddr     string // Required for the redis store
	RedisPassword string
	RedisDB       int

	HandshakeSecret string // Optional: handshake cookie secret (default: JWTSecret)
	CookieSecure    bool   // Optional: mark the handshake cookie Secure (default: true outside dev)

	KakaoClientID     string // Optional: enables Kakao login when set
	KakaoClientSecret string
	KakaoRedirectURI  string
	KakaoAuthHost     string
	KakaoAPIHost      string
	KakaoScope        string
	UpstreamTimeout   time.Duration // Provider call timeout (default: 10s)

	Env                  string        // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	Port                 int           // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Housekeeping interval (default: 1h)
	TrustProxyHeaders    bool          // Rate limit by X-Forwarded-For/X-Real-IP; only behind a proxy that overwrites them (default: false)
}

func LoadConfig() (Config, error) {
	env := getEnvOrDefault("ENV", "dev")

	cfg := Config{
		Issuer:     getEnvOrDefault("AUTH_ISSUER", "pres-auth"),
		JWTSecret:  os.Getenv("AUTH_JWT_SECRET"),
		JWTKeyID:   os.Getenv("AUTH_JWT_KEY_ID"),
		AccessTTL:  getEnvDurationOrDefault("AUTH_ACCESS_TTL", jwtx.DefaultAccessTokenTTL),
		RefreshTTL: getEnvDurationOrDefault("AUTH_REFRESH_TTL", jwtx.DefaultRefreshTokenTTL),
		TestTokens: getEnvBoolOrDefault("AUTH_TEST_TOKEN_ENABLED", false),

		DatabaseFile:  getEnvOrDefault("AUTH_DATABASE_FILE", "auth.db"),
		PepperFile:    getEnvOrDefault("AUTH_PEPPER_FILE", "pepper"),
		RefreshStore:  getEnvOrDefault("AUTH_REFRESH_STORE", "sqlite"),
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getEnvIntOrDefault("REDIS_DB", 0),

		HandshakeSecret: os.Getenv("HANDSHAKE_SECRET"),
		CookieSecure:    getEnvBoolOrDefault("HANDSHAKE_COOKIE_SECURE", env != "dev"),

		KakaoClientID:     os.Getenv("KAKAO_CLIENT_ID"),
		KakaoClientSecret: os.Getenv("KAKAO_CLIENT_SECRET"),
		KakaoRedirectURI:  os.Getenv("KAKAO_REDIRECT_URI"),
		KakaoAuthHost:     os.Getenv("KAKAO_AUTH_HOST"),
		KakaoAPIHost:      os.Getenv("KAKAO_API_HOST"),
		KakaoScope:        os.Getenv("KAKAO_SCOPE"),
		UpstreamTimeout:   getEnvDurationOrDefault("UPSTREAM_TIMEOUT", 10*time.Second),

		Env:                  env,
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 1*time.Hour),
		TrustProxyHeaders:    getEnvBoolOrDefault("TRUST_PROXY_HEADERS", false),
	}

	prev, err := parsePreviousSecrets(os.Getenv("AUTH_JWT_PREVIOUS_SECRETS"))
	if err != nil {
		return Config{}, err
	}
	cfg.PreviousSecrets = prev

	if cfg.HandshakeSecret == "" {
		cfg.HandshakeSecret = cfg.JWTSecret
	}

	return cfg, cfg.Validate()
}

// Validate reports the first setting the service cannot start with.
func (c Config) Validate() error {
	if len(c.JWTSecret) < jwtx.MinSecretSize {
		return fmt.Errorf("AUTH_JWT_SECRET must be at least %d bytes", jwtx.MinSecretSize)
	}
	if c.AccessTTL <= 0 || c.RefreshTTL <= 0 {
		return errors.New("token lifetimes must be positive")
	}

	switch c.RefreshStore {
	case "sqlite":
	case "redis":
		if c.RedisAddr == "" {
			return errors.New("REDIS_ADDR is required when AUTH_REFRESH_STORE=redis")
		}
	default:
		return fmt.Errorf("unknown AUTH_REFRESH_STORE %q (sqlite, redis)", c.RefreshStore)
	}

	if c.KakaoEnabled() && c.KakaoRedirectURI == "" {
		return errors.New("KAKAO_REDIRECT_URI is required when KAKAO_CLIENT_ID is set")
	}
	return nil
}

// KakaoEnabled reports whether provider login should be mounted.
func (c Config) KakaoEnabled() bool {
	return c.KakaoClientID != ""
}

// parsePreviousSecrets reads "kid:secret,kid:secret".
func parsePreviousSecrets(raw string) (map[string]string, error) {
	out := make(map[string]string)
	for entry := range strings.SplitSeq(raw, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		kid, secret, ok := strings.Cut(entry, ":")
		if !ok || kid == "" || secret == "" {
			return nil, fmt.Errorf("AUTH_JWT_PREVIOUS_SECRETS: entry %q is not kid:secret", entry)
		}
		out[kid] = secret
	}
	return out, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if b, err := strconv.ParseBool(value); err == nil {
		return b
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Try parsing as duration (e.g., "1h", "30m", "90s")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Try parsing as integer minutes (for backwards compatibility)
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}
