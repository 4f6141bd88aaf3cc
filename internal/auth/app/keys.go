package app

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/aussiebroadwan/pres/pkg/jwtx"
)

// InitKeyring loads the signing secret and any previous secrets into a
// keyring. Only the current secret signs; previous ones still verify, so
// rotating AUTH_JWT_SECRET does not log everyone out at once.
func InitKeyring(cfg Config, logger *slog.Logger) (*jwtx.Keyring, error) {
	current := []byte(cfg.JWTSecret)

	kid := cfg.JWTKeyID
	if kid == "" {
		kid = jwtx.KeyIDFor(current)
	}

	keys := jwtx.NewKeyring()
	if err := keys.Add(kid, current); err != nil {
		return nil, fmt.Errorf("signing key: %w", err)
	}
	if err := keys.Activate(kid); err != nil {
		return nil, err
	}

	prev := make([]string, 0, len(cfg.PreviousSecrets))
	for pkid := range cfg.PreviousSecrets {
		prev = append(prev, pkid)
	}
	sort.Strings(prev)

	for _, pkid := range prev {
		if pkid == kid {
			return nil, fmt.Errorf("previous key %q reuses the signing kid", pkid)
		}
		if err := keys.Add(pkid, []byte(cfg.PreviousSecrets[pkid])); err != nil {
			return nil, fmt.Errorf("previous key %q: %w", pkid, err)
		}
	}

	logger.Info("signing keys loaded", "active_kid", kid, "previous_kids", prev)
	return keys, nil
}
