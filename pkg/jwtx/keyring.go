package jwtx

import (
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"slices"
	"sync"
)

// MinSecretSize is the shortest HMAC secret we accept for HS256.
const MinSecretSize = 32

// Key is an HMAC secret and the id stamped into the "kid" header.
type Key struct {
	ID     string
	Secret []byte
}

// KeyProvider supplies signing and verification material. Swapping the
// provider is how keys rotate without touching the codec's callers.
type KeyProvider interface {
	// SigningKey returns the key new tokens are signed with.
	SigningKey() (Key, error)

	// VerificationKey returns the secret for kid, or ErrUnknownKID.
	VerificationKey(kid string) ([]byte, error)
}

// Keyring is an in-memory KeyProvider holding one active key plus any number
// of older keys kept around so tokens they signed still verify.
type Keyring struct {
	mu     sync.RWMutex
	keys   map[string][]byte
	active string
}

// NewKeyring returns an empty keyring.
func NewKeyring() *Keyring {
	return &Keyring{keys: make(map[string][]byte)}
}

// NewStaticKeyring returns a keyring holding a single active key. An empty
// kid is derived from the secret.
func NewStaticKeyring(kid string, secret []byte) (*Keyring, error) {
	k := NewKeyring()
	if kid == "" {
		kid = KeyIDFor(secret)
	}
	if err := k.Add(kid, secret); err != nil {
		return nil, err
	}
	if err := k.Activate(kid); err != nil {
		return nil, err
	}
	return k, nil
}

// KeyIDFor derives a short stable key id from a secret.
func KeyIDFor(secret []byte) string {
	sum := sha256.Sum256(secret)
	return base64.RawURLEncoding.EncodeToString(sum[:6])
}

// Add registers a verification key. It does not change the signing key.
func (k *Keyring) Add(kid string, secret []byte) error {
	if kid == "" {
		return fmt.Errorf("jwtx: empty kid")
	}
	if len(secret) < MinSecretSize {
		return ErrWeakKey
	}

	k.mu.Lock()
	defer k.mu.Unlock()

	k.keys[kid] = slices.Clone(secret)
	return nil
}

// Activate makes kid the signing key. The previous key keeps verifying.
func (k *Keyring) Activate(kid string) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	if _, ok := k.keys[kid]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownKID, kid)
	}
	k.active = kid
	return nil
}

// Remove drops a retired key. The active key cannot be removed.
func (k *Keyring) Remove(kid string) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	if kid == k.active {
		return fmt.Errorf("jwtx: cannot remove active key %q", kid)
	}
	delete(k.keys, kid)
	return nil
}

func (k *Keyring) SigningKey() (Key, error) {
	k.mu.RLock()
	defer k.mu.RUnlock()

	secret, ok := k.keys[k.active]
	if !ok {
		return Key{}, ErrNoKey
	}
	return Key{ID: k.active, Secret: secret}, nil
}

func (k *Keyring) VerificationKey(kid string) ([]byte, error) {
	k.mu.RLock()
	defer k.mu.RUnlock()

	secret, ok := k.keys[kid]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKID, kid)
	}
	return secret, nil
}

// IsReady reports whether a signing key is active.
func (k *Keyring) IsReady() bool {
	k.mu.RLock()
	defer k.mu.RUnlock()

	_, ok := k.keys[k.active]
	return ok
}

// KIDs lists every registered key id, sorted.
func (k *Keyring) KIDs() []string {
	k.mu.RLock()
	defer k.mu.RUnlock()

	ids := make([]string, 0, len(k.keys))
	for id := range k.keys {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
