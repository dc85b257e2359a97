package auth

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"fmt"
	"strings"
)

type Identity struct {
	Principal string
}

type APIKeyValidator interface {
	Validate(ctx context.Context, apiKey string) (Identity, bool)
}

// StaticAPIKeyValidator checks keys from configuration. Only HMAC-SHA256
// digests of the keys are held, keyed by the session secret.
type StaticAPIKeyValidator struct {
	secret  []byte
	entries []staticKey
}

type staticKey struct {
	digest   []byte
	identity Identity
}

// NewStaticAPIKeyValidator parses "key:principal,key:principal".
func NewStaticAPIKeyValidator(secret, spec string) (*StaticAPIKeyValidator, error) {
	if secret == "" {
		return nil, fmt.Errorf("session secret is required to hash api keys")
	}
	validator := &StaticAPIKeyValidator{secret: []byte(secret)}
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return validator, nil
	}

	seen := map[string]struct{}{}
	for _, entry := range strings.Split(spec, ",") {
		key, principal, ok := strings.Cut(strings.TrimSpace(entry), ":")
		key = strings.TrimSpace(key)
		principal = strings.TrimSpace(principal)
		if !ok || key == "" || principal == "" || strings.Contains(principal, ":") {
			return nil, fmt.Errorf("invalid static key entry %q: expected key:principal", entry)
		}
		if _, dup := seen[key]; dup {
			return nil, fmt.Errorf("duplicate static key for principal %q", principal)
		}
		seen[key] = struct{}{}
		validator.entries = append(validator.entries, staticKey{
			digest:   validator.digest(key),
			identity: Identity{Principal: principal},
		})
	}
	return validator, nil
}

func (v *StaticAPIKeyValidator) Len() int {
	return len(v.entries)
}

func (v *StaticAPIKeyValidator) Validate(_ context.Context, apiKey string) (Identity, bool) {
	if apiKey == "" {
		return Identity{}, false
	}
	digest := v.digest(apiKey)
	for _, entry := range v.entries {
		if hmac.Equal(digest, entry.digest) {
			return entry.identity, true
		}
	}
	return Identity{}, false
}

func (v *StaticAPIKeyValidator) digest(key string) []byte {
	mac := hmac.New(sha256.New, v.secret)
	_, _ = mac.Write([]byte(key))
	return mac.Sum(nil)
}
