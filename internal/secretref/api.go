// Package secretref dereferences credential values that name a secret store
// location (op://, keychain://, asm://, ...) instead of holding the secret.
package secretref

import (
	"context"
	"errors"
	"net/url"
	"strings"
)

// ErrNotFound is returned when a referenced secret does not exist.
var ErrNotFound = errors.New("not found")

// Provider loads secret values for a single URL scheme.
type Provider interface {
	// Key is the URL scheme handled by the provider.
	Key() string
	Load(ctx context.Context, key *url.URL) ([]byte, error)
}

// location returns everything after "scheme://".
func location(key *url.URL) string {
	return key.Host + key.Path
}

// Redact returns the reference with anything beyond the scheme and first path
// element hidden, for logging.
func Redact(key *url.URL) string {
	if key.Host == "" {
		return key.Scheme + "://…"
	}
	if strings.Trim(key.Path, "/") == "" {
		return key.Scheme + "://" + key.Host
	}
	return key.Scheme + "://" + key.Host + "/…"
}
