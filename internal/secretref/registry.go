package secretref

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/puzpuzpuz/xsync/v3"

	"github.com/TBD54566975/relsign/internal/log"
)

// Registry routes references to providers by URL scheme and caches loaded
// values for its lifetime.
type Registry struct {
	providers map[string]Provider
	cache     *xsync.MapOf[string, []byte]
}

// New creates a Registry. Later providers replace earlier ones with the same
// key.
func New(providers ...Provider) *Registry {
	r := &Registry{
		providers: map[string]Provider{},
		cache:     xsync.NewMapOf[string, []byte](),
	}
	for _, p := range providers {
		r.providers[p.Key()] = p
	}
	return r
}

// Handles returns true if scheme has a registered provider.
func (r *Registry) Handles(scheme string) bool {
	_, ok := r.providers[scheme]
	return ok
}

// Load the secret referenced by key.
func (r *Registry) Load(ctx context.Context, key *url.URL) ([]byte, error) {
	cacheKey := key.String()
	if value, ok := r.cache.Load(cacheKey); ok {
		return value, nil
	}
	provider, ok := r.providers[key.Scheme]
	if !ok {
		return nil, fmt.Errorf("no provider for scheme %q", key.Scheme)
	}
	log.FromContext(ctx).Debugf("Loading secret reference %s", Redact(key))
	value, err := provider.Load(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", Redact(key), err)
	}
	r.cache.Store(cacheKey, value)
	return value, nil
}

// Resolve returns the secret that value refers to. If value is not a reference
// to a registered scheme it is returned unchanged and the second return is
// false.
func (r *Registry) Resolve(ctx context.Context, value string) (string, bool, error) {
	if !strings.Contains(value, "://") {
		return value, false, nil
	}
	key, err := url.Parse(value)
	if err != nil || !r.Handles(key.Scheme) {
		return value, false, nil //nolint:nilerr
	}
	data, err := r.Load(ctx, key)
	if err != nil {
		return "", true, err
	}
	return string(data), true, nil
}
