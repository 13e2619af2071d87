package secretref

import (
	"context"
	"fmt"
	"net/url"
	"os"
)

// EnvarProvider reads secrets from environment variables: env://NAME.
type EnvarProvider struct {
	// LookupEnv defaults to os.LookupEnv.
	LookupEnv func(string) (string, bool)
}

var _ Provider = EnvarProvider{}

func (EnvarProvider) Key() string { return "env" }

func (e EnvarProvider) Load(ctx context.Context, key *url.URL) ([]byte, error) {
	lookup := e.LookupEnv
	if lookup == nil {
		lookup = os.LookupEnv
	}
	name := location(key)
	value, ok := lookup(name)
	if !ok {
		return nil, fmt.Errorf("environment variable %q is not set: %w", name, ErrNotFound)
	}
	return []byte(value), nil
}
