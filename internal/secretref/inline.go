package secretref

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/url"
)

// InlineProvider decodes values embedded in the reference itself:
// inline://<base64url>.
type InlineProvider struct{}

var _ Provider = InlineProvider{}

func (InlineProvider) Key() string { return "inline" }

func (InlineProvider) Load(ctx context.Context, key *url.URL) ([]byte, error) {
	data, err := base64.RawURLEncoding.DecodeString(location(key))
	if err != nil {
		return nil, fmt.Errorf("invalid inline value: %w", err)
	}
	return data, nil
}

// InlineURL encodes value as an inline:// reference.
func InlineURL(value string) *url.URL {
	return &url.URL{Scheme: "inline", Host: base64.RawURLEncoding.EncodeToString([]byte(value))}
}
