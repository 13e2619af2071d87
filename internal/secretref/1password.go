package secretref

import (
	"bytes"
	"context"
	"fmt"
	"net/url"

	"github.com/TBD54566975/relsign/internal/exec"
	"github.com/TBD54566975/relsign/internal/log"
)

// OnePasswordProvider reads secrets from 1Password vaults via the "op" command
// line tool: op://<vault>/<item>/<field>.
type OnePasswordProvider struct {
	// Vault is substituted when a reference omits it (op:///item/field).
	Vault string
}

var _ Provider = OnePasswordProvider{}

func (OnePasswordProvider) Key() string { return "op" }

func (o OnePasswordProvider) Load(ctx context.Context, key *url.URL) ([]byte, error) {
	if _, err := exec.LookPath("op"); err != nil {
		return nil, fmt.Errorf("1Password CLI tool \"op\" not found: %w", err)
	}
	ref := *key
	if ref.Host == "" {
		if o.Vault == "" {
			return nil, fmt.Errorf("1Password reference has no vault and no default vault is configured")
		}
		ref.Host = o.Vault
	}
	output, err := exec.Capture(ctx, ".", "op", "read", "-n", ref.String())
	if err != nil {
		stderr := exec.Stderr(err)
		logger := log.FromContext(ctx)
		for _, line := range bytes.Split(bytes.TrimSpace(stderr), []byte("\n")) {
			logger.Warnf("%s", line)
		}
		if bytes.Contains(stderr, []byte("isn't an item")) || bytes.Contains(stderr, []byte("not found")) {
			return nil, fmt.Errorf("%s: %w", Redact(&ref), ErrNotFound)
		}
		return nil, fmt.Errorf("error running 1Password CLI tool \"op\": %w", err)
	}
	return output, nil
}
