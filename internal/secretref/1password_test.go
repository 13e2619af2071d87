package secretref

import (
	"context"
	"errors"
	"net/url"
	"os"
	"path/filepath"
	"testing"

	"github.com/alecthomas/assert/v2"

	"github.com/TBD54566975/relsign/internal/log"
)

const fakeOP = `#!/bin/sh
echo "[WARN] a newer version of op is available" >&2
case "$3" in
  op://vault/item/password) printf realsecret ;;
  op://signing/item/password) printf from-default-vault ;;
  *) echo "[ERROR] \"$3\" isn't an item in the vault" >&2; exit 1 ;;
esac
`

func installFakeOP(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	assert.NoError(t, os.WriteFile(filepath.Join(dir, "op"), []byte(fakeOP), 0700)) //nolint:gosec
	t.Setenv("PATH", dir)
}

func TestOnePasswordProvider(t *testing.T) {
	installFakeOP(t)
	ctx := log.ContextWithNewDefaultLogger(context.Background())

	tests := []struct {
		name     string
		provider OnePasswordProvider
		ref      string
		expected string
		err      string
		notFound bool
	}{
		{name: "Stdout", ref: "op://vault/item/password", expected: "realsecret"},
		{name: "DefaultVault", provider: OnePasswordProvider{Vault: "signing"}, ref: "op:///item/password", expected: "from-default-vault"},
		{name: "NoVault", ref: "op:///item/password", err: "1Password reference has no vault and no default vault is configured"},
		{name: "NotFound", ref: "op://vault/missing/password", notFound: true},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			key, err := url.Parse(test.ref)
			assert.NoError(t, err)
			value, err := test.provider.Load(ctx, key)
			switch {
			case test.err != "":
				assert.EqualError(t, err, test.err)
			case test.notFound:
				assert.True(t, errors.Is(err, ErrNotFound), "%v", err)
			default:
				assert.NoError(t, err)
				assert.Equal(t, test.expected, string(value))
			}
		})
	}
}

func TestOnePasswordProviderWithoutCLI(t *testing.T) {
	t.Setenv("PATH", t.TempDir())
	ctx := log.ContextWithNewDefaultLogger(context.Background())
	key, err := url.Parse("op://vault/item/password")
	assert.NoError(t, err)
	_, err = OnePasswordProvider{}.Load(ctx, key)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), `1Password CLI tool "op" not found`)
}
