package secretref

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	keyring "github.com/zalando/go-keyring"
)

// DefaultKeychainService is used for keychain://<account> references that do
// not name a service.
const DefaultKeychainService = "relsign"

// KeychainProvider reads secrets from the system keychain:
// keychain://<service>/<account> or keychain://<account>.
type KeychainProvider struct{}

var _ Provider = KeychainProvider{}

func (KeychainProvider) Key() string { return "keychain" }

func (k KeychainProvider) Load(ctx context.Context, key *url.URL) ([]byte, error) {
	service, account := keychainEntry(key)
	value, err := keyring.Get(service, account)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return nil, fmt.Errorf("no keychain entry for %s/%s: %w", service, account, ErrNotFound)
		}
		return nil, err
	}
	return []byte(value), nil
}

// Store a secret in the system keychain and return its reference.
func (k KeychainProvider) Store(service, account, value string) (*url.URL, error) {
	if service == "" {
		service = DefaultKeychainService
	}
	if err := keyring.Set(service, account, value); err != nil {
		return nil, err
	}
	return &url.URL{Scheme: "keychain", Host: service, Path: "/" + account}, nil
}

func keychainEntry(key *url.URL) (service, account string) {
	account = strings.TrimPrefix(key.Path, "/")
	if account == "" {
		return DefaultKeychainService, key.Host
	}
	return key.Host, account
}
