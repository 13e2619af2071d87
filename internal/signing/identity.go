// Package signing resolves the release signing identity (keystore, passwords
// and key alias) handed to the Android packaging tool.
package signing

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// ErrUnusableIdentity is returned by Identity.Verify.
var ErrUnusableIdentity = errors.New("signing identity is not usable")

// Identity is everything needed to sign a release build.
type Identity struct {
	KeystorePath  string `json:"keystorePath"`
	StorePassword string `json:"storePassword"`
	KeyAlias      string `json:"keyAlias"`
	KeyPassword   string `json:"keyPassword"`
}

// String never includes passwords.
func (i Identity) String() string {
	return fmt.Sprintf("keystore=%s alias=%s storePassword=%s keyPassword=%s",
		i.KeystorePath, i.KeyAlias, mask(i.StorePassword), mask(i.KeyPassword))
}

func mask(secret string) string {
	if secret == "" {
		return "<empty>"
	}
	return "********"
}

// Verify checks that every field is set and that the keystore is an existing
// regular file. All problems are reported together.
func (i Identity) Verify() error {
	var problems []string
	for _, field := range []struct{ name, value string }{
		{"keystore path", i.KeystorePath},
		{"store password", i.StorePassword},
		{"key alias", i.KeyAlias},
		{"key password", i.KeyPassword},
	} {
		if field.value == "" {
			problems = append(problems, field.name+" is empty")
		}
	}
	if i.KeystorePath != "" {
		info, err := os.Stat(i.KeystorePath)
		switch {
		case errors.Is(err, os.ErrNotExist):
			problems = append(problems, fmt.Sprintf("keystore %s does not exist", i.KeystorePath))
		case err != nil:
			problems = append(problems, fmt.Sprintf("keystore %s: %s", i.KeystorePath, err))
		case !info.Mode().IsRegular():
			problems = append(problems, fmt.Sprintf("keystore %s is not a regular file", i.KeystorePath))
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrUnusableIdentity, strings.Join(problems, "; "))
	}
	return nil
}
