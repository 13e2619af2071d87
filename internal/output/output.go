// Package output renders a signing identity for consumption by a packaging
// tool or shell.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/kballard/go-shellquote"
	"github.com/mattn/go-isatty"
	"github.com/tidwall/pretty"

	"github.com/TBD54566975/relsign/internal/keyproperties"
	"github.com/TBD54566975/relsign/internal/signing"
)

type Format string

const (
	// Env prints shell export statements.
	Env Format = "env"
	// Properties prints a key.properties file.
	Properties Format = "properties"
	// Gradle prints Android Gradle Plugin injected signing arguments.
	Gradle Format = "gradle"
	// JSON prints a JSON object.
	JSON Format = "json"
)

// Formats lists the supported output formats.
var Formats = []Format{Env, Properties, Gradle, JSON}

// Variables written by the Env format.
const (
	KeystorePathVar  = "ANDROID_KEYSTORE_PATH"
	StorePasswordVar = "ANDROID_KEYSTORE_PASSWORD"
	KeyAliasVar      = "ANDROID_KEY_ALIAS"
	KeyPasswordVar   = "ANDROID_KEY_PASSWORD"
)

// Gradle properties understood by the Android Gradle Plugin.
const (
	injectedStoreFile     = "android.injected.signing.store.file"
	injectedStorePassword = "android.injected.signing.store.password"
	injectedKeyAlias      = "android.injected.signing.key.alias"
	injectedKeyPassword   = "android.injected.signing.key.password"
)

// IsTerminal returns true if f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Write identity to w in the given format. Colour only affects JSON.
func Write(w io.Writer, format Format, identity signing.Identity, color bool) error {
	switch format {
	case Env:
		for _, kv := range [][2]string{
			{KeystorePathVar, identity.KeystorePath},
			{StorePasswordVar, identity.StorePassword},
			{KeyAliasVar, identity.KeyAlias},
			{KeyPasswordVar, identity.KeyPassword},
		} {
			if _, err := fmt.Fprintf(w, "export %s=%s\n", kv[0], shellquote.Join(kv[1])); err != nil {
				return err
			}
		}
		return nil

	case Properties:
		return keyproperties.Encode(w, map[string]string{
			keyproperties.StoreFile:     identity.KeystorePath,
			keyproperties.StorePassword: identity.StorePassword,
			keyproperties.KeyAlias:      identity.KeyAlias,
			keyproperties.KeyPassword:   identity.KeyPassword,
		})

	case Gradle:
		args := []string{
			"-P" + injectedStoreFile + "=" + identity.KeystorePath,
			"-P" + injectedStorePassword + "=" + identity.StorePassword,
			"-P" + injectedKeyAlias + "=" + identity.KeyAlias,
			"-P" + injectedKeyPassword + "=" + identity.KeyPassword,
		}
		_, err := fmt.Fprintln(w, shellquote.Join(args...))
		return err

	case JSON:
		data, err := json.Marshal(identity)
		if err != nil {
			return err
		}
		data = pretty.Pretty(data)
		if color {
			data = pretty.Color(data, nil)
		}
		_, err = w.Write(data)
		return err

	default:
		names := make([]string, len(Formats))
		for i, f := range Formats {
			names[i] = string(f)
		}
		return fmt.Errorf("unknown output format %q, expected one of %s", format, strings.Join(names, ", "))
	}
}
