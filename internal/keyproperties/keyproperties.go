// Package keyproperties reads and writes the Java-style properties files used to
// keep signing secrets out of build scripts.
package keyproperties

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/magiconair/properties"
)

// Well-known keys of a key.properties file.
const (
	StoreFile     = "storeFile"
	StorePassword = "storePassword"
	KeyAlias      = "keyAlias"
	KeyPassword   = "keyPassword"
)

// Keys lists the keys a complete key.properties file must contain.
var Keys = []string{StoreFile, StorePassword, KeyAlias, KeyPassword}

// ErrParse is wrapped by every error caused by malformed file contents.
var ErrParse = errors.New("invalid properties file")

// Read opens, fully reads and closes the properties file at path.
//
// Expansion of ${...} is disabled because passwords may legitimately contain
// that sequence.
func Read(path string) (*properties.Properties, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close() //nolint:errcheck
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes properties from data.
func Parse(data []byte) (*properties.Properties, error) {
	loader := &properties.Loader{Encoding: properties.UTF8, DisableExpansion: true}
	props, err := loader.LoadBytes(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}
	return props, nil
}

// Write stores values as a properties file at path, readable only by the owner.
//
// The file is written to a temporary file in the same directory and renamed
// into place.
func Write(path string, values map[string]string) error {
	w, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path))
	if err != nil {
		return err
	}
	defer os.Remove(w.Name()) //nolint:errcheck
	defer w.Close()           //nolint:errcheck

	if err := w.Chmod(0600); err != nil {
		return err
	}
	if err := Encode(w, values); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return os.Rename(w.Name(), path)
}

// Encode writes values in properties format, sorted by key.
func Encode(w io.Writer, values map[string]string) error {
	props := properties.NewProperties()
	props.DisableExpansion = true
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if _, _, err := props.Set(k, values[k]); err != nil {
			return fmt.Errorf("%s: %w", k, err)
		}
	}
	_, err := props.Write(w, properties.UTF8)
	return err
}
