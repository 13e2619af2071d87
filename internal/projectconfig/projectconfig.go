// Package projectconfig loads the relsign-project.toml file that selects how
// signing credentials are resolved for a project.
package projectconfig

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/alecthomas/types/optional"

	"github.com/TBD54566975/relsign"
	"github.com/TBD54566975/relsign/internal/log"
	"github.com/TBD54566975/relsign/internal/signing"
)

// FileName of the project configuration file.
const FileName = "relsign-project.toml"

// Resolution modes.
const (
	ModeProperties  = "properties"
	ModeEnvironment = "environment"
)

type Properties struct {
	// Path to the key.properties file, relative to the config file.
	Path string `toml:"path,omitempty"`
}

type Environment struct {
	Preset           string `toml:"preset,omitempty"`
	StoreFileVar     string `toml:"store-file-var,omitempty"`
	StorePasswordVar string `toml:"store-password-var,omitempty"`
	KeyAliasVar      string `toml:"key-alias-var,omitempty"`
	KeyPasswordVar   string `toml:"key-password-var,omitempty"`
	// Keystore relative to the project root, used when no store file variable
	// is configured.
	Keystore string `toml:"keystore,omitempty"`
}

type References struct {
	Enabled     bool   `toml:"enabled"`
	OPVault     string `toml:"op-vault,omitempty"`
	ASMRegion   string `toml:"asm-region,omitempty"`
	ASMEndpoint string `toml:"asm-endpoint,omitempty"`
}

type Config struct {
	// Path to the config file.
	Path string `toml:"-"`

	MinVersion  string      `toml:"relsign-min-version,omitempty"`
	Mode        string      `toml:"mode,omitempty"`
	ProjectRoot string      `toml:"project-root,omitempty"`
	Properties  Properties  `toml:"properties"`
	Environment Environment `toml:"environment"`
	References  References  `toml:"references"`
}

// Root directory of the config file.
func (c Config) Root() string {
	if !filepath.IsAbs(c.Path) {
		panic(fmt.Errorf("project config path must be absolute: %s", c.Path))
	}
	return filepath.Dir(c.Path)
}

// AbsProjectRoot returns the project root, which defaults to the directory
// containing the config file.
func (c Config) AbsProjectRoot() string {
	return c.abs(c.ProjectRoot)
}

func (c Config) abs(path string) string {
	if path == "" {
		return c.Root()
	}
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(c.Root(), path)
}

// DefaultPreset is used by environment mode when no variables are configured.
const DefaultPreset = "android"

// SigningMode converts the configuration into a resolution mode.
func (c Config) SigningMode() (signing.Mode, error) {
	switch c.Mode {
	case "", ModeProperties:
		path := c.Properties.Path
		if path == "" {
			path = signing.DefaultPropertiesPath
		}
		return signing.PropertiesMode{Path: c.abs(path), ProjectRoot: c.AbsProjectRoot()}, nil

	case ModeEnvironment:
		env := c.Environment
		var vars signing.EnvVariables
		preset := env.Preset
		if preset == "" && env.StoreFileVar == "" && env.StorePasswordVar == "" && env.KeyAliasVar == "" && env.KeyPasswordVar == "" {
			preset = DefaultPreset
		}
		if preset != "" {
			named, err := signing.Preset(preset)
			if err != nil {
				return nil, err
			}
			vars = named
		}
		override(&vars.StoreFile, env.StoreFileVar)
		override(&vars.StorePassword, env.StorePasswordVar)
		override(&vars.KeyAlias, env.KeyAliasVar)
		override(&vars.KeyPassword, env.KeyPasswordVar)
		if vars.StorePassword == "" || vars.KeyAlias == "" || vars.KeyPassword == "" {
			return nil, fmt.Errorf("environment mode requires a preset or store-password-var, key-alias-var and key-password-var")
		}
		return signing.EnvironmentMode{Variables: vars, Keystore: env.Keystore, ProjectRoot: c.AbsProjectRoot()}, nil

	default:
		return nil, fmt.Errorf("unknown mode %q, expected %q or %q", c.Mode, ModeProperties, ModeEnvironment)
	}
}

func override(dst *string, value string) {
	if value != "" {
		*dst = value
	}
}

// DefaultConfigPath returns the absolute path of the project config file, if
// one can be found.
//
// RELSIGN_CONFIG takes precedence, otherwise the working directory and its
// parents are searched for relsign-project.toml.
func DefaultConfigPath() optional.Option[string] {
	if envar, ok := os.LookupEnv("RELSIGN_CONFIG"); ok {
		absPath, err := filepath.Abs(envar)
		if err != nil {
			return optional.None[string]()
		}
		return optional.Some(absPath)
	}
	dir, err := os.Getwd()
	if err != nil {
		return optional.None[string]()
	}
	return FindConfig(dir)
}

// FindConfig searches dir and its parents for relsign-project.toml.
func FindConfig(dir string) optional.Option[string] {
	for {
		path := filepath.Join(dir, FileName)
		_, err := os.Stat(path)
		if err == nil {
			return optional.Some(path)
		}
		if !errors.Is(err, os.ErrNotExist) {
			return optional.None[string]()
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return optional.None[string]()
		}
		dir = parent
	}
}

// Load project config from a file.
func Load(ctx context.Context, path string) (Config, error) {
	path, err := filepath.Abs(path)
	if err != nil {
		return Config{}, err
	}
	log.FromContext(ctx).Tracef("Loading config from %s", path)
	config := Config{}
	md, err := toml.DecodeFile(path, &config)
	if err != nil {
		return Config{}, err
	}
	if len(md.Undecoded()) > 0 {
		keys := make([]string, len(md.Undecoded()))
		for i, key := range md.Undecoded() {
			keys[i] = key.String()
		}
		return Config{}, fmt.Errorf("unknown configuration keys: %s", strings.Join(keys, ", "))
	}
	if !relsign.IsVersionAtLeastMin(relsign.Version, config.MinVersion) {
		return config, fmt.Errorf("relsign version %q predates the minimum version %q", relsign.Version, config.MinVersion)
	}
	config.Path = path
	return config, nil
}

// Save project config to its file atomically.
func Save(config Config) error {
	if config.Path == "" {
		return fmt.Errorf("project config path must be set")
	}
	if !filepath.IsAbs(config.Path) {
		panic(fmt.Errorf("project config path must be absolute: %s", config.Path))
	}
	w, err := os.CreateTemp(filepath.Dir(config.Path), filepath.Base(config.Path))
	if err != nil {
		return err
	}
	defer os.Remove(w.Name()) //nolint:errcheck
	defer w.Close()           //nolint:errcheck

	enc := toml.NewEncoder(w)
	if err := enc.Encode(config); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return os.Rename(w.Name(), config.Path)
}
