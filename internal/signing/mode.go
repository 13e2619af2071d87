package signing

import (
	"fmt"
	"sort"
	"strings"
)

// DefaultPropertiesPath is where the properties file is looked for, relative to
// the working directory of the build.
const DefaultPropertiesPath = "../key.properties"

// DefaultKeystore is the keystore used by the android environment preset,
// relative to the project root.
const DefaultKeystore = "upload-keystore.jks"

// Mode selects how the identity is resolved. It is either EnvironmentMode or
// PropertiesMode.
type Mode interface {
	mode()
	String() string
}

// EnvVariables names the environment variables holding each credential.
type EnvVariables struct {
	// StoreFile may be empty, in which case EnvironmentMode.Keystore is used.
	StoreFile     string
	StorePassword string
	KeyAlias      string
	KeyPassword   string
}

var (
	// LegacyVariables reads a CI-populated keystore path and uses KEY_PASSWORD
	// for both the store and the key.
	LegacyVariables = EnvVariables{
		StoreFile:     "KEY_PROPERTIES_PATH",
		StorePassword: "KEY_PASSWORD",
		KeyAlias:      "KEY_ALIAS",
		KeyPassword:   "KEY_PASSWORD",
	}
	// AndroidVariables reads passwords and alias from ANDROID_* variables and
	// expects the keystore at a fixed path.
	AndroidVariables = EnvVariables{
		StorePassword: "ANDROID_KEYSTORE_PASSWORD",
		KeyAlias:      "ANDROID_KEY_ALIAS",
		KeyPassword:   "ANDROID_KEY_PASSWORD",
	}
)

var presets = map[string]EnvVariables{
	"legacy":  LegacyVariables,
	"android": AndroidVariables,
}

// Presets returns the names of the built-in environment variable presets.
func Presets() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Preset returns the environment variable names of a built-in preset.
func Preset(name string) (EnvVariables, error) {
	vars, ok := presets[name]
	if !ok {
		return EnvVariables{}, fmt.Errorf("unknown environment preset %q, expected one of %s", name, strings.Join(Presets(), ", "))
	}
	return vars, nil
}

// EnvironmentMode reads credentials from environment variables.
type EnvironmentMode struct {
	Variables EnvVariables
	// Keystore is used when Variables.StoreFile is empty, defaulting to
	// DefaultKeystore.
	Keystore string
	// ProjectRoot anchors relative keystore paths.
	ProjectRoot string
}

func (EnvironmentMode) mode() {}

func (e EnvironmentMode) String() string {
	return "environment"
}

// PropertiesMode reads credentials from a key.properties file.
type PropertiesMode struct {
	Path string
	// ProjectRoot anchors the storeFile value.
	ProjectRoot string
}

func (PropertiesMode) mode() {}

func (p PropertiesMode) String() string {
	return "properties"
}
