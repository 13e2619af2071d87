package output

import (
	"strings"
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/kballard/go-shellquote"

	"github.com/TBD54566975/relsign/internal/keyproperties"
	"github.com/TBD54566975/relsign/internal/signing"
)

var identity = signing.Identity{
	KeystorePath:  "/work/android/upload keystore.jks",
	StorePassword: "it's secret",
	KeyAlias:      "upload",
	KeyPassword:   "p$ss",
}

func TestWriteEnv(t *testing.T) {
	w := &strings.Builder{}
	assert.NoError(t, Write(w, Env, identity, false))
	env := map[string]string{}
	for _, line := range strings.Split(strings.TrimSpace(w.String()), "\n") {
		words, err := shellquote.Split(line)
		assert.NoError(t, err)
		assert.Equal(t, 2, len(words))
		assert.Equal(t, "export", words[0])
		name, value, _ := strings.Cut(words[1], "=")
		env[name] = value
	}
	assert.Equal(t, map[string]string{
		KeystorePathVar:  identity.KeystorePath,
		StorePasswordVar: identity.StorePassword,
		KeyAliasVar:      identity.KeyAlias,
		KeyPasswordVar:   identity.KeyPassword,
	}, env)
}

func TestWriteProperties(t *testing.T) {
	w := &strings.Builder{}
	assert.NoError(t, Write(w, Properties, identity, false))
	props, err := keyproperties.Parse([]byte(w.String()))
	assert.NoError(t, err)
	assert.Equal(t, map[string]string{
		keyproperties.StoreFile:     identity.KeystorePath,
		keyproperties.StorePassword: identity.StorePassword,
		keyproperties.KeyAlias:      identity.KeyAlias,
		keyproperties.KeyPassword:   identity.KeyPassword,
	}, props.Map())
}

func TestWriteGradle(t *testing.T) {
	w := &strings.Builder{}
	assert.NoError(t, Write(w, Gradle, identity, false))
	args, err := shellquote.Split(w.String())
	assert.NoError(t, err)
	assert.Equal(t, []string{
		"-Pandroid.injected.signing.store.file=/work/android/upload keystore.jks",
		"-Pandroid.injected.signing.store.password=it's secret",
		"-Pandroid.injected.signing.key.alias=upload",
		"-Pandroid.injected.signing.key.password=p$ss",
	}, args)
}

func TestWriteJSON(t *testing.T) {
	w := &strings.Builder{}
	assert.NoError(t, Write(w, JSON, identity, false))
	assert.Equal(t, `{
  "keystorePath": "/work/android/upload keystore.jks",
  "storePassword": "it's secret",
  "keyAlias": "upload",
  "keyPassword": "p$ss"
}
`, w.String())
}

func TestWriteUnknownFormat(t *testing.T) {
	err := Write(&strings.Builder{}, Format("yaml"), identity, false)
	assert.EqualError(t, err, `unknown output format "yaml", expected one of env, properties, gradle, json`)
}
