package signing

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alecthomas/assert/v2"

	"github.com/TBD54566975/relsign/internal/keyproperties"
	"github.com/TBD54566975/relsign/internal/log"
	"github.com/TBD54566975/relsign/internal/secretref"
)

func writeProperties(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "key.properties")
	assert.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestResolveProperties(t *testing.T) {
	ctx := log.ContextWithNewDefaultLogger(context.Background())
	dir := t.TempDir()
	path := writeProperties(t, dir, `
storePassword=store-pass
keyPassword=key-pass
keyAlias=upload
storeFile=keys/upload-keystore.jks
`)
	res, err := NewResolver().Resolve(ctx, PropertiesMode{Path: path, ProjectRoot: "/work/android"})
	assert.NoError(t, err)
	assert.Zero(t, res.Warnings)
	assert.Equal(t, Identity{
		KeystorePath:  filepath.Join("/work/android", "keys/upload-keystore.jks"),
		StorePassword: "store-pass",
		KeyAlias:      "upload",
		KeyPassword:   "key-pass",
	}, res.Identity.MustGet())
}

func TestResolvePropertiesAbsoluteStoreFile(t *testing.T) {
	ctx := log.ContextWithNewDefaultLogger(context.Background())
	path := writeProperties(t, t.TempDir(), `
storePassword=a
keyPassword=b
keyAlias=c
storeFile=/etc/keys/release.jks
`)
	res, err := NewResolver().Resolve(ctx, PropertiesMode{Path: path, ProjectRoot: "/work/android"})
	assert.NoError(t, err)
	assert.Equal(t, "/etc/keys/release.jks", res.Identity.MustGet().KeystorePath)
}

func TestResolvePropertiesMissingKey(t *testing.T) {
	ctx := log.ContextWithNewDefaultLogger(context.Background())
	tests := []struct {
		name    string
		content string
		keys    []string
	}{
		{name: "NoKeyAlias", content: "storeFile=a.jks\nstorePassword=b\nkeyPassword=c\n", keys: []string{"keyAlias"}},
		{name: "EmptyPassword", content: "storeFile=a.jks\nstorePassword=\nkeyAlias=x\nkeyPassword=c\n", keys: []string{"storePassword"}},
		{name: "Empty", content: "", keys: []string{"storeFile", "storePassword", "keyAlias", "keyPassword"}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			path := writeProperties(t, t.TempDir(), test.content)
			_, err := NewResolver().Resolve(ctx, PropertiesMode{Path: path})
			assert.True(t, errors.Is(err, ErrMalformedCredentials))
			var malformed *MalformedCredentialsError
			assert.True(t, errors.As(err, &malformed))
			assert.Equal(t, path, malformed.Source)
			assert.Equal(t, test.keys, malformed.Keys)
		})
	}
}

func TestResolvePropertiesUnparseable(t *testing.T) {
	ctx := log.ContextWithNewDefaultLogger(context.Background())
	path := writeProperties(t, t.TempDir(), `storePassword=\uZZZZ`)
	_, err := NewResolver().Resolve(ctx, PropertiesMode{Path: path})
	assert.True(t, errors.Is(err, ErrMalformedCredentials))
	assert.True(t, errors.Is(err, keyproperties.ErrParse))
}

func TestResolvePropertiesMissingFile(t *testing.T) {
	ctx := log.ContextWithNewDefaultLogger(context.Background())
	path := filepath.Join(t.TempDir(), "key.properties")
	res, err := NewResolver().Resolve(ctx, PropertiesMode{Path: path})
	assert.NoError(t, err)
	assert.False(t, res.Identity.Ok())
	assert.Equal(t, 1, len(res.Warnings))
	assert.Equal(t, MissingCredentialFile, res.Warnings[0].Kind)
	assert.Equal(t, path, res.Warnings[0].Subject)

	_, err = res.Require()
	assert.True(t, errors.Is(err, ErrNoIdentity))
}

func TestResolveEnvironment(t *testing.T) {
	ctx := log.ContextWithNewDefaultLogger(context.Background())
	env := MapEnviron{
		"ANDROID_KEYSTORE_PASSWORD": "store-pass",
		"ANDROID_KEY_ALIAS":         "upload",
		"ANDROID_KEY_PASSWORD":      "key-pass",
	}
	res, err := NewResolver(WithEnviron(env)).Resolve(ctx, EnvironmentMode{
		Variables:   AndroidVariables,
		ProjectRoot: "/work/android",
	})
	assert.NoError(t, err)
	assert.Zero(t, res.Warnings)
	assert.Equal(t, Identity{
		KeystorePath:  "/work/android/upload-keystore.jks",
		StorePassword: "store-pass",
		KeyAlias:      "upload",
		KeyPassword:   "key-pass",
	}, res.Identity.MustGet())
}

func TestResolveEnvironmentLegacy(t *testing.T) {
	ctx := log.ContextWithNewDefaultLogger(context.Background())
	env := MapEnviron{
		"KEY_ALIAS":           "release",
		"KEY_PASSWORD":        "shared",
		"KEY_PROPERTIES_PATH": "/ci/secrets/release.jks",
	}
	res, err := NewResolver(WithEnviron(env)).Resolve(ctx, EnvironmentMode{Variables: LegacyVariables})
	assert.NoError(t, err)
	assert.Equal(t, Identity{
		KeystorePath:  "/ci/secrets/release.jks",
		StorePassword: "shared",
		KeyAlias:      "release",
		KeyPassword:   "shared",
	}, res.Identity.MustGet())
}

func TestResolveEnvironmentMissingValues(t *testing.T) {
	ctx := log.ContextWithNewDefaultLogger(context.Background())
	env := MapEnviron{"KEY_ALIAS": "release", "KEY_PROPERTIES_PATH": ""}
	res, err := NewResolver(WithEnviron(env)).Resolve(ctx, EnvironmentMode{Variables: LegacyVariables})
	assert.NoError(t, err)
	identity := res.Identity.MustGet()
	assert.Equal(t, Identity{KeyAlias: "release"}, identity)

	subjects := []string{}
	for _, w := range res.Warnings {
		assert.Equal(t, MissingEnvironmentValue, w.Kind)
		subjects = append(subjects, w.Subject)
	}
	assert.Equal(t, []string{"KEY_PASSWORD", "KEY_PROPERTIES_PATH"}, subjects)
	assert.True(t, errors.Is(identity.Verify(), ErrUnusableIdentity))
}

func TestResolveReferences(t *testing.T) {
	ctx := log.ContextWithNewDefaultLogger(context.Background())
	refs := secretref.New(
		secretref.EnvarProvider{LookupEnv: MapEnviron{"CI_STORE_PASSWORD": "from-ci"}.LookupEnv},
		secretref.InlineProvider{},
	)
	path := writeProperties(t, t.TempDir(), "storeFile=release.jks\nstorePassword=env://CI_STORE_PASSWORD\nkeyAlias=upload\nkeyPassword="+secretref.InlineURL("inline-pass").String()+"\n")

	res, err := NewResolver(WithReferences(refs)).Resolve(ctx, PropertiesMode{Path: path, ProjectRoot: "root"})
	assert.NoError(t, err)
	assert.Equal(t, Identity{
		KeystorePath:  "root/release.jks",
		StorePassword: "from-ci",
		KeyAlias:      "upload",
		KeyPassword:   "inline-pass",
	}, res.Identity.MustGet())

	// Without a registry references are taken literally.
	res, err = NewResolver().Resolve(ctx, PropertiesMode{Path: path, ProjectRoot: "root"})
	assert.NoError(t, err)
	assert.Equal(t, "env://CI_STORE_PASSWORD", res.Identity.MustGet().StorePassword)
}

func TestResolveReferenceFailure(t *testing.T) {
	ctx := log.ContextWithNewDefaultLogger(context.Background())
	refs := secretref.New(secretref.EnvarProvider{LookupEnv: MapEnviron{}.LookupEnv})
	env := MapEnviron{
		"ANDROID_KEYSTORE_PASSWORD": "env://ABSENT",
		"ANDROID_KEY_ALIAS":         "upload",
		"ANDROID_KEY_PASSWORD":      "key-pass",
	}
	_, err := NewResolver(WithEnviron(env), WithReferences(refs)).Resolve(ctx, EnvironmentMode{Variables: AndroidVariables})
	var malformed *MalformedCredentialsError
	assert.True(t, errors.As(err, &malformed))
	assert.Equal(t, []string{"ANDROID_KEYSTORE_PASSWORD"}, malformed.Keys)
	assert.True(t, errors.Is(err, secretref.ErrNotFound))
}

func TestResolveLegacyReferenceFailureReportsVariableOnce(t *testing.T) {
	ctx := log.ContextWithNewDefaultLogger(context.Background())
	refs := secretref.New(secretref.EnvarProvider{LookupEnv: MapEnviron{}.LookupEnv})
	env := MapEnviron{
		"KEY_ALIAS":           "release",
		"KEY_PASSWORD":        "env://ABSENT",
		"KEY_PROPERTIES_PATH": "/ci/release.jks",
	}
	_, err := NewResolver(WithEnviron(env), WithReferences(refs)).Resolve(ctx, EnvironmentMode{Variables: LegacyVariables})
	var malformed *MalformedCredentialsError
	assert.True(t, errors.As(err, &malformed))
	assert.Equal(t, []string{"KEY_PASSWORD"}, malformed.Keys)
	assert.Equal(t, 1, strings.Count(err.Error(), "env://ABSENT"))
}

func TestResolveWithoutLoggerInContext(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "key.properties")

	res, err := NewResolver().Resolve(context.Background(), PropertiesMode{Path: missing})
	assert.NoError(t, err)
	assert.False(t, res.Identity.Ok())

	w := &strings.Builder{}
	logger := log.Configure(w, log.Config{Level: log.Warn})
	res, err = NewResolver(WithLogger(logger)).Resolve(context.Background(), PropertiesMode{Path: missing})
	assert.NoError(t, err)
	assert.Equal(t, 1, len(res.Warnings))
	assert.Contains(t, w.String(), "[signing] warn: signing properties file "+missing+" not found")
}

func TestPropertiesRoundTrip(t *testing.T) {
	ctx := log.ContextWithNewDefaultLogger(context.Background())
	dir := t.TempDir()
	source := map[string]string{
		keyproperties.StoreFile:     "nested dir/key store.p12",
		keyproperties.StorePassword: `s#p=a:c\e`,
		keyproperties.KeyAlias:      "alias with spaces",
		keyproperties.KeyPassword:   "ключ",
	}
	path := filepath.Join(dir, "key.properties")
	assert.NoError(t, keyproperties.Write(path, source))

	res, err := NewResolver().Resolve(ctx, PropertiesMode{Path: path, ProjectRoot: dir})
	assert.NoError(t, err)
	assert.Equal(t, Identity{
		KeystorePath:  filepath.Join(dir, source[keyproperties.StoreFile]),
		StorePassword: source[keyproperties.StorePassword],
		KeyAlias:      source[keyproperties.KeyAlias],
		KeyPassword:   source[keyproperties.KeyPassword],
	}, res.Identity.MustGet())
}
