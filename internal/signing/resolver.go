package signing

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/types/optional"

	"github.com/TBD54566975/relsign/internal/keyproperties"
	"github.com/TBD54566975/relsign/internal/log"
	"github.com/TBD54566975/relsign/internal/secretref"
)

var errMissingKeys = errors.New("missing or empty keys")

// Resolution is the outcome of a successful Resolve. Identity is absent when
// no credentials were found; Warnings explain why.
type Resolution struct {
	Identity optional.Option[Identity]
	Warnings []Warning
}

// Require returns the identity or an error wrapping ErrNoIdentity.
func (r Resolution) Require() (Identity, error) {
	if identity, ok := r.Identity.Get(); ok {
		return identity, nil
	}
	msgs := make([]string, len(r.Warnings))
	for i, w := range r.Warnings {
		msgs[i] = w.Message
	}
	if len(msgs) == 0 {
		return Identity{}, ErrNoIdentity
	}
	return Identity{}, fmt.Errorf("%w: %s", ErrNoIdentity, strings.Join(msgs, "; "))
}

// Resolver produces a signing identity for a Mode.
type Resolver struct {
	env    Environ
	refs   optional.Option[*secretref.Registry]
	logger *log.Logger
}

type ResolverOption func(*Resolver)

// WithEnviron replaces the process environment.
func WithEnviron(env Environ) ResolverOption {
	return func(r *Resolver) { r.env = env }
}

// WithLogger sets the logger used when the context passed to Resolve carries
// none.
func WithLogger(logger *log.Logger) ResolverOption {
	return func(r *Resolver) { r.logger = logger }
}

// WithReferences dereferences credential values that are secret references.
func WithReferences(refs *secretref.Registry) ResolverOption {
	return func(r *Resolver) { r.refs = optional.Some(refs) }
}

func NewResolver(options ...ResolverOption) *Resolver {
	r := &Resolver{env: OSEnviron{}, logger: log.Fallback()}
	for _, option := range options {
		option(r)
	}
	return r
}

// Resolve the signing identity for mode.
//
// Errors are always fatal and match ErrMalformedCredentials. A missing
// properties file is not an error: the Resolution has no identity and a
// MissingCredentialFile warning.
func (r *Resolver) Resolve(ctx context.Context, mode Mode) (Resolution, error) {
	ctx = log.ContextWithFallback(ctx, r.logger)
	logger := log.FromContext(ctx).Scope("signing")
	var (
		res Resolution
		err error
	)
	switch mode := mode.(type) {
	case EnvironmentMode:
		res, err = r.resolveEnvironment(ctx, mode)
	case PropertiesMode:
		res, err = r.resolveProperties(ctx, mode)
	default:
		return Resolution{}, fmt.Errorf("unsupported resolution mode %T", mode)
	}
	if err != nil {
		return Resolution{}, err
	}
	for _, w := range res.Warnings {
		logger.Warnf("%s", w.Message)
	}
	if identity, ok := res.Identity.Get(); ok {
		logger.Debugf("Resolved %s from %s", identity, mode)
	}
	return res, nil
}

func (r *Resolver) resolveEnvironment(ctx context.Context, mode EnvironmentMode) (Resolution, error) {
	res := Resolution{}
	var bad []string
	var derefErr error
	// Presets may map several fields to one variable; each is read once.
	seen := map[string]string{}
	get := func(name string) string {
		if name == "" {
			return ""
		}
		if value, ok := seen[name]; ok {
			return value
		}
		seen[name] = ""
		value, ok := r.env.LookupEnv(name)
		if !ok || value == "" {
			res.Warnings = append(res.Warnings, Warning{
				Kind:    MissingEnvironmentValue,
				Subject: name,
				Message: fmt.Sprintf("environment variable %s is not set", name),
			})
			return ""
		}
		value, err := r.deref(ctx, value)
		if err != nil {
			bad = append(bad, name)
			derefErr = errors.Join(derefErr, err)
			return value
		}
		seen[name] = value
		return value
	}

	identity := Identity{
		StorePassword: get(mode.Variables.StorePassword),
		KeyAlias:      get(mode.Variables.KeyAlias),
		KeyPassword:   get(mode.Variables.KeyPassword),
	}
	storeFile := mode.Keystore
	if storeFile == "" {
		storeFile = DefaultKeystore
	}
	if mode.Variables.StoreFile != "" {
		storeFile = get(mode.Variables.StoreFile)
	}
	if len(bad) > 0 {
		return Resolution{}, &MalformedCredentialsError{Source: "environment", Keys: bad, Err: derefErr}
	}
	if storeFile != "" {
		identity.KeystorePath = anchor(mode.ProjectRoot, storeFile)
	}
	res.Identity = optional.Some(identity)
	return res, nil
}

func (r *Resolver) resolveProperties(ctx context.Context, mode PropertiesMode) (Resolution, error) {
	path := mode.Path
	if path == "" {
		path = DefaultPropertiesPath
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return Resolution{Warnings: []Warning{{
			Kind:    MissingCredentialFile,
			Subject: path,
			Message: fmt.Sprintf("signing properties file %s not found, release build will not be signed", path),
		}}}, nil
	} else if err != nil {
		return Resolution{}, &MalformedCredentialsError{Source: path, Err: err}
	}

	props, err := keyproperties.Read(path)
	if err != nil {
		return Resolution{}, &MalformedCredentialsError{Source: path, Err: err}
	}

	values := map[string]string{}
	var missing []string
	for _, key := range keyproperties.Keys {
		value, ok := props.Get(key)
		if !ok || strings.TrimSpace(value) == "" {
			missing = append(missing, key)
			continue
		}
		values[key] = value
	}
	if len(missing) > 0 {
		return Resolution{}, &MalformedCredentialsError{Source: path, Keys: missing, Err: errMissingKeys}
	}

	var bad []string
	var derefErr error
	for _, key := range keyproperties.Keys {
		value, err := r.deref(ctx, values[key])
		if err != nil {
			bad = append(bad, key)
			derefErr = errors.Join(derefErr, err)
			continue
		}
		values[key] = value
	}
	if len(bad) > 0 {
		return Resolution{}, &MalformedCredentialsError{Source: path, Keys: bad, Err: derefErr}
	}

	return Resolution{Identity: optional.Some(Identity{
		KeystorePath:  anchor(mode.ProjectRoot, values[keyproperties.StoreFile]),
		StorePassword: values[keyproperties.StorePassword],
		KeyAlias:      values[keyproperties.KeyAlias],
		KeyPassword:   values[keyproperties.KeyPassword],
	})}, nil
}

func (r *Resolver) deref(ctx context.Context, value string) (string, error) {
	refs, ok := r.refs.Get()
	if !ok {
		return value, nil
	}
	resolved, _, err := refs.Resolve(ctx, value)
	return resolved, err
}

// anchor joins relative paths onto root. Absolute paths are kept.
func anchor(root, path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(root, path)
}
