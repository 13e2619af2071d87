package signing

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedCredentials matches every *MalformedCredentialsError.
var ErrMalformedCredentials = errors.New("malformed signing credentials")

// ErrNoIdentity is returned by Resolution.Require when nothing was resolved.
var ErrNoIdentity = errors.New("no signing identity available")

// MalformedCredentialsError is a fatal failure to read credentials that were
// present: an unreadable or unparseable file, missing keys, or a secret
// reference that could not be loaded.
type MalformedCredentialsError struct {
	// Source is the properties file path or "environment".
	Source string
	// Keys are the offending keys or variable names, if known.
	Keys []string
	Err  error
}

func (e *MalformedCredentialsError) Error() string {
	msg := e.Source
	if len(e.Keys) > 0 {
		msg += ": " + strings.Join(e.Keys, ", ")
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *MalformedCredentialsError) Unwrap() error { return e.Err }

func (e *MalformedCredentialsError) Is(target error) bool {
	return target == ErrMalformedCredentials
}

// WarningKind classifies non-fatal resolution problems.
type WarningKind int

const (
	// MissingCredentialFile means the properties file does not exist.
	MissingCredentialFile WarningKind = iota + 1
	// MissingEnvironmentValue means a credential variable is unset or empty.
	MissingEnvironmentValue
)

func (k WarningKind) String() string {
	switch k {
	case MissingCredentialFile:
		return "missing-credential-file"
	case MissingEnvironmentValue:
		return "missing-environment-value"
	default:
		return fmt.Sprintf("WarningKind(%d)", int(k))
	}
}

// Warning is a non-fatal problem found during resolution.
type Warning struct {
	Kind WarningKind
	// Subject is the file path or environment variable concerned.
	Subject string
	Message string
}

func (w Warning) String() string {
	return w.Message
}
