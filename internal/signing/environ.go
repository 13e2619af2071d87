package signing

import "os"

// Environ looks up environment variables.
type Environ interface {
	LookupEnv(name string) (string, bool)
}

// OSEnviron reads the process environment.
type OSEnviron struct{}

func (OSEnviron) LookupEnv(name string) (string, bool) { return os.LookupEnv(name) }

// MapEnviron is a fixed environment.
type MapEnviron map[string]string

func (m MapEnviron) LookupEnv(name string) (string, bool) {
	value, ok := m[name]
	return value, ok
}
