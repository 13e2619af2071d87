package log

import (
	"io"
	"os"
)

var stderr io.Writer = os.Stderr

// Config is embedded into the relsign command line with a "log-" prefix.
//
// Diagnostics go to stderr so that stdout only carries resolved credentials.
type Config struct {
	Level      Level `help:"Diagnostic level: trace, debug, info, warn or error." default:"info" env:"RELSIGN_LOG_LEVEL" placeholder:"LEVEL"`
	JSON       bool  `help:"Write diagnostics as JSON lines, for CI log collectors." env:"RELSIGN_LOG_JSON"`
	Timestamps bool  `help:"Prefix diagnostics with the time since relsign started." env:"RELSIGN_LOG_TIMESTAMPS"`
}

// Configure returns a new logger based on the config.
func Configure(w io.Writer, cfg Config) *Logger {
	if cfg.JSON {
		return New(cfg.Level, newJSONSink(w))
	}
	return New(cfg.Level, newPlainSink(w, cfg.Timestamps))
}

// Fallback is the logger used by library calls whose context carries none. It
// writes warnings and errors to stderr.
func Fallback() *Logger {
	return New(Warn, newPlainSink(stderr, false))
}
