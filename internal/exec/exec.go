package exec

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec" //nolint:depguard

	"github.com/kballard/go-shellquote"

	"github.com/TBD54566975/relsign/internal/log"
)

type Cmd struct {
	*exec.Cmd
}

func LookPath(exe string) (string, error) {
	path, err := exec.LookPath(exe)
	return path, err
}

// Capture runs the command and returns its stdout. Stderr is never mixed into
// the result; when the command fails it is available through Stderr(err).
func Capture(ctx context.Context, dir, exe string, args ...string) ([]byte, error) {
	cmd := Command(ctx, dir, exe, args...)
	out, err := cmd.Output()
	if err != nil {
		return out, fmt.Errorf("%s: %w", exe, err)
	}
	return out, nil
}

// Stderr returns what a failed command captured by Capture wrote to stderr.
func Stderr(err error) []byte {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Stderr
	}
	return nil
}

// Command creates a command inheriting the current environment. The command
// line is logged at trace level with arguments redacted.
func Command(ctx context.Context, dir, exe string, args ...string) *Cmd {
	logger := log.FromContext(ctx)
	logger.Tracef("exec: cd %s && %s %s", shellquote.Join(dir), exe, shellquote.Join(redact(args)...))
	cmd := exec.CommandContext(ctx, exe, args...)
	cmd.Env = os.Environ()
	cmd.Dir = dir
	return &Cmd{cmd}
}

// redact hides all but the first two arguments, so "op read -n <ref>" never
// logs the reference.
func redact(args []string) []string {
	out := make([]string, len(args))
	for i, arg := range args {
		if i < 2 {
			out[i] = arg
		} else {
			out[i] = "…"
		}
	}
	return out
}
