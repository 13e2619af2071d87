package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"golang.org/x/term"
)

// prompter reads secrets from a terminal without echo, or line by line from a
// pipe.
type prompter struct {
	in     *os.File
	out    io.Writer
	reader *bufio.Reader
}

func newPrompter(in *os.File, out io.Writer) *prompter {
	return &prompter{in: in, out: out, reader: bufio.NewReader(in)}
}

// secret returns io.EOF if input is exhausted.
func (p *prompter) secret(name string) (string, error) {
	fd := p.in.Fd()
	if isatty.IsTerminal(fd) {
		fmt.Fprintf(p.out, "%s: ", name)
		secret, err := term.ReadPassword(int(fd))
		fmt.Fprintln(p.out)
		if err != nil {
			return "", err
		}
		return string(secret), nil
	}
	line, err := p.reader.ReadString('\n')
	if errors.Is(err, io.EOF) && line == "" {
		return "", io.EOF
	} else if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read %s from stdin: %w", strings.ToLower(name), err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
