package log

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"
)

var _ Sink = (*plainSink)(nil)

func newPlainSink(w io.Writer, timestamps bool) *plainSink {
	return &plainSink{w: w, timestamps: timestamps, start: time.Now()}
}

type plainSink struct {
	w          io.Writer
	timestamps bool
	start      time.Time
}

// Log writes "[scope] level: message" followed by any remaining attributes.
func (p *plainSink) Log(entry Entry) error {
	var prefix strings.Builder
	if p.timestamps {
		fmt.Fprintf(&prefix, "%8.3fs ", entry.Time.Sub(p.start).Seconds())
	}
	if scope, ok := entry.Attributes[scopeKey]; ok {
		fmt.Fprintf(&prefix, "[%s] ", scope)
	}
	prefix.WriteString(entry.Level.String())
	prefix.WriteString(": ")

	keys := make([]string, 0, len(entry.Attributes))
	for k := range entry.Attributes {
		if k != scopeKey {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	var suffix strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&suffix, " %s=%s", k, entry.Attributes[k])
	}

	for _, line := range strings.Split(entry.Message, "\n") {
		if _, err := fmt.Fprintf(p.w, "%s%s%s\n", prefix.String(), line, suffix.String()); err != nil {
			return err
		}
	}
	return nil
}
