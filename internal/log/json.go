package log

import (
	"encoding/json"
	"io"
	"time"
)

var _ Sink = (*jsonSink)(nil)

type jsonEntry struct {
	Entry
	Time  time.Time `json:"time"`
	Error string    `json:"error,omitempty"`
}

func newJSONSink(w io.Writer) *jsonSink {
	return &jsonSink{enc: json.NewEncoder(w)}
}

type jsonSink struct {
	enc *json.Encoder
}

func (j *jsonSink) Log(entry Entry) error {
	jentry := jsonEntry{
		Entry: entry,
		Time:  entry.Time.UTC(),
	}
	if entry.Error != nil {
		jentry.Error = entry.Error.Error()
	}
	return j.enc.Encode(jentry)
}
