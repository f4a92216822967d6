// Package sse reads Server-Sent-Events streams and dispatches data/event
// records to caller-supplied callbacks.
package sse

import (
	"bufio"
	"io"
	"strings"
)

// FieldType classifies an SSE record line.
type FieldType string

const (
	// FieldData marks a "data:" record.
	FieldData FieldType = "data"
	// FieldEvent marks an "event:" record.
	FieldEvent FieldType = "event"
)

// doneSentinel terminates the stream when it appears as a data payload.
const doneSentinel = "[DONE]"

// Event is a single classified stream record.
type Event struct {
	// Type is the record kind, data or event.
	Type FieldType
	// Payload is the record content with the field prefix stripped.
	Payload string
}

// Reader reads classified records from an SSE stream.
type Reader interface {
	// Next returns the next data or event record, in stream order.
	// It returns io.EOF when the stream ends or the [DONE] sentinel
	// arrives.
	Next() (*Event, error)
}

type reader struct {
	scanner *bufio.Scanner
}

// NewReader creates an SSE reader over a live stream body. Closing the body
// remains the caller's responsibility.
func NewReader(body io.Reader) Reader {
	return &reader{scanner: bufio.NewScanner(body)}
}

// Next scans forward to the next data/event record. Blank lines and lines
// with other field prefixes are skipped; buffering never exceeds one line.
func (r *reader) Next() (*Event, error) {
	for r.scanner.Scan() {
		line := strings.TrimSpace(r.scanner.Text())
		if line == "" {
			continue
		}
		switch {
		case strings.HasPrefix(line, "data:"):
			payload := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
			if payload == doneSentinel {
				return nil, io.EOF
			}
			return &Event{Type: FieldData, Payload: payload}, nil
		case strings.HasPrefix(line, "event:"):
			payload := strings.TrimSpace(strings.TrimPrefix(line, "event:"))
			return &Event{Type: FieldEvent, Payload: payload}, nil
		}
	}
	if err := r.scanner.Err(); err != nil {
		return nil, err
	}
	return nil, io.EOF
}
