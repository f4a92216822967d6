package sse

import (
	"errors"
	"io"
	"strings"
	"testing"
)

func TestReaderClassifiesLines(t *testing.T) {
	stream := "event: {\"type\":\"start\"}\n\ndata: {\"x\":1}\n\ndata: [DONE]\ndata: {\"x\":2}\n"
	r := NewReader(strings.NewReader(stream))

	ev, err := r.Next()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ev.Type != FieldEvent || ev.Payload != `{"type":"start"}` {
		t.Errorf("got %+v, want event record", ev)
	}

	ev, err = r.Next()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ev.Type != FieldData || ev.Payload != `{"x":1}` {
		t.Errorf("got %+v, want data record", ev)
	}

	// [DONE] ends the stream; the trailing record is never surfaced.
	if _, err = r.Next(); !errors.Is(err, io.EOF) {
		t.Errorf("expected io.EOF after [DONE], got %v", err)
	}
}

func TestReaderSkipsBlankAndUnknownLines(t *testing.T) {
	stream := "\n: comment\nid: 42\nretry: 1000\ndata: {\"ok\":true}\n"
	r := NewReader(strings.NewReader(stream))

	ev, err := r.Next()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ev.Type != FieldData || ev.Payload != `{"ok":true}` {
		t.Errorf("got %+v, want the data record", ev)
	}
}

func TestReaderDoneWithoutSpace(t *testing.T) {
	r := NewReader(strings.NewReader("data:[DONE]\n"))
	if _, err := r.Next(); !errors.Is(err, io.EOF) {
		t.Errorf("expected io.EOF, got %v", err)
	}
}

func TestReaderNaturalEnd(t *testing.T) {
	r := NewReader(strings.NewReader("data: {\"x\":1}\n"))
	if _, err := r.Next(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := r.Next(); !errors.Is(err, io.EOF) {
		t.Errorf("expected io.EOF at end of stream, got %v", err)
	}
}

type failingBody struct{ err error }

func (f *failingBody) Read([]byte) (int, error) { return 0, f.err }

func TestReaderSurfacesReadError(t *testing.T) {
	readErr := errors.New("connection reset")
	r := NewReader(&failingBody{err: readErr})
	if _, err := r.Next(); !errors.Is(err, readErr) {
		t.Errorf("expected read error, got %v", err)
	}
}
