package sse

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	apperrors "github.com/Yaocool/code-simplify/errors"
	"github.com/Yaocool/code-simplify/logger"
)

func newHandler() *Handler {
	return &Handler{Log: logger.Nop()}
}

func TestHandlerDispatchOrderAndDone(t *testing.T) {
	stream := "event: {\"type\":\"start\"}\ndata: {\"x\":1}\ndata: [DONE]\ndata: {\"x\":2}\n"

	var events, datas []any
	h := newHandler()
	h.OnEvent = CallbackFunc(func(_ context.Context, payload any, _ ...any) error {
		events = append(events, payload)
		return nil
	})
	h.OnData = CallbackFunc(func(_ context.Context, payload any, _ ...any) error {
		datas = append(datas, payload)
		return nil
	})

	if err := h.Run(context.Background(), NewReader(strings.NewReader(stream))); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(events) != 1 {
		t.Fatalf("event callback invoked %d times, want 1", len(events))
	}
	if want := map[string]any{"type": "start"}; !reflect.DeepEqual(events[0], want) {
		t.Errorf("event payload = %v, want %v", events[0], want)
	}
	if len(datas) != 1 {
		t.Fatalf("data callback invoked %d times, want 1 (nothing after [DONE])", len(datas))
	}
	if want := map[string]any{"x": float64(1)}; !reflect.DeepEqual(datas[0], want) {
		t.Errorf("data payload = %v, want %v", datas[0], want)
	}
}

func TestHandlerForwardsExtraArgs(t *testing.T) {
	var got []any
	h := newHandler()
	h.OnData = CallbackFunc(func(_ context.Context, _ any, args ...any) error {
		got = args
		return nil
	})
	h.DataArgs = []any{"session-7", 42}

	err := h.Run(context.Background(), NewReader(strings.NewReader("data: {}\n")))
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !reflect.DeepEqual(got, []any{"session-7", 42}) {
		t.Errorf("args = %v, want [session-7 42]", got)
	}
}

func TestHandlerNilCallbacksSkipRecords(t *testing.T) {
	h := newHandler()
	stream := "event: {\"a\":1}\ndata: {\"b\":2}\n"
	if err := h.Run(context.Background(), NewReader(strings.NewReader(stream))); err != nil {
		t.Fatalf("Run with nil callbacks should succeed, got %v", err)
	}
}

type customError struct{ msg string }

func (e *customError) Error() string { return e.msg }

func TestHandlerPassthroughPropagatesExactError(t *testing.T) {
	cbErr := &customError{msg: "my callback failed"}
	h := newHandler()
	h.OnData = CallbackFunc(func(_ context.Context, _ any, _ ...any) error {
		return cbErr
	})
	h.Passthrough = []error{&customError{}}

	err := h.Run(context.Background(), NewReader(strings.NewReader("data: {}\n")))
	var got *customError
	if !errors.As(err, &got) || got != cbErr {
		t.Fatalf("expected the exact callback error, got %v", err)
	}
}

func TestHandlerPassthroughSentinelMatch(t *testing.T) {
	sentinel := errors.New("stop here")
	h := newHandler()
	h.OnData = CallbackFunc(func(_ context.Context, _ any, _ ...any) error {
		return sentinel
	})
	h.Passthrough = []error{sentinel}

	err := h.Run(context.Background(), NewReader(strings.NewReader("data: {}\n")))
	if !errors.Is(err, sentinel) {
		t.Fatalf("expected the sentinel, got %v", err)
	}
}

func TestHandlerNonMatchingErrorBecomesInternal(t *testing.T) {
	h := newHandler()
	h.OnData = CallbackFunc(func(_ context.Context, _ any, _ ...any) error {
		return errors.New("unlisted failure")
	})
	h.Passthrough = []error{&customError{}}

	err := h.Run(context.Background(), NewReader(strings.NewReader("data: {}\n")))
	if !apperrors.IsInternal(err) {
		t.Fatalf("expected internal error, got %v", err)
	}
	if !strings.Contains(err.Error(), "customError") {
		t.Errorf("internal error should list attempted passthrough types: %v", err)
	}
}

func TestHandlerNoPassthroughListWrapsEverything(t *testing.T) {
	h := newHandler()
	h.OnData = CallbackFunc(func(_ context.Context, _ any, _ ...any) error {
		return &customError{msg: "boom"}
	})

	err := h.Run(context.Background(), NewReader(strings.NewReader("data: {}\n")))
	if !apperrors.IsInternal(err) {
		t.Fatalf("expected internal error, got %v", err)
	}
}

func TestHandlerInvalidJSONIsInternal(t *testing.T) {
	h := newHandler()
	h.OnData = CallbackFunc(func(_ context.Context, _ any, _ ...any) error { return nil })

	err := h.Run(context.Background(), NewReader(strings.NewReader("data: {not json\n")))
	if !apperrors.IsInternal(err) {
		t.Fatalf("expected internal error for invalid JSON, got %v", err)
	}
}

// slowReader blocks until the context expires, then surfaces its error, the
// way a live body read fails after the request deadline fires.
type slowReader struct{ ctx context.Context }

func (s *slowReader) Next() (*Event, error) {
	<-s.ctx.Done()
	return nil, s.ctx.Err()
}

func TestHandlerTimeoutIsRequestTimeout(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	h := newHandler()
	err := h.Run(ctx, &slowReader{ctx: ctx})
	if !apperrors.IsRequestTimeout(err) {
		t.Fatalf("expected request-timeout error, got %v", err)
	}
	if apperrors.CodeOf(err) != apperrors.CodeRequestTimeout {
		t.Errorf("code = %d, want %d", apperrors.CodeOf(err), apperrors.CodeRequestTimeout)
	}
}

func TestHandlerTimeoutBeatsPassthrough(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Millisecond)
	defer cancel()
	<-ctx.Done()

	h := newHandler()
	h.Passthrough = []error{&customError{}}
	err := h.Run(ctx, NewReader(strings.NewReader("data: {}\n")))
	if !apperrors.IsRequestTimeout(err) {
		t.Fatalf("expected request-timeout, got %v", err)
	}
}
