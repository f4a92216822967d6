package httpclient

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	apperrors "github.com/Yaocool/code-simplify/errors"
	"github.com/Yaocool/code-simplify/httpclient/sse"
	"github.com/Yaocool/code-simplify/logger"
)

func sseServer(t *testing.T, lines []string, hold time.Duration) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		flusher, ok := w.(http.Flusher)
		if !ok {
			t.Fatal("response writer does not support flushing")
		}
		for _, line := range lines {
			fmt.Fprintf(w, "%s\n\n", line)
			flusher.Flush()
		}
		if hold > 0 {
			select {
			case <-r.Context().Done():
			case <-time.After(hold):
			}
		}
	}))
}

func TestStreamSSEDispatchesUntilDone(t *testing.T) {
	srv := sseServer(t, []string{
		`event: {"type":"start"}`,
		`data: {"x":1}`,
		`data: [DONE]`,
	}, 0)
	defer srv.Close()

	var events, datas []any
	h := &sse.Handler{
		OnEvent: sse.CallbackFunc(func(_ context.Context, payload any, _ ...any) error {
			events = append(events, payload)
			return nil
		}),
		OnData: sse.CallbackFunc(func(_ context.Context, payload any, _ ...any) error {
			datas = append(datas, payload)
			return nil
		}),
		Log: logger.Nop(),
	}

	c := newTestClient(t, "")
	err := c.StreamSSE(context.Background(), Request{Method: http.MethodGet, Path: srv.URL}, h)
	if err != nil {
		t.Fatalf("StreamSSE failed: %v", err)
	}
	if len(events) != 1 || len(datas) != 1 {
		t.Fatalf("callbacks = (%d events, %d datas), want (1, 1)", len(events), len(datas))
	}
	if want := map[string]any{"type": "start"}; !reflect.DeepEqual(events[0], want) {
		t.Errorf("event payload = %v, want %v", events[0], want)
	}
	if want := map[string]any{"x": float64(1)}; !reflect.DeepEqual(datas[0], want) {
		t.Errorf("data payload = %v, want %v", datas[0], want)
	}
}

func TestStreamSSETotalTimeout(t *testing.T) {
	// The server sends one record then stalls past the total timeout.
	srv := sseServer(t, []string{`data: {"x":1}`}, 5*time.Second)
	defer srv.Close()

	h := &sse.Handler{
		OnData: sse.CallbackFunc(func(_ context.Context, _ any, _ ...any) error { return nil }),
		Log:    logger.Nop(),
	}

	c := newTestClient(t, "")
	err := c.StreamSSE(context.Background(), Request{
		Method:  http.MethodGet,
		Path:    srv.URL,
		Timeout: 100 * time.Millisecond,
	}, h)
	if !apperrors.IsRequestTimeout(err) {
		t.Fatalf("expected request-timeout error, got %v", err)
	}
}

func TestStreamSSECallbackPassthrough(t *testing.T) {
	srv := sseServer(t, []string{`data: {"x":1}`, `data: [DONE]`}, 0)
	defer srv.Close()

	type quotaError struct{ error }
	cbErr := &quotaError{error: fmt.Errorf("quota exceeded")}
	h := &sse.Handler{
		OnData: sse.CallbackFunc(func(_ context.Context, _ any, _ ...any) error {
			return cbErr
		}),
		Passthrough: []error{&quotaError{}},
		Log:         logger.Nop(),
	}

	c := newTestClient(t, "")
	err := c.StreamSSE(context.Background(), Request{Method: http.MethodGet, Path: srv.URL}, h)
	if err != cbErr {
		t.Fatalf("expected the exact callback error, got %v", err)
	}
}
