package sse

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"reflect"
	"strings"

	apperrors "github.com/Yaocool/code-simplify/errors"
	"github.com/Yaocool/code-simplify/logger"
)

// Handler dispatches classified stream records to caller callbacks.
type Handler struct {
	// OnData receives decoded "data:" payloads. Nil skips data records.
	OnData Callback
	// DataArgs are extra positional arguments forwarded to OnData.
	DataArgs []any

	// OnEvent receives decoded "event:" payloads. Nil skips event records.
	OnEvent Callback
	// EventArgs are extra positional arguments forwarded to OnEvent.
	EventArgs []any

	// Passthrough lists errors that are propagated unchanged instead of
	// being wrapped. An entry matches via errors.Is or identical concrete
	// type, so both sentinel errors and custom error types work.
	Passthrough []error

	// Log receives failure logs. Defaults to the registered "sse" logger.
	Log *logger.Logger
}

// Run reads the stream until end-of-stream or the [DONE] sentinel, invoking
// the callbacks strictly in line order. Each payload is JSON-decoded before
// dispatch. The first failure stops reading and is classified: elapsed
// deadlines become request-timeout errors, passthrough-listed errors are
// returned unchanged, everything else is wrapped as internal.
func (h *Handler) Run(ctx context.Context, r Reader) error {
	log := h.Log
	if log == nil {
		log = logger.Get("sse")
	}

	for {
		if err := ctx.Err(); err != nil {
			return h.classify(log, err)
		}

		ev, err := r.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			// A read failing because the deadline fired mid-stream may
			// surface as a transport error; the context is authoritative.
			if ctxErr := ctx.Err(); ctxErr != nil {
				err = fmt.Errorf("%w: %v", ctxErr, err)
			}
			return h.classify(log, err)
		}

		var cb Callback
		var args []any
		switch ev.Type {
		case FieldData:
			cb, args = h.OnData, h.DataArgs
		case FieldEvent:
			cb, args = h.OnEvent, h.EventArgs
		}
		if cb == nil {
			continue
		}

		var payload any
		if err := json.Unmarshal([]byte(ev.Payload), &payload); err != nil {
			return h.classify(log, fmt.Errorf("decode %s payload: %w", ev.Type, err))
		}
		if err := cb.Invoke(ctx, payload, args...); err != nil {
			return h.classify(log, err)
		}
	}
}

// classify translates a stream failure per the error policy.
func (h *Handler) classify(log *logger.Logger, err error) error {
	if isTimeout(err) {
		log.Error("stream timed out", map[string]any{"error": err.Error()})
		return apperrors.RequestTimeout("request timeout: " + err.Error()).WithCause(err)
	}

	log.Error("stream failed", map[string]any{"error": err.Error()})

	if len(h.Passthrough) == 0 {
		return apperrors.Internalf("stream failed, error: %v", err).WithCause(err)
	}
	for _, target := range h.Passthrough {
		if matches(err, target) {
			return err
		}
	}
	return apperrors.Internalf(
		"stream failed and no matching passthrough error found, got error type: %T, passthrough types: [%s], error: %v",
		err, typeNames(h.Passthrough), err,
	).WithCause(err)
}

// matches reports whether err should pass through for target.
func matches(err, target error) bool {
	if errors.Is(err, target) {
		return true
	}
	return reflect.TypeOf(err) == reflect.TypeOf(target)
}

func typeNames(targets []error) string {
	names := make([]string, len(targets))
	for i, t := range targets {
		names[i] = fmt.Sprintf("%T", t)
	}
	return strings.Join(names, ",")
}

// isTimeout reports whether err stems from an elapsed deadline.
func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
