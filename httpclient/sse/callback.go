package sse

import "context"

// Callback is the uniform invocation abstraction for stream record
// processing. Every callback is awaited through the same call path before
// the next line is read, so record order is preserved; long-running work
// should honor ctx cancellation.
type Callback interface {
	// Invoke processes one decoded payload. args carries the extra
	// positional arguments configured on the handler.
	Invoke(ctx context.Context, payload any, args ...any) error
}

// CallbackFunc lifts a plain function into the Callback call path.
type CallbackFunc func(ctx context.Context, payload any, args ...any) error

// Invoke implements Callback.
func (f CallbackFunc) Invoke(ctx context.Context, payload any, args ...any) error {
	return f(ctx, payload, args...)
}
