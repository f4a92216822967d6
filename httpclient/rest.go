package httpclient

import (
	"context"
	"net/http"
	"time"
)

// RequestOption configures a single request issued by a verb helper.
type RequestOption func(*Request)

// WithHeaders sets request-specific headers.
func WithHeaders(headers map[string]string) RequestOption {
	return func(r *Request) { r.Headers = headers }
}

// WithQuery sets URL query parameters.
func WithQuery(params map[string]string) RequestOption {
	return func(r *Request) { r.Query = params }
}

// WithTimeout overrides the client timeout for this request.
func WithTimeout(d time.Duration) RequestOption {
	return func(r *Request) { r.Timeout = d }
}

// WithAuth overrides authentication for this request.
func WithAuth(auth *AuthConfig) RequestOption {
	return func(r *Request) { r.Auth = auth }
}

// WithBody sets a body on verbs that do not take one positionally.
func WithBody(body any) RequestOption {
	return func(r *Request) { r.Body = body }
}

// Head performs a HEAD request.
func (c *Client) Head(ctx context.Context, path string, opts ...RequestOption) (*Response, error) {
	return c.do(ctx, http.MethodHead, path, nil, opts...)
}

// Get performs a GET request.
func (c *Client) Get(ctx context.Context, path string, opts ...RequestOption) (*Response, error) {
	return c.do(ctx, http.MethodGet, path, nil, opts...)
}

// Options performs an OPTIONS request.
func (c *Client) Options(ctx context.Context, path string, opts ...RequestOption) (*Response, error) {
	return c.do(ctx, http.MethodOptions, path, nil, opts...)
}

// Post performs a POST request with the given body.
func (c *Client) Post(ctx context.Context, path string, body any, opts ...RequestOption) (*Response, error) {
	return c.do(ctx, http.MethodPost, path, body, opts...)
}

// Put performs a PUT request with the given body.
func (c *Client) Put(ctx context.Context, path string, body any, opts ...RequestOption) (*Response, error) {
	return c.do(ctx, http.MethodPut, path, body, opts...)
}

// Patch performs a PATCH request with the given body.
func (c *Client) Patch(ctx context.Context, path string, body any, opts ...RequestOption) (*Response, error) {
	return c.do(ctx, http.MethodPatch, path, body, opts...)
}

// Delete performs a DELETE request with the given body.
func (c *Client) Delete(ctx context.Context, path string, body any, opts ...RequestOption) (*Response, error) {
	return c.do(ctx, http.MethodDelete, path, body, opts...)
}

func (c *Client) do(ctx context.Context, method, path string, body any, opts ...RequestOption) (*Response, error) {
	req := Request{Method: method, Path: path, Body: body}
	for _, opt := range opts {
		opt(&req)
	}
	return c.Do(ctx, req)
}
