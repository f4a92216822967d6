package httpclient

import (
	"encoding/json"
	"io"
	"net/http"
	"time"
)

// Request describes an outbound HTTP request.
type Request struct {
	// Method is the HTTP method (GET, POST, PUT, PATCH, DELETE, etc).
	Method string
	// Path is appended to the client's BaseURL. Can be a full URL if
	// BaseURL is empty.
	Path string
	// Headers are request-specific headers (merged over client defaults).
	Headers map[string]string
	// Query are URL query parameters.
	Query map[string]string
	// Body is the request body. Accepts io.Reader, []byte, string, or any
	// value that will be JSON-encoded.
	Body any
	// Timeout overrides the client timeout for this request.
	Timeout time.Duration
	// Auth overrides the client-level auth for this request.
	Auth *AuthConfig
}

// Response is the normalized result of an HTTP request.
type Response struct {
	// StatusCode is the HTTP status code.
	StatusCode int
	// Headers are the response headers.
	Headers map[string]string
	// Body is the raw response body.
	Body []byte
	// Data is the decoded body when the response declares a JSON content
	// type, nil otherwise.
	Data any
}

// IsSuccess reports whether the status code is 2xx.
func (r *Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// IsError reports whether the status code is 4xx or 5xx.
func (r *Response) IsError() bool {
	return r.StatusCode >= 400
}

// JSON decodes the raw body into v.
func (r *Response) JSON(v any) error {
	return json.Unmarshal(r.Body, v)
}

// StreamResponse wraps a streaming HTTP response. The caller must Close it.
type StreamResponse struct {
	// StatusCode is the HTTP status code.
	StatusCode int
	// Headers are the response headers.
	Headers map[string]string
	// Body is the live streaming body.
	Body io.ReadCloser
}

// Close releases the underlying connection.
func (r *StreamResponse) Close() error {
	if r.Body != nil {
		return r.Body.Close()
	}
	return nil
}

// flattenHeaders converts multi-value headers to single-value.
func flattenHeaders(h http.Header) map[string]string {
	result := make(map[string]string, len(h))
	for k, v := range h {
		if len(v) > 0 {
			result[k] = v[0]
		}
	}
	return result
}
