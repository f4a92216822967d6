// Package httpclient provides single-shot HTTP request helpers and an SSE
// streaming entry point with uniform timeout and error classification.
package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"strings"

	apperrors "github.com/Yaocool/code-simplify/errors"
	"github.com/Yaocool/code-simplify/httpclient/sse"
	"github.com/Yaocool/code-simplify/logger"
)

// Client is a configurable HTTP client.
type Client struct {
	httpClient *http.Client
	config     Config
	log        *logger.Logger
}

// New creates a new HTTP client with the given configuration.
func New(cfg Config) (*Client, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// Timeouts are enforced through request contexts so that a single
	// deadline covers connect plus full read.
	return &Client{
		httpClient: &http.Client{Transport: http.DefaultTransport},
		config:     cfg,
		log:        cfg.Logger,
	}, nil
}

// Do executes an HTTP request and returns the normalized response. The
// response body is JSON-decoded into Response.Data when the server declares
// a JSON content type; otherwise the raw bytes are left in Response.Body.
// HTTP error statuses are returned as data, not as errors. Failures classify
// into request-timeout (408) and generic internal (500) errors.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	timeout := req.Timeout
	if timeout <= 0 {
		timeout = c.config.Timeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	httpReq, err := c.buildRequest(ctx, req)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, c.classify(ctx, httpReq.URL.String(), err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, c.classify(ctx, httpReq.URL.String(), err)
	}

	result := &Response{
		StatusCode: resp.StatusCode,
		Headers:    flattenHeaders(resp.Header),
		Body:       body,
	}
	if isJSONContentType(resp.Header.Get("Content-Type")) && len(body) > 0 {
		var data any
		if jsonErr := json.Unmarshal(body, &data); jsonErr == nil {
			result.Data = data
		}
	}
	return result, nil
}

// DoStream executes an HTTP request and returns the live response body
// without reading it. The caller must close the returned StreamResponse.
// The context governs the whole stream lifetime.
func (c *Client) DoStream(ctx context.Context, req Request) (*StreamResponse, error) {
	httpReq, err := c.buildRequest(ctx, req)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, c.classify(ctx, httpReq.URL.String(), err)
	}

	return &StreamResponse{
		StatusCode: resp.StatusCode,
		Headers:    flattenHeaders(resp.Header),
		Body:       resp.Body,
	}, nil
}

// StreamSSE opens an SSE stream and dispatches its records through the
// handler until the stream ends, the [DONE] sentinel arrives, or the total
// timeout elapses. The underlying connection is released before returning.
func (c *Client) StreamSSE(ctx context.Context, req Request, h *sse.Handler) error {
	timeout := req.Timeout
	if timeout <= 0 {
		timeout = c.config.Timeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	resp, err := c.DoStream(ctx, req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Close() }()

	return h.Run(ctx, sse.NewReader(resp.Body))
}

// Unwrap returns the underlying *http.Client for advanced use cases.
func (c *Client) Unwrap() *http.Client {
	return c.httpClient
}

// buildRequest constructs an *http.Request from the client config and request.
func (c *Client) buildRequest(ctx context.Context, req Request) (*http.Request, error) {
	url := req.Path
	if c.config.BaseURL != "" && !strings.HasPrefix(req.Path, "http://") && !strings.HasPrefix(req.Path, "https://") {
		url = strings.TrimRight(c.config.BaseURL, "/") + "/" + strings.TrimLeft(req.Path, "/")
	}

	body, contentType, err := encodeBody(req.Body)
	if err != nil {
		return nil, apperrors.BadRequestf("encode body: %v", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, url, body)
	if err != nil {
		return nil, apperrors.BadRequestf("create request: %v", err)
	}

	if len(req.Query) > 0 {
		q := httpReq.URL.Query()
		for k, v := range req.Query {
			q.Set(k, v)
		}
		httpReq.URL.RawQuery = q.Encode()
	}

	for k, v := range c.config.Headers {
		httpReq.Header.Set(k, v)
	}
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}
	if body != nil && httpReq.Header.Get("Content-Type") == "" && contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}

	auth := c.config.Auth
	if req.Auth != nil {
		auth = req.Auth
	}
	auth.apply(httpReq)

	return httpReq, nil
}

// classify translates a transport failure into the typed error taxonomy.
func (c *Client) classify(ctx context.Context, url string, err error) error {
	if isTimeout(err) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		c.log.Error("request timed out", map[string]any{"url": url, "error": err.Error()})
		return apperrors.RequestTimeout("request timeout: " + err.Error()).WithCause(err)
	}
	c.log.Error("request failed", map[string]any{"url": url, "error": err.Error()})
	return apperrors.Internalf("request to %s failed, error: %v", url, err).WithCause(err)
}

// isTimeout reports whether err stems from an elapsed deadline.
func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// encodeBody converts a body value into an io.Reader and content type.
func encodeBody(body any) (io.Reader, string, error) {
	if body == nil {
		return nil, "", nil
	}
	switch v := body.(type) {
	case io.Reader:
		return v, "", nil
	case []byte:
		return bytes.NewReader(v), "", nil
	case string:
		return strings.NewReader(v), "text/plain", nil
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return nil, "", err
		}
		return bytes.NewReader(data), "application/json", nil
	}
}

// isJSONContentType reports whether ct declares a JSON payload.
func isJSONContentType(ct string) bool {
	ct = strings.ToLower(ct)
	if idx := strings.IndexByte(ct, ';'); idx >= 0 {
		ct = ct[:idx]
	}
	ct = strings.TrimSpace(ct)
	return ct == "application/json" || strings.HasSuffix(ct, "+json")
}
