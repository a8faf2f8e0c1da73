// Package transport performs the blocking HTTP round-trip against a chat
// endpoint and classifies its failures.
package transport

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"
)

// Response is a successful HTTP reply from the chat endpoint.
type Response struct {
	StatusCode int
	Body       []byte
}

// Kind classifies a transport failure.
type Kind int

const (
	// KindNetwork covers DNS, dial and connection failures.
	KindNetwork Kind = iota
	// KindTimeout covers client timeouts and context deadlines.
	KindTimeout
	// KindHTTPStatus covers non-2xx responses.
	KindHTTPStatus
)

// Error is a classified transport failure.
type Error struct {
	Kind       Kind
	StatusCode int    // set for KindHTTPStatus
	Body       []byte // response body, when one was read
	Err        error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindTimeout:
		return fmt.Sprintf("request timed out: %v", e.Err)
	case KindHTTPStatus:
		return fmt.Sprintf("endpoint returned status %d: %s", e.StatusCode, bytes.TrimSpace(e.Body))
	default:
		return fmt.Sprintf("request failed: %v", e.Err)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Transport performs one blocking POST against a chat endpoint.
type Transport interface {
	Post(ctx context.Context, url string, headers map[string]string, body []byte) (*Response, error)
}

// HTTPTransport is the production Transport backed by net/http.
type HTTPTransport struct {
	client *http.Client
}

// NewHTTPTransport creates a transport whose requests fail with a timeout
// error after the given duration.
func NewHTTPTransport(timeout time.Duration) *HTTPTransport {
	return &HTTPTransport{client: &http.Client{Timeout: timeout}}
}

func (t *HTTPTransport) Post(ctx context.Context, url string, headers map[string]string, body []byte) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, &Error{Kind: KindNetwork, Err: fmt.Errorf("creating request: %w", err)}
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, classify(err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, classify(fmt.Errorf("reading response body: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &Error{Kind: KindHTTPStatus, StatusCode: resp.StatusCode, Body: respBody}
	}

	return &Response{StatusCode: resp.StatusCode, Body: respBody}, nil
}

func classify(err error) *Error {
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return &Error{Kind: KindTimeout, Err: err}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &Error{Kind: KindTimeout, Err: err}
	}
	return &Error{Kind: KindNetwork, Err: err}
}
