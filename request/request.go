// © 2024 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

// Package request makes HTTP requests to JSON and form endpoints.
package request

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Params defines the parameters needed for making an HTTP request.
type Params struct {
	// Method is the HTTP method (GET, POST, etc.) for the request.
	Method string
	// URL is the target URL of the request.
	URL string
	// Headers holds additional request headers.
	Headers map[string]string
	// Body is sent as the request body. Values of type url.Values are
	// form-encoded, everything else is marshaled to JSON.
	Body any
	// HTTPClient is used instead of DefaultClient if set.
	HTTPClient *http.Client
}

// DefaultClient is the default [http.Client] used by [Make].
//
// It has a timeout of 10 seconds to prevent requests from hanging indefinitely.
var DefaultClient = &http.Client{
	Timeout: 10 * time.Second,
}

// IgnoreResponse is a type to use with [Make] to skip JSON unmarshaling of the response body.
type IgnoreResponse struct{}

// StatusError is returned when a request gets a response with a status
// other than 200 OK.
type StatusError struct {
	StatusCode int
	Body       []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("want 200, got %d: %s", e.StatusCode, bytes.TrimSpace(e.Body))
}

// Make sends an HTTP request and decodes the JSON response into Response,
// unless Response is [IgnoreResponse].
func Make[Response any](ctx context.Context, p Params) (Response, error) {
	var resp Response

	body, contentType, err := encodeBody(p.Body)
	if err != nil {
		return resp, err
	}

	req, err := http.NewRequestWithContext(ctx, p.Method, p.URL, body)
	if err != nil {
		return resp, err
	}
	for k, v := range p.Headers {
		req.Header.Set(k, v)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")

	httpc := DefaultClient
	if p.HTTPClient != nil {
		httpc = p.HTTPClient
	}

	res, err := httpc.Do(req)
	if err != nil {
		return resp, err
	}
	defer res.Body.Close()

	b, err := io.ReadAll(res.Body)
	if err != nil {
		return resp, err
	}

	if res.StatusCode != http.StatusOK {
		return resp, fmt.Errorf("%s %q: %w", p.Method, p.URL, &StatusError{
			StatusCode: res.StatusCode,
			Body:       b,
		})
	}

	if _, ok := any(resp).(IgnoreResponse); ok {
		return resp, nil
	}
	if err := json.Unmarshal(b, &resp); err != nil {
		return resp, fmt.Errorf("%s %q: decoding response: %w", p.Method, p.URL, err)
	}
	return resp, nil
}

func encodeBody(body any) (io.Reader, string, error) {
	switch v := body.(type) {
	case nil:
		return nil, "", nil
	case url.Values:
		return bytes.NewReader([]byte(v.Encode())), "application/x-www-form-urlencoded", nil
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return nil, "", err
		}
		return bytes.NewReader(b), "application/json", nil
	}
}
