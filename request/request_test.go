// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package request

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"testing"

	"go.astrophena.name/checkbox/testutil"
)

type echo struct {
	Method      string `json:"method"`
	ContentType string `json:"content_type"`
	Body        string `json:"body"`
}

func echoHandler(w http.ResponseWriter, r *http.Request) {
	b, _ := io.ReadAll(r.Body)
	if r.URL.Path == "/fail" {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("boom\n"))
		return
	}
	json.NewEncoder(w).Encode(echo{
		Method:      r.Method,
		ContentType: r.Header.Get("Content-Type"),
		Body:        string(b),
	})
}

func TestMake(t *testing.T) {
	httpc := testutil.MockHTTPClient(http.HandlerFunc(echoHandler))

	cases := map[string]struct {
		body any
		want echo
	}{
		"no body": {
			want: echo{Method: http.MethodPost},
		},
		"JSON": {
			body: map[string]bool{"on_or_off": true},
			want: echo{Method: http.MethodPost, ContentType: "application/json", Body: `{"on_or_off":true}`},
		},
		"form": {
			body: url.Values{"on_or_off": {"on"}},
			want: echo{Method: http.MethodPost, ContentType: "application/x-www-form-urlencoded", Body: "on_or_off=on"},
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			got, err := Make[echo](context.Background(), Params{
				Method:     http.MethodPost,
				URL:        "http://example.com/echo",
				Body:       tc.body,
				HTTPClient: httpc,
			})
			testutil.AssertEqual(t, err, nil)
			testutil.AssertEqual(t, got, tc.want)
		})
	}
}

func TestMakeStatusError(t *testing.T) {
	httpc := testutil.MockHTTPClient(http.HandlerFunc(echoHandler))

	_, err := Make[IgnoreResponse](context.Background(), Params{
		Method:     http.MethodGet,
		URL:        "http://example.com/fail",
		HTTPClient: httpc,
	})
	var se *StatusError
	if !errors.As(err, &se) {
		t.Fatalf("want *StatusError, got %v", err)
	}
	testutil.AssertEqual(t, se.StatusCode, http.StatusInternalServerError)
	testutil.AssertEqual(t, err.Error(), `GET "http://example.com/fail": want 200, got 500: boom`)
}
