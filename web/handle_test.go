// © 2025 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package web_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.astrophena.name/checkbox/settings"
	"go.astrophena.name/checkbox/testutil"
	"go.astrophena.name/checkbox/web"
)

type changeResponse struct {
	Version uint64 `json:"version"`
}

// change stores the requested value. Requests carrying the query parameter
// readonly are refused.
func change(store *settings.Store) func(*http.Request, settings.Settings) (changeResponse, error) {
	return func(r *http.Request, req settings.Settings) (changeResponse, error) {
		if r.URL.Query().Has("readonly") {
			return changeResponse{}, fmt.Errorf("%w: settings are read-only", web.ErrForbidden)
		}
		return changeResponse{Version: store.Set(req.OnOrOff)}, nil
	}
}

func TestHandleJSON(t *testing.T) {
	cases := map[string]struct {
		target         string
		body           string
		wantStatusCode int
		wantInBody     string
		want           bool
	}{
		"off": {
			body:           `{"on_or_off": false}`,
			wantStatusCode: http.StatusOK,
			wantInBody:     `"version": 1`,
			want:           false,
		},
		"on": {
			body:           `{"on_or_off": true}`,
			wantStatusCode: http.StatusOK,
			wantInBody:     `"version": 1`,
			want:           true,
		},
		"absent means false": {
			body:           `{}`,
			wantStatusCode: http.StatusOK,
			wantInBody:     `"version": 1`,
			want:           false,
		},
		"invalid JSON": {
			body:           `{"on_or_off": false`,
			wantStatusCode: http.StatusBadRequest,
			wantInBody:     `"error": "bad request: failed to decode request body`,
			want:           true,
		},
		"wrong type": {
			body:           `{"on_or_off": "maybe"}`,
			wantStatusCode: http.StatusBadRequest,
			wantInBody:     `"error": "bad request: failed to decode request body`,
			want:           true,
		},
		"empty body": {
			body:           ``,
			wantStatusCode: http.StatusBadRequest,
			wantInBody:     `"error": "bad request: request body is required"`,
			want:           true,
		},
		"logic error": {
			target:         "/?readonly",
			body:           `{"on_or_off": false}`,
			wantStatusCode: http.StatusForbidden,
			wantInBody:     `"error": "forbidden: settings are read-only"`,
			want:           true,
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			store := settings.NewStore()
			handler := web.HandleJSON(change(store))

			target := tc.target
			if target == "" {
				target = settings.ChangePath
			}
			req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(tc.body))
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			testutil.AssertEqual(t, w.Code, tc.wantStatusCode)
			if !strings.Contains(w.Body.String(), tc.wantInBody) {
				t.Errorf("expected response body to contain %q, but got %q", tc.wantInBody, w.Body.String())
			}
			testutil.AssertEqual(t, store.Get(), tc.want)
		})
	}
}

func TestHandleJSON_NoRequestBody(t *testing.T) {
	store := settings.NewStore()
	store.Set(false)

	// load_settings takes no arguments.
	handler := web.HandleJSON(func(r *http.Request, _ struct{}) (settings.Settings, error) {
		return settings.Settings{OnOrOff: store.Get()}, nil
	})

	req := httptest.NewRequest(http.MethodGet, settings.LoadPath, nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	testutil.AssertEqual(t, w.Code, http.StatusOK)
	testutil.AssertEqual(t, w.Body.String(), "{\n  \"on_or_off\": false\n}\n")
}
