// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package ui

import (
	"context"
	"errors"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"go.astrophena.name/checkbox/settings"
	"go.astrophena.name/checkbox/testutil"
)

// fakeSettings counts loads and lets tests control the version.
type fakeSettings struct {
	onOrOff atomic.Bool
	version atomic.Uint64
	loads   atomic.Int64
	err     error
}

func (f *fakeSettings) Load(ctx context.Context) (settings.Settings, error) {
	f.loads.Add(1)
	if f.err != nil {
		return settings.Settings{}, f.err
	}
	return settings.Settings{OnOrOff: f.onOrOff.Load()}, nil
}

func (f *fakeSettings) Version() uint64 { return f.version.Load() }

func (f *fakeSettings) set(v bool) {
	f.onOrOff.Store(v)
	f.version.Add(1)
}

func get(t *testing.T, mux *http.ServeMux, path string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func newMux(svc Settings) *http.ServeMux {
	mux := http.NewServeMux()
	New(svc).Register(mux)
	return mux
}

func TestHome(t *testing.T) {
	w := get(t, newMux(new(fakeSettings)), "/")
	testutil.AssertEqual(t, w.Code, http.StatusOK)
	testutil.AssertEqual(t, w.Header().Get("Content-Type"), "text/html; charset=utf-8")
	body := w.Body.String()
	for _, want := range []string{
		"<h1>Checkbox Testing</h1>",
		`<a href="/vanilla-checkbox">Vanilla Checkbox</a>`,
		`href="/static/css/main.css"`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("want %q in body, got:\n%s", want, body)
		}
	}
}

func TestSettingsPage(t *testing.T) {
	cases := map[string]struct {
		onOrOff     bool
		wantChecked bool
		wantValue   string
	}{
		"on":  {onOrOff: true, wantChecked: true, wantValue: `value="true"`},
		"off": {onOrOff: false, wantChecked: false, wantValue: `value="false"`},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			svc := new(fakeSettings)
			svc.set(tc.onOrOff)

			w := get(t, newMux(svc), settings.FormPage)
			testutil.AssertEqual(t, w.Code, http.StatusOK)
			body := w.Body.String()

			for _, want := range []string{
				`<a href="/">Back to home</a>`,
				`action="/api/change_settings"`,
				`id="on-or-off-checkbox" name="on_or_off"`,
				`id="on-or-off-text" name="on_or_off" ` + tc.wantValue,
				`value="Save changes"`,
			} {
				if !strings.Contains(body, want) {
					t.Errorf("want %q in body, got:\n%s", want, body)
				}
			}
			testutil.AssertEqual(t, strings.Count(body, `method="post"`), 2)
			testutil.AssertEqual(t, strings.Contains(body, "checked>"), tc.wantChecked)
		})
	}
}

func TestSettingsPageEvents(t *testing.T) {
	mux := http.NewServeMux()
	p := New(new(fakeSettings))
	p.EventsPath = settings.EventsPath
	p.Register(mux)

	body := get(t, mux, settings.FormPage).Body.String()
	if !strings.Contains(body, `data-events="/api/events"`) {
		t.Errorf("events stream is not linked:\n%s", body)
	}
}

func TestSettingsPageError(t *testing.T) {
	svc := &fakeSettings{err: errors.New("service call failed: <boom>")}

	w := get(t, newMux(svc), settings.FormPage)
	testutil.AssertEqual(t, w.Code, http.StatusInternalServerError)
	body := w.Body.String()
	if !strings.Contains(body, `<div class="error">service call failed: &lt;boom&gt;</div>`) {
		t.Errorf("error is not rendered:\n%s", body)
	}
	if strings.Contains(body, "<form") {
		t.Errorf("forms must not be rendered on error:\n%s", body)
	}
	if !strings.Contains(body, "<h1>Checkbox Testing</h1>") {
		t.Errorf("error page is rendered without the layout:\n%s", body)
	}
}

func TestNotFound(t *testing.T) {
	mux := newMux(new(fakeSettings))
	for _, path := range []string{"/nope", "/vanilla-checkbox/extra", "/api/unknown"} {
		t.Run(path, func(t *testing.T) {
			w := get(t, mux, path)
			testutil.AssertEqual(t, w.Code, http.StatusNotFound)
			if !strings.Contains(w.Body.String(), "<title>Checkbox Testing</title>") {
				t.Errorf("not found page is rendered without the layout:\n%s", w.Body.String())
			}
			if !strings.Contains(w.Body.String(), "Not found") {
				t.Errorf("want Not found in body, got:\n%s", w.Body.String())
			}
		})
	}
}

func TestResourceRefetchesOnVersionChange(t *testing.T) {
	svc := new(fakeSettings)
	res := newResource(svc)
	ctx := t.Context()

	load := func(want bool) {
		t.Helper()
		got, err := res.get(ctx)
		if err != nil {
			t.Fatal(err)
		}
		testutil.AssertEqual(t, got.OnOrOff, want)
	}

	svc.onOrOff.Store(true)
	load(true)
	load(true)
	testutil.AssertEqual(t, svc.loads.Load(), int64(1))

	svc.set(false)
	load(false)
	load(false)
	testutil.AssertEqual(t, svc.loads.Load(), int64(2))

	svc.set(false)
	load(false)
	testutil.AssertEqual(t, svc.loads.Load(), int64(3))
}

func TestResourceDoesNotCacheErrors(t *testing.T) {
	svc := &fakeSettings{err: errors.New("unavailable")}
	res := newResource(svc)

	if _, err := res.get(t.Context()); err == nil {
		t.Fatal("want error")
	}
	svc.err = nil
	svc.onOrOff.Store(true)
	got, err := res.get(t.Context())
	if err != nil {
		t.Fatal(err)
	}
	testutil.AssertEqual(t, got, settings.Settings{OnOrOff: true})
	testutil.AssertEqual(t, svc.loads.Load(), int64(2))
}

func TestStaticFS(t *testing.T) {
	b, err := fs.ReadFile(StaticFS(), "static/js/live.js")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{`addEventListener("settings"`, "e.lastEventId"} {
		if !strings.Contains(string(b), want) {
			t.Errorf("want %q in live.js", want)
		}
	}
}
