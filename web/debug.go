// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package web

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"net/http/pprof"
	"os"
	"runtime"
	"sync"
	"time"
	"weak"

	"go.astrophena.name/checkbox/logger"
	"go.astrophena.name/checkbox/version"
)

// DebugHandler is an [http.Handler] that serves a debugging page at /debug/
// with process information, registered key-value pairs and links.
type DebugHandler struct {
	mux   weak.Pointer[http.ServeMux]
	start time.Time

	mu    sync.Mutex
	kvs   []kv
	links []link
}

type kv struct {
	k string
	v func() any
}

type link struct {
	URL  string `json:"url"`
	Desc string `json:"desc"`
}

var debuggers muxRegistry[*DebugHandler]

// Debugger returns the [DebugHandler] registered on mux, creating and
// registering it at /debug/ on first use.
func Debugger(mux *http.ServeMux) *DebugHandler {
	d, loaded := debuggers.loadOrStore(mux, &DebugHandler{mux: weak.Make(mux), start: time.Now()})
	if loaded {
		return d
	}

	mux.Handle("GET /debug/{$}", d)
	mux.HandleFunc("GET /debug/pprof/", pprof.Index)
	mux.HandleFunc("GET /debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("GET /debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("GET /debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("GET /debug/pprof/trace", pprof.Trace)
	d.Link("/debug/pprof/", "pprof")
	d.Handle("gc", "Force GC", http.HandlerFunc(gcHandler))

	return d
}

// KV adds a key-value pair shown on the debug page.
func (d *DebugHandler) KV(k string, v any) {
	d.KVFunc(k, func() any { return v })
}

// KVFunc adds a key whose value is computed by v on every page view.
func (d *DebugHandler) KVFunc(k string, v func() any) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.kvs = append(d.kvs, kv{k, v})
}

// Link adds a link to the debug page.
func (d *DebugHandler) Link(url, desc string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.links = append(d.links, link{URL: url, Desc: desc})
}

// Handle registers handler at /debug/{slug} and links to it from the debug
// page.
func (d *DebugHandler) Handle(slug, desc string, handler http.Handler) {
	href := "/debug/" + slug
	if mux := d.mux.Value(); mux != nil {
		mux.Handle(href, handler)
	}
	d.Link(href, desc)
}

var (
	//go:embed templates/debug.html
	debugTemplateStr string
	debugTemplate    = template.Must(template.New("debug").Parse(debugTemplateStr))
)

type debugPair struct {
	Key   string
	Value string
}

// ServeHTTP implements the [http.Handler] interface.
func (d *DebugHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	hostname, _ := os.Hostname()
	data := struct {
		Version string
		Pairs   []debugPair
		Links   []link
	}{
		Version: version.Version().String(),
		Pairs: []debugPair{
			{"Hostname", hostname},
			{"PID", fmt.Sprint(os.Getpid())},
			{"Uptime", time.Since(d.start).Round(time.Second).String()},
			{"Goroutines", fmt.Sprint(runtime.NumGoroutine())},
		},
	}

	d.mu.Lock()
	for _, kv := range d.kvs {
		data.Pairs = append(data.Pairs, debugPair{kv.k, fmt.Sprint(kv.v())})
	}
	data.Links = append(data.Links, d.links...)
	d.mu.Unlock()

	var buf bytes.Buffer
	if err := debugTemplate.Execute(&buf, data); err != nil {
		logger.Error(r.Context(), "executing debug template failed", slog.Any("err", err))
		RespondError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	buf.WriteTo(w)
}

func gcHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("Running GC...\n"))
	runtime.GC()
	w.Write([]byte("Done.\n"))
}
