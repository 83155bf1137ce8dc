// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package main

import (
	"context"
	"flag"
	"net/http"
	"strconv"
	"time"

	"go.astrophena.name/checkbox/cli"
	"go.astrophena.name/checkbox/settings"
	"go.astrophena.name/checkbox/systemd"
	"go.astrophena.name/checkbox/ui"
	"go.astrophena.name/checkbox/web"
	"go.astrophena.name/checkbox/web/sse"
)

func main() { cli.Main(new(app)) }

type app struct {
	addr  string
	debug bool

	// set by server
	svc    *settings.Service
	events *sse.Streamer

	ready func() // called when the server is listening, for tests
}

func (a *app) Flags(fs *flag.FlagSet) {
	fs.StringVar(&a.addr, "addr", "localhost:3000", "Listen on `host:port` or sd-socket:NAME.")
	fs.BoolVar(&a.debug, "debug", false, "Serve debug pages at /debug/ and show internal errors to clients.")
}

func (a *app) Run(ctx context.Context) error {
	s := a.server()
	s.Ready = func() {
		systemd.Notify(ctx, systemd.Ready)
		systemd.Watchdog(ctx)
		if a.ready != nil {
			a.ready()
		}
	}
	defer systemd.Notify(ctx, systemd.Stopping)
	return s.ListenAndServe(ctx)
}

func (a *app) server() *web.Server {
	a.events = sse.NewStreamer()
	a.events.KeepAlive = 30 * time.Second
	a.svc = &settings.Service{Events: a.events}

	mux := http.NewServeMux()
	a.svc.Register(mux)
	pages := ui.New(a.svc)
	pages.EventsPath = settings.EventsPath
	pages.Register(mux)

	web.Health(mux).RegisterFunc("settings", func() (string, bool) {
		return "version " + strconv.FormatUint(a.svc.Version(), 10), true
	})

	csp := web.NewCSPMux()
	csp.Handle("/api/", web.CSP{
		DefaultSrc:     []string{web.CSPNone},
		FrameAncestors: []string{web.CSPNone},
	})

	s := &web.Server{
		Mux:        mux,
		Addr:       a.addr,
		Debuggable: a.debug,
		StaticFS:   ui.StaticFS(),
		CSP:        csp,
	}
	if a.debug {
		s.Middleware = append(s.Middleware, web.TrustAll)

		dbg := web.Debugger(mux)
		dbg.KVFunc("Checkbox", func() any {
			v, err := a.svc.Load(context.Background())
			if err != nil {
				return err
			}
			return v.OnOrOff
		})
		dbg.KVFunc("Settings version", func() any { return a.svc.Version() })
		dbg.KVFunc("Event subscribers", func() any { return a.events.ClientCount() })
		dbg.Link(settings.LoadPath, "Current settings")
	}
	return s
}
