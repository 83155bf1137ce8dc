// © 2024 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package web

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"slices"
	"time"

	"go.astrophena.name/checkbox/logger"
	"go.astrophena.name/checkbox/syncx"
	"go.astrophena.name/checkbox/systemd"
	"go.astrophena.name/checkbox/version"
)

// Server is used to configure the HTTP server started by
// [Server.ListenAndServe].
//
// All fields of Server can't be modified after [Server.ListenAndServe]
// or [Server.ServeHTTP] is called for a first time.
type Server struct {
	// Mux is a http.ServeMux to serve.
	Mux *http.ServeMux
	// Debuggable specifies whether to register debug handlers at /debug/.
	Debuggable bool
	// Middleware specifies an optional slice of HTTP middleware that's applied to
	// each request, after the built-in logging and security headers.
	Middleware []Middleware
	// Addr is a network address to listen on (in the form of "host:port").
	// Addresses starting with "sd-socket:" name a socket passed by systemd.
	Addr string
	// Ready specifies an optional function to be called when the server is ready
	// to serve requests.
	Ready func()
	// StaticFS specifies an optional filesystem with static assets. It's
	// combined with the embedded static files and served under "/static/";
	// its files take precedence.
	StaticFS fs.FS
	// CSP selects a Content-Security-Policy per request. The default policy is
	// used for requests it doesn't match, or if it is nil.
	CSP *CSPMux
	// CrossOriginProtection configures CSRF protection. Defaults are used if nil.
	CrossOriginProtection *http.CrossOriginProtection

	handler syncx.Lazy[http.Handler]
}

var (
	errNoAddr = errors.New("server.Addr is empty")
	errListen = errors.New("failed to listen")
)

// Middleware wraps an [http.Handler].
type Middleware func(http.Handler) http.Handler

// ServeHTTP implements the [http.Handler] interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.Get(s.initHandler).ServeHTTP(w, r)
}

func (s *Server) initHandler() http.Handler {
	if s.Mux == nil {
		panic("Server.Mux is nil")
	}

	static := unionFS{staticFS}
	if s.StaticFS != nil {
		static = unionFS{s.StaticFS, staticFS}
	}
	s.Mux.Handle("GET /static/", http.FileServerFS(static))
	s.Mux.HandleFunc("GET /version", func(w http.ResponseWriter, r *http.Request) { RespondJSON(w, version.Version()) })
	Health(s.Mux)
	if s.Debuggable {
		Debugger(s.Mux)
	}

	csrf := s.CrossOriginProtection
	if csrf == nil {
		csrf = http.NewCrossOriginProtection()
	}
	csrf.SetDenyHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		RespondError(w, r, fmt.Errorf("%w: cross-origin request rejected", ErrForbidden))
	}))

	var h http.Handler = csrf.Handler(s.Mux)
	mws := append([]Middleware{logRequests, s.setHeaders}, s.Middleware...)
	for _, mw := range slices.Backward(mws) {
		h = mw(h)
	}
	return h
}

func (s *Server) setHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		policy := defaultCSP
		if s.CSP != nil {
			if p, ok := s.CSP.PolicyFor(r); ok {
				policy = p
			}
		}
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("Referrer-Policy", "same-origin")
		w.Header().Set("Content-Security-Policy", policy.String())
		next.ServeHTTP(w, r)
	})
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.Info(r.Context(), "handled request",
			slog.String("method", r.Method),
			slog.String("url", r.URL.String()),
			slog.Int("status", rec.status),
			slog.Duration("duration", time.Since(start)),
		)
	})
}

// statusRecorder remembers the status code written to a response.
type statusRecorder struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (r *statusRecorder) WriteHeader(code int) {
	if !r.wroteHeader {
		r.status = code
		r.wroteHeader = true
	}
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	r.wroteHeader = true
	return r.ResponseWriter.Write(b)
}

// Flush lets streaming handlers flush through the recorder.
func (r *statusRecorder) Flush() {
	http.NewResponseController(r.ResponseWriter).Flush()
}

func (r *statusRecorder) Unwrap() http.ResponseWriter { return r.ResponseWriter }

// ListenAndServe starts the HTTP server that can be stopped by canceling ctx.
func (s *Server) ListenAndServe(ctx context.Context) error {
	if s.Addr == "" {
		return errNoAddr
	}

	l, err := systemd.Listen(ctx, s.Addr)
	if err != nil {
		return fmt.Errorf("%w: %v", errListen, err)
	}

	logger.Info(ctx, "listening for HTTP requests", slog.String("addr", "http://"+l.Addr().String()))

	// Requests outlive ctx until shutdown starts, so long-lived streams
	// are canceled by the shutdown hook rather than by ctx itself.
	baseCtx, cancelBase := context.WithCancel(context.WithoutCancel(ctx))
	defer cancelBase()

	httpSrv := &http.Server{
		ErrorLog:          slog.NewLogLogger(logger.Get(ctx).Handler(), slog.LevelError),
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(_ net.Listener) context.Context { return baseCtx },
	}
	httpSrv.RegisterOnShutdown(cancelBase)

	errCh := make(chan error, 1)
	go func() {
		if err := httpSrv.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	if s.Ready != nil {
		s.Ready()
	}

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		logger.Info(ctx, "HTTP server gracefully shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		return httpSrv.Shutdown(shutdownCtx)
	}
}
