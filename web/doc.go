// © 2024 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

/*
Package web provides the HTTP plumbing shared by the checkbox services.

# Key types and functions

  - [Server]: an HTTP server with request logging, security headers,
    CSRF protection, static files and graceful shutdown.
  - [RespondJSON], [RespondError] and [RespondJSONError]: consistent JSON
    and HTML responses.
  - [HandleJSON]: a generic JSON request/response handler.
  - [Health]: a health check handler served at /health.
  - [Debugger]: a debug page with process info and custom key-value pairs.

# Usage

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "Hello, world!")
	})

	s := &web.Server{
		Mux:  mux,
		Addr: "localhost:3000",
	}

	if err := s.ListenAndServe(ctx); err != nil {
		return err
	}
*/
package web
