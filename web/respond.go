// © 2024 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package web

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strings"

	"go.astrophena.name/checkbox/logger"
)

type contextKey string

var trustedRequestKey = contextKey("trusted-request")

type trustedRequest struct{}

// IsTrustedRequest reports whether r is a trusted request.
// A trusted request, when resulting in an internal server error handled by
// [RespondError], will have its underlying error message exposed to the
// client in the HTML response.
func IsTrustedRequest(r *http.Request) bool {
	_, ok := r.Context().Value(trustedRequestKey).(trustedRequest)
	return ok
}

// TrustRequest marks r as a trusted request and returns a new request
// with the trusted status embedded in its context.
func TrustRequest(r *http.Request) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), trustedRequestKey, trustedRequest{}))
}

// TrustAll is a [Middleware] that marks every request as trusted. It is
// meant for local development.
func TrustAll(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, TrustRequest(r))
	})
}

// StatusErr is a sentinel error type used to represent HTTP status code errors.
type StatusErr int

// Error returns a lowercase representation of the HTTP status text.
func (se StatusErr) Error() string { return strings.ToLower(http.StatusText(int(se))) }

const (
	// ErrBadRequest represents a bad request error (HTTP 400).
	ErrBadRequest StatusErr = http.StatusBadRequest
	// ErrForbidden represents a forbidden access error (HTTP 403).
	ErrForbidden StatusErr = http.StatusForbidden
	// ErrNotFound represents a not found error (HTTP 404).
	ErrNotFound StatusErr = http.StatusNotFound
	// ErrMethodNotAllowed represents a method not allowed error (HTTP 405).
	ErrMethodNotAllowed StatusErr = http.StatusMethodNotAllowed
	// ErrUnsupportedMediaType represents an unsupported media type error (HTTP 415).
	ErrUnsupportedMediaType StatusErr = http.StatusUnsupportedMediaType
	// ErrInternalServerError represents an internal server error (HTTP 500).
	ErrInternalServerError StatusErr = http.StatusInternalServerError
)

type errorResponse struct {
	Status string `json:"status"`
	Error  string `json:"error"`
}

// RespondJSON marshals response as indented JSON and writes it to w.
// In case of marshalling errors, it writes an internal server error.
func RespondJSON(w http.ResponseWriter, response any) { respondJSON(w, response, false) }

func respondJSON(w http.ResponseWriter, response any, wroteStatus bool) {
	w.Header().Set("Content-Type", "application/json")
	b, err := json.MarshalIndent(response, "", "  ")
	if err != nil {
		if !wroteStatus {
			w.WriteHeader(http.StatusInternalServerError)
		}
		b, _ = json.MarshalIndent(&errorResponse{
			Status: "error",
			Error:  "JSON marshal error: " + err.Error(),
		}, "", "  ")
	}
	w.Write(b)
	w.Write([]byte("\n"))
}

var (
	//go:embed templates/error.html
	errorTemplateStr string
	errorTemplate    = template.Must(template.New("error").Parse(errorTemplateStr))
)

// RespondError writes an error response in HTML format to w and logs
// internal server errors with the context logger.
//
// If the error is a [StatusErr] or wraps it, its status code is used.
// Otherwise, the status code is 500 and the error text is shown only to
// trusted requests (see [TrustRequest]).
//
//	// This will set the status code to 404 (Not Found).
//	web.RespondError(w, r, fmt.Errorf("resource %w", web.ErrNotFound))
func RespondError(w http.ResponseWriter, r *http.Request, err error) {
	respondError(false, w, r, err)
}

// RespondJSONError is like [RespondError], but writes a JSON response that
// always includes the error text.
func RespondJSONError(w http.ResponseWriter, r *http.Request, err error) {
	respondError(true, w, r, err)
}

func respondError(asJSON bool, w http.ResponseWriter, r *http.Request, err error) {
	var se StatusErr
	if !errors.As(err, &se) {
		se = ErrInternalServerError
	}
	if se == ErrInternalServerError {
		logger.Error(r.Context(), "internal server error",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Any("err", err),
		)
	}

	if asJSON {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(int(se))
		respondJSON(w, &errorResponse{Status: "error", Error: err.Error()}, true)
		return
	}

	data := struct {
		StatusCode int
		StatusText string
		Error      string
	}{
		StatusCode: int(se),
		StatusText: http.StatusText(int(se)),
	}
	if se != ErrInternalServerError || IsTrustedRequest(r) {
		data.Error = err.Error()
	}

	var buf bytes.Buffer
	if err := errorTemplate.Execute(&buf, data); err != nil {
		logger.Error(r.Context(), "executing error template failed", slog.Any("err", err))
		http.Error(w, fmt.Sprintf("%d: %s", data.StatusCode, data.StatusText), data.StatusCode)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(data.StatusCode)
	buf.WriteTo(w)
}
