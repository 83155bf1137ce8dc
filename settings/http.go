// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package settings

import (
	"errors"
	"fmt"
	"mime"
	"net/http"
	"net/url"
	"strings"

	"go.astrophena.name/checkbox/web"
	"go.astrophena.name/checkbox/web/sse"
)

// Routes served by [Service.Register].
const (
	LoadPath   = "/api/load_settings"
	ChangePath = "/api/change_settings"
	EventsPath = "/api/events"
)

// FormPage is where browser form submissions are sent back to when the
// Referer can't be used.
const FormPage = "/vanilla-checkbox"

const maxFormSize = 1 << 20

// Register adds the remote procedure routes of s to mux.
func (s *Service) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET "+LoadPath, s.handleLoad)
	mux.HandleFunc("POST "+LoadPath, s.handleLoad)
	mux.HandleFunc("POST "+ChangePath, s.handleChange)
	if s.Events != nil {
		if s.Events.Snapshot == nil {
			s.Events.Snapshot = func(*http.Request) (sse.Event, error) { return s.snapshot() }
		}
		mux.Handle("GET "+EventsPath, s.Events)
	}
}

// load_settings takes no arguments, so the request body is ignored.
func (s *Service) handleLoad(w http.ResponseWriter, r *http.Request) {
	settings, err := s.Load(r.Context())
	if err != nil {
		web.RespondJSONError(w, r, err)
		return
	}
	web.RespondJSON(w, settings)
}

type changeRequest struct {
	OnOrOff bool `json:"on_or_off"`
}

func (s *Service) changeJSON(r *http.Request, req changeRequest) (struct{}, error) {
	return struct{}{}, s.Change(r.Context(), req.OnOrOff)
}

func (s *Service) handleChange(w http.ResponseWriter, r *http.Request) {
	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch ct {
	case "application/json":
		web.HandleJSON(s.changeJSON).ServeHTTP(w, r)
		return
	case "", "application/x-www-form-urlencoded", "multipart/form-data":
	default:
		respondError(w, r, fmt.Errorf("%w: %q", web.ErrUnsupportedMediaType, ct))
		return
	}

	if err := r.ParseMultipartForm(maxFormSize); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		respondError(w, r, fmt.Errorf("%w: %v", web.ErrBadRequest, err))
		return
	}
	onOrOff, err := parseOnOrOff(r.PostForm["on_or_off"])
	if err != nil {
		respondError(w, r, err)
		return
	}
	if err := s.Change(r.Context(), onOrOff); err != nil {
		respondError(w, r, err)
		return
	}

	if wantsJSON(r) {
		web.RespondJSON(w, struct{}{})
		return
	}
	http.Redirect(w, r, returnPath(r), http.StatusSeeOther)
}

// parseOnOrOff follows checkbox semantics: a missing field means false.
func parseOnOrOff(values []string) (bool, error) {
	if len(values) == 0 {
		return false, nil
	}
	switch v := strings.ToLower(strings.TrimSpace(values[0])); v {
	case "on", "true", "1":
		return true, nil
	case "off", "false", "0", "":
		return false, nil
	default:
		return false, fmt.Errorf("%w: on_or_off must be a boolean, got %q", web.ErrBadRequest, v)
	}
}

func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

func respondError(w http.ResponseWriter, r *http.Request, err error) {
	if wantsJSON(r) {
		web.RespondJSONError(w, r, err)
		return
	}
	web.RespondError(w, r, err)
}

// returnPath picks the page a form submission redirects to. Only
// same-origin pages outside of /api/ are accepted.
func returnPath(r *http.Request) string {
	ref, err := url.Parse(r.Referer())
	if err != nil || ref.Host != r.Host || !strings.HasPrefix(ref.Path, "/") || strings.HasPrefix(ref.Path, "/api/") {
		return FormPage
	}
	// Browsers read //host and /\host as protocol-relative URLs.
	if strings.HasPrefix(ref.Path, "//") || strings.HasPrefix(ref.Path, "/\\") {
		return FormPage
	}
	return ref.RequestURI()
}
