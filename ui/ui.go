// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

// Package ui renders the HTML pages of the checkbox application.
package ui

import (
	"context"
	"embed"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/a-h/templ"

	"go.astrophena.name/checkbox/logger"
	"go.astrophena.name/checkbox/settings"
)

var (
	//go:embed templates
	templatesFS embed.FS
	//go:embed static
	staticFS embed.FS

	homePage     = parsePage("home.html")
	settingsPage = parsePage("settings.html")
	notFoundPage = parsePage("notfound.html")
	errorPage    = parsePage("error.html")
)

// parsePage returns the layout with the "content" block taken from name.
func parsePage(name string) *template.Template {
	return template.Must(template.ParseFS(templatesFS, "templates/layout.html", "templates/"+name))
}

// StaticFS returns the assets the pages link to. Files are rooted at
// "static/", as expected by web.Server.StaticFS.
func StaticFS() fs.FS { return staticFS }

// Settings is what the pages need from the settings service.
type Settings interface {
	Load(ctx context.Context) (settings.Settings, error)
	// Version changes every time the settings change.
	Version() uint64
}

// Pages serves the home page, the settings page and the not found page.
type Pages struct {
	// EventsPath, if set, is the server-sent events stream the settings page
	// listens to for changes made elsewhere.
	EventsPath string

	settings *resource
}

// New returns pages reading from svc.
func New(svc Settings) *Pages {
	return &Pages{settings: newResource(svc)}
}

// Register adds the pages to mux. Requests that no other handler of mux
// matches get the not found page.
func (p *Pages) Register(mux *http.ServeMux) {
	mux.Handle("GET /{$}", templ.Handler(templ.FromGoHTML(homePage, nil)))
	mux.HandleFunc("GET "+settings.FormPage, p.serveSettings)
	mux.Handle("/", templ.Handler(templ.FromGoHTML(notFoundPage, nil), templ.WithStatus(http.StatusNotFound)))
}

type settingsData struct {
	OnOrOff bool
	Action  string
	Events  string
}

func (p *Pages) serveSettings(w http.ResponseWriter, r *http.Request) {
	s, err := p.settings.get(r.Context())
	if err != nil {
		logger.Error(r.Context(), "loading settings failed", slog.Any("err", err))
		templ.Handler(templ.FromGoHTML(errorPage, err.Error()), templ.WithStatus(http.StatusInternalServerError)).ServeHTTP(w, r)
		return
	}
	templ.Handler(templ.FromGoHTML(settingsPage, settingsData{
		OnOrOff: s.OnOrOff,
		Action:  settings.ChangePath,
		Events:  p.EventsPath,
	})).ServeHTTP(w, r)
}
