// © 2025 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package web

import (
	"net/http"
	"slices"
	"strings"
	"sync"
)

// CSP source constants.
const (
	CSPSelf         = "'self'"
	CSPNone         = "'none'"
	CSPUnsafeInline = "'unsafe-inline'"
)

// The default Content-Security-Policy.
// Based on https://github.com/tailscale/tailscale/blob/4ad3f01225745294474f1ae0de33e5a86824a744/safeweb/http.go.
var defaultCSP = CSP{
	DefaultSrc:           []string{CSPSelf},
	ScriptSrc:            []string{CSPSelf},
	FrameAncestors:       []string{CSPNone},
	FormAction:           []string{CSPSelf},
	BaseURI:              []string{CSPSelf},
	ObjectSrc:            []string{CSPSelf},
	BlockAllMixedContent: true,
}.Finalize()

// CSP represents a Content Security Policy.
// The zero value is an empty policy.
//
// See https://developer.mozilla.org/en-US/docs/Web/HTTP/Headers/Content-Security-Policy.
type CSP struct {
	DefaultSrc              []string
	ScriptSrc               []string
	StyleSrc                []string
	ImgSrc                  []string
	ConnectSrc              []string
	FontSrc                 []string
	ObjectSrc               []string
	FormAction              []string
	FrameAncestors          []string
	BaseURI                 []string
	BlockAllMixedContent    bool
	UpgradeInsecureRequests bool

	str *string
}

// String returns the CSP header value. Directives are sorted by name.
func (p CSP) String() string {
	if p.str != nil {
		return *p.str
	}
	return p.compute()
}

func (p CSP) compute() string {
	sources := map[string][]string{
		"default-src":     p.DefaultSrc,
		"script-src":      p.ScriptSrc,
		"style-src":       p.StyleSrc,
		"img-src":         p.ImgSrc,
		"connect-src":     p.ConnectSrc,
		"font-src":        p.FontSrc,
		"object-src":      p.ObjectSrc,
		"form-action":     p.FormAction,
		"frame-ancestors": p.FrameAncestors,
		"base-uri":        p.BaseURI,
	}
	flags := map[string]bool{
		"block-all-mixed-content":   p.BlockAllMixedContent,
		"upgrade-insecure-requests": p.UpgradeInsecureRequests,
	}

	var directives []string
	for name, srcs := range sources {
		if len(srcs) > 0 {
			directives = append(directives, name+" "+strings.Join(srcs, " "))
		}
	}
	for name, set := range flags {
		if set {
			directives = append(directives, name)
		}
	}
	slices.Sort(directives)
	return strings.Join(directives, "; ")
}

// Finalize computes and caches the string representation of the policy.
// It should be called after a policy is fully constructed.
func (p CSP) Finalize() CSP {
	s := p.compute()
	p.str = &s
	return p
}

// CSPMux matches requests against registered patterns, using the same rules
// as [http.ServeMux], and returns the policy of the best match.
type CSPMux struct {
	mu  sync.RWMutex
	mux *http.ServeMux
	m   map[string]CSP // pattern → policy
}

// NewCSPMux creates a new [CSPMux].
func NewCSPMux() *CSPMux {
	return &CSPMux{
		mux: http.NewServeMux(),
		m:   make(map[string]CSP),
	}
}

// Handle registers the CSP for the given pattern.
// If a policy already exists for pattern, Handle panics.
func (mux *CSPMux) Handle(pattern string, policy CSP) {
	mux.mu.Lock()
	defer mux.mu.Unlock()

	if _, exist := mux.m[pattern]; exist {
		panic("web: multiple registrations for " + pattern)
	}

	mux.mux.Handle(pattern, http.NotFoundHandler())
	mux.m[pattern] = policy.Finalize()
}

// PolicyFor returns the CSP for r and whether any pattern matched.
func (mux *CSPMux) PolicyFor(r *http.Request) (CSP, bool) {
	mux.mu.RLock()
	defer mux.mu.RUnlock()

	_, pattern := mux.mux.Handler(r)
	policy, ok := mux.m[pattern]
	return policy, ok
}
