// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package web

import (
	"net/http"
	"runtime"
	"weak"

	"go.astrophena.name/checkbox/syncx"
)

// muxRegistry holds one value per mux. It doesn't keep muxes alive: an entry
// is dropped once its mux is garbage collected. Values must not reference
// their mux strongly.
type muxRegistry[V any] struct {
	m syncx.Map[weak.Pointer[http.ServeMux], V]
}

func (r *muxRegistry[V]) loadOrStore(mux *http.ServeMux, v V) (actual V, loaded bool) {
	key := weak.Make(mux)
	actual, loaded = r.m.LoadOrStore(key, v)
	if !loaded {
		runtime.AddCleanup(mux, r.m.Delete, key)
	}
	return actual, loaded
}

func (r *muxRegistry[V]) len() int {
	var n int
	r.m.Range(func(weak.Pointer[http.ServeMux], V) bool {
		n++
		return true
	})
	return n
}
