// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package ui

import (
	"context"

	"go.astrophena.name/checkbox/settings"
	"go.astrophena.name/checkbox/syncx"
)

// resource caches settings under the version they were loaded at and loads
// them again once the version moves on. Failed loads aren't cached.
type resource struct {
	svc   Settings
	cache syncx.Protected[*cachedSettings]
}

type cachedSettings struct {
	valid   bool
	version uint64
	val     settings.Settings
}

func newResource(svc Settings) *resource {
	return &resource{svc: svc, cache: syncx.Protect(new(cachedSettings))}
}

func (r *resource) get(ctx context.Context) (settings.Settings, error) {
	// The version is read before loading, so the loaded value is never older
	// than the key it's cached under.
	version := r.svc.Version()

	var (
		val settings.Settings
		hit bool
	)
	r.cache.ReadAccess(func(c *cachedSettings) {
		if c.valid && c.version == version {
			val, hit = c.val, true
		}
	})
	if hit {
		return val, nil
	}

	val, err := r.svc.Load(ctx)
	if err != nil {
		return settings.Settings{}, err
	}
	r.cache.WriteAccess(func(c *cachedSettings) {
		if !c.valid || version >= c.version {
			c.valid, c.version, c.val = true, version, val
		}
	})
	return val, nil
}
