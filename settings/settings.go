// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

// Package settings owns the process-wide checkbox setting and exposes it as
// remote procedures over HTTP.
package settings

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"sync"
	"sync/atomic"

	"go.astrophena.name/checkbox/logger"
	"go.astrophena.name/checkbox/web/sse"
)

// Settings is the value served by load_settings and accepted by
// change_settings.
type Settings struct {
	OnOrOff bool `json:"on_or_off"`
}

// ErrServiceCall is returned by [Client] when a remote procedure can't be
// completed. The underlying failure is only available as text.
var ErrServiceCall = errors.New("service call failed")

// Store holds a single boolean. Reads and writes are atomic and the last
// write wins. The zero value holds true.
type Store struct {
	off     atomic.Bool
	version atomic.Uint64
}

// NewStore returns a store holding true.
func NewStore() *Store { return new(Store) }

// Get returns the current value.
func (s *Store) Get() bool { return !s.off.Load() }

// Set overwrites the value and bumps the version. It returns the new
// version.
func (s *Store) Set(v bool) uint64 {
	s.off.Store(!v)
	return s.version.Add(1)
}

// Version returns the number of writes so far. It's bumped after the value
// is stored, so a value read after Version is at least as new as that
// version.
func (s *Store) Version() uint64 { return s.version.Load() }

// Service implements load_settings and change_settings on top of an
// in-memory [Store]. The zero value is ready to use.
type Service struct {
	// Events, if set, receives a "settings" event after every change and is
	// served at /api/events by Register.
	Events *sse.Streamer

	// mu orders writes with their events and with snapshots, so that event
	// IDs reach subscribers in increasing order.
	mu    sync.Mutex
	store Store
}

// Load returns the current settings.
func (s *Service) Load(ctx context.Context) (Settings, error) {
	if err := ctx.Err(); err != nil {
		return Settings{}, err
	}
	return Settings{OnOrOff: s.store.Get()}, nil
}

// Change overwrites the setting unconditionally.
func (s *Service) Change(ctx context.Context, onOrOff bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	version := s.store.Set(onOrOff)
	logger.Info(ctx, "settings changed", slog.Bool("on_or_off", onOrOff))

	if s.Events != nil {
		ev, err := event(Settings{OnOrOff: onOrOff}, version)
		if err != nil {
			return err
		}
		s.Events.Publish(ev)
	}
	return nil
}

// Version returns the mutation counter of the underlying store.
func (s *Service) Version() uint64 { return s.store.Version() }

// snapshot returns the event describing the current settings.
func (s *Service) snapshot() (sse.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return event(Settings{OnOrOff: s.store.Get()}, s.store.Version())
}

func event(settings Settings, version uint64) (sse.Event, error) {
	ev, err := sse.JSONEvent("settings", settings)
	if err != nil {
		return sse.Event{}, err
	}
	ev.ID = strconv.FormatUint(version, 10)
	return ev, nil
}
