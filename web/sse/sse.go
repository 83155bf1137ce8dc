// © 2025 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

// Package sse provides a server implementation for Server-Sent Events (SSE).
package sse

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.astrophena.name/checkbox/logger"
	"go.astrophena.name/checkbox/web"
)

const clientChanBuf = 16

// Event is a single server-sent event.
type Event struct {
	// ID, if set, becomes the last event ID seen by the client.
	ID string
	// Name is the event type. Clients receive unnamed events as "message".
	Name string
	// Data is the event payload. Multi-line data is split into several
	// data fields.
	Data string
}

// WriteTo writes e in the text/event-stream format.
func (e Event) WriteTo(w io.Writer) (int64, error) {
	var b strings.Builder
	if e.ID != "" {
		fmt.Fprintf(&b, "id: %s\n", e.ID)
	}
	if e.Name != "" {
		fmt.Fprintf(&b, "event: %s\n", e.Name)
	}
	for line := range strings.Lines(e.Data) {
		fmt.Fprintf(&b, "data: %s\n", strings.TrimSuffix(line, "\n"))
	}
	if e.Data == "" {
		b.WriteString("data: \n")
	}
	b.WriteString("\n")
	n, err := io.WriteString(w, b.String())
	return int64(n), err
}

// JSONEvent returns a named event with v marshaled as its data.
func JSONEvent(name string, v any) (Event, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return Event{}, fmt.Errorf("sse: failed to marshal JSON: %w", err)
	}
	return Event{Name: name, Data: string(data)}, nil
}

// Streamer manages a pool of connected SSE clients and broadcasts events to
// them. A Streamer must not be copied after first use.
type Streamer struct {
	// Snapshot, if set, is called for every new client after it has been
	// subscribed. The returned event is sent before any broadcast one, so
	// clients start from the current state. Events published while Snapshot
	// runs are delivered after it and may be older than the snapshot; give
	// events increasing IDs so that clients can tell.
	Snapshot func(r *http.Request) (Event, error)
	// KeepAlive, if positive, is the interval between comment lines sent to
	// idle clients so that proxies don't drop the connection.
	KeepAlive time.Duration

	mu      sync.RWMutex
	clients map[chan Event]struct{}
}

// NewStreamer creates a new, ready-to-use Streamer.
func NewStreamer() *Streamer {
	return &Streamer{
		clients: make(map[chan Event]struct{}),
	}
}

// ErrStreamingUnsupported is returned when SSE is unsupported for the HTTP
// connection.
var ErrStreamingUnsupported = errors.New("streaming unsupported")

// ServeHTTP implements the [http.Handler] interface.
func (s *Streamer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rc := http.NewResponseController(w)

	// Subscribe before taking the snapshot, so that events published in
	// between are still delivered.
	clientChan := s.subscribe()
	defer s.unsubscribe(clientChan)

	var first *Event
	if s.Snapshot != nil {
		ev, err := s.Snapshot(r)
		if err != nil {
			web.RespondError(w, r, err)
			return
		}
		first = &ev
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	if err := rc.Flush(); err != nil {
		web.RespondError(w, r, fmt.Errorf("%w: %v", ErrStreamingUnsupported, err))
		return
	}

	logger.Debug(r.Context(), "sse client connected", slog.String("remote_addr", r.RemoteAddr))
	defer logger.Debug(r.Context(), "sse client disconnected", slog.String("remote_addr", r.RemoteAddr))

	if first != nil {
		if _, err := first.WriteTo(w); err != nil {
			return
		}
		rc.Flush()
	}

	var keepAlive <-chan time.Time
	if s.KeepAlive > 0 {
		t := time.NewTicker(s.KeepAlive)
		defer t.Stop()
		keepAlive = t.C
	}

	for {
		select {
		case <-r.Context().Done():
			return
		case ev := <-clientChan:
			if _, err := ev.WriteTo(w); err != nil {
				return
			}
			rc.Flush()
		case <-keepAlive:
			if _, err := io.WriteString(w, ": keep-alive\n\n"); err != nil {
				return
			}
			rc.Flush()
		}
	}
}

func (s *Streamer) subscribe() chan Event {
	c := make(chan Event, clientChanBuf)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.clients == nil {
		s.clients = make(map[chan Event]struct{})
	}
	s.clients[c] = struct{}{}
	return c
}

func (s *Streamer) unsubscribe(c chan Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.clients, c)
}

// Publish broadcasts ev to all connected clients. Clients that are too slow
// to keep up miss the event.
func (s *Streamer) Publish(ev Event) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for client := range s.clients {
		select {
		case client <- ev:
		default:
		}
	}
}

// ClientCount returns the number of currently connected clients.
func (s *Streamer) ClientCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}
