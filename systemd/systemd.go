// © 2025 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

/*
Package systemd provides a simple interface to systemd's features, such as
the sd-notify protocol and socket activation.
*/
package systemd

import (
	"context"
	"net"
	"strings"
)

// State represents the sd-notify state.
// See https://www.freedesktop.org/software/systemd/man/latest/sd_notify.html#Well-known%20assignments for all possible values.
type State string

const (
	// Ready tells the service manager that service startup is finished.
	Ready State = "READY=1"
	// Stopping tells the service manager that the service is stopping.
	Stopping State = "STOPPING=1"

	watchdog State = "WATCHDOG=1"
)

// Status returns a free-form State describing the service.
func Status(status string) State { return State("STATUS=" + status) }

// SocketPrefix marks listen addresses that refer to a socket passed by
// systemd, for example "sd-socket:http".
const SocketPrefix = "sd-socket:"

// Listen returns a listener for addr. If addr starts with [SocketPrefix],
// the named socket passed by systemd is used, otherwise a new TCP listener is
// created.
func Listen(ctx context.Context, addr string) (net.Listener, error) {
	if name, ok := strings.CutPrefix(addr, SocketPrefix); ok {
		return Socket(ctx, name)
	}
	return net.Listen("tcp", addr)
}

// Socket retrieves a named listener from systemd socket activation.
//
// This function is only implemented on Linux. On other platforms, it will
// always return an error.
func Socket(ctx context.Context, name string) (net.Listener, error) {
	return socket(ctx, name)
}
