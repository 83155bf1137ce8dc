// © 2025 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

//go:build linux

package systemd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"slices"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"go.astrophena.name/checkbox/cli"
	"go.astrophena.name/checkbox/logger"
)

const sdListenFdsStart = 3

func socket(ctx context.Context, name string) (net.Listener, error) {
	env := cli.GetEnv(ctx)

	pid, err := envInt(env, "LISTEN_PID")
	if err != nil {
		return nil, err
	}
	if pid != os.Getpid() {
		return nil, fmt.Errorf("systemd: LISTEN_PID (%d) does not match current PID (%d)", pid, os.Getpid())
	}

	numFds, err := envInt(env, "LISTEN_FDS")
	if err != nil {
		return nil, err
	}
	if numFds < 1 {
		return nil, errors.New("systemd: no file descriptors received")
	}

	namesStr := env.Getenv("LISTEN_FDNAMES")
	if namesStr == "" {
		return nil, errors.New("systemd: LISTEN_FDNAMES not set")
	}
	names := strings.Split(namesStr, ":")
	if len(names) != numFds {
		return nil, fmt.Errorf("systemd: number of file descriptor names (%d) does not match LISTEN_FDS (%d)", len(names), numFds)
	}

	idx := slices.Index(names, name)
	if idx == -1 {
		return nil, fmt.Errorf("systemd: socket name %q not found in LISTEN_FDNAMES", name)
	}

	fd := sdListenFdsStart + idx
	f := os.NewFile(uintptr(fd), name)
	if f == nil {
		return nil, fmt.Errorf("systemd: failed to create file from descriptor %d", fd)
	}

	return net.FileListener(f)
}

func envInt(env *cli.Env, key string) (int, error) {
	s := env.Getenv(key)
	if s == "" {
		return 0, fmt.Errorf("systemd: %s not set, not running under systemd socket activation?", key)
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("systemd: invalid %s: %w", key, err)
	}
	return n, nil
}

// Notify sends a message to systemd using the sd_notify protocol.
// It does nothing when NOTIFY_SOCKET is not set.
// See https://www.freedesktop.org/software/systemd/man/sd_notify.html.
func Notify(ctx context.Context, state State) {
	addr := &net.UnixAddr{
		Net:  "unixgram",
		Name: cli.GetEnv(ctx).Getenv("NOTIFY_SOCKET"),
	}
	if addr.Name == "" {
		return
	}

	conn, err := net.DialUnix(addr.Net, nil, addr)
	if err != nil {
		logger.Error(ctx, "sdnotify failed", slog.String("state", string(state)), slog.Any("err", err))
		return
	}
	defer conn.Close()

	if _, err = conn.Write([]byte(state)); err != nil {
		logger.Error(ctx, "sdnotify failed", slog.String("state", string(state)), slog.Any("err", err))
	}
}

var watchdogStarted atomic.Bool

// Watchdog pings the systemd watchdog from a separate goroutine until ctx is
// canceled. It does nothing when the watchdog is not enabled for the service
// or was already started.
func Watchdog(ctx context.Context) {
	interval := watchdogInterval(ctx)
	if interval <= 0 || !watchdogStarted.CompareAndSwap(false, true) {
		return
	}

	go func() {
		ticker := time.NewTicker(interval / 2)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				Notify(ctx, watchdog)
			case <-ctx.Done():
				watchdogStarted.Store(false)
				return
			}
		}
	}()
}

func watchdogInterval(ctx context.Context) time.Duration {
	usec, err := strconv.Atoi(cli.GetEnv(ctx).Getenv("WATCHDOG_USEC"))
	if err != nil || usec <= 0 {
		return 0
	}
	return time.Duration(usec) * time.Microsecond
}
