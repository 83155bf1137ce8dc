// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package systemd

import (
	"context"
	"net"
	"testing"

	"go.astrophena.name/checkbox/cli"
	"go.astrophena.name/checkbox/testutil"
)

func TestListenTCP(t *testing.T) {
	l, err := Listen(context.Background(), "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	defer l.Close()
	if _, ok := l.Addr().(*net.TCPAddr); !ok {
		t.Fatalf("want a TCP listener, got %T", l.Addr())
	}
}

func TestListenSocketWithoutSystemd(t *testing.T) {
	ctx := cli.WithEnv(context.Background(), &cli.Env{
		Getenv: func(string) string { return "" },
	})
	if _, err := Listen(ctx, SocketPrefix+"http"); err == nil {
		t.Fatal("Listen on a systemd socket outside of systemd must fail")
	}
}

func TestStatus(t *testing.T) {
	testutil.AssertEqual(t, Status("serving settings"), State("STATUS=serving settings"))
}

func TestNotifyWithoutSocket(t *testing.T) {
	ctx := cli.WithEnv(context.Background(), &cli.Env{
		Getenv: func(string) string { return "" },
	})
	// Must return without dialing anything.
	Notify(ctx, Ready)
	Watchdog(ctx)
}
