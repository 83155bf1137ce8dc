// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package main

import (
	"net/http"
	"strings"
	"testing"

	"go.astrophena.name/checkbox/cli"
	"go.astrophena.name/checkbox/cli/clitest"
	"go.astrophena.name/checkbox/settings"
	"go.astrophena.name/checkbox/testutil"
)

func wantSetting(want bool) func(*testing.T, *app) {
	return func(t *testing.T, a *app) {
		c := &settings.Client{BaseURL: a.server, HTTPClient: a.httpc}
		got, err := c.Load(t.Context())
		if err != nil {
			t.Fatal(err)
		}
		testutil.AssertEqual(t, got.OnOrOff, want)
	}
}

func TestSettingsctl(t *testing.T) {
	setup := func(t *testing.T) *app {
		mux := http.NewServeMux()
		new(settings.Service).Register(mux)
		return &app{httpc: testutil.MockHTTPClient(mux)}
	}

	clitest.Run(t, setup, map[string]clitest.Case[*app]{
		"get": {
			Args:         []string{"get"},
			WantInStdout: "true\n",
		},
		"set false": {
			Args:      []string{"set", "false"},
			CheckFunc: wantSetting(false),
		},
		"set true": {
			Args:               []string{"set", "true"},
			WantNothingPrinted: true,
			CheckFunc:          wantSetting(true),
		},
		"set with custom server": {
			Args:      []string{"-server", "http://checkbox.internal:8080/", "set", "0"},
			CheckFunc: wantSetting(false),
		},
		"verbose set": {
			Args:         []string{"-verbose", "set", "false"},
			WantInStderr: "setting changed",
			CheckFunc:    wantSetting(false),
		},
		"no command": {
			Args:    []string{},
			WantErr: cli.ErrInvalidArgs,
		},
		"unknown command": {
			Args:    []string{"toggle"},
			WantErr: cli.ErrInvalidArgs,
		},
		"get with arguments": {
			Args:    []string{"get", "now"},
			WantErr: cli.ErrInvalidArgs,
		},
		"set without value": {
			Args:    []string{"set"},
			WantErr: cli.ErrInvalidArgs,
		},
		"set with garbage": {
			Args:      []string{"set", "maybe"},
			WantErr:   cli.ErrInvalidArgs,
			CheckFunc: wantSetting(true),
		},
	})
}

func TestSettingsctlServerError(t *testing.T) {
	setup := func(t *testing.T) *app {
		return &app{httpc: testutil.MockHTTPClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
		}))}
	}

	cases := map[string]clitest.Case[*app]{}
	for _, args := range [][]string{{"get"}, {"set", "true"}} {
		cases[args[0]] = clitest.Case[*app]{
			Args:    args,
			WantErr: settings.ErrServiceCall,
		}
	}
	clitest.Run(t, setup, cases)

	// The status code makes it into the error text.
	a := setup(t)
	c := &settings.Client{BaseURL: "http://checkbox.test", HTTPClient: a.httpc}
	_, err := c.Load(t.Context())
	if err == nil || !strings.Contains(err.Error(), "got 503: unavailable") {
		t.Fatalf("want the status in the error, got %v", err)
	}
}
