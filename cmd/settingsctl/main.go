// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"go.astrophena.name/checkbox/cli"
	"go.astrophena.name/checkbox/logger"
	"go.astrophena.name/checkbox/settings"
)

func main() { cli.Main(new(app)) }

type app struct {
	server string
	httpc  *http.Client // nil means request.DefaultClient
}

func (a *app) Flags(fs *flag.FlagSet) {
	fs.StringVar(&a.server, "server", "http://localhost:3000", "Checkbox server `URL`.")
}

func (a *app) Run(ctx context.Context) error {
	env := cli.GetEnv(ctx)
	c := &settings.Client{BaseURL: a.server, HTTPClient: a.httpc}

	if len(env.Args) == 0 {
		return fmt.Errorf("%w: want a command, get or set", cli.ErrInvalidArgs)
	}

	switch cmd, args := env.Args[0], env.Args[1:]; cmd {
	case "get":
		if len(args) != 0 {
			return fmt.Errorf("%w: get takes no arguments", cli.ErrInvalidArgs)
		}
		s, err := c.Load(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintln(env.Stdout, s.OnOrOff)
		return nil
	case "set":
		if len(args) != 1 {
			return fmt.Errorf("%w: set takes exactly one argument, true or false", cli.ErrInvalidArgs)
		}
		v, err := strconv.ParseBool(args[0])
		if err != nil {
			return fmt.Errorf("%w: %q is not a boolean", cli.ErrInvalidArgs, args[0])
		}
		if err := c.Change(ctx, v); err != nil {
			return err
		}
		logger.Debug(ctx, "setting changed", slog.String("server", a.server), slog.Bool("on_or_off", v))
		return nil
	default:
		return fmt.Errorf("%w: unknown command %q", cli.ErrInvalidArgs, cmd)
	}
}
