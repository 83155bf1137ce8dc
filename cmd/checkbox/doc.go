// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

/*
Checkbox serves a single on/off setting over HTTP.

The setting starts as "on" every time the server starts and lives only in
memory. It can be changed with the forms at /vanilla-checkbox or with the
remote procedures under /api/:

  - POST /api/load_settings returns {"on_or_off": bool}.
  - POST /api/change_settings accepts a form field or a JSON body named
    on_or_off and returns {}.
  - GET /api/events streams "settings" events after every change.

To listen on a socket passed by systemd, use -addr sd-socket:NAME, where
NAME is the FileDescriptorName= of the socket unit.

# Usage

	$ checkbox [flags]
*/
package main

import (
	_ "embed"

	"go.astrophena.name/checkbox/cli"
)

//go:embed doc.go
var doc []byte

func init() { cli.SetDocComment(doc) }
