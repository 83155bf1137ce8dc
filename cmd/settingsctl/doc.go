// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

/*
Settingsctl reads and changes the setting of a running checkbox server.

# Usage

	$ settingsctl [-server URL] get
	$ settingsctl [-server URL] set true|false

The get command prints "true" or "false".
*/
package main

import (
	_ "embed"

	"go.astrophena.name/checkbox/cli"
)

//go:embed doc.go
var doc []byte

func init() { cli.SetDocComment(doc) }
