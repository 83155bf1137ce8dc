// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package settings

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"go.astrophena.name/checkbox/request"
)

// Client calls load_settings and change_settings on a remote server.
type Client struct {
	// BaseURL is the server address, like "http://localhost:3000".
	BaseURL string
	// HTTPClient is used to make requests. If nil, request.DefaultClient is
	// used.
	HTTPClient *http.Client
}

// Load returns the settings of the remote server.
func (c *Client) Load(ctx context.Context) (Settings, error) {
	s, err := request.Make[Settings](ctx, request.Params{
		Method:     http.MethodPost,
		URL:        c.url(LoadPath),
		HTTPClient: c.HTTPClient,
	})
	if err != nil {
		return Settings{}, fmt.Errorf("%w: %v", ErrServiceCall, err)
	}
	return s, nil
}

// Change overwrites the setting on the remote server.
func (c *Client) Change(ctx context.Context, onOrOff bool) error {
	_, err := request.Make[request.IgnoreResponse](ctx, request.Params{
		Method:     http.MethodPost,
		URL:        c.url(ChangePath),
		Body:       changeRequest{OnOrOff: onOrOff},
		HTTPClient: c.HTTPClient,
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrServiceCall, err)
	}
	return nil
}

func (c *Client) url(path string) string {
	return strings.TrimSuffix(c.BaseURL, "/") + path
}
