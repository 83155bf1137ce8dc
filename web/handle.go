// © 2025 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// HandleJSON returns a handler that decodes a JSON request of type Req, calls
// logic and writes the result as JSON.
//
// GET and HEAD requests are not decoded and pass the zero Req. Decoding
// failures are answered with 400 Bad Request. Errors returned by
// logic are written with [RespondJSONError], so wrapping a [StatusErr]
// controls the status code.
func HandleJSON[Req, Resp any](logic func(r *http.Request, req Req) (Resp, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req Req
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			if err := decodeJSON(r, &req); err != nil {
				RespondJSONError(w, r, err)
				return
			}
		}

		resp, err := logic(r, req)
		if err != nil {
			RespondJSONError(w, r, err)
			return
		}

		RespondJSON(w, resp)
	}
}

func decodeJSON(r *http.Request, v any) error {
	if r.Body == nil || r.Body == http.NoBody {
		return fmt.Errorf("%w: request body is required", ErrBadRequest)
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: request body is required", ErrBadRequest)
		}
		return fmt.Errorf("%w: failed to decode request body: %v", ErrBadRequest, err)
	}
	return nil
}
