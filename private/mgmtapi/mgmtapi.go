// Copyright 2026 The fwnet Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//   http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package mgmtapi contains the configuration and the shared response helpers
// of the HTTP management APIs.
package mgmtapi

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/sdrfw/fwnet/private/config"
)

// Problem types.
const (
	// InternalError is returned when the server failed to produce a response.
	InternalError = "internal-error"
	// BadRequest is returned for malformed requests.
	BadRequest = "bad-request"
	// Unavailable is returned when the device did not answer in time.
	Unavailable = "unavailable"
)

const apiSample = `
# The address to expose the management API on (host:port or ip:port or
# :port). If not set, the API is not exposed. (default "")
addr = ""
`

var _ config.Config = (*Config)(nil)

// Config is the configuration of the management API.
type Config struct {
	config.NoDefaulter
	config.NoValidator
	// Addr is the address the API server listens on.
	Addr string `toml:"addr,omitempty"`
}

func (cfg *Config) Sample(dst io.Writer, path config.Path, _ config.CtxMap) {
	config.WriteString(dst, apiSample)
}

func (cfg *Config) ConfigName() string {
	return "api"
}

// Problem is an RFC 7807 problem detail.
type Problem struct {
	Type   *string `json:"type,omitempty"`
	Title  string  `json:"title"`
	Status int     `json:"status"`
	Detail *string `json:"detail,omitempty"`
}

// StringRef returns a pointer to s.
func StringRef(s string) *string {
	return &s
}

// ErrorResponse writes p as the response.
func ErrorResponse(w http.ResponseWriter, p Problem) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(p.Status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	// no point in catching error here, there is nothing we can do about it anymore.
	_ = enc.Encode(p)
}

// JSONResponse writes v indented as the response body.
func JSONResponse(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	if err := enc.Encode(v); err != nil {
		ErrorResponse(w, Problem{
			Detail: StringRef(err.Error()),
			Status: http.StatusInternalServerError,
			Title:  "unable to marshal response",
			Type:   StringRef(InternalError),
		})
	}
}
