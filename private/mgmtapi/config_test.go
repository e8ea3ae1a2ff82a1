// Copyright 2021 Anapaya Systems
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

package mgmtapi_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pelletier/go-toml/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	api "github.com/sdrfw/fwnet/private/mgmtapi"
)

func TestConfigSample(t *testing.T) {
	var sample bytes.Buffer
	var cfg api.Config
	cfg.Sample(&sample, nil, nil)
	cfg.Addr = "garbage"
	err := toml.NewDecoder(bytes.NewReader(sample.Bytes())).DisallowUnknownFields().Decode(&cfg)
	assert.NoError(t, err)
	assert.Empty(t, cfg.Addr)
}

func TestErrorResponse(t *testing.T) {
	rec := httptest.NewRecorder()
	api.ErrorResponse(rec, api.Problem{
		Status: http.StatusBadRequest,
		Title:  "bad port",
		Type:   api.StringRef(api.BadRequest),
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
	var p api.Problem
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	assert.Equal(t, "bad port", p.Title)
	assert.Equal(t, api.BadRequest, *p.Type)
	assert.Nil(t, p.Detail)
}

func TestJSONResponse(t *testing.T) {
	rec := httptest.NewRecorder()
	api.JSONResponse(rec, map[string]int{"a": 1})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"a":1}`, rec.Body.String())

	rec = httptest.NewRecorder()
	api.JSONResponse(rec, make(chan int))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
