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

package log_test

import (
	"bytes"
	"testing"

	"github.com/pelletier/go-toml/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sdrfw/fwnet/pkg/log"
)

func TestConfigSample(t *testing.T) {
	var sample bytes.Buffer
	var cfg log.Config
	cfg.Sample(&sample, nil, nil)

	cfg.Console.Level = "error"
	dec := toml.NewDecoder(bytes.NewReader(sample.Bytes())).DisallowUnknownFields()
	require.NoError(t, dec.Decode(&cfg))
	assert.Equal(t, "info", cfg.Console.Level)
	assert.Equal(t, "human", cfg.Console.Format)
	assert.NoError(t, cfg.Validate())
}

func TestConfigValidate(t *testing.T) {
	tests := map[string]struct {
		console   log.ConsoleConfig
		assertErr assert.ErrorAssertionFunc
	}{
		"valid": {
			console:   log.ConsoleConfig{Level: "debug", Format: "json"},
			assertErr: assert.NoError,
		},
		"bad level": {
			console:   log.ConsoleConfig{Level: "chatty", Format: "json"},
			assertErr: assert.Error,
		},
		"bad format": {
			console:   log.ConsoleConfig{Level: "info", Format: "xml"},
			assertErr: assert.Error,
		},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			cfg := log.Config{Console: tc.console}
			tc.assertErr(t, cfg.Validate())
		})
	}
}
