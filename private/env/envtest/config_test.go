// Copyright 2019 Anapaya Systems
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

package envtest

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sdrfw/fwnet/private/config"
	"github.com/sdrfw/fwnet/private/env"
)

func TestGeneralSample(t *testing.T) {
	var sample bytes.Buffer
	var cfg env.General
	cfg.Sample(&sample, nil, config.CtxMap{config.ID: "general"})
	InitTestGeneral(&cfg)
	err := config.Decode(sample.Bytes(), &cfg)
	assert.NoError(t, err)
	CheckTestGeneral(t, &cfg, "general")
}

func TestMetricsSample(t *testing.T) {
	var sample bytes.Buffer
	var cfg env.Metrics
	cfg.Sample(&sample, nil, nil)
	InitTestMetrics(&cfg)
	err := config.Decode(sample.Bytes(), &cfg)
	assert.NoError(t, err)
	CheckTestMetrics(t, &cfg)
}

func TestGeneralValidate(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(file, nil, 0o644))

	testCases := map[string]struct {
		cfg       env.General
		assertErr assert.ErrorAssertionFunc
	}{
		"valid": {
			cfg:       env.General{ID: "dev1", ConfigDir: dir},
			assertErr: assert.NoError,
		},
		"no config dir": {
			cfg:       env.General{ID: "dev1"},
			assertErr: assert.NoError,
		},
		"no id": {
			cfg:       env.General{ConfigDir: dir},
			assertErr: assert.Error,
		},
		"missing dir": {
			cfg:       env.General{ID: "dev1", ConfigDir: filepath.Join(dir, "nope")},
			assertErr: assert.Error,
		},
		"dir is a file": {
			cfg:       env.General{ID: "dev1", ConfigDir: file},
			assertErr: assert.Error,
		},
	}
	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			tc.assertErr(t, tc.cfg.Validate())
		})
	}
}

func TestServePrometheusDisabled(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	var cfg env.Metrics
	assert.NoError(t, cfg.ServePrometheus(ctx))
}
