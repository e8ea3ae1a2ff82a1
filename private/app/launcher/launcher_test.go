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

package launcher

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/sdrfw/fwnet/pkg/log"
	"github.com/sdrfw/fwnet/private/config"
	"github.com/sdrfw/fwnet/private/env"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type testConfig struct {
	General env.General `toml:"general,omitempty"`
	Logging log.Config  `toml:"log,omitempty"`
	Limit   int         `toml:"limit,omitempty"`
}

func (c *testConfig) InitDefaults() {
	if c.Limit == 0 {
		c.Limit = 3
	}
}

func (c *testConfig) Validate() error {
	if c.Limit < 0 {
		return errors.New("negative limit")
	}
	return c.General.Validate()
}

func (c *testConfig) Sample(dst io.Writer, path config.Path, ctx config.CtxMap) {
	config.WriteSample(dst, path, ctx, &c.General)
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	file := filepath.Join(t.TempDir(), "fwnet.toml")
	require.NoError(t, os.WriteFile(file, []byte(content), 0o644))
	return file
}

func TestRun(t *testing.T) {
	defer log.Discard()
	tests := map[string]struct {
		content   string
		args      []string
		mainErr   error
		assertErr assert.ErrorAssertionFunc
		called    bool
		limit     int
	}{
		"defaults applied": {
			content:   "[general]\nid = \"dev-1\"\n",
			assertErr: assert.NoError,
			called:    true,
			limit:     3,
		},
		"log section read": {
			content: "limit = 5\n[general]\nid = \"dev-1\"\n" +
				"[log.console]\nlevel = \"debug\"\n",
			assertErr: assert.NoError,
			called:    true,
			limit:     5,
		},
		"main error": {
			content:   "[general]\nid = \"dev-1\"\n",
			mainErr:   errors.New("boom"),
			assertErr: assert.Error,
			called:    true,
			limit:     3,
		},
		"invalid config": {
			content:   "limit = -1\n[general]\nid = \"dev-1\"\n",
			assertErr: assert.Error,
		},
		"unknown field": {
			content:   "colour = 1\n",
			assertErr: assert.Error,
		},
		"invalid log level": {
			content:   "[general]\nid = \"dev-1\"\n[log.console]\nlevel = \"loud\"\n",
			assertErr: assert.Error,
		},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			var cfg testConfig
			called := false
			app := &Application{
				TOMLConfig: &cfg,
				ShortName:  "test",
				Registerer: prometheus.NewRegistry(),
				Main: func(ctx context.Context) error {
					called = true
					return tc.mainErr
				},
			}
			file := writeConfig(t, tc.content)
			err := app.run(context.Background(), []string{"fwnetd", "--config", file})
			tc.assertErr(t, err)
			assert.Equal(t, tc.called, called)
			if tc.called {
				assert.Equal(t, tc.limit, cfg.Limit)
			}
		})
	}
}

func TestRunMissingConfigFlag(t *testing.T) {
	app := &Application{TOMLConfig: &testConfig{}, Registerer: prometheus.NewRegistry()}
	err := app.run(context.Background(), []string{"fwnetd"})
	assert.ErrorContains(t, err, "config")
}

func TestRunBuildInfo(t *testing.T) {
	defer log.Discard()
	reg := prometheus.NewRegistry()
	app := &Application{TOMLConfig: &testConfig{}, Registerer: reg}
	file := writeConfig(t, "[general]\nid = \"dev-7\"\n")
	require.NoError(t, app.run(context.Background(), []string{"fwnetd", "--config", file}))

	n, err := testutil.GatherAndCount(reg, "fwnet_build_info")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, "dev-7", app.config.GetString(cfgGeneralID))
}

func TestCommandTemplate(t *testing.T) {
	cmd := newCommandTemplate("fwnetd", "fwnet daemon", &testConfig{})
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"sample", "--id", "dev-9"})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), `id = "dev-9"`)

	var names []string
	for _, c := range cmd.Commands() {
		names = append(names, c.Name())
	}
	assert.Subset(t, names, []string{"sample", "version", "completion", "gendocs"})
}
