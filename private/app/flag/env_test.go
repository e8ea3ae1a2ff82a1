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

package flag_test

import (
	"encoding/json"
	"net"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sdrfw/fwnet/private/app/flag"
)

func TestHostEnvironment(t *testing.T) {
	setupFile := func(t *testing.T, env *flag.HostEnvironment) {
		name := filepath.Join(t.TempDir(), "environment.json")
		raw, err := json.Marshal(flag.File{Interface: "file0", DeviceMAC: "02:00:00:00:00:0f"})
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(name, raw, 0o644))
		env.SetFilePath(name)
	}
	noFile := func(_ *testing.T, env *flag.HostEnvironment) {
		env.SetFilePath("/non-existing")
	}
	setupEnv := func(t *testing.T) {
		t.Setenv("FWNET_INTERFACE", "env0")
		t.Setenv("FWNET_DEVICE_MAC", "02:00:00:00:00:0e")
	}
	noEnv := func(t *testing.T) {}
	setupFlags := func(t *testing.T, fs *pflag.FlagSet) {
		require.NoError(t, fs.Parse([]string{"-i", "flag0", "--mac", "02:00:00:00:00:0a"}))
	}
	noFlags := func(t *testing.T, fs *pflag.FlagSet) {
		require.NoError(t, fs.Parse([]string{}))
	}
	testCases := map[string]struct {
		flags  func(t *testing.T, fs *pflag.FlagSet)
		file   func(t *testing.T, env *flag.HostEnvironment)
		env    func(t *testing.T)
		iface  string
		device net.HardwareAddr
	}{
		"nothing set": {
			flags: noFlags,
			file:  noFile,
			env:   noEnv,
		},
		"file only": {
			flags:  noFlags,
			file:   setupFile,
			env:    noEnv,
			iface:  "file0",
			device: net.HardwareAddr{0x02, 0, 0, 0, 0, 0x0f},
		},
		"env overrides file": {
			flags:  noFlags,
			file:   setupFile,
			env:    setupEnv,
			iface:  "env0",
			device: net.HardwareAddr{0x02, 0, 0, 0, 0, 0x0e},
		},
		"flags override everything": {
			flags:  setupFlags,
			file:   setupFile,
			env:    setupEnv,
			iface:  "flag0",
			device: net.HardwareAddr{0x02, 0, 0, 0, 0, 0x0a},
		},
	}
	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			var env flag.HostEnvironment
			fs := pflag.NewFlagSet("testSet", pflag.ContinueOnError)
			env.Register(fs)
			tc.flags(t, fs)
			tc.file(t, &env)
			tc.env(t)
			require.NoError(t, env.LoadExternalVars())
			assert.Equal(t, tc.iface, env.Interface())
			assert.Equal(t, tc.device, env.Device())
			if tc.iface == "" {
				assert.Error(t, env.Validate())
			} else {
				assert.NoError(t, env.Validate())
			}
		})
	}
}

func TestHostEnvironmentInvalid(t *testing.T) {
	t.Run("bad flag", func(t *testing.T) {
		var env flag.HostEnvironment
		fs := pflag.NewFlagSet("testSet", pflag.ContinueOnError)
		env.Register(fs)
		assert.Error(t, fs.Parse([]string{"--mac", "nope"}))
	})
	t.Run("bad env", func(t *testing.T) {
		t.Setenv("FWNET_DEVICE_MAC", "nope")
		var env flag.HostEnvironment
		env.SetFilePath("/non-existing")
		assert.Error(t, env.LoadExternalVars())
	})
	t.Run("bad file", func(t *testing.T) {
		name := filepath.Join(t.TempDir(), "environment.json")
		require.NoError(t, os.WriteFile(name, []byte("{"), 0o644))
		var env flag.HostEnvironment
		env.SetFilePath(name)
		assert.Error(t, env.LoadExternalVars())
	})
}
