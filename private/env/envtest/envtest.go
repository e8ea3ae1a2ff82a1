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

// Package envtest contains helpers to check the samples of the env config
// blocks from the tests of the application configs that embed them.
package envtest

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sdrfw/fwnet/private/env"
)

// InitTestGeneral sets non-default values that the sample must overwrite.
func InitTestGeneral(cfg *env.General) {
	cfg.ConfigDir = "/tmp/overwritten"
}

// CheckTestGeneral checks that cfg holds the sample values.
func CheckTestGeneral(t *testing.T, cfg *env.General, id string) {
	assert.Equal(t, id, cfg.ID)
	assert.Equal(t, "/etc/fwnet", cfg.ConfigDir)
}

// InitTestMetrics sets non-default values that the sample must overwrite.
func InitTestMetrics(cfg *env.Metrics) {
	cfg.Prometheus = "127.0.0.1:9999"
}

// CheckTestMetrics checks that cfg holds the sample values.
func CheckTestMetrics(t *testing.T, cfg *env.Metrics) {
	assert.Empty(t, cfg.Prometheus)
}
