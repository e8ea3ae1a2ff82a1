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
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/sdrfw/fwnet/pkg/log"
	"github.com/sdrfw/fwnet/pkg/log/testlog"
)

func TestSetup(t *testing.T) {
	tests := map[string]struct {
		cfg       log.Config
		assertErr assert.ErrorAssertionFunc
	}{
		"empty, no error": {
			cfg:       log.Config{},
			assertErr: assert.NoError,
		},
		"json, no error": {
			cfg:       log.Config{Console: log.ConsoleConfig{Format: "json", Level: "debug"}},
			assertErr: assert.NoError,
		},
		"invalid console level": {
			cfg:       log.Config{Console: log.ConsoleConfig{Level: "invalid"}},
			assertErr: assert.Error,
		},
		"invalid format": {
			cfg:       log.Config{Console: log.ConsoleConfig{Format: "xml"}},
			assertErr: assert.Error,
		},
		"invalid stacktrace level": {
			cfg:       log.Config{Console: log.ConsoleConfig{StacktraceLevel: "loud"}},
			assertErr: assert.Error,
		},
	}
	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			test.assertErr(t, log.Setup(test.cfg))
		})
	}
	log.Discard()
}

func TestConsoleLevel(t *testing.T) {
	require.NoError(t, log.Setup(log.Config{Console: log.ConsoleConfig{Level: "error"}}))
	defer log.Discard()
	assert.False(t, log.Enabled(log.InfoLevel))
	log.ConsoleLevel.SetLevel(zapcore.DebugLevel)
	assert.True(t, log.Enabled(log.DebugLevel))
}

func TestEntriesCounter(t *testing.T) {
	debug := prometheus.NewCounter(prometheus.CounterOpts{Name: "debug_total"})
	info := prometheus.NewCounter(prometheus.CounterOpts{Name: "info_total"})
	require.NoError(t, log.Setup(
		log.Config{Console: log.ConsoleConfig{Level: "info"}},
		log.WithEntriesCounter(log.EntriesCounter{Debug: debug, Info: info}),
	))
	defer log.Discard()

	log.Info("counted")
	log.Debug("below level")
	log.Error("no counter configured")

	assert.Equal(t, 1.0, testutil.ToFloat64(info))
	assert.Equal(t, 0.0, testutil.ToFloat64(debug))
}

func TestFromCtx(t *testing.T) {
	assert.NotNil(t, log.FromCtx(context.Background()))

	l, logs := testlog.NewObserved(log.DebugLevel)
	ctx := log.CtxWith(context.Background(), l)
	log.FromCtx(ctx).Info("hello", "k", 1)

	ctx, _ = log.WithLabels(ctx, "component", "test")
	log.FromCtx(ctx).Debug("labeled")

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "hello", entries[0].Message)
	assert.Equal(t, int64(1), entries[0].ContextMap()["k"])
	assert.Equal(t, "test", entries[1].ContextMap()["component"])
}

func TestSafeLogging(t *testing.T) {
	assert.NotPanics(t, func() {
		log.SafeDebug(nil, "x")
		log.SafeInfo(nil, "x")
		log.SafeError(nil, "x")
	})
	l, logs := testlog.NewObserved(log.InfoLevel)
	log.SafeDebug(l, "filtered")
	log.SafeError(l, "kept")
	assert.Equal(t, 1, logs.Len())
	assert.True(t, l.Enabled(log.ErrorLevel))
	assert.False(t, l.Enabled(log.DebugLevel))
}
