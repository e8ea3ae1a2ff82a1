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

package log

import (
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap/zapcore"

	"github.com/sdrfw/fwnet/private/config"
)

const consoleSample = `
# Console logging level (debug|info|error) (default info)
level = "info"

# Console logging format (human|json) (default human)
format = "human"

# Level from which on stack traces are logged (debug|info|error|none)
# (default none)
stacktrace_level = "none"

# Omit the caller file and line from the log entries. (default false)
disable_caller = false
`

// Validate checks the level and format names.
func (c *ConsoleConfig) Validate() error {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(c.Level)); err != nil {
		return fmt.Errorf("invalid log.console.level %q: %w", c.Level, err)
	}
	switch strings.ToLower(c.Format) {
	case "human", "json":
	default:
		return fmt.Errorf("unknown log.console.format %q", c.Format)
	}
	return nil
}

func (c *ConsoleConfig) Sample(dst io.Writer, _ config.Path, _ config.CtxMap) {
	config.WriteString(dst, consoleSample)
}

func (c *ConsoleConfig) ConfigName() string {
	return "console"
}

func (c *Config) Validate() error {
	return c.Console.Validate()
}

func (c *Config) Sample(dst io.Writer, path config.Path, ctx config.CtxMap) {
	config.WriteSample(dst, path, ctx, &c.Console)
}

func (c *Config) ConfigName() string {
	return "log"
}
