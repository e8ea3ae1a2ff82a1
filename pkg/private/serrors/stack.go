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

package serrors

import (
	"fmt"
	"path"
	"runtime"

	"go.uber.org/zap/zapcore"
)

const maxStackDepth = 32

type stack []uintptr

// callers skips itself, newError and the public constructor.
func callers() *stack {
	var pcs [maxStackDepth]uintptr
	n := runtime.Callers(4, pcs[:])
	var st stack = pcs[0:n]
	return &st
}

// MarshalLogArray renders every frame as "function file:line".
func (s *stack) MarshalLogArray(enc zapcore.ArrayEncoder) error {
	for _, pc := range *s {
		fn := runtime.FuncForPC(pc - 1)
		if fn == nil {
			enc.AppendString("unknown")
			continue
		}
		file, line := fn.FileLine(pc - 1)
		enc.AppendString(fmt.Sprintf("%s %s:%d", path.Base(fn.Name()), file, line))
	}
	return nil
}
