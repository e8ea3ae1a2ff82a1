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

// Package services contains small UDP services that run on top of the
// device network stack.
package services

import (
	"context"

	"github.com/sdrfw/fwnet/pkg/netstack"
)

// Sender sends UDP datagrams from a local port.
type Sender interface {
	SendUDPPkt(srcPort uint16, dst netstack.Socket, payload []byte)
}

// Executor runs functions on the goroutine that owns the stack.
type Executor interface {
	Do(ctx context.Context, fn func(*netstack.Stack)) error
}
