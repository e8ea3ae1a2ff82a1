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

package services

import (
	"github.com/sdrfw/fwnet/pkg/log"
	"github.com/sdrfw/fwnet/pkg/netstack"
)

// Echo answers every datagram with a copy of its payload. Unreachable
// notifications are logged and otherwise ignored.
type Echo struct {
	Sender Sender
	Logger log.Logger
}

// HandleUDP implements netstack.Listener.
func (e *Echo) HandleUDP(src, dst netstack.Socket, payload []byte) {
	if payload == nil {
		log.SafeDebug(e.Logger, "Echo peer unreachable", "peer", dst)
		return
	}
	e.Sender.SendUDPPkt(dst.Port, src, payload)
}
