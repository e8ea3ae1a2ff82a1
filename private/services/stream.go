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
	"context"
	"encoding/binary"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/sdrfw/fwnet/pkg/log"
	"github.com/sdrfw/fwnet/pkg/netstack"
)

// Stream sends numbered datagrams to a peer. Any datagram received on the
// stream port (re)starts the stream towards its sender, an empty datagram
// stops it. The stream also stops when the peer reports the port as
// unreachable, which is how a host application that went away is noticed.
//
// The listener and the task run on the polling goroutine, so the state needs
// no locking.
type Stream struct {
	Port uint16
	// Size is the payload size, the first 4 bytes carry the sequence number.
	Size   int
	Exec   Executor
	Logger log.Logger
	// Sent counts the stream datagrams. Optional.
	Sent prometheus.Counter

	peer    netstack.Socket
	running bool
	seq     uint32
	buf     []byte
}

// HandleUDP implements netstack.Listener.
func (s *Stream) HandleUDP(src, dst netstack.Socket, payload []byte) {
	switch {
	case payload == nil:
		// src is our socket, dst the peer that refused the datagram.
		if s.running && dst == s.peer {
			log.SafeInfo(s.Logger, "Stream peer unreachable, stopping", "peer", dst,
				"sent", s.seq)
			s.running = false
		}
	case len(payload) == 0:
		if s.running {
			log.SafeInfo(s.Logger, "Stream stopped by peer", "peer", src, "sent", s.seq)
		}
		s.running = false
	default:
		log.SafeInfo(s.Logger, "Stream started", "peer", src)
		s.peer = src
		s.running = true
		s.seq = 0
	}
}

// Running reports whether a stream is active and towards whom. It must be
// called on the polling goroutine.
func (s *Stream) Running() (netstack.Socket, bool) {
	return s.peer, s.running
}

func (s *Stream) send(st *netstack.Stack) {
	if !s.running {
		return
	}
	if len(s.buf) != s.Size {
		s.buf = make([]byte, s.Size)
	}
	binary.BigEndian.PutUint32(s.buf, s.seq)
	s.seq++
	st.SendUDPPkt(s.Port, s.peer, s.buf)
	if s.Sent != nil {
		s.Sent.Inc()
	}
}

// Task returns the periodic task that emits the stream datagrams.
func (s *Stream) Task() StreamTask {
	return StreamTask{stream: s}
}

// StreamTask sends the next stream datagram on every run.
type StreamTask struct {
	stream *Stream
}

func (t StreamTask) Name() string {
	return "services.stream"
}

func (t StreamTask) Run(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	if err := t.stream.Exec.Do(ctx, t.stream.send); err != nil {
		log.SafeDebug(t.stream.Logger, "Stream tick skipped", "err", err)
	}
}
