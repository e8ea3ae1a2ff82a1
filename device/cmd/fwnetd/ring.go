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

package main

import (
	"os"

	"github.com/sdrfw/fwnet/device/config"
	"github.com/sdrfw/fwnet/pkg/log"
	"github.com/sdrfw/fwnet/pkg/netstack"
	"github.com/sdrfw/fwnet/pkg/private/serrors"
	"github.com/sdrfw/fwnet/pkg/ring"
	"github.com/sdrfw/fwnet/pkg/ring/afpacketring"
	"github.com/sdrfw/fwnet/pkg/ring/tapring"
	"github.com/sdrfw/fwnet/pkg/ring/uioring"
	"github.com/sdrfw/fwnet/private/app"
)

const defaultBufSize = 2048

func hasLink(backend string) bool {
	return backend == config.BackendAFPacket || backend == config.BackendTap
}

// openRing opens the configured backend. Everything that has to be released
// on shutdown is registered with cleanup.
func openRing(cfg config.Ring, p netstack.Profile, bufSize int,
	cleanup *app.Cleanup) (ring.Ring, error) {

	logger := log.New("component", "ring", "backend", cfg.Backend)
	driven := ring.DrivenConfig{
		Slots:   cfg.Slots,
		BufSize: bufSize,
		RxPad:   p.RxOffset,
		TxPad:   p.TxOffset,
	}
	var r ring.Ring
	switch cfg.Backend {
	case config.BackendAFPacket, config.BackendTap:
		open := afpacketring.Open
		if cfg.Backend == config.BackendTap {
			open = tapring.Open
		}
		d, err := open(cfg.Interface, driven, logger)
		if err != nil {
			return nil, err
		}
		d.Start()
		cleanup.Add(d.Stop)
		r = d
	case config.BackendUIO:
		w, err := uioring.Open(cfg.UIODevice, uioring.Layout{
			Size:      cfg.WindowLen,
			InOffset:  cfg.InOffset,
			OutOffset: cfg.OutOffset,
			BufSize:   bufSize,
		})
		if err != nil {
			return nil, err
		}
		cleanup.Add(w.Close)
		r = ring.NewRegs(w)
	case config.BackendMem:
		r = ring.NewMem(cfg.Slots, bufSize)
	default:
		return nil, serrors.New("unknown ring backend", "backend", cfg.Backend)
	}
	logger.Info("Opened packet ring", "interface", cfg.Interface, "buf_size", bufSize)

	if cfg.Pcap == "" {
		return r, nil
	}
	f, err := os.Create(cfg.Pcap)
	if err != nil {
		return nil, serrors.Wrap("creating capture file", err, "file", cfg.Pcap)
	}
	cleanup.Add(f.Close)
	c, err := ring.NewCapture(r, f, p.RxOffset, p.TxOffset, logger)
	if err != nil {
		return nil, err
	}
	logger.Info("Capturing frames", "file", cfg.Pcap)
	return c, nil
}
