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

//go:build linux

// Package tapring provides a ring backed by a Linux TAP interface. The stack
// then behaves like a device attached to the host through that interface.
package tapring

import (
	"github.com/songgao/water"
	"github.com/vishvananda/netlink"

	"github.com/sdrfw/fwnet/pkg/log"
	"github.com/sdrfw/fwnet/pkg/private/serrors"
	"github.com/sdrfw/fwnet/pkg/ring"
)

type device struct {
	ifce *water.Interface
}

// Open creates (or opens) the TAP interface name, sets it up and returns a
// ring on top of it. The receiver is not started.
func Open(name string, cfg ring.DrivenConfig, logger log.Logger) (*ring.Driven, error) {
	ifce, err := water.New(water.Config{
		DeviceType:             water.TAP,
		PlatformSpecificParams: water.PlatformSpecificParams{Name: name},
	})
	if err != nil {
		return nil, serrors.Wrap("creating tap interface", err, "name", name)
	}
	log.SafeDebug(logger, "Created tap interface", "name", ifce.Name())

	link, err := netlink.LinkByName(ifce.Name())
	if err != nil {
		ifce.Close()
		return nil, serrors.Wrap("looking up link", err, "name", ifce.Name())
	}
	if err := netlink.LinkSetUp(link); err != nil {
		ifce.Close()
		return nil, serrors.Wrap("setting link up", err, "name", ifce.Name())
	}
	return ring.NewDriven(device{ifce: ifce}, cfg, logger), nil
}

func (d device) ReadFrame(buf []byte) (int, error) {
	return d.ifce.Read(buf)
}

func (d device) WriteFrame(frame []byte) error {
	_, err := d.ifce.Write(frame)
	return err
}

func (d device) Close() error {
	return d.ifce.Close()
}
