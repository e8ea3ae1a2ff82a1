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

// Package linkstate reports carrier changes of a host interface.
package linkstate

import (
	"context"
	"net"

	"github.com/vishvananda/netlink"

	"github.com/sdrfw/fwnet/pkg/log"
	"github.com/sdrfw/fwnet/pkg/private/serrors"
)

// Watch calls changed every time the link state of the named interface
// flips. The initial state is reported once before Watch blocks. Watch
// returns when ctx is done.
func Watch(ctx context.Context, name string, changed func(up bool)) error {
	link, err := netlink.LinkByName(name)
	if err != nil {
		return serrors.Wrap("looking up link", err, "name", name)
	}
	updates := make(chan netlink.LinkUpdate)
	done := make(chan struct{})
	defer close(done)
	if err := netlink.LinkSubscribe(updates, done); err != nil {
		return serrors.Wrap("subscribing to link updates", err, "name", name)
	}

	index := link.Attrs().Index
	up := IsUp(link.Attrs())
	changed(up)
	for {
		select {
		case <-ctx.Done():
			return nil
		case u, ok := <-updates:
			if !ok {
				return serrors.New("link update channel closed", "name", name)
			}
			attrs := u.Link.Attrs()
			if attrs.Index != index {
				continue
			}
			if now := IsUp(attrs); now != up {
				up = now
				log.Debug("Link state changed", "name", name, "up", up)
				changed(up)
			}
		}
	}
}

// IsUp returns whether the link is administratively up and has a carrier.
func IsUp(attrs *netlink.LinkAttrs) bool {
	return attrs.Flags&net.FlagUp != 0 && attrs.Flags&net.FlagRunning != 0
}
