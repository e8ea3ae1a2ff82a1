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

package netstack

import (
	"sort"

	"github.com/sdrfw/fwnet/pkg/private/serrors"
)

// Profile captures the differences between the soft-core platforms the stack
// runs on. Each platform only differs in buffer layout and a few constants.
type Profile struct {
	// Name identifies the profile in configuration files.
	Name string
	// RxOffset is the number of pad bytes ahead of the Ethernet header in a
	// received buffer.
	RxOffset int
	// TxOffset is the number of bytes ahead of the Ethernet header in a
	// transmit buffer (control word and pad). They are written as zero.
	TxOffset int
	// MinFrame is the minimum committed length, TxOffset included.
	MinFrame int
	// Align is the granularity of the committed length.
	Align int
	// TTL of outgoing IPv4 packets.
	TTL uint8
	// MaxListeners is the capacity of the UDP listener table.
	MaxListeners int
}

var (
	// ProfileZPU is the layout of the ZPU based devices. Transmit buffers
	// start with a 32-bit slow-path control word and 2 pad bytes.
	ProfileZPU = Profile{
		Name: "zpu", RxOffset: 2, TxOffset: 6, MinFrame: 64, Align: 4,
		TTL: 32, MaxListeners: 10,
	}
	// ProfileMicroBlaze uses the same buffer layout as ProfileZPU with a
	// smaller listener table.
	ProfileMicroBlaze = Profile{
		Name: "microblaze", RxOffset: 2, TxOffset: 6, MinFrame: 60, Align: 4,
		TTL: 32, MaxListeners: 6,
	}
	// ProfileAVR is the layout of the 8-bit clock distribution devices, which
	// have no padding.
	ProfileAVR = Profile{
		Name: "avr", RxOffset: 0, TxOffset: 0, MinFrame: 64, Align: 1,
		TTL: 64, MaxListeners: 10,
	}
	// ProfileHost is used when the stack runs on a host interface.
	ProfileHost = Profile{
		Name: "host", RxOffset: 0, TxOffset: 0, MinFrame: 60, Align: 1,
		TTL: 64, MaxListeners: 10,
	}
)

var profiles = map[string]Profile{
	ProfileZPU.Name:        ProfileZPU,
	ProfileMicroBlaze.Name: ProfileMicroBlaze,
	ProfileAVR.Name:        ProfileAVR,
	ProfileHost.Name:       ProfileHost,
}

// ProfileByName returns the built-in profile with the given name.
func ProfileByName(name string) (Profile, error) {
	p, ok := profiles[name]
	if !ok {
		return Profile{}, serrors.New("unknown platform profile", "name", name,
			"known", ProfileNames())
	}
	return p, nil
}

// ProfileNames returns the names of the built-in profiles, sorted.
func ProfileNames() []string {
	names := make([]string, 0, len(profiles))
	for n := range profiles {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Validate checks that the profile is usable with a buffer of bufSize bytes.
func (p Profile) Validate(bufSize int) error {
	switch {
	case p.RxOffset < 0 || p.TxOffset < 0:
		return serrors.New("negative buffer offset", "rx", p.RxOffset, "tx", p.TxOffset)
	case p.Align < 1:
		return serrors.New("alignment must be positive", "align", p.Align)
	case p.MaxListeners < 1:
		return serrors.New("listener table must not be empty", "max", p.MaxListeners)
	case p.TTL == 0:
		return serrors.New("TTL must not be zero")
	case bufSize < p.MinFrame || bufSize < p.TxOffset+ethHdrLen+ipv4HdrLen+udpHdrLen:
		return serrors.New("buffer too small for profile", "buf_size", bufSize,
			"min_frame", p.MinFrame)
	}
	return nil
}

// frameLen returns the number of bytes to commit for a frame of n bytes,
// TxOffset included, given a transmit buffer of bufSize bytes.
func (p Profile) frameLen(n, bufSize int) int {
	if n < p.MinFrame {
		n = p.MinFrame
	}
	if r := n % p.Align; r != 0 {
		n += p.Align - r
	}
	if limit := bufSize - bufSize%p.Align; n > limit {
		n = limit
	}
	return n
}
