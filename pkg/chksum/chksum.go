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

// Package chksum implements the 16-bit one's-complement Internet checksum
// used by the IPv4 and ICMP headers.
//
// Sum returns the running, folded but not complemented, sum so that a
// checksum can be continued over several disjoint buffers:
//
//	s := chksum.Sum(hdr, 0)
//	s = chksum.Sum(payload, s)
//	binary.BigEndian.PutUint16(hdr[2:], ^uint16(s))
//
// Odd-length buffers are padded with a trailing zero byte. Continuing a sum
// is therefore only exact when every buffer but the last has even length.
package chksum

import (
	"github.com/gopacket/gopacket"
)

// Sum adds the 16-bit big-endian words of b to initial and folds the
// carries back in. The result is in the range [0, 0xffff].
func Sum(b []byte, initial uint32) uint32 {
	return fold(gopacket.ComputeChecksum(b, initial))
}

// Checksum returns the value to store in a header checksum field, i.e. the
// complement of Sum.
func Checksum(b []byte, initial uint32) uint16 {
	return ^uint16(Sum(b, initial))
}

func fold(sum uint32) uint32 {
	for sum > 0xffff {
		sum = (sum & 0xffff) + (sum >> 16)
	}
	return sum
}
