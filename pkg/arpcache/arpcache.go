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

// Package arpcache provides a fixed-size IPv4 to MAC address table.
//
// The table never grows and never refuses an insertion: once all slots are
// in use, new mappings overwrite the existing ones in round-robin order
// starting with slot 0. Replacement is FIFO with respect to slot order; lookups
// do not refresh an entry.
//
// A Cache is owned by a single goroutine and is not safe for concurrent use.
package arpcache

import (
	"net/netip"
)

// DefaultSize is the number of entries of a cache created with New(0).
const DefaultSize = 8

// Entry is one IPv4 to MAC association.
type Entry struct {
	IP  netip.Addr
	MAC [6]byte
}

// Cache is a fixed-capacity ARP table.
type Cache struct {
	entries []Entry
	// count is the number of live entries. Slots [0, count) are in use.
	count int
	// victim is the slot overwritten by the next insertion into a full table.
	victim int
}

// New creates a cache with n slots. n == 0 selects DefaultSize. It panics if
// n is negative.
func New(n int) *Cache {
	if n < 0 {
		panic("arpcache: negative size")
	}
	if n == 0 {
		n = DefaultSize
	}
	return &Cache{entries: make([]Entry, n)}
}

// Init empties the cache and resets the replacement cursor.
func (c *Cache) Init() {
	clear(c.entries)
	c.count = 0
	c.victim = 0
}

// Size returns the capacity of the cache.
func (c *Cache) Size() int {
	return len(c.entries)
}

// Len returns the number of live entries.
func (c *Cache) Len() int {
	return c.count
}

// Lookup returns the MAC address associated with ip, if any.
func (c *Cache) Lookup(ip netip.Addr) ([6]byte, bool) {
	if i := c.find(ip); i >= 0 {
		return c.entries[i].MAC, true
	}
	return [6]byte{}, false
}

// Update associates ip with mac. An existing entry for ip is overwritten in
// place. Otherwise the mapping goes to the next free slot or, if the table is
// full, to the current victim slot. Update returns true if the table changed.
// Addresses that are not IPv4 are ignored.
func (c *Cache) Update(ip netip.Addr, mac [6]byte) bool {
	ip = ip.Unmap()
	if !ip.Is4() {
		return false
	}
	if i := c.find(ip); i >= 0 {
		if c.entries[i].MAC == mac {
			return false
		}
		c.entries[i].MAC = mac
		return true
	}
	if c.count < len(c.entries) {
		c.entries[c.count] = Entry{IP: ip, MAC: mac}
		c.count++
		return true
	}
	c.entries[c.victim] = Entry{IP: ip, MAC: mac}
	c.victim = (c.victim + 1) % len(c.entries)
	return true
}

// Entries returns a copy of the live entries in slot order.
func (c *Cache) Entries() []Entry {
	return append([]Entry(nil), c.entries[:c.count]...)
}

func (c *Cache) find(ip netip.Addr) int {
	ip = ip.Unmap()
	for i := 0; i < c.count; i++ {
		if c.entries[i].IP == ip {
			return i
		}
	}
	return -1
}
