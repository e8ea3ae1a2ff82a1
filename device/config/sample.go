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

package config

const deviceSample = `
# The hardware address of the device. (required)
mac = "02:00:00:00:00:01"

# The IPv4 address of the device. (required)
ip = "192.168.10.2"

# The directed broadcast address of the subnet. (default "")
broadcast = "192.168.10.255"

# The platform buffer layout (avr|host|microblaze|zpu). (default host)
profile = "host"

# The size of the ring buffers in bytes. Zero selects the size of the
# backend. (default 0)
buf_size = 0

# The number of ARP cache entries. (default 8)
arp_cache_size = 8

# The size of the UDP listener table. Zero keeps the size of the profile.
# (default 0)
max_listeners = 0

# The period of the gratuitous ARP announcements. A negative value disables
# them. (default 1m)
garp_interval = "1m"

# The pause of the polling loop when no frame is pending. (default 1ms)
idle_sleep = "1ms"
`

const ringSample = `
# The packet buffer backend (afpacket|tap|uio|mem). (default afpacket)
backend = "afpacket"

# The network interface of the afpacket and tap backends.
interface = "eth1"

# The number of receive buffers. (default 8)
slots = 8

# Write all frames to this pcap file. (default "")
pcap = ""

# The device node of the packet router registers (uio backend).
uio_device = "/dev/uio0"

# The size of the mapped register window. (default 8192)
window_len = 8192

# The offsets of the incoming and outgoing packet buffers in the window.
in_offset = 2048
out_offset = 4096
`

const servicesSample = `
# The port of the UDP echo service. Zero disables it. (default 0)
echo_port = 7

# The port of the UDP stream service. Zero disables it. (default 0)
stream_port = 0

# The interval between two stream datagrams. (default 10ms)
stream_period = "10ms"

# The payload size of the stream datagrams. (default 1024)
stream_size = 1024
`
