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

// Package config contains the configuration of the device daemon.
package config

import (
	"io"
	"net"
	"net/netip"
	"time"

	"github.com/sdrfw/fwnet/pkg/log"
	"github.com/sdrfw/fwnet/pkg/netstack"
	"github.com/sdrfw/fwnet/pkg/private/serrors"
	"github.com/sdrfw/fwnet/pkg/private/util"
	"github.com/sdrfw/fwnet/private/config"
	"github.com/sdrfw/fwnet/private/env"
	api "github.com/sdrfw/fwnet/private/mgmtapi"
)

// Defaults.
const (
	DefaultProfile      = "host"
	DefaultARPCacheSize = 8
	DefaultGARPInterval = time.Minute
	DefaultIdleSleep    = time.Millisecond

	DefaultBackend   = BackendAFPacket
	DefaultSlots     = 8
	DefaultWindowLen = 0x2000

	DefaultStreamPeriod = 10 * time.Millisecond
	DefaultStreamSize   = 1024
)

// Ring backends.
const (
	BackendAFPacket = "afpacket"
	BackendTap      = "tap"
	BackendUIO      = "uio"
	BackendMem      = "mem"
)

var _ config.Config = (*Config)(nil)

// Config is the configuration of the device daemon.
type Config struct {
	General  env.General `toml:"general,omitempty"`
	Logging  log.Config  `toml:"log,omitempty"`
	Metrics  env.Metrics `toml:"metrics,omitempty"`
	API      api.Config  `toml:"api,omitempty"`
	Device   Device      `toml:"device,omitempty"`
	Ring     Ring        `toml:"ring,omitempty"`
	Services Services    `toml:"services,omitempty"`
}

func (cfg *Config) InitDefaults() {
	config.InitAll(
		&cfg.General,
		&cfg.Logging,
		&cfg.Metrics,
		&cfg.API,
		&cfg.Device,
		&cfg.Ring,
		&cfg.Services,
	)
}

func (cfg *Config) Validate() error {
	return config.ValidateAll(
		&cfg.General,
		&cfg.Logging,
		&cfg.Metrics,
		&cfg.API,
		&cfg.Device,
		&cfg.Ring,
		&cfg.Services,
	)
}

func (cfg *Config) Sample(dst io.Writer, path config.Path, ctx config.CtxMap) {
	config.WriteSample(dst, path, ctx,
		&cfg.General,
		&cfg.Logging,
		&cfg.Metrics,
		&cfg.API,
		&cfg.Device,
		&cfg.Ring,
		&cfg.Services,
	)
}

// Device holds the identity and the tuning of the network stack.
type Device struct {
	// MAC is the hardware address of the device.
	MAC string `toml:"mac,omitempty"`
	// IP is the IPv4 address of the device.
	IP string `toml:"ip,omitempty"`
	// Broadcast is the directed broadcast address of the subnet. Optional.
	Broadcast string `toml:"broadcast,omitempty"`
	// Profile names the platform buffer layout.
	Profile string `toml:"profile,omitempty"`
	// BufSize is the size of the ring buffers. Zero selects the size used by
	// the backend.
	BufSize int `toml:"buf_size,omitempty"`
	// ARPCacheSize is the number of ARP cache entries.
	ARPCacheSize int `toml:"arp_cache_size,omitempty"`
	// MaxListeners overrides the listener table size of the profile.
	MaxListeners int `toml:"max_listeners,omitempty"`
	// GARPInterval is the period of the gratuitous ARP announcements. A
	// negative value disables them.
	GARPInterval util.DurWrap `toml:"garp_interval,omitempty"`
	// IdleSleep is the pause of the polling loop when no frame is pending.
	IdleSleep util.DurWrap `toml:"idle_sleep,omitempty"`
}

func (cfg *Device) InitDefaults() {
	if cfg.Profile == "" {
		cfg.Profile = DefaultProfile
	}
	if cfg.ARPCacheSize == 0 {
		cfg.ARPCacheSize = DefaultARPCacheSize
	}
	if cfg.GARPInterval.Duration == 0 {
		cfg.GARPInterval.Duration = DefaultGARPInterval
	}
	if cfg.IdleSleep.Duration == 0 {
		cfg.IdleSleep.Duration = DefaultIdleSleep
	}
}

func (cfg *Device) Validate() error {
	_, err := cfg.StackConfig()
	return err
}

// StackConfig converts the section to a netstack configuration. Metrics and
// logger are left unset.
func (cfg *Device) StackConfig() (netstack.Config, error) {
	mac, err := net.ParseMAC(cfg.MAC)
	if err != nil || len(mac) != 6 {
		return netstack.Config{}, serrors.New("invalid device.mac", "mac", cfg.MAC)
	}
	ip, err := netip.ParseAddr(cfg.IP)
	if err != nil || !ip.Is4() {
		return netstack.Config{}, serrors.New("invalid device.ip", "ip", cfg.IP)
	}
	var bcast netip.Addr
	if cfg.Broadcast != "" {
		if bcast, err = netip.ParseAddr(cfg.Broadcast); err != nil || !bcast.Is4() {
			return netstack.Config{}, serrors.New("invalid device.broadcast",
				"broadcast", cfg.Broadcast)
		}
	}
	profile, err := netstack.ProfileByName(cfg.Profile)
	if err != nil {
		return netstack.Config{}, err
	}
	switch {
	case cfg.ARPCacheSize < 1:
		return netstack.Config{}, serrors.New("device.arp_cache_size must be positive",
			"size", cfg.ARPCacheSize)
	case cfg.MaxListeners < 0:
		return netstack.Config{}, serrors.New("device.max_listeners must not be negative",
			"max", cfg.MaxListeners)
	case cfg.BufSize < 0:
		return netstack.Config{}, serrors.New("device.buf_size must not be negative",
			"size", cfg.BufSize)
	case cfg.IdleSleep.Duration < 0:
		return netstack.Config{}, serrors.New("device.idle_sleep must not be negative",
			"idle_sleep", cfg.IdleSleep)
	}
	return netstack.Config{
		MAC:          mac,
		IP:           ip,
		Broadcast:    bcast,
		Profile:      profile,
		BufSize:      cfg.BufSize,
		ARPCacheSize: cfg.ARPCacheSize,
		MaxListeners: cfg.MaxListeners,
	}, nil
}

func (cfg *Device) Sample(dst io.Writer, path config.Path, ctx config.CtxMap) {
	config.WriteString(dst, deviceSample)
}

func (cfg *Device) ConfigName() string {
	return "device"
}

// Ring selects and configures the packet buffer backend.
type Ring struct {
	// Backend is one of afpacket, tap, uio or mem.
	Backend string `toml:"backend,omitempty"`
	// Interface is the network interface of the afpacket and tap backends.
	Interface string `toml:"interface,omitempty"`
	// Slots is the number of receive buffers of the afpacket, tap and mem
	// backends.
	Slots int `toml:"slots,omitempty"`
	// Pcap is a file that receives a capture of all frames. Optional.
	Pcap string `toml:"pcap,omitempty"`
	// UIODevice is the device node of the packet router registers.
	UIODevice string `toml:"uio_device,omitempty"`
	// WindowLen is the size of the mapped register window.
	WindowLen int `toml:"window_len,omitempty"`
	// InOffset and OutOffset locate the packet buffers in the window.
	InOffset  int `toml:"in_offset,omitempty"`
	OutOffset int `toml:"out_offset,omitempty"`
}

func (cfg *Ring) InitDefaults() {
	if cfg.Backend == "" {
		cfg.Backend = DefaultBackend
	}
	if cfg.Slots == 0 {
		cfg.Slots = DefaultSlots
	}
	if cfg.WindowLen == 0 {
		cfg.WindowLen = DefaultWindowLen
	}
}

func (cfg *Ring) Validate() error {
	switch cfg.Backend {
	case BackendAFPacket, BackendTap:
		if cfg.Interface == "" {
			return serrors.New("ring.interface required", "backend", cfg.Backend)
		}
	case BackendUIO:
		if cfg.UIODevice == "" {
			return serrors.New("ring.uio_device required", "backend", cfg.Backend)
		}
	case BackendMem:
	default:
		return serrors.New("unknown ring.backend", "backend", cfg.Backend)
	}
	if cfg.Slots < 1 {
		return serrors.New("ring.slots must be positive", "slots", cfg.Slots)
	}
	return nil
}

func (cfg *Ring) Sample(dst io.Writer, path config.Path, ctx config.CtxMap) {
	config.WriteString(dst, ringSample)
}

func (cfg *Ring) ConfigName() string {
	return "ring"
}

// Services configures the UDP services of the device.
type Services struct {
	// EchoPort is the port of the echo service. Zero disables it.
	EchoPort uint16 `toml:"echo_port,omitempty"`
	// StreamPort is the port of the stream service. Zero disables it.
	StreamPort uint16 `toml:"stream_port,omitempty"`
	// StreamPeriod is the interval between two stream datagrams.
	StreamPeriod util.DurWrap `toml:"stream_period,omitempty"`
	// StreamSize is the payload size of the stream datagrams.
	StreamSize int `toml:"stream_size,omitempty"`
}

func (cfg *Services) InitDefaults() {
	if cfg.StreamPeriod.Duration == 0 {
		cfg.StreamPeriod.Duration = DefaultStreamPeriod
	}
	if cfg.StreamSize == 0 {
		cfg.StreamSize = DefaultStreamSize
	}
}

func (cfg *Services) Validate() error {
	if cfg.EchoPort != 0 && cfg.EchoPort == cfg.StreamPort {
		return serrors.New("services share a port", "port", cfg.EchoPort)
	}
	if cfg.StreamPeriod.Duration <= 0 {
		return serrors.New("services.stream_period must be positive",
			"period", cfg.StreamPeriod)
	}
	if cfg.StreamSize < 4 || cfg.StreamSize > 1472 {
		return serrors.New("services.stream_size out of range", "size", cfg.StreamSize,
			"min", 4, "max", 1472)
	}
	return nil
}

func (cfg *Services) Sample(dst io.Writer, path config.Path, ctx config.CtxMap) {
	config.WriteString(dst, servicesSample)
}

func (cfg *Services) ConfigName() string {
	return "services"
}
