// Copyright 2021 Anapaya Systems
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

// Package flag contains the command line flags shared by the host tools.
package flag

import (
	"encoding/json"
	"errors"
	"io/fs"
	"net"
	"os"
	"sync"

	"github.com/spf13/pflag"

	"github.com/sdrfw/fwnet/pkg/private/serrors"
)

const defaultEnvironmentFile = "/etc/fwnet/environment.json"

type stringVal string

func (v *stringVal) Set(val string) error {
	*v = stringVal(val)
	return nil
}

func (v *stringVal) Type() string   { return "string" }
func (v *stringVal) String() string { return string(*v) }

type macVal net.HardwareAddr

func (v *macVal) Set(val string) error {
	mac, err := net.ParseMAC(val)
	if err != nil {
		return err
	}
	if len(mac) != 6 {
		return serrors.New("not an Ethernet address", "mac", val)
	}
	*v = macVal(mac)
	return nil
}

func (v *macVal) Type() string   { return "mac" }
func (v *macVal) String() string { return net.HardwareAddr(*v).String() }

// File is the layout of the host environment file.
type File struct {
	// Interface is the host interface facing the devices.
	Interface string `json:"interface,omitempty"`
	// DeviceMAC is the hardware address of the default device.
	DeviceMAC string `json:"device_mac,omitempty"`
}

// HostEnvironment gives access to the host side settings of the tools: the
// interface that faces the devices and the address of the default device.
type HostEnvironment struct {
	iface     string
	ifaceFlag *pflag.Flag
	ifaceEnv  *string
	device    net.HardwareAddr
	devFlag   *pflag.Flag
	devEnv    net.HardwareAddr
	file      File
	filepath  string

	mtx sync.Mutex
}

// Register registers the command line flags. It is safe to not call this at
// all, in which case only the environment is considered.
func (e *HostEnvironment) Register(flagSet *pflag.FlagSet) {
	e.mtx.Lock()
	defer e.mtx.Unlock()

	e.ifaceFlag = flagSet.VarPF((*stringVal)(&e.iface), "interface", "i",
		"Host interface facing the devices (env FWNET_INTERFACE).")
	e.devFlag = flagSet.VarPF((*macVal)(&e.device), "mac", "",
		"Hardware address of the device (env FWNET_DEVICE_MAC).")
}

// SetFilePath sets the location of the environment file.
func (e *HostEnvironment) SetFilePath(path string) {
	e.mtx.Lock()
	defer e.mtx.Unlock()
	e.filepath = path
}

// LoadExternalVars loads the environment file and the OS environment
// variables. A missing file or variable is not reported.
func (e *HostEnvironment) LoadExternalVars() error {
	e.mtx.Lock()
	defer e.mtx.Unlock()

	if err := e.loadFile(); err != nil {
		return serrors.Wrap("loading environment file", err)
	}
	if err := e.loadEnv(); err != nil {
		return serrors.Wrap("loading environment variables", err)
	}
	return nil
}

func (e *HostEnvironment) loadFile() error {
	if e.filepath == "" {
		e.filepath = defaultEnvironmentFile
	}
	raw, err := os.ReadFile(e.filepath)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return serrors.Wrap("loading file", err)
	}
	if err := json.Unmarshal(raw, &e.file); err != nil {
		return serrors.Wrap("parsing file", err)
	}
	if e.file.DeviceMAC != "" {
		if _, err := net.ParseMAC(e.file.DeviceMAC); err != nil {
			return serrors.Wrap("parsing device_mac", err)
		}
	}
	return nil
}

func (e *HostEnvironment) loadEnv() error {
	if i, ok := os.LookupEnv("FWNET_INTERFACE"); ok {
		e.ifaceEnv = &i
	}
	if m, ok := os.LookupEnv("FWNET_DEVICE_MAC"); ok {
		mac, err := net.ParseMAC(m)
		if err != nil {
			return serrors.Wrap("parsing FWNET_DEVICE_MAC", err)
		}
		e.devEnv = mac
	}
	return nil
}

// Interface returns the host interface. The value is loaded from one of the
// following sources with the precedence as listed:
//  1. Command line flag
//  2. Environment variable
//  3. Environment file
func (e *HostEnvironment) Interface() string {
	e.mtx.Lock()
	defer e.mtx.Unlock()

	if e.ifaceFlag != nil && e.ifaceFlag.Changed {
		return e.iface
	}
	if e.ifaceEnv != nil {
		return *e.ifaceEnv
	}
	return e.file.Interface
}

// Device returns the hardware address of the device, with the same
// precedence as Interface. It returns nil if none is configured.
func (e *HostEnvironment) Device() net.HardwareAddr {
	e.mtx.Lock()
	defer e.mtx.Unlock()

	if e.devFlag != nil && e.devFlag.Changed {
		return e.device
	}
	if e.devEnv != nil {
		return e.devEnv
	}
	if e.file.DeviceMAC != "" {
		mac, _ := net.ParseMAC(e.file.DeviceMAC)
		return mac
	}
	return nil
}

// Validate checks that an interface is configured.
func (e *HostEnvironment) Validate() error {
	if e.Interface() == "" {
		return serrors.New("no interface configured, use --interface or FWNET_INTERFACE")
	}
	return nil
}
