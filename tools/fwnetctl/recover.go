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
	"fmt"
	"net"
	"net/netip"

	"github.com/mdlayher/ethernet"
	"github.com/mdlayher/packet"
	"github.com/spf13/cobra"

	"github.com/sdrfw/fwnet/pkg/log"
	"github.com/sdrfw/fwnet/pkg/netstack"
	"github.com/sdrfw/fwnet/pkg/private/serrors"
	"github.com/sdrfw/fwnet/private/app/command"
	"github.com/sdrfw/fwnet/private/app/flag"
)

func newRecover(pather command.Pather, env *flag.HostEnvironment) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recover <ip>",
		Short: "Assign an IPv4 address to a device over raw Ethernet",
		Long: `Sends an address recovery frame. Devices that receive it replace their IPv4
address without looking at their configuration, which makes a device with a
forgotten or conflicting address reachable again. Without --mac the frame is
broadcast and every device on the segment takes the address.`,
		Example: fmt.Sprintf("  %[1]s recover --interface eth1 192.168.10.2\n"+
			"  %[1]s recover --interface eth1 --mac 02:00:00:00:00:01 192.168.10.2",
			pather.CommandPath()),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ip, err := netip.ParseAddr(args[0])
			if err != nil || !ip.Is4() {
				return serrors.New("invalid IPv4 address", "addr", args[0])
			}
			if err := env.Validate(); err != nil {
				return err
			}
			dst := env.Device()
			if dst == nil {
				dst = ethernet.Broadcast
			}
			cmd.SilenceUsage = true
			ifi, err := net.InterfaceByName(env.Interface())
			if err != nil {
				return serrors.Wrap("finding interface", err, "name", env.Interface())
			}
			frame, err := recoveryFrame(dst, ifi.HardwareAddr, ip)
			if err != nil {
				return err
			}
			conn, err := packet.Listen(ifi, packet.Raw, int(netstack.EthernetTypeRecovery), nil)
			if err != nil {
				return serrors.Wrap("opening packet socket", err, "interface", ifi.Name)
			}
			defer conn.Close()
			if _, err := conn.WriteTo(frame, &packet.Addr{HardwareAddr: dst}); err != nil {
				return serrors.Wrap("sending recovery frame", err)
			}
			log.Debug("Sent recovery frame", "dst", dst, "addr", ip)
			fmt.Fprintf(cmd.OutOrStdout(), "Assigned %s to %s\n", ip, dst)
			return nil
		},
	}
	return cmd
}

// recoveryFrame builds the Ethernet frame carrying "addr" and the address.
func recoveryFrame(dst, src net.HardwareAddr, ip netip.Addr) ([]byte, error) {
	a := ip.As4()
	f := ethernet.Frame{
		Destination: dst,
		Source:      src,
		EtherType:   ethernet.EtherType(netstack.EthernetTypeRecovery),
		Payload:     append([]byte("addr"), a[:]...),
	}
	b, err := f.MarshalBinary()
	if err != nil {
		return nil, serrors.Wrap("marshaling recovery frame", err)
	}
	return b, nil
}
