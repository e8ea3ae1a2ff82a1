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
	"errors"
	"fmt"
	"io"
	"net"
	"net/netip"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/mdlayher/arp"
	"github.com/spf13/cobra"

	"github.com/sdrfw/fwnet/pkg/log"
	"github.com/sdrfw/fwnet/pkg/private/serrors"
	"github.com/sdrfw/fwnet/private/app/command"
	"github.com/sdrfw/fwnet/private/app/flag"
)

// errUnanswered is returned when no probe was answered.
var errUnanswered = errors.New("no reply received")

type resolver interface {
	SetReadDeadline(t time.Time) error
	Resolve(ip netip.Addr) (net.HardwareAddr, error)
}

func newARPing(pather command.Pather, env *flag.HostEnvironment) *cobra.Command {
	var flags struct {
		count   int
		timeout time.Duration
		noColor bool
	}
	cmd := &cobra.Command{
		Use:   "arping <ip>",
		Short: "Resolve the hardware address of a device",
		Example: fmt.Sprintf("  %[1]s arping --interface eth1 192.168.10.2\n"+
			"  %[1]s arping --interface eth1 --count 5 192.168.10.2", pather.CommandPath()),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ip, err := netip.ParseAddr(args[0])
			if err != nil || !ip.Is4() {
				return serrors.New("invalid IPv4 address", "addr", args[0])
			}
			if err := env.Validate(); err != nil {
				return err
			}
			cmd.SilenceUsage = true
			ifi, err := net.InterfaceByName(env.Interface())
			if err != nil {
				return serrors.Wrap("finding interface", err, "name", env.Interface())
			}
			c, err := arp.Dial(ifi)
			if err != nil {
				return serrors.Wrap("opening ARP client", err, "interface", ifi.Name)
			}
			defer c.Close()
			log.Debug("Sending ARP probes", "interface", ifi.Name, "target", ip)
			color.NoColor = color.NoColor || flags.noColor
			return arping(cmd.OutOrStdout(), c, ip, flags.count, flags.timeout, time.Now)
		},
	}
	cmd.Flags().IntVarP(&flags.count, "count", "c", 3, "Number of probes")
	cmd.Flags().DurationVar(&flags.timeout, "timeout", time.Second, "Timeout per probe")
	cmd.Flags().BoolVar(&flags.noColor, "no-color", false, "Disable colored output")
	return cmd
}

func arping(w io.Writer, c resolver, ip netip.Addr, count int, timeout time.Duration,
	now func() time.Time) error {

	good := color.New(color.FgGreen)
	bad := color.New(color.FgRed)
	answered := 0
	for i := 0; i < count; i++ {
		start := now()
		if err := c.SetReadDeadline(start.Add(timeout)); err != nil {
			return serrors.Wrap("setting deadline", err)
		}
		mac, err := c.Resolve(ip)
		if err != nil {
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() || errors.Is(err, os.ErrDeadlineExceeded) {
				bad.Fprintf(w, "%s: timeout\n", ip)
				continue
			}
			return serrors.Wrap("resolving", err, "addr", ip)
		}
		answered++
		good.Fprintf(w, "%s is at %s", ip, mac)
		fmt.Fprintf(w, " (%s)\n", now().Sub(start).Round(time.Microsecond))
	}
	fmt.Fprintf(w, "%d probes sent, %d answered\n", count, answered)
	if answered == 0 {
		return errUnanswered
	}
	return nil
}
