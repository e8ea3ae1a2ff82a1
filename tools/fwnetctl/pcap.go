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
	"bytes"
	"errors"
	"fmt"
	"io"
	"net"
	"net/netip"
	"os"
	"strconv"
	"time"

	"github.com/gopacket/gopacket"
	"github.com/gopacket/gopacket/layers"
	"github.com/gopacket/gopacket/pcapgo"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/sdrfw/fwnet/pkg/netstack"
	"github.com/sdrfw/fwnet/pkg/private/serrors"
	"github.com/sdrfw/fwnet/private/app/command"
)

func newPcap(pather command.Pather) *cobra.Command {
	var flags struct {
		offset int
	}
	cmd := &cobra.Command{
		Use:   "pcap <file>",
		Short: "Summarize a frame capture",
		Long: `Prints one line per frame of a capture written by the device daemon, or any
other Ethernet capture. Platform padding recorded ahead of the Ethernet header
can be skipped with --offset.`,
		Example: fmt.Sprintf("  %[1]s pcap frames.pcap\n"+
			"  %[1]s pcap --offset 2 raw.pcap", pather.CommandPath()),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			return summarize(cmd.OutOrStdout(), f, flags.offset)
		},
	}
	cmd.Flags().IntVar(&flags.offset, "offset", 0, "Bytes to skip ahead of every frame")
	return cmd
}

func summarize(w io.Writer, r io.Reader, offset int) error {
	pr, err := pcapgo.NewReader(r)
	if err != nil {
		return serrors.Wrap("reading capture header", err)
	}
	if pr.LinkType() != layers.LinkTypeEthernet {
		return serrors.New("unsupported link type", "type", pr.LinkType())
	}
	var rows [][]string
	var first time.Time
	for i := 1; ; i++ {
		data, ci, err := pr.ReadPacketData()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return serrors.Wrap("reading frame", err, "index", i)
		}
		if first.IsZero() {
			first = ci.Timestamp
		}
		if len(data) < offset {
			data = nil
		} else {
			data = data[offset:]
		}
		rows = append(rows, append([]string{
			strconv.Itoa(i),
			fmt.Sprintf("%.6f", ci.Timestamp.Sub(first).Seconds()),
			strconv.Itoa(ci.Length),
		}, describe(data)...))
	}
	table := tablewriter.NewWriter(w)
	table.SetAutoWrapText(false)
	table.SetBorder(false)
	table.SetHeaderLine(false)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeader([]string{"NO", "TIME", "LEN", "SOURCE", "DESTINATION", "PROTO", "INFO"})
	table.AppendBulk(rows)
	table.Render()
	return nil
}

// describe returns the source, destination, protocol and info columns of a
// frame.
func describe(data []byte) []string {
	var eth layers.Ethernet
	if err := eth.DecodeFromBytes(data, gopacket.NilDecodeFeedback); err != nil {
		return []string{"", "", "?", "truncated frame"}
	}
	src, dst := eth.SrcMAC.String(), eth.DstMAC.String()
	switch eth.EthernetType {
	case layers.EthernetTypeARP:
		var a layers.ARP
		if err := a.DecodeFromBytes(eth.Payload, gopacket.NilDecodeFeedback); err != nil {
			return []string{src, dst, "ARP", "malformed"}
		}
		spa, _ := netip.AddrFromSlice(a.SourceProtAddress)
		tpa, _ := netip.AddrFromSlice(a.DstProtAddress)
		switch {
		case a.Operation == layers.ARPRequest && spa == tpa:
			return []string{src, dst, "ARP", fmt.Sprintf("gratuitous %s", spa)}
		case a.Operation == layers.ARPRequest:
			return []string{src, dst, "ARP", fmt.Sprintf("who has %s? tell %s", tpa, spa)}
		default:
			return []string{src, dst, "ARP", fmt.Sprintf("%s is at %s", spa,
				net.HardwareAddr(a.SourceHwAddress))}
		}
	case netstack.EthernetTypeRecovery:
		p := eth.Payload
		if len(p) >= 8 && bytes.HasPrefix(p, []byte("addr")) {
			ip, _ := netip.AddrFromSlice(p[4:8])
			return []string{src, dst, "RECOVERY", fmt.Sprintf("set address %s", ip)}
		}
		return []string{src, dst, "RECOVERY", "malformed"}
	case layers.EthernetTypeIPv4:
		return describeIPv4(eth.Payload)
	default:
		return []string{src, dst, fmt.Sprintf("0x%04x", uint16(eth.EthernetType)), ""}
	}
}

func describeIPv4(data []byte) []string {
	var ip layers.IPv4
	if err := ip.DecodeFromBytes(data, gopacket.NilDecodeFeedback); err != nil {
		return []string{"", "", "IPv4", "malformed"}
	}
	src, dst := ip.SrcIP.String(), ip.DstIP.String()
	switch ip.Protocol {
	case layers.IPProtocolUDP:
		var u layers.UDP
		if err := u.DecodeFromBytes(ip.Payload, gopacket.NilDecodeFeedback); err != nil {
			return []string{src, dst, "UDP", "malformed"}
		}
		return []string{
			net.JoinHostPort(src, strconv.Itoa(int(u.SrcPort))),
			net.JoinHostPort(dst, strconv.Itoa(int(u.DstPort))),
			"UDP",
			fmt.Sprintf("len=%d", len(u.Payload)),
		}
	case layers.IPProtocolICMPv4:
		var icmp layers.ICMPv4
		if err := icmp.DecodeFromBytes(ip.Payload, gopacket.NilDecodeFeedback); err != nil {
			return []string{src, dst, "ICMP", "malformed"}
		}
		info := icmp.TypeCode.String()
		if t := icmp.TypeCode.Type(); t == layers.ICMPv4TypeEchoRequest ||
			t == layers.ICMPv4TypeEchoReply {
			info = fmt.Sprintf("%s id=%d seq=%d", info, icmp.Id, icmp.Seq)
		}
		return []string{src, dst, "ICMP", info}
	default:
		return []string{src, dst, ip.Protocol.String(), ""}
	}
}
