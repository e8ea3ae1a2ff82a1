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

// fwnetctl is the host-side companion of the fwnet devices. It resolves
// devices, resets their address and decodes frame captures.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sdrfw/fwnet/pkg/log"
	"github.com/sdrfw/fwnet/private/app/command"
	"github.com/sdrfw/fwnet/private/app/flag"
)

func main() {
	cmd := newRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(command.ExitCode(err))
	}
}

func newRootCommand() *cobra.Command {
	var logLevel string
	var env flag.HostEnvironment
	cmd := &cobra.Command{
		Use:           "fwnetctl",
		Short:         "Host-side tool for fwnet devices",
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := log.Setup(log.Config{Console: log.ConsoleConfig{Level: logLevel}}); err != nil {
				return err
			}
			return env.LoadExternalVars()
		},
	}
	cmd.PersistentFlags().StringVar(&logLevel, "log.level", "error",
		"Console logging level (debug|info|error)")
	env.Register(cmd.PersistentFlags())
	cmd.AddCommand(
		newARPing(cmd, &env),
		newRecover(cmd, &env),
		newPcap(cmd),
		command.NewVersion(cmd),
		command.NewCompletion(cmd),
		command.NewGendocs(cmd),
	)
	return cmd
}
