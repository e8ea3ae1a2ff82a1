// Copyright 2020 Anapaya Systems
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

// Package command contains cobra commands shared by the fwnet binaries.
package command

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/sdrfw/fwnet/private/config"
	"github.com/sdrfw/fwnet/private/env"
)

// Pather returns the command path of the parent command. It is used to
// render usage examples with the full invocation.
type Pather interface {
	CommandPath() string
}

// NewCompletion creates a command that provides shell completion.
func NewCompletion(pather Pather) *cobra.Command {
	var flags struct {
		shell string
	}
	cmd := &cobra.Command{
		Use:   "completion",
		Short: "Generates shell completion scripts",
		Long: fmt.Sprintf(`Outputs the autocomplete configuration for some shells.

For example, you can add autocompletion for your current bash session using:

    . <( %[1]s completion )

To permanently add bash autocompletion, run:

    %[1]s completion > /etc/bash_completion.d/%[1]s
`, pather.CommandPath()),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			out := cmd.OutOrStdout()
			switch flags.shell {
			case "bash":
				return cmd.Root().GenBashCompletion(out)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			default:
				return fmt.Errorf("unknown shell: %s", flags.shell)
			}
		},
	}
	cmd.Flags().StringVar(&flags.shell, "shell", "bash", "Shell type (bash|zsh|fish)")
	return cmd
}

// NewVersion creates a command that prints the build information.
func NewVersion(pather Pather) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show the version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s\n%s", pather.CommandPath(), env.VersionInfo())
		},
	}
}

// NewSample creates a command that prints a sample of the TOML
// configuration to stdout.
func NewSample(pather Pather, cfg config.Sampler) *cobra.Command {
	var flags struct {
		id string
	}
	cmd := &cobra.Command{
		Use:   "sample",
		Short: "Display sample configuration file",
		Example: fmt.Sprintf("  %[1]s sample > fwnet.toml\n"+
			"  %[1]s sample --id dev-3", pather.CommandPath()),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return WriteSample(cmd.OutOrStdout(), cfg, flags.id)
		},
	}
	cmd.Flags().StringVar(&flags.id, "id", "dev-1", "Instance ID written to the sample")
	return cmd
}

// WriteSample writes the sample of cfg to w. Panics of the sampler are
// turned into errors.
func WriteSample(w io.Writer, cfg config.Sampler, id string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("writing sample: %v", r)
		}
	}()
	cfg.Sample(w, nil, config.CtxMap{config.ID: id})
	return nil
}

// ExitCode is a helper for binaries that use cobra directly.
func ExitCode(err error) int {
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}
	return 0
}
