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

// Package launcher contains the start-up harness of the fwnet daemons: the
// command line, configuration loading, logging setup and signal handling.
package launcher

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/sdrfw/fwnet/pkg/log"
	"github.com/sdrfw/fwnet/pkg/private/serrors"
	"github.com/sdrfw/fwnet/private/app/command"
	libconfig "github.com/sdrfw/fwnet/private/config"
	"github.com/sdrfw/fwnet/private/env"
)

// Configuration keys used by the launcher.
const (
	cfgConfigFile                = "config"
	cfgLogConsoleLevel           = "log.console.level"
	cfgLogConsoleFormat          = "log.console.format"
	cfgLogConsoleStacktraceLevel = "log.console.stacktrace_level"
	cfgGeneralID                 = "general.id"
)

// Application models a fwnet daemon.
type Application struct {
	// TOMLConfig holds the application specific TOML configuration. The
	// log and general sections are also read by the launcher itself.
	TOMLConfig libconfig.Config

	// ShortName is the short name of the application. If empty, the
	// executable name is used.
	ShortName string

	// Main is the custom logic of the application. If nil, no custom logic
	// is executed (and only the setup/teardown harness runs). If Main
	// returns an error, the Run method will return a non-zero exit code.
	Main func(ctx context.Context) error

	// ErrorWriter specifies where error output should be printed. If nil,
	// os.Stderr is used.
	ErrorWriter io.Writer

	// Registerer receives the launcher metrics. If nil, the default
	// registerer is used.
	Registerer prometheus.Registerer

	config *viper.Viper
}

// Run sets up the common harness, and then passes control to the Main
// function (if one exists). Run exits the process on a fatal error.
func (a *Application) Run() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := a.run(ctx, os.Args); err != nil {
		fmt.Fprintf(a.getErrorWriter(), "fatal error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func (a *Application) run(ctx context.Context, args []string) error {
	executable := filepath.Base(args[0])
	shortName := a.getShortName(executable)

	cmd := newCommandTemplate(executable, shortName, a.TOMLConfig)
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return a.executeCommand(cmd.Context(), shortName)
	}
	cmd.SetArgs(args[1:])

	a.config = viper.New()
	a.config.SetDefault(cfgLogConsoleLevel, log.DefaultConsoleLevel)
	a.config.SetDefault(cfgLogConsoleFormat, "human")
	a.config.SetDefault(cfgLogConsoleStacktraceLevel, log.DefaultStacktraceLevel)
	a.config.SetDefault(cfgGeneralID, executable)
	// The location of the config file is only known after the flags are
	// parsed, so the flag is bound instead of read here.
	if err := a.config.BindPFlag(cfgConfigFile, cmd.Flags().Lookup(cfgConfigFile)); err != nil {
		return err
	}
	return cmd.ExecuteContext(ctx)
}

func (a *Application) executeCommand(ctx context.Context, shortName string) error {
	os.Setenv("TZ", "UTC")

	// The launcher reads its own settings from the same file as the
	// application configuration.
	file := a.config.GetString(cfgConfigFile)
	a.config.SetConfigType("toml")
	a.config.SetConfigFile(file)
	if err := a.config.ReadInConfig(); err != nil {
		return serrors.Wrap("loading generic server config from file", err, "file", file)
	}
	if err := libconfig.LoadFile(file, a.TOMLConfig); err != nil {
		return serrors.Wrap("loading config from file", err, "file", file)
	}
	a.TOMLConfig.InitDefaults()

	reg := a.Registerer
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	logEntriesTotal := promauto.With(reg).NewCounterVec(
		prometheus.CounterOpts{
			Name: "lib_log_emitted_entries_total",
			Help: "Total number of log entries emitted.",
		},
		[]string{"level"},
	)
	opt := log.WithEntriesCounter(log.EntriesCounter{
		Debug: logEntriesTotal.With(prometheus.Labels{"level": "debug"}),
		Info:  logEntriesTotal.With(prometheus.Labels{"level": "info"}),
		Error: logEntriesTotal.With(prometheus.Labels{"level": "error"}),
	})
	if err := log.Setup(a.getLogging(), opt); err != nil {
		return serrors.Wrap("initialize logging", err)
	}
	defer log.Flush()

	id := a.config.GetString(cfgGeneralID)
	if err := env.LogAppStarted(shortName, id); err != nil {
		return err
	}
	defer env.LogAppStopped(shortName, id)
	defer log.HandlePanic()

	exportBuildInfo(reg, id)
	if err := a.TOMLConfig.Validate(); err != nil {
		return serrors.Wrap("validate config", err)
	}
	if a.Main == nil {
		return nil
	}

	done := make(chan struct{})
	defer close(done)
	go func() {
		defer log.HandlePanic()
		select {
		case <-done:
			return
		case <-ctx.Done():
		}
		log.Info("Received shutdown signal, stopping", "grace", env.ShutdownGraceInterval)
		select {
		case <-done:
		case <-time.After(env.ShutdownGraceInterval):
			panic(fmt.Sprintf("Main did not shut down in time (waited %s). "+
				"It's probably stuck. Forcing shutdown.", env.ShutdownGraceInterval))
		}
	}()
	return a.Main(ctx)
}

func (a *Application) getLogging() log.Config {
	return log.Config{
		Console: log.ConsoleConfig{
			Level:           a.config.GetString(cfgLogConsoleLevel),
			Format:          a.config.GetString(cfgLogConsoleFormat),
			StacktraceLevel: a.config.GetString(cfgLogConsoleStacktraceLevel),
		},
	}
}

func (a *Application) getShortName(executable string) string {
	if a.ShortName != "" {
		return a.ShortName
	}
	return executable
}

func (a *Application) getErrorWriter() io.Writer {
	if a.ErrorWriter != nil {
		return a.ErrorWriter
	}
	return os.Stderr
}

func newCommandTemplate(executable, shortName string, cfg libconfig.Sampler) *cobra.Command {
	cmd := &cobra.Command{
		Use:           executable,
		Short:         shortName,
		Example:       fmt.Sprintf("  %s --config %s", executable, "fwnet.toml"),
		SilenceErrors: true,
		SilenceUsage:  true,
		Args:          cobra.NoArgs,
	}
	cmd.AddCommand(
		command.NewSample(cmd, cfg),
		command.NewVersion(cmd),
		command.NewCompletion(cmd),
		command.NewGendocs(cmd),
	)
	cmd.Flags().String(cfgConfigFile, "", "Configuration file (required)")
	cmd.MarkFlagRequired(cfgConfigFile)
	return cmd
}

// exportBuildInfo exports the instance ID and the main module version as a
// constant gauge.
func exportBuildInfo(reg prometheus.Registerer, id string) {
	version := "(unknown)"
	if bi, ok := debug.ReadBuildInfo(); ok && bi.Main.Version != "" {
		version = bi.Main.Version
	}
	promauto.With(reg).NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "fwnet_build_info",
			Help: "The instance ID and version of the running binary.",
		},
		[]string{"id", "version"},
	).WithLabelValues(id, version).Set(1)
}
