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

package main

import (
	"context"
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/sync/errgroup"

	"github.com/sdrfw/fwnet/device/config"
	"github.com/sdrfw/fwnet/device/mgmtapi"
	"github.com/sdrfw/fwnet/pkg/linkstate"
	"github.com/sdrfw/fwnet/pkg/log"
	"github.com/sdrfw/fwnet/pkg/netstack"
	"github.com/sdrfw/fwnet/pkg/private/processmetrics"
	"github.com/sdrfw/fwnet/pkg/private/serrors"
	"github.com/sdrfw/fwnet/private/app"
	"github.com/sdrfw/fwnet/private/app/launcher"
	"github.com/sdrfw/fwnet/private/periodic"
	"github.com/sdrfw/fwnet/private/services"
)

var globalCfg config.Config

func main() {
	application := launcher.Application{
		TOMLConfig: &globalCfg,
		ShortName:  "fwnet device",
		Main:       realMain,
	}
	application.Run()
}

func realMain(ctx context.Context) error {
	stackCfg, err := globalCfg.Device.StackConfig()
	if err != nil {
		return err
	}
	if stackCfg.BufSize == 0 {
		stackCfg.BufSize = defaultBufSize
	}
	if err := processmetrics.Init(prometheus.DefaultRegisterer); err != nil {
		log.Info("Process metrics not available", "err", err)
	}

	var cleanup app.Cleanup
	r, err := openRing(globalCfg.Ring, stackCfg.Profile, stackCfg.BufSize, &cleanup)
	if err != nil {
		// Release what was opened before the failure.
		return errors.Join(err, cleanup.Do())
	}
	stackCfg.Metrics = netstack.NewMetrics(prometheus.DefaultRegisterer)
	stackCfg.Logger = log.New("component", "netstack")
	stack, err := netstack.New(r, stackCfg)
	if err != nil {
		return errors.Join(serrors.Wrap("creating network stack", err), cleanup.Do())
	}
	registerServices(stack, &cleanup)

	g, errCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer log.HandlePanic()
		<-errCtx.Done()
		return cleanup.Do()
	})

	if iv := globalCfg.Device.GARPInterval.Duration; iv > 0 {
		garp := periodic.StartWithMetrics(netstack.GratuitousARPTask{Stack: stack},
			periodic.NewMetrics(prometheus.DefaultRegisterer, "gratuitous_arp"), iv, iv)
		cleanup.Add(func() error { garp.Stop(); return nil })
	}

	if iface := globalCfg.Ring.Interface; hasLink(globalCfg.Ring.Backend) {
		g.Go(func() error {
			defer log.HandlePanic()
			err := linkstate.Watch(errCtx, iface, func(up bool) {
				if up {
					log.Info("Link up, announcing address", "interface", iface)
					stack.TriggerGARP()
				}
			})
			if err != nil {
				// Losing the watcher only costs the link-up announcements.
				log.Error("Watching link state failed", "interface", iface, "err", err)
			}
			return nil
		})
	}

	if globalCfg.API.Addr != "" {
		server := &mgmtapi.Server{
			ID:     globalCfg.General.ID,
			Device: stack,
			Config: &globalCfg,
		}
		log.Info("Exposing API", "addr", globalCfg.API.Addr)
		mgmtServer := &http.Server{
			Addr:    globalCfg.API.Addr,
			Handler: server.Handler(),
		}
		cleanup.Add(mgmtServer.Close)
		g.Go(func() error {
			defer log.HandlePanic()
			err := mgmtServer.ListenAndServe()
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				return serrors.Wrap("serving management API", err)
			}
			return nil
		})
	}
	g.Go(func() error {
		defer log.HandlePanic()
		return globalCfg.Metrics.ServePrometheus(errCtx)
	})
	g.Go(func() error {
		defer log.HandlePanic()
		return stack.Run(errCtx, globalCfg.Device.IdleSleep.Duration)
	})
	return g.Wait()
}

func registerServices(stack *netstack.Stack, cleanup *app.Cleanup) {
	cfg := globalCfg.Services
	if cfg.EchoPort != 0 {
		stack.RegisterUDPListener(cfg.EchoPort, &services.Echo{
			Sender: stack,
			Logger: log.New("service", "echo"),
		})
	}
	if cfg.StreamPort != 0 {
		stream := &services.Stream{
			Port:   cfg.StreamPort,
			Size:   cfg.StreamSize,
			Exec:   stack,
			Logger: log.New("service", "stream"),
			Sent: promauto.NewCounter(prometheus.CounterOpts{
				Name: "fwnet_stream_datagrams_total",
				Help: "Total number of datagrams sent by the stream service.",
			}),
		}
		stack.RegisterUDPListener(cfg.StreamPort, stream)
		p := cfg.StreamPeriod.Duration
		runner := periodic.Start(stream.Task(), p, p)
		cleanup.Add(func() error { runner.Stop(); return nil })
	}
}
