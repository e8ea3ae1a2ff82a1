// Copyright 2018 Anapaya Systems
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

// Package periodic runs tasks at a fixed period on their own goroutine.
package periodic

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/sdrfw/fwnet/pkg/log"
)

// Event labels of the runner metrics.
const (
	EventStop    = "stop"
	EventKill    = "kill"
	EventTrigger = "trigger"
)

// Ticker interface to improve testability of this periodic task code.
type Ticker interface {
	Chan() <-chan time.Time
	Stop()
}

type defaultTicker struct {
	*time.Ticker
}

func (t *defaultTicker) Chan() <-chan time.Time {
	return t.C
}

// NewTicker returns a new Ticker with time.Ticker as implementation.
func NewTicker(d time.Duration) Ticker {
	return &defaultTicker{
		Ticker: time.NewTicker(d),
	}
}

// A Task that has to be periodically executed.
type Task interface {
	// Run executes the task once, it should return within the context's timeout.
	Run(context.Context)
	// Name returns the task name, used in logs and metrics.
	Name() string
}

// Metrics are the optional metrics of a Runner. Nil fields are skipped.
type Metrics struct {
	// Events returns the counter for the given event label.
	Events func(event string) prometheus.Counter
	// Period is set to the period of the task in seconds.
	Period prometheus.Gauge
	// Runtime is set to the duration of the last run in seconds.
	Runtime prometheus.Gauge
	// StartTime is set to the start of the last run as Unix seconds.
	StartTime prometheus.Gauge
}

// NewMetrics creates runner metrics for the task name and registers them
// with reg.
func NewMetrics(reg prometheus.Registerer, name string) *Metrics {
	labels := prometheus.Labels{"task": name}
	events := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "fwnet_periodic_events_total",
		Help:        "Total number of runner events.",
		ConstLabels: labels,
	}, []string{"event_type"})
	period := prometheus.NewGauge(prometheus.GaugeOpts{
		Name:        "fwnet_periodic_period_seconds",
		Help:        "The period of the task.",
		ConstLabels: labels,
	})
	runtime := prometheus.NewGauge(prometheus.GaugeOpts{
		Name:        "fwnet_periodic_runtime_seconds",
		Help:        "Duration of the last run of the task.",
		ConstLabels: labels,
	})
	start := prometheus.NewGauge(prometheus.GaugeOpts{
		Name:        "fwnet_periodic_start_timestamp_seconds",
		Help:        "Start time of the last run of the task.",
		ConstLabels: labels,
	})
	if reg != nil {
		reg.MustRegister(events, period, runtime, start)
	}
	return &Metrics{
		Events: func(event string) prometheus.Counter {
			return events.WithLabelValues(event)
		},
		Period:    period,
		Runtime:   runtime,
		StartTime: start,
	}
}

func (m *Metrics) event(e string) {
	if m != nil && m.Events != nil {
		m.Events(e).Inc()
	}
}

func setGauge(g prometheus.Gauge, v float64) {
	if g != nil {
		g.Set(v)
	}
}

// Runner runs a task periodically.
type Runner struct {
	task         Task
	ticker       Ticker
	timeout      time.Duration
	stop         chan struct{}
	loopFinished chan struct{}
	ctx          context.Context
	cancelF      context.CancelFunc
	trigger      chan struct{}
	metrics      *Metrics
}

// Start creates and starts a new Runner to run the given task periodically.
// The timeout is used for the context timeout of the task. The timeout can
// be larger than the period. That means if a task takes a long time it will
// be immediately retriggered.
func Start(task Task, period, timeout time.Duration) *Runner {
	return StartWithMetrics(task, nil, period, timeout)
}

// StartWithMetrics is like Start but also reports the runner metrics.
func StartWithMetrics(task Task, metrics *Metrics, period, timeout time.Duration) *Runner {
	return StartPeriodicTask(task, NewTicker(period), metrics, period, timeout)
}

// StartPeriodicTask starts a Runner driven by the given ticker.
func StartPeriodicTask(task Task, ticker Ticker, metrics *Metrics,
	period, timeout time.Duration) *Runner {

	ctx, cancelF := context.WithCancel(context.Background())
	logger := log.New("task", task.Name())
	ctx = log.CtxWith(ctx, logger)
	runner := &Runner{
		task:         task,
		ticker:       ticker,
		timeout:      timeout,
		stop:         make(chan struct{}),
		loopFinished: make(chan struct{}),
		ctx:          ctx,
		cancelF:      cancelF,
		trigger:      make(chan struct{}),
		metrics:      metrics,
	}
	if metrics != nil {
		setGauge(metrics.Period, period.Seconds())
	}
	logger.Info("Starting periodic task", "period", period, "timeout", timeout)
	go func() {
		defer log.HandlePanic()
		runner.runLoop()
	}()
	return runner
}

// Stop stops the periodic execution of the Runner.
// If the task is currently running this method will block until it is done.
func (r *Runner) Stop() {
	r.ticker.Stop()
	close(r.stop)
	<-r.loopFinished
	r.metrics.event(EventStop)
}

// Kill is like stop but it also cancels the context of the current running method.
func (r *Runner) Kill() {
	r.ticker.Stop()
	close(r.stop)
	r.cancelF()
	<-r.loopFinished
	r.metrics.event(EventKill)
}

// TriggerRun triggers the periodic task to run now. This does not impact
// the normal periodicity of the task.
//
// The method blocks until either the triggered run was started or the runner
// was stopped, in which case the triggered run will not be executed.
func (r *Runner) TriggerRun() {
	select {
	// Either we were stopped or we can put something in the trigger channel.
	case <-r.stop:
	case r.trigger <- struct{}{}:
		r.metrics.event(EventTrigger)
	}
}

func (r *Runner) runLoop() {
	defer close(r.loopFinished)
	defer r.cancelF()
	r.onTick()
	for {
		select {
		case <-r.stop:
			return
		case <-r.ticker.Chan():
			r.onTick()
		case <-r.trigger:
			r.onTick()
		}
	}
}

func (r *Runner) onTick() {
	select {
	// Make sure that stop case is evaluated first,
	// so that when we kill and both channels are ready we always go into stop first.
	case <-r.stop:
		return
	default:
		start := time.Now()
		ctx, cancelF := context.WithTimeout(r.ctx, r.timeout)
		r.task.Run(ctx)
		cancelF()
		if r.metrics != nil {
			setGauge(r.metrics.StartTime, float64(start.UnixNano())/1e9)
			setGauge(r.metrics.Runtime, time.Since(start).Seconds())
		}
	}
}
