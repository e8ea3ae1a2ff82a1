// Copyright 2023 SCION Association
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

// Package processmetrics exports scheduler statistics of the daemon process.
//
// The polling loop spins on the ring and only sleeps when idle. The time its
// threads spend runnable but off-cpu is the share of the budget the host took
// away from it, which is what these metrics surface:
//
//	rate(fwnet_received_frames_total[1m])
//	  / rate(process_running_seconds_total[1m])
//
// gives the frames handled per second of cpu actually granted.

//go:build linux

package processmetrics

import (
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/procfs"

	"github.com/sdrfw/fwnet/pkg/private/serrors"
)

var (
	runningTime = prometheus.NewDesc(
		"process_running_seconds_total",
		"CPU time the process used (running state) since it started (all threads summed).",
		nil, nil,
	)
	runnableTime = prometheus.NewDesc(
		"process_runnable_seconds_total",
		"CPU time the process was denied (runnable state) since it started (all threads summed).",
		nil, nil,
	)
	goCores = prometheus.NewDesc(
		"go_sched_maxprocs_threads",
		"The current runtime.GOMAXPROCS setting.",
		nil, nil,
	)
	threads = prometheus.NewDesc(
		"process_threads_observed",
		"Number of threads summed by the collector at the last scrape.",
		nil, nil,
	)
)

type collector struct {
	fs      procfs.FS
	pid     int
	tasks   *os.File
	procs   procfs.Procs
	nlink   uint64
	running uint64
	waiting uint64
}

// update refreshes the thread list when the task directory changed and sums
// the schedstat counters of all threads.
func (c *collector) update() error {
	var st syscall.Stat_t
	if err := syscall.Fstat(int(c.tasks.Fd()), &st); err != nil {
		return err
	}
	//nolint:unconvert // required on arm64
	if n := uint64(st.Nlink); n != c.nlink || c.procs == nil {
		p, err := c.fs.Proc(c.pid)
		if err != nil {
			return err
		}
		if c.procs, err = c.fs.AllThreads(p.PID); err != nil {
			return err
		}
		c.nlink = n
	}
	var running, waiting uint64
	var err error
	for _, p := range c.procs {
		s, oneErr := p.Schedstat()
		if oneErr != nil {
			// The thread went away.
			err = oneErr
			continue
		}
		running += s.RunningNanoseconds
		waiting += s.WaitingNanoseconds
	}
	c.running, c.waiting = running, waiting
	return err
}

func (c *collector) Describe(ch chan<- *prometheus.Desc) {
	prometheus.DescribeByCollect(c, ch)
}

func (c *collector) Collect(ch chan<- prometheus.Metric) {
	_ = c.update()
	ch <- prometheus.MustNewConstMetric(runningTime, prometheus.CounterValue,
		float64(c.running)/1e9)
	ch <- prometheus.MustNewConstMetric(runnableTime, prometheus.CounterValue,
		float64(c.waiting)/1e9)
	ch <- prometheus.MustNewConstMetric(goCores, prometheus.GaugeValue,
		float64(runtime.GOMAXPROCS(-1)))
	ch <- prometheus.MustNewConstMetric(threads, prometheus.GaugeValue,
		float64(len(c.procs)))
}

// Init registers the collector with reg. Errors can be ignored, the only
// consequence is that the metrics are missing.
func Init(reg prometheus.Registerer) error {
	fs, err := procfs.NewDefaultFS()
	if err != nil {
		return serrors.Wrap("opening procfs", err)
	}
	pid := os.Getpid()
	tasks, err := os.Open(filepath.Join(procfs.DefaultMountPoint, strconv.Itoa(pid), "task"))
	if err != nil {
		return serrors.Wrap("opening task directory", err, "pid", pid)
	}
	c := &collector{fs: fs, pid: pid, tasks: tasks}
	if err := c.update(); err != nil {
		tasks.Close()
		return serrors.Wrap("first update", err)
	}
	if err := reg.Register(c); err != nil {
		tasks.Close()
		return serrors.Wrap("registering collector", err)
	}
	return nil
}
