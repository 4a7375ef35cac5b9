// Copyright 2025 Esteban Alvarez. All Rights Reserved.
//
// Created: October 2025
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package rlog

import (
	"context"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// metricsSet holds one Server's Prometheus collectors, registered against
// that Server's own registry rather than prometheus.DefaultRegisterer —
// a process embedding more than one Server must not have their counters
// collide or double-register.
type metricsSet struct {
	registry *prometheus.Registry

	linesSent      prometheus.Counter
	queueOverflow  prometheus.Counter
	formatErrors   prometheus.Counter
	spoolErrors    prometheus.Counter
	queueDepth     prometheus.GaugeFunc
	queueWatermark prometheus.GaugeFunc
	spoolDepth     prometheus.GaugeFunc
	heartbeats     prometheus.CounterFunc
	sinkLive       *prometheus.GaugeVec
}

// newMetricsSet builds one Server's collector set. Every *Func gauge reads
// straight from s's live collaborators on each scrape rather than a cached
// copy, the same derive-don't-duplicate approach queueDepth already used.
func newMetricsSet(namespace string, s *Server) *metricsSet {
	m := &metricsSet{
		registry: prometheus.NewRegistry(),
		linesSent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lines_sent_total",
			Help:      "Total log lines successfully delivered to at least one sink.",
		}),
		queueOverflow: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "queue_overflow_total",
			Help:      "Total records dropped because the in-memory queue was full.",
		}),
		formatErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "format_errors_total",
			Help:      "Total records discarded for exceeding the renderable line size.",
		}),
		spoolErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "spool_errors_total",
			Help:      "Total spool push/peek/commit operations that returned an error.",
		}),
		queueDepth: prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "queue_depth",
			Help:      "Current number of records buffered in the in-memory queue.",
		}, func() float64 {
			return float64(s.queue.stats().Count)
		}),
		queueWatermark: prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "queue_watermark",
			Help:      "High-water mark of records buffered in the in-memory queue (max_count_seen).",
		}, func() float64 {
			return float64(s.queue.stats().MaxCountSeen)
		}),
		spoolDepth: prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "spool_depth",
			Help:      "Current number of un-committed lines held in the durable spool.",
		}, func() float64 {
			n, _ := s.spool.Len(context.Background())
			return float64(n)
		}),
		heartbeats: prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "heartbeats_total",
			Help:      "Total synthetic heartbeat records emitted for idle ticks.",
		}, func() float64 {
			return float64(s.heartbeatCount.Load())
		}),
		sinkLive: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sink_live",
			Help:      "Last-known liveness of each installed sink (1 = live, 0 = not live), by install index.",
		}, []string{"sink"}),
	}
	m.registry.MustRegister(
		m.linesSent, m.queueOverflow, m.formatErrors, m.spoolErrors,
		m.queueDepth, m.queueWatermark, m.spoolDepth, m.heartbeats, m.sinkLive,
	)
	return m
}

// Registry exposes the Server's private Prometheus registry so the
// embedding application can mount promhttp.HandlerFor on its own mux.
// It returns nil if the Server was built without Config.Metrics.
func (s *Server) Registry() *prometheus.Registry {
	if s.metrics == nil {
		return nil
	}
	return s.metrics.registry
}

// observeQueueDrop is called by the queue put path (via the Server, not
// the queue itself, since ringQueue has no metrics dependency) whenever
// overflowCount advances.
func (s *Server) observeQueueDrop() {
	if s.metrics != nil {
		s.metrics.queueOverflow.Inc()
	}
}

// observeSinkLiveness records the current per-sink liveness vector
// (snapshotted under the registry's own lock by pollAll's caller) against
// the sink_live gauge, keyed by install index.
func (s *Server) observeSinkLiveness(live []bool) {
	if s.metrics == nil {
		return
	}
	for i, up := range live {
		v := 0.0
		if up {
			v = 1
		}
		s.metrics.sinkLive.WithLabelValues(strconv.Itoa(i)).Set(v)
	}
}
