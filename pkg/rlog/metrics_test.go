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
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsSet_QueueDepthTracksLiveQueue(t *testing.T) {
	s, err := NewServer(Config{QueueSize: 4, Metrics: true, MetricsNamespace: "rlog_test"})
	if err != nil {
		t.Fatalf("NewServer() error = %v", err)
	}
	m := s.metrics

	if got := testutil.ToFloat64(m.queueDepth); got != 0 {
		t.Fatalf("queueDepth = %v before any Put, want 0", got)
	}

	s.queue.put(Record{Msg: "a"})
	s.queue.put(Record{Msg: "b"})

	if got := testutil.ToFloat64(m.queueDepth); got != 2 {
		t.Errorf("queueDepth = %v after two puts, want 2", got)
	}
	if got := testutil.ToFloat64(m.queueWatermark); got != 2 {
		t.Errorf("queueWatermark = %v after two puts, want 2", got)
	}

	s.queue.get()
	if got := testutil.ToFloat64(m.queueDepth); got != 1 {
		t.Errorf("queueDepth = %v after one get, want 1", got)
	}
	if got := testutil.ToFloat64(m.queueWatermark); got != 2 {
		t.Errorf("queueWatermark = %v after one get, want unchanged at 2", got)
	}
}

func TestMetricsSet_CountersStartAtZero(t *testing.T) {
	s, err := NewServer(Config{QueueSize: 4, Metrics: true, MetricsNamespace: "rlog_test2"})
	if err != nil {
		t.Fatalf("NewServer() error = %v", err)
	}
	m := s.metrics

	if got := testutil.ToFloat64(m.linesSent); got != 0 {
		t.Errorf("linesSent = %v, want 0", got)
	}
	if got := testutil.ToFloat64(m.queueOverflow); got != 0 {
		t.Errorf("queueOverflow = %v, want 0", got)
	}
	if got := testutil.ToFloat64(m.formatErrors); got != 0 {
		t.Errorf("formatErrors = %v, want 0", got)
	}
	if got := testutil.ToFloat64(m.spoolErrors); got != 0 {
		t.Errorf("spoolErrors = %v, want 0", got)
	}
	if got := testutil.ToFloat64(m.heartbeats); got != 0 {
		t.Errorf("heartbeats = %v, want 0", got)
	}
	if got := testutil.ToFloat64(m.spoolDepth); got != 0 {
		t.Errorf("spoolDepth = %v, want 0", got)
	}
}

func TestMetricsSet_SinkLivenessTracksPoll(t *testing.T) {
	s, err := NewServer(Config{Metrics: true, MetricsNamespace: "rlog_test3"})
	if err != nil {
		t.Fatalf("NewServer() error = %v", err)
	}
	sink := &fakeSink{live: true, sendOK: true}
	if err := s.InstallSink(context.Background(), sink); err != nil {
		t.Fatalf("InstallSink() error = %v", err)
	}

	s.runOnce(context.Background(), false)

	if got := testutil.ToFloat64(s.metrics.sinkLive.WithLabelValues("0")); got != 1 {
		t.Errorf("sink_live{sink=0} = %v after a live poll, want 1", got)
	}

	sink.mu.Lock()
	sink.live = false
	sink.mu.Unlock()
	s.runOnce(context.Background(), false)

	if got := testutil.ToFloat64(s.metrics.sinkLive.WithLabelValues("0")); got != 0 {
		t.Errorf("sink_live{sink=0} = %v after a dead poll, want 0", got)
	}
}

func TestMetricsSet_HeartbeatCountExported(t *testing.T) {
	s, err := NewServer(Config{Metrics: true, MetricsNamespace: "rlog_test4", HeartbeatInterval: pollInterval})
	if err != nil {
		t.Fatalf("NewServer() error = %v", err)
	}
	sink := &fakeSink{live: true, sendOK: true}
	if err := s.InstallSink(context.Background(), sink); err != nil {
		t.Fatalf("InstallSink() error = %v", err)
	}

	s.runOnce(context.Background(), false)

	if got := testutil.ToFloat64(s.metrics.heartbeats); got != 1 {
		t.Errorf("heartbeats = %v after one idle tick, want 1", got)
	}
}

func TestServer_RegistryNilWithoutMetrics(t *testing.T) {
	s, err := NewServer(Config{})
	if err != nil {
		t.Fatalf("NewServer() error = %v", err)
	}
	if s.Registry() != nil {
		t.Errorf("Registry() = non-nil, want nil when Config.Metrics is false")
	}
}

func TestServer_RegistryNonNilWithMetrics(t *testing.T) {
	s, err := NewServer(Config{Metrics: true})
	if err != nil {
		t.Fatalf("NewServer() error = %v", err)
	}
	if s.Registry() == nil {
		t.Errorf("Registry() = nil, want non-nil when Config.Metrics is true")
	}
}
