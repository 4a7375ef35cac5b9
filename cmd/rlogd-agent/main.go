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

// Package main provides the entry point for the rlogd embedded log
// dispatcher demo.
//
// It wires a pkg/rlog.Server to whichever transports and durability
// backend the operator names on the command line, starts it in the
// background, and blocks for SIGINT/SIGTERM before draining and
// shutting everything down in order — the same flag-parse,
// component-construct, background-start, signal-wait, ordered-shutdown
// shape cmd/ratelimiter-api uses for the rate limiter demo.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"rlogd/internal/sinks"
	"rlogd/internal/spoolstore"
	"rlogd/pkg/rlog"
)

func main() {
	format := flag.String("format", "rfc3164", "Wire format for rendered lines: rfc3164 or rfc5424")
	hostname := flag.String("hostname", "", "Hostname embedded in every line (defaults to os.Hostname())")
	queueSize := flag.Int("queue_size", rlog.DefaultQueueSize, "In-memory ring queue capacity")
	maxSinks := flag.Int("max_sinks", rlog.DefaultMaxSinks, "Maximum number of sinks that may be installed")
	minSeverity := flag.String("min_severity", "debug", "Drop records less severe than this level (emergency..debug)")
	heartbeat := flag.Duration("heartbeat_interval", 0, "Emit a DEBUG heartbeat record on this interval; 0 disables")
	debug := flag.Bool("debug", false, "Periodically log queue stats")

	stdoutSink := flag.Bool("sink_stdout", true, "Install a stdout sink")
	udpAddr := flag.String("sink_udp_addr", "", "If non-empty, install a UDP sink dialing this host")
	udpPort := flag.Int("sink_udp_port", sinks.UDPDefaultPort, "Port for the UDP sink")
	tcpClientAddr := flag.String("sink_tcp_client_addr", "", "If non-empty, install a reconnecting TCP client sink dialing this host")
	tcpClientPort := flag.Int("sink_tcp_client_port", sinks.TCPClientDefaultPort, "Port for the TCP client sink")
	tcpServerPort := flag.Int("sink_tcp_server_port", 0, "If non-zero, install a TCP server sink fanning out to connected monitors on this port")
	framed := flag.Bool("sink_frame_octet_counted", false, "Wrap stream sinks (TCP client/server) in RFC 6587 octet-counted framing")
	kafkaTopic := flag.String("sink_kafka_topic", "", "If non-empty, install a Kafka sink publishing to this topic (demo producer unless a real client is wired)")

	spoolBackend := flag.String("spool_backend", "none", "Durable spool backend: none, file, or redis")
	spoolFile := flag.String("spool_file", "rlogd.spool", "Backing file for the file spool backend")
	spoolMaxEntries := flag.Int("spool_max_entries", 0, "Cap on spooled entries before drop-oldest; 0 means unbounded")
	spoolRedisAddr := flag.String("spool_redis_addr", "", "Redis address for the redis spool backend (demo in-process client if empty)")
	spoolRedisKey := flag.String("spool_redis_key", "rlog:spool", "Redis list key used as the spool backlog")

	metrics := flag.Bool("metrics", false, "Enable Prometheus instrumentation")
	metricsAddr := flag.String("metrics_addr", "", "If non-empty, expose Prometheus /metrics on this address (e.g. :9090)")
	flag.Parse()

	f, err := parseFormat(*format)
	if err != nil {
		log.Fatalf("rlogd-agent: %v", err)
	}
	sev, err := parseSeverity(*minSeverity)
	if err != nil {
		log.Fatalf("rlogd-agent: %v", err)
	}

	spool, err := spoolstore.BuildSpool(*spoolBackend, spoolstore.Options{
		FilePath:   *spoolFile,
		MaxEntries: *spoolMaxEntries,
		RedisAddr:  *spoolRedisAddr,
		RedisKey:   *spoolRedisKey,
	})
	if err != nil {
		log.Fatalf("rlogd-agent: build spool: %v", err)
	}

	server, err := rlog.NewServer(rlog.Config{
		Format:            f,
		Hostname:          *hostname,
		QueueSize:         *queueSize,
		MaxSinks:          *maxSinks,
		Spool:             spool,
		HeartbeatInterval: *heartbeat,
		MinSeverity:       &sev,
		Debug:             *debug,
		Metrics:           *metrics,
	})
	if err != nil {
		log.Fatalf("rlogd-agent: new server: %v", err)
	}

	ctx := context.Background()
	if err := installSinks(ctx, server, sinkFlags{
		stdout:        *stdoutSink,
		udpAddr:       *udpAddr,
		udpPort:       *udpPort,
		tcpClientAddr: *tcpClientAddr,
		tcpClientPort: *tcpClientPort,
		tcpServerPort: *tcpServerPort,
		framed:        *framed,
		kafkaTopic:    *kafkaTopic,
	}); err != nil {
		log.Fatalf("rlogd-agent: install sinks: %v", err)
	}

	if *metrics && *metricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(server.Registry(), promhttp.HandlerOpts{}))
		go func() {
			fmt.Printf("rlogd-agent: metrics listening on %s\n", *metricsAddr)
			if err := http.ListenAndServe(*metricsAddr, mux); err != nil && err != http.ErrServerClosed {
				log.Printf("rlogd-agent: metrics server error: %v", err)
			}
		}()
	}

	server.Start(ctx)
	fmt.Println("rlogd-agent: dispatcher started, press Ctrl+C to stop")

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	fmt.Println("\nrlogd-agent: shutting down")
	server.Shutdown(ctx)
	fmt.Println("rlogd-agent: stopped")
}

func parseFormat(s string) (rlog.Format, error) {
	switch strings.ToLower(s) {
	case "rfc3164", "":
		return rlog.RFC3164, nil
	case "rfc5424":
		return rlog.RFC5424, nil
	default:
		return 0, fmt.Errorf("unknown format %q (want rfc3164 or rfc5424)", s)
	}
}

func parseSeverity(s string) (rlog.Severity, error) {
	switch strings.ToLower(s) {
	case "emergency":
		return rlog.Emergency, nil
	case "alert":
		return rlog.Alert, nil
	case "critical":
		return rlog.Critical, nil
	case "error":
		return rlog.Error, nil
	case "warning":
		return rlog.Warning, nil
	case "notice":
		return rlog.Notice, nil
	case "info":
		return rlog.Info, nil
	case "debug", "":
		return rlog.Debug, nil
	default:
		return 0, fmt.Errorf("unknown severity %q", s)
	}
}

type sinkFlags struct {
	stdout        bool
	udpAddr       string
	udpPort       int
	tcpClientAddr string
	tcpClientPort int
	tcpServerPort int
	framed        bool
	kafkaTopic    string
}

// installSinks constructs and installs every transport named by flags,
// applying RFC 6587 octet-counted framing to the stream transports when
// requested.
func installSinks(ctx context.Context, server *rlog.Server, flags sinkFlags) error {
	if flags.stdout {
		if err := server.InstallSink(ctx, sinks.NewStdoutSink()); err != nil {
			return fmt.Errorf("stdout: %w", err)
		}
	}
	if flags.udpAddr != "" {
		if err := server.InstallSink(ctx, sinks.NewUDPSink(flags.udpAddr, flags.udpPort)); err != nil {
			return fmt.Errorf("udp: %w", err)
		}
	}
	if flags.tcpClientAddr != "" {
		var sink rlog.Sink = sinks.NewTCPClientSink(flags.tcpClientAddr, flags.tcpClientPort)
		if flags.framed {
			sink = sinks.RFC6587Framer{Sink: sink}
		}
		if err := server.InstallSink(ctx, sink); err != nil {
			return fmt.Errorf("tcp client: %w", err)
		}
	}
	if flags.tcpServerPort != 0 {
		var sink rlog.Sink = sinks.NewTCPServerSink(flags.tcpServerPort)
		if flags.framed {
			sink = sinks.RFC6587Framer{Sink: sink}
		}
		if err := server.InstallSink(ctx, sink); err != nil {
			return fmt.Errorf("tcp server: %w", err)
		}
	}
	if flags.kafkaTopic != "" {
		if err := server.InstallSink(ctx, sinks.NewKafkaSink(nil, flags.kafkaTopic, "rlogd-agent")); err != nil {
			return fmt.Errorf("kafka: %w", err)
		}
	}
	return nil
}
