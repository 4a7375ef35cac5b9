// rlogd-probe is a tiny, dependency-free exerciser for an rlogd-agent
// instance, in the same spirit as tools/http-loadgen: a standalone
// binary that drives a running service from outside rather than a test
// harness that boots one in-process.
//
// Modes:
//   - listen: bind a UDP or TCP socket and print every line it receives,
//     the way a collector the dispatcher is configured to talk to would
//   - send: blast N synthetic syslog lines at a UDP or TCP address,
//     concurrently across -c workers, and print a throughput summary
//
// Usage examples:
//
//	rlogd-probe -mode=listen -net=udp -addr=:514
//	rlogd-probe -mode=send -net=tcp -addr=127.0.0.1:1514 -n=5000 -c=8
package main

import (
	"bufio"
	"flag"
	"fmt"
	"net"
	"os"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

type modeType string

const (
	modeListen modeType = "listen"
	modeSend   modeType = "send"
)

func main() {
	modeS := flag.String("mode", string(modeListen), "Mode: listen|send")
	network := flag.String("net", "udp", "Transport: udp|tcp")
	addr := flag.String("addr", ":514", "Address to listen on (listen mode) or dial (send mode)")
	n := flag.Int("n", 1000, "Total lines to send (send mode only)")
	conc := flag.Int("c", 4, "Number of concurrent workers (send mode only)")
	proc := flag.String("proc", "probe", "Process name stamped in synthetic lines (send mode only)")
	flag.Parse()

	m := modeType(strings.ToLower(*modeS))
	switch m {
	case modeListen:
		if err := runListen(*network, *addr); err != nil {
			fmt.Fprintln(os.Stderr, "rlogd-probe:", err)
			os.Exit(1)
		}
	case modeSend:
		if err := runSend(*network, *addr, *n, *conc, *proc); err != nil {
			fmt.Fprintln(os.Stderr, "rlogd-probe:", err)
			os.Exit(1)
		}
	default:
		fmt.Fprintf(os.Stderr, "unknown -mode=%s (want listen|send)\n", *modeS)
		os.Exit(2)
	}
}

func runListen(network, addr string) error {
	switch network {
	case "udp":
		conn, err := net.ListenPacket("udp", addr)
		if err != nil {
			return fmt.Errorf("listen udp %s: %w", addr, err)
		}
		defer conn.Close()
		fmt.Printf("rlogd-probe: listening udp %s\n", addr)
		buf := make([]byte, 4096)
		for {
			n, raddr, err := conn.ReadFrom(buf)
			if err != nil {
				return err
			}
			fmt.Printf("[%s] %s\n", raddr, buf[:n])
		}
	case "tcp":
		l, err := net.Listen("tcp", addr)
		if err != nil {
			return fmt.Errorf("listen tcp %s: %w", addr, err)
		}
		defer l.Close()
		fmt.Printf("rlogd-probe: listening tcp %s\n", addr)
		for {
			conn, err := l.Accept()
			if err != nil {
				return err
			}
			go printLines(conn)
		}
	default:
		return fmt.Errorf("unknown -net=%s (want udp|tcp)", network)
	}
}

func printLines(conn net.Conn) {
	defer conn.Close()
	scanner := bufio.NewScanner(conn)
	remote := conn.RemoteAddr()
	for scanner.Scan() {
		fmt.Printf("[%s] %s\n", remote, scanner.Text())
	}
}

func runSend(network, addr string, total, conc int, proc string) error {
	if total <= 0 || conc <= 0 {
		return fmt.Errorf("-n and -c must both be > 0")
	}

	start := time.Now()
	var sent int64
	var wg sync.WaitGroup

	per := total / conc
	rem := total - per*conc
	for w := 0; w < conc; w++ {
		count := per
		if w == conc-1 {
			count += rem
		}
		wg.Add(1)
		go func(id, count int) {
			defer wg.Done()
			conn, err := net.Dial(network, addr)
			if err != nil {
				fmt.Fprintf(os.Stderr, "rlogd-probe: worker %d dial error: %v\n", id, err)
				return
			}
			defer conn.Close()
			for i := 0; i < count; i++ {
				line := fmt.Sprintf("<14>%s %s[%d]: synthetic probe line %d\r\n",
					time.Now().Format(time.Stamp), proc, id, i)
				if _, err := conn.Write([]byte(line)); err != nil {
					return
				}
				atomic.AddInt64(&sent, 1)
			}
		}(w, count)
	}
	wg.Wait()

	elapsed := time.Since(start)
	if elapsed <= 0 {
		elapsed = time.Millisecond
	}
	rate := float64(sent) / elapsed.Seconds()
	fmt.Printf("rlogd-probe: net=%s addr=%s sent=%d/%d go=%d duration=%s rate=%.0f lines/s\n",
		network, addr, sent, total, runtime.GOMAXPROCS(0), elapsed.Truncate(time.Millisecond), rate)
	return nil
}
