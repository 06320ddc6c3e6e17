package scanner

import (
	"bytes"
	"context"
	"io"
	"log"
	"net"
	"net/netip"
	"testing"
	"time"

	"github.com/bryanCE/portscan/internal/portstrategy"
	"github.com/bryanCE/portscan/internal/socketiter"
)

func rangeStrategy(t *testing.T, start, end uint16) portstrategy.Strategy {
	t.Helper()
	s, err := portstrategy.Pick(&portstrategy.Range{Start: start, End: end}, nil, portstrategy.Serial)
	if err != nil {
		t.Fatalf("portstrategy.Pick: %v", err)
	}
	return s
}

func assertNoDuplicates(t *testing.T, open []socketiter.Target) {
	t.Helper()
	seen := make(map[socketiter.Target]struct{}, len(open))
	for _, target := range open {
		if _, ok := seen[target]; ok {
			t.Fatalf("duplicate open socket returned: %+v", target)
		}
		seen[target] = struct{}{}
	}
}

// S1: loopback IPv4, a 1..1000 range with one excluded port, never panics
// and every result matches the requested host/range/exclude.
func TestScanLoopbackIPv4WithinRange(t *testing.T) {
	s, err := New(Config{
		IPs:          []netip.Addr{netip.MustParseAddr("127.0.0.1")},
		Strategy:     rangeStrategy(t, 1, 1000),
		ExcludePorts: []uint16{9000},
		Timeout:      100 * time.Millisecond,
		Tries:        1,
		BatchSize:    10,
		Quiet:        true,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	open, err := s.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	assertNoDuplicates(t, open)

	for _, target := range open {
		if target.IP.String() != "127.0.0.1" {
			t.Fatalf("unexpected ip in result: %v", target.IP)
		}
		if target.Port < 1 || target.Port > 1000 {
			t.Fatalf("port out of range: %d", target.Port)
		}
		if target.Port == 9000 {
			t.Fatalf("excluded port 9000 appeared in results")
		}
	}
}

// S2: the same shape, but IPv6 loopback - must not panic and must honor
// the same constraints.
func TestScanLoopbackIPv6WithinRange(t *testing.T) {
	s, err := New(Config{
		IPs:          []netip.Addr{netip.MustParseAddr("::1")},
		Strategy:     rangeStrategy(t, 1, 1000),
		ExcludePorts: []uint16{9000},
		Timeout:      100 * time.Millisecond,
		Tries:        1,
		BatchSize:    10,
		Quiet:        true,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	open, err := s.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	assertNoDuplicates(t, open)

	for _, target := range open {
		if target.IP.String() != "::1" {
			t.Fatalf("unexpected ip in result: %v", target.IP)
		}
		if target.Port == 9000 {
			t.Fatalf("excluded port 9000 appeared in results")
		}
	}
}

// S3: 0.0.0.0 - result may be empty or nonempty, but must never contain
// duplicates and must never panic.
func TestScanUnspecifiedAddressNoDuplicates(t *testing.T) {
	s, err := New(Config{
		IPs:          []netip.Addr{netip.MustParseAddr("0.0.0.0")},
		Strategy:     rangeStrategy(t, 1, 1000),
		ExcludePorts: []uint16{9000},
		Timeout:      100 * time.Millisecond,
		Tries:        1,
		BatchSize:    10,
		Quiet:        true,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	open, err := s.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	assertNoDuplicates(t, open)
}

// S4: a real unreachable-but-routable-ish target (here, a closed loopback
// port standing in for an unresponsive host) should complete in roughly
// (range_size/batch)*timeout and never return a fatal error.
func TestScanCompletesWithinExpectedBound(t *testing.T) {
	s, err := New(Config{
		IPs:       []netip.Addr{netip.MustParseAddr("127.0.0.1")},
		Strategy:  rangeStrategy(t, 400, 445),
		Timeout:   100 * time.Millisecond,
		Tries:     1,
		BatchSize: 10,
		Quiet:     true,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	rangeSize := 46
	batch := 10
	bound := time.Duration(rangeSize/batch+1) * 100 * time.Millisecond * 3 // generous slack

	start := time.Now()
	_, err = s.Run(context.Background())
	elapsed := time.Since(start)

	if err != nil {
		t.Fatalf("Run returned a fatal error: %v", err)
	}
	if elapsed > bound {
		t.Fatalf("scan took %v, expected roughly under %v", elapsed, bound)
	}
}

// Completeness: every target in the space is accounted for - a listener on
// one port in the range is always found.
func TestScanFindsTheOneOpenPort(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()
	go func() {
		for {
			c, err := ln.Accept()
			if err != nil {
				return
			}
			c.Close()
		}
	}()
	openPort := uint16(ln.Addr().(*net.TCPAddr).Port)

	s, err := New(Config{
		IPs:       []netip.Addr{netip.MustParseAddr("127.0.0.1")},
		Strategy:  rangeStrategy(t, openPort, openPort),
		Timeout:   200 * time.Millisecond,
		Tries:     1,
		BatchSize: 5,
		Quiet:     true,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	open, err := s.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(open) != 1 || open[0].Port != openPort {
		t.Fatalf("expected exactly the one open port %d, got %+v", openPort, open)
	}
}

// Quiet suppresses the OnOpen callback even when the caller supplies one.
func TestScanQuietSuppressesCallback(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()
	go func() {
		for {
			c, err := ln.Accept()
			if err != nil {
				return
			}
			c.Close()
		}
	}()
	openPort := uint16(ln.Addr().(*net.TCPAddr).Port)

	called := false
	s, err := New(Config{
		IPs:       []netip.Addr{netip.MustParseAddr("127.0.0.1")},
		Strategy:  rangeStrategy(t, openPort, openPort),
		Timeout:   200 * time.Millisecond,
		Tries:     1,
		BatchSize: 5,
		Quiet:     true,
		OnOpen:    func(socketiter.Target) { called = true },
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if _, err := s.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if called {
		t.Fatal("OnOpen was invoked despite Quiet=true")
	}
}

// Excludes subtract from the materialized port list, not merely filter
// results, so an excluded port must never even be dialed, let alone
// returned.
func TestExcludePortsAreSubtractive(t *testing.T) {
	ports := subtractExcluded([]uint16{1, 2, 3, 4, 5}, []uint16{2, 4})
	want := []uint16{1, 3, 5}
	if len(ports) != len(want) {
		t.Fatalf("got %v, want %v", ports, want)
	}
	for i := range want {
		if ports[i] != want[i] {
			t.Fatalf("got %v, want %v", ports, want)
		}
	}
}

func TestNewRejectsEmptyPortSetAfterExclude(t *testing.T) {
	strategy, err := portstrategy.Pick(nil, []uint16{80}, portstrategy.Serial)
	if err != nil {
		t.Fatalf("portstrategy.Pick: %v", err)
	}

	_, err = New(Config{
		IPs:          []netip.Addr{netip.MustParseAddr("127.0.0.1")},
		Strategy:     strategy,
		ExcludePorts: []uint16{80},
	})
	if err == nil {
		t.Fatal("expected an error when excludes remove every port")
	}
}

// A nil Logger must be discarded, not defaulted to log.Default(), so a
// scan run with no --debug logger never writes to the process's real
// stderr by way of the standard logger's default output.
func TestNewWithNilLoggerDiscardsOutput(t *testing.T) {
	s, err := New(Config{
		IPs:       []netip.Addr{netip.MustParseAddr("127.0.0.1")},
		Strategy:  rangeStrategy(t, 1, 1),
		BatchSize: 1,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if s.logger.Writer() != io.Discard {
		t.Fatal("expected a nil Logger to default to an io.Discard logger, not log.Default()")
	}

	if _, err := s.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
}

func TestNewWithDebugLoggerReceivesProgress(t *testing.T) {
	var buf bytes.Buffer
	s, err := New(Config{
		IPs:       []netip.Addr{netip.MustParseAddr("127.0.0.1")},
		Strategy:  rangeStrategy(t, 1, 1),
		BatchSize: 1,
		Logger:    log.New(&buf, "", 0),
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if _, err := s.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if buf.Len() == 0 {
		t.Fatal("expected progress output when a Logger is explicitly supplied")
	}
}

func TestNewCoercesTriesFloor(t *testing.T) {
	s, err := New(Config{
		IPs:       []netip.Addr{netip.MustParseAddr("127.0.0.1")},
		Strategy:  rangeStrategy(t, 1, 1),
		Tries:     0,
		BatchSize: 1,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if s.tries != 1 {
		t.Fatalf("expected tries floor of 1, got %d", s.tries)
	}
}
