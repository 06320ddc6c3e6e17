// =============================================================================
// internal/config/config.go - CLI flags -> scanner.Config
// =============================================================================
package config

import (
	"fmt"
	"log"
	"net/netip"
	"time"

	"github.com/bryanCE/portscan/internal/portstrategy"
	"github.com/bryanCE/portscan/internal/scanner"
)

// Scan order vocabulary accepted by the --scan-order flag.
const (
	ScanOrderSerial = "serial"
	ScanOrderRandom = "random"
)

// OutputFormat is the post-scan summary rendering the user asked for.
type OutputFormat string

const (
	FormatTable     OutputFormat = "table"
	FormatJSON      OutputFormat = "json"
	FormatCSV       OutputFormat = "csv"
	FormatXML       OutputFormat = "xml"
	FormatGreppable OutputFormat = "greppable"
)

// Flags is the raw, unvalidated set of values a CLI layer collects from its
// flag parser.
type Flags struct {
	Nameserver   string
	PortRangeLo  int
	PortRangeHi  int
	Ports        []uint16
	ScanOrder    string
	BatchSize    int
	TimeoutMS    int
	Tries        int
	Ulimit       uint64
	HasUlimit    bool
	ExcludePorts []uint16
	Quiet        bool
	Accessible   bool
	Greppable    bool
	Format       string
	Script       string
	Debug        bool
}

// Built bundles a ready-to-run scanner.Config with the presentation options
// the CLI layer still owns.
type Built struct {
	Scan   scanner.Config
	Format OutputFormat
	Script string
	Debug  bool
}

// Build validates f against the already-expanded target IPs and produces a
// scanner.Config. onOpen is wired through unchanged; Build's only job is
// flag validation and strategy/format selection.
func Build(f Flags, ips []netip.Addr, onOpen scanner.OnOpen) (Built, error) {
	if len(ips) == 0 {
		return Built{}, fmt.Errorf("config: no target addresses")
	}

	order := portstrategy.Serial
	switch f.ScanOrder {
	case "", ScanOrderSerial:
		order = portstrategy.Serial
	case ScanOrderRandom:
		order = portstrategy.Random
	default:
		return Built{}, fmt.Errorf("config: unknown --scan-order %q", f.ScanOrder)
	}

	var rng *portstrategy.Range
	if f.PortRangeLo != 0 || f.PortRangeHi != 0 {
		rng = &portstrategy.Range{Start: uint16(f.PortRangeLo), End: uint16(f.PortRangeHi)}
	} else if len(f.Ports) == 0 {
		// Neither --range nor --ports given: scan the full port space,
		// matching the upstream tool's no-argument behavior.
		rng = &portstrategy.Range{Start: 1, End: 65535}
	}

	strategy, err := portstrategy.Pick(rng, f.Ports, order)
	if err != nil {
		return Built{}, fmt.Errorf("config: %w", err)
	}

	if f.BatchSize < 0 || f.BatchSize > 65535 {
		return Built{}, fmt.Errorf("config: --batch-size must be in 0..65535 (0 = default)")
	}
	batch := uint16(f.BatchSize)
	if batch == 0 {
		batch = 4500 // teacher-style sane default, comparable to the upstream tool's.
	}

	timeout := time.Duration(f.TimeoutMS) * time.Millisecond
	if timeout <= 0 {
		timeout = 1500 * time.Millisecond
	}

	format := OutputFormat(f.Format)
	if f.Greppable {
		format = FormatGreppable
	}
	if format == "" {
		format = FormatTable
	}
	switch format {
	case FormatTable, FormatJSON, FormatCSV, FormatXML, FormatGreppable:
	default:
		return Built{}, fmt.Errorf("config: unknown --format %q", f.Format)
	}

	var userUlimit *uint64
	if f.HasUlimit {
		u := f.Ulimit
		userUlimit = &u
	}

	var logger *log.Logger
	if f.Debug {
		logger = log.Default()
	}

	return Built{
		Scan: scanner.Config{
			IPs:          ips,
			Strategy:     strategy,
			ExcludePorts: f.ExcludePorts,
			Timeout:      timeout,
			Tries:        f.Tries,
			BatchSize:    batch,
			UserUlimit:   userUlimit,
			Quiet:        f.Quiet,
			Accessible:   f.Accessible,
			OnOpen:       onOpen,
			Logger:       logger,
		},
		Format: format,
		Script: f.Script,
		Debug:  f.Debug,
	}, nil
}
