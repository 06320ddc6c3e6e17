// =============================================================================
// internal/cli/scan_command.go - CLI command definition for the scanner
// =============================================================================
package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/bryanCE/portscan/internal/addr"
	"github.com/bryanCE/portscan/internal/aggregator"
	"github.com/bryanCE/portscan/internal/config"
	"github.com/bryanCE/portscan/internal/output"
	"github.com/bryanCE/portscan/internal/scanner"
	"github.com/bryanCE/portscan/internal/scripts"
)

// NewScanCommand creates the root "portscan" command.
func NewScanCommand() *cobra.Command {
	var (
		nameserverFlag   string
		rangeFlag        string
		portsFlag        string
		scanOrderFlag    string
		batchSizeFlag    int
		timeoutFlag      int
		triesFlag        int
		ulimitFlag       uint64
		excludePortsFlag string
		quietFlag        bool
		accessibleFlag   bool
		greppableFlag    bool
		formatFlag       string
		scriptFlag       string
		debugFlag        bool
	)

	cmd := &cobra.Command{
		Use:   "portscan [targets...]",
		Short: "Fast TCP connect-scan port scanner",
		Long: `Scans one or more hosts for open TCP ports using a bounded-concurrency
connect scan. Targets may be bare IPs, CIDR blocks, hostnames, or "@file"
references to a newline-delimited list of the same.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
			defer cancel()

			reporter := output.NewReporter(os.Stderr, os.Stderr, os.Stdout, quietFlag, accessibleFlag)

			ips, warnings, err := addr.Expand(ctx, addr.Options{Targets: args, Nameserver: nameserverFlag})
			for _, w := range warnings {
				reporter.Warning("%s", w)
			}
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				return err
			}

			lo, hi, err := parseRange(rangeFlag)
			if err != nil {
				return err
			}
			ports, err := parsePorts(portsFlag)
			if err != nil {
				return err
			}
			excludePorts, err := parsePorts(excludePortsFlag)
			if err != nil {
				return err
			}

			var streamer *output.Streamer
			if !quietFlag && !greppableFlag {
				streamer = output.NewStreamer(os.Stdout, accessibleFlag)
			}
			var onOpen scanner.OnOpen
			if streamer != nil {
				onOpen = streamer.OnOpen
			}

			built, err := config.Build(config.Flags{
				PortRangeLo:  lo,
				PortRangeHi:  hi,
				Ports:        ports,
				ScanOrder:    scanOrderFlag,
				BatchSize:    batchSizeFlag,
				TimeoutMS:    timeoutFlag,
				Tries:        triesFlag,
				Ulimit:       ulimitFlag,
				HasUlimit:    cmd.Flags().Changed("ulimit"),
				ExcludePorts: excludePorts,
				Quiet:        quietFlag,
				Accessible:   accessibleFlag,
				Greppable:    greppableFlag,
				Format:       formatFlag,
				Script:       scriptFlag,
				Debug:        debugFlag,
			}, ips, onOpen)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				return err
			}

			s, err := scanner.New(built.Scan)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				return err
			}
			for _, w := range s.Warnings() {
				reporter.Warning("%s", w)
			}
			reporter.Detail("scanning %d address(es) across %d port(s)", len(ips), len(built.Scan.Strategy.Order()))

			open, err := s.Run(ctx)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				return err
			}

			result, groupWarnings := aggregator.Group(open, ips)
			for _, w := range groupWarnings {
				reporter.Warning("%s", w)
			}

			if built.Script != "" {
				runner, err := scripts.New(built.Script)
				if err != nil {
					reporter.Warning("script not run: %v", err)
				} else if _, err := runner.Run(ctx, result.PortsByHost); err != nil {
					reporter.Warning("script exited with an error: %v", err)
				}
			}

			if greppableFlag || built.Format == config.FormatGreppable {
				return output.FormatGreppable(result, reporter.Writer())
			}
			formatter := output.NewFormatter(toOutputFormat(built.Format))
			return formatter.FormatScanResult(result, reporter.Writer())
		},
	}

	cmd.Flags().StringVarP(&nameserverFlag, "nameserver", "n", "", "Nameserver to use for hostname targets (provider name or host[:port])")
	cmd.Flags().StringVar(&rangeFlag, "range", "", "Port range, e.g. 1-1000")
	cmd.Flags().StringVar(&portsFlag, "ports", "", "Comma-separated explicit port list, e.g. 22,80,443")
	cmd.Flags().StringVar(&scanOrderFlag, "scan-order", "serial", "Port scan order: serial or random")
	cmd.Flags().IntVarP(&batchSizeFlag, "batch-size", "b", 0, "Maximum number of in-flight connection attempts (0 = auto)")
	cmd.Flags().IntVarP(&timeoutFlag, "timeout", "t", 0, "Connection timeout in milliseconds (0 = default)")
	cmd.Flags().IntVar(&triesFlag, "tries", 1, "Number of connection attempts per port before giving up")
	cmd.Flags().Uint64Var(&ulimitFlag, "ulimit", 0, "Attempt to raise the file-descriptor soft limit to this value")
	cmd.Flags().StringVar(&excludePortsFlag, "exclude-ports", "", "Comma-separated ports to exclude from the scan")
	cmd.Flags().BoolVarP(&quietFlag, "quiet", "q", false, "Suppress streaming and warning output; print only the final summary")
	cmd.Flags().BoolVar(&accessibleFlag, "accessible", false, "Disable color and emoji in output, for screen readers")
	cmd.Flags().BoolVarP(&greppableFlag, "greppable", "g", false, "Suppress streaming output; emit one machine-parseable line per host")
	cmd.Flags().StringVarP(&formatFlag, "format", "f", "table", "Summary output format: table, json, csv, xml")
	cmd.Flags().StringVar(&scriptFlag, "script", "", "Command template to run once per open port, e.g. \"nmap -p {{.Port}} {{.IP}}\"")
	cmd.Flags().BoolVar(&debugFlag, "debug", false, "Log scheduler progress to stderr")

	return cmd
}

func toOutputFormat(f config.OutputFormat) output.OutputFormat {
	switch f {
	case config.FormatJSON:
		return output.FormatJSON
	case config.FormatCSV:
		return output.FormatCSV
	case config.FormatXML:
		return output.FormatXML
	default:
		return output.FormatTable
	}
}

// parseRange parses a "lo-hi" string into two ints. An empty string yields
// (0, 0), which config.Build treats as "no range requested".
func parseRange(s string) (int, int, error) {
	if s == "" {
		return 0, 0, nil
	}
	parts := strings.SplitN(s, "-", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid --range %q, expected lo-hi", s)
	}
	lo, err1 := strconv.Atoi(strings.TrimSpace(parts[0]))
	hi, err2 := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err1 != nil || err2 != nil {
		return 0, 0, fmt.Errorf("invalid --range %q, expected numeric lo-hi", s)
	}
	return lo, hi, nil
}

// parsePorts parses a comma-separated port list, e.g. "22,80,443".
func parsePorts(s string) ([]uint16, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	var ports []uint16
	for _, tok := range strings.Split(s, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		n, err := strconv.Atoi(tok)
		if err != nil || n < 1 || n > 65535 {
			return nil, fmt.Errorf("invalid port %q", tok)
		}
		ports = append(ports, uint16(n))
	}
	return ports, nil
}
