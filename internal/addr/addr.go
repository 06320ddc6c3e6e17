// =============================================================================
// internal/addr/addr.go - Expand CLI target specs into concrete IPs
// =============================================================================
package addr

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"net/netip"
	"os"
	"strings"

	dnsinternal "github.com/bryanCE/portscan/internal/dns"
	"github.com/bryanCE/portscan/pkg/nameservers"
)

// Options controls how Expand turns the user's raw target strings into a
// flat, ordered, deduplicated list of addresses.
type Options struct {
	// Targets are the raw command-line tokens: bare IPs, CIDRs, hostnames,
	// or an "@path" pointing at a newline-delimited file of the same.
	Targets []string
	// Nameserver, if non-empty, is either a provider shorthand known to
	// pkg/nameservers (e.g. "cloudflare") or a literal "host[:port]" to
	// query directly via miekg/dns instead of the system resolver.
	Nameserver string
}

// Expand resolves opts.Targets into a deduplicated, order-preserving list
// of addresses. An empty result is reported as AddressResolutionEmpty.
func Expand(ctx context.Context, opts Options) ([]netip.Addr, []string, error) {
	var warnings []string
	seen := make(map[netip.Addr]struct{})
	var out []netip.Addr

	add := func(a netip.Addr) {
		a = a.Unmap()
		if _, ok := seen[a]; ok {
			return
		}
		seen[a] = struct{}{}
		out = append(out, a)
	}

	tokens, fileWarnings, err := flattenFileRefs(opts.Targets)
	warnings = append(warnings, fileWarnings...)
	if err != nil {
		return nil, warnings, err
	}

	for _, token := range tokens {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}

		switch {
		case strings.Contains(token, "/"):
			ips, err := expandCIDR(token)
			if err != nil {
				warnings = append(warnings, fmt.Sprintf("skipping %q: %v", token, err))
				continue
			}
			for _, ip := range ips {
				add(ip)
			}

		case isLiteralIP(token):
			add(netip.MustParseAddr(token))

		default:
			ips, err := resolveHostname(ctx, token, opts.Nameserver)
			if err != nil {
				warnings = append(warnings, fmt.Sprintf("skipping %q: %v", token, err))
				continue
			}
			for _, ip := range ips {
				add(ip)
			}
		}
	}

	if len(out) == 0 {
		return nil, warnings, &AddressResolutionEmpty{Targets: opts.Targets}
	}
	return out, warnings, nil
}

// AddressResolutionEmpty signals that every target token failed to resolve
// to a single usable address.
type AddressResolutionEmpty struct {
	Targets []string
}

func (e *AddressResolutionEmpty) Error() string {
	return fmt.Sprintf("no addresses resolved from %d target(s)", len(e.Targets))
}

func isLiteralIP(token string) bool {
	_, err := netip.ParseAddr(token)
	return err == nil
}

// flattenFileRefs replaces any "@path" token with the newline-delimited
// contents of path, grounded on the teacher's file-backed bulk-domain
// reader. Blank lines and "#"-prefixed comments are skipped.
func flattenFileRefs(tokens []string) ([]string, []string, error) {
	var warnings []string
	var out []string

	for _, token := range tokens {
		if !strings.HasPrefix(token, "@") {
			out = append(out, token)
			continue
		}

		path := strings.TrimPrefix(token, "@")
		f, err := os.Open(path)
		if err != nil {
			return nil, warnings, fmt.Errorf("reading target file %q: %w", path, err)
		}

		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			out = append(out, line)
		}
		scanErr := scanner.Err()
		f.Close()
		if scanErr != nil {
			return nil, warnings, fmt.Errorf("reading target file %q: %w", path, scanErr)
		}
	}

	return out, warnings, nil
}

// expandCIDR enumerates every host address in a CIDR block, in ascending
// order, by repeatedly incrementing the masked base address.
func expandCIDR(cidr string) ([]netip.Addr, error) {
	_, ipNet, err := net.ParseCIDR(cidr)
	if err != nil {
		return nil, fmt.Errorf("invalid CIDR: %w", err)
	}

	var out []netip.Addr
	for ip := ipNet.IP.Mask(ipNet.Mask); ipNet.Contains(ip); incrementIP(ip) {
		addr, ok := netip.AddrFromSlice(ip)
		if !ok {
			continue
		}
		out = append(out, addr.Unmap())

		// Guard against pathologically large blocks (e.g. an accidental
		// /8) turning a single target token into tens of millions of
		// addresses.
		if len(out) >= 1<<20 {
			break
		}
	}
	return out, nil
}

// incrementIP increments an IP address in place, treating it as a big-endian
// byte counter.
func incrementIP(ip net.IP) {
	for j := len(ip) - 1; j >= 0; j-- {
		ip[j]++
		if ip[j] > 0 {
			break
		}
	}
}

// resolveHostname looks up a hostname's addresses. With no nameserver
// override it defers to the system resolver; otherwise it issues an
// authoritative A/AAAA query against the named server directly.
func resolveHostname(ctx context.Context, host, nameserver string) ([]netip.Addr, error) {
	if nameserver == "" {
		addrs, err := net.DefaultResolver.LookupIPAddr(ctx, host)
		if err != nil {
			return nil, err
		}
		out := make([]netip.Addr, 0, len(addrs))
		for _, a := range addrs {
			if addr, ok := netip.AddrFromSlice(a.IP); ok {
				out = append(out, addr.Unmap())
			}
		}
		return out, nil
	}

	server := resolveNameserverAlias(nameserver)
	resolver := dnsinternal.NewResolver()

	var out []netip.Addr
	for _, rt := range []dnsinternal.DNSRecordType{dnsinternal.RecordTypeA, dnsinternal.RecordTypeAAAA} {
		result, err := resolver.Query(ctx, host, rt, server)
		if err != nil {
			continue
		}
		for _, rec := range result.Records {
			if addr, err := netip.ParseAddr(rec.Value); err == nil {
				out = append(out, addr.Unmap())
			}
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no A/AAAA records for %q via %s", host, server)
	}
	return out, nil
}

// resolveNameserverAlias turns a provider shorthand like "cloudflare" into
// its first known IP; anything else is passed through as a literal
// host[:port].
func resolveNameserverAlias(nameserver string) string {
	if servers := nameservers.GetProviderNameservers(strings.ToLower(nameserver)); len(servers) > 0 {
		return servers[0].IP.String()
	}
	return nameserver
}
