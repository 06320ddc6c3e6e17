// =============================================================================
// internal/aggregator/aggregator.go - Group open sockets by host
// =============================================================================
package aggregator

import (
	"fmt"
	"net/netip"
	"sort"

	"github.com/bryanCE/portscan/internal/socketiter"
)

// Result is the final, presentation-ready view of a completed scan: every
// host that had at least one open port, each with its ports sorted and
// deduplicated.
type Result struct {
	// PortsByHost maps a host's string form (netip.Addr.String()) to its
	// sorted, deduplicated list of open ports.
	PortsByHost map[string][]uint16
	// Hosts is PortsByHost's keys in stable order: the order the hosts were
	// originally supplied in, not discovery order.
	Hosts []string
}

// Group folds a raw, completion-ordered stream of open sockets into a
// deterministic per-host view. allIPs fixes the host ordering even when a
// host contributed zero open sockets; such hosts are omitted from the
// result entirely, and a warning is returned for each one advising the
// caller to lower --batch-size or raise --timeout, per spec.
func Group(open []socketiter.Target, allIPs []netip.Addr) (Result, []string) {
	seen := make(map[string]map[uint16]struct{})
	order := make([]string, 0, len(allIPs))
	index := make(map[string]int, len(allIPs))
	for i, ip := range allIPs {
		key := ip.String()
		if _, ok := index[key]; !ok {
			index[key] = len(order)
			order = append(order, key)
		}
		_ = i
	}

	for _, target := range open {
		key := target.IP.String()
		ports, ok := seen[key]
		if !ok {
			ports = make(map[uint16]struct{})
			seen[key] = ports
		}
		ports[target.Port] = struct{}{}
	}

	byHost := make(map[string][]uint16, len(seen))
	hosts := make([]string, 0, len(seen))
	var warnings []string
	for _, key := range order {
		ports, ok := seen[key]
		if !ok {
			warnings = append(warnings, fmt.Sprintf(
				"no open ports found for %s: try lowering --batch-size or raising --timeout", key))
			continue
		}
		list := make([]uint16, 0, len(ports))
		for p := range ports {
			list = append(list, p)
		}
		sort.Slice(list, func(i, j int) bool { return list[i] < list[j] })
		byHost[key] = list
		hosts = append(hosts, key)
	}

	return Result{PortsByHost: byHost, Hosts: hosts}, warnings
}
