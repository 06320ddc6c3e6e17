// =============================================================================
// internal/portstrategy/portstrategy.go - Port selection policy
// =============================================================================
package portstrategy

import (
	"fmt"
	"math/rand/v2"
)

// ScanOrder controls whether ports are probed serially or in random order.
type ScanOrder string

const (
	Serial ScanOrder = "serial"
	Random ScanOrder = "random"
)

// Range describes an inclusive port range.
type Range struct {
	Start uint16
	End   uint16
}

// Strategy produces the ordered sequence of ports a scan should probe.
type Strategy interface {
	Order() []uint16
}

type rangeStrategy struct {
	ports []uint16
}

func (s *rangeStrategy) Order() []uint16 { return s.ports }

type explicitStrategy struct {
	ports []uint16
}

func (s *explicitStrategy) Order() []uint16 { return s.ports }

// Pick builds a Strategy from a port range, an explicit list, and a scan
// order. Exactly one of rng or explicit must be supplied.
func Pick(rng *Range, explicit []uint16, order ScanOrder) (Strategy, error) {
	haveRange := rng != nil
	haveExplicit := explicit != nil
	if haveRange == haveExplicit {
		return nil, fmt.Errorf("portstrategy: exactly one of range or explicit ports must be supplied")
	}

	var ports []uint16
	if haveRange {
		if rng.Start < 1 || rng.Start > rng.End {
			return nil, fmt.Errorf("portstrategy: invalid range %d-%d", rng.Start, rng.End)
		}
		ports = make([]uint16, 0, int(rng.End)-int(rng.Start)+1)
		for p := int(rng.Start); p <= int(rng.End); p++ {
			ports = append(ports, uint16(p))
		}
	} else {
		seen := make(map[uint16]struct{}, len(explicit))
		ports = make([]uint16, 0, len(explicit))
		for _, p := range explicit {
			if p < 1 {
				return nil, fmt.Errorf("portstrategy: port %d out of range [1,65535]", p)
			}
			if _, ok := seen[p]; ok {
				continue
			}
			seen[p] = struct{}{}
			ports = append(ports, p)
		}
	}

	if len(ports) == 0 {
		return nil, fmt.Errorf("portstrategy: empty port set")
	}

	if order == Random {
		rand.Shuffle(len(ports), func(i, j int) {
			ports[i], ports[j] = ports[j], ports[i]
		})
		return &explicitStrategy{ports: ports}, nil
	}

	if haveRange {
		return &rangeStrategy{ports: ports}, nil
	}
	return &explicitStrategy{ports: ports}, nil
}
