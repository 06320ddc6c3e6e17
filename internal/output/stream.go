// =============================================================================
// internal/output/stream.go - Per-socket streaming output
// =============================================================================
package output

import (
	"fmt"
	"io"
	"net/netip"

	"github.com/fatih/color"

	"github.com/bryanCE/portscan/internal/socketiter"
)

// Streamer prints one line per open socket as the scan discovers it. It is
// never invoked in quiet mode; accessible mode drops the color codes.
type Streamer struct {
	writer     io.Writer
	accessible bool
	openColor  *color.Color
}

// NewStreamer builds a Streamer writing to w.
func NewStreamer(w io.Writer, accessible bool) *Streamer {
	return &Streamer{
		writer:     w,
		accessible: accessible,
		openColor:  color.New(color.FgGreen, color.Bold),
	}
}

// OnOpen is an scanner.OnOpen-compatible callback: one line of the form
// "Open {ip}:{port}", colored unless accessible mode is on.
func (s *Streamer) OnOpen(target socketiter.Target) {
	line := fmt.Sprintf("Open %s", netip.AddrPortFrom(target.IP, target.Port))
	if s.accessible {
		fmt.Fprintln(s.writer, line)
		return
	}
	s.openColor.Fprintln(s.writer, line)
}
