// =============================================================================
// internal/output/reporter.go - Severity-channel messaging
// =============================================================================
package output

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

// Reporter routes warning/detail/output messages to the right stream,
// respecting quiet and accessible modes. In quiet mode only Output messages
// (the final per-host summary) are printed.
type Reporter struct {
	warn   io.Writer
	detail io.Writer
	out    io.Writer

	quiet      bool
	accessible bool

	warnColor *color.Color
}

// NewReporter builds a Reporter. warn/detail typically point at stderr,
// out at stdout.
func NewReporter(warn, detail, out io.Writer, quiet, accessible bool) *Reporter {
	return &Reporter{
		warn:       warn,
		detail:     detail,
		out:        out,
		quiet:      quiet,
		accessible: accessible,
		warnColor:  color.New(color.FgYellow, color.Bold),
	}
}

// Warning reports a non-fatal problem (e.g. a failed FD-limit raise, or an
// address token that failed to resolve). Suppressed in quiet mode.
func (r *Reporter) Warning(format string, args ...interface{}) {
	if r.quiet {
		return
	}
	msg := fmt.Sprintf(format, args...)
	if r.accessible {
		fmt.Fprintf(r.warn, "Warning: %s\n", msg)
		return
	}
	r.warnColor.Fprintf(r.warn, "Warning: %s\n", msg)
}

// Detail reports an informational message the user can safely ignore.
// Suppressed in quiet mode.
func (r *Reporter) Detail(format string, args ...interface{}) {
	if r.quiet {
		return
	}
	fmt.Fprintf(r.detail, format+"\n", args...)
}

// Output reports a result the user asked for; it is never suppressed, even
// in quiet mode.
func (r *Reporter) Output(format string, args ...interface{}) {
	fmt.Fprintf(r.out, format+"\n", args...)
}

// Writer exposes the Output channel's underlying writer directly, for
// collaborators (e.g. internal/output.Formatter) that write a whole
// multi-line document rather than one Printf-style line at a time. It is
// never suppressed, even in quiet mode, for the same reason Output isn't.
func (r *Reporter) Writer() io.Writer {
	return r.out
}
