// =============================================================================
// internal/scripts/scripts.go - Post-scan command runner
// =============================================================================
package scripts

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"text/template"
)

// Runner shells out to a templated command once per open port, substituting
// {{.IP}} and {{.Port}} placeholders. It is the scan's only collaborator
// that touches the outside world beyond the network itself.
type Runner struct {
	tmpl *template.Template
}

// placeholders is the data handed to the command template for each call.
type placeholders struct {
	IP   string
	Port string
}

// New compiles commandLine as a text/template, e.g.
// "nmap -p {{.Port}} {{.IP}}". Run renders the whole line first and only
// then splits the rendered text on whitespace into arguments.
func New(commandLine string) (*Runner, error) {
	tmpl, err := template.New("script").Parse(commandLine)
	if err != nil {
		return nil, fmt.Errorf("scripts: parsing command template: %w", err)
	}
	return &Runner{tmpl: tmpl}, nil
}

// Run executes the configured command once for every (host, port) pair in
// portsByHost, returning the combined stdout+stderr of each invocation
// alongside the error of the first command that failed to start or exited
// nonzero.
func (r *Runner) Run(ctx context.Context, portsByHost map[string][]uint16) (map[string]string, error) {
	output := make(map[string]string)
	var firstErr error

	for host, ports := range portsByHost {
		for _, port := range ports {
			var buf bytes.Buffer
			if err := r.tmpl.Execute(&buf, placeholders{IP: host, Port: strconv.Itoa(int(port))}); err != nil {
				return output, fmt.Errorf("scripts: rendering command for %s:%d: %w", host, port, err)
			}

			args := splitArgs(buf.String())
			if len(args) == 0 {
				continue
			}

			cmd := exec.CommandContext(ctx, args[0], args[1:]...)
			out, err := cmd.CombinedOutput()
			key := fmt.Sprintf("%s:%d", host, port)
			output[key] = string(out)
			if err != nil && firstErr == nil {
				firstErr = fmt.Errorf("scripts: command for %s failed: %w", key, err)
			}
		}
	}

	return output, firstErr
}

// splitArgs is a small whitespace tokenizer; it does not attempt shell
// quoting semantics since commands are operator-supplied, not user input
// from an untrusted source.
func splitArgs(s string) []string {
	var args []string
	var current []byte
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == ' ' || c == '\t' || c == '\n' {
			if len(current) > 0 {
				args = append(args, string(current))
				current = current[:0]
			}
			continue
		}
		current = append(current, c)
	}
	if len(current) > 0 {
		args = append(args, string(current))
	}
	return args
}
