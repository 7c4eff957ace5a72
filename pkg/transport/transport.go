package transport

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/arthur-debert/homestead/pkg/errors"
)

// Runner executes shell commands on one target host
type Runner interface {
	// Run executes command through the target's shell and waits for it to exit.
	Run(ctx context.Context, command string, opts ...Option) (Result, error)
	// Host names the target for logs and messages.
	Host() string
	// Close releases the connection, if any.
	Close() error
}

// Result is the outcome of one command
type Result struct {
	Command  string
	Stdout   string
	Stderr   string
	ExitCode int
}

// Succeeded reports whether the command exited with status 0
func (r Result) Succeeded() bool {
	return r.ExitCode == 0
}

// Failed reports whether the command exited with a non-zero status
func (r Result) Failed() bool {
	return r.ExitCode != 0
}

// Output returns trimmed stdout
func (r Result) Output() string {
	return strings.TrimSpace(r.Stdout)
}

type runOptions struct {
	quiet bool
	stdin []byte
}

// Option configures a single Run call
type Option func(*runOptions)

// Quiet suppresses output echo and reports a non-zero exit status through
// Result instead of an error.
func Quiet() Option {
	return func(o *runOptions) {
		o.quiet = true
	}
}

// WithStdin feeds data to the command's standard input
func WithStdin(data []byte) Option {
	return func(o *runOptions) {
		o.stdin = append(o.stdin, data...)
	}
}

// StdinOf returns the stdin bytes carried by opts
func StdinOf(opts ...Option) []byte {
	return applyOptions(opts).stdin
}

func applyOptions(opts []Option) runOptions {
	var o runOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// IsQuiet reports whether opts contain Quiet
func IsQuiet(opts ...Option) bool {
	return applyOptions(opts).quiet
}

// finish echoes output when requested and converts a non-zero exit status
// into an error for non-quiet calls.
func finish(host string, res Result, o runOptions, out io.Writer) (Result, error) {
	if !o.quiet && out != nil {
		echo(out, host, res.Stdout)
		echo(out, host, res.Stderr)
	}
	if res.Failed() && !o.quiet {
		return res, CommandError(host, res)
	}
	return res, nil
}

func echo(out io.Writer, host, text string) {
	text = strings.TrimRight(text, "\n")
	if text == "" {
		return
	}
	for _, line := range strings.Split(text, "\n") {
		_, _ = fmt.Fprintf(out, "[%s] out: %s\n", host, line)
	}
}

// CommandError builds the error returned for a failed non-quiet command
func CommandError(host string, res Result) error {
	msg := fmt.Sprintf("command on %s exited with status %d: %s", host, res.ExitCode, res.Command)
	if stderr := strings.TrimSpace(res.Stderr); stderr != "" {
		msg += ": " + stderr
	}
	return errors.New(errors.ErrCommandFailed, msg).
		WithDetail("host", host).
		WithDetail("command", res.Command).
		WithDetail("exit_code", res.ExitCode)
}
