// Package testutil provides test doubles shared across packages.
package testutil

import (
	"context"
	"strings"

	"github.com/arthur-debert/homestead/pkg/transport"
)

// Call records one command received by a FakeRunner
type Call struct {
	Command string
	Stdin   string
	Quiet   bool
}

// Response is what a FakeRunner answers for a matching command
type Response struct {
	ExitCode int
	Stdout   string
	Stderr   string
	// Err is returned as a transport failure.
	Err error
}

// OK is a successful empty response
var OK = Response{}

// Fail is a response with exit status 1
var Fail = Response{ExitCode: 1}

type handler struct {
	match   func(string) bool
	respond func(string) Response
}

// FakeRunner is a scripted transport.Runner. Commands are matched against
// registered handlers, newest first; unmatched commands get Default.
type FakeRunner struct {
	HostName string
	Default  Response
	Calls    []Call

	handlers []handler
}

// NewFakeRunner creates a runner that answers every command with OK
func NewFakeRunner() *FakeRunner {
	return &FakeRunner{HostName: "fake"}
}

// On answers commands containing substr with res
func (f *FakeRunner) On(substr string, res Response) *FakeRunner {
	return f.OnFunc(func(cmd string) bool { return strings.Contains(cmd, substr) },
		func(string) Response { return res })
}

// OnFunc registers a custom matcher and responder
func (f *FakeRunner) OnFunc(match func(cmd string) bool, respond func(cmd string) Response) *FakeRunner {
	f.handlers = append(f.handlers, handler{match: match, respond: respond})
	return f
}

// Run implements transport.Runner
func (f *FakeRunner) Run(_ context.Context, command string, opts ...transport.Option) (transport.Result, error) {
	quiet := transport.IsQuiet(opts...)
	f.Calls = append(f.Calls, Call{Command: command, Stdin: stdinOf(opts), Quiet: quiet})

	resp := f.Default
	for i := len(f.handlers) - 1; i >= 0; i-- {
		if f.handlers[i].match(command) {
			resp = f.handlers[i].respond(command)
			break
		}
	}

	res := transport.Result{
		Command:  command,
		Stdout:   resp.Stdout,
		Stderr:   resp.Stderr,
		ExitCode: resp.ExitCode,
	}
	if resp.Err != nil {
		res.ExitCode = -1
		return res, resp.Err
	}
	if res.Failed() && !quiet {
		return res, transport.CommandError(f.Host(), res)
	}
	return res, nil
}

// Host implements transport.Runner
func (f *FakeRunner) Host() string {
	return f.HostName
}

// Close implements transport.Runner
func (f *FakeRunner) Close() error {
	return nil
}

// Commands returns every command received, in order
func (f *FakeRunner) Commands() []string {
	cmds := make([]string, len(f.Calls))
	for i, c := range f.Calls {
		cmds[i] = c.Command
	}
	return cmds
}

// Ran reports whether any command contained substr
func (f *FakeRunner) Ran(substr string) bool {
	return f.Index(substr) >= 0
}

// Index returns the position of the first command containing substr, or -1
func (f *FakeRunner) Index(substr string) int {
	for i, c := range f.Calls {
		if strings.Contains(c.Command, substr) {
			return i
		}
	}
	return -1
}

func stdinOf(opts []transport.Option) string {
	return string(transport.StdinOf(opts...))
}

var _ transport.Runner = (*FakeRunner)(nil)
