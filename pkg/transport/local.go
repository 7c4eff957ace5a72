package transport

import (
	"bytes"
	"context"
	stderrors "errors"
	"io"
	"os/exec"

	"github.com/arthur-debert/homestead/pkg/errors"
	"github.com/arthur-debert/homestead/pkg/logging"
	"github.com/rs/zerolog"
)

// LocalHost is the host name reported by the local runner
const LocalHost = "local"

// LocalOptions configures a Local runner
type LocalOptions struct {
	// Dir is the working directory for every command. Empty means the
	// current process directory.
	Dir string
	// Shell defaults to /bin/sh.
	Shell string
	// Output receives echoed command output for non-quiet calls.
	Output io.Writer
}

// Local runs commands on this machine through `sh -c`
type Local struct {
	dir    string
	shell  string
	output io.Writer
	logger zerolog.Logger
}

// NewLocal creates a runner for the local host
func NewLocal(opts LocalOptions) *Local {
	shell := opts.Shell
	if shell == "" {
		shell = "/bin/sh"
	}
	return &Local{
		dir:    opts.Dir,
		shell:  shell,
		output: opts.Output,
		logger: logging.GetLogger("transport.local"),
	}
}

// Host implements Runner
func (l *Local) Host() string {
	return LocalHost
}

// Dir returns the working directory commands run in
func (l *Local) Dir() string {
	return l.dir
}

// Run implements Runner
func (l *Local) Run(ctx context.Context, command string, opts ...Option) (Result, error) {
	o := applyOptions(opts)
	logging.LogCommand(l.logger, LocalHost, command, o.quiet)

	cmd := exec.CommandContext(ctx, l.shell, "-c", command)
	cmd.Dir = l.dir
	if len(o.stdin) > 0 {
		cmd.Stdin = bytes.NewReader(o.stdin)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	res := Result{
		Command: command,
		Stdout:  stdout.String(),
		Stderr:  stderr.String(),
	}
	if err != nil {
		var exitErr *exec.ExitError
		if ctx.Err() != nil || !stderrors.As(err, &exitErr) || exitErr.ExitCode() < 0 {
			if ctx.Err() != nil {
				err = ctx.Err()
			}
			res.ExitCode = -1
			return res, errors.Wrapf(err, errors.ErrTransport, "run %q on %s", command, LocalHost)
		}
		res.ExitCode = exitErr.ExitCode()
	}

	l.logger.Trace().
		Str("command", command).
		Int("exit", res.ExitCode).
		Msg("Command finished")

	return finish(LocalHost, res, o, l.output)
}

// Close implements Runner
func (l *Local) Close() error {
	return nil
}

var _ Runner = (*Local)(nil)
