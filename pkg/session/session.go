// Package session holds the explicit target context every remote call runs in:
// which host, which user, which working directory and whether commands are
// elevated with sudo. Sessions are values; Cd and Sudo return derived
// sessions and never mutate the receiver.
package session

import (
	"context"
	"path"
	"strings"

	"github.com/arthur-debert/homestead/pkg/errors"
	"github.com/arthur-debert/homestead/pkg/transport"
)

// DefaultSudoPrefix preserves the caller's environment so "~" still points at
// the unprivileged user's home inside sudo.
const DefaultSudoPrefix = "sudo -E"

// Shell is the minimal capability the backup engine needs: run a command on
// the target and report its result.
type Shell interface {
	Run(ctx context.Context, command string, opts ...transport.Option) (transport.Result, error)
}

// Options configures a new Session
type Options struct {
	// User is the login user on the target. Discover fills it when empty.
	User string
	// Home is the user's home directory on the target. Relative paths
	// resolve against it.
	Home string
	// SudoPrefix defaults to DefaultSudoPrefix.
	SudoPrefix string
	// SudoPassword, when set, is fed to `sudo -S` on stdin.
	SudoPassword string
}

// Session is one target host/user context
type Session struct {
	runner       transport.Runner
	user         string
	home         string
	dir          string
	sudo         bool
	sudoPrefix   string
	sudoPassword string
}

// New creates a session over runner
func New(runner transport.Runner, opts Options) *Session {
	prefix := strings.TrimSpace(opts.SudoPrefix)
	if prefix == "" {
		prefix = DefaultSudoPrefix
	}
	return &Session{
		runner:       runner,
		user:         opts.User,
		home:         opts.Home,
		sudoPrefix:   prefix,
		sudoPassword: opts.SudoPassword,
	}
}

// Discover asks the target for the login user and home directory when they
// were not configured.
func (s *Session) Discover(ctx context.Context) error {
	if s.user == "" {
		res, err := s.runner.Run(ctx, "id -un", transport.Quiet())
		if err != nil || res.Failed() || res.Output() == "" {
			return errors.Wrapf(s.firstErr(err, res), errors.ErrTransport, "discover user on %s", s.runner.Host())
		}
		s.user = res.Output()
	}
	if s.home == "" {
		res, err := s.runner.Run(ctx, `printf '%s' "$HOME"`, transport.Quiet())
		if err != nil || res.Failed() || res.Output() == "" {
			return errors.Wrapf(s.firstErr(err, res), errors.ErrTransport, "discover home on %s", s.runner.Host())
		}
		s.home = res.Output()
	}
	return nil
}

func (s *Session) firstErr(err error, res transport.Result) error {
	if err != nil {
		return err
	}
	return transport.CommandError(s.runner.Host(), res)
}

// Run executes command in this session's directory, elevated when the
// session is a sudo session.
func (s *Session) Run(ctx context.Context, command string, opts ...transport.Option) (transport.Result, error) {
	if s.sudo && s.sudoPassword != "" {
		opts = append([]transport.Option{transport.WithStdin([]byte(s.sudoPassword + "\n"))}, opts...)
	}
	return s.runner.Run(ctx, s.Wrap(command), opts...)
}

// Wrap returns the command line actually sent to the runner
func (s *Session) Wrap(command string) string {
	line := command
	if s.dir != "" {
		line = "cd " + transport.Quote(s.dir) + " && " + line
	}
	if s.sudo {
		prefix := s.sudoPrefix
		if s.sudoPassword != "" {
			prefix += " -S -p ''"
		}
		line = prefix + " sh -c " + transport.QuoteLiteral(line)
	}
	return line
}

// Sudo returns a derived session whose commands run through sudo
func (s *Session) Sudo() *Session {
	c := *s
	c.sudo = true
	return &c
}

// Cd returns a derived session whose commands run inside dir. A relative dir
// nests inside the current one.
func (s *Session) Cd(dir string) *Session {
	c := *s
	switch {
	case dir == "":
	case path.IsAbs(dir), dir == "~", strings.HasPrefix(dir, "~/"), s.dir == "":
		c.dir = dir
	default:
		c.dir = path.Join(s.dir, dir)
	}
	return &c
}

// IsSudo reports whether commands are elevated
func (s *Session) IsSudo() bool {
	return s.sudo
}

// User returns the login user on the target
func (s *Session) User() string {
	return s.user
}

// Home returns the user's home directory on the target
func (s *Session) Home() string {
	return s.home
}

// Dir returns the working directory commands run in, relative to home
// unless absolute. Empty means home.
func (s *Session) Dir() string {
	return s.dir
}

// Host names the target
func (s *Session) Host() string {
	return s.runner.Host()
}

// IsLocal reports whether the target is this machine
func (s *Session) IsLocal() bool {
	return s.runner.Host() == transport.LocalHost
}

// Resolve turns a target path into an absolute path on the target
func (s *Session) Resolve(p string) string {
	if abs, ok := s.absolute(p); ok {
		return abs
	}
	base := s.home
	if s.dir != "" {
		if abs, ok := s.absolute(s.dir); ok {
			base = abs
		} else {
			base = path.Join(s.home, s.dir)
		}
	}
	return path.Join(base, p)
}

func (s *Session) absolute(p string) (string, bool) {
	switch {
	case p == "~":
		return s.home, true
	case strings.HasPrefix(p, "~/"):
		return path.Join(s.home, p[2:]), true
	case path.IsAbs(p):
		return path.Clean(p), true
	}
	return "", false
}

var _ Shell = (*Session)(nil)
