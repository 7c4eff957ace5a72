package transport

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net"
	"os"
	"strconv"
	"strings"

	"github.com/arthur-debert/homestead/pkg/errors"
	"github.com/arthur-debert/homestead/pkg/logging"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/agent"
	"golang.org/x/crypto/ssh/knownhosts"
)

// DefaultSSHPort is used when neither the target string nor the options name a port
const DefaultSSHPort = 22

// SSHOptions configures an SSH runner
type SSHOptions struct {
	Host string
	Port int
	User string
	// IdentityFile is an optional private key. The ssh-agent behind
	// SSH_AUTH_SOCK is always consulted as well.
	IdentityFile string
	// KnownHosts is the known_hosts file used to verify the host key.
	KnownHosts string
	// InsecureIgnoreHostKey skips host key verification.
	InsecureIgnoreHostKey bool
	// Output receives echoed command output for non-quiet calls.
	Output io.Writer
}

// SSH runs commands on a remote host, one SSH session per command
type SSH struct {
	client *ssh.Client
	// agent is the ssh-agent connection, nil when no agent was used
	agent  io.Closer
	host   string
	output io.Writer
	logger zerolog.Logger
}

// ParseTarget splits "user@host:port" into its parts. Missing parts are
// returned as zero values.
func ParseTarget(target string) (user, host string, port int, err error) {
	host = target
	if i := strings.LastIndex(host, "@"); i >= 0 {
		user, host = host[:i], host[i+1:]
	}
	if h, p, splitErr := net.SplitHostPort(host); splitErr == nil {
		port, err = strconv.Atoi(p)
		if err != nil || port <= 0 || port > 65535 {
			return "", "", 0, errors.Newf(errors.ErrInvalidInput, "invalid port in target %q", target)
		}
		host = h
	}
	if host == "" {
		return "", "", 0, errors.Newf(errors.ErrInvalidInput, "missing host in target %q", target)
	}
	return user, host, port, nil
}

// DialSSH connects to the host described by opts
func DialSSH(ctx context.Context, opts SSHOptions) (*SSH, error) {
	logger := logging.GetLogger("transport.ssh")

	port := opts.Port
	if port == 0 {
		port = DefaultSSHPort
	}
	addr := net.JoinHostPort(opts.Host, strconv.Itoa(port))

	auth, agentConn, err := authMethods(opts)
	if err != nil {
		return nil, err
	}
	closeAgent := func() {
		if agentConn != nil {
			_ = agentConn.Close()
		}
	}
	hostKeyCallback, err := hostKeyCallback(opts)
	if err != nil {
		closeAgent()
		return nil, err
	}

	config := &ssh.ClientConfig{
		User:            opts.User,
		Auth:            auth,
		HostKeyCallback: hostKeyCallback,
	}

	logger.Debug().Str("addr", addr).Str("user", opts.User).Msg("Dialing SSH")

	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		closeAgent()
		return nil, errors.Wrapf(err, errors.ErrTransport, "dial %s", addr)
	}
	c, chans, reqs, err := ssh.NewClientConn(conn, addr, config)
	if err != nil {
		_ = conn.Close()
		closeAgent()
		return nil, errors.Wrapf(err, errors.ErrTransport, "ssh handshake with %s", addr)
	}

	return &SSH{
		client: ssh.NewClient(c, chans, reqs),
		agent:  agentConn,
		host:   opts.Host,
		output: opts.Output,
		logger: logger,
	}, nil
}

// authMethods collects agent and key authentication. The returned agent
// connection, when not nil, must be closed by the caller, also on error.
func authMethods(opts SSHOptions) ([]ssh.AuthMethod, io.Closer, error) {
	var (
		methods   []ssh.AuthMethod
		agentConn net.Conn
	)

	if sock := os.Getenv("SSH_AUTH_SOCK"); sock != "" {
		if conn, err := net.Dial("unix", sock); err == nil {
			agentConn = conn
			methods = append(methods, ssh.PublicKeysCallback(agent.NewClient(conn).Signers))
		}
	}
	fail := func(err error) ([]ssh.AuthMethod, io.Closer, error) {
		if agentConn != nil {
			_ = agentConn.Close()
		}
		return nil, nil, err
	}

	if opts.IdentityFile != "" {
		key, err := os.ReadFile(opts.IdentityFile)
		if err != nil {
			return fail(errors.Wrapf(err, errors.ErrTransport, "read identity file %s", opts.IdentityFile))
		}
		signer, err := ssh.ParsePrivateKey(key)
		if err != nil {
			return fail(errors.Wrapf(err, errors.ErrTransport, "parse identity file %s", opts.IdentityFile))
		}
		methods = append(methods, ssh.PublicKeys(signer))
	}

	if len(methods) == 0 {
		return nil, nil, errors.New(errors.ErrTransport, "no SSH credentials: start an ssh-agent or pass an identity file")
	}
	if agentConn == nil {
		return methods, nil, nil
	}
	return methods, agentConn, nil
}

func hostKeyCallback(opts SSHOptions) (ssh.HostKeyCallback, error) {
	if opts.InsecureIgnoreHostKey {
		return ssh.InsecureIgnoreHostKey(), nil
	}
	if opts.KnownHosts == "" {
		return nil, errors.New(errors.ErrTransport, "no known_hosts file configured")
	}
	cb, err := knownhosts.New(opts.KnownHosts)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrTransport, "load known hosts from %s", opts.KnownHosts)
	}
	return cb, nil
}

// Host implements Runner
func (s *SSH) Host() string {
	return s.host
}

// Run implements Runner
func (s *SSH) Run(ctx context.Context, command string, opts ...Option) (Result, error) {
	o := applyOptions(opts)
	logging.LogCommand(s.logger, s.host, command, o.quiet)

	res := Result{Command: command, ExitCode: -1}

	session, err := s.client.NewSession()
	if err != nil {
		return res, errors.Wrapf(err, errors.ErrTransport, "open session on %s", s.host)
	}
	defer func() {
		_ = session.Close()
	}()

	var stdout, stderr bytes.Buffer
	session.Stdout = &stdout
	session.Stderr = &stderr
	if len(o.stdin) > 0 {
		session.Stdin = bytes.NewReader(o.stdin)
	}

	done := make(chan error, 1)
	go func() {
		done <- session.Run(command)
	}()

	select {
	case <-ctx.Done():
		_ = session.Signal(ssh.SIGKILL)
		_ = session.Close()
		return res, errors.Wrapf(ctx.Err(), errors.ErrTransport, "run %q on %s", command, s.host)
	case err = <-done:
	}

	res.Stdout = stdout.String()
	res.Stderr = stderr.String()

	if err != nil {
		var exitErr *ssh.ExitError
		if !stderrors.As(err, &exitErr) {
			return res, errors.Wrapf(err, errors.ErrTransport, "run %q on %s", command, s.host)
		}
		res.ExitCode = exitErr.ExitStatus()
	} else {
		res.ExitCode = 0
	}

	s.logger.Trace().
		Str("command", command).
		Int("exit", res.ExitCode).
		Msg("Command finished")

	return finish(s.host, res, o, s.output)
}

// Close implements Runner
func (s *SSH) Close() error {
	var errs []error
	if err := s.client.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close ssh connection to %s: %w", s.host, err))
	}
	if s.agent != nil {
		if err := s.agent.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close ssh-agent connection: %w", err))
		}
	}
	return stderrors.Join(errs...)
}

var _ Runner = (*SSH)(nil)
