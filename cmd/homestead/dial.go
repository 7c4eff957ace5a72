package homestead

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/homestead/pkg/config"
	"github.com/arthur-debert/homestead/pkg/errors"
	"github.com/arthur-debert/homestead/pkg/transport"
)

// Dial opens a local runner rooted at the user's home for the "local" target
// and an SSH runner otherwise. The host may carry user and port as
// user@host:port; explicit configuration fills what it leaves out.
func Dial(ctx context.Context, target config.Target, output io.Writer) (transport.Runner, error) {
	if target.IsLocal() {
		// Relative manifest paths are home-relative, as they are over SSH
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrTransport, "locate home directory")
		}
		return transport.NewLocal(transport.LocalOptions{Dir: home, Output: output}), nil
	}

	user, host, port, err := transport.ParseTarget(target.Host)
	if err != nil {
		return nil, err
	}
	if user == "" {
		user = target.User
	}
	if user == "" {
		user = os.Getenv("USER")
	}
	if port == 0 {
		port = target.Port
	}

	knownHosts := target.KnownHosts
	if knownHosts == "" {
		knownHosts = "~/.ssh/known_hosts"
	}

	client, err := transport.DialSSH(ctx, transport.SSHOptions{
		Host:                  host,
		Port:                  port,
		User:                  user,
		IdentityFile:          expandHome(target.Identity),
		KnownHosts:            expandHome(knownHosts),
		InsecureIgnoreHostKey: target.InsecureIgnoreHostKey,
		Output:                output,
	})
	if err != nil {
		return nil, err
	}
	return client, nil
}

func expandHome(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~"))
}
