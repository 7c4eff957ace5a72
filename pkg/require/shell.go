package require

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/arthur-debert/homestead/pkg/backup"
	"github.com/arthur-debert/homestead/pkg/errors"
	"github.com/arthur-debert/homestead/pkg/internal/hashutil"
	"github.com/arthur-debert/homestead/pkg/logging"
	"github.com/arthur-debert/homestead/pkg/session"
	"github.com/arthur-debert/homestead/pkg/transport"
	"github.com/rs/zerolog"
)

const (
	// AptStamp is touched by apt after a successful index update
	AptStamp = "/var/lib/apt/periodic/update-success-stamp"
	// DefaultIndexMaxAge is how old the apt index may get before UpToDateIndex refreshes it
	DefaultIndexMaxAge = 24 * time.Hour

	installedStatus = "install ok installed"
	tmpSuffix       = ".homestead-tmp"
)

// Shell implements Requirer with shell commands run on the target
type Shell struct {
	sess        *session.Session
	indexMaxAge time.Duration
	logger      zerolog.Logger
}

// NewShell creates a shell-command Requirer for sess
func NewShell(sess *session.Session) *Shell {
	return &Shell{
		sess:        sess,
		indexMaxAge: DefaultIndexMaxAge,
		logger:      logging.GetLogger("require.shell"),
	}
}

// UpToDateIndex refreshes the apt index when it is older than a day
func (r *Shell) UpToDateIndex(ctx context.Context) error {
	minutes := int(r.indexMaxAge.Minutes())
	check := fmt.Sprintf("find %s -mmin -%d 2>/dev/null | grep -q .", AptStamp, minutes)
	if res, err := r.sess.Run(ctx, check, transport.Quiet()); err == nil && res.Succeeded() {
		r.logger.Debug().Msg("apt index is fresh")
		return nil
	}
	return r.updateIndex(ctx)
}

func (r *Shell) updateIndex(ctx context.Context) error {
	r.logger.Info().Msg("Updating apt index")
	if _, err := r.sess.Sudo().Run(ctx, "apt-get update --quiet --quiet"); err != nil {
		return errors.Wrap(err, errors.ErrRequire, "update apt index")
	}
	return nil
}

// Packages installs the named apt packages that are not installed yet
func (r *Shell) Packages(ctx context.Context, names ...string) error {
	var missing []string
	for _, name := range names {
		if !r.isInstalled(ctx, name) {
			missing = append(missing, name)
		}
	}
	if len(missing) == 0 {
		r.logger.Debug().Strs("packages", names).Msg("Packages already installed")
		return nil
	}

	r.logger.Info().Strs("packages", missing).Msg("Installing packages")
	cmd := "DEBIAN_FRONTEND=noninteractive apt-get install --quiet --assume-yes " + transport.Join(missing...)
	if _, err := r.sess.Sudo().Run(ctx, cmd); err != nil {
		return errors.Wrapf(err, errors.ErrRequire, "install packages %s", strings.Join(missing, ", "))
	}
	return nil
}

func (r *Shell) isInstalled(ctx context.Context, name string) bool {
	res, err := r.sess.Run(ctx, "dpkg-query -W -f='${Status}' "+transport.Quote(name), transport.Quiet())
	if err != nil || res.Failed() {
		return false
	}
	return res.Output() == installedStatus
}

// PPA adds a Launchpad PPA ("ppa:user/repo") and refreshes the index
func (r *Shell) PPA(ctx context.Context, name string) error {
	user, repo, ok := parsePPA(name)
	if !ok {
		return errors.Newf(errors.ErrInvalidInput, "invalid PPA %q, want ppa:user/repo", name)
	}

	check := fmt.Sprintf("grep -rqs -e %s -e %s /etc/apt/sources.list.d/",
		transport.Quote("ppa.launchpad.net/"+user+"/"+repo),
		transport.Quote("ppa.launchpadcontent.net/"+user+"/"+repo))
	if res, err := r.sess.Run(ctx, check, transport.Quiet()); err == nil && res.Succeeded() {
		r.logger.Debug().Str("ppa", name).Msg("PPA already configured")
		return nil
	}

	if err := r.Packages(ctx, "software-properties-common"); err != nil {
		return err
	}
	r.logger.Info().Str("ppa", name).Msg("Adding PPA")
	if _, err := r.sess.Sudo().Run(ctx, "add-apt-repository --yes "+transport.Quote(name)); err != nil {
		return errors.Wrapf(err, errors.ErrRequire, "add %s", name)
	}
	return r.updateIndex(ctx)
}

func parsePPA(name string) (user, repo string, ok bool) {
	rest, found := strings.CutPrefix(name, "ppa:")
	if !found {
		return "", "", false
	}
	user, repo, found = strings.Cut(rest, "/")
	if !found || user == "" || repo == "" || strings.Contains(repo, "/") {
		return "", "", false
	}
	return user, repo, true
}

// File makes sure path holds exactly spec.Content. Content is staged next to
// the target and moved into place so a mode-sensitive file never exists with
// the wrong mode.
func (r *Shell) File(ctx context.Context, sh *session.Session, spec FileSpec) error {
	if spec.Path == "" {
		return errors.New(errors.ErrInvalidInput, "file path is empty")
	}
	target := sh
	if spec.UseSudo {
		target = sh.Sudo()
	}

	want := hashutil.Checksum(spec.Content)
	res, err := target.Run(ctx, "sha256sum -- "+transport.Quote(spec.Path), transport.Quiet())
	if err == nil && res.Succeeded() {
		if got, ok := hashutil.FromSha256sum(res.Stdout); ok && got == want {
			r.logger.Debug().Str("path", spec.Path).Msg("File content up to date")
			return nil
		}
	}

	tmp := transport.Quote(spec.Path + tmpSuffix)
	cmd := "cat > " + tmp
	if spec.Mode != 0 {
		cmd += fmt.Sprintf(" && chmod %04o %s", spec.Mode.Perm(), tmp)
	}
	cmd += " && mv -f -- " + tmp + " " + transport.Quote(spec.Path)

	r.logger.Info().Str("path", spec.Path).Bool("sudo", spec.UseSudo).Msg("Writing file")
	if _, err := target.Run(ctx, cmd, transport.WithStdin(spec.Content)); err != nil {
		return errors.Wrapf(err, errors.ErrRequire, "write %s", spec.Path)
	}
	return nil
}

// Directory creates path (and parents) when it is not a directory yet
func (r *Shell) Directory(ctx context.Context, sh *session.Session, path string) error {
	if path == "" {
		return errors.New(errors.ErrInvalidInput, "directory path is empty")
	}
	if backup.IsDir(ctx, sh, path) {
		return nil
	}
	r.logger.Info().Str("path", path).Msg("Creating directory")
	if _, err := sh.Run(ctx, "mkdir -p -- "+transport.Quote(path)); err != nil {
		return errors.Wrapf(err, errors.ErrRequire, "create directory %s", path)
	}
	return nil
}

// WorkingCopy clones spec.URL into spec.Path, or pulls an existing checkout
func (r *Shell) WorkingCopy(ctx context.Context, sh *session.Session, spec WorkingCopySpec) error {
	if spec.URL == "" || spec.Path == "" {
		return errors.Newf(errors.ErrInvalidInput, "working copy needs url and path (url=%q path=%q)", spec.URL, spec.Path)
	}

	if backup.IsDir(ctx, sh, strings.TrimSuffix(spec.Path, "/")+"/.git") {
		if !spec.Update {
			return nil
		}
		r.logger.Info().Str("path", spec.Path).Msg("Updating working copy")
		if _, err := sh.Cd(spec.Path).Run(ctx, "git pull"); err != nil {
			return errors.Wrapf(err, errors.ErrRequire, "update working copy %s", spec.Path)
		}
		return nil
	}

	args := []string{"git", "clone", "--quiet"}
	if spec.Branch != "" {
		args = append(args, "--branch", spec.Branch)
	}
	args = append(args, "--", spec.URL, spec.Path)

	r.logger.Info().Str("url", spec.URL).Str("path", spec.Path).Msg("Cloning working copy")
	if _, err := sh.Run(ctx, transport.Join(args...)); err != nil {
		return errors.Wrapf(err, errors.ErrRequire, "clone %s", spec.URL)
	}
	return nil
}

// Virtualenv creates a python virtualenv at spec.Path, installing the
// virtualenv tool first when it is missing.
func (r *Shell) Virtualenv(ctx context.Context, sh *session.Session, spec VirtualenvSpec) error {
	if spec.Path == "" {
		return errors.New(errors.ErrInvalidInput, "virtualenv path is empty")
	}
	pythonCmd := spec.PythonCmd
	if pythonCmd == "" {
		pythonCmd = "python3"
	}

	if res, err := sh.Run(ctx, "command -v virtualenv", transport.Quiet()); err != nil || res.Failed() {
		r.logger.Info().Str("python", pythonCmd).Msg("Installing virtualenv")
		cmd := transport.Join(pythonCmd, "-m", "pip", "install", "--quiet", "virtualenv")
		if _, err := sh.Sudo().Run(ctx, cmd); err != nil {
			return errors.Wrap(err, errors.ErrRequire, "install virtualenv")
		}
	}

	if backup.IsDir(ctx, sh, spec.Path) {
		return nil
	}

	args := []string{"virtualenv", "--quiet"}
	if spec.Python != "" {
		args = append(args, "--python="+spec.Python)
	}
	args = append(args, spec.Path)

	r.logger.Info().Str("path", spec.Path).Msg("Creating virtualenv")
	if _, err := sh.Run(ctx, transport.Join(args...)); err != nil {
		return errors.Wrapf(err, errors.ErrRequire, "create virtualenv %s", spec.Path)
	}
	return nil
}

var _ Requirer = (*Shell)(nil)
