package provision

import (
	"context"
	"fmt"

	"github.com/arthur-debert/homestead/pkg/backup"
	"github.com/arthur-debert/homestead/pkg/errors"
	"github.com/arthur-debert/homestead/pkg/require"
	"github.com/arthur-debert/homestead/pkg/style"
	"github.com/arthur-debert/homestead/pkg/transport"
)

const sudoersDir = "/etc/sudoers.d"

// TerraformOptions are the terraform task parameters
type TerraformOptions struct {
	// Name and Email become the git identity when the target has none.
	Name  string
	Email string
	// Mkdirs creates the manifest's working directories and virtualenvs.
	Mkdirs bool
}

// Terraform builds the environment the manifest declares
func (t *Task) Terraform(ctx context.Context, opts TerraformOptions) (*Report, error) {
	report := &Report{Host: t.sess.Host()}

	steps := []step{
		{"sudoers", t.sudoers},
		{"apt", t.apt},
		{"git identity", func(ctx context.Context) error { return t.gitIdentity(ctx, opts.Name, opts.Email) }},
		{"files", t.files},
	}
	if opts.Mkdirs {
		steps = append(steps, step{"workdirs", t.workdirs})
	}
	steps = append(steps,
		step{"directories", t.directories},
		step{"downloads", t.downloads},
		step{"working copies", t.workingCopies},
		step{"login shell", t.loginShell},
		step{"links", func(ctx context.Context) error { return t.links(ctx, report) }},
	)

	return report, t.run(ctx, report, steps)
}

// sudoers grants the login user passwordless sudo
func (t *Task) sudoers(ctx context.Context) error {
	if !backup.IsDir(ctx, t.sess, sudoersDir) {
		t.logger.Debug().Msg("No sudoers.d directory, skipping")
		return nil
	}
	user := t.sess.User()
	if user == "" {
		return errors.New(errors.ErrInvalidInput, "login user is unknown")
	}
	return t.req.File(ctx, t.sess, require.FileSpec{
		Path:    fmt.Sprintf("%s/90-%s", sudoersDir, user),
		Content: []byte(user + " ALL=(ALL) NOPASSWD:ALL\n"),
		UseSudo: true,
		Mode:    0o440,
	})
}

func (t *Task) apt(ctx context.Context) error {
	if err := t.req.UpToDateIndex(ctx); err != nil {
		return err
	}
	if len(t.manifest.Packages) == 0 {
		return nil
	}
	return t.req.Packages(ctx, t.manifest.Packages...)
}

// gitIdentity sets the global git author once, after asking
func (t *Task) gitIdentity(ctx context.Context, name, email string) error {
	res, err := t.sess.Run(ctx, "git config --global user.name", transport.Quiet())
	if err == nil && res.Succeeded() {
		t.logger.Debug().Str("name", res.Output()).Msg("Git identity already set")
		return nil
	}

	if name == "" || email == "" {
		style.Warn(t.out, "Git user setting skipped: no name and e-mail configured.")
		return nil
	}

	question := fmt.Sprintf("There is no Git user name and e-mail address.\nAre you sure you want to set as %q <%s>?", name, email)
	ok, err := t.confirm.Confirm(ctx, question, false)
	if err != nil {
		return err
	}
	if !ok {
		style.Warn(t.out, "Git user setting skipped.")
		return nil
	}

	for _, kv := range [][2]string{{"user.name", name}, {"user.email", email}} {
		if _, err := t.sess.Run(ctx, transport.Join("git", "config", "--global", kv[0], kv[1])); err != nil {
			return errors.Wrapf(err, errors.ErrRequire, "set git %s", kv[0])
		}
	}
	return nil
}

func (t *Task) files(ctx context.Context) error {
	for _, f := range t.manifest.Files {
		mode, err := f.FileMode()
		if err != nil {
			return errors.Wrapf(err, errors.ErrManifestInvalid, "file %s", f.Path)
		}
		spec := require.FileSpec{Path: f.Path, Content: []byte(f.Content), UseSudo: f.Sudo, Mode: mode}
		if err := t.req.File(ctx, t.sess, spec); err != nil {
			return err
		}
	}
	return nil
}

func (t *Task) workdirs(ctx context.Context) error {
	for _, dir := range t.manifest.Workdirs {
		if err := t.req.Directory(ctx, t.sess, dir); err != nil {
			return err
		}
	}
	for _, v := range t.manifest.Virtualenvs {
		spec := require.VirtualenvSpec{Path: v.Path, Python: v.Python, PythonCmd: v.PythonCmd}
		if err := t.req.Virtualenv(ctx, t.sess, spec); err != nil {
			return err
		}
	}
	return nil
}

func (t *Task) directories(ctx context.Context) error {
	for _, dir := range t.manifest.Directories {
		if err := t.req.Directory(ctx, t.sess, dir); err != nil {
			return err
		}
	}
	return nil
}

// downloads fetches every download again; curl replaces the file in place
func (t *Task) downloads(ctx context.Context) error {
	for _, d := range t.manifest.Downloads {
		t.logger.Info().Str("url", d.URL).Str("path", d.Path).Msg("Downloading")
		if _, err := t.sess.Run(ctx, transport.Join("curl", "-LSso", d.Path, d.URL)); err != nil {
			return errors.Wrapf(err, errors.ErrRequire, "download %s", d.URL)
		}
	}
	return nil
}

func (t *Task) workingCopies(ctx context.Context) error {
	for _, w := range t.manifest.WorkingCopies {
		sh := t.sess
		if w.Parent != "" {
			sh = sh.Cd(w.Parent)
		}
		spec := require.WorkingCopySpec{URL: w.RepoURL(), Path: w.Path, Branch: w.Branch, Update: w.Update}
		if err := t.req.WorkingCopy(ctx, sh, spec); err != nil {
			return err
		}
	}
	return nil
}

func (t *Task) loginShell(ctx context.Context) error {
	shell := t.manifest.LoginShell
	if shell == "" {
		return nil
	}
	if err := t.req.Packages(ctx, shell); err != nil {
		return err
	}
	user := t.sess.User()
	if user == "" {
		return errors.New(errors.ErrInvalidInput, "login user is unknown")
	}

	cmd := fmt.Sprintf(`chsh -s "$(command -v %s)" %s`, transport.Quote(shell), transport.Quote(user))
	if _, err := t.sess.Sudo().Run(ctx, cmd); err != nil {
		return errors.Wrapf(err, errors.ErrRequire, "set login shell to %s", shell)
	}
	return nil
}

// links installs every symlink under backup protection
func (t *Task) links(ctx context.Context, report *Report) error {
	for _, l := range t.manifest.Links {
		sh := t.sess
		if l.Sudo {
			sh = sh.Sudo()
		}
		link := l
		out, err := backup.With(ctx, sh, link.Path, func(ctx context.Context) error {
			_, err := sh.Run(ctx, transport.Join("ln", "-s", link.Source, link.Path))
			return err
		})
		report.Links = append(report.Links, out)
		if err != nil {
			return err
		}
		t.logger.Info().Str("path", out.Target).Str("backup", out.Backup).Bool("kept", out.Kept).Msg("Linked")
	}
	return nil
}
