package homestead

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/arthur-debert/homestead/pkg/backup"
	"github.com/arthur-debert/homestead/pkg/config"
	"github.com/arthur-debert/homestead/pkg/errors"
	"github.com/arthur-debert/homestead/pkg/session"
	"github.com/arthur-debert/homestead/pkg/testutil"
	"github.com/arthur-debert/homestead/pkg/transport"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tinyManifest = `
packages: [git]
login_shell: zsh
links:
  - source: ~/.subleenv/.zshrc
    path: .zshrc
`

type harness struct {
	runner *testutil.FakeRunner
	target config.Target
	stdout *bytes.Buffer
	stderr *bytes.Buffer
	dir    string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	prev := lipgloss.ColorProfile()
	lipgloss.SetColorProfile(termenv.Ascii)
	t.Cleanup(func() { lipgloss.SetColorProfile(prev) })
	t.Setenv("XDG_STATE_HOME", t.TempDir())

	h := &harness{
		runner: testutil.NewFakeRunner(),
		stdout: &bytes.Buffer{},
		stderr: &bytes.Buffer{},
		dir:    t.TempDir(),
	}
	h.runner.
		On("id -un", testutil.Response{Stdout: "tester\n"}).
		On(`printf '%s' "$HOME"`, testutil.Response{Stdout: "/home/tester"}).
		OnFunc(func(cmd string) bool { return strings.Contains(cmd, "test -") },
			func(string) testutil.Response { return testutil.Fail }).
		On("test -d /etc/sudoers.d", testutil.OK).
		OnFunc(func(cmd string) bool { return cmd == "git config --global user.name" },
			func(string) testutil.Response { return testutil.Fail })

	// Keep the user's own config file out of the run
	h.write(t, "config.toml", "[prompt]\nmode = \"ask\"\n")
	return h
}

func (h *harness) write(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(h.dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func (h *harness) execute(args ...string) error {
	cmd := newRootCmd(deps{
		dial: func(_ context.Context, target config.Target, _ io.Writer) (transport.Runner, error) {
			h.target = target
			return h.runner, nil
		},
		stdout: h.stdout,
		stderr: h.stderr,
	})
	cmd.SetArgs(append([]string{"--config", filepath.Join(h.dir, "config.toml")}, args...))
	return cmd.Execute()
}

func TestVersionCommand(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.execute("version"))
	assert.Contains(t, h.stdout.String(), "homestead version")
	assert.Empty(t, h.runner.Calls)
}

func TestNoCommand(t *testing.T) {
	h := newHarness(t)
	err := h.execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), MsgNoCommand)
}

func TestManifestCommand(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.execute("manifest"))
	assert.Contains(t, h.stdout.String(), "oh-my-zsh")
}

func TestHelpTopics(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.execute("help", "topics"))
	out := h.stdout.String()
	assert.Contains(t, out, "backups")
	assert.Contains(t, out, "manifest")

	h.stdout.Reset()
	require.NoError(t, h.execute("help", "backups"))
	assert.Contains(t, h.stdout.String(), ".bak")
}

func TestTerraformCommand(t *testing.T) {
	h := newHarness(t)
	m := h.write(t, "manifest.yaml", tinyManifest)

	err := h.execute("terraform", "--manifest", m, "--yes", "--name", "Tester", "--email", "tester@example.com")
	require.NoError(t, err)

	assert.True(t, h.target.IsLocal())
	assert.True(t, h.runner.Ran("apt-get install"))
	assert.True(t, h.runner.Ran("git config --global user.email tester@example.com"))
	assert.True(t, h.runner.Ran("chsh -s"))
	assert.True(t, h.runner.Ran("ln -s ~/.subleenv/.zshrc .zshrc"))
	assert.False(t, h.runner.Ran("mv --"), "nothing to rotate")

	out := h.stdout.String()
	assert.Contains(t, out, "steps completed on fake")
	assert.Contains(t, out, "1 paths installed")
}

func TestTerraformDeclinesGitIdentity(t *testing.T) {
	h := newHarness(t)
	m := h.write(t, "manifest.yaml", tinyManifest)

	require.NoError(t, h.execute("terraform", "--manifest", m, "--no"))
	assert.False(t, h.runner.Ran("git config --global user.email"))
	assert.Contains(t, h.stderr.String(), "Git user setting skipped")
}

func TestTerraformTargetFlags(t *testing.T) {
	h := newHarness(t)
	m := h.write(t, "manifest.yaml", "packages: []\n")

	require.NoError(t, h.execute("terraform", "--manifest", m, "--yes",
		"--host", "box.example.com", "--port", "2222", "--user", "deploy"))
	assert.Equal(t, "box.example.com", h.target.Host)
	assert.Equal(t, 2222, h.target.Port)
	assert.Equal(t, "deploy", h.target.User)
}

func TestTerraformBadManifest(t *testing.T) {
	h := newHarness(t)
	m := h.write(t, "manifest.yaml", "links:\n  - source: a\n    path: x\n  - source: b\n    path: x\n")

	err := h.execute("terraform", "--manifest", m, "--yes")
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrManifestInvalid))
	assert.Empty(t, h.runner.Calls, "nothing runs before the manifest validates")
}

func TestYesAndNoConflict(t *testing.T) {
	h := newHarness(t)
	err := h.execute("terraform", "--yes", "--no")
	require.Error(t, err)
	assert.Empty(t, h.runner.Calls)
}

func TestSetupPyPyWithoutPyPySection(t *testing.T) {
	h := newHarness(t)
	m := h.write(t, "manifest.yaml", "packages: [git]\n")

	err := h.execute("setup-pypy", "--manifest", m, "--yes")
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrManifestInvalid))
}

func TestSetupPyPyCommand(t *testing.T) {
	h := newHarness(t)
	h.runner.
		On("grep -rqs", testutil.Fail).
		On("command -v pypy", testutil.Response{Stdout: "/usr/bin/pypy\n"})
	m := h.write(t, "manifest.yaml", `
pypy:
  ppa: ppa:pypy/ppa
  packages: [pypy]
  virtualenv: env-pypy
`)

	require.NoError(t, h.execute("setup-pypy", "--manifest", m))
	assert.True(t, h.runner.Ran("add-apt-repository --yes ppa:pypy/ppa"))
	assert.True(t, h.runner.Ran("virtualenv --quiet --python=/usr/bin/pypy env-pypy"))
	assert.Contains(t, h.stdout.String(), "3 steps completed on fake")
}

func TestDialLocal(t *testing.T) {
	r, err := Dial(context.Background(), config.Target{Host: "local"}, io.Discard)
	require.NoError(t, err)
	defer r.Close()
	assert.Equal(t, transport.LocalHost, r.Host())
}

func TestDialLocalRunsInHome(t *testing.T) {
	home := t.TempDir()
	elsewhere := t.TempDir()
	t.Setenv("HOME", home)
	t.Chdir(elsewhere)
	require.NoError(t, os.WriteFile(filepath.Join(home, "zshrc.src"), []byte("config\n"), 0o644))

	ctx := context.Background()
	r, err := Dial(ctx, config.Target{Host: "local"}, io.Discard)
	require.NoError(t, err)
	defer r.Close()

	sess := session.New(r, session.Options{})
	require.NoError(t, sess.Discover(ctx))
	assert.Equal(t, filepath.Join(home, ".zshrc"), sess.Resolve(".zshrc"))

	_, err = backup.With(ctx, sess, ".zshrc", func(ctx context.Context) error {
		_, err := sess.Run(ctx, transport.Join("ln", "-s", "zshrc.src", ".zshrc"))
		return err
	})
	require.NoError(t, err)

	target, err := os.Readlink(filepath.Join(home, ".zshrc"))
	require.NoError(t, err)
	assert.Equal(t, "zshrc.src", target)
	_, err = os.Lstat(filepath.Join(elsewhere, ".zshrc"))
	assert.True(t, os.IsNotExist(err), "nothing is written to the working directory")
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, ".ssh/id_ed25519"), expandHome("~/.ssh/id_ed25519"))
	assert.Equal(t, "/etc/key", expandHome("/etc/key"))
	assert.Equal(t, "", expandHome(""))
}
