package backup_test

import (
	"context"
	"testing"

	"github.com/arthur-debert/homestead/pkg/backup"
	"github.com/arthur-debert/homestead/pkg/errors"
	"github.com/arthur-debert/homestead/pkg/session"
	"github.com/arthur-debert/homestead/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeSession(runner *testutil.FakeRunner) *session.Session {
	return session.New(runner, session.Options{User: "tester", Home: "/home/tester"})
}

func TestExistsTreatsTransportFailureAsAbsent(t *testing.T) {
	runner := testutil.NewFakeRunner()
	runner.Default = testutil.Response{Err: assert.AnError}

	assert.False(t, backup.Exists(context.Background(), fakeSession(runner), "/etc/shadow"))
	assert.Len(t, runner.Calls, 3)
	for _, c := range runner.Calls {
		assert.True(t, c.Quiet)
	}
}

func TestExistsShortCircuits(t *testing.T) {
	runner := testutil.NewFakeRunner()

	assert.True(t, backup.Exists(context.Background(), fakeSession(runner), ".zshrc"))
	assert.Equal(t, []string{"test -f .zshrc"}, runner.Commands())
}

func TestMoveFailureStopsInstall(t *testing.T) {
	runner := testutil.NewFakeRunner().
		On("test -f .zshrc.bak", testutil.Fail).
		On("test -d .zshrc.bak", testutil.Fail).
		On("test -L .zshrc.bak", testutil.Fail).
		On("mv ", testutil.Response{ExitCode: 1, Stderr: "Permission denied"})

	installed := false
	out, err := backup.With(context.Background(), fakeSession(runner), ".zshrc", func(context.Context) error {
		installed = true
		return nil
	})

	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrBackupMove))
	assert.Equal(t, ".zshrc.bak", errors.GetErrorDetails(err)["backup"])
	assert.False(t, installed)
	assert.False(t, out.Rotated)
	assert.False(t, runner.Ran("cmp "))
}

func TestCompareFailureKeepsBackup(t *testing.T) {
	runner := testutil.NewFakeRunner().
		OnFunc(func(cmd string) bool { return cmd != "test -f .vimrc" && len(cmd) > 5 && cmd[:5] == "test " },
			func(string) testutil.Response { return testutil.Fail }).
		On("cmp ", testutil.Response{Err: assert.AnError})

	out, err := backup.With(context.Background(), fakeSession(runner), ".vimrc", func(context.Context) error {
		return nil
	})

	require.NoError(t, err)
	assert.True(t, out.Kept)
	assert.Equal(t, ".vimrc.bak", out.Backup)
	assert.False(t, runner.Ran("rm "))
}

func TestDiscardFailureIsReported(t *testing.T) {
	runner := testutil.NewFakeRunner().
		OnFunc(func(cmd string) bool { return cmd != "test -f .profile" && len(cmd) > 5 && cmd[:5] == "test " },
			func(string) testutil.Response { return testutil.Fail }).
		On("rm -f", testutil.Response{ExitCode: 1, Stderr: "read-only file system"})

	out, err := backup.With(context.Background(), fakeSession(runner), ".profile", func(context.Context) error {
		return nil
	})

	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrBackupDiscard))
	assert.True(t, out.Kept)
}

func TestRotationProbesUntilFree(t *testing.T) {
	taken := map[string]bool{"x": true, "x.bak": true, "x.bak.1": true}
	runner := testutil.NewFakeRunner().
		OnFunc(func(cmd string) bool { return len(cmd) > 8 && cmd[:8] == "test -f " },
			func(cmd string) testutil.Response {
				if taken[cmd[8:]] {
					return testutil.OK
				}
				return testutil.Fail
			}).
		On("test -d", testutil.Fail).
		On("test -L", testutil.Fail)

	got, err := backup.BackupIfExists(context.Background(), fakeSession(runner), "x")
	require.NoError(t, err)
	assert.Equal(t, "x.bak.2", got)
	assert.Equal(t, "mv -- x x.bak.2", runner.Calls[len(runner.Calls)-1].Command)
}
