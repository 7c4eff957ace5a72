package session_test

import (
	"context"
	"testing"

	"github.com/arthur-debert/homestead/pkg/errors"
	"github.com/arthur-debert/homestead/pkg/session"
	"github.com/arthur-debert/homestead/pkg/testutil"
	"github.com/arthur-debert/homestead/pkg/transport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrap(t *testing.T) {
	runner := testutil.NewFakeRunner()
	sess := session.New(runner, session.Options{User: "sub", Home: "/home/sub"})

	tests := []struct {
		name string
		sess *session.Session
		cmd  string
		want string
	}{
		{
			name: "plain",
			sess: sess,
			cmd:  "ln -s ~/.subleenv/zshrc .zshrc",
			want: "ln -s ~/.subleenv/zshrc .zshrc",
		},
		{
			name: "in directory",
			sess: sess.Cd(".vim/bundle"),
			cmd:  "git pull",
			want: "cd .vim/bundle && git pull",
		},
		{
			name: "sudo",
			sess: sess.Sudo(),
			cmd:  "ln -s ~/.subleenv/limits.conf /etc/security/limits.conf",
			want: `sudo -E sh -c 'ln -s ~/.subleenv/limits.conf /etc/security/limits.conf'`,
		},
		{
			name: "sudo in directory with quotes",
			sess: sess.Cd("/tmp/it's").Sudo(),
			cmd:  "ls",
			want: `sudo -E sh -c 'cd '\''/tmp/it'\''\'\'''\''s'\'' && ls'`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.sess.Wrap(tt.cmd))
		})
	}
}

func TestSudoPassword(t *testing.T) {
	runner := testutil.NewFakeRunner()
	sess := session.New(runner, session.Options{SudoPassword: "hunter2"})

	_, err := sess.Sudo().Run(context.Background(), "cat > /etc/x", transport.WithStdin([]byte("data")))
	require.NoError(t, err)

	require.Len(t, runner.Calls, 1)
	assert.Equal(t, `sudo -E -S -p '' sh -c 'cat > /etc/x'`, runner.Calls[0].Command)
	assert.Equal(t, "hunter2\ndata", runner.Calls[0].Stdin)

	_, err = sess.Run(context.Background(), "true")
	require.NoError(t, err)
	assert.Empty(t, runner.Calls[1].Stdin, "password is only sent to sudo")
}

func TestDerivedSessionsDoNotMutate(t *testing.T) {
	sess := session.New(testutil.NewFakeRunner(), session.Options{Home: "/home/sub"})
	nested := sess.Cd(".vim").Cd("bundle")
	elevated := nested.Sudo()

	assert.Equal(t, "", sess.Dir())
	assert.False(t, sess.IsSudo())
	assert.Equal(t, ".vim/bundle", nested.Dir())
	assert.False(t, nested.IsSudo())
	assert.True(t, elevated.IsSudo())
	assert.Equal(t, "/opt", nested.Cd("/opt").Dir())
}

func TestResolve(t *testing.T) {
	sess := session.New(testutil.NewFakeRunner(), session.Options{Home: "/home/sub"})

	assert.Equal(t, "/home/sub/.zshrc", sess.Resolve(".zshrc"))
	assert.Equal(t, "/home/sub/.subleenv", sess.Resolve("~/.subleenv"))
	assert.Equal(t, "/home/sub", sess.Resolve("~"))
	assert.Equal(t, "/etc/hosts", sess.Resolve("/etc/../etc/hosts"))
	assert.Equal(t, "/home/sub/.vim/bundle/Vundle.vim", sess.Cd(".vim/bundle").Resolve("Vundle.vim"))
	assert.Equal(t, "/srv/x", sess.Cd("/srv").Resolve("x"))
}

func TestDiscover(t *testing.T) {
	t.Run("fills user and home", func(t *testing.T) {
		runner := testutil.NewFakeRunner().
			On("id -un", testutil.Response{Stdout: "sub\n"}).
			On("$HOME", testutil.Response{Stdout: "/home/sub"})
		sess := session.New(runner, session.Options{})

		require.NoError(t, sess.Discover(context.Background()))
		assert.Equal(t, "sub", sess.User())
		assert.Equal(t, "/home/sub", sess.Home())
	})

	t.Run("configured values win", func(t *testing.T) {
		runner := testutil.NewFakeRunner()
		sess := session.New(runner, session.Options{User: "root", Home: "/root"})

		require.NoError(t, sess.Discover(context.Background()))
		assert.Empty(t, runner.Calls)
	})

	t.Run("failure is a transport error", func(t *testing.T) {
		runner := testutil.NewFakeRunner().On("id -un", testutil.Fail)
		sess := session.New(runner, session.Options{})

		err := sess.Discover(context.Background())
		require.Error(t, err)
		assert.True(t, errors.IsErrorCode(err, errors.ErrTransport))
	})
}

func TestIsLocal(t *testing.T) {
	assert.True(t, session.New(transport.NewLocal(transport.LocalOptions{}), session.Options{}).IsLocal())
	assert.False(t, session.New(testutil.NewFakeRunner(), session.Options{}).IsLocal())
}
