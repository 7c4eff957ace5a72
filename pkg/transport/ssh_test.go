package transport

import (
	"io"
	"net"
	"path/filepath"
	"testing"

	"github.com/arthur-debert/homestead/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTarget(t *testing.T) {
	tests := []struct {
		target   string
		wantUser string
		wantHost string
		wantPort int
		wantErr  bool
	}{
		{target: "devbox", wantHost: "devbox"},
		{target: "sub@devbox", wantUser: "sub", wantHost: "devbox"},
		{target: "sub@devbox:2222", wantUser: "sub", wantHost: "devbox", wantPort: 2222},
		{target: "10.0.0.5:22", wantHost: "10.0.0.5", wantPort: 22},
		{target: "[::1]:2200", wantHost: "::1", wantPort: 2200},
		{target: "sub@", wantErr: true},
		{target: "devbox:notaport", wantErr: true},
		{target: "devbox:70000", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			user, host, port, err := ParseTarget(tt.target)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantUser, user)
			assert.Equal(t, tt.wantHost, host)
			assert.Equal(t, tt.wantPort, port)
		})
	}
}

func TestAuthMethodsRequireCredentials(t *testing.T) {
	t.Setenv("SSH_AUTH_SOCK", "")

	_, _, err := authMethods(SSHOptions{})
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrTransport))

	_, _, err = authMethods(SSHOptions{IdentityFile: filepath.Join(t.TempDir(), "missing")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read identity file")
}

func TestHostKeyCallback(t *testing.T) {
	cb, err := hostKeyCallback(SSHOptions{InsecureIgnoreHostKey: true})
	require.NoError(t, err)
	assert.NotNil(t, cb)

	_, err = hostKeyCallback(SSHOptions{})
	require.Error(t, err)

	_, err = hostKeyCallback(SSHOptions{KnownHosts: filepath.Join(t.TempDir(), "known_hosts")})
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrTransport))
}

func TestAuthMethodsHandsBackAgentConnection(t *testing.T) {
	sock := filepath.Join(t.TempDir(), "agent.sock")
	ln, err := net.Listen("unix", sock)
	require.NoError(t, err)
	defer ln.Close()
	t.Setenv("SSH_AUTH_SOCK", sock)

	accepted := make(chan net.Conn, 1)
	go func() {
		if c, err := ln.Accept(); err == nil {
			accepted <- c
		}
	}()

	methods, agentConn, err := authMethods(SSHOptions{})
	require.NoError(t, err)
	assert.Len(t, methods, 1)
	require.NotNil(t, agentConn)
	require.NoError(t, agentConn.Close())

	server := <-accepted
	defer server.Close()
	_, err = server.Read(make([]byte, 1))
	assert.ErrorIs(t, err, io.EOF)
}

func TestAuthMethodsClosesAgentOnKeyError(t *testing.T) {
	sock := filepath.Join(t.TempDir(), "agent.sock")
	ln, err := net.Listen("unix", sock)
	require.NoError(t, err)
	defer ln.Close()
	t.Setenv("SSH_AUTH_SOCK", sock)

	accepted := make(chan net.Conn, 1)
	go func() {
		if c, err := ln.Accept(); err == nil {
			accepted <- c
		}
	}()

	_, agentConn, err := authMethods(SSHOptions{IdentityFile: filepath.Join(t.TempDir(), "missing")})
	require.Error(t, err)
	assert.Nil(t, agentConn)

	server := <-accepted
	defer server.Close()
	_, err = server.Read(make([]byte, 1))
	assert.ErrorIs(t, err, io.EOF)
}
