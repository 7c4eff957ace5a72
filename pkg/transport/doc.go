// Package transport runs shell commands on a target host.
//
// A Runner takes a command string, executes it through the target's shell and
// returns its exit status and captured output. Two runners exist: Local, which
// spawns `sh -c` on this machine, and SSH, which opens one SSH session per
// command on a remote host. Runners are synchronous; every call is a full
// round trip and the caller blocks until the command exits.
//
// By default a non-zero exit status is an error. Quiet() suppresses output
// echo and turns a non-zero exit status into a plain Result, which is how
// existence probes and comparisons ask yes/no questions of the target.
package transport
