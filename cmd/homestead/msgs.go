package homestead

import (
	_ "embed"
	"strings"
)

// Short messages (one-liners)
const (
	MsgRootShort       = "Provision a development environment, safely re-runnable"
	MsgTerraformShort  = "Build the full environment from the manifest"
	MsgSetupPyPyShort  = "Install PyPy and a PyPy virtualenv"
	MsgVersionShort    = "Print version information"
	MsgCompletionShort = "Generate shell completion script"
	MsgManifestShort   = "Print the built-in manifest"

	MsgNoCommand = "no command specified"

	// Flag descriptions
	MsgFlagVerbose    = "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)"
	MsgFlagConfig     = "Config file (default $XDG_CONFIG_HOME/homestead/config.toml)"
	MsgFlagHost       = `Target host, "local" or [user@]host[:port]`
	MsgFlagPort       = "SSH port"
	MsgFlagUser       = "SSH login user"
	MsgFlagIdentity   = "SSH private key file"
	MsgFlagKnownHosts = "known_hosts file (default ~/.ssh/known_hosts)"
	MsgFlagInsecure   = "Skip SSH host key verification"
	MsgFlagSudoPrefix = "Command used to elevate"
	MsgFlagManifest   = "Manifest file (.yaml, .yml or .toml)"
	MsgFlagYes        = "Answer yes to every prompt"
	MsgFlagNo         = "Answer no to every prompt"
	MsgFlagGitBackend = "How working copies are cloned: shell or go-git"
	MsgFlagName       = "Git user name to set when none is configured"
	MsgFlagEmail      = "Git e-mail to set when none is configured"
	MsgFlagMkdirs     = "Create working directories and virtualenvs"

	// Version output
	MsgVersionFormat = "homestead version %s\n  commit: %s\n  built:  %s\n"
)

// Long messages from embedded files
var (
	//go:embed msgs/root-long.txt
	msgRootLongRaw string
	MsgRootLong    = strings.TrimSpace(msgRootLongRaw)

	//go:embed msgs/terraform-long.txt
	msgTerraformLongRaw string
	MsgTerraformLong    = strings.TrimSpace(msgTerraformLongRaw)

	//go:embed msgs/terraform-example.txt
	msgTerraformExampleRaw string
	MsgTerraformExample    = strings.TrimRight(msgTerraformExampleRaw, "\n")

	//go:embed msgs/setup-pypy-long.txt
	msgSetupPyPyLongRaw string
	MsgSetupPyPyLong    = strings.TrimSpace(msgSetupPyPyLongRaw)

	//go:embed msgs/completion-long.txt
	msgCompletionLongRaw string
	MsgCompletionLong    = strings.TrimSpace(msgCompletionLongRaw)
)
