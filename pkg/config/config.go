package config

import (
	"fmt"
	"strings"

	"github.com/arthur-debert/homestead/pkg/errors"
	"github.com/arthur-debert/homestead/pkg/prompt"
)

// Git backends
const (
	GitBackendShell = "shell"
	GitBackendGoGit = "go-git"
)

// Config is the merged configuration
type Config struct {
	Target    Target    `koanf:"target"`
	Sudo      Sudo      `koanf:"sudo"`
	Identity  Identity  `koanf:"identity"`
	Manifest  Manifest  `koanf:"manifest"`
	Prompt    Prompt    `koanf:"prompt"`
	Git       Git       `koanf:"git"`
	Terraform Terraform `koanf:"terraform"`
}

// Target selects the host commands run on
type Target struct {
	Host                  string `koanf:"host"`
	Port                  int    `koanf:"port"`
	User                  string `koanf:"user"`
	Identity              string `koanf:"identity"`
	KnownHosts            string `koanf:"known_hosts"`
	InsecureIgnoreHostKey bool   `koanf:"insecure_ignore_host_key"`
}

// IsLocal reports whether the target is this machine
func (t Target) IsLocal() bool {
	return t.Host == "" || t.Host == "local"
}

type Sudo struct {
	Prefix   string `koanf:"prefix"`
	Password string `koanf:"password"`
}

// Identity is the git author set when the target has none
type Identity struct {
	Name  string `koanf:"name"`
	Email string `koanf:"email"`
}

type Manifest struct {
	Path string `koanf:"path"`
}

type Prompt struct {
	Mode string `koanf:"mode"`
}

type Git struct {
	Backend string `koanf:"backend"`
}

type Terraform struct {
	Mkdirs bool `koanf:"mkdirs"`
}

// Validate checks values the loaders cannot
func (c *Config) Validate() error {
	var problems []string

	if c.Target.Port < 1 || c.Target.Port > 65535 {
		problems = append(problems, fmt.Sprintf("target.port %d out of range", c.Target.Port))
	}
	switch c.Prompt.Mode {
	case prompt.ModeAsk, prompt.ModeYes, prompt.ModeNo:
	default:
		problems = append(problems, fmt.Sprintf("prompt.mode %q must be ask, yes or no", c.Prompt.Mode))
	}
	switch c.Git.Backend {
	case GitBackendShell, GitBackendGoGit:
	default:
		problems = append(problems, fmt.Sprintf("git.backend %q must be %s or %s", c.Git.Backend, GitBackendShell, GitBackendGoGit))
	}
	if c.Identity.Email != "" && !strings.Contains(c.Identity.Email, "@") {
		problems = append(problems, fmt.Sprintf("identity.email %q is not an address", c.Identity.Email))
	}

	if len(problems) > 0 {
		return errors.Newf(errors.ErrConfigValid, "invalid configuration: %s", strings.Join(problems, "; ")).
			WithDetail("problems", problems)
	}
	return nil
}
