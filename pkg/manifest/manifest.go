// Package manifest holds the resource declarations a provisioning run works
// through: packages, files, directories, downloads, working copies and the
// links that are installed under backup protection.
//
// A manifest is static data. It is read from an embedded default or from a
// user file in YAML or TOML, and checked with Validate before use.
package manifest

import (
	"fmt"
	"os"
	"strconv"
)

// Manifest is the full set of declarations for one environment
type Manifest struct {
	Packages      []string      `yaml:"packages" toml:"packages"`
	LoginShell    string        `yaml:"login_shell" toml:"login_shell"`
	Files         []File        `yaml:"files" toml:"files"`
	Workdirs      []string      `yaml:"workdirs" toml:"workdirs"`
	Virtualenvs   []Virtualenv  `yaml:"virtualenvs" toml:"virtualenvs"`
	Directories   []string      `yaml:"directories" toml:"directories"`
	Downloads     []Download    `yaml:"downloads" toml:"downloads"`
	WorkingCopies []WorkingCopy `yaml:"working_copies" toml:"working_copies"`
	Links         []Link        `yaml:"links" toml:"links"`
	PyPy          PyPy          `yaml:"pypy" toml:"pypy"`
}

// File is a file with literal content
type File struct {
	Path    string `yaml:"path" toml:"path"`
	Content string `yaml:"content" toml:"content"`
	Sudo    bool   `yaml:"sudo" toml:"sudo"`
	// Mode is an octal permission string such as "0644". Empty keeps the
	// target's default.
	Mode string `yaml:"mode" toml:"mode"`
}

// FileMode parses Mode
func (f File) FileMode() (os.FileMode, error) {
	if f.Mode == "" {
		return 0, nil
	}
	m, err := strconv.ParseUint(f.Mode, 8, 32)
	if err != nil || m > 0o7777 {
		return 0, fmt.Errorf("invalid mode %q", f.Mode)
	}
	return os.FileMode(m), nil
}

// Virtualenv is a python virtual environment
type Virtualenv struct {
	Path      string `yaml:"path" toml:"path"`
	Python    string `yaml:"python" toml:"python"`
	PythonCmd string `yaml:"python_cmd" toml:"python_cmd"`
}

// Download is fetched with curl on every run
type Download struct {
	URL  string `yaml:"url" toml:"url"`
	Path string `yaml:"path" toml:"path"`
}

// GitHubRepo names a repository on github.com
type GitHubRepo struct {
	User string `yaml:"user" toml:"user"`
	Repo string `yaml:"repo" toml:"repo"`
}

// WorkingCopy is a git checkout. Exactly one of URL and GitHub is set.
type WorkingCopy struct {
	URL    string      `yaml:"url" toml:"url"`
	GitHub *GitHubRepo `yaml:"github" toml:"github"`
	Path   string      `yaml:"path" toml:"path"`
	// Parent is a directory the clone runs in; Path is relative to it.
	Parent string `yaml:"parent" toml:"parent"`
	Branch string `yaml:"branch" toml:"branch"`
	Update bool   `yaml:"update" toml:"update"`
}

// RepoURL returns the clone URL
func (w WorkingCopy) RepoURL() string {
	if w.URL != "" {
		return w.URL
	}
	if w.GitHub != nil {
		return GitHub(w.GitHub.User, w.GitHub.Repo)
	}
	return ""
}

// Link is a symlink installed at Path pointing to Source. Whatever Path held
// before is rotated to a backup first.
type Link struct {
	Source string `yaml:"source" toml:"source"`
	Path   string `yaml:"path" toml:"path"`
	Sudo   bool   `yaml:"sudo" toml:"sudo"`
}

// PyPy configures the setup-pypy task
type PyPy struct {
	PPA        string   `yaml:"ppa" toml:"ppa"`
	Packages   []string `yaml:"packages" toml:"packages"`
	Virtualenv string   `yaml:"virtualenv" toml:"virtualenv"`
	PythonCmd  string   `yaml:"python_cmd" toml:"python_cmd"`
}

// GitHub returns the https clone URL of user/repo
func GitHub(user, repo string) string {
	return fmt.Sprintf("https://github.com/%s/%s.git", user, repo)
}
