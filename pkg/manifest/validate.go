package manifest

import (
	"fmt"
	"path"
	"strings"

	"github.com/arthur-debert/homestead/pkg/errors"
)

// Validate rejects declarations a run could not act on
func (m *Manifest) Validate() error {
	var problems []string
	add := func(format string, args ...interface{}) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	for i, p := range m.Packages {
		if strings.TrimSpace(p) == "" {
			add("packages[%d]: empty package name", i)
		}
	}
	if strings.ContainsAny(m.LoginShell, " /") {
		add("login_shell: %q must be a program name", m.LoginShell)
	}

	for i, f := range m.Files {
		if f.Path == "" {
			add("files[%d]: path is empty", i)
		}
		if _, err := f.FileMode(); err != nil {
			add("files[%d]: %v", i, err)
		}
	}
	for i, d := range m.Workdirs {
		if d == "" {
			add("workdirs[%d]: path is empty", i)
		}
	}
	for i, v := range m.Virtualenvs {
		if v.Path == "" {
			add("virtualenvs[%d]: path is empty", i)
		}
	}
	for i, d := range m.Directories {
		if d == "" {
			add("directories[%d]: path is empty", i)
		}
	}
	for i, d := range m.Downloads {
		if d.URL == "" || d.Path == "" {
			add("downloads[%d]: url and path are required", i)
		}
	}

	for i, w := range m.WorkingCopies {
		switch {
		case w.URL != "" && w.GitHub != nil:
			add("working_copies[%d]: set either url or github, not both", i)
		case w.URL == "" && w.GitHub == nil:
			add("working_copies[%d]: url or github is required", i)
		case w.GitHub != nil && (w.GitHub.User == "" || w.GitHub.Repo == ""):
			add("working_copies[%d]: github needs user and repo", i)
		}
		if w.Path == "" {
			add("working_copies[%d]: path is empty", i)
		}
	}

	seen := make(map[string]int)
	for i, l := range m.Links {
		if l.Source == "" || l.Path == "" {
			add("links[%d]: source and path are required", i)
			continue
		}
		key := path.Clean(l.Path)
		if j, dup := seen[key]; dup {
			add("links[%d]: path %s already linked by links[%d]", i, l.Path, j)
			continue
		}
		seen[key] = i
	}

	if m.PyPy.PPA != "" && !strings.HasPrefix(m.PyPy.PPA, "ppa:") {
		add("pypy.ppa: %q must start with ppa:", m.PyPy.PPA)
	}

	if len(problems) > 0 {
		return errors.Newf(errors.ErrManifestInvalid, "invalid manifest: %s", strings.Join(problems, "; ")).
			WithDetail("problems", problems)
	}
	return nil
}
