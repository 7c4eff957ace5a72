// Package require ensures resources exist on the target: apt packages and
// PPAs, files with literal content, directories, git working copies and
// python virtualenvs.
//
// Every primitive checks the current state first and acts only when the
// resource is missing or differs, so calling it again is a no-op. Failures
// carry the REQUIRE error code and abort the provisioning run.
package require

import (
	"context"
	"os"

	"github.com/arthur-debert/homestead/pkg/session"
)

// FileSpec describes a file with literal content
type FileSpec struct {
	Path    string
	Content []byte
	// UseSudo writes the file as root.
	UseSudo bool
	// Mode is applied before the file is moved into place when non-zero.
	Mode os.FileMode
}

// WorkingCopySpec describes a git checkout
type WorkingCopySpec struct {
	URL  string
	Path string
	// Branch is checked out on clone when set.
	Branch string
	// Update pulls an existing checkout.
	Update bool
}

// VirtualenvSpec describes a python virtualenv
type VirtualenvSpec struct {
	Path string
	// Python is the interpreter the environment is built for.
	Python string
	// PythonCmd runs pip to install virtualenv itself. Defaults to python3.
	PythonCmd string
}

// Requirer is the set of ensure-present primitives provisioning relies on.
// Path arguments are resolved through the given session, so a session
// derived with Cd places relative paths inside that directory.
type Requirer interface {
	UpToDateIndex(ctx context.Context) error
	Packages(ctx context.Context, names ...string) error
	PPA(ctx context.Context, name string) error
	File(ctx context.Context, sh *session.Session, spec FileSpec) error
	Directory(ctx context.Context, sh *session.Session, path string) error
	WorkingCopy(ctx context.Context, sh *session.Session, spec WorkingCopySpec) error
	Virtualenv(ctx context.Context, sh *session.Session, spec VirtualenvSpec) error
}
