package require

import (
	"context"
	stderrors "errors"
	"io"

	"github.com/arthur-debert/homestead/pkg/errors"
	"github.com/arthur-debert/homestead/pkg/logging"
	"github.com/arthur-debert/homestead/pkg/session"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/rs/zerolog"
)

// LocalGit is a Requirer that handles working copies in-process with go-git
// when the session targets this machine. Everything else, and working copies
// on remote sessions, goes to the wrapped Requirer.
type LocalGit struct {
	Requirer
	progress io.Writer
	logger   zerolog.Logger
}

// NewLocalGit wraps base. Clone progress is written to progress when non-nil.
func NewLocalGit(base Requirer, progress io.Writer) *LocalGit {
	return &LocalGit{
		Requirer: base,
		progress: progress,
		logger:   logging.GetLogger("require.localgit"),
	}
}

// WorkingCopy implements Requirer
func (g *LocalGit) WorkingCopy(ctx context.Context, sh *session.Session, spec WorkingCopySpec) error {
	if !sh.IsLocal() {
		return g.Requirer.WorkingCopy(ctx, sh, spec)
	}
	if spec.URL == "" || spec.Path == "" {
		return errors.Newf(errors.ErrInvalidInput, "working copy needs url and path (url=%q path=%q)", spec.URL, spec.Path)
	}

	dir := sh.Resolve(spec.Path)
	repo, err := git.PlainOpen(dir)
	switch {
	case stderrors.Is(err, git.ErrRepositoryNotExists):
		return g.clone(ctx, dir, spec)
	case err != nil:
		return errors.Wrapf(err, errors.ErrRequire, "open working copy %s", dir)
	case !spec.Update:
		return nil
	}

	wt, err := repo.Worktree()
	if err != nil {
		return errors.Wrapf(err, errors.ErrRequire, "open worktree %s", dir)
	}

	opts := &git.PullOptions{RemoteName: git.DefaultRemoteName, Progress: g.progress}
	if spec.Branch != "" {
		opts.ReferenceName = plumbing.NewBranchReferenceName(spec.Branch)
	}

	g.logger.Info().Str("path", dir).Msg("Updating working copy")
	err = wt.PullContext(ctx, opts)
	if err != nil && !stderrors.Is(err, git.NoErrAlreadyUpToDate) {
		return errors.Wrapf(err, errors.ErrRequire, "update working copy %s", dir)
	}
	return nil
}

func (g *LocalGit) clone(ctx context.Context, dir string, spec WorkingCopySpec) error {
	opts := &git.CloneOptions{URL: spec.URL, Progress: g.progress}
	if spec.Branch != "" {
		opts.ReferenceName = plumbing.NewBranchReferenceName(spec.Branch)
	}

	g.logger.Info().Str("url", spec.URL).Str("path", dir).Msg("Cloning working copy")
	if _, err := git.PlainCloneContext(ctx, dir, false, opts); err != nil {
		return errors.Wrapf(err, errors.ErrRequire, "clone %s", spec.URL)
	}
	return nil
}

var _ Requirer = (*LocalGit)(nil)
