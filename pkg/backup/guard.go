package backup

import (
	"context"
	stderrors "errors"

	"github.com/arthur-debert/homestead/pkg/errors"
	"github.com/arthur-debert/homestead/pkg/logging"
	"github.com/arthur-debert/homestead/pkg/session"
	"github.com/arthur-debert/homestead/pkg/transport"
	"github.com/rs/zerolog"
)

// Outcome describes what one guarded install did to the prior content
type Outcome struct {
	Target string
	// Backup is where the prior content was moved, empty if nothing existed.
	Backup string
	// Rotated is true when prior content was moved aside.
	Rotated bool
	// Kept is true when the backup differs from the new content and stays.
	Kept bool
}

// Guard scopes one install attempt at a target path. It is created by Begin,
// which rotates out any prior content, and finished by Reconcile.
type Guard struct {
	sh      session.Shell
	target  string
	backup  string
	done    bool
	outcome Outcome
	logger  zerolog.Logger
}

// Begin rotates any existing entry at path out of the way. When the move
// fails no guard is returned and the install must not proceed.
func Begin(ctx context.Context, sh session.Shell, path string) (*Guard, error) {
	backupPath, err := BackupIfExists(ctx, sh, path)
	if err != nil {
		return nil, err
	}
	return &Guard{
		sh:     sh,
		target: path,
		backup: backupPath,
		logger: logging.GetLogger("backup.guard"),
	}, nil
}

// Target returns the guarded path
func (g *Guard) Target() string {
	return g.target
}

// Backup returns the rotated backup path, empty if nothing was rotated
func (g *Guard) Backup() string {
	return g.backup
}

// Reconcile compares the new content at the target with the backup. An
// identical backup is deleted; a different one, or one that could not be
// compared, is kept. Calling Reconcile again returns the first outcome.
func (g *Guard) Reconcile(ctx context.Context) (Outcome, error) {
	if g.done {
		return g.outcome, nil
	}
	g.done = true

	g.outcome = Outcome{
		Target:  g.target,
		Backup:  g.backup,
		Rotated: g.backup != "",
	}
	if g.backup == "" {
		return g.outcome, nil
	}

	if !Identical(ctx, g.sh, g.target, g.backup) {
		g.outcome.Kept = true
		g.logger.Info().
			Str("path", g.target).
			Str("backup", g.backup).
			Msg("Content changed, keeping backup")
		return g.outcome, nil
	}

	if _, err := g.sh.Run(ctx, transport.Join("rm", "-f", "--", g.backup)); err != nil {
		g.outcome.Kept = true
		return g.outcome, errors.Wrapf(err, errors.ErrBackupDiscard, "remove unneeded backup %s", g.backup)
	}

	g.logger.Debug().
		Str("path", g.target).
		Str("backup", g.backup).
		Msg("Content unchanged, discarded backup")

	return g.outcome, nil
}

// Identical reports whether a and b are the same kind of entry with the same
// content on the target: two symbolic links with the same destination, or two
// non-links whose bytes compare equal. A comparison that cannot run counts as
// different.
func Identical(ctx context.Context, sh session.Shell, a, b string) bool {
	linkA, linkB := IsLink(ctx, sh, a), IsLink(ctx, sh, b)
	if linkA != linkB {
		return false
	}
	if linkA {
		return sameDestination(ctx, sh, a, b)
	}

	res, err := sh.Run(ctx, transport.Join("cmp", "-s", "--", a, b), transport.Quiet())
	if err != nil {
		logger := logging.GetLogger("backup")
		logger.Warn().
			Err(err).
			Str("a", a).
			Str("b", b).
			Msg("Comparison failed, treating contents as different")
		return false
	}
	return res.Succeeded()
}

func sameDestination(ctx context.Context, sh session.Shell, a, b string) bool {
	var dest [2]string
	for i, p := range []string{a, b} {
		res, err := sh.Run(ctx, transport.Join("readlink", "--", p), transport.Quiet())
		if err != nil || res.Failed() {
			return false
		}
		dest[i] = res.Output()
	}
	return dest[0] == dest[1]
}

// With rotates out the prior content at path, runs install, and reconciles
// afterwards. Reconciliation also runs when install fails or panics; errors
// from both are joined.
func With(ctx context.Context, sh session.Shell, path string, install func(context.Context) error) (out Outcome, err error) {
	g, err := Begin(ctx, sh, path)
	if err != nil {
		return Outcome{Target: path}, err
	}

	defer func() {
		outcome, reconcileErr := g.Reconcile(ctx)
		out = outcome
		err = stderrors.Join(err, reconcileErr)
	}()

	return Outcome{}, install(ctx)
}
