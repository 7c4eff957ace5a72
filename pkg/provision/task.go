package provision

import (
	"context"
	"io"

	"github.com/arthur-debert/homestead/pkg/backup"
	"github.com/arthur-debert/homestead/pkg/errors"
	"github.com/arthur-debert/homestead/pkg/logging"
	"github.com/arthur-debert/homestead/pkg/manifest"
	"github.com/arthur-debert/homestead/pkg/prompt"
	"github.com/arthur-debert/homestead/pkg/require"
	"github.com/arthur-debert/homestead/pkg/session"
	"github.com/rs/zerolog"
)

// Options wires a Task
type Options struct {
	Session   *session.Session
	Requirer  require.Requirer
	Confirmer prompt.Confirmer
	Manifest  *manifest.Manifest
	// Out receives operator-facing warnings. Defaults to io.Discard.
	Out io.Writer
}

// Task runs provisioning steps against one session
type Task struct {
	sess     *session.Session
	req      require.Requirer
	confirm  prompt.Confirmer
	manifest *manifest.Manifest
	out      io.Writer
	logger   zerolog.Logger
}

// Report is what a run did
type Report struct {
	Host string
	// Steps lists the steps that completed, in order.
	Steps []string
	// Links holds the outcome of every guarded link install.
	Links []backup.Outcome
}

// KeptBackups returns the link outcomes whose prior content was kept
func (r *Report) KeptBackups() []backup.Outcome {
	var kept []backup.Outcome
	for _, o := range r.Links {
		if o.Kept {
			kept = append(kept, o)
		}
	}
	return kept
}

type step struct {
	name string
	run  func(ctx context.Context) error
}

// New creates a Task
func New(opts Options) (*Task, error) {
	switch {
	case opts.Session == nil:
		return nil, errors.New(errors.ErrInternal, "provision: session is required")
	case opts.Requirer == nil:
		return nil, errors.New(errors.ErrInternal, "provision: requirer is required")
	case opts.Confirmer == nil:
		return nil, errors.New(errors.ErrInternal, "provision: confirmer is required")
	case opts.Manifest == nil:
		return nil, errors.New(errors.ErrInternal, "provision: manifest is required")
	}
	out := opts.Out
	if out == nil {
		out = io.Discard
	}
	return &Task{
		sess:     opts.Session,
		req:      opts.Requirer,
		confirm:  opts.Confirmer,
		manifest: opts.Manifest,
		out:      out,
		logger:   logging.GetLogger("provision").With().Str("host", opts.Session.Host()).Logger(),
	}, nil
}

// run executes steps in order, stopping at the first failure
func (t *Task) run(ctx context.Context, report *Report, steps []step) error {
	for _, s := range steps {
		if err := ctx.Err(); err != nil {
			return errors.Wrapf(err, errors.ErrStepFailed, "step %s", s.name)
		}

		t.logger.Info().Str("step", s.name).Msg("Running step")
		done := logging.LogOperationStart(t.logger, s.name)
		err := s.run(ctx)
		done()

		if err != nil {
			t.logger.Error().Err(err).Str("step", s.name).Msg("Step failed")
			return errors.Wrapf(err, errors.ErrStepFailed, "step %s", s.name)
		}
		report.Steps = append(report.Steps, s.name)
	}
	return nil
}
