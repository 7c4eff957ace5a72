package provision

import (
	"context"

	"github.com/arthur-debert/homestead/pkg/errors"
	"github.com/arthur-debert/homestead/pkg/require"
	"github.com/arthur-debert/homestead/pkg/transport"
)

// SetupPyPy installs PyPy from its PPA and builds a virtualenv on it
func (t *Task) SetupPyPy(ctx context.Context) (*Report, error) {
	cfg := t.manifest.PyPy
	if cfg.PPA == "" || cfg.Virtualenv == "" {
		return nil, errors.New(errors.ErrManifestInvalid, "manifest has no pypy ppa and virtualenv")
	}
	interpreter := cfg.PythonCmd
	if interpreter == "" {
		interpreter = "pypy"
	}

	report := &Report{Host: t.sess.Host()}
	steps := []step{
		{"pypy ppa", func(ctx context.Context) error { return t.req.PPA(ctx, cfg.PPA) }},
		{"pypy packages", func(ctx context.Context) error {
			if len(cfg.Packages) == 0 {
				return nil
			}
			return t.req.Packages(ctx, cfg.Packages...)
		}},
		{"pypy virtualenv", func(ctx context.Context) error {
			res, err := t.sess.Run(ctx, "command -v "+transport.Quote(interpreter))
			if err != nil {
				return errors.Wrapf(err, errors.ErrRequire, "locate %s", interpreter)
			}
			return t.req.Virtualenv(ctx, t.sess, require.VirtualenvSpec{
				Path:      cfg.Virtualenv,
				Python:    res.Output(),
				PythonCmd: cfg.PythonCmd,
			})
		}},
	}
	return report, t.run(ctx, report, steps)
}
