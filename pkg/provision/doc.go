// Package provision runs the provisioning tasks: terraform, which builds the
// full environment a manifest declares, and setup-pypy, which adds a PyPy
// interpreter and virtualenv.
//
// Steps run one at a time on a single session. The first failing step stops
// the run; everything already done stays done, and a re-run skips it because
// every step is idempotent. Links are installed under backup.With, so prior
// content at a link path is rotated aside and only kept when it differs from
// what was installed.
package provision
