// Package backup makes installs over existing files safe to repeat.
//
// Before an install writes to a path, whatever is already there is moved
// aside to a fresh backup name (path.bak, path.bak.1, path.bak.2, ...). After
// the install, the new entry is compared with the backup (two links by their
// destination, two files byte for byte, a link and a file never match):
// identical means the rotation was unnecessary and the backup is
// deleted, different content means the backup is kept as the record of what
// was replaced.
//
// Re-running a provisioning run with the same desired state therefore leaves
// no backup clutter behind, while a run that changes a file always keeps
// exactly one snapshot of what it overwrote.
//
// All checks run on the target host through a session.Shell. Existence probes
// that cannot complete count as "absent"; a comparison that cannot complete
// counts as "different" so data is never deleted on doubt. A failed move is
// fatal: the install must not run over content that could not be relocated.
//
// The probe-then-claim naming is race-free only while a single provisioning
// run touches the target at a time.
package backup
