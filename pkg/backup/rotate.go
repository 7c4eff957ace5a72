package backup

import (
	"context"
	"strconv"

	"github.com/arthur-debert/homestead/pkg/errors"
	"github.com/arthur-debert/homestead/pkg/logging"
	"github.com/arthur-debert/homestead/pkg/session"
	"github.com/arthur-debert/homestead/pkg/transport"
)

// Suffix is appended to a path to name its first backup
const Suffix = ".bak"

// Name returns the n-th backup name for path: path.bak for 0, path.bak.n after.
func Name(path string, n int) string {
	if n == 0 {
		return path + Suffix
	}
	return path + Suffix + "." + strconv.Itoa(n)
}

// NextBackupPath returns the first backup name for path not taken on the target
func NextBackupPath(ctx context.Context, sh session.Shell, path string) string {
	n := 0
	candidate := Name(path, n)
	for Exists(ctx, sh, candidate) {
		n++
		candidate = Name(path, n)
	}
	return candidate
}

// BackupIfExists moves whatever is at path to a fresh backup name and returns
// that name. It returns "" without touching the target when nothing is there.
func BackupIfExists(ctx context.Context, sh session.Shell, path string) (string, error) {
	logger := logging.GetLogger("backup")

	if !Exists(ctx, sh, path) {
		logger.Debug().Str("path", path).Msg("Nothing to back up")
		return "", nil
	}

	backupPath := NextBackupPath(ctx, sh, path)

	if _, err := sh.Run(ctx, transport.Join("mv", "--", path, backupPath)); err != nil {
		moveErr := errors.Newf(errors.ErrBackupMove, "move %s to %s", path, backupPath).
			WithDetail("path", path).
			WithDetail("backup", backupPath)
		moveErr.Wrapped = err
		return "", moveErr
	}

	logger.Info().
		Str("path", path).
		Str("backup", backupPath).
		Msg("Rotated existing entry")

	return backupPath, nil
}
