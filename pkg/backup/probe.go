package backup

import (
	"context"

	"github.com/arthur-debert/homestead/pkg/session"
	"github.com/arthur-debert/homestead/pkg/transport"
)

// entryTests are the shell tests whose disjunction means "something is there"
var entryTests = []string{"-f", "-d", "-L"}

// Exists reports whether a regular file, directory or symbolic link is
// present at path on the target. A query that fails to run counts as absent.
func Exists(ctx context.Context, sh session.Shell, path string) bool {
	for _, flag := range entryTests {
		if test(ctx, sh, flag, path) {
			return true
		}
	}
	return false
}

// IsFile reports whether path is a regular file (following symlinks)
func IsFile(ctx context.Context, sh session.Shell, path string) bool {
	return test(ctx, sh, "-f", path)
}

// IsDir reports whether path is a directory (following symlinks)
func IsDir(ctx context.Context, sh session.Shell, path string) bool {
	return test(ctx, sh, "-d", path)
}

// IsLink reports whether path is a symbolic link
func IsLink(ctx context.Context, sh session.Shell, path string) bool {
	return test(ctx, sh, "-L", path)
}

func test(ctx context.Context, sh session.Shell, flag, path string) bool {
	res, err := sh.Run(ctx, "test "+flag+" "+transport.Quote(path), transport.Quiet())
	if err != nil {
		return false
	}
	return res.Succeeded()
}
