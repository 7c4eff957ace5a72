package hashutil

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

const prefix = "sha256:"

// Checksum calculates the SHA256 checksum of data in "sha256:<hex>" form
func Checksum(data []byte) string {
	sum := sha256.Sum256(data)
	return fmt.Sprintf("%s%x", prefix, sum[:])
}

// FromSha256sum converts the first line of `sha256sum` output
// ("<hex>  <path>") into the same form Checksum returns.
func FromSha256sum(output string) (string, bool) {
	line := strings.TrimSpace(output)
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return "", false
	}
	digest := strings.TrimPrefix(fields[0], `\`)
	if len(digest) != sha256.Size*2 {
		return "", false
	}
	if _, err := hex.DecodeString(digest); err != nil {
		return "", false
	}
	return prefix + strings.ToLower(digest), true
}
