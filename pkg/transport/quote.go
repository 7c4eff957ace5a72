package transport

import "strings"

// Quote quotes s for a POSIX shell. A leading "~/" is kept outside the quotes
// so the target shell still expands it to the remote user's home.
func Quote(s string) string {
	if s == "~" {
		return s
	}
	if strings.HasPrefix(s, "~/") {
		rest := s[2:]
		if rest == "" {
			return "~/"
		}
		return "~/" + QuoteLiteral(rest)
	}
	return QuoteLiteral(s)
}

// QuoteLiteral quotes s for a POSIX shell with no tilde handling
func QuoteLiteral(s string) string {
	if s == "" {
		return "''"
	}
	if isSafe(s) {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

func isSafe(s string) bool {
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case strings.ContainsRune("_@%+=:,./-", r):
		default:
			return false
		}
	}
	return true
}

// Join quotes each argument and joins them with spaces
func Join(args ...string) string {
	quoted := make([]string, len(args))
	for i, a := range args {
		quoted[i] = Quote(a)
	}
	return strings.Join(quoted, " ")
}
