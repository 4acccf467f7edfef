package security

import (
	"fmt"
	"path/filepath"
	"strings"
)

// SanitizeFilename makes a safe filename from an arbitrary string such as
// a panel name. Characters other than ASCII letters, digits, dot,
// underscore or dash become an underscore, repeats are collapsed and the
// result is trimmed to a reasonable length.
func SanitizeFilename(s string) string {
	const maxLen = 128
	var b strings.Builder
	lastUnderscore := false
	for _, r := range s {
		if b.Len() >= maxLen {
			break
		}
		switch {
		case (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9'),
			r == '.' || r == '-':
			b.WriteRune(r)
			lastUnderscore = false
		case !lastUnderscore:
			b.WriteRune('_')
			lastUnderscore = true
		}
	}
	out := strings.Trim(b.String(), "._")
	if out == "" {
		return "unknown"
	}
	return out
}

// JoinWithin joins name onto dir and rejects results that escape dir.
// The check is lexical; dir need not exist yet.
func JoinWithin(dir, name string) (string, error) {
	base := filepath.Clean(dir)
	joined := filepath.Join(base, name)
	rel, err := filepath.Rel(base, joined)
	if err != nil {
		return "", fmt.Errorf("path is outside output directory: %w", err)
	}
	if rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("path traversal detected: %s attempts to escape %s", name, dir)
	}
	return joined, nil
}
