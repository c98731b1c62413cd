package types

import (
	"fmt"
	"strings"
	"unicode"
)

// SafeName flattens a human-entered name into something usable as a path
// segment: lowercase, runs of non-alphanumerics collapsed to single
// underscores, trimmed. An empty result falls back to "unnamed".
func SafeName(name string) string {
	var b strings.Builder
	lastUnderscore := false
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastUnderscore = false
		case !lastUnderscore:
			b.WriteRune('_')
			lastUnderscore = true
		}
	}
	out := strings.Trim(b.String(), "_")
	if out == "" {
		return "unnamed"
	}
	return out
}

// DedupeSafeName appends a numeric suffix until taken reports the candidate
// free. taken is expected to be scoped to the owning parent (safe names only
// need to be unique among siblings).
func DedupeSafeName(base string, taken func(string) bool) string {
	if !taken(base) {
		return base
	}
	for i := 2; ; i++ {
		candidate := fmt.Sprintf("%s_%d", base, i)
		if !taken(candidate) {
			return candidate
		}
	}
}
