package utils

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Slugify converts a display name into an ASCII-only, URL-safe lowercase
// identifier. Accented letters fold to their base form (NFKD strips the
// combining marks), letters with no ASCII equivalent are dropped, and runs
// of anything else collapse into a single hyphen. The transform is
// deterministic, so the same name always yields the same slug.
func Slugify(name string) string {
	folded := norm.NFKD.String(strings.ToLower(strings.TrimSpace(name)))
	var b strings.Builder
	lastHyphen := true // suppress a leading hyphen
	for _, r := range folded {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			b.WriteRune(r)
			lastHyphen = false
		case r > unicode.MaxASCII:
			// combining marks and undecomposable letters vanish without a hyphen
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimRight(b.String(), "-")
}
