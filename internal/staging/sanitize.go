package staging

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// FallbackName replaces names that sanitise to nothing.
const FallbackName = "upload.pdf"

// Sanitize reduces a client-supplied filename to a safe single path segment,
// falling back to FallbackName when nothing survives.
func Sanitize(name string) string {
	if out := CleanName(name); out != "" {
		return out
	}
	return FallbackName
}

// CleanName is Sanitize without the fallback. Accents are decomposed and
// dropped, whitespace runs become "_", and everything outside [A-Za-z0-9._-]
// is removed. Leading and trailing dots and underscores are trimmed so the
// result can never be "." or "..".
func CleanName(name string) string {
	name = norm.NFKD.String(name)
	name = strings.NewReplacer("/", " ", "\\", " ").Replace(name)
	name = strings.Join(strings.FieldsFunc(name, unicode.IsSpace), "_")

	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.', r == '_', r == '-':
			b.WriteRune(r)
		}
	}

	return strings.Trim(b.String(), "._")
}
