package draft

import (
	"strings"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const maxFilenameStem = 60

// Filename derives the local filename of a draft: the sanitized title plus
// the first 8 characters of the draft id, so equal titles never collide.
func Filename(title string, id uuid.UUID) string {
	return sanitizeTitle(title) + "-" + id.String()[:8] + ".docx"
}

// sanitizeTitle folds accents, keeps ASCII letters and digits and turns
// every other run of characters into a single underscore.
func sanitizeTitle(title string) string {
	var b strings.Builder
	pendingSep := false
	for _, r := range foldAccents(strings.TrimSpace(title)) {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = false
			b.WriteRune(r)
			if b.Len() >= maxFilenameStem {
				break
			}
			continue
		}
		pendingSep = true
	}

	if b.Len() == 0 {
		return "draft"
	}
	return b.String()
}

func foldAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return folded
}
