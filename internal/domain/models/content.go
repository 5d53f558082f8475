package models

import (
	"strings"
	"unicode"
)

// TableData is a parsed table. Rows are keyed by normalized header label;
// a nil value marks a cell missing from a short row.
type TableData struct {
	Headers []string             `json:"headers"`
	Rows    []map[string]*string `json:"rows"`
}

// Keys returns the normalized row keys in header order.
func (t *TableData) Keys() []string {
	keys := make([]string, len(t.Headers))
	for i, h := range t.Headers {
		keys[i] = NormalizeHeader(h)
	}
	return keys
}

// Section is one titled block of document content.
type Section struct {
	Title         string     `json:"title"`
	Body          string     `json:"body"`
	Table         *TableData `json:"table,omitempty"`
	PostTableText string     `json:"post_table_text,omitempty"`
}

// ParsedContent is the canonical structured form of a draft.
type ParsedContent struct {
	Metadata DraftMetadata `json:"metadata"`
	Sections []Section     `json:"sections"`
	Warnings int           `json:"warnings,omitempty"` // recoverable parse ambiguities
}

// NormalizeHeader lowercases a header label and replaces every run of
// non-alphanumeric characters with a single underscore.
func NormalizeHeader(label string) string {
	var b strings.Builder
	pendingSep := false
	for _, r := range strings.TrimSpace(label) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = false
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		pendingSep = true
	}
	return b.String()
}
