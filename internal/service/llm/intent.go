package llm

import (
	"strings"
	"unicode"
)

// inflections are the endings accepted after a keyword stem, so "changes",
// "updating", "alteração" and "adicionando" match their keywords while
// "address" does not match "add".
var inflections = map[string]struct{}{
	// en
	"e": {}, "s": {}, "es": {}, "ed": {}, "ing": {},
	"y": {}, "ies": {}, "ied": {}, "ying": {},
	// pt
	"a": {}, "as": {}, "em": {}, "am": {}, "ei": {}, "ou": {}, "amos": {},
	"ar": {}, "er": {}, "ir": {},
	"ando": {}, "endo": {}, "indo": {},
	"ado": {}, "ada": {}, "ados": {}, "adas": {},
	"ido": {}, "ida": {}, "idos": {}, "idas": {},
	"ação": {}, "ações": {}, "acao": {}, "acoes": {},
	"ança": {}, "anças": {}, "são": {}, "sões": {},
}

// IntentMatcher decides whether a user message asks to change a document.
type IntentMatcher struct {
	keywords map[string]struct{}
	stems    []string
}

// NewIntentMatcher builds a matcher over the given keywords (case-insensitive).
func NewIntentMatcher(keywords []string) *IntentMatcher {
	m := &IntentMatcher{keywords: make(map[string]struct{}, len(keywords))}
	seen := make(map[string]struct{}, len(keywords))
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw == "" {
			continue
		}
		m.keywords[kw] = struct{}{}

		stem := stemOf(kw)
		if _, ok := seen[stem]; !ok {
			seen[stem] = struct{}{}
			m.stems = append(m.stems, stem)
		}
	}
	return m
}

// LooksLikeModificationRequest reports whether message contains one of the
// keywords, either as written or inflected.
func (m *IntentMatcher) LooksLikeModificationRequest(message string) bool {
	words := strings.FieldsFunc(strings.ToLower(message), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, w := range words {
		if m.matches(w) {
			return true
		}
	}
	return false
}

func (m *IntentMatcher) matches(word string) bool {
	if _, ok := m.keywords[word]; ok {
		return true
	}
	for _, stem := range m.stems {
		rest, ok := strings.CutPrefix(word, stem)
		if !ok || rest == "" {
			continue
		}
		if _, ok := inflections[rest]; ok {
			return true
		}
	}
	return false
}

// stemOf drops an infinitive or thematic ending: "alterar" → "alter",
// "change" → "chang", "modify" → "modif". Short keywords stay whole.
func stemOf(kw string) string {
	n := len([]rune(kw))
	switch {
	case n > 4 && (strings.HasSuffix(kw, "ar") || strings.HasSuffix(kw, "er") || strings.HasSuffix(kw, "ir")):
		return kw[:len(kw)-2]
	case n > 3 && (strings.HasSuffix(kw, "e") || strings.HasSuffix(kw, "a") || strings.HasSuffix(kw, "y")):
		return kw[:len(kw)-1]
	}
	return kw
}
