package entities

import "strings"

// LanguageDelimiter separates language codes in the graph source's language
// field. Exactly comma-space; splitting tolerates a single value with no
// delimiter present.
const LanguageDelimiter = ", "

// ParseLanguages splits a delimiter-separated language field into a set.
// Duplicates are removed and first-seen order is kept; output order is not
// significant to callers.
func ParseLanguages(field string) []string {
	if strings.TrimSpace(field) == "" {
		return nil
	}

	var out []string
	seen := make(map[string]struct{})
	for _, part := range strings.Split(field, LanguageDelimiter) {
		lang := strings.TrimSpace(part)
		if lang == "" {
			continue
		}
		if _, ok := seen[lang]; ok {
			continue
		}
		seen[lang] = struct{}{}
		out = append(out, lang)
	}
	return out
}

// JoinLanguages serializes a language set back to the delimited form.
func JoinLanguages(languages []string) string {
	return strings.Join(languages, LanguageDelimiter)
}
