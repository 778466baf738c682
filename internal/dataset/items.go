package dataset

import "strings"

// itemDelimiter separates entries in the raw item-list field.
const itemDelimiter = ","

// ParseItems splits a delimited item-list field into an ordered sequence of
// trimmed, non-empty tokens. Splitting is purely lexical; token text and
// case are preserved verbatim, so downstream matching is case-sensitive.
func ParseItems(s string) []string {
	parts := strings.Split(s, itemDelimiter)
	tokens := make([]string, 0, len(parts))
	for _, p := range parts {
		tok := strings.TrimSpace(p)
		if tok == "" {
			continue
		}
		tokens = append(tokens, tok)
	}
	return tokens
}
