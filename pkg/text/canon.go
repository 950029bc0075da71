package text

import "strings"

// Canonical normalizes a surface string into the lookup key used for
// entity identity: case-folded, trimmed, with internal whitespace runs
// collapsed to single spaces. The function is idempotent, so a canonical
// form passed back in comes out unchanged.
func Canonical(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return s
	}
	return strings.Join(strings.Fields(s), " ")
}

// ContainsWord reports whether the canonical form of word occurs in the
// folded haystack as a whole word rather than as an arbitrary substring.
func ContainsWord(folded, word string) bool {
	word = Canonical(word)
	if word == "" {
		return false
	}
	idx := 0
	for {
		i := strings.Index(folded[idx:], word)
		if i < 0 {
			return false
		}
		start := idx + i
		end := start + len(word)
		if boundaryAt(folded, start-1) && boundaryAt(folded, end) {
			return true
		}
		idx = start + 1
		if idx >= len(folded) {
			return false
		}
	}
}

func boundaryAt(s string, i int) bool {
	if i < 0 || i >= len(s) {
		return true
	}
	c := s[i]
	return !(c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9')
}
