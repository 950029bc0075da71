package retrieval

import (
	"strings"
	"unicode"
)

// Stop words dropped from queries. Tokens in keepWords survive the filter
// anyway: definitional and interrogative words carry retrieval signal
// ("what is X" is a definition request, not noise).
var queryStopWords = map[string]bool{
	"a": true, "an": true, "the": true, "and": true, "or": true, "but": true,
	"in": true, "on": true, "at": true, "to": true, "for": true, "of": true,
	"with": true, "by": true, "from": true, "as": true, "about": true,
	"into": true, "over": true, "under": true, "is": true, "are": true,
	"was": true, "were": true, "be": true, "been": true, "being": true,
	"do": true, "does": true, "did": true, "can": true, "could": true,
	"will": true, "would": true, "should": true, "may": true, "might": true,
	"have": true, "has": true, "had": true, "it": true, "its": true,
	"this": true, "that": true, "these": true, "those": true, "there": true,
	"me": true, "my": true, "you": true, "your": true, "we": true, "our": true,
	"they": true, "their": true, "he": true, "she": true, "his": true, "her": true,
	"please": true, "tell": true, "show": true, "give": true, "some": true,
	"any": true, "all": true, "more": true, "most": true, "so": true,
	"if": true, "then": true, "than": true, "too": true, "very": true,
	"just": true, "not": true, "no": true, "also": true,
}

var keepWords = map[string]bool{
	"what": true, "who": true, "why": true, "how": true, "when": true,
	"where": true, "which": true, "is": true, "are": true,
	"explain": true, "define": true, "describe": true, "mean": true,
	"means": true, "difference": true,
}

// Keywords turns a raw query into an ordered list of informative tokens:
// lower-cased, punctuation stripped, short tokens and stop words dropped.
func Keywords(query string) []string {
	var b strings.Builder
	for _, r := range strings.ToLower(query) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}

	var out []string
	for _, tok := range strings.Fields(b.String()) {
		tok = strings.Trim(tok, "-")
		if len(tok) < 2 {
			continue
		}
		if queryStopWords[tok] && !keepWords[tok] {
			continue
		}
		out = append(out, tok)
	}
	return out
}

// PrimaryTopic picks the token downstream scoring treats as the subject of
// the query. Interrogative survivors like "what" keep their place in the
// keyword list but never become the topic; the first content word does.
func PrimaryTopic(keywords []string) string {
	for _, kw := range keywords {
		if !keepWords[kw] {
			return kw
		}
	}
	if len(keywords) > 0 {
		return keywords[0]
	}
	return ""
}
