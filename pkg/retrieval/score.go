package retrieval

import (
	"regexp"
	"sort"
	"strings"

	"graphkb/pkg/common"
	"graphkb/pkg/text"
)

// Candidate is one chunk proposed by a retrieval strategy, alive only for
// the duration of a single retrieval call. Base carries the strategy's
// provisional confidence; the scorer adds the content signals on top.
type Candidate struct {
	Chunk      common.Chunk
	Base       int
	Definition bool
}

// ScoredChunk is a candidate after scoring, ready for tiered selection.
type ScoredChunk struct {
	Chunk      common.Chunk
	Score      int
	Definition bool
}

var (
	definitionContinuation = regexp.MustCompile(`^\W{0,4}(was|is|are|refers|means|defined|created|developed|released|involves)\b`)

	passiveCreation = regexp.MustCompile(`\b(was|were)\s+(created|developed|designed|invented|released|published|introduced|established|founded)\b`)
	copulaArticle   = regexp.MustCompile(`\b(is|are|was|were)\s+(a|an|the)\s`)
	definitionVerbs = regexp.MustCompile(`\b(means|refers\s+to|involves|consists\s+of|stands\s+for)\b`)
	technicalVerbs  = regexp.MustCompile(`\b(encrypts|decrypts|hashes|authenticates|computes|generates|produces|verifies)\b`)

	weakDefinitionPatterns = []*regexp.Regexp{
		regexp.MustCompile(`\bused\s+(for|to|in)\b`),
		regexp.MustCompile(`\b(provides|enables|allows|supports)\b`),
		regexp.MustCompile(`\bknown\s+as\b`),
		regexp.MustCompile(`\b(type|form|kind)\s+of\b`),
	}

	tocChapter   = regexp.MustCompile(`\bchapter\s+\d+\b`)
	tocNumbering = regexp.MustCompile(`\b\d+\.\d+\b`)
	tocLetterRun = regexp.MustCompile(`(?:\b[a-z]\b[\s.]+){4,}`)

	magnitudePattern = regexp.MustCompile(`\d+[\s-]*(bit|byte|block|round|year|digest)s?\b`)
)

// queryTerms is the pre-folded view of one query that every scoring signal
// works from.
type queryTerms struct {
	phrase   string
	topic    string
	keywords []string
}

func newQueryTerms(query string, keywords []string) queryTerms {
	phrase := strings.ToLower(strings.TrimSpace(query))
	phrase = strings.TrimRight(phrase, "?!. ")
	return queryTerms{
		phrase:   phrase,
		topic:    PrimaryTopic(keywords),
		keywords: keywords,
	}
}

// score sums the independent relevance signals for one chunk. The exact
// point values are tuning; what must hold is their relative order:
// definition-prefix beats exact phrase beats keyword boundary matches
// beats the generic length and magnitude nudges.
func (q queryTerms) score(c Candidate) ScoredChunk {
	folded := strings.ToLower(strings.TrimSpace(c.Chunk.Text))
	total := c.Base
	definition := c.Definition

	head := folded
	if len(head) > 100 {
		head = head[:100]
	}
	first50 := folded
	if len(first50) > 50 {
		first50 = first50[:50]
	}

	if q.topic != "" && strings.HasPrefix(folded, q.topic) {
		total += 200
		window := folded[len(q.topic):]
		if len(window) > 50 {
			window = window[:50]
		}
		if definitionContinuation.MatchString(window) {
			total += 100
			definition = true
		}
	}
	if q.topic != "" && strings.Contains(first50, q.topic) {
		total += 80
	}

	if q.phrase != "" && strings.Contains(folded, q.phrase) {
		total += 150
		if strings.Index(folded, q.phrase) < 100 {
			total += 80
		}
		if allWholeWords(folded, strings.Fields(q.phrase)) {
			total += 50
		}
	}

	matched := 0
	for _, kw := range q.keywords {
		if text.ContainsWord(folded, kw) {
			matched++
		}
	}
	total += 25 * matched
	if matched == len(q.keywords) && len(q.keywords) > 1 {
		total += 40
	}

	if passiveCreation.MatchString(folded) || copulaArticle.MatchString(folded) ||
		definitionVerbs.MatchString(folded) || technicalVerbs.MatchString(folded) {
		total += 60
		definition = definition || q.topic != "" && strings.HasPrefix(folded, q.topic)
	} else {
		weak := 0
		for _, p := range weakDefinitionPatterns {
			if p.MatchString(folded) {
				weak++
			}
		}
		if weak > 3 {
			weak = 3
		}
		total += 10 * weak
	}

	if looksLikeTOC(head) {
		total -= 150
	}
	if listLikeHead(head) {
		total -= 80
	}

	switch n := len(c.Chunk.Text); {
	case n >= 150 && n <= 800:
		total += 15
	case n >= 100 && n <= 1200:
		total += 8
	case n < 80 || n > 2500:
		total -= 30
	}

	if magnitudePattern.MatchString(folded) {
		total += 20
	}

	return ScoredChunk{Chunk: c.Chunk, Score: total, Definition: definition}
}

func allWholeWords(folded string, words []string) bool {
	for _, w := range words {
		if !text.ContainsWord(folded, w) {
			return false
		}
	}
	return len(words) > 0
}

func looksLikeTOC(head string) bool {
	if strings.Contains(head, "table of contents") || strings.HasPrefix(head, "contents") {
		return true
	}
	if tocChapter.MatchString(head) {
		return true
	}
	if len(tocNumbering.FindAllString(head, 3)) >= 2 {
		return true
	}
	return tocLetterRun.MatchString(head)
}

// listLikeHead reports whether the opening of a chunk is all numbering and
// fragments rather than prose.
func listLikeHead(head string) bool {
	fields := strings.Fields(head)
	if len(fields) < 3 {
		return false
	}
	words := 0
	for _, f := range fields {
		f = strings.Trim(f, ".,;:()-•")
		if len(f) >= 3 && !allDigits(f) {
			words++
		}
	}
	return words*3 < len(fields)
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

// rank scores and orders a deduplicated candidate set: definition-flagged
// chunks first, then by descending score, with chunk id as the final tie
// break so repeated runs produce an identical order.
func rank(q queryTerms, cands []Candidate) []ScoredChunk {
	byID := make(map[string]Candidate, len(cands))
	order := make([]string, 0, len(cands))
	for _, c := range cands {
		key := c.Chunk.ID
		if key == "" {
			key = c.Chunk.Text
		}
		prev, ok := byID[key]
		if !ok {
			byID[key] = c
			order = append(order, key)
			continue
		}
		if c.Base > prev.Base {
			prev.Base = c.Base
		}
		prev.Definition = prev.Definition || c.Definition
		byID[key] = prev
	}

	scored := make([]ScoredChunk, 0, len(order))
	for _, key := range order {
		scored = append(scored, q.score(byID[key]))
	}

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Definition != scored[j].Definition {
			return scored[i].Definition
		}
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].Chunk.ID < scored[j].Chunk.ID
	})
	return scored
}

// selectTiered applies the quality tiers to a ranked list. High-confidence
// chunks (>100) win outright, capped at three; otherwise moderate ones
// (>50) capped at five; otherwise marginal ones (30..50) capped at two. An
// empty result is preferred over noise.
func selectTiered(scored []ScoredChunk) []ScoredChunk {
	var high, mid, low []ScoredChunk
	for _, s := range scored {
		switch {
		case s.Score > 100:
			high = append(high, s)
		case s.Score > 50:
			mid = append(mid, s)
		case s.Score >= 30:
			low = append(low, s)
		}
	}
	if len(high) > 0 {
		return capAt(high, 3)
	}
	if len(mid) > 0 {
		return capAt(mid, 5)
	}
	return capAt(low, 2)
}

func capAt(s []ScoredChunk, n int) []ScoredChunk {
	if len(s) > n {
		return s[:n]
	}
	return s
}
