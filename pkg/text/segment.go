package text

import (
	"strings"
	"unicode"
)

// Word is a single token of a parsed segment with its byte offset in the
// original text.
type Word struct {
	Text   string
	Folded string
	Start  int

	sentenceStart bool
}

// Segment is the parsed representation of one text span. It is produced
// once and shared between the entity extractor and the relationship
// inferrer so neither re-tokenizes the text.
type Segment struct {
	Text   string
	Folded string
	Words  []Word

	runs []properRun
}

type properRun struct {
	text   string
	folded string
	first  int // word index of the first token in the run
}

// Parse tokenizes a text span and pre-computes the proper-noun runs the
// extraction heuristics work from.
func Parse(text string) *Segment {
	seg := &Segment{
		Text:   text,
		Folded: strings.ToLower(text),
	}
	seg.tokenize()
	seg.collectProperRuns()
	return seg
}

func (s *Segment) tokenize() {
	runes := []rune(s.Text)
	start := -1
	sentenceStart := true

	isWordRune := func(r rune) bool {
		return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '\''
	}

	byteOff := 0
	offsets := make([]int, len(runes)+1)
	for i, r := range runes {
		offsets[i] = byteOff
		byteOff += len(string(r))
	}
	offsets[len(runes)] = byteOff

	flush := func(end int) {
		if start < 0 {
			return
		}
		raw := string(runes[start:end])
		s.Words = append(s.Words, Word{
			Text:          raw,
			Folded:        strings.ToLower(raw),
			Start:         offsets[start],
			sentenceStart: sentenceStart,
		})
		sentenceStart = false
		start = -1
	}

	for i, r := range runes {
		if isWordRune(r) {
			if start < 0 {
				start = i
			}
			continue
		}
		flush(i)
		if r == '.' || r == '!' || r == '?' {
			// "Dr." and single-letter initials are abbreviations, not
			// sentence boundaries.
			if n := len(s.Words); n > 0 && (honorifics[s.Words[n-1].Folded] || len(s.Words[n-1].Text) == 1) {
				continue
			}
			sentenceStart = true
		}
	}
	flush(len(runes))
}

// Lowercase connectors allowed inside a multi-word proper noun, as in
// "University of Oxford".
var runConnectors = map[string]bool{
	"of": true, "the": true, "de": true, "von": true, "van": true, "der": true,
}

func (s *Segment) collectProperRuns() {
	i := 0
	for i < len(s.Words) {
		if !isCapitalized(s.Words[i].Text) || honorifics[s.Words[i].Folded] {
			i++
			continue
		}

		j := i + 1
		for j < len(s.Words) {
			if isCapitalized(s.Words[j].Text) && !honorifics[s.Words[j].Folded] {
				j++
				continue
			}
			// allow a single connector between capitalized words, as in
			// "University of Oxford" — but not after an acronym, so
			// "CEO of Apple" stays two mentions
			if runConnectors[s.Words[j].Folded] && !isAcronym(s.Words[j-1].Text) &&
				j+1 < len(s.Words) && isCapitalized(s.Words[j+1].Text) {
				j += 2
				continue
			}
			break
		}

		run := s.wordsRange(i, j)

		// A lone capitalized word at sentence start is usually just the
		// start of the sentence, unless the word is known by other means.
		skip := j-i == 1 && s.Words[i].sentenceStart &&
			!isAcronym(s.Words[i].Text) &&
			!knownProper(s.Words[i].Folded)

		if !skip {
			s.runs = append(s.runs, properRun{
				text:   run,
				folded: strings.ToLower(run),
				first:  i,
			})
		}
		i = j
	}
}

func (s *Segment) wordsRange(i, j int) string {
	var b strings.Builder
	for k := i; k < j; k++ {
		if k > i {
			b.WriteString(" ")
		}
		b.WriteString(s.Words[k].Text)
	}
	return b.String()
}

func isCapitalized(w string) bool {
	for _, r := range w {
		return unicode.IsUpper(r)
	}
	return false
}

func isAcronym(w string) bool {
	if len(w) < 2 || len(w) > 6 {
		return false
	}
	letters := 0
	for _, r := range w {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsUpper(r) {
			letters++
		} else if !unicode.IsDigit(r) {
			return false
		}
	}
	return letters >= 2
}

func knownProper(folded string) bool {
	return knownOrganizations[folded] || knownPlaces[folded] || firstNames[folded]
}

// People returns proper-noun runs that look like person names: preceded by
// an honorific, starting with a common first name, or an unclassified
// two-to-three word run in name position.
func (s *Segment) People() []string {
	var out []string
	for _, run := range s.runs {
		if s.looksLikeOrganization(run) || s.looksLikePlace(run) {
			continue
		}
		if s.looksLikePerson(run) {
			out = append(out, run.text)
		}
	}
	return out
}

// Places returns proper-noun runs that look like locations.
func (s *Segment) Places() []string {
	var out []string
	for _, run := range s.runs {
		if s.looksLikeOrganization(run) {
			continue
		}
		if s.looksLikePlace(run) {
			out = append(out, run.text)
		}
	}
	return out
}

// Organizations returns proper-noun runs that look like organizations,
// including known acronyms such as NASA.
func (s *Segment) Organizations() []string {
	var out []string
	for _, run := range s.runs {
		if s.looksLikeOrganization(run) {
			out = append(out, run.text)
		}
	}
	return out
}

func (s *Segment) looksLikePerson(run properRun) bool {
	if i := run.first; i > 0 && honorifics[s.Words[i-1].Folded] {
		return true
	}
	words := strings.Fields(run.folded)
	if firstNames[words[0]] {
		return true
	}
	// FirstName LastName shape with nothing else claiming the run
	if len(words) == 2 || len(words) == 3 {
		return !isAcronym(strings.Fields(run.text)[0])
	}
	return false
}

func (s *Segment) looksLikePlace(run properRun) bool {
	if knownPlaces[run.folded] {
		return true
	}
	words := strings.Fields(run.folded)
	if geoSuffixes[words[len(words)-1]] {
		return true
	}
	if i := run.first; i > 0 && locationPrepositions[s.Words[i-1].Folded] {
		// "in Berlin", "from Hamburg" — but only when nothing marks the
		// run as a person or organization
		return !firstNames[words[0]] && !knownOrganizations[run.folded]
	}
	return false
}

func (s *Segment) looksLikeOrganization(run properRun) bool {
	if knownOrganizations[run.folded] {
		return true
	}
	for _, w := range strings.Fields(run.folded) {
		if orgSuffixes[w] {
			return true
		}
	}
	return false
}

// Acronyms returns standalone all-caps tokens (MD5, TLS, GDPR) that no
// other category claimed. The extractor records them as concepts.
func (s *Segment) Acronyms() []string {
	var out []string
	for _, w := range s.Words {
		if isAcronym(w.Text) && !knownOrganizations[w.Folded] && !knownPlaces[w.Folded] {
			out = append(out, w.Text)
		}
	}
	return out
}

// Nouns returns lowercase tokens longer than three characters that are not
// stop words, in order of first appearance. These feed the concept
// extraction.
func (s *Segment) Nouns() []string {
	seen := make(map[string]bool)
	var out []string
	for _, w := range s.Words {
		if isCapitalized(w.Text) || len(w.Folded) <= 3 {
			continue
		}
		if nounStopWords[w.Folded] || seen[w.Folded] {
			continue
		}
		if !unicode.IsLetter([]rune(w.Folded)[0]) {
			continue
		}
		seen[w.Folded] = true
		out = append(out, w.Folded)
	}
	return out
}

// IndexOf returns the byte offset of the first whole-word occurrence of the
// canonical form in the folded text, or -1.
func (s *Segment) IndexOf(canonical string) int {
	canonical = Canonical(canonical)
	if canonical == "" {
		return -1
	}
	idx := 0
	for {
		i := strings.Index(s.Folded[idx:], canonical)
		if i < 0 {
			return -1
		}
		start := idx + i
		end := start + len(canonical)
		if boundaryAt(s.Folded, start-1) && boundaryAt(s.Folded, end) {
			return start
		}
		idx = start + 1
		if idx >= len(s.Folded) {
			return -1
		}
	}
}
