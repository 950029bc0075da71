package extract

import (
	"sort"
	"strings"

	"graphkb/pkg/common"
	"graphkb/pkg/text"
)

type mention struct {
	entity common.Entity
	start  int
	end    int
}

// Relationships infers typed edges between every pair of entities whose
// canonical form occurs in the segment. Stages, in order: explicit phrase
// patterns (with passive-voice direction handling), action-verb heuristics,
// entity-type-pair fallback tables, and finally a proximity-gated generic
// RELATED_TO edge. A later, more specific finding for a pair upgrades an
// earlier generic edge in place instead of duplicating it.
func (e *Extractor) Relationships(seg *text.Segment, entities []common.Entity) []common.Relationship {
	mentions := make([]mention, 0, len(entities))
	for _, ent := range entities {
		pos := seg.IndexOf(ent.ID)
		if pos < 0 {
			continue
		}
		mentions = append(mentions, mention{
			entity: ent,
			start:  pos,
			end:    pos + len(ent.ID),
		})
	}
	sort.Slice(mentions, func(i, j int) bool { return mentions[i].start < mentions[j].start })

	var out []common.Relationship
	for i := 0; i < len(mentions); i++ {
		for j := i + 1; j < len(mentions); j++ {
			a, b := mentions[i], mentions[j]
			if a.entity.ID == b.entity.ID {
				continue
			}
			if overlaps(a, b) {
				continue
			}
			if rel, ok := e.inferPair(seg, a, b); ok {
				out = MergeRelationships(out, rel)
			}
		}
	}

	return out
}

// MergeRelationships folds updates into an existing edge list. Duplicate
// edges between the same pair (in either direction) are suppressed, except
// that a specific type arriving for a pair that only has a generic
// RELATED_TO edge upgrades that edge in place.
func MergeRelationships(existing []common.Relationship, updates ...common.Relationship) []common.Relationship {
	for _, rel := range updates {
		found := false
		for i := range existing {
			if pairKey(existing[i].Source, existing[i].Target) != pairKey(rel.Source, rel.Target) {
				continue
			}
			if existing[i].Type == common.RelatedTo && rel.Type != common.RelatedTo {
				existing[i] = rel
			}
			found = true
			break
		}
		if !found {
			existing = append(existing, rel)
		}
	}
	return existing
}

func overlaps(a, b mention) bool {
	return a.start < b.end && b.start < a.end
}

func pairKey(a, b string) string {
	if a > b {
		a, b = b, a
	}
	return a + "|" + b
}

// inferPair runs the stage cascade for one ordered pair of mentions, a
// occurring before b in the segment.
func (e *Extractor) inferPair(seg *text.Segment, a, b mention) (common.Relationship, bool) {
	if rel, ok := e.phraseStage(seg, a, b); ok {
		return rel, true
	}
	if rel, ok := e.verbStage(seg, a, b); ok {
		return rel, true
	}
	if rel, ok := e.typePairStage(seg, a, b); ok {
		return rel, true
	}

	// Generic edges only for mentions close to one another; distant pairs
	// in one segment are usually unrelated.
	if b.start-a.end > e.genericGap {
		return common.Relationship{}, false
	}
	return common.Relationship{Source: a.entity.ID, Target: b.entity.ID, Type: common.RelatedTo}, true
}

// phraseStage looks for an explicit trigger phrase between the two
// mentions, or in the verb/preposition window right after the second one.
// Reversed (passive) patterns flip the edge so the acting party is the
// source.
func (e *Extractor) phraseStage(seg *text.Segment, a, b mention) (common.Relationship, bool) {
	between := substring(seg.Folded, a.end, b.start)
	after := substring(seg.Folded, b.end, b.end+40)

	for _, p := range e.tables.Phrases {
		if !phraseAt(between, p.Phrase) && !phraseAt(after, p.Phrase) {
			continue
		}
		src, dst := a.entity.ID, b.entity.ID
		if p.Reversed {
			src, dst = dst, src
		}
		return common.Relationship{Source: src, Target: dst, Type: p.Type}, true
	}
	return common.Relationship{}, false
}

// verbStage matches action verbs between the mentions against the verb
// table. Stems match inflected forms by prefix.
func (e *Extractor) verbStage(seg *text.Segment, a, b mention) (common.Relationship, bool) {
	for _, w := range seg.Words {
		if w.Start < a.end || w.Start >= b.start {
			continue
		}
		if relType, ok := e.matchVerb(w.Folded); ok {
			return common.Relationship{Source: a.entity.ID, Target: b.entity.ID, Type: relType}, true
		}
	}
	return common.Relationship{}, false
}

// matchVerb picks the longest stem matching the word, which keeps the
// result independent of map iteration order.
func (e *Extractor) matchVerb(word string) (string, bool) {
	var bestStem, bestType string
	for stem, relType := range e.tables.Verbs {
		if strings.HasPrefix(word, stem) && len(stem) > len(bestStem) {
			bestStem, bestType = stem, relType
		}
	}
	return bestType, bestStem != ""
}

// typePairStage falls back to the table keyed by the ordered label pair,
// trying the reverse orientation when the forward one has no entry.
func (e *Extractor) typePairStage(seg *text.Segment, a, b mention) (common.Relationship, bool) {
	if rules, ok := e.tables.TypePairs[[2]common.EntityLabel{a.entity.Label, b.entity.Label}]; ok {
		if relType, ok := matchRules(seg.Folded, rules); ok {
			return common.Relationship{Source: a.entity.ID, Target: b.entity.ID, Type: relType}, true
		}
	}
	if rules, ok := e.tables.TypePairs[[2]common.EntityLabel{b.entity.Label, a.entity.Label}]; ok {
		if relType, ok := matchRules(seg.Folded, rules); ok {
			return common.Relationship{Source: b.entity.ID, Target: a.entity.ID, Type: relType}, true
		}
	}
	return common.Relationship{}, false
}

func matchRules(folded string, rules []TypePairRule) (string, bool) {
	for _, rule := range rules {
		if len(rule.Keywords) == 0 {
			return rule.Type, true
		}
		for _, kw := range rule.Keywords {
			if strings.Contains(folded, kw) {
				return rule.Type, true
			}
		}
	}
	return "", false
}

func phraseAt(haystack, phrase string) bool {
	idx := 0
	for {
		i := strings.Index(haystack[idx:], phrase)
		if i < 0 {
			return false
		}
		start := idx + i
		end := start + len(phrase)
		if wordBoundary(haystack, start-1) && wordBoundary(haystack, end) {
			return true
		}
		idx = start + 1
		if idx >= len(haystack) {
			return false
		}
	}
}

func wordBoundary(s string, i int) bool {
	if i < 0 || i >= len(s) {
		return true
	}
	c := s[i]
	return !(c >= 'a' && c <= 'z' || c >= '0' && c <= '9')
}

func substring(s string, start, end int) string {
	if start < 0 {
		start = 0
	}
	if end > len(s) {
		end = len(s)
	}
	if start >= end {
		return ""
	}
	return s[start:end]
}
