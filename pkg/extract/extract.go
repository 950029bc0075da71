package extract

import (
	"graphkb/pkg/common"
	"graphkb/pkg/logger"
	"graphkb/pkg/text"
)

const (
	defaultMaxConcepts = 20
	defaultGenericGap  = 150
)

// Extractor turns parsed text segments into typed entities and
// relationships. It is pure computation over immutable tables and safe to
// share across goroutines.
type Extractor struct {
	tables      *Tables
	maxConcepts int
	genericGap  int
}

// NewExtractorParams configures an Extractor.
//
// MaxConcepts bounds how many common-noun concepts one segment may
// contribute. GenericGap is the proximity gate in characters: two mentions
// further apart than this never get a generic RELATED_TO edge.
type NewExtractorParams struct {
	Tables      *Tables
	MaxConcepts int
	GenericGap  int
}

// NewExtractor creates an Extractor. Zero-valued params fall back to the
// built-in tables and default bounds.
func NewExtractor(params NewExtractorParams) *Extractor {
	tables := params.Tables
	if tables == nil {
		tables = DefaultTables()
	}
	maxConcepts := params.MaxConcepts
	if maxConcepts <= 0 {
		maxConcepts = defaultMaxConcepts
	}
	genericGap := params.GenericGap
	if genericGap <= 0 {
		genericGap = defaultGenericGap
	}
	return &Extractor{
		tables:      tables,
		maxConcepts: maxConcepts,
		genericGap:  genericGap,
	}
}

// Extract parses one text segment and returns its entities and inferred
// relationships. A failure inside the heuristics never propagates: the
// segment just contributes nothing, so a bad segment cannot abort a batch.
func (e *Extractor) Extract(segmentText string) (entities []common.Entity, relations []common.Relationship) {
	defer func() {
		if r := recover(); r != nil {
			logger.Warn("Extraction failed for segment, skipping", "err", r)
			entities = nil
			relations = nil
		}
	}()

	seg := text.Parse(segmentText)
	entities = e.Entities(seg)
	relations = e.Relationships(seg, entities)
	return entities, relations
}

// Entities extracts typed entity candidates from a parsed segment,
// deduplicated by canonical id. The first classification of a surface form
// wins within one segment.
func (e *Extractor) Entities(seg *text.Segment) []common.Entity {
	seen := make(map[string]bool)
	var out []common.Entity

	add := func(surface string, label common.EntityLabel) {
		id := text.Canonical(surface)
		if id == "" || seen[id] {
			return
		}
		seen[id] = true
		out = append(out, common.Entity{
			ID:       id,
			Name:     surface,
			Label:    label,
			Category: label.Category(),
		})
	}

	for _, p := range seg.People() {
		add(p, common.LabelPerson)
	}
	for _, o := range seg.Organizations() {
		add(o, common.LabelOrganization)
	}
	for _, p := range seg.Places() {
		// short location candidates are mostly tokenizer noise
		if len(text.Canonical(p)) < 3 {
			continue
		}
		add(p, common.LabelLocation)
	}
	for _, a := range seg.Acronyms() {
		add(a, common.LabelConcept)
	}

	concepts := 0
	for _, n := range seg.Nouns() {
		if concepts >= e.maxConcepts {
			break
		}
		if seen[n] {
			continue
		}
		add(n, common.LabelConcept)
		concepts++
	}

	return out
}
