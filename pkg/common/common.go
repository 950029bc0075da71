package common

import "time"

// EntityLabel classifies a graph node. The set is extensible; these four
// cover what the extractor emits on its own.
type EntityLabel string

const (
	LabelPerson       EntityLabel = "Person"
	LabelLocation     EntityLabel = "Location"
	LabelOrganization EntityLabel = "Organization"
	LabelConcept      EntityLabel = "Concept"
)

// Category returns the display grouping for a label. Unknown labels share
// the concept bucket.
func (l EntityLabel) Category() int {
	switch l {
	case LabelPerson:
		return 1
	case LabelLocation:
		return 2
	case LabelOrganization:
		return 3
	default:
		return 4
	}
}

// Entity represents a node in the knowledge graph. ID is the canonical
// (case-folded, trimmed) surface form, so two mentions that fold to the
// same string collapse to one entity. Name preserves the first surface
// form seen, for display.
type Entity struct {
	ID       string      `json:"id"`
	Name     string      `json:"name"`
	Label    EntityLabel `json:"label"`
	Category int         `json:"category"`
}

// Relationship represents a directed edge between two entities, identified
// by their canonical IDs. Type is an open vocabulary; RelatedTo is the
// generic fallback that more specific types may upgrade in place.
type Relationship struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Type   string `json:"type"`
}

// RelatedTo is the generic relationship type emitted when no stage of the
// inference cascade commits to something more specific.
const RelatedTo = "RELATED_TO"

// Chunk is a sentence-respecting span of document text, immutable once
// created. It is the unit of retrieval: queries return chunk texts as
// evidence, and chunks are linked to every entity they mention.
type Chunk struct {
	ID         string `json:"id"`
	Text       string `json:"text"`
	DocumentID string `json:"document_id"`
}

// DocumentStatus tracks a document through the ingestion pipeline.
type DocumentStatus string

const (
	DocumentProcessing DocumentStatus = "processing"
	DocumentReady      DocumentStatus = "ready"
	DocumentError      DocumentStatus = "error"
)

// Document is the ingestion-side record a chunk belongs to. The core only
// needs its ID to tag chunks; the rest is bookkeeping for callers.
type Document struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	UploadDate time.Time      `json:"upload_date"`
	Status     DocumentStatus `json:"status"`
}

// GraphStats summarizes the size of the stored graph.
type GraphStats struct {
	Entities      int64 `json:"entities"`
	Relationships int64 `json:"relationships"`
	Chunks        int64 `json:"chunks"`
	Documents     int64 `json:"documents"`
}
