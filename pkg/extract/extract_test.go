package extract

import (
	"testing"

	"graphkb/pkg/common"
	"graphkb/pkg/text"
)

func entityByID(entities []common.Entity, id string) *common.Entity {
	for i := range entities {
		if entities[i].ID == id {
			return &entities[i]
		}
	}
	return nil
}

func TestExtractEntitiesTyped(t *testing.T) {
	e := NewExtractor(NewExtractorParams{})

	entities, _ := e.Extract("Tim Cook is the CEO of Apple.")

	cook := entityByID(entities, "tim cook")
	if cook == nil || cook.Label != common.LabelPerson {
		t.Fatalf("expected tim cook as Person, got %+v", entities)
	}
	apple := entityByID(entities, "apple")
	if apple == nil || apple.Label != common.LabelOrganization {
		t.Fatalf("expected apple as Organization, got %+v", entities)
	}
}

func TestExtractEntitiesDeduplicated(t *testing.T) {
	e := NewExtractor(NewExtractorParams{})
	input := "Apple announced a partnership. Later, apple confirmed the partnership."

	first, _ := e.Extract(input)
	second, _ := e.Extract(input)

	if len(first) != len(second) {
		t.Fatalf("extraction not deterministic: %d vs %d entities", len(first), len(second))
	}

	seen := make(map[string]int)
	for _, ent := range first {
		seen[ent.ID]++
	}
	for id, n := range seen {
		if n > 1 {
			t.Errorf("entity %q extracted %d times, want 1", id, n)
		}
	}
}

func TestExtractShortLocationDropped(t *testing.T) {
	e := NewExtractor(NewExtractorParams{})
	seg := text.Parse("The delegation arrived in UK yesterday from Germany.")

	entities := e.Entities(seg)
	for _, ent := range entities {
		if ent.Label == common.LabelLocation && len(ent.ID) < 3 {
			t.Errorf("short location candidate %q should have been dropped", ent.ID)
		}
	}
	if entityByID(entities, "germany") == nil {
		t.Errorf("expected germany to survive, got %+v", entities)
	}
}

func TestExtractConceptCap(t *testing.T) {
	e := NewExtractor(NewExtractorParams{MaxConcepts: 3})
	seg := text.Parse("encryption hashing signing certificates protocols ciphers padding entropy")

	concepts := 0
	for _, ent := range e.Entities(seg) {
		if ent.Label == common.LabelConcept {
			concepts++
		}
	}
	if concepts > 3 {
		t.Errorf("concept cap exceeded: %d concepts", concepts)
	}
}

func TestExtractCategoriesAssigned(t *testing.T) {
	e := NewExtractor(NewExtractorParams{})
	entities, _ := e.Extract("Dr. Schneider works for Acme Corp in Berlin.")

	for _, ent := range entities {
		if ent.Category != ent.Label.Category() {
			t.Errorf("entity %q category %d does not match label %q", ent.ID, ent.Category, ent.Label)
		}
	}
}

func TestExtractNeverPanics(t *testing.T) {
	e := NewExtractor(NewExtractorParams{})
	inputs := []string{"", "   ", "....", "a", "\x00\x01", "| | | |"}
	for _, in := range inputs {
		entities, relations := e.Extract(in)
		_ = entities
		_ = relations
	}
}
