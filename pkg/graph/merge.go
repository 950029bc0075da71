package graph

import (
	"graphkb/pkg/common"
	"graphkb/pkg/extract"
)

// mergeExtracted folds one segment's extraction output into the document
// accumulators. Entities merge by canonical id with the first
// classification winning; edges merge with generic-to-specific upgrade
// semantics.
func mergeExtracted(
	entities []common.Entity,
	newEntities []common.Entity,
	relations []common.Relationship,
	newRelations []common.Relationship,
) ([]common.Entity, []common.Relationship) {
	seen := make(map[string]bool, len(entities))
	for _, ent := range entities {
		seen[ent.ID] = true
	}
	for _, ent := range newEntities {
		if seen[ent.ID] {
			continue
		}
		seen[ent.ID] = true
		entities = append(entities, ent)
	}

	return entities, extract.MergeRelationships(relations, newRelations...)
}
