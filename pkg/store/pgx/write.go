package pgx

import (
	"context"
	"fmt"

	"graphkb/pkg/common"
	"graphkb/pkg/store"

	pgxv5 "github.com/jackc/pgx/v5"
)

// writeBatchSize bounds how many statements go into one pgx batch.
const writeBatchSize = 500

// UpsertEntities merges a batch of entities by canonical id. Re-extraction
// of a known surface form refreshes name, label, and category but leaves a
// cached embedding in place.
func (s *GraphDBStorage) UpsertEntities(ctx context.Context, entities []common.Entity) error {
	if len(entities) == 0 {
		return nil
	}

	err := store.ChunkRange(len(entities), writeBatchSize, func(start, end int) error {
		batch := &pgxv5.Batch{}
		for _, ent := range entities[start:end] {
			batch.Queue(`
				INSERT INTO entities (id, name, label, category)
				VALUES ($1, $2, $3, $4)
				ON CONFLICT (id) DO UPDATE
				SET name = EXCLUDED.name, label = EXCLUDED.label, category = EXCLUDED.category`,
				ent.ID, ent.Name, string(ent.Label), ent.Category,
			)
		}
		return s.conn.SendBatch(ctx, batch).Close()
	})
	if err != nil {
		return fmt.Errorf("failed to upsert entities:\n%w", err)
	}
	return nil
}

// UpsertRelationships merges edges per unordered entity pair, regardless
// of which direction a stored row uses. A stored generic RELATED_TO edge
// is replaced when a specific type arrives for the pair, with the specific
// edge's direction winning; a stored specific type is never downgraded. A
// pair already stored in the reverse direction suppresses a new row.
func (s *GraphDBStorage) UpsertRelationships(ctx context.Context, relations []common.Relationship) error {
	if len(relations) == 0 {
		return nil
	}

	err := store.ChunkRange(len(relations), writeBatchSize, func(start, end int) error {
		batch := &pgxv5.Batch{}
		for _, rel := range relations[start:end] {
			// A reverse-oriented generic edge yields to an incoming
			// specific type, so the insert below can take its place.
			batch.Queue(`
				DELETE FROM relationships
				WHERE source = $1 AND target = $2 AND type = $3 AND $4 <> $3`,
				rel.Target, rel.Source, common.RelatedTo, rel.Type,
			)
			batch.Queue(`
				INSERT INTO relationships (source, target, type)
				SELECT $1, $2, $3
				WHERE NOT EXISTS (
					SELECT 1 FROM relationships
					WHERE source = $2 AND target = $1
				)
				ON CONFLICT (source, target) DO UPDATE
				SET type = CASE
					WHEN relationships.type = $4 THEN EXCLUDED.type
					ELSE relationships.type
				END`,
				rel.Source, rel.Target, rel.Type, common.RelatedTo,
			)
		}
		return s.conn.SendBatch(ctx, batch).Close()
	})
	if err != nil {
		return fmt.Errorf("failed to upsert relationships:\n%w", err)
	}
	return nil
}

// UpsertChunks stores chunks; they are immutable, so a conflicting id is a
// retried batch and the existing row wins.
func (s *GraphDBStorage) UpsertChunks(ctx context.Context, chunks []common.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	err := store.ChunkRange(len(chunks), writeBatchSize, func(start, end int) error {
		batch := &pgxv5.Batch{}
		for _, c := range chunks[start:end] {
			batch.Queue(`
				INSERT INTO chunks (id, text, document_id)
				VALUES ($1, $2, $3)
				ON CONFLICT (id) DO NOTHING`,
				c.ID, c.Text, c.DocumentID,
			)
		}
		return s.conn.SendBatch(ctx, batch).Close()
	})
	if err != nil {
		return fmt.Errorf("failed to upsert chunks:\n%w", err)
	}
	return nil
}

// LinkMentions records that a chunk mentions each of the given entities.
func (s *GraphDBStorage) LinkMentions(ctx context.Context, chunkID string, entityIDs []string) error {
	entityIDs = store.DedupeStrings(entityIDs)
	if len(entityIDs) == 0 {
		return nil
	}

	batch := &pgxv5.Batch{}
	for _, entityID := range entityIDs {
		batch.Queue(`
			INSERT INTO mentions (chunk_id, entity_id)
			VALUES ($1, $2)
			ON CONFLICT (chunk_id, entity_id) DO NOTHING`,
			chunkID, entityID,
		)
	}
	if err := s.conn.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to link mentions for chunk %s:\n%w", chunkID, err)
	}
	return nil
}
