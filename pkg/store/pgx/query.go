package pgx

import (
	"context"
	"fmt"
	"strings"

	"graphkb/pkg/common"

	pgxv5 "github.com/jackc/pgx/v5"
)

// escapeLike neutralizes LIKE metacharacters in user-derived patterns.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	return strings.ReplaceAll(s, `_`, `\_`)
}

func scanEntities(rows pgxv5.Rows) ([]common.Entity, error) {
	defer rows.Close()
	var out []common.Entity
	for rows.Next() {
		var ent common.Entity
		var label string
		if err := rows.Scan(&ent.ID, &ent.Name, &label, &ent.Category); err != nil {
			return nil, err
		}
		ent.Label = common.EntityLabel(label)
		out = append(out, ent)
	}
	return out, rows.Err()
}

func scanChunks(rows pgxv5.Rows) ([]common.Chunk, error) {
	defer rows.Close()
	var out []common.Chunk
	for rows.Next() {
		var c common.Chunk
		if err := rows.Scan(&c.ID, &c.Text, &c.DocumentID); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// EntitiesMatching returns entities whose canonical id equals or contains
// the keyword, exact matches first.
func (s *GraphDBStorage) EntitiesMatching(ctx context.Context, keyword string, limit int) ([]common.Entity, error) {
	rows, err := s.conn.Query(ctx, `
		SELECT id, name, label, category
		FROM entities
		WHERE id LIKE '%' || $1 || '%'
		ORDER BY (id = $2) DESC, length(id), id
		LIMIT $3`,
		escapeLike(keyword), keyword, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to match entities:\n%w", err)
	}
	return scanEntities(rows)
}

// ChunksStartingWith returns chunks whose folded text opens with the given
// prefix, the strongest definition signal the store can provide.
func (s *GraphDBStorage) ChunksStartingWith(ctx context.Context, prefix string, limit int) ([]common.Chunk, error) {
	rows, err := s.conn.Query(ctx, `
		SELECT id, text, document_id
		FROM chunks
		WHERE lower(ltrim(text)) LIKE $1 || '%'
		ORDER BY id
		LIMIT $2`,
		escapeLike(strings.ToLower(prefix)), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query chunks by prefix:\n%w", err)
	}
	return scanChunks(rows)
}

// ChunksContaining returns chunks whose folded text contains the given
// substring.
func (s *GraphDBStorage) ChunksContaining(ctx context.Context, substr string, limit int) ([]common.Chunk, error) {
	rows, err := s.conn.Query(ctx, `
		SELECT id, text, document_id
		FROM chunks
		WHERE strpos(lower(text), $1) > 0
		ORDER BY id
		LIMIT $2`,
		strings.ToLower(substr), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query chunks by substring:\n%w", err)
	}
	return scanChunks(rows)
}

// ChunksMentioning returns chunks linked to the entity by a mention edge.
func (s *GraphDBStorage) ChunksMentioning(ctx context.Context, entityID string, limit int) ([]common.Chunk, error) {
	rows, err := s.conn.Query(ctx, `
		SELECT c.id, c.text, c.document_id
		FROM chunks c
		JOIN mentions m ON m.chunk_id = c.id
		WHERE m.entity_id = $1
		ORDER BY c.id
		LIMIT $2`,
		entityID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query chunks mentioning %s:\n%w", entityID, err)
	}
	return scanChunks(rows)
}

// SampleChunks returns a bounded, stable sample of the chunk table for the
// fuzzy strategy to scan.
func (s *GraphDBStorage) SampleChunks(ctx context.Context, limit int) ([]common.Chunk, error) {
	rows, err := s.conn.Query(ctx, `
		SELECT id, text, document_id
		FROM chunks
		ORDER BY id
		LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to sample chunks:\n%w", err)
	}
	return scanChunks(rows)
}

// Neighborhood returns entities reachable from entityID within the given
// number of hops over relationship edges, in either direction.
func (s *GraphDBStorage) Neighborhood(ctx context.Context, entityID string, hops int, limit int) ([]common.Entity, error) {
	rows, err := s.conn.Query(ctx, `
		WITH RECURSIVE hood (id, depth) AS (
			SELECT $1::text, 0
			UNION
			SELECT CASE WHEN r.source = h.id THEN r.target ELSE r.source END, h.depth + 1
			FROM relationships r
			JOIN hood h ON r.source = h.id OR r.target = h.id
			WHERE h.depth < $2
		)
		SELECT e.id, e.name, e.label, e.category
		FROM entities e
		JOIN (SELECT DISTINCT id FROM hood) h ON e.id = h.id
		WHERE e.id <> $1
		ORDER BY e.id
		LIMIT $3`,
		entityID, hops, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query neighborhood of %s:\n%w", entityID, err)
	}
	return scanEntities(rows)
}

// Stats counts the stored graph.
func (s *GraphDBStorage) Stats(ctx context.Context) (*common.GraphStats, error) {
	var stats common.GraphStats
	err := s.conn.QueryRow(ctx, `
		SELECT
			(SELECT count(*) FROM entities),
			(SELECT count(*) FROM relationships),
			(SELECT count(*) FROM chunks),
			(SELECT count(*) FROM documents)`,
	).Scan(&stats.Entities, &stats.Relationships, &stats.Chunks, &stats.Documents)
	if err != nil {
		return nil, fmt.Errorf("failed to read graph stats:\n%w", err)
	}
	return &stats, nil
}
