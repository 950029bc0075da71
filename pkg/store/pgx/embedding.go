package pgx

import (
	"context"
	"errors"
	"fmt"

	pgxv5 "github.com/jackc/pgx/v5"
	"github.com/pgvector/pgvector-go"
)

// SetEntityEmbedding caches an embedding fetched from the embedding
// service on the entity row, so later queries skip the bridge round trip.
func (s *GraphDBStorage) SetEntityEmbedding(ctx context.Context, entityID string, embedding []float32) error {
	_, err := s.conn.Exec(ctx, `
		UPDATE entities SET embedding = $2 WHERE id = $1`,
		entityID, pgvector.NewVector(embedding),
	)
	if err != nil {
		return fmt.Errorf("failed to store embedding for %s:\n%w", entityID, err)
	}
	return nil
}

// EntityEmbedding returns the cached embedding for an entity, or nil when
// none has been stored yet.
func (s *GraphDBStorage) EntityEmbedding(ctx context.Context, entityID string) ([]float32, error) {
	var vec *pgvector.Vector
	err := s.conn.QueryRow(ctx, `
		SELECT embedding FROM entities WHERE id = $1`,
		entityID,
	).Scan(&vec)
	if errors.Is(err, pgxv5.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read embedding for %s:\n%w", entityID, err)
	}
	if vec == nil {
		return nil, nil
	}
	return vec.Slice(), nil
}
