package store

import (
	"context"
	"errors"

	"graphkb/pkg/common"
)

// ErrDocumentNotFound is returned when a document id is unknown.
var ErrDocumentNotFound = errors.New("document not found")

// GraphStorage defines the interface for persisting and querying the
// knowledge graph. Write operations are idempotent merges keyed by
// canonical entity id, (source, target) pair, or chunk id, so ingestion
// batches may be retried or reordered safely. Read predicates are the
// building blocks of the retrieval strategies; every one takes a row
// limit to bound query cost on large graphs.
type GraphStorage interface {
	UpsertEntities(ctx context.Context, entities []common.Entity) error
	UpsertRelationships(ctx context.Context, relations []common.Relationship) error
	UpsertChunks(ctx context.Context, chunks []common.Chunk) error
	LinkMentions(ctx context.Context, chunkID string, entityIDs []string) error

	EntitiesMatching(ctx context.Context, keyword string, limit int) ([]common.Entity, error)
	ChunksStartingWith(ctx context.Context, prefix string, limit int) ([]common.Chunk, error)
	ChunksContaining(ctx context.Context, substr string, limit int) ([]common.Chunk, error)
	ChunksMentioning(ctx context.Context, entityID string, limit int) ([]common.Chunk, error)
	SampleChunks(ctx context.Context, limit int) ([]common.Chunk, error)
	Neighborhood(ctx context.Context, entityID string, hops int, limit int) ([]common.Entity, error)

	CreateDocument(ctx context.Context, doc common.Document) error
	GetDocument(ctx context.Context, id string) (*common.Document, error)
	SetDocumentStatus(ctx context.Context, id string, status common.DocumentStatus) error
	DeleteDocument(ctx context.Context, id string) error

	SetEntityEmbedding(ctx context.Context, entityID string, embedding []float32) error
	EntityEmbedding(ctx context.Context, entityID string) ([]float32, error)

	Stats(ctx context.Context) (*common.GraphStats, error)
}
