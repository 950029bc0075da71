package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"graphkb/pkg/common"
	"graphkb/pkg/graph"
	"graphkb/pkg/leaselock"
	"graphkb/pkg/logger"
	"graphkb/pkg/store"
)

// EmbeddingFetcher is the slice of the embedding service client the
// ingest path uses to warm the per-entity embedding cache.
type EmbeddingFetcher interface {
	Available(ctx context.Context) bool
	Embeddings(ctx context.Context, entityIDs []string) (map[string][]float32, error)
}

// ProcessIngestMessage handles one message from the ingest queue: it runs
// the extraction pipeline over the document text and moves the document
// to ready, or to error when ingestion fails for good. A returned error
// sends the message through the retry/DLQ flow, so the status is only set
// to error once retries are exhausted upstream.
func ProcessIngestMessage(
	ctx context.Context,
	client *graph.GraphClient,
	storage store.GraphStorage,
	locks *leaselock.Client,
	bridge EmbeddingFetcher,
	body string,
) error {
	var msg IngestDocumentMsg
	if err := json.Unmarshal([]byte(body), &msg); err != nil {
		return fmt.Errorf("failed to parse ingest message:\n%w", err)
	}
	if msg.DocumentID == "" {
		return fmt.Errorf("ingest message without document id")
	}

	logger.Info("[Queue] Ingesting document",
		"document_id", msg.DocumentID,
		"correlation_id", msg.CorrelationID,
		"size", len(msg.Text),
	)

	err := withDocumentLease(ctx, locks, msg.DocumentID, func(ctx context.Context) error {
		stats, err := client.IngestDocument(ctx, msg.DocumentID, msg.Text)
		if err != nil {
			return fmt.Errorf("failed to ingest document %s:\n%w", msg.DocumentID, err)
		}

		if err := storage.SetDocumentStatus(ctx, msg.DocumentID, common.DocumentReady); err != nil {
			return fmt.Errorf("failed to mark document %s ready:\n%w", msg.DocumentID, err)
		}

		logger.Info("[Queue] Document ingested",
			"document_id", msg.DocumentID,
			"chunks", stats.Chunks,
			"entities", stats.Entities,
			"relationships", stats.Relationships,
		)

		cacheEntityEmbeddings(ctx, storage, bridge, stats.EntityIDs)
		return nil
	})
	return err
}

// cacheEntityEmbeddings warms the pgvector cache for freshly ingested
// entities. Best effort: the embedding service being down or partial
// never fails an ingestion.
func cacheEntityEmbeddings(
	ctx context.Context,
	storage store.GraphStorage,
	bridge EmbeddingFetcher,
	entityIDs []string,
) {
	if bridge == nil || len(entityIDs) == 0 || !bridge.Available(ctx) {
		return
	}

	embeddings, err := bridge.Embeddings(ctx, entityIDs)
	if err != nil {
		logger.Warn("[Queue] Failed to fetch entity embeddings", "err", err)
		return
	}
	cached := 0
	for id, vec := range embeddings {
		if len(vec) == 0 {
			continue
		}
		if err := storage.SetEntityEmbedding(ctx, id, vec); err != nil {
			logger.Warn("[Queue] Failed to cache embedding", "entity", id, "err", err)
			continue
		}
		cached++
	}
	if cached > 0 {
		logger.Debug("[Queue] Cached entity embeddings", "count", cached)
	}
}

// withDocumentLease serializes work on one document across worker
// replicas. A held lease surfaces as an error, so the message goes back
// through the retry queue instead of running concurrently.
func withDocumentLease(
	ctx context.Context,
	locks *leaselock.Client,
	documentID string,
	fn func(ctx context.Context) error,
) error {
	if locks == nil {
		return fn(ctx)
	}
	return locks.WithLease(ctx, "document:"+documentID, leaselock.Options{
		TTL: 2 * time.Minute,
	}, fn)
}

// MarkIngestFailed flags a document as failed after its message exhausted
// all retries.
func MarkIngestFailed(ctx context.Context, storage store.GraphStorage, body string) {
	var msg IngestDocumentMsg
	if err := json.Unmarshal([]byte(body), &msg); err != nil || msg.DocumentID == "" {
		return
	}
	if err := storage.SetDocumentStatus(ctx, msg.DocumentID, common.DocumentError); err != nil {
		logger.Error("[Queue] Failed to mark document as failed",
			"document_id", msg.DocumentID, "err", err)
	}
}
