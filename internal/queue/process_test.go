package queue

import (
	"context"
	"encoding/json"
	"testing"

	"graphkb/pkg/common"
	"graphkb/pkg/graph"
)

// statusStore tracks document lifecycle transitions; graph writes are
// accepted and discarded.
type statusStore struct {
	statuses   map[string]common.DocumentStatus
	deleted    []string
	embeddings map[string][]float32
}

func newStatusStore() *statusStore {
	return &statusStore{
		statuses:   make(map[string]common.DocumentStatus),
		embeddings: make(map[string][]float32),
	}
}

func (s *statusStore) UpsertEntities(ctx context.Context, entities []common.Entity) error {
	return nil
}

func (s *statusStore) UpsertRelationships(ctx context.Context, relations []common.Relationship) error {
	return nil
}

func (s *statusStore) UpsertChunks(ctx context.Context, chunks []common.Chunk) error { return nil }

func (s *statusStore) LinkMentions(ctx context.Context, chunkID string, entityIDs []string) error {
	return nil
}

func (s *statusStore) EntitiesMatching(ctx context.Context, keyword string, limit int) ([]common.Entity, error) {
	return nil, nil
}

func (s *statusStore) ChunksStartingWith(ctx context.Context, prefix string, limit int) ([]common.Chunk, error) {
	return nil, nil
}

func (s *statusStore) ChunksContaining(ctx context.Context, substr string, limit int) ([]common.Chunk, error) {
	return nil, nil
}

func (s *statusStore) ChunksMentioning(ctx context.Context, entityID string, limit int) ([]common.Chunk, error) {
	return nil, nil
}

func (s *statusStore) SampleChunks(ctx context.Context, limit int) ([]common.Chunk, error) {
	return nil, nil
}

func (s *statusStore) Neighborhood(ctx context.Context, entityID string, hops int, limit int) ([]common.Entity, error) {
	return nil, nil
}

func (s *statusStore) CreateDocument(ctx context.Context, doc common.Document) error {
	s.statuses[doc.ID] = doc.Status
	return nil
}

func (s *statusStore) GetDocument(ctx context.Context, id string) (*common.Document, error) {
	return &common.Document{ID: id, Status: s.statuses[id]}, nil
}

func (s *statusStore) SetDocumentStatus(ctx context.Context, id string, status common.DocumentStatus) error {
	s.statuses[id] = status
	return nil
}

func (s *statusStore) DeleteDocument(ctx context.Context, id string) error {
	s.deleted = append(s.deleted, id)
	return nil
}

func (s *statusStore) SetEntityEmbedding(ctx context.Context, entityID string, embedding []float32) error {
	s.embeddings[entityID] = embedding
	return nil
}

func (s *statusStore) EntityEmbedding(ctx context.Context, entityID string) ([]float32, error) {
	return nil, nil
}

func (s *statusStore) Stats(ctx context.Context) (*common.GraphStats, error) {
	return &common.GraphStats{}, nil
}

// fakeFetcher returns a fixed embedding for every requested entity.
type fakeFetcher struct {
	up bool
}

func (f *fakeFetcher) Available(ctx context.Context) bool { return f.up }

func (f *fakeFetcher) Embeddings(ctx context.Context, entityIDs []string) (map[string][]float32, error) {
	out := make(map[string][]float32, len(entityIDs))
	for _, id := range entityIDs {
		out[id] = []float32{0.1, 0.2}
	}
	return out, nil
}

func TestProcessIngestMessageMarksReady(t *testing.T) {
	storage := newStatusStore()
	client, err := graph.NewGraphClient(graph.NewGraphClientParams{Store: storage})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	body, _ := json.Marshal(IngestDocumentMsg{
		DocumentID: "doc-1",
		Name:       "notes",
		Text:       "Ada Lovelace worked with Charles Babbage in London.",
	})

	if err := ProcessIngestMessage(context.Background(), client, storage, nil, nil, string(body)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := storage.statuses["doc-1"]; got != common.DocumentReady {
		t.Fatalf("expected status ready, got %q", got)
	}
}

func TestProcessIngestMessageRejectsBadPayload(t *testing.T) {
	storage := newStatusStore()
	client, err := graph.NewGraphClient(graph.NewGraphClientParams{Store: storage})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := ProcessIngestMessage(context.Background(), client, storage, nil, nil, "{not json"); err == nil {
		t.Fatal("expected error for malformed payload")
	}
	if err := ProcessIngestMessage(context.Background(), client, storage, nil, nil, `{"text":"no id"}`); err == nil {
		t.Fatal("expected error for missing document id")
	}
}

func TestProcessIngestMessageCachesEmbeddings(t *testing.T) {
	storage := newStatusStore()
	client, err := graph.NewGraphClient(graph.NewGraphClientParams{Store: storage})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	body, _ := json.Marshal(IngestDocumentMsg{
		DocumentID: "doc-2",
		Name:       "notes",
		Text:       "Grace Hopper invented the compiler.",
	})

	if err := ProcessIngestMessage(context.Background(), client, storage, nil, &fakeFetcher{up: true}, string(body)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := storage.embeddings["grace hopper"]; !ok {
		t.Fatalf("expected embedding cached for grace hopper, got %v", storage.embeddings)
	}
}

func TestProcessIngestMessageSkipsEmbeddingsWhenBridgeDown(t *testing.T) {
	storage := newStatusStore()
	client, err := graph.NewGraphClient(graph.NewGraphClientParams{Store: storage})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	body, _ := json.Marshal(IngestDocumentMsg{
		DocumentID: "doc-4",
		Name:       "notes",
		Text:       "Grace Hopper invented the compiler.",
	})

	if err := ProcessIngestMessage(context.Background(), client, storage, nil, &fakeFetcher{up: false}, string(body)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(storage.embeddings) != 0 {
		t.Fatalf("expected no cached embeddings, got %v", storage.embeddings)
	}
}

func TestProcessDeleteMessageRemovesDocument(t *testing.T) {
	storage := newStatusStore()
	body, _ := json.Marshal(DeleteDocumentMsg{DocumentID: "doc-9"})

	if err := ProcessDeleteMessage(context.Background(), storage, nil, string(body)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(storage.deleted) != 1 || storage.deleted[0] != "doc-9" {
		t.Fatalf("expected doc-9 deleted, got %v", storage.deleted)
	}
}

func TestMarkIngestFailedSetsErrorStatus(t *testing.T) {
	storage := newStatusStore()
	storage.statuses["doc-3"] = common.DocumentProcessing

	body, _ := json.Marshal(IngestDocumentMsg{DocumentID: "doc-3"})
	MarkIngestFailed(context.Background(), storage, string(body))

	if got := storage.statuses["doc-3"]; got != common.DocumentError {
		t.Fatalf("expected status error, got %q", got)
	}
}
