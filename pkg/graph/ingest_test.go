package graph

import (
	"context"
	"errors"
	"sync"
	"testing"

	"graphkb/pkg/common"
)

// recordStore captures writes so tests can inspect what ingestion
// persisted. Read predicates are unused here and return nothing.
type recordStore struct {
	mu sync.Mutex

	entities  map[string]common.Entity
	relations []common.Relationship
	chunks    []common.Chunk
	mentions  map[string][]string

	entityWriteFailures int
}

func newRecordStore() *recordStore {
	return &recordStore{
		entities: make(map[string]common.Entity),
		mentions: make(map[string][]string),
	}
}

func (r *recordStore) UpsertEntities(ctx context.Context, entities []common.Entity) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.entityWriteFailures > 0 {
		r.entityWriteFailures--
		return errors.New("transient write failure")
	}
	for _, ent := range entities {
		r.entities[ent.ID] = ent
	}
	return nil
}

func (r *recordStore) UpsertRelationships(ctx context.Context, relations []common.Relationship) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.relations = append(r.relations, relations...)
	return nil
}

func (r *recordStore) UpsertChunks(ctx context.Context, chunks []common.Chunk) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.chunks = append(r.chunks, chunks...)
	return nil
}

func (r *recordStore) LinkMentions(ctx context.Context, chunkID string, entityIDs []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.mentions[chunkID] = append(r.mentions[chunkID], entityIDs...)
	return nil
}

func (r *recordStore) EntitiesMatching(ctx context.Context, keyword string, limit int) ([]common.Entity, error) {
	return nil, nil
}

func (r *recordStore) ChunksStartingWith(ctx context.Context, prefix string, limit int) ([]common.Chunk, error) {
	return nil, nil
}

func (r *recordStore) ChunksContaining(ctx context.Context, substr string, limit int) ([]common.Chunk, error) {
	return nil, nil
}

func (r *recordStore) ChunksMentioning(ctx context.Context, entityID string, limit int) ([]common.Chunk, error) {
	return nil, nil
}

func (r *recordStore) SampleChunks(ctx context.Context, limit int) ([]common.Chunk, error) {
	return nil, nil
}

func (r *recordStore) Neighborhood(ctx context.Context, entityID string, hops int, limit int) ([]common.Entity, error) {
	return nil, nil
}

func (r *recordStore) CreateDocument(ctx context.Context, doc common.Document) error { return nil }

func (r *recordStore) GetDocument(ctx context.Context, id string) (*common.Document, error) {
	return nil, errors.New("not found")
}

func (r *recordStore) SetDocumentStatus(ctx context.Context, id string, status common.DocumentStatus) error {
	return nil
}

func (r *recordStore) DeleteDocument(ctx context.Context, id string) error { return nil }

func (r *recordStore) SetEntityEmbedding(ctx context.Context, entityID string, embedding []float32) error {
	return nil
}

func (r *recordStore) EntityEmbedding(ctx context.Context, entityID string) ([]float32, error) {
	return nil, nil
}

func (r *recordStore) Stats(ctx context.Context) (*common.GraphStats, error) {
	return &common.GraphStats{}, nil
}

func findRelation(rels []common.Relationship, source, target string) *common.Relationship {
	for i := range rels {
		if rels[i].Source == source && rels[i].Target == target {
			return &rels[i]
		}
	}
	return nil
}

func TestIngestDocumentPersistsGraph(t *testing.T) {
	rec := newRecordStore()
	client, err := NewGraphClient(NewGraphClientParams{Store: rec})
	if err != nil {
		t.Fatal(err)
	}

	stats, err := client.IngestDocument(context.Background(),
		"doc-1",
		"Tim Cook is the CEO of Apple. Apple is headquartered in Cupertino.",
	)
	if err != nil {
		t.Fatalf("IngestDocument: %v", err)
	}
	if stats.Chunks != 1 {
		t.Errorf("chunks = %d, want 1", stats.Chunks)
	}

	if _, ok := rec.entities["tim cook"]; !ok {
		t.Errorf("entity tim cook not persisted: %v", rec.entities)
	}
	if ent, ok := rec.entities["apple"]; !ok || ent.Label != common.LabelOrganization {
		t.Errorf("entity apple should be an Organization, got %+v", ent)
	}

	if rel := findRelation(rec.relations, "tim cook", "apple"); rel == nil || rel.Type == common.RelatedTo {
		t.Errorf("want a specific tim cook -> apple edge, got %v", rec.relations)
	}

	if len(rec.chunks) != 1 || rec.chunks[0].DocumentID != "doc-1" {
		t.Fatalf("chunk not persisted with document id: %+v", rec.chunks)
	}
	mentioned := rec.mentions[rec.chunks[0].ID]
	hasApple := false
	for _, id := range mentioned {
		if id == "apple" {
			hasApple = true
		}
	}
	if !hasApple {
		t.Errorf("chunk should mention apple, got %v", mentioned)
	}
}

func TestIngestCrossChunkRelationship(t *testing.T) {
	rec := newRecordStore()
	client, err := NewGraphClient(NewGraphClientParams{Store: rec, ChunkSize: 60})
	if err != nil {
		t.Fatal(err)
	}

	stats, err := client.IngestDocument(context.Background(),
		"doc-2",
		"Acme Corp builds industrial robots for factories. The company was founded by Sarah Connor in Berlin.",
	)
	if err != nil {
		t.Fatalf("IngestDocument: %v", err)
	}
	if stats.Chunks != 2 {
		t.Fatalf("chunks = %d, want 2 for this chunk size", stats.Chunks)
	}

	rel := findRelation(rec.relations, "sarah connor", "acme corp")
	if rel == nil {
		t.Fatalf("cross-chunk relationship missing, got %v", rec.relations)
	}
	if rel.Type != "FOUNDED" {
		t.Errorf("type = %q, want FOUNDED", rel.Type)
	}
}

func TestIngestEmptyDocument(t *testing.T) {
	rec := newRecordStore()
	client, err := NewGraphClient(NewGraphClientParams{Store: rec})
	if err != nil {
		t.Fatal(err)
	}

	stats, err := client.IngestDocument(context.Background(), "doc-3", "   \n  ")
	if err != nil {
		t.Fatalf("IngestDocument: %v", err)
	}
	if stats.Chunks != 0 || stats.Entities != 0 {
		t.Errorf("empty document should persist nothing, got %+v", stats)
	}
	if len(rec.chunks) != 0 {
		t.Errorf("no chunks expected, got %v", rec.chunks)
	}
}

func TestIngestRetriesTransientWriteFailure(t *testing.T) {
	rec := newRecordStore()
	rec.entityWriteFailures = 2

	client, err := NewGraphClient(NewGraphClientParams{Store: rec, MaxRetries: 3})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := client.IngestDocument(context.Background(),
		"doc-4",
		"Tim Cook is the CEO of Apple.",
	); err != nil {
		t.Fatalf("transient failures within the retry budget must not surface: %v", err)
	}
	if _, ok := rec.entities["apple"]; !ok {
		t.Errorf("entities should be persisted after retry, got %v", rec.entities)
	}
}

func TestExtractWithoutPersisting(t *testing.T) {
	rec := newRecordStore()
	client, err := NewGraphClient(NewGraphClientParams{Store: rec})
	if err != nil {
		t.Fatal(err)
	}

	entities, relations, err := client.Extract(context.Background(), "Tim Cook is the CEO of Apple.")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(entities) == 0 || len(relations) == 0 {
		t.Fatalf("want entities and relations, got %d/%d", len(entities), len(relations))
	}
	if len(rec.chunks) != 0 || len(rec.entities) != 0 {
		t.Errorf("Extract must not write to the store")
	}
}
