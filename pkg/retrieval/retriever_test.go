package retrieval

import (
	"context"
	"errors"
	"strings"
	"testing"

	"graphkb/pkg/common"
	"graphkb/pkg/rgcn"
)

// memoryStore is an in-memory GraphStorage good enough for exercising the
// retrieval cascade: substring and prefix predicates over folded chunk
// text, keyword matching over entity ids, explicit mention links.
type memoryStore struct {
	entities []common.Entity
	chunks   []common.Chunk
	mentions map[string][]string // entity id -> chunk ids

	failPrefix bool
}

func (m *memoryStore) UpsertEntities(ctx context.Context, entities []common.Entity) error {
	return nil
}

func (m *memoryStore) UpsertRelationships(ctx context.Context, relations []common.Relationship) error {
	return nil
}

func (m *memoryStore) UpsertChunks(ctx context.Context, chunks []common.Chunk) error { return nil }

func (m *memoryStore) LinkMentions(ctx context.Context, chunkID string, entityIDs []string) error {
	return nil
}

func (m *memoryStore) EntitiesMatching(ctx context.Context, keyword string, limit int) ([]common.Entity, error) {
	var out []common.Entity
	for _, ent := range m.entities {
		if len(out) >= limit {
			break
		}
		if strings.Contains(ent.ID, keyword) {
			out = append(out, ent)
		}
	}
	return out, nil
}

func (m *memoryStore) ChunksStartingWith(ctx context.Context, prefix string, limit int) ([]common.Chunk, error) {
	if m.failPrefix {
		return nil, errors.New("prefix scan unavailable")
	}
	var out []common.Chunk
	for _, c := range m.chunks {
		if len(out) >= limit {
			break
		}
		if strings.HasPrefix(strings.ToLower(strings.TrimSpace(c.Text)), prefix) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *memoryStore) ChunksContaining(ctx context.Context, substr string, limit int) ([]common.Chunk, error) {
	var out []common.Chunk
	for _, c := range m.chunks {
		if len(out) >= limit {
			break
		}
		if strings.Contains(strings.ToLower(c.Text), substr) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *memoryStore) ChunksMentioning(ctx context.Context, entityID string, limit int) ([]common.Chunk, error) {
	var out []common.Chunk
	for _, id := range m.mentions[entityID] {
		if len(out) >= limit {
			break
		}
		for _, c := range m.chunks {
			if c.ID == id {
				out = append(out, c)
			}
		}
	}
	return out, nil
}

func (m *memoryStore) SampleChunks(ctx context.Context, limit int) ([]common.Chunk, error) {
	if limit > len(m.chunks) {
		limit = len(m.chunks)
	}
	return m.chunks[:limit], nil
}

func (m *memoryStore) Neighborhood(ctx context.Context, entityID string, hops int, limit int) ([]common.Entity, error) {
	return nil, nil
}

func (m *memoryStore) CreateDocument(ctx context.Context, doc common.Document) error { return nil }

func (m *memoryStore) GetDocument(ctx context.Context, id string) (*common.Document, error) {
	return nil, errors.New("not found")
}

func (m *memoryStore) SetDocumentStatus(ctx context.Context, id string, status common.DocumentStatus) error {
	return nil
}

func (m *memoryStore) DeleteDocument(ctx context.Context, id string) error { return nil }

func (m *memoryStore) SetEntityEmbedding(ctx context.Context, entityID string, embedding []float32) error {
	return nil
}

func (m *memoryStore) EntityEmbedding(ctx context.Context, entityID string) ([]float32, error) {
	return nil, nil
}

func (m *memoryStore) Stats(ctx context.Context) (*common.GraphStats, error) {
	return &common.GraphStats{}, nil
}

type fakeBridge struct {
	available bool
	similar   map[string][]rgcn.SimilarEntity
	err       error
}

func (b *fakeBridge) Available(ctx context.Context) bool { return b.available }

func (b *fakeBridge) Similar(ctx context.Context, entityID string, topK int) ([]rgcn.SimilarEntity, error) {
	if b.err != nil {
		return nil, b.err
	}
	return b.similar[entityID], nil
}

func securityCorpus() *memoryStore {
	return &memoryStore{
		entities: []common.Entity{
			{ID: "md5", Label: common.LabelConcept},
			{ID: "spear phishing", Label: common.LabelConcept},
			{ID: "ron rivest", Label: common.LabelPerson},
		},
		chunks: []common.Chunk{
			{ID: "c1", Text: "MD5 was released in 1991 by Ron Rivest and produces a 128 bit digest from arbitrary input."},
			{ID: "c2", Text: "Spear phishing is a targeted attack in which the attacker researches the victim beforehand."},
			{ID: "c3", Text: "Regular backups limit the damage that ransomware can do to an organization."},
		},
		mentions: map[string][]string{
			"md5":            {"c1"},
			"spear phishing": {"c2"},
			"ron rivest":     {"c1"},
		},
	}
}

func TestRetrieveDefinitionQuery(t *testing.T) {
	r := NewRetriever(NewRetrieverParams{Store: securityCorpus()})

	result, err := r.Retrieve(context.Background(), "What is MD5?")
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if len(result.Snippets) == 0 {
		t.Fatalf("want snippets, got none")
	}
	if !strings.Contains(result.Snippets[0], "MD5 was released") {
		t.Errorf("top snippet = %q, want the MD5 definition chunk", result.Snippets[0])
	}
	if result.UsedEmbedding {
		t.Errorf("no bridge configured, UsedEmbedding should be false")
	}
	if result.Path != PathStandardFallback {
		t.Errorf("path = %q, want %q", result.Path, PathStandardFallback)
	}
}

func TestRetrieveFuzzyFallback(t *testing.T) {
	r := NewRetriever(NewRetrieverParams{Store: securityCorpus()})

	result, err := r.Retrieve(context.Background(), "spaer phishing")
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	found := false
	for _, s := range result.Snippets {
		if strings.Contains(s, "Spear phishing") {
			found = true
		}
	}
	if !found {
		t.Fatalf("want the spear phishing chunk despite the typo, got %v", result.Snippets)
	}
	pairSeen := false
	for _, p := range result.FuzzyPairs {
		if p.Keyword == "spaer" && p.Matched == "spear" {
			pairSeen = true
		}
	}
	if !pairSeen {
		t.Errorf("fuzzy pair spaer/spear missing from metadata: %v", result.FuzzyPairs)
	}
}

func TestRetrieveEmptyCorpus(t *testing.T) {
	r := NewRetriever(NewRetrieverParams{Store: &memoryStore{}})

	result, err := r.Retrieve(context.Background(), "What is MD5?")
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if len(result.Snippets) != 0 {
		t.Errorf("empty corpus should yield no snippets, got %v", result.Snippets)
	}
}

func TestRetrieveNoKeywords(t *testing.T) {
	r := NewRetriever(NewRetrieverParams{Store: securityCorpus()})

	result, err := r.Retrieve(context.Background(), "!!! ???")
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if len(result.Snippets) != 0 {
		t.Errorf("want no snippets for an empty keyword set, got %v", result.Snippets)
	}
}

func TestRetrieveBridgeDown(t *testing.T) {
	r := NewRetriever(NewRetrieverParams{
		Store:  securityCorpus(),
		Bridge: &fakeBridge{available: false},
	})

	result, err := r.Retrieve(context.Background(), "What is MD5?")
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if result.UsedEmbedding {
		t.Errorf("bridge down, UsedEmbedding should be false")
	}
	if len(result.Snippets) == 0 {
		t.Errorf("heuristic fallback should still produce snippets")
	}
}

func TestRetrieveEnhancedPath(t *testing.T) {
	r := NewRetriever(NewRetrieverParams{
		Store: securityCorpus(),
		Bridge: &fakeBridge{
			available: true,
			similar: map[string][]rgcn.SimilarEntity{
				"md5": {{EntityID: "ron rivest", Score: 0.91}},
			},
		},
	})

	result, err := r.Retrieve(context.Background(), "What is MD5?")
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if !result.UsedEmbedding {
		t.Fatalf("bridge available and yielding chunks, UsedEmbedding should be true")
	}
	if result.Path != PathRGCNEnhanced {
		t.Errorf("path = %q, want %q", result.Path, PathRGCNEnhanced)
	}
	foundNeighbor := false
	for _, id := range result.MatchedEntities {
		if id == "ron rivest" {
			foundNeighbor = true
		}
	}
	if !foundNeighbor {
		t.Errorf("similarity neighbor missing from matched entities: %v", result.MatchedEntities)
	}
}

func TestRetrieveBridgeErrorFallsBack(t *testing.T) {
	r := NewRetriever(NewRetrieverParams{
		Store:  securityCorpus(),
		Bridge: &fakeBridge{available: true, err: errors.New("connection reset")},
	})

	result, err := r.Retrieve(context.Background(), "What is MD5?")
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if result.UsedEmbedding {
		t.Errorf("failed bridge call must fall back to the heuristic path")
	}
	if len(result.Snippets) == 0 {
		t.Errorf("heuristic fallback should still produce snippets")
	}
}

func TestRetrieveStrategyErrorIsolated(t *testing.T) {
	store := securityCorpus()
	store.failPrefix = true
	r := NewRetriever(NewRetrieverParams{Store: store})

	result, err := r.Retrieve(context.Background(), "What is MD5?")
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if len(result.Snippets) == 0 {
		t.Errorf("one failing strategy must not abort the cascade")
	}
}

// deadlineStore records whether strategy queries arrive with a deadline
// attached to their context.
type deadlineStore struct {
	*memoryStore
	sawDeadline bool
}

func (d *deadlineStore) ChunksStartingWith(ctx context.Context, prefix string, limit int) ([]common.Chunk, error) {
	if _, ok := ctx.Deadline(); ok {
		d.sawDeadline = true
	}
	return d.memoryStore.ChunksStartingWith(ctx, prefix, limit)
}

func TestRetrieveStrategiesBoundedByDeadline(t *testing.T) {
	store := &deadlineStore{memoryStore: securityCorpus()}
	r := NewRetriever(NewRetrieverParams{Store: store})

	if _, err := r.Retrieve(context.Background(), "What is MD5?"); err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if !store.sawDeadline {
		t.Fatalf("strategy queries must carry a deadline so a hung store cannot stall the cascade")
	}
}

func TestRetrieveCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := NewRetriever(NewRetrieverParams{Store: securityCorpus()})
	result, err := r.Retrieve(ctx, "What is MD5?")
	if err != nil {
		t.Fatalf("Retrieve on cancelled context must not fail hard: %v", err)
	}
	if result == nil {
		t.Fatalf("want a (possibly empty) result, got nil")
	}
}
