package graph

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"graphkb/internal/util"
	"graphkb/pkg/common"
	"graphkb/pkg/logger"
	"graphkb/pkg/text"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"golang.org/x/sync/errgroup"
)

// IngestStats summarizes one document ingestion. EntityIDs carries the
// canonical ids of every entity the document contributed, for callers
// that post-process them (embedding cache fills).
type IngestStats struct {
	Chunks        int `json:"chunks"`
	Entities      int `json:"entities"`
	Relationships int `json:"relationships"`

	EntityIDs []string `json:"-"`
}

// Chunk splits raw text into sentence-respecting segments bounded by the
// client's chunk size. With a token encoder configured the bound is in
// tokens; an encoder failure falls back to character chunking rather than
// stalling ingestion.
func (g *GraphClient) Chunk(raw string) []string {
	if g.tokenEncoder != "" {
		segments, err := text.ChunkTokens(raw, g.tokenEncoder, g.chunkSize)
		if err == nil {
			return segments
		}
		logger.Warn("Token chunking failed, falling back to characters",
			"encoder", g.tokenEncoder, "err", err)
	}
	return text.Chunk(raw, g.chunkSize)
}

// Extract runs entity and relationship extraction over raw text without
// persisting anything. The text is chunked first and each segment is
// extracted with its predecessor prefixed, so relationships spanning a
// chunk boundary are still found.
func (g *GraphClient) Extract(ctx context.Context, raw string) ([]common.Entity, []common.Relationship, error) {
	segments := g.Chunk(raw)
	return g.extractSegments(ctx, segments)
}

// IngestDocument chunks a document, extracts its graph, and persists
// chunks, entities, relationships, and mention links. All writes are
// idempotent merges, so a retried ingestion converges on the same graph.
func (g *GraphClient) IngestDocument(ctx context.Context, documentID, raw string) (*IngestStats, error) {
	if strings.TrimSpace(raw) == "" {
		return &IngestStats{}, nil
	}

	segments := g.Chunk(raw)
	chunks := make([]common.Chunk, len(segments))
	for i, segText := range segments {
		id, err := gonanoid.New()
		if err != nil {
			return nil, fmt.Errorf("failed to generate chunk id:\n%w", err)
		}
		chunks[i] = common.Chunk{
			ID:         id,
			Text:       util.SanitizePostgresText(segText),
			DocumentID: documentID,
		}
	}

	entities, relations, err := g.extractSegments(ctx, segments)
	if err != nil {
		return nil, err
	}

	if err := util.RetryErrWithContext(ctx, g.maxRetries, func(ctx context.Context) error {
		return g.store.UpsertEntities(ctx, entities)
	}); err != nil {
		return nil, fmt.Errorf("failed to persist entities:\n%w", err)
	}
	if err := util.RetryErrWithContext(ctx, g.maxRetries, func(ctx context.Context) error {
		return g.store.UpsertRelationships(ctx, relations)
	}); err != nil {
		return nil, fmt.Errorf("failed to persist relationships:\n%w", err)
	}
	if err := util.RetryErrWithContext(ctx, g.maxRetries, func(ctx context.Context) error {
		return g.store.UpsertChunks(ctx, chunks)
	}); err != nil {
		return nil, fmt.Errorf("failed to persist chunks:\n%w", err)
	}

	for _, chunk := range chunks {
		mentioned := mentionedEntities(chunk.Text, entities)
		if len(mentioned) == 0 {
			continue
		}
		c := chunk
		if err := util.RetryErrWithContext(ctx, g.maxRetries, func(ctx context.Context) error {
			return g.store.LinkMentions(ctx, c.ID, mentioned)
		}); err != nil {
			return nil, fmt.Errorf("failed to link mentions:\n%w", err)
		}
	}

	entityIDs := make([]string, len(entities))
	for i, ent := range entities {
		entityIDs[i] = ent.ID
	}

	return &IngestStats{
		Chunks:        len(chunks),
		Entities:      len(entities),
		Relationships: len(relations),
		EntityIDs:     entityIDs,
	}, nil
}

// extractSegments runs the extractor over every segment with bounded
// parallelism. Each worker sees its segment prefixed with the previous
// one for cross-boundary context; extraction is pure, so the only shared
// state is the merge below.
func (g *GraphClient) extractSegments(ctx context.Context, segments []string) ([]common.Entity, []common.Relationship, error) {
	var (
		entities  []common.Entity
		relations []common.Relationship
		mergeMu   sync.Mutex
	)

	eg, gCtx := errgroup.WithContext(ctx)
	eg.SetLimit(g.parallelMax)
	for i := range segments {
		idx := i
		eg.Go(func() error {
			if gCtx.Err() != nil {
				return gCtx.Err()
			}
			segText := segments[idx]
			if idx > 0 {
				segText = segments[idx-1] + "\n" + segText
			}
			e, r := g.extractor.Extract(segText)

			mergeMu.Lock()
			entities, relations = mergeExtracted(entities, e, relations, r)
			mergeMu.Unlock()
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, nil, err
	}

	// merge order depends on worker completion; sort for stable output
	sort.Slice(entities, func(i, j int) bool { return entities[i].ID < entities[j].ID })
	sort.Slice(relations, func(i, j int) bool {
		if relations[i].Source != relations[j].Source {
			return relations[i].Source < relations[j].Source
		}
		return relations[i].Target < relations[j].Target
	})
	return entities, relations, nil
}

// mentionedEntities returns the ids of all entities whose canonical form
// occurs as a whole word in the chunk text.
func mentionedEntities(chunkText string, entities []common.Entity) []string {
	folded := strings.ToLower(chunkText)
	var out []string
	for _, ent := range entities {
		if text.ContainsWord(folded, ent.ID) {
			out = append(out, ent.ID)
		}
	}
	return out
}
