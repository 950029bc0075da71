package retrieval

import (
	"context"
	"time"

	"graphkb/pkg/logger"
	"graphkb/pkg/rgcn"
	"graphkb/pkg/store"
)

// Path values reported in retrieval metadata.
const (
	PathRGCNEnhanced     = "rgcn_enhanced"
	PathStandardFallback = "standard_fallback"
)

const (
	defaultRowCap         = 10
	defaultCandidateFloor = 10
	defaultSparseFloor    = 3
	defaultSampleSize     = 200
	defaultSeedEntities   = 3
	defaultSimilarTopK    = 5
	maxSnippets           = 5

	// defaultStrategyTimeout bounds a single strategy's graph queries so
	// one slow query cannot stall the whole cascade.
	defaultStrategyTimeout = 2 * time.Second
)

// EmbeddingBridge is the slice of the embedding service client the
// retriever needs. *rgcn.Client satisfies it.
type EmbeddingBridge interface {
	Available(ctx context.Context) bool
	Similar(ctx context.Context, entityID string, topK int) ([]rgcn.SimilarEntity, error)
}

// Result is what one retrieval call hands to the answer-generation layer:
// ranked snippet texts plus the metadata describing how they were found.
type Result struct {
	Snippets        []string    `json:"snippets"`
	Path            string      `json:"path"`
	UsedEmbedding   bool        `json:"used_embedding"`
	MatchedEntities []string    `json:"matched_entities"`
	FuzzyPairs      []FuzzyPair `json:"fuzzy_pairs,omitempty"`
}

// Retriever runs the retrieval pipeline: keyword extraction, the
// embedding-enhanced path when the bridge is up, the heuristic strategy
// cascade otherwise, then scoring and tiered selection.
type Retriever struct {
	store           store.GraphStorage
	bridge          EmbeddingBridge
	strategies      []strategy
	limits          limits
	strategyTimeout time.Duration
}

// NewRetrieverParams configures a Retriever. Bridge may be nil, which
// disables the embedding path entirely. Zero-valued bounds fall back to
// defaults.
type NewRetrieverParams struct {
	Store           store.GraphStorage
	Bridge          EmbeddingBridge
	RowCap          int
	CandidateFloor  int
	SparseFloor     int
	SampleSize      int
	MaxDistance     int
	StrategyTimeout time.Duration
}

// NewRetriever creates a Retriever over the given graph store.
func NewRetriever(params NewRetrieverParams) *Retriever {
	strategyTimeout := params.StrategyTimeout
	if strategyTimeout <= 0 {
		strategyTimeout = defaultStrategyTimeout
	}
	l := limits{
		rowCap:         orDefault(params.RowCap, defaultRowCap),
		candidateFloor: orDefault(params.CandidateFloor, defaultCandidateFloor),
		sparseFloor:    orDefault(params.SparseFloor, defaultSparseFloor),
		sampleSize:     orDefault(params.SampleSize, defaultSampleSize),
		maxDistance:    orDefault(params.MaxDistance, defaultMaxDistance),
	}
	return &Retriever{
		store:  params.Store,
		bridge: params.Bridge,
		strategies: []strategy{
			&definitionPrefix{store: params.Store, limits: l},
			&entityMatch{store: params.Store, limits: l},
			&phraseMatch{store: params.Store, limits: l},
			&keywordMatch{store: params.Store, limits: l},
			&fuzzyMatch{store: params.Store, limits: l},
		},
		limits:          l,
		strategyTimeout: strategyTimeout,
	}
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

// Retrieve answers a query with ranked snippet texts. It never fails hard:
// strategy errors are isolated, an unreachable embedding service falls
// back to the heuristic cascade, and cancellation mid-cascade returns
// whatever has been accumulated so far. An empty snippet list is a valid
// answer meaning "nothing good enough was found".
func (r *Retriever) Retrieve(ctx context.Context, query string) (*Result, error) {
	result := &Result{
		Snippets:        []string{},
		Path:            PathStandardFallback,
		MatchedEntities: []string{},
	}

	keywords := Keywords(query)
	if len(keywords) == 0 {
		return result, nil
	}
	terms := newQueryTerms(query, keywords)

	if r.bridge != nil && r.bridge.Available(ctx) {
		if r.retrieveEnhanced(ctx, terms, result) {
			result.Path = PathRGCNEnhanced
			result.UsedEmbedding = true
			return result, nil
		}
		// reset anything the failed enhanced attempt left behind
		*result = Result{
			Snippets:        []string{},
			Path:            PathStandardFallback,
			MatchedEntities: []string{},
		}
	}

	var cands []Candidate
	for _, s := range r.strategies {
		if ctx.Err() != nil {
			break
		}
		out, err := r.runStrategy(ctx, s, strategyInput{terms: terms, have: len(cands)})
		if err != nil {
			logger.Warn("Retrieval strategy failed", "strategy", s.name(), "err", err)
			continue
		}
		cands = append(cands, out.candidates...)
		result.MatchedEntities = appendUnique(result.MatchedEntities, out.matchedEntities)
		result.FuzzyPairs = appendUniquePairs(result.FuzzyPairs, out.fuzzyPairs)
	}

	r.finish(terms, cands, result)
	return result, nil
}

func (r *Retriever) runStrategy(ctx context.Context, s strategy, in strategyInput) (strategyOutput, error) {
	if r.strategyTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.strategyTimeout)
		defer cancel()
	}
	return s.run(ctx, in)
}

// retrieveEnhanced tries the embedding path: resolve a few seed entities
// from the keywords, expand them to their nearest neighbors via the
// bridge, and gather chunks mentioning any entity in the union. Reports
// false on any failure or empty yield so the caller falls back to the
// heuristic cascade.
func (r *Retriever) retrieveEnhanced(ctx context.Context, terms queryTerms, result *Result) bool {
	var seeds []string
	for _, kw := range terms.keywords {
		if keepWords[kw] || len(seeds) >= defaultSeedEntities {
			continue
		}
		entities, err := r.store.EntitiesMatching(ctx, kw, r.limits.rowCap)
		if err != nil {
			logger.Warn("Entity lookup failed on embedding path", "err", err)
			return false
		}
		for _, ent := range entities {
			if len(seeds) >= defaultSeedEntities {
				break
			}
			seeds = append(seeds, ent.ID)
		}
	}
	if len(seeds) == 0 {
		return false
	}

	union := appendUnique(nil, seeds)
	for _, seed := range seeds {
		similar, err := r.bridge.Similar(ctx, seed, defaultSimilarTopK)
		if err != nil {
			logger.Warn("Similarity lookup failed, falling back", "entity", seed, "err", err)
			return false
		}
		for _, sim := range similar {
			union = appendUnique(union, []string{sim.EntityID})
		}
	}

	var cands []Candidate
	for _, entityID := range union {
		chunks, err := r.store.ChunksMentioning(ctx, entityID, r.limits.rowCap)
		if err != nil {
			logger.Warn("Chunk fetch failed on embedding path", "entity", entityID, "err", err)
			return false
		}
		for _, c := range chunks {
			cands = append(cands, Candidate{Chunk: c, Base: 50})
		}
	}
	if len(cands) == 0 {
		return false
	}

	result.MatchedEntities = appendUnique(result.MatchedEntities, union)
	r.finish(terms, cands, result)
	return len(result.Snippets) > 0
}

// finish ranks the accumulated candidates and fills in the snippet list,
// deduplicated by text.
func (r *Retriever) finish(terms queryTerms, cands []Candidate, result *Result) {
	selected := selectTiered(rank(terms, cands))
	seen := make(map[string]bool, len(selected))
	for _, s := range selected {
		if len(result.Snippets) >= maxSnippets {
			break
		}
		if seen[s.Chunk.Text] {
			continue
		}
		seen[s.Chunk.Text] = true
		result.Snippets = append(result.Snippets, s.Chunk.Text)
	}
}

func appendUnique(dst []string, add []string) []string {
	for _, s := range add {
		exists := false
		for _, have := range dst {
			if have == s {
				exists = true
				break
			}
		}
		if !exists {
			dst = append(dst, s)
		}
	}
	return dst
}

func appendUniquePairs(dst []FuzzyPair, add []FuzzyPair) []FuzzyPair {
	for _, p := range add {
		exists := false
		for _, have := range dst {
			if have == p {
				exists = true
				break
			}
		}
		if !exists {
			dst = append(dst, p)
		}
	}
	return dst
}
