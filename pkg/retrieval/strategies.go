package retrieval

import (
	"context"
	"strings"
	"unicode"

	"graphkb/pkg/store"
)

// limits bounds the work each strategy may do per call.
type limits struct {
	rowCap         int // rows fetched per keyword or entity
	candidateFloor int // per-keyword strategy stops once this many candidates exist
	sparseFloor    int // fuzzy strategy runs only below this
	sampleSize     int // chunks sampled for fuzzy comparison
	maxDistance    int // fuzzy edit distance for long words
}

type strategyInput struct {
	terms queryTerms
	have  int // candidates accumulated by earlier strategies
}

type strategyOutput struct {
	candidates      []Candidate
	matchedEntities []string
	fuzzyPairs      []FuzzyPair
}

// strategy is one candidate generator in the cascade. Implementations must
// treat the graph store as the only side channel and report failures as
// errors; the orchestrator isolates them.
type strategy interface {
	name() string
	run(ctx context.Context, in strategyInput) (strategyOutput, error)
}

// definitionPrefix finds chunks that open with the primary topic, the
// strongest definition signal there is ("md5 is a ...").
type definitionPrefix struct {
	store  store.GraphStorage
	limits limits
}

func (s *definitionPrefix) name() string { return "definition_prefix" }

func (s *definitionPrefix) run(ctx context.Context, in strategyInput) (strategyOutput, error) {
	var out strategyOutput
	if in.terms.topic == "" {
		return out, nil
	}
	chunks, err := s.store.ChunksStartingWith(ctx, in.terms.topic, s.limits.rowCap)
	if err != nil {
		return out, err
	}
	for _, c := range chunks {
		out.candidates = append(out.candidates, Candidate{Chunk: c, Base: 100, Definition: true})
	}
	return out, nil
}

// entityMatch resolves keywords against entity canonical ids and pulls the
// chunks mentioning each hit.
type entityMatch struct {
	store  store.GraphStorage
	limits limits
}

func (s *entityMatch) name() string { return "entity_match" }

func (s *entityMatch) run(ctx context.Context, in strategyInput) (strategyOutput, error) {
	var out strategyOutput
	seen := make(map[string]bool)
	for _, kw := range in.terms.keywords {
		if keepWords[kw] {
			continue
		}
		entities, err := s.store.EntitiesMatching(ctx, kw, s.limits.rowCap)
		if err != nil {
			return out, err
		}
		for _, ent := range entities {
			if seen[ent.ID] {
				continue
			}
			seen[ent.ID] = true
			out.matchedEntities = append(out.matchedEntities, ent.ID)

			chunks, err := s.store.ChunksMentioning(ctx, ent.ID, s.limits.rowCap)
			if err != nil {
				return out, err
			}
			for _, c := range chunks {
				out.candidates = append(out.candidates, Candidate{Chunk: c, Base: 50})
			}
		}
	}
	return out, nil
}

// phraseMatch looks for the whole query occurring verbatim inside a chunk.
type phraseMatch struct {
	store  store.GraphStorage
	limits limits
}

func (s *phraseMatch) name() string { return "phrase_match" }

func (s *phraseMatch) run(ctx context.Context, in strategyInput) (strategyOutput, error) {
	var out strategyOutput
	if in.terms.phrase == "" || !strings.Contains(in.terms.phrase, " ") {
		return out, nil
	}
	chunks, err := s.store.ChunksContaining(ctx, in.terms.phrase, s.limits.rowCap)
	if err != nil {
		return out, err
	}
	for _, c := range chunks {
		out.candidates = append(out.candidates, Candidate{Chunk: c, Base: 80})
	}
	return out, nil
}

// keywordMatch fetches chunks containing any single keyword. It only runs
// while the accumulated candidate count is low; per-keyword substring
// scans are the most expensive non-fuzzy queries.
type keywordMatch struct {
	store  store.GraphStorage
	limits limits
}

func (s *keywordMatch) name() string { return "keyword_match" }

func (s *keywordMatch) run(ctx context.Context, in strategyInput) (strategyOutput, error) {
	var out strategyOutput
	have := in.have
	for _, kw := range in.terms.keywords {
		if have >= s.limits.candidateFloor {
			break
		}
		if keepWords[kw] {
			continue
		}
		chunks, err := s.store.ChunksContaining(ctx, kw, s.limits.rowCap)
		if err != nil {
			return out, err
		}
		for _, c := range chunks {
			out.candidates = append(out.candidates, Candidate{Chunk: c, Base: 25})
			have++
		}
	}
	return out, nil
}

// fuzzyMatch is the last resort for queries with typos: sample a bounded
// set of chunks and compare every keyword against every chunk token with
// the length-scaled edit distance. CPU-bound, so it is skipped entirely
// once earlier strategies produced enough candidates.
type fuzzyMatch struct {
	store  store.GraphStorage
	limits limits
}

func (s *fuzzyMatch) name() string { return "fuzzy_match" }

func (s *fuzzyMatch) run(ctx context.Context, in strategyInput) (strategyOutput, error) {
	var out strategyOutput
	if in.have >= s.limits.sparseFloor {
		return out, nil
	}
	chunks, err := s.store.SampleChunks(ctx, s.limits.sampleSize)
	if err != nil {
		return out, err
	}

	for _, c := range chunks {
		if ctx.Err() != nil {
			return out, ctx.Err()
		}
		tokens := foldedTokens(c.Text)
		hit := false
		for _, kw := range in.terms.keywords {
			if keepWords[kw] {
				continue
			}
			for _, tok := range tokens {
				if IsSimilarWord(kw, tok, s.limits.maxDistance) {
					hit = true
					if kw != tok {
						out.fuzzyPairs = append(out.fuzzyPairs, FuzzyPair{Keyword: kw, Matched: tok})
					}
					break
				}
			}
		}
		if hit {
			out.candidates = append(out.candidates, Candidate{Chunk: c, Base: 15})
		}
	}
	return out, nil
}

func foldedTokens(s string) []string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}
	return strings.Fields(b.String())
}
