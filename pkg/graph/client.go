package graph

import (
	"errors"

	"graphkb/pkg/extract"
	"graphkb/pkg/store"
)

// GraphClient ties the extraction pipeline to the graph store: it chunks
// document text, extracts entities and relationships from every segment,
// and persists the result as an idempotent merge.
//
// A GraphClient should be created using NewGraphClient.
type GraphClient struct {
	store        store.GraphStorage
	extractor    *extract.Extractor
	chunkSize    int
	tokenEncoder string
	parallelMax  int
	maxRetries   int
}

// NewGraphClientParams defines the configuration for a GraphClient.
//
// ChunkSize is the maximum chunk length, in characters by default or in
// tokens when TokenEncoder names a tiktoken encoding such as
// "cl100k_base". ParallelMax bounds how many segments are extracted
// concurrently during ingestion. MaxRetries applies to each storage
// write.
type NewGraphClientParams struct {
	Store        store.GraphStorage
	Extractor    *extract.Extractor
	ChunkSize    int
	TokenEncoder string
	ParallelMax  int
	MaxRetries   int
}

// NewGraphClient creates and returns a new GraphClient configured with
// the provided parameters. Store is required; everything else has
// defaults.
func NewGraphClient(params NewGraphClientParams) (*GraphClient, error) {
	if params.Store == nil {
		return nil, errors.New("graph client requires a storage backend")
	}
	extractor := params.Extractor
	if extractor == nil {
		extractor = extract.NewExtractor(extract.NewExtractorParams{})
	}
	chunkSize := params.ChunkSize
	if chunkSize <= 0 {
		chunkSize = 1000
	}
	parallelMax := params.ParallelMax
	if parallelMax <= 0 {
		parallelMax = 4
	}
	maxRetries := params.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 3
	}

	return &GraphClient{
		store:        params.Store,
		extractor:    extractor,
		chunkSize:    chunkSize,
		tokenEncoder: params.TokenEncoder,
		parallelMax:  parallelMax,
		maxRetries:   maxRetries,
	}, nil
}
