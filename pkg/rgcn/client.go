package rgcn

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"graphkb/pkg/logger"
)

const (
	defaultTimeout  = 3 * time.Second
	defaultCooldown = 30 * time.Second
)

// Client talks to the external R-GCN embedding service over HTTP. The
// service is optional: every method degrades to an error the caller can
// treat as "embeddings unavailable", and Available caches the health probe
// so an unreachable service is not hammered on every query.
type Client struct {
	baseURL  string
	http     *http.Client
	cooldown time.Duration

	mu        sync.Mutex
	available bool
	lastProbe time.Time
}

// NewClientParams configures a Client. Timeout applies per request and
// should stay short; a hung embedding service must not stall retrieval.
type NewClientParams struct {
	BaseURL  string
	Timeout  time.Duration
	Cooldown time.Duration
}

// NewClient creates a client for the embedding service at BaseURL.
func NewClient(params NewClientParams) *Client {
	timeout := params.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	cooldown := params.Cooldown
	if cooldown <= 0 {
		cooldown = defaultCooldown
	}
	return &Client{
		baseURL:  strings.TrimRight(params.BaseURL, "/"),
		http:     &http.Client{Timeout: timeout},
		cooldown: cooldown,
	}
}

// HealthStatus mirrors the service's health payload.
type HealthStatus struct {
	Status      string           `json:"status"`
	ModelLoaded bool             `json:"model_loaded"`
	GraphStats  GraphHealthStats `json:"graph_stats"`
}

// GraphHealthStats reports the size of the graph the model was trained on.
type GraphHealthStats struct {
	Nodes         int `json:"nodes"`
	Edges         int `json:"edges"`
	RelationTypes int `json:"relation_types"`
}

// SimilarEntity is one nearest neighbor by embedding cosine similarity.
type SimilarEntity struct {
	EntityID string  `json:"entity_id"`
	Score    float64 `json:"score"`
	Label    string  `json:"label,omitempty"`
}

// Stats reports the service's usage counters.
type Stats struct {
	TotalQueries        int64   `json:"total_queries"`
	AvgSimilarityScore  float64 `json:"avg_similarity_score"`
	EmbeddingsGenerated int64   `json:"embeddings_generated"`
}

// Health probes the service. A non-"ok" status or an unloaded model counts
// as unhealthy even when the HTTP call itself succeeds.
func (c *Client) Health(ctx context.Context) (*HealthStatus, error) {
	var status HealthStatus
	if err := c.get(ctx, "/health", &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// Available reports whether the embedding path may be used right now. The
// result of the last health probe is cached for the cooldown period, so a
// dead service costs one failed request per cooldown window rather than
// one per query.
func (c *Client) Available(ctx context.Context) bool {
	if c == nil || c.baseURL == "" {
		return false
	}

	c.mu.Lock()
	if time.Since(c.lastProbe) < c.cooldown {
		available := c.available
		c.mu.Unlock()
		return available
	}
	c.mu.Unlock()

	status, err := c.Health(ctx)
	available := err == nil && status.Status == "ok" && status.ModelLoaded
	if err != nil {
		logger.Debug("Embedding service unreachable", "err", err)
	}

	c.mu.Lock()
	c.available = available
	c.lastProbe = time.Now()
	c.mu.Unlock()
	return available
}

// Similar returns the topK entities nearest to entityID in embedding
// space, sorted by descending similarity.
func (c *Client) Similar(ctx context.Context, entityID string, topK int) ([]SimilarEntity, error) {
	req := struct {
		EntityID string `json:"entity_id"`
		TopK     int    `json:"top_k"`
	}{EntityID: entityID, TopK: topK}

	var resp struct {
		EntityID        string          `json:"entity_id"`
		SimilarEntities []SimilarEntity `json:"similar_entities"`
	}
	if err := c.post(ctx, "/similar", req, &resp); err != nil {
		return nil, err
	}
	return resp.SimilarEntities, nil
}

// Embeddings fetches the embedding vectors for the given entity ids.
// Entities unknown to the model are absent from the result.
func (c *Client) Embeddings(ctx context.Context, entityIDs []string) (map[string][]float32, error) {
	req := struct {
		EntityIDs []string `json:"entity_ids"`
	}{EntityIDs: entityIDs}

	var resp struct {
		Embeddings map[string][]float32 `json:"embeddings"`
	}
	if err := c.post(ctx, "/embeddings", req, &resp); err != nil {
		return nil, err
	}
	return resp.Embeddings, nil
}

// UsageStats returns the service's usage counters.
func (c *Client) UsageStats(ctx context.Context) (*Stats, error) {
	var stats Stats
	if err := c.get(ctx, "/stats", &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to build request:\n%w", err)
	}
	return c.do(req, out)
}

func (c *Client) post(ctx context.Context, path string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode request body:\n%w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build request:\n%w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("embedding service request failed:\n%w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("embedding service returned %d: %s", resp.StatusCode, string(body))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode embedding service response:\n%w", err)
	}
	return nil
}
