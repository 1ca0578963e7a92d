package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/anishkhadka/vaultflex/internal/core/domain"
)

// pointNamespace seeds deterministic point IDs, so re-indexing a chunk
// overwrites its point instead of duplicating it.
var pointNamespace = uuid.MustParse("7e9c3c6a-4f1d-4c39-9b7a-1d2f4b8e5a10")

// Client stores each scope's embeddings in its own Qdrant collection, so
// nearest-neighbor search can never leak across scopes.
type Client struct {
	baseURL          string
	collectionPrefix string
	httpClient       *http.Client

	ensureMu sync.Mutex
	ensured  map[string]int
}

func New(baseURL, collectionPrefix string) *Client {
	if collectionPrefix == "" {
		collectionPrefix = "vaultflex"
	}
	return &Client{
		baseURL:          strings.TrimRight(baseURL, "/"),
		collectionPrefix: collectionPrefix,
		httpClient:       &http.Client{Timeout: 60 * time.Second},
		ensured:          make(map[string]int),
	}
}

func (c *Client) collection(scope string) string {
	return c.collectionPrefix + "_" + scope
}

func (c *Client) IndexChunks(ctx context.Context, doc *domain.Document, chunks []domain.Chunk, vectors [][]float32) error {
	if len(chunks) == 0 || len(vectors) == 0 {
		return nil
	}
	if len(chunks) != len(vectors) {
		return fmt.Errorf("chunks/vectors mismatch")
	}

	if err := c.ensureCollection(ctx, doc.Scope, len(vectors[0])); err != nil {
		return err
	}

	type point struct {
		ID      string         `json:"id"`
		Vector  []float32      `json:"vector"`
		Payload map[string]any `json:"payload"`
	}

	points := make([]point, 0, len(chunks))
	for i, chunk := range chunks {
		points = append(points, point{
			ID:     uuid.NewSHA1(pointNamespace, []byte(chunk.Ref())).String(),
			Vector: vectors[i],
			Payload: map[string]any{
				"doc_id":      doc.ID,
				"filename":    doc.Filename,
				"scope":       doc.Scope,
				"chunk_index": chunk.Index,
				"chunk_ref":   chunk.Ref(),
				"text":        chunk.Text,
			},
		})
	}

	body, err := json.Marshal(map[string]any{"points": points})
	if err != nil {
		return fmt.Errorf("marshal upsert body: %w", err)
	}

	url := fmt.Sprintf("%s/collections/%s/points?wait=true", c.baseURL, c.collection(doc.Scope))
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create upsert request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.WrapError(domain.ErrTemporary, "qdrant upsert", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("qdrant upsert status: %s", resp.Status)
	}
	return nil
}

func (c *Client) Search(ctx context.Context, scope string, queryVector []float32, k int) ([]domain.VectorHit, error) {
	if k <= 0 {
		k = 5
	}
	body, err := json.Marshal(map[string]any{
		"vector":       queryVector,
		"limit":        k,
		"with_payload": true,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal search body: %w", err)
	}

	url := fmt.Sprintf("%s/collections/%s/points/search", c.baseURL, c.collection(scope))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create search request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, domain.WrapError(domain.ErrTemporary, "qdrant search", err)
	}
	defer resp.Body.Close()

	// A scope with nothing indexed yet has no collection.
	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("qdrant search status: %s", resp.Status)
	}

	var searchResp struct {
		Result []struct {
			Score   float64        `json:"score"`
			Payload map[string]any `json:"payload"`
		} `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&searchResp); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	hits := make([]domain.VectorHit, 0, len(searchResp.Result))
	for _, r := range searchResp.Result {
		hits = append(hits, domain.VectorHit{
			ChunkRef:   getStringPayload(r.Payload, "chunk_ref"),
			DocumentID: getStringPayload(r.Payload, "doc_id"),
			Filename:   getStringPayload(r.Payload, "filename"),
			ChunkIndex: getIntPayload(r.Payload, "chunk_index"),
			Text:       getStringPayload(r.Payload, "text"),
			Score:      r.Score,
		})
	}

	// Deterministic ordering for equal scores.
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		if hits[i].DocumentID != hits[j].DocumentID {
			return hits[i].DocumentID < hits[j].DocumentID
		}
		return hits[i].ChunkIndex < hits[j].ChunkIndex
	})
	return hits, nil
}

func (c *Client) RemoveScope(ctx context.Context, scope string) error {
	url := fmt.Sprintf("%s/collections/%s", c.baseURL, c.collection(scope))
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, url, nil)
	if err != nil {
		return fmt.Errorf("create delete collection request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.WrapError(domain.ErrTemporary, "qdrant delete collection", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 && resp.StatusCode != http.StatusNotFound {
		return fmt.Errorf("qdrant delete collection status: %s", resp.Status)
	}

	c.ensureMu.Lock()
	delete(c.ensured, scope)
	c.ensureMu.Unlock()
	return nil
}

func (c *Client) ensureCollection(ctx context.Context, scope string, vectorSize int) error {
	c.ensureMu.Lock()
	if size, ok := c.ensured[scope]; ok && size == vectorSize {
		c.ensureMu.Unlock()
		return nil
	}
	c.ensureMu.Unlock()

	body, err := json.Marshal(map[string]any{
		"vectors": map[string]any{
			"size":     vectorSize,
			"distance": "Cosine",
		},
	})
	if err != nil {
		return fmt.Errorf("marshal ensure collection body: %w", err)
	}

	url := fmt.Sprintf("%s/collections/%s", c.baseURL, c.collection(scope))
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create ensure collection request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.WrapError(domain.ErrTemporary, "qdrant ensure collection", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 && resp.StatusCode != http.StatusConflict {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("qdrant ensure collection status: %s: %s", resp.Status, strings.TrimSpace(string(raw)))
	}

	c.ensureMu.Lock()
	c.ensured[scope] = vectorSize
	c.ensureMu.Unlock()
	return nil
}

func getStringPayload(payload map[string]any, key string) string {
	if payload == nil {
		return ""
	}
	v, _ := payload[key].(string)
	return v
}

func getIntPayload(payload map[string]any, key string) int {
	if payload == nil {
		return 0
	}
	if v, ok := payload[key].(float64); ok {
		return int(v)
	}
	return 0
}
