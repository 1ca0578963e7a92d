package ollama

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/anishkhadka/vaultflex/internal/core/domain"
	"github.com/anishkhadka/vaultflex/internal/infrastructure/resilience"
)

type Client struct {
	baseURL    string
	genModel   string
	embedModel string
	httpClient *http.Client
	executor   *resilience.Executor
}

func New(baseURL, genModel, embedModel string, executor *resilience.Executor) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		genModel:   genModel,
		embedModel: embedModel,
		httpClient: &http.Client{Timeout: 120 * time.Second},
		executor:   executor,
	}
}

// Embedder builds vectors for chunk and query text. Identical input yields
// identical vectors within a session.
type Embedder struct {
	client *Client
}

func NewEmbedder(client *Client) *Embedder {
	return &Embedder{client: client}
}

func (e *Embedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	request := map[string]any{
		"model": e.client.embedModel,
		"input": texts,
	}

	var response struct {
		Embeddings [][]float32 `json:"embeddings"`
	}
	if err := e.client.call(ctx, "/api/embed", request, &response, "embed"); err != nil {
		return nil, err
	}
	return response.Embeddings, nil
}

func (e *Embedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vectors) == 0 {
		return nil, fmt.Errorf("empty embedding result")
	}
	return vectors[0], nil
}

// TripleExtractor asks the generation model for (subject, predicate, object)
// statements and validates the output strictly: anything that does not parse
// as a well-formed triple list is rejected for the chunk, never repaired.
type TripleExtractor struct {
	client *Client
}

func NewTripleExtractor(client *Client) *TripleExtractor {
	return &TripleExtractor{client: client}
}

func (t *TripleExtractor) ExtractTriples(ctx context.Context, text string) ([]domain.TripleStatement, error) {
	raw, err := t.client.generateJSON(ctx, buildTriplePrompt(text))
	if err != nil {
		return nil, err
	}

	payload := extractJSONArray(raw)
	if payload == "" {
		return nil, domain.WrapError(domain.ErrMalformedExtraction, "extract triples",
			fmt.Errorf("no JSON array in model output"))
	}

	var statements []domain.TripleStatement
	if err := json.Unmarshal([]byte(payload), &statements); err != nil {
		return nil, domain.WrapError(domain.ErrMalformedExtraction, "extract triples", err)
	}
	return statements, nil
}

// EntityRecognizer derives seed entities from a question for graph
// traversal.
type EntityRecognizer struct {
	client *Client
}

func NewEntityRecognizer(client *Client) *EntityRecognizer {
	return &EntityRecognizer{client: client}
}

func (r *EntityRecognizer) RecognizeEntities(ctx context.Context, question string) ([]string, error) {
	raw, err := r.client.generateJSON(ctx, buildEntityPrompt(question))
	if err != nil {
		return nil, err
	}

	payload := extractJSONArray(raw)
	if payload == "" {
		return nil, nil
	}

	var entities []string
	if err := json.Unmarshal([]byte(payload), &entities); err != nil {
		// A question with no recognizable entities degrades the graph
		// source; it does not fail the query.
		return nil, nil
	}

	out := make([]string, 0, len(entities))
	for _, entity := range entities {
		if strings.TrimSpace(entity) != "" {
			out = append(out, strings.TrimSpace(entity))
		}
	}
	return out, nil
}

// Generator synthesizes the final answer over ranked evidence.
type Generator struct {
	client *Client
}

func NewGenerator(client *Client) *Generator {
	return &Generator{client: client}
}

func (g *Generator) GenerateAnswer(ctx context.Context, question string, evidence []domain.RetrievalResult) (string, error) {
	return g.client.generateText(ctx, buildAnswerPrompt(question, evidence))
}

func (c *Client) generateJSON(ctx context.Context, prompt string) (string, error) {
	reqBody := map[string]any{
		"model":  c.genModel,
		"prompt": prompt,
		"stream": false,
		"format": "json",
	}
	return c.generate(ctx, reqBody)
}

func (c *Client) generateText(ctx context.Context, prompt string) (string, error) {
	reqBody := map[string]any{
		"model":  c.genModel,
		"prompt": prompt,
		"stream": false,
	}
	return c.generate(ctx, reqBody)
}

func (c *Client) generate(ctx context.Context, reqBody map[string]any) (string, error) {
	var response struct {
		Response string `json:"response"`
	}
	if err := c.call(ctx, "/api/generate", reqBody, &response, "generate"); err != nil {
		return "", err
	}
	return strings.TrimSpace(response.Response), nil
}

func (c *Client) call(ctx context.Context, path string, payload any, out any, operation string) error {
	do := func(ctx context.Context) error {
		return c.postJSON(ctx, path, payload, out, operation)
	}

	var err error
	if c.executor != nil {
		err = c.executor.Execute(ctx, "ollama."+operation, do, classifyOllamaError)
	} else {
		err = do(ctx)
	}
	return wrapTemporaryIfNeeded(operation, err)
}

func extractJSONArray(raw string) string {
	start := strings.Index(raw, "[")
	end := strings.LastIndex(raw, "]")
	if start >= 0 && end > start {
		return raw[start : end+1]
	}
	return ""
}
