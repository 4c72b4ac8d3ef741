package embedder

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultTimeout bounds every outbound embedding request, mirroring the
// teacher's fixed 30s local-provider client timeout.
const DefaultTimeout = 30 * time.Second

// DefaultHealthTimeout bounds a single health-check probe.
const DefaultHealthTimeout = 5 * time.Second

// requestBuilder turns a batch of texts into a provider-specific HTTP
// request; responseParser turns that provider's response body back into
// vectors in input order.
type requestBuilder func(cfg Config, texts []string) (*http.Request, error)
type responseParser func(body []byte) ([][]float32, error)

// healthPath is appended to BaseURL for a lightweight liveness probe:
// the models list (/models) for openai and openai-compatible servers,
// /api/tags for ollama. Gemini has no probe path, so HealthCheck
// returns nil for it without sending a request.
type providerSpec struct {
	buildRequest  requestBuilder
	parseResponse responseParser
	healthPath    string
}

var providerSpecs = map[Kind]providerSpec{
	KindOpenAI:           {buildOpenAIRequest, parseOpenAIResponse, "/models"},
	KindOpenAICompatible: {buildOpenAIRequest, parseOpenAIResponse, "/models"},
	KindOllama:           {buildOllamaRequest, parseOllamaResponse, "/api/tags"},
	KindGemini:           {buildGeminiRequest, parseGeminiResponse, ""},
}

// HTTPProvider is a net/http-backed Provider spanning the gemini/openai/
// ollama/openai-compatible family, generalized from the teacher's
// LocalProvider (embed/client/local.go): JSON-encode request, POST with
// a context-bound timeout, decode JSON response.
type HTTPProvider struct {
	cfg    Config
	client *http.Client
	spec   providerSpec
}

// NewHTTPProvider resolves the provider family from cfg.Provider. An
// unknown Kind is a configuration error surfaced at construction time
// rather than on first use.
func NewHTTPProvider(cfg Config) (*HTTPProvider, error) {
	spec, ok := providerSpecs[cfg.Provider]
	if !ok {
		return nil, fmt.Errorf("embedder: unknown provider %q", cfg.Provider)
	}
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("embedder: base_url is required for provider %q", cfg.Provider)
	}
	if cfg.Dimensions == 0 {
		cfg.Dimensions = 768
	}
	return &HTTPProvider{
		cfg:    cfg,
		client: &http.Client{Timeout: DefaultTimeout},
		spec:   spec,
	}, nil
}

func (p *HTTPProvider) Config() Config { return p.cfg }

// Embed embeds a single text by delegating to EmbedBatch, mirroring the
// teacher's single-item convenience wrapper over its batch endpoint.
func (p *HTTPProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := p.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("embedder: expected 1 vector, got %d", len(vectors))
	}
	return vectors[0], nil
}

// EmbedBatch sends all texts in one request. Callers (internal/batch)
// are responsible for chunking to provider-friendly sizes.
func (p *HTTPProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	req, err := p.spec.buildRequest(p.cfg, texts)
	if err != nil {
		return nil, fmt.Errorf("embedder: build request: %w", err)
	}
	req = req.WithContext(ctx)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("embedder: request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("embedder: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("embedder: provider returned %d: %s", resp.StatusCode, string(body))
	}

	vectors, err := p.spec.parseResponse(body)
	if err != nil {
		return nil, fmt.Errorf("embedder: parse response: %w", err)
	}
	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("embedder: expected %d vectors, got %d", len(texts), len(vectors))
	}
	return vectors, nil
}

// HealthCheck probes the provider with a short-lived GET against its
// well-known liveness path. Hosted providers with no such path (gemini)
// are treated as always-healthy, matching the teacher's pattern of only
// polling health for the self-hosted local provider.
func (p *HTTPProvider) HealthCheck(ctx context.Context) error {
	if p.spec.healthPath == "" {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, DefaultHealthTimeout)
	defer cancel()

	url := strings.TrimRight(p.cfg.BaseURL, "/") + p.spec.healthPath
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("embedder: build health request: %w", err)
	}
	applyAuth(req, p.cfg)

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("embedder: health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("embedder: health check returned %d", resp.StatusCode)
	}
	return nil
}

func applyAuth(req *http.Request, cfg Config) {
	if cfg.APIKey == "" {
		return
	}
	switch cfg.Provider {
	case KindGemini:
		req.Header.Set("x-goog-api-key", cfg.APIKey)
	default:
		req.Header.Set("Authorization", "Bearer "+cfg.APIKey)
	}
}

// --- openai / openai-compatible ---

type openAIEmbedRequest struct {
	Input []string `json:"input"`
	Model string   `json:"model"`
}

type openAIEmbedResponse struct {
	Data []struct {
		Index     int       `json:"index"`
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

func buildOpenAIRequest(cfg Config, texts []string) (*http.Request, error) {
	payload, err := json.Marshal(openAIEmbedRequest{Input: texts, Model: cfg.Model})
	if err != nil {
		return nil, err
	}
	url := strings.TrimRight(cfg.BaseURL, "/") + "/embeddings"
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	applyAuth(req, cfg)
	return req, nil
}

func parseOpenAIResponse(body []byte) ([][]float32, error) {
	var out openAIEmbedResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, err
	}
	vectors := make([][]float32, len(out.Data))
	for _, d := range out.Data {
		if d.Index < 0 || d.Index >= len(vectors) {
			return nil, fmt.Errorf("embedder: embedding index %d out of range", d.Index)
		}
		vectors[d.Index] = d.Embedding
	}
	return vectors, nil
}

// --- ollama ---

type ollamaEmbedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type ollamaEmbedResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
}

func buildOllamaRequest(cfg Config, texts []string) (*http.Request, error) {
	payload, err := json.Marshal(ollamaEmbedRequest{Model: cfg.Model, Input: texts})
	if err != nil {
		return nil, err
	}
	url := strings.TrimRight(cfg.BaseURL, "/") + "/api/embed"
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

func parseOllamaResponse(body []byte) ([][]float32, error) {
	var out ollamaEmbedResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, err
	}
	return out.Embeddings, nil
}

// --- gemini ---

type geminiEmbedRequest struct {
	Requests []geminiSingleRequest `json:"requests"`
}

type geminiSingleRequest struct {
	Model   string           `json:"model"`
	Content geminiPartsField `json:"content"`
}

type geminiPartsField struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiEmbedResponse struct {
	Embeddings []struct {
		Values []float32 `json:"values"`
	} `json:"embeddings"`
}

func buildGeminiRequest(cfg Config, texts []string) (*http.Request, error) {
	model := cfg.Model
	if model == "" {
		model = "models/embedding-001"
	} else if !strings.HasPrefix(model, "models/") {
		model = "models/" + model
	}

	reqs := make([]geminiSingleRequest, len(texts))
	for i, t := range texts {
		reqs[i] = geminiSingleRequest{Model: model, Content: geminiPartsField{Parts: []geminiPart{{Text: t}}}}
	}
	payload, err := json.Marshal(geminiEmbedRequest{Requests: reqs})
	if err != nil {
		return nil, err
	}

	url := strings.TrimRight(cfg.BaseURL, "/") + "/" + model + ":batchEmbedContents"
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	applyAuth(req, cfg)
	return req, nil
}

func parseGeminiResponse(body []byte) ([][]float32, error) {
	var out geminiEmbedResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, err
	}
	vectors := make([][]float32, len(out.Embeddings))
	for i, e := range out.Embeddings {
		vectors[i] = e.Values
	}
	return vectors, nil
}
