// Package embedder defines the embedding-provider capability set (spec.md
// §9: "embedder exposes {embed, embed_batch, health_check, config}") and
// an HTTP-client implementation covering the gemini/openai/ollama/
// openai-compatible provider family (spec.md §6.2). Grounded on the
// teacher's internal/embed/client/local.go HTTP request/response and
// timeout-bound net/http.Client idiom, generalized from one hardcoded
// local server to a pluggable base-url/api-key/model provider.
package embedder

import (
	"context"
)

// Kind tags the supported provider families.
type Kind string

const (
	KindGemini           Kind = "gemini"
	KindOpenAI           Kind = "openai"
	KindOllama           Kind = "ollama"
	KindOpenAICompatible Kind = "openai-compatible"
)

// Config is the embedder's resolved, read-only configuration (spec.md
// §6.2 embedding.*).
type Config struct {
	Provider   Kind
	APIKey     string
	BaseURL    string
	Model      string
	Dimensions int
}

// Provider is the capability the core consumes.
type Provider interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	HealthCheck(ctx context.Context) error
	Config() Config
}
