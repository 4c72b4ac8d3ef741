package embedder

import (
	"context"
	"hash/fnv"
)

// MockProvider is a deterministic in-process stand-in for Provider, used
// in tests that exercise batching/caching without a real HTTP backend.
type MockProvider struct {
	cfg     Config
	Healthy bool
	Calls   int
}

// NewMockProvider returns a MockProvider reporting dimensions-d vectors.
func NewMockProvider(dimensions int) *MockProvider {
	return &MockProvider{
		cfg:     Config{Provider: KindOpenAICompatible, Model: "mock", Dimensions: dimensions},
		Healthy: true,
	}
}

func (m *MockProvider) Config() Config { return m.cfg }

func (m *MockProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := m.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedBatch hashes each text into a stable pseudo-embedding so that
// identical inputs always produce identical vectors.
func (m *MockProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	m.Calls++
	vectors := make([][]float32, len(texts))
	for i, t := range texts {
		vectors[i] = hashVector(t, m.cfg.Dimensions)
	}
	return vectors, nil
}

func (m *MockProvider) HealthCheck(ctx context.Context) error {
	if !m.Healthy {
		return errUnhealthy
	}
	return nil
}

var errUnhealthy = &unhealthyError{}

type unhealthyError struct{}

func (*unhealthyError) Error() string { return "embedder: mock provider unhealthy" }

func hashVector(text string, dimensions int) []float32 {
	vec := make([]float32, dimensions)
	h := fnv.New32a()
	for i := range vec {
		h.Write([]byte{byte(i)})
		h.Write([]byte(text))
		sum := h.Sum32()
		vec[i] = float32(sum%1000) / 1000.0
	}
	return vec
}
