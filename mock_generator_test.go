package wallgen

import (
	"context"
	"sync"
)

// MockImageGenerator is a mock implementation of ImageGenerator.
type MockImageGenerator struct {
	GenerateFunc func(ctx context.Context, prompt string, config *GenerateConfig) (*GenerateResult, error)
	PingFunc     func(ctx context.Context) error
	ModelsFunc   func() []ModelInfo
	CloseFunc    func() error

	mu      sync.Mutex
	prompts []string
	closed  int
}

func (m *MockImageGenerator) Generate(ctx context.Context, prompt string, config *GenerateConfig) (*GenerateResult, error) {
	m.mu.Lock()
	m.prompts = append(m.prompts, prompt)
	m.mu.Unlock()

	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, prompt, config)
	}
	return &GenerateResult{}, nil
}

func (m *MockImageGenerator) Ping(ctx context.Context) error {
	if m.PingFunc != nil {
		return m.PingFunc(ctx)
	}
	return nil
}

func (m *MockImageGenerator) Models() []ModelInfo {
	if m.ModelsFunc != nil {
		return m.ModelsFunc()
	}
	return []ModelInfo{}
}

func (m *MockImageGenerator) Close() error {
	m.mu.Lock()
	m.closed++
	m.mu.Unlock()

	if m.CloseFunc != nil {
		return m.CloseFunc()
	}
	return nil
}

func (m *MockImageGenerator) Prompts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.prompts...)
}

// factoryFor returns a GeneratorFactory that always hands out gen and records
// the keys it was asked for.
func factoryFor(gen ImageGenerator, keys *[]string) GeneratorFactory {
	var mu sync.Mutex
	return func(_ context.Context, apiKey string) (ImageGenerator, error) {
		if keys != nil {
			mu.Lock()
			*keys = append(*keys, apiKey)
			mu.Unlock()
		}
		return gen, nil
	}
}

func imageResult(data string) *GenerateResult {
	return &GenerateResult{
		Images: []GeneratedImage{{Data: []byte(data), MIMEType: "image/png"}},
	}
}
