package wallgen

import "context"

// ImageGenerator is the interface a model backend implements.
//
// The first model returned by Models() is considered the default model.
type ImageGenerator interface {
	// Generate issues one image generation request for the prompt.
	Generate(ctx context.Context, prompt string, genConfig *GenerateConfig) (*GenerateResult, error)

	// Ping issues the smallest request the backend accepts. A nil error means
	// the credential the generator is bound to works.
	Ping(ctx context.Context) error

	// Models returns the model definitions supported by this provider.
	// The first model in the list is the default.
	Models() []ModelInfo

	// Close releases any resources held by the generator.
	Close() error
}

// GeneratorFactory builds an ImageGenerator bound to an API key.
type GeneratorFactory func(ctx context.Context, apiKey string) (ImageGenerator, error)

// Provider represents a model provider/backend.
type Provider string

const (
	ProviderGeminiAPI Provider = "gemini"
)

// ProviderConfig configures a specific provider.
type ProviderConfig struct {
	// Provider type
	Provider Provider

	// APIKey for authentication
	APIKey string

	// BaseURL for custom endpoints (optional)
	BaseURL string
}
