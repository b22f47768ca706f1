package wallgen

import (
	"log/slog"
	"time"

	"github.com/mhpenta/wallgen/ratelimiter"
)

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithLogger sets a structured logger for the client. A nil logger keeps
// slog.Default().
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithCredentialStore sets where the stored API key is read from.
func WithCredentialStore(store *CredentialStore) ClientOption {
	return func(c *Client) {
		c.credentials = store
	}
}

// WithAPIKey sets an explicit key that takes precedence over the stored one.
func WithAPIKey(apiKey string) ClientOption {
	return func(c *Client) {
		c.apiKey = apiKey
	}
}

// WithEnvAPIKey sets the fallback key used when nothing is stored,
// typically read from GEMINI_API_KEY.
func WithEnvAPIKey(apiKey string) ClientOption {
	return func(c *Client) {
		c.envAPIKey = apiKey
	}
}

// WithGenerateConfig sets the base request configuration. The aspect ratio is
// always forced to 9:16.
func WithGenerateConfig(config *GenerateConfig) ClientOption {
	return func(c *Client) {
		if config != nil {
			c.config = *config
		}
	}
}

// WithModel sets the model used for wallpapers.
func WithModel(model Model) ClientOption {
	return func(c *Client) {
		c.config.Model = model
	}
}

// WithAttemptTimeout bounds each of the parallel attempts. Zero means no bound
// beyond the caller's context.
func WithAttemptTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.attemptTimeout = d
	}
}

// WithRateLimiter limits attempts against model.
func WithRateLimiter(model Model, limiter ratelimiter.Limiter) ClientOption {
	return func(c *Client) {
		c.limiters.Set(string(model), limiter)
	}
}

// NewClient creates a Client that builds its generators with newGenerator.
//
// Example:
//
//	client := wallgen.NewClient(gemini.Factory,
//	    wallgen.WithCredentialStore(creds),
//	    wallgen.WithEnvAPIKey(os.Getenv("GEMINI_API_KEY")),
//	)
//	batch, err := client.Generate(ctx, "Cyberpunk Seoul")
func NewClient(newGenerator GeneratorFactory, opts ...ClientOption) *Client {
	c := &Client{
		newGenerator:   newGenerator,
		config:         *DefaultConfig(),
		limiters:       ratelimiter.NewRegistry(),
		tokenEstimator: NewSimpleTokenEstimator(),
		logger:         slog.Default(),
		now:            time.Now,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}
