// Package gemini provides an ImageGenerator implementation using Google's Gemini API.
//
// This provider uses the Gemini API backend via the official Go SDK:
// https://github.com/googleapis/go-genai
package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/mhpenta/wallgen"
	"google.golang.org/genai"
)

// Model name constants - the actual API model names.
const (
	// APIModelNanoBanana1 is the actual API name for Gemini 2.5 Flash Image
	APIModelNanoBanana1 = "gemini-2.5-flash-image"

	// APIModelNanoBanana2 is the actual API name for Gemini 3 Pro Image
	APIModelNanoBanana2 = "gemini-3-pro-image-preview"

	// PingModel answers connection tests. It is a text model, so a ping costs
	// a handful of tokens rather than an image.
	PingModel = "gemini-2.5-flash"
)

// GeminiGenerator implements wallgen.ImageGenerator using Google's Gemini API.
type GeminiGenerator struct {
	client *genai.Client
}

var _ wallgen.ImageGenerator = (*GeminiGenerator)(nil)

// Option adjusts how the genai client is built.
type Option func(*genai.ClientConfig)

// WithHTTPClient sets the HTTP client used for API calls.
func WithHTTPClient(client *http.Client) Option {
	return func(c *genai.ClientConfig) {
		c.HTTPClient = client
	}
}

// WithBaseURL points the client at a different endpoint.
func WithBaseURL(baseURL string) Option {
	return func(c *genai.ClientConfig) {
		c.HTTPOptions.BaseURL = baseURL
	}
}

// New creates a new GeminiGenerator from a ProviderConfig.
func New(ctx context.Context, config *wallgen.ProviderConfig, opts ...Option) (*GeminiGenerator, error) {
	if config == nil {
		config = &wallgen.ProviderConfig{}
	}

	clientCfg := &genai.ClientConfig{
		Backend: genai.BackendGeminiAPI,
		APIKey:  config.APIKey,
	}
	// If APIKey is empty, the SDK will try GOOGLE_API_KEY or GEMINI_API_KEY env vars

	if config.BaseURL != "" {
		clientCfg.HTTPOptions.BaseURL = config.BaseURL
	}

	for _, opt := range opts {
		opt(clientCfg)
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiGenerator{
		client: client,
	}, nil
}

// NewWithAPIKey creates a generator with an API key for Gemini API.
func NewWithAPIKey(ctx context.Context, apiKey string, opts ...Option) (*GeminiGenerator, error) {
	return New(ctx, &wallgen.ProviderConfig{
		Provider: wallgen.ProviderGeminiAPI,
		APIKey:   apiKey,
	}, opts...)
}

// Factory is a wallgen.GeneratorFactory for the Gemini API.
func Factory(ctx context.Context, apiKey string) (wallgen.ImageGenerator, error) {
	return NewWithAPIKey(ctx, apiKey)
}

// FactoryWith returns a wallgen.GeneratorFactory that applies opts to every client.
func FactoryWith(opts ...Option) wallgen.GeneratorFactory {
	return func(ctx context.Context, apiKey string) (wallgen.ImageGenerator, error) {
		return NewWithAPIKey(ctx, apiKey, opts...)
	}
}

// Generate issues one image request for prompt. The prompt is sent as is;
// length limits apply to user input before enhancement, not here.
func (g *GeminiGenerator) Generate(ctx context.Context, prompt string, config *wallgen.GenerateConfig) (*wallgen.GenerateResult, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, wallgen.ErrEmptyPrompt
	}

	if config == nil {
		config = wallgen.DefaultConfig()
	}

	info := g.resolveModel(config)
	if err := wallgen.ValidateModelConfig(info, config); err != nil {
		return nil, err
	}

	genConfig := g.buildGenerateContentConfig(config)

	result, err := g.client.Models.GenerateContent(ctx, info.APIModelName, genai.Text(prompt), genConfig)
	if err != nil {
		return nil, wrapAPIError(err, info.APIModelName, "generation failed")
	}

	return parseResult(result)
}

// Ping sends a one-word prompt to PingModel.
func (g *GeminiGenerator) Ping(ctx context.Context) error {
	result, err := g.client.Models.GenerateContent(ctx, PingModel, genai.Text("ping"), nil)
	if err != nil {
		return wrapAPIError(err, PingModel, "ping failed")
	}
	if result == nil || len(result.Candidates) == 0 {
		return errors.New("empty response from model")
	}
	return nil
}

// Models returns the model definitions supported by this provider.
// The first model (NanoBanana1) is the default.
func (g *GeminiGenerator) Models() []wallgen.ModelInfo {
	return []wallgen.ModelInfo{
		NanoBanana1Info,
		NanoBanana2Info,
	}
}

// Close releases any resources held by the generator.
func (g *GeminiGenerator) Close() error {
	// The genai.Client doesn't require explicit closing in the current SDK
	return nil
}

// resolveModel maps a public or API model name to its info. Unknown names
// are passed through as API names; an empty name selects the default.
func (g *GeminiGenerator) resolveModel(config *wallgen.GenerateConfig) wallgen.ModelInfo {
	models := g.Models()
	if config == nil || config.Model == "" {
		return models[0]
	}

	name := config.Model.String()
	for _, m := range models {
		if m.Name == name || m.APIModelName == name {
			return m
		}
	}

	return wallgen.ModelInfo{
		Name:         name,
		Provider:     wallgen.ProviderGeminiAPI,
		APIModelName: name,
	}
}

// buildGenerateContentConfig converts our config to Gemini's GenerateContentConfig format.
func (g *GeminiGenerator) buildGenerateContentConfig(config *wallgen.GenerateConfig) *genai.GenerateContentConfig {
	genConfig := &genai.GenerateContentConfig{
		ResponseModalities: []string{"TEXT", "IMAGE"},
	}

	imageConfig := &genai.ImageConfig{}
	if config.Size != "" {
		imageConfig.ImageSize = config.Size.String()
	}
	if config.AspectRatio != "" {
		imageConfig.AspectRatio = config.AspectRatio.String()
	}
	genConfig.ImageConfig = imageConfig

	if config.Temperature != nil {
		genConfig.Temperature = genai.Ptr(*config.Temperature)
	}

	if len(config.SafetySettings) > 0 {
		genConfig.SafetySettings = convertSafetySettings(config.SafetySettings)
	}

	return genConfig
}

// convertSafetySettings converts our SafetySettings to Gemini's format.
func convertSafetySettings(settings []wallgen.SafetySetting) []*genai.SafetySetting {
	result := make([]*genai.SafetySetting, 0, len(settings))
	for _, s := range settings {
		result = append(result, &genai.SafetySetting{
			Category:  genai.HarmCategory(s.Category),
			Threshold: genai.HarmBlockThreshold(s.Threshold),
		})
	}
	return result
}

// parseResult decodes the first candidate that has content.
func parseResult(result *genai.GenerateContentResponse) (*wallgen.GenerateResult, error) {
	if result == nil || len(result.Candidates) == 0 {
		return nil, errors.New("empty response from model")
	}

	var content *genai.Content
	for _, candidate := range result.Candidates {
		if candidate != nil && candidate.Content != nil {
			content = candidate.Content
			break
		}
	}
	if content == nil {
		return nil, errors.New("response has no content")
	}

	genResult := &wallgen.GenerateResult{
		Images: make([]wallgen.GeneratedImage, 0),
	}

	var thinkingParts []string

	for _, part := range content.Parts {
		if part == nil {
			continue
		}

		if part.Thought && part.Text != "" {
			thinkingParts = append(thinkingParts, part.Text)
			continue
		}

		if part.Text != "" {
			genResult.Text += part.Text
		}

		if part.InlineData != nil && len(part.InlineData.Data) > 0 {
			genResult.Images = append(genResult.Images, wallgen.GeneratedImage{
				Data:     part.InlineData.Data,
				MIMEType: part.InlineData.MIMEType,
				Index:    len(genResult.Images),
			})
		}
	}

	if len(thinkingParts) > 0 {
		genResult.ThinkingContent = strings.Join(thinkingParts, "\n")
	}

	if result.UsageMetadata != nil {
		genResult.UsageMetadata = &wallgen.UsageMetadata{
			PromptTokens:     int(result.UsageMetadata.PromptTokenCount),
			CandidatesTokens: int(result.UsageMetadata.CandidatesTokenCount),
			TotalTokens:      int(result.UsageMetadata.TotalTokenCount),
			ImageCount:       len(genResult.Images),
		}
	}

	return genResult, nil
}

// wrapAPIError turns quota errors into wallgen.RateLimitError and wraps the rest.
func wrapAPIError(err error, model, op string) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) && (apiErr.Code == http.StatusTooManyRequests || apiErr.Status == "RESOURCE_EXHAUSTED") {
		return &wallgen.RateLimitError{
			RetryAfter: 60 * time.Second, // API doesn't reliably provide Retry-After
			LimitType:  "requests",
			Model:      model,
			Err:        err,
		}
	}

	return fmt.Errorf("%s: %w", op, err)
}
