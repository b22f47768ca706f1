package wallgen

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/mhpenta/wallgen/ratelimiter"
)

// Attempts is the number of parallel requests behind one batch.
const Attempts = 4

const instrumentationName = "github.com/mhpenta/wallgen"

// Client generates wallpaper batches and checks API keys.
//
// Each Generate call resolves a key, builds one generator bound to it and
// fans out Attempts requests. Individual attempts may fail; the batch fails
// only when every attempt does. Safe for concurrent use.
type Client struct {
	newGenerator GeneratorFactory

	credentials *CredentialStore
	apiKey      string
	envAPIKey   string

	config         GenerateConfig
	attemptTimeout time.Duration

	limiters       *ratelimiter.Registry
	tokenEstimator TokenEstimator

	logger *slog.Logger
	now    func() time.Time
}

// Generate produces up to Attempts wallpapers for prompt.
//
// It fails with ErrNoCredential before any request when no key is available,
// and with ErrAllAttemptsFailed when no attempt yields an image. Images are
// returned in the order their attempts completed.
func (c *Client) Generate(ctx context.Context, prompt string) (*Batch, error) {
	if err := ValidatePrompt(prompt); err != nil {
		return nil, err
	}

	apiKey, source, err := c.resolveAPIKey()
	if err != nil {
		c.logger.Warn("generation aborted", "error", err.Error())
		return nil, err
	}

	batch := &Batch{
		ID:     uuid.NewString(),
		Prompt: prompt,
	}
	logger := c.logger.With("batch_id", batch.ID, "model", c.config.Model.String())
	start := time.Now()

	logger.Debug("starting wallpaper generation",
		"key_source", source,
		"prompt_length", len(prompt),
	)

	gen, err := c.newGenerator(ctx, apiKey)
	if err != nil {
		logger.Error("failed to create generator", "error", err.Error())
		return nil, fmt.Errorf("creating generator: %w", err)
	}
	defer func() {
		if err := gen.Close(); err != nil {
			logger.Warn("failed to close generator", "error", err.Error())
		}
	}()

	config := c.config
	config.AspectRatio = AspectRatio9x16
	enhanced := EnhancePrompt(prompt)

	var (
		mu   sync.Mutex
		errs []error
		g    errgroup.Group
	)

	for i := range Attempts {
		g.Go(func() error {
			wallpaper, err := c.attempt(ctx, gen, i, enhanced, prompt, &config)

			mu.Lock()
			defer mu.Unlock()

			if err != nil {
				logger.Warn("generation attempt failed",
					"attempt", i,
					"error", err.Error(),
				)
				errs = append(errs, fmt.Errorf("attempt %d: %w", i, err))
				return nil
			}

			batch.Images = append(batch.Images, *wallpaper)
			return nil
		})
	}

	// Attempts report failures through errs, never through the group.
	_ = g.Wait()

	duration := time.Since(start)

	if len(batch.Images) == 0 {
		logger.Error("generation failed",
			"duration_ms", duration.Milliseconds(),
			"attempts", Attempts,
		)
		return nil, fmt.Errorf("%w: %w", ErrAllAttemptsFailed, errors.Join(errs...))
	}

	logger.Info("generation completed",
		"duration_ms", duration.Milliseconds(),
		"image_count", len(batch.Images),
		"failed_attempts", len(errs),
	)

	return batch, nil
}

// TestConnection reports whether apiKey can complete a minimal request.
// Every failure cause collapses to false.
func (c *Client) TestConnection(ctx context.Context, apiKey string) bool {
	if strings.TrimSpace(apiKey) == "" {
		return false
	}

	gen, err := c.newGenerator(ctx, apiKey)
	if err != nil {
		c.logger.Debug("connection test failed", "stage", "client", "error", err.Error())
		return false
	}
	defer gen.Close()

	if err := gen.Ping(ctx); err != nil {
		c.logger.Debug("connection test failed", "stage", "request", "error", err.Error())
		return false
	}

	return true
}

// attempt runs one of the parallel requests and unwraps its first image.
func (c *Client) attempt(ctx context.Context, gen ImageGenerator, index int, enhanced, prompt string, config *GenerateConfig) (*Wallpaper, error) {
	ctx, span := otel.Tracer(instrumentationName).Start(ctx, "generate attempt",
		trace.WithAttributes(
			attribute.Int("wallgen.attempt", index),
			attribute.String("wallgen.model", config.Model.String()),
		),
	)
	defer span.End()

	wallpaper, err := c.runAttempt(ctx, gen, index, enhanced, prompt, config)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	return wallpaper, nil
}

func (c *Client) runAttempt(ctx context.Context, gen ImageGenerator, index int, enhanced, prompt string, config *GenerateConfig) (*Wallpaper, error) {
	if c.attemptTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.attemptTimeout)
		defer cancel()
	}

	if err := c.checkRateLimit(ctx, config, enhanced); err != nil {
		return nil, err
	}

	result, err := gen.Generate(ctx, enhanced, config)
	if err != nil {
		return nil, err
	}

	img, ok := result.FirstImage()
	if !ok {
		return nil, ErrNoImageInResponse
	}

	return &Wallpaper{
		ID:       fmt.Sprintf("%d-%d", c.now().UnixMilli(), index),
		Base64:   base64.StdEncoding.EncodeToString(img.Data),
		MIMEType: img.MIMEType,
		Prompt:   prompt,
	}, nil
}

// resolveAPIKey picks the override, then the stored key, then the environment.
func (c *Client) resolveAPIKey() (key, source string, err error) {
	if strings.TrimSpace(c.apiKey) != "" {
		return c.apiKey, "override", nil
	}

	if c.credentials != nil {
		if stored, ok := c.credentials.Load(); ok {
			return stored, "stored", nil
		}
	}

	if strings.TrimSpace(c.envAPIKey) != "" {
		return c.envAPIKey, "environment", nil
	}

	return "", "", ErrNoCredential
}

// checkRateLimit consumes limiter capacity for one attempt, waiting only when
// the config asks for it.
func (c *Client) checkRateLimit(ctx context.Context, config *GenerateConfig, prompt string) error {
	limiter, ok := c.limiters.Get(config.Model.String())
	if !ok {
		return nil
	}

	const tokenBuffer = 100
	estimatedTokens := c.tokenEstimator.EstimateTokens(prompt) + tokenBuffer

	if config.WaitOnRateLimit {
		return limiter.WaitAndConsume(ctx, estimatedTokens, config.MaxWaitDuration)
	}

	if !limiter.TryConsume(estimatedTokens) {
		return &RateLimitError{
			RetryAfter: limiter.TimeUntilAvailable(estimatedTokens),
			LimitType:  "tokens",
			Model:      config.Model.String(),
		}
	}

	return nil
}
