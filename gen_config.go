package wallgen

import (
	"time"
)

// Model represents a specific image generation model.
type Model string

const (
	ModelNanoBanana1 Model = "nano-banana-1" // Gemini 2.5 Flash Image
	ModelNanoBanana2 Model = "nano-banana-2" // Gemini 3 Pro Image

	ModelDefault Model = ModelNanoBanana1
)

// ImageSize represents the output resolution for generated images.
type ImageSize string

const (
	ImageSize1K   ImageSize = "1K"
	ImageSize2K   ImageSize = "2K"
	ImageSize4K   ImageSize = "4K"
	ImageSizeAuto ImageSize = ""
)

// AspectRatio represents the aspect ratio for generated images.
type AspectRatio string

const (
	AspectRatio1x1  AspectRatio = "1:1"
	AspectRatio16x9 AspectRatio = "16:9"
	AspectRatio9x16 AspectRatio = "9:16" // Phone wallpaper
	AspectRatio4x3  AspectRatio = "4:3"
	AspectRatio3x4  AspectRatio = "3:4"
	AspectRatio2x3  AspectRatio = "2:3"
	AspectRatio3x2  AspectRatio = "3:2"
	AspectRatio4x5  AspectRatio = "4:5"
	AspectRatio5x4  AspectRatio = "5:4"
	AspectRatio21x9 AspectRatio = "21:9"
	AspectRatioAuto AspectRatio = ""
)

// GenerateConfig holds configuration options for a single generation request.
type GenerateConfig struct {
	// Model to use for generation (if empty, the provider's default)
	Model Model

	// Size of the output image. Flash Image only renders 1K, so the default
	// leaves it to the model.
	Size ImageSize

	// AspectRatio of the output image
	AspectRatio AspectRatio

	// Temperature controls randomness (0.0-2.0)
	Temperature *float32

	// SafetySettings for content filtering
	SafetySettings []SafetySetting

	// WaitOnRateLimit, if true, makes an attempt wait for limiter capacity.
	// If false, a RateLimitError fails the attempt immediately.
	WaitOnRateLimit bool

	// MaxWaitDuration is the maximum time to wait when WaitOnRateLimit is true.
	// Zero means no limit.
	MaxWaitDuration time.Duration
}

// WithModel returns a copy of the config with the specified model.
func (c *GenerateConfig) WithModel(model Model) *GenerateConfig {
	if c == nil {
		return &GenerateConfig{Model: model}
	}
	cX := *c
	cX.Model = model
	return &cX
}

// DefaultConfig returns the configuration used for wallpaper requests.
func DefaultConfig() *GenerateConfig {
	temp := float32(1.0)
	return &GenerateConfig{
		Model:       ModelDefault,
		Size:        ImageSizeAuto,
		AspectRatio: AspectRatio9x16,
		Temperature: &temp,
	}
}

func (s ImageSize) String() string {
	return string(s)
}

func (a AspectRatio) String() string {
	return string(a)
}

// String returns the model identifier.
func (m Model) String() string {
	return string(m)
}
