package wallgen

// ModelCapabilities describes what a model can do for wallpaper generation.
type ModelCapabilities struct {
	SupportsTextToImage bool
	SupportsThinking    bool

	// MaxOutputImages is the number of images one request may return.
	MaxOutputImages int
}

// RateLimits defines rate limiting parameters for a model.
type RateLimits struct {
	TokensPerMinute   int
	RequestsPerMinute int
	TokensPerDay      int // 0 = unlimited
}

// Pricing defines cost information for a model.
type Pricing struct {
	InputTokensPerMillion  float64
	OutputTokensPerMillion float64
	ImageGenerationCost    float64 // Per image (if applicable)
}

// ImageConstraints defines supported image configurations for a model.
type ImageConstraints struct {
	SupportedAspectRatios []AspectRatio
	SupportedSizes        []ImageSize
}

// SupportsAspectRatio reports whether ratio is listed. An empty list accepts anything.
func (c ImageConstraints) SupportsAspectRatio(ratio AspectRatio) bool {
	if ratio == AspectRatioAuto || len(c.SupportedAspectRatios) == 0 {
		return true
	}
	for _, r := range c.SupportedAspectRatios {
		if r == ratio {
			return true
		}
	}
	return false
}

// ModelInfo contains complete metadata for a model.
type ModelInfo struct {
	Name         string   // Public model name (e.g., "nano-banana-1")
	Provider     Provider // Which provider serves this model
	APIModelName string   // Actual API name (e.g., "gemini-2.5-flash-image")

	Capabilities ModelCapabilities

	ContextLength    int
	ImageConstraints ImageConstraints

	RateLimits RateLimits

	Pricing Pricing
}
