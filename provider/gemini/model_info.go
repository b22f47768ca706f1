package gemini

import "github.com/mhpenta/wallgen"

// Both image models accept the same aspect ratios.
var supportedAspectRatios = []wallgen.AspectRatio{
	wallgen.AspectRatio1x1,
	wallgen.AspectRatio16x9,
	wallgen.AspectRatio9x16,
	wallgen.AspectRatio4x3,
	wallgen.AspectRatio3x4,
	wallgen.AspectRatio2x3,
	wallgen.AspectRatio3x2,
	wallgen.AspectRatio4x5,
	wallgen.AspectRatio5x4,
	wallgen.AspectRatio21x9,
}

// NanoBanana1Info is the model info for Gemini 2.5 Flash Image (nano-banana-1),
// the default wallpaper model. One request returns one image.
var NanoBanana1Info = wallgen.ModelInfo{
	Name:         string(wallgen.ModelNanoBanana1),
	Provider:     wallgen.ProviderGeminiAPI,
	APIModelName: APIModelNanoBanana1,

	Capabilities: wallgen.ModelCapabilities{
		SupportsTextToImage: true,
		SupportsThinking:    false,
		MaxOutputImages:     1,
	},

	ContextLength: 32768,

	ImageConstraints: wallgen.ImageConstraints{
		SupportedAspectRatios: supportedAspectRatios,

		// Flash Image only supports ~1024px output (1K)
		SupportedSizes: []wallgen.ImageSize{
			wallgen.ImageSize1K,
		},
	},

	RateLimits: wallgen.RateLimits{
		TokensPerMinute:   4000000,
		RequestsPerMinute: 500, // ~500 RPM for Tier 1
		TokensPerDay:      1000000000,
	},

	// Image output is ~$0.039 per 1024x1024 image.
	Pricing: wallgen.Pricing{
		InputTokensPerMillion:  0.30,
		OutputTokensPerMillion: 30.00,
		ImageGenerationCost:    0.039,
	},
}

// NanoBanana2Info is the model info for Gemini 3 Pro Image (nano-banana-2).
// Slower and pricier, with 2K and 4K output.
var NanoBanana2Info = wallgen.ModelInfo{
	Name:         string(wallgen.ModelNanoBanana2),
	Provider:     wallgen.ProviderGeminiAPI,
	APIModelName: APIModelNanoBanana2,

	Capabilities: wallgen.ModelCapabilities{
		SupportsTextToImage: true,
		SupportsThinking:    true,
		MaxOutputImages:     1,
	},

	ContextLength: 65536,

	ImageConstraints: wallgen.ImageConstraints{
		SupportedAspectRatios: supportedAspectRatios,
		SupportedSizes: []wallgen.ImageSize{
			wallgen.ImageSize1K,
			wallgen.ImageSize2K,
			wallgen.ImageSize4K,
		},
	},

	RateLimits: wallgen.RateLimits{
		TokensPerMinute:   4000000,
		RequestsPerMinute: 360,
		TokensPerDay:      1000000000,
	},

	// Approximate costs: 4K image ~$0.24, 1K/2K image ~$0.134.
	Pricing: wallgen.Pricing{
		InputTokensPerMillion:  2.00,
		OutputTokensPerMillion: 12.00,
	},
}

// RateLimitsFor returns the published limits of a public or API model name.
func RateLimitsFor(model wallgen.Model) (wallgen.RateLimits, bool) {
	for _, info := range []wallgen.ModelInfo{NanoBanana1Info, NanoBanana2Info} {
		if info.Name == string(model) || info.APIModelName == string(model) {
			return info.RateLimits, true
		}
	}
	return wallgen.RateLimits{}, false
}
