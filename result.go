package wallgen

import "fmt"

// SafetyCategory represents a content safety category.
type SafetyCategory string

const (
	SafetyCategoryHarassment       SafetyCategory = "HARM_CATEGORY_HARASSMENT"
	SafetyCategoryHateSpeech       SafetyCategory = "HARM_CATEGORY_HATE_SPEECH"
	SafetyCategorySexuallyExplicit SafetyCategory = "HARM_CATEGORY_SEXUALLY_EXPLICIT"
	SafetyCategoryDangerousContent SafetyCategory = "HARM_CATEGORY_DANGEROUS_CONTENT"
)

// SafetyThreshold represents the blocking threshold for safety filters.
type SafetyThreshold string

const (
	SafetyThresholdBlockNone      SafetyThreshold = "BLOCK_NONE"
	SafetyThresholdBlockLowAndUp  SafetyThreshold = "BLOCK_LOW_AND_ABOVE"
	SafetyThresholdBlockMedAndUp  SafetyThreshold = "BLOCK_MEDIUM_AND_ABOVE"
	SafetyThresholdBlockHighAndUp SafetyThreshold = "BLOCK_ONLY_HIGH"
)

// SafetySetting configures content filtering for a specific category.
type SafetySetting struct {
	Category  SafetyCategory
	Threshold SafetyThreshold
}

// SafetySettingsAt applies threshold to every harm category.
func SafetySettingsAt(threshold SafetyThreshold) ([]SafetySetting, error) {
	switch threshold {
	case SafetyThresholdBlockNone, SafetyThresholdBlockLowAndUp,
		SafetyThresholdBlockMedAndUp, SafetyThresholdBlockHighAndUp:
	default:
		return nil, fmt.Errorf("unknown safety threshold %q", threshold)
	}

	categories := []SafetyCategory{
		SafetyCategoryHarassment,
		SafetyCategoryHateSpeech,
		SafetyCategorySexuallyExplicit,
		SafetyCategoryDangerousContent,
	}
	settings := make([]SafetySetting, 0, len(categories))
	for _, c := range categories {
		settings = append(settings, SafetySetting{Category: c, Threshold: threshold})
	}
	return settings, nil
}

// GeneratedImage is one image part decoded from a provider response.
type GeneratedImage struct {
	Data     []byte
	MIMEType string

	// Index is the position of the image within its response (0-indexed)
	Index int
}

// GenerateResult holds the decoded result of one provider request.
type GenerateResult struct {
	Images []GeneratedImage

	// Text contains any text response from the model
	Text string

	// ThinkingContent contains the model's reasoning
	ThinkingContent string

	UsageMetadata *UsageMetadata
}

// FirstImage returns the first image that carries data.
func (r *GenerateResult) FirstImage() (GeneratedImage, bool) {
	if r == nil {
		return GeneratedImage{}, false
	}
	for _, img := range r.Images {
		if len(img.Data) > 0 {
			return img, true
		}
	}
	return GeneratedImage{}, false
}

// UsageMetadata contains usage information for billing and monitoring.
type UsageMetadata struct {
	PromptTokens     int
	CandidatesTokens int
	TotalTokens      int
	ImageCount       int
}

// Wallpaper is one generated wallpaper. It is never modified after creation.
type Wallpaper struct {
	// ID is derived from the completion time and the attempt index.
	ID string

	// Base64 is the standard base64 encoding of the image bytes.
	Base64 string

	MIMEType string

	// Prompt is the text the user typed, without the quality suffix.
	Prompt string
}

// Batch is the outcome of one Generate call. Images are in completion order.
type Batch struct {
	ID     string
	Prompt string
	Images []Wallpaper
}
