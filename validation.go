package wallgen

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// Validation errors
var (
	ErrEmptyPrompt      = errors.New("prompt cannot be empty")
	ErrPromptTooLong    = errors.New("prompt exceeds maximum length")
	ErrUnsupportedRatio = errors.New("aspect ratio not supported by model")
)

// MaxPromptLength is the longest user prompt accepted, in characters.
const MaxPromptLength = 2000

// ValidatePrompt rejects blank prompts and prompts over MaxPromptLength.
func ValidatePrompt(prompt string) error {
	if strings.TrimSpace(prompt) == "" {
		return ErrEmptyPrompt
	}

	if n := utf8.RuneCountInString(prompt); n > MaxPromptLength {
		return fmt.Errorf("%w: %d characters (max %d)", ErrPromptTooLong, n, MaxPromptLength)
	}

	return nil
}

// ValidateModelConfig checks config against the constraints of info.
func ValidateModelConfig(info ModelInfo, config *GenerateConfig) error {
	if config == nil {
		return nil
	}

	if !info.ImageConstraints.SupportsAspectRatio(config.AspectRatio) {
		return fmt.Errorf("%w: %s on %s", ErrUnsupportedRatio, config.AspectRatio, info.Name)
	}

	return nil
}
