package wallgen

import (
	"context"
	"errors"
)

// UserMessage turns an error into the plain text shown to the user.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNoCredential):
		return "No API key is configured. Open settings and save your Gemini API key."
	case errors.Is(err, ErrAllAttemptsFailed):
		return "Could not generate any wallpapers. The model returned no images."
	case errors.Is(err, ErrEmptyPrompt):
		return "Enter a prompt first."
	case errors.Is(err, ErrPromptTooLong):
		return "The prompt is too long."
	case errors.Is(err, context.DeadlineExceeded):
		return "Generation timed out. Please try again."
	default:
		return "Something went wrong while generating wallpapers."
	}
}
