package wallgen

// PromptSuffix is appended to every user prompt before it is sent.
const PromptSuffix = ", high quality phone wallpaper, vertical 9:16 aspect ratio, 8k resolution, aesthetic, masterpiece, photorealistic, no text"

// SamplePrompts are offered as one-tap shortcuts.
var SamplePrompts = []string{
	"Lyrical city street at night",
	"Castle above pastel clouds",
	"Cyberpunk Seoul",
	"Forest on a rainy day",
	"Minimalist geometric pattern",
}

// EnhancePrompt returns the prompt as sent to the model.
func EnhancePrompt(prompt string) string {
	return prompt + PromptSuffix
}
