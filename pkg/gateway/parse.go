package gateway

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Intent classifies a refined prompt as targeting image or video
// generation.
type Intent string

const (
	IntentImage Intent = "IMAGE"
	IntentVideo Intent = "VIDEO"
)

// RefinedPrompt is the structured result of prompt refinement.
type RefinedPrompt struct {
	Text   string `json:"prompt"`
	Intent Intent `json:"intent"`
}

// Placeholder texts shown when the model returns an object with no
// prompt in it.
const (
	refineFallbackText     = "Error: Could not generate prompt."
	regenerateFallbackText = "Error: Could not regenerate prompt."
)

// parseRefinedPrompt decodes the model's structured reply. Invalid JSON
// is fatal. A decoded object with a missing or out-of-domain intent is
// not: the intent falls back to a substring heuristic and the result is
// still usable. fallback replaces an empty prompt text.
func parseRefinedPrompt(raw, fallback string) (RefinedPrompt, error) {
	var decoded struct {
		Prompt string `json:"prompt"`
		Intent string `json:"intent"`
	}
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		return RefinedPrompt{}, fmt.Errorf("%w: %v", ErrAssistantResponseInvalid, err)
	}

	switch Intent(decoded.Intent) {
	case IntentImage, IntentVideo:
		return RefinedPrompt{Text: decoded.Prompt, Intent: Intent(decoded.Intent)}, nil
	}

	text := decoded.Prompt
	if text == "" {
		text = fallback
	}
	return RefinedPrompt{Text: text, Intent: classifyIntent(decoded.Prompt)}, nil
}

// classifyIntent is the fallback classification used when the model
// does not return a valid intent.
func classifyIntent(prompt string) Intent {
	if strings.Contains(strings.ToLower(prompt), "video") {
		return IntentVideo
	}
	return IntentImage
}
