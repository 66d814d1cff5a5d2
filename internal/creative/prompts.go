package creative

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Bhasvanth-Dev9380/ad-generator/internal/domain"
	"github.com/Bhasvanth-Dev9380/ad-generator/internal/providers/genai"
)

// PromptPair is the structured output of the first model call. Only the
// ImageToVideo half is persisted with the job.
type PromptPair struct {
	TextToImage  string `json:"textToImage"`
	ImageToVideo string `json:"imageToVideo"`
}

const productInstruction = `You are a senior advertising art director. Study the attached product photo and invent one striking marketing creative built around this exact product. Respond strictly as JSON with two fields: "textToImage" (a detailed scene and styling instruction for rendering the creative, keeping the product faithful to the photo) and "imageToVideo" (a short camera-motion and animation prompt that would bring the rendered creative to life).`

const avatarProductInstruction = `You are a senior advertising art director. Study the attached product photo and design one striking marketing creative that features the product together with the brand persona from the provided avatar reference. Respond strictly as JSON with two fields: "textToImage" (a detailed scene and styling instruction rendering the persona presenting the product, both faithful to their photos) and "imageToVideo" (a short camera-motion and animation prompt that would bring the rendered creative to life).`

// avatarUsable reports whether an avatar reference is substantial enough to
// drive the persona template.
func avatarUsable(avatar string) bool {
	return len(strings.TrimSpace(avatar)) > 2
}

// selectInstruction picks one of the two fixed templates.
func selectInstruction(avatar string) string {
	if avatarUsable(avatar) {
		return avatarProductInstruction
	}
	return productInstruction
}

// promptPairSchema constrains the first model call to the exact two-field
// JSON object the pipeline consumes.
func promptPairSchema() *genai.Schema {
	return &genai.Schema{
		Type: "OBJECT",
		Properties: map[string]*genai.Schema{
			"textToImage":  {Type: "STRING"},
			"imageToVideo": {Type: "STRING"},
		},
		Required: []string{"textToImage", "imageToVideo"},
	}
}

// ParsePromptPair recovers the structured pair from raw model text. It trims
// whitespace, strips Markdown code fences, tries a direct unmarshal, then
// falls back to the outermost brace-delimited substring before giving up
// with domain.ErrMalformedModelOutput.
func ParsePromptPair(raw string) (*PromptPair, error) {
	text := trimCodeFence(strings.TrimSpace(raw))
	if text == "" {
		return nil, fmt.Errorf("%w: empty response", domain.ErrMalformedModelOutput)
	}

	var pair PromptPair
	if err := json.Unmarshal([]byte(text), &pair); err != nil {
		fragment := braceFragment(text)
		if fragment == "" {
			return nil, fmt.Errorf("%w: %v", domain.ErrMalformedModelOutput, err)
		}
		if err := json.Unmarshal([]byte(fragment), &pair); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrMalformedModelOutput, err)
		}
	}

	if strings.TrimSpace(pair.TextToImage) == "" || strings.TrimSpace(pair.ImageToVideo) == "" {
		return nil, fmt.Errorf("%w: missing textToImage or imageToVideo", domain.ErrMalformedModelOutput)
	}
	return &pair, nil
}

func braceFragment(text string) string {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return ""
	}
	return text[start : end+1]
}

func trimCodeFence(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```JSON")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSpace(trimmed)
	if idx := strings.LastIndex(trimmed, "```"); idx >= 0 {
		trimmed = trimmed[:idx]
	}
	return strings.TrimSpace(trimmed)
}
