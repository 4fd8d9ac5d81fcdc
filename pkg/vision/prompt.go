package vision

import (
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// PromptVersion is recorded with every observation so history rows can be
// traced back to the prompt that produced them
const PromptVersion = "v2.0"

const defaultPrompt = `You are analyzing a screenshot of a product page. Extract the product price and stock availability.

Respond with ONLY a JSON object in this exact format:
{"price": "<price as shown, or null>", "in_stock": "<true/false/null>", "price_confidence": <0.0-1.0>, "in_stock_confidence": <0.0-1.0>}

Rules:
- price: the current selling price visible on the page. If multiple prices are shown, pick the main product price, not struck-through or "was" prices. Use null if no price is visible.
- in_stock: "true" if the product can be ordered, "false" if it is sold out or unavailable, null if you cannot tell.
- price_confidence and in_stock_confidence: how certain you are about each value, from 0.0 (guess) to 1.0 (clearly visible).
- Do not include any text outside the JSON object.`

var spaceRe = regexp.MustCompile(`\s+`)

// BuildPrompt assembles the extraction prompt. A custom prompt replaces the
// default entirely, page text is appended as secondary context when present.
func BuildPrompt(customPrompt, pageText string) string {
	prompt := defaultPrompt
	if strings.TrimSpace(customPrompt) != "" {
		prompt = strings.TrimSpace(customPrompt)
	}

	if text := strings.TrimSpace(pageText); text != "" {
		prompt += "\n\nVisible page text for additional context (the screenshot is authoritative):\n" + text
	}
	return prompt
}

// CleanText strips any markup from captured page text and collapses
// whitespace runs, then caps the result at maxLen
func CleanText(text string, maxLen int) string {
	cleaned := bluemonday.StrictPolicy().Sanitize(text)
	cleaned = strings.TrimSpace(spaceRe.ReplaceAllString(cleaned, " "))
	if runes := []rune(cleaned); maxLen > 0 && len(runes) > maxLen {
		cleaned = string(runes[:maxLen])
	}
	return cleaned
}
