// Package vision extracts price and stock state from rendered page snapshots
// using a vision-capable chat model. The client talks the OpenAI chat API and
// works against any compatible endpoint (OpenAI itself, Ollama, OpenRouter),
// the parser turns free-form model output into validated observations.
package vision

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/go-pkgz/lgr"
	"github.com/go-pkgz/repeater/v2"
	"github.com/sashabaranov/go-openai"

	"github.com/umputun/pricewatch/pkg/domain"
)

// ExtractionError wraps a model call failure. The scheduler treats it as
// transient, no observation is recorded and the item is rescheduled.
type ExtractionError struct {
	Provider string
	Model    string
	Err      error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extraction via %s/%s: %v", e.Provider, e.Model, e.Err)
}
func (e *ExtractionError) Unwrap() error { return e.Err }

// Params holds the per-call model configuration, resolved from settings at
// the start of each scheduler cycle
type Params struct {
	Provider        string
	Model           string
	APIKey          string
	BaseURL         string
	Temperature     float64
	MaxTokens       int
	ReasoningEffort string
	EnableRepair    bool
}

// Request is a single extraction call
type Request struct {
	Screenshot   []byte // PNG page screenshot
	Text         string // optional visible page text, already captured
	CustomPrompt string // overrides the default prompt when set
}

// Client calls a vision model to extract price and stock from a snapshot
type Client struct {
	params Params
	api    *openai.Client
}

// NewClient creates an extraction client for the given model parameters
func NewClient(params Params) *Client {
	cfg := openai.DefaultConfig(params.APIKey)
	if params.BaseURL != "" {
		cfg.BaseURL = params.BaseURL
	}
	return &Client{params: params, api: openai.NewClientWithConfig(cfg)}
}

// Extract sends the snapshot to the model and parses the response into an
// observation. Empty model responses are retried a few times before giving up.
func (c *Client) Extract(ctx context.Context, req Request) (*domain.Observation, *domain.ExtractionMeta, error) {
	if len(req.Screenshot) == 0 {
		return nil, nil, &ExtractionError{Provider: c.params.Provider, Model: c.params.Model,
			Err: fmt.Errorf("empty screenshot")}
	}

	prompt := BuildPrompt(req.CustomPrompt, req.Text)
	chatReq := c.makeChatRequest(prompt, req.Screenshot)

	var content string
	worker := func() error {
		resp, err := c.api.CreateChatCompletion(ctx, chatReq)
		if err != nil {
			return fmt.Errorf("chat completion: %w", err)
		}
		if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
			lgr.Printf("[WARN] empty response from %s/%s, retrying", c.params.Provider, c.params.Model)
			return fmt.Errorf("empty response from model")
		}
		content = resp.Choices[0].Message.Content
		return nil
	}

	if err := repeater.NewBackoff(3, time.Second, repeater.WithMaxDelay(5*time.Second)).Do(ctx, worker); err != nil {
		return nil, nil, &ExtractionError{Provider: c.params.Provider, Model: c.params.Model, Err: err}
	}

	obs, repaired, err := ParseResponse(content, c.params.EnableRepair)
	if err != nil {
		return nil, nil, err
	}

	meta := &domain.ExtractionMeta{
		Provider:      c.params.Provider,
		Model:         c.params.Model,
		PromptVersion: PromptVersion,
		RepairUsed:    repaired,
	}
	return obs, meta, nil
}

func (c *Client) makeChatRequest(prompt string, screenshot []byte) openai.ChatCompletionRequest {
	imageURL := "data:image/png;base64," + base64.StdEncoding.EncodeToString(screenshot)

	req := openai.ChatCompletionRequest{
		Model:       c.params.Model,
		Temperature: float32(c.params.Temperature),
		MaxTokens:   c.params.MaxTokens,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{Type: openai.ChatMessagePartTypeText, Text: prompt},
					{
						Type:     openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{URL: imageURL, Detail: openai.ImageURLDetailAuto},
					},
				},
			},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	}

	// reasoning controls are an openai-only surface, other providers reject them
	if c.params.Provider == "openai" && c.params.ReasoningEffort != "" {
		req.ReasoningEffort = c.params.ReasoningEffort
	}

	return req
}

// Redacted returns the params with the API key masked, safe for logging
func (p Params) Redacted() string {
	key := "none"
	if p.APIKey != "" {
		key = "****"
		if len(p.APIKey) > 8 {
			key = p.APIKey[:4] + "****"
		}
	}
	return fmt.Sprintf("provider=%s model=%s base_url=%s key=%s", p.Provider, p.Model, p.BaseURL, key)
}
