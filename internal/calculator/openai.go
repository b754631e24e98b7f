package calculator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/susu3304/partypay/internal/settlement"
)

// Computer turns a prompt into a settlement.
type Computer interface {
	Compute(ctx context.Context, prompt string) (*settlement.Result, error)
}

const systemPrompt = "You are a meticulous accountant who splits shared party expenses."

type OpenAIComputer struct {
	client *openai.Client
	model  string
}

// NewOpenAIComputer talks to the OpenAI API, or to baseURL when set.
func NewOpenAIComputer(apiKey, baseURL, model string) *OpenAIComputer {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = strings.TrimRight(baseURL, "/")
	}
	if model == "" {
		model = openai.GPT4oMini
	}
	return &OpenAIComputer{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}
}

func (c *OpenAIComputer) Compute(ctx context.Context, prompt string) (*settlement.Result, error) {
	req := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Temperature: 0,
	}
	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, err
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("completion has no choices")
	}

	var res settlement.Result
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &res); err != nil {
		return nil, fmt.Errorf("decode completion: %w", err)
	}
	res.Normalize()
	return &res, nil
}
