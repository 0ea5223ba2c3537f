package completion

import (
	"context"
	"errors"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// OpenAIClient calls an OpenAI-compatible chat completion endpoint through
// langchaingo.
type OpenAIClient struct {
	llm llms.Model
}

// NewOpenAIClient builds a client for apiKey. An empty baseURL keeps the
// public OpenAI endpoint.
func NewOpenAIClient(apiKey, baseURL string) (*OpenAIClient, error) {
	opts := []openai.Option{openai.WithToken(apiKey)}
	if baseURL != "" {
		opts = append(opts, openai.WithBaseURL(baseURL))
	}
	llm, err := openai.New(opts...)
	if err != nil {
		return nil, err
	}
	return &OpenAIClient{llm: llm}, nil
}

// NewClientFromModel wraps an existing langchaingo model.
func NewClientFromModel(llm llms.Model) *OpenAIClient {
	return &OpenAIClient{llm: llm}
}

func (c *OpenAIClient) Complete(ctx context.Context, prompt string, opts Options) (string, error) {
	callOpts := []llms.CallOption{llms.WithTemperature(opts.Temperature)}
	if opts.Model != "" {
		callOpts = append(callOpts, llms.WithModel(opts.Model))
	}

	out, err := llms.GenerateFromSinglePrompt(ctx, c.llm, prompt, callOpts...)
	if err != nil {
		if errors.Is(err, openai.ErrEmptyResponse) {
			return "", &ServiceError{Kind: KindMalformed, Err: err}
		}
		return "", Classify(err)
	}
	if strings.TrimSpace(out) == "" {
		return "", &ServiceError{Kind: KindMalformed, Err: errors.New("empty completion")}
	}
	return out, nil
}
