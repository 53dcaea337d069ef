package insight

import (
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	openaioption "github.com/openai/openai-go/option"
)

type openAIProvider struct {
	cfg    Config
	client openai.Client
}

func newOpenAIProvider(cfg Config) *openAIProvider {
	opts := []openaioption.RequestOption{
		openaioption.WithAPIKey(cfg.APIKey),
		openaioption.WithHTTPClient(cfg.HTTPClient),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, openaioption.WithBaseURL(cfg.BaseURL))
	}
	return &openAIProvider{cfg: cfg, client: openai.NewClient(opts...)}
}

func (p *openAIProvider) Name() string { return ProviderOpenAI }

func (p *openAIProvider) Complete(ctx context.Context, prompt Prompt) (Completion, error) {
	resp, err := p.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(prompt.System),
			openai.UserMessage(prompt.User),
		},
		Model:       openai.ChatModel(p.cfg.Model),
		Temperature: openai.Float(temperature),
		MaxTokens:   openai.Int(maxOutputTokens),
	})
	if err != nil {
		return Completion{}, fmt.Errorf("openai chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return Completion{}, emptyResponse(ProviderOpenAI)
	}
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return Completion{}, emptyResponse(ProviderOpenAI)
	}
	model := strings.TrimSpace(resp.Model)
	if model == "" {
		model = p.cfg.Model
	}
	return Completion{Model: model, Content: content}, nil
}
