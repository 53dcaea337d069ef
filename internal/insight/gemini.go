package insight

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

type geminiProvider struct {
	cfg Config
}

func (p *geminiProvider) Name() string { return ProviderGemini }

func (p *geminiProvider) Complete(ctx context.Context, prompt Prompt) (Completion, error) {
	clientConfig := &genai.ClientConfig{
		APIKey:     p.cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: p.cfg.HTTPClient,
	}
	if p.cfg.BaseURL != "" {
		clientConfig.HTTPOptions = genai.HTTPOptions{BaseURL: p.cfg.BaseURL}
	}
	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return Completion{}, fmt.Errorf("create gemini client failed: %w", err)
	}

	requestConfig := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: prompt.System}},
		},
		Temperature:      genai.Ptr(float32(temperature)),
		MaxOutputTokens:  maxOutputTokens,
		ResponseMIMEType: "application/json",
	}
	response, err := client.Models.GenerateContent(ctx, p.cfg.Model, genai.Text(prompt.User), requestConfig)
	if err != nil {
		return Completion{}, fmt.Errorf("gemini generate content failed: %w", err)
	}
	content := strings.TrimSpace(response.Text())
	if content == "" {
		return Completion{}, emptyResponse(ProviderGemini)
	}
	model := strings.TrimSpace(response.ModelVersion)
	if model == "" {
		model = p.cfg.Model
	}
	return Completion{Model: model, Content: content}, nil
}
