package source

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"google.golang.org/genai"
)

const DefaultGeminiModel = "gemini-2.5-flash"

const advisorInstruction = `You are a friendly investing educator inside a stock dashboard.
Answer the user's question about stocks or investing in at most four sentences.
Explain concepts, never give personalised buy or sell advice, and do not invent prices.`

type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GeminiAdvisor answers questions with a Gemini model.
type GeminiAdvisor struct {
	models contentGenerator
	model  string
	log    zerolog.Logger
}

var _ Advisor = (*GeminiAdvisor)(nil)

type GeminiOption func(*GeminiAdvisor)

func WithGeminiModel(model string) GeminiOption {
	return func(a *GeminiAdvisor) {
		if model != "" {
			a.model = model
		}
	}
}

func WithGeminiLogger(l zerolog.Logger) GeminiOption {
	return func(a *GeminiAdvisor) { a.log = l }
}

// NewGeminiAdvisor creates an advisor on the Gemini API.
func NewGeminiAdvisor(ctx context.Context, apiKey string, opts ...GeminiOption) (*GeminiAdvisor, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return newGeminiAdvisor(client.Models, opts...), nil
}

func newGeminiAdvisor(models contentGenerator, opts ...GeminiOption) *GeminiAdvisor {
	a := &GeminiAdvisor{models: models, model: DefaultGeminiModel, log: zerolog.Nop()}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *GeminiAdvisor) Ask(ctx context.Context, question string) (string, error) {
	a.log.Debug().Str("model", a.model).Msg("asking advisor")

	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(advisorInstruction, genai.RoleUser),
		MaxOutputTokens:   512,
	}
	result, err := a.models.GenerateContent(ctx, a.model, genai.Text(question), config)
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}
	return extractText(result)
}

func extractText(result *genai.GenerateContentResponse) (string, error) {
	if result == nil || len(result.Candidates) == 0 || result.Candidates[0].Content == nil {
		return "", fmt.Errorf("no content generated")
	}

	var sb strings.Builder
	for _, part := range result.Candidates[0].Content.Parts {
		if part != nil && part.Text != "" {
			sb.WriteString(part.Text)
		}
	}
	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", fmt.Errorf("no text in response")
	}
	return text, nil
}
