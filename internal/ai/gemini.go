package ai

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"
)

const defaultGeminiModel = "gemini-2.5-flash"

type GeminiClassifier struct {
	client       *genai.Client
	model        string
	maxImageSize int
	usageTracker
}

// GeminiOptions configures a GeminiClassifier. BaseURL is only set in tests.
type GeminiOptions struct {
	APIKey       string
	Model        string
	MaxImageSize int
	Pricing      RequestPricing
	BaseURL      string
}

func NewGeminiClassifier(ctx context.Context, opts GeminiOptions) (*GeminiClassifier, error) {
	if opts.APIKey == "" {
		return nil, errors.New("GEMINI_API_KEY is required for the gemini provider")
	}

	cc := &genai.ClientConfig{
		APIKey:  opts.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if opts.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: opts.BaseURL}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := opts.Model
	if model == "" {
		model = defaultGeminiModel
	}

	return &GeminiClassifier{
		client:       client,
		model:        model,
		maxImageSize: opts.MaxImageSize,
		usageTracker: usageTracker{pricing: opts.Pricing},
	}, nil
}

func (c *GeminiClassifier) Name() string {
	return c.model
}

func (c *GeminiClassifier) Classify(ctx context.Context, jpeg []byte) (string, error) {
	frame := prepareFrame(jpeg, c.maxImageSize)

	contents := []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{Text: UserPrompt},
				{InlineData: &genai.Blob{Data: frame, MIMEType: "image/jpeg"}},
			},
		},
	}

	config := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: SystemInstruction}},
		},
	}

	result, err := c.client.Models.GenerateContent(ctx, c.model, contents, config)
	if err != nil {
		return "", fmt.Errorf("gemini API error: %w", err)
	}

	if result.UsageMetadata != nil {
		c.trackUsage(int64(result.UsageMetadata.PromptTokenCount), int64(result.UsageMetadata.CandidatesTokenCount))
	}

	return result.Text(), nil
}
