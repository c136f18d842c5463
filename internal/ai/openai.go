package ai

import (
	"context"
	"errors"
	"fmt"

	"github.com/kozaktomas/site-attendance/internal/frame"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const chatModel = openai.ChatModelGPT4_1Mini

type OpenAIClassifier struct {
	client       *openai.Client
	maxImageSize int
	usageTracker
}

// OpenAIOptions configures an OpenAIClassifier. BaseURL is only set in tests.
type OpenAIOptions struct {
	Token        string
	MaxImageSize int
	Pricing      RequestPricing
	BaseURL      string
}

func NewOpenAIClassifier(opts OpenAIOptions) (*OpenAIClassifier, error) {
	if opts.Token == "" {
		return nil, errors.New("OPENAI_TOKEN is required for the openai provider")
	}

	reqOpts := []option.RequestOption{option.WithAPIKey(opts.Token)}
	if opts.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(opts.BaseURL))
	}
	client := openai.NewClient(reqOpts...)

	return &OpenAIClassifier{
		client:       &client,
		maxImageSize: opts.MaxImageSize,
		usageTracker: usageTracker{pricing: opts.Pricing},
	}, nil
}

func (c *OpenAIClassifier) Name() string {
	return chatModel
}

func (c *OpenAIClassifier) Classify(ctx context.Context, jpeg []byte) (string, error) {
	imageURL := frame.EncodeDataURL("image/jpeg", prepareFrame(jpeg, c.maxImageSize))

	messages := []openai.ChatCompletionMessageParamUnion{
		{
			OfSystem: &openai.ChatCompletionSystemMessageParam{
				Content: openai.ChatCompletionSystemMessageParamContentUnion{
					OfString: openai.String(SystemInstruction),
				},
			},
		},
		{
			OfUser: &openai.ChatCompletionUserMessageParam{
				Content: openai.ChatCompletionUserMessageParamContentUnion{
					OfArrayOfContentParts: []openai.ChatCompletionContentPartUnionParam{
						openai.TextContentPart(UserPrompt),
						openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{
							URL:    imageURL,
							Detail: "low",
						}),
					},
				},
			},
		},
	}

	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:     chatModel,
		Messages:  messages,
		MaxTokens: openai.Int(100),
	})
	if err != nil {
		return "", fmt.Errorf("OpenAI API error: %w", err)
	}

	c.trackUsage(resp.Usage.PromptTokens, resp.Usage.CompletionTokens)

	if len(resp.Choices) == 0 {
		return "", errors.New("no response from OpenAI")
	}
	return resp.Choices[0].Message.Content, nil
}
