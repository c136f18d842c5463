package ai

import (
	"context"
	"sync"
)

// SystemInstruction is sent with every frame. Replies are parsed by ParseReply, so the
// three reply shapes it names are a contract with the model.
const SystemInstruction = "You are an expert Construction Safety Inspector. " +
	"Check PPE: HELMET, VEST, GLOVES, BOOTS. " +
	"Reply ONLY: PPE_OK, PPE_MISSING: [LIST], or NO_WORKER."

// UserPrompt accompanies the inline frame.
const UserPrompt = "Analyze frame for PPE compliance."

// Classifier sends a single JPEG frame to a remote vision model and returns its raw reply.
type Classifier interface {
	Name() string
	Classify(ctx context.Context, jpeg []byte) (string, error)
	GetUsage() Usage
}

// Usage tracks token usage and calculates cost.
type Usage struct {
	Requests     int     `json:"requests"`
	InputTokens  int     `json:"input_tokens"`
	OutputTokens int     `json:"output_tokens"`
	TotalCost    float64 `json:"total_cost"` // in USD
}

// RequestPricing holds input/output prices per 1M tokens
type RequestPricing struct {
	Input  float64
	Output float64
}

// usageTracker accumulates usage across concurrent requests.
type usageTracker struct {
	mu      sync.Mutex
	usage   Usage
	pricing RequestPricing
}

func (t *usageTracker) trackUsage(inputTokens, outputTokens int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.usage.Requests++
	t.usage.InputTokens += int(inputTokens)
	t.usage.OutputTokens += int(outputTokens)
	t.usage.TotalCost += float64(inputTokens) / 1_000_000 * t.pricing.Input
	t.usage.TotalCost += float64(outputTokens) / 1_000_000 * t.pricing.Output
}

// GetUsage returns a snapshot of the accumulated usage.
func (t *usageTracker) GetUsage() Usage {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.usage
}
