// Package iap implements the Ideal Applicant Profile generator of
// spec.md §4.5: a rule tier, an optional LLM tier, a merge policy, and a
// resumable batch driver.
package iap

import (
	"context"
	"errors"
	"net"
	"os"
	"strings"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/cenkalti/backoff/v5"
)

// Usage is the per-call token accounting spec.md §9 "cost tracking"
// requires every generation to record.
type Usage struct {
	InputTokens  int
	OutputTokens int
}

// CompleteOptions configures a single LLM request (spec.md §6.1).
type CompleteOptions struct {
	Model       string
	MaxTokens   int
	Temperature float64
}

// CompleteResult is what a Completer returns.
type CompleteResult struct {
	Text  string
	Usage Usage
}

// Completer is the abstract LLM boundary (spec.md §9 "LLM boundary"): the
// generator depends on this single operation, never on a vendor SDK
// directly.
type Completer interface {
	Complete(ctx context.Context, systemPrompt, userMessage string, opts CompleteOptions) (CompleteResult, error)
}

const defaultModel = "claude-sonnet-4-20250514"

// AnthropicMessager is the narrow slice of the Anthropic SDK this package
// depends on, grounded on patentscreen.AnthropicMessager — narrow enough
// to fake in tests without a real client.
type AnthropicMessager interface {
	New(ctx context.Context, params anthropic.MessageNewParams, opts ...option.RequestOption) (*anthropic.Message, error)
}

// AnthropicCompleter is the production Completer backed by the Anthropic
// SDK (spec.md §6.1, SPEC_FULL.md domain stack table).
type AnthropicCompleter struct {
	messages AnthropicMessager
}

type anthropicClientCreator func(apiKey string) AnthropicMessager

func defaultAnthropicCreator(apiKey string) AnthropicMessager {
	c := anthropic.NewClient(option.WithAPIKey(apiKey))
	return &c.Messages
}

var newAnthropicClient anthropicClientCreator = defaultAnthropicCreator

// NewAnthropicCompleterFromEnv reads ANTHROPIC_API_KEY, mirroring
// patentscreen.NewAnthropicCallerFromEnv.
func NewAnthropicCompleterFromEnv() (*AnthropicCompleter, error) {
	apiKey := strings.TrimSpace(os.Getenv("ANTHROPIC_API_KEY"))
	if apiKey == "" {
		return nil, errors.New("ANTHROPIC_API_KEY not configured")
	}
	return &AnthropicCompleter{messages: newAnthropicClient(apiKey)}, nil
}

func (a *AnthropicCompleter) Complete(ctx context.Context, systemPrompt, userMessage string, opts CompleteOptions) (CompleteResult, error) {
	model := anthropic.Model(opts.Model)
	if opts.Model == "" {
		model = anthropic.Model(defaultModel)
	}
	maxTokens := int64(opts.MaxTokens)
	if maxTokens <= 0 {
		maxTokens = 1024
	}

	resp, err := a.messages.New(ctx, anthropic.MessageNewParams{
		Model:       model,
		MaxTokens:   maxTokens,
		System:      []anthropic.TextBlockParam{{Text: systemPrompt}},
		Messages:    []anthropic.MessageParam{anthropic.NewUserMessage(anthropic.NewTextBlock(userMessage))},
		Temperature: anthropic.Float(opts.Temperature),
	})
	if err != nil {
		return CompleteResult{}, err
	}

	var sb strings.Builder
	for _, b := range resp.Content {
		if b.Type == "text" {
			sb.WriteString(b.Text)
		}
	}

	return CompleteResult{
		Text: sb.String(),
		Usage: Usage{
			InputTokens:  int(resp.Usage.InputTokens),
			OutputTokens: int(resp.Usage.OutputTokens),
		},
	}, nil
}

// retryableError reports whether a transport error should be retried by
// the backoff policy, mirroring patentscreen.classifyTransportError's
// timeout/rate-limit/server bucket (client-side 4xx errors are not
// retried).
func retryableError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return true
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "429"):
		return true
	case strings.Contains(msg, "status code: 5"), strings.Contains(msg, "server error"):
		return true
	case strings.Contains(msg, "status code: 4"):
		return false
	default:
		return true
	}
}

// asRetryDecision wraps a non-retryable error for backoff.Retry, following the
// library's "return backoff.Permanent(err) to stop early" convention.
func asRetryDecision(err error) error {
	if err == nil {
		return nil
	}
	if !retryableError(err) {
		return backoff.Permanent(err)
	}
	return err
}
