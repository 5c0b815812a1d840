package iap

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// TierError is the named error type for a failed tier-2 extraction
// attempt, mirroring patentscreen.StageError's Unwrap shape
// (SPEC_FULL.md ambient-stack "error handling" section).
type TierError struct {
	Tier string
	Err  error
}

func (e *TierError) Error() string {
	return fmt.Sprintf("iap %s: %v", e.Tier, e.Err)
}

func (e *TierError) Unwrap() error {
	return e.Err
}

// AttemptMetrics records how many attempts and content-level retries an
// extraction required, surfaced for cost/debug reporting.
type AttemptMetrics struct {
	Attempts       int
	ContentRetries int
}

const maxAttempts = 3

// llmCallTimeout bounds a single tier-2 completion attempt (spec.md §5:
// "IAP Tier 2 LLM calls must carry a per-request timeout"), independent of
// any caller-supplied deadline.
const llmCallTimeout = 20 * time.Second

// systemPrompt is the fixed system prompt for tier-2 extraction (spec.md
// §4.5: single-shot JSON-only request).
const systemPrompt = "You are an expert analyst of Korean government R&D and SME funding program announcements. Extract the structured ideal-applicant signal requested and respond with strict JSON only, matching the given schema exactly."

// executor runs a single-shot JSON extraction against a Completer with a
// validate/retry loop, grounded on patentscreen.StageExecutor.Run but
// using backoff/v5's policy instead of a hand-rolled fixed-step delay.
type executor struct {
	completer Completer
}

func newExecutor(c Completer) *executor {
	return &executor{completer: c}
}

// run executes prompt against the completer, unmarshals the response into
// out, and revalidates with validate. It makes at most maxAttempts calls in
// total: a retryable transport failure, an empty response, bad JSON, or a
// validation failure leads to another call (the last three feed a
// correction hint into it); a non-retryable transport failure stops at once.
func (e *executor) run(ctx context.Context, userMessage string, opts CompleteOptions, out any, validate func() error) (AttemptMetrics, Usage, error) {
	metrics := AttemptMetrics{}
	var totalUsage Usage
	feedback := ""

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 1 * time.Second
	b.MaxInterval = 4 * time.Second

	op := func() (struct{}, error) {
		metrics.Attempts++
		msg := userMessage + "\n\nRespond with only valid JSON matching the schema."
		if feedback != "" {
			msg += "\n\n" + feedback
		}

		callCtx, cancel := context.WithTimeout(ctx, llmCallTimeout)
		result, err := e.completer.Complete(callCtx, systemPrompt, msg, opts)
		cancel()
		if err != nil {
			return struct{}{}, asRetryDecision(fmt.Errorf("transport failure: %w", err))
		}
		totalUsage.InputTokens += result.Usage.InputTokens
		totalUsage.OutputTokens += result.Usage.OutputTokens

		raw := strings.TrimSpace(result.Text)
		if raw == "" {
			metrics.ContentRetries++
			feedback = "Your previous response was empty. Respond with valid JSON."
			return struct{}{}, fmt.Errorf("empty response")
		}

		clean := stripCodeFences(raw)
		if err := json.Unmarshal([]byte(clean), out); err != nil {
			metrics.ContentRetries++
			feedback = "Your previous response was not valid JSON. Respond with only valid JSON."
			return struct{}{}, fmt.Errorf("json parse: %w", err)
		}

		if err := validate(); err != nil {
			metrics.ContentRetries++
			feedback = fmt.Sprintf("Your response failed validation: %s. Fix these issues.", err)
			return struct{}{}, fmt.Errorf("validation: %w", err)
		}

		return struct{}{}, nil
	}

	_, err := backoff.Retry(ctx, op, backoff.WithBackOff(b), backoff.WithMaxTries(maxAttempts))
	if err != nil {
		return metrics, totalUsage, &TierError{Tier: "tier2", Err: err}
	}
	return metrics, totalUsage, nil
}

func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		parts := strings.SplitN(s, "\n", 2)
		if len(parts) == 2 {
			s = parts[1]
		}
		s = strings.TrimPrefix(s, "json")
		s = strings.TrimSpace(strings.TrimSuffix(s, "```"))
	}
	return s
}
