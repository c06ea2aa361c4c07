// Package claude implements the triage model provider on the Anthropic API.
package claude

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/cenkalti/backoff/v4"
	"github.com/linnemanlabs/go-core/log"

	"github.com/darkneiss/ai-pr-sentinel-sub001/internal/triage"
)

const (
	defaultMaxTokens   = 1024
	defaultCallTimeout = 120 * time.Second
	maxRetryElapsed    = 45 * time.Second
	initialRetryPeriod = 1 * time.Second
)

const systemPrompt = `You are an issue triage assistant. Given an issue from a
software repository and a list of recently filed issues, respond with a single
JSON object and nothing else. The object has these fields:

  classification: {"type": "bug"|"feature"|"question", "confidence": 0..1}
  sentiment: {"tone": "positive"|"neutral"|"hostile", "confidence": 0..1}
  duplicateDetection: {"isDuplicate": bool, "originalIssueNumber": int|null,
    "similarityScore": 0..1, "hasExplicitOriginalIssueReference": bool}
  labelRecommendations: {"documentation": rec, "helpWanted": rec,
    "goodFirstIssue": rec} where rec is
    {"shouldApply": bool, "confidence": 0..1, "reasoning": string}
  suggestedResponse: string or null, a helpful reply when the issue is a
    question you can answer from the issue text alone.

Do not wrap the JSON in markdown fences or add commentary.`

// Client calls the Anthropic Messages API and returns the raw model text.
// Parsing is the normalizer's job; the client never inspects the JSON.
type Client struct {
	client    anthropic.Client
	model     anthropic.Model
	maxTokens int64
	timeout   time.Duration
	logger    log.Logger
}

// New creates a new provider with the given API key and model name. timeout
// bounds a single API attempt; values <= 0 fall back to the default.
func New(apiKey, model string, timeout time.Duration, logger log.Logger) *Client {
	if logger == nil {
		logger = log.Nop()
	}
	if timeout <= 0 {
		timeout = defaultCallTimeout
	}
	return &Client{
		client:    anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:     anthropic.Model(model),
		maxTokens: defaultMaxTokens,
		timeout:   timeout,
		logger:    logger,
	}
}

// Analyze sends the issue to the model and returns its raw text output.
func (c *Client) Analyze(ctx context.Context, req *triage.AnalyzeRequest) (*triage.AnalyzeResponse, error) {
	params := anthropic.MessageNewParams{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(buildPrompt(req))),
		},
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = initialRetryPeriod
	bo.MaxElapsedTime = maxRetryElapsed

	var message *anthropic.Message
	err := backoff.Retry(func() error {
		callCtx, cancel := context.WithTimeout(ctx, c.timeout)
		var callErr error
		message, callErr = c.client.Messages.New(callCtx, params)
		cancel()
		if callErr == nil {
			return nil
		}
		// A blown per-attempt deadline is retryable as long as the parent
		// context is still live.
		if errors.Is(callErr, context.DeadlineExceeded) && ctx.Err() == nil {
			c.logger.Warn(ctx, "model call timed out, retrying", "timeout", c.timeout)
			return callErr
		}
		if !isRetryable(callErr) {
			return backoff.Permanent(callErr)
		}
		c.logger.Warn(ctx, "model call failed, retrying", "error", callErr)
		return callErr
	}, backoff.WithContext(bo, ctx))
	if err != nil {
		return nil, fmt.Errorf("anthropic messages: %w", err)
	}

	var text strings.Builder
	for _, block := range message.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		return nil, errors.New("model returned no text content")
	}

	return &triage.AnalyzeResponse{
		RawText:      text.String(),
		Model:        string(message.Model),
		InputTokens:  int(message.Usage.InputTokens),
		OutputTokens: int(message.Usage.OutputTokens),
	}, nil
}

func buildPrompt(req *triage.AnalyzeRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Repository: %s\nIssue %s\nTitle: %s\n\n%s\n", req.Repo, req.Number, req.Title, req.Body)

	if len(req.RecentIssues) > 0 {
		b.WriteString("\nRecently filed issues:\n")
		for _, ri := range req.RecentIssues {
			fmt.Fprintf(&b, "- %s [%s] %s\n", ri.Number, ri.State, ri.Title)
		}
	}
	return b.String()
}

func isRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 429 || apiErr.StatusCode >= 500
	}
	return false
}
