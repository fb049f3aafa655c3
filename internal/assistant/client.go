// Package assistant wraps the generative-text model used for query
// interpretation, consumer advice and complaint analysis.
package assistant

import (
	"context"
	"encoding/json"
	"regexp"
	"time"

	apperrors "consumer-portal/internal/common/errors"
	"consumer-portal/internal/common/logger"
	"consumer-portal/internal/common/metrics"
	"consumer-portal/internal/models"
)

const (
	trendSampleSize = 5
	fraudSampleSize = 10
)

// jsonObject matches from the first "{" to the last "}".
var jsonObject = regexp.MustCompile(`\{[\s\S]*\}`)

// Client is safe for concurrent use. Availability is fixed at construction.
type Client struct {
	cfg       Config
	generator Generator
	available bool
	logger    logger.Logger
}

type Option func(*Client)

// WithGenerator replaces the Gemini generator.
func WithGenerator(g Generator) Option {
	return func(c *Client) { c.generator = g }
}

func WithLogger(l logger.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// New builds the client. Without a usable credential, or when the Gemini
// client cannot be created, the client is unavailable; that is not an error.
func New(ctx context.Context, cfg Config, opts ...Option) *Client {
	c := &Client{cfg: cfg, logger: logger.NewNoOpLogger()}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With(map[string]interface{}{"component": "assistant"})

	if !cfg.HasCredential() {
		c.generator = nil
		c.logger.Info("assistant disabled: no API key configured", nil)
		return c
	}
	if c.generator == nil {
		g, err := NewGeminiGenerator(ctx, cfg)
		if err != nil {
			c.logger.Warn("assistant disabled", map[string]interface{}{"error": err.Error()})
			return c
		}
		c.generator = g
	}
	c.available = true
	return c
}

func (c *Client) IsAvailable() bool {
	return c != nil && c.available
}

// generate runs one model call under the configured timeout.
func (c *Client) generate(ctx context.Context, operation, prompt string) (string, error) {
	if !c.IsAvailable() {
		metrics.AssistantCalls.WithLabelValues(operation, "unavailable").Inc()
		return "", apperrors.NewAssistantUnavailableError()
	}
	if c.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()
	}

	start := time.Now()
	text, err := c.generator.GenerateText(ctx, prompt)
	if err != nil {
		metrics.AssistantCalls.WithLabelValues(operation, "error").Inc()
		c.logger.Warn("assistant call failed", map[string]interface{}{
			"operation":  operation,
			"error":      err.Error(),
			"durationMs": time.Since(start).Milliseconds(),
		})
		return "", apperrors.NewAssistantFailedError(operation, err)
	}
	metrics.AssistantCalls.WithLabelValues(operation, "success").Inc()
	c.logger.Debug("assistant call completed", map[string]interface{}{
		"operation":  operation,
		"durationMs": time.Since(start).Milliseconds(),
	})
	return text, nil
}

// InterpretQuery classifies query into an intent with filter hints. It never
// fails: any problem yields models.DefaultIntent(query).
func (c *Client) InterpretQuery(ctx context.Context, query string, bundle ContextBundle) models.IntentResult {
	text, err := c.generate(ctx, "interpret_query", interpretPrompt(query, bundle))
	if err != nil {
		return models.DefaultIntent(query)
	}
	intent, err := ParseIntent(text)
	if err != nil {
		c.logger.Warn("unusable intent answer", map[string]interface{}{"error": err.Error()})
		return models.DefaultIntent(query)
	}
	if intent.SearchTerm == "" {
		intent.SearchTerm = query
	}
	return intent
}

// ConsumerAdvice answers a question using contextData as background.
func (c *Client) ConsumerAdvice(ctx context.Context, question string, contextData interface{}) (string, error) {
	return c.generate(ctx, "consumer_advice", advicePrompt(question, contextData))
}

// Chat is ConsumerAdvice with the portal context and user-facing messages
// in place of errors.
func (c *Client) Chat(ctx context.Context, message string) string {
	if !c.IsAvailable() {
		return ChatUnavailableMessage
	}
	answer, err := c.ConsumerAdvice(ctx, message, ChatContext)
	if err != nil {
		return ChatErrorMessage
	}
	return answer
}

// AnalyzeComplaintTrends summarizes the first five complaints. An answer
// without a JSON object yields models.UnknownTrendAnalysis.
func (c *Client) AnalyzeComplaintTrends(ctx context.Context, company string, complaints []map[string]interface{}) (*models.TrendAnalysis, error) {
	text, err := c.generate(ctx, "analyze_trends", trendPrompt(company, head(complaints, trendSampleSize)))
	if err != nil {
		return nil, err
	}
	match := jsonObject.FindString(text)
	if match == "" {
		return models.UnknownTrendAnalysis(), nil
	}
	var analysis models.TrendAnalysis
	if err := json.Unmarshal([]byte(match), &analysis); err != nil {
		return nil, apperrors.NewAssistantFailedError("analyze_trends", err)
	}
	return &analysis, nil
}

// DetectFraudPatterns describes scam patterns in the first ten complaints.
func (c *Client) DetectFraudPatterns(ctx context.Context, complaints []map[string]interface{}) (string, error) {
	return c.generate(ctx, "detect_fraud", fraudPrompt(head(complaints, fraudSampleSize)))
}

func head(items []map[string]interface{}, n int) []map[string]interface{} {
	if items == nil {
		return []map[string]interface{}{}
	}
	if len(items) > n {
		return items[:n]
	}
	return items
}
