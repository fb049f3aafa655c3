package assistant

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/genai"

	"consumer-portal/internal/common/config"
)

// Generator turns one prompt into model text.
type Generator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// Config is built once at startup and handed to New.
type Config struct {
	APIKey          string
	Model           string
	BaseURL         string
	Timeout         time.Duration
	Temperature     float32
	MaxOutputTokens int32
}

// FromConfig maps the loaded application config.
func FromConfig(c config.AssistantConfig) Config {
	return Config{
		APIKey:          c.APIKey,
		Model:           c.Model,
		BaseURL:         c.BaseURL,
		Timeout:         config.GetDuration(c.Timeout),
		Temperature:     c.Temperature,
		MaxOutputTokens: c.MaxOutputTokens,
	}
}

// HasCredential reports whether APIKey is set to something other than the
// sample placeholder.
func (c Config) HasCredential() bool {
	return c.APIKey != "" && c.APIKey != config.PlaceholderAPIKey
}

// GeminiGenerator calls the Gemini API through the genai SDK.
type GeminiGenerator struct {
	client *genai.Client
	model  string
	config *genai.GenerateContentConfig
}

func NewGeminiGenerator(ctx context.Context, cfg Config) (*GeminiGenerator, error) {
	if !cfg.HasCredential() {
		return nil, fmt.Errorf("Gemini API key is required")
	}

	cc := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := cfg.Model
	if model == "" {
		model = config.DefaultAssistantModel
	}

	gen := &genai.GenerateContentConfig{}
	if cfg.Temperature > 0 {
		gen.Temperature = genai.Ptr(cfg.Temperature)
	}
	if cfg.MaxOutputTokens > 0 {
		gen.MaxOutputTokens = cfg.MaxOutputTokens
	}

	return &GeminiGenerator{client: client, model: model, config: gen}, nil
}

func (g *GeminiGenerator) GenerateText(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), g.config)
	if err != nil {
		return "", fmt.Errorf("Gemini generate failed: %w", err)
	}
	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("Gemini returned no text")
	}
	return text, nil
}

func (g *GeminiGenerator) Model() string {
	return g.model
}
