// Package topic produces short topic hints for captured messages using
// Google's Gemini API. Hints are best-effort decoration: callers treat any
// failure as "no hint".
package topic

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"google.golang.org/genai"

	"github.com/rsilveira/secretary-bot/internal/config"
)

const hintPrompt = "Summarize the topic of the following message in at most three words. " +
	"Reply with only those words, no punctuation.\n\nMessage:\n%s"

// maxHintWords caps the hint even when the model ignores the prompt.
const maxHintWords = 3

// Client asks Gemini for a topic hint. A nil *Client is safe to pass around;
// triage skips hinting when no client is configured.
type Client struct {
	genaiClient *genai.Client
	modelName   string
	logger      *slog.Logger
}

// NewClient creates a topic hint client. Returns nil (and no error) when the
// API key is empty, which disables hints.
func NewClient(ctx context.Context, cfg config.TopicConfig, logger *slog.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, nil
	}

	gi, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	log := logger.With("component", "topic_client")
	log.Info("Topic hint client initialized", "model", cfg.Model)
	return &Client{
		genaiClient: gi,
		modelName:   cfg.Model,
		logger:      log,
	}, nil
}

// TopicHint returns a hint of at most three words for text. The caller is
// expected to bound ctx; there is no retry.
func (c *Client) TopicHint(ctx context.Context, text string) (string, error) {
	contents := []*genai.Content{
		genai.NewContentFromText(fmt.Sprintf(hintPrompt, text), genai.RoleUser),
	}

	resp, err := c.genaiClient.Models.GenerateContent(ctx, c.modelName, contents, nil)
	if err != nil {
		return "", fmt.Errorf("topic hint generation failed: %w", err)
	}

	hint := cleanHint(resp.Text())
	if hint == "" {
		return "", fmt.Errorf("topic hint response was empty")
	}

	c.logger.DebugContext(ctx, "Topic hint generated", "hint", hint)
	return hint, nil
}

// cleanHint normalizes model output to at most maxHintWords plain words.
func cleanHint(raw string) string {
	line := raw
	if idx := strings.IndexByte(line, '\n'); idx != -1 {
		line = line[:idx]
	}
	line = strings.Trim(strings.TrimSpace(line), `"'.`)

	words := strings.Fields(line)
	if len(words) > maxHintWords {
		words = words[:maxHintWords]
	}
	return strings.Join(words, " ")
}
