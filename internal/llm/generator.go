package llm

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/mardromus/scrumdinger/internal/logger"
)

// TextGenerator turns a single prompt into generated text. It satisfies the
// summary pipeline's Generator interface.
//
// The chat model is created lazily per call through the factory so a
// misconfigured provider surfaces as an error string downstream instead of
// failing construction.
type TextGenerator struct {
	cfg     Config
	factory func(ctx context.Context, cfg Config) (model.BaseChatModel, error)
}

// NewTextGenerator creates a generator for the configured provider.
func NewTextGenerator(cfg Config) *TextGenerator {
	return &TextGenerator{cfg: cfg, factory: NewChatModel}
}

// GenerateContent sends prompt as a single user message and returns the
// model's text response.
func (g *TextGenerator) GenerateContent(ctx context.Context, prompt string) (string, error) {
	logger.SetLastPrompt(prompt)

	if g.cfg.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.cfg.RequestTimeout)
		defer cancel()
	}

	chatModel, err := g.factory(ctx, g.cfg)
	if err != nil {
		return "", fmt.Errorf("create chat model: %w", err)
	}

	resp, err := chatModel.Generate(ctx, []*schema.Message{
		schema.UserMessage(prompt),
	})
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	return resp.Content, nil
}
