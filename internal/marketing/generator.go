package marketing

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/glowdesk/salon-platform/internal/catalog"
	"github.com/glowdesk/salon-platform/internal/suggest"
	"github.com/glowdesk/salon-platform/pkg/logging"
)

const systemPrompt = `You are a copywriter for an independent hair salon.
Write warm, concise marketing copy. Never invent services or prices that are
not in the provided catalog. Respond with the copy only, no preamble.`

// ErrEmptyPrompt is returned when the request carries no brief.
var ErrEmptyPrompt = errors.New("marketing: prompt is required")

// CatalogReader supplies the service catalog used to ground generated copy.
type CatalogReader interface {
	List(ctx context.Context) ([]catalog.Service, error)
}

// Generator produces marketing copy from an admin brief, grounded in the
// live service catalog.
type Generator struct {
	llm     suggest.LLMClient
	catalog CatalogReader
	modelID string
	timeout time.Duration
	logger  *logging.Logger
}

func NewGenerator(llm suggest.LLMClient, catalogReader CatalogReader, modelID string, timeout time.Duration, logger *logging.Logger) *Generator {
	if llm == nil {
		panic("marketing: llm client cannot be nil")
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Generator{
		llm:     llm,
		catalog: catalogReader,
		modelID: modelID,
		timeout: timeout,
		logger:  logger,
	}
}

// Request is an admin brief for a piece of marketing content.
type Request struct {
	Prompt   string `json:"prompt"`
	Audience string `json:"audience,omitempty"`
	Tone     string `json:"tone,omitempty"`
}

// Content is the generated copy.
type Content struct {
	Text        string `json:"text"`
	GeneratedAt string `json:"generatedAt"`
}

func (g *Generator) Generate(ctx context.Context, req Request) (*Content, error) {
	if strings.TrimSpace(req.Prompt) == "" {
		return nil, ErrEmptyPrompt
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	var sb strings.Builder
	sb.WriteString(req.Prompt)
	if req.Audience != "" {
		fmt.Fprintf(&sb, "\n\nAudience: %s", req.Audience)
	}
	if req.Tone != "" {
		fmt.Fprintf(&sb, "\nTone: %s", req.Tone)
	}
	if g.catalog != nil {
		if services, err := g.catalog.List(ctx); err == nil && len(services) > 0 {
			sb.WriteString("\n\nCurrent service catalog:")
			for _, svc := range services {
				fmt.Fprintf(&sb, "\n- %s ($%.2f, %d min)", svc.Name, float64(svc.PriceCents)/100, svc.DurationMin)
			}
		} else if err != nil {
			g.logger.Warn("catalog unavailable for marketing prompt", "error", err)
		}
	}

	resp, err := g.llm.Complete(ctx, suggest.LLMRequest{
		Model:  g.modelID,
		System: []string{systemPrompt},
		Messages: []suggest.ChatMessage{
			{Role: suggest.ChatRoleUser, Content: sb.String()},
		},
		MaxTokens:   1024,
		Temperature: 0.7,
	})
	if err != nil {
		return nil, fmt.Errorf("marketing: generate content: %w", err)
	}

	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return nil, fmt.Errorf("marketing: model returned empty content")
	}

	g.logger.Info("marketing content generated",
		"prompt_len", len(req.Prompt),
		"output_len", len(text),
		"tokens", resp.Usage.TotalTokens,
	)

	return &Content{
		Text:        text,
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
	}, nil
}
