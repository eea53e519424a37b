package dialogue

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopguide/shopguide-ai-platform/pkg/logging"
)

const textgenTimeout = 6 * time.Second

// TextGenerator produces shopper-facing prose: questions, guides,
// summaries, and explanations. Every method degrades to a fixed
// template when the LLM is missing or fails; a generator call can never
// fail a turn.
type TextGenerator struct {
	client LLMClient
	model  string
	logger *logging.Logger
}

// NewTextGenerator builds a generator. A nil client is valid and yields
// templates only.
func NewTextGenerator(client LLMClient, model string, logger *logging.Logger) *TextGenerator {
	if logger == nil {
		logger = logging.Default()
	}
	return &TextGenerator{client: client, model: model, logger: logger}
}

// Question produces the direct question for a slot.
func (g *TextGenerator) Question(ctx context.Context, slot Slot, board *SlotBoard) string {
	prompt := fmt.Sprintf(
		"You are a friendly shopping assistant. Ask one short question to learn the shopper's %s. Known so far: %s. Reply with the question only.",
		slotTopic(slot), boardSummary(board),
	)
	return g.generate(ctx, prompt, FallbackQuestion(slot))
}

// Guide produces a directional nudge for a slot the shopper said they
// don't know about.
func (g *TextGenerator) Guide(ctx context.Context, slot Slot, board *SlotBoard) string {
	prompt := fmt.Sprintf(
		"You are a friendly shopping assistant. The shopper doesn't know their %s. Give one short, concrete suggestion to help them decide. Known so far: %s. Reply with the suggestion only.",
		slotTopic(slot), boardSummary(board),
	)
	return g.generate(ctx, prompt, FallbackGuide(slot))
}

// ReadySummary recaps the accumulated criteria before a search runs.
func (g *TextGenerator) ReadySummary(ctx context.Context, crit Criteria) string {
	prompt := fmt.Sprintf(
		"You are a friendly shopping assistant. In one short sentence, confirm you will search for: keyword %q, features %v, brand %q, max price %d. Reply with the sentence only.",
		crit.Keyword, crit.Options, crit.Brand, crit.MaxPrice,
	)
	return g.generate(ctx, prompt, fallbackReadySummary)
}

// Explanation justifies a recommendation in shopper terms.
func (g *TextGenerator) Explanation(ctx context.Context, products []EvaluatedProduct, crit Criteria) string {
	titles := make([]string, 0, len(products))
	for _, p := range products {
		titles = append(titles, p.Product.Title)
	}
	prompt := fmt.Sprintf(
		"You are a friendly shopping assistant. In one or two short sentences, explain why these products fit a shopper looking for %q with features %v: %s. Reply with the explanation only.",
		crit.Keyword, crit.Options, strings.Join(titles, "; "),
	)
	return g.generate(ctx, prompt, fallbackExplanation)
}

func (g *TextGenerator) generate(ctx context.Context, prompt, fallback string) string {
	if g == nil || g.client == nil || strings.TrimSpace(g.model) == "" {
		return fallback
	}

	ctx, cancel := context.WithTimeout(ctx, textgenTimeout)
	defer cancel()

	resp, err := g.client.Complete(ctx, LLMRequest{
		Model:       g.model,
		Messages:    []ChatMessage{{Role: ChatRoleUser, Content: prompt}},
		MaxTokens:   160,
		Temperature: 0.7,
	})
	if err != nil {
		g.logger.Warn("text generation failed, using template", "error", err)
		return fallback
	}

	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return fallback
	}
	return text
}

func slotTopic(s Slot) string {
	switch s {
	case SlotTarget:
		return "target product category"
	case SlotPurpose:
		return "intended use"
	case SlotConstraint:
		return "must-avoid constraints"
	case SlotPreference:
		return "style or brand preferences"
	case SlotBudget:
		return "budget"
	case SlotContext:
		return "shopping occasion"
	default:
		return "shopping needs"
	}
}

func boardSummary(b *SlotBoard) string {
	if b == nil {
		return "nothing"
	}
	var parts []string
	for _, s := range slotPriority {
		if b.Filled(s) {
			parts = append(parts, fmt.Sprintf("%s=%s", s, b.Value(s)))
		}
	}
	if len(parts) == 0 {
		return "nothing"
	}
	return strings.Join(parts, ", ")
}

// describeProducts renders a compact transcript line for recommended items.
func describeProducts(items []RecommendedItem) string {
	titles := make([]string, 0, len(items))
	for _, it := range items {
		titles = append(titles, it.Title)
	}
	return strings.Join(titles, "; ")
}
