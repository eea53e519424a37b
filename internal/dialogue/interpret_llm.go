package dialogue

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopguide/shopguide-ai-platform/internal/observability/metrics"
	"github.com/shopguide/shopguide-ai-platform/pkg/logging"
)

const interpreterPrompt = `Classify this shopper reply for a shopping-assistant conversation. Respond with JSON only.

The assistant last asked about: %s

Intents:
- answer: the reply answers the question or gives shopping information
- unknown: the shopper says they don't know
- refusal: the shopper explicitly declines to answer
- context_shift: the shopper wants to start over or look for a different thing
- noise: filler with no content ("um", "ok", "haha")

For "answer", also extract secondary signals that are EXPLICITLY present:
- budget: a numeric spend limit ("under $300" -> "300")
- constraint: avoidance or price sensitivity ("nothing too heavy", "cheap")
- preference: style or taste ("I like minimalist designs")
Never infer a signal that is not written in the reply.

Reply: %s

Respond with: {"intent": "<intent>", "value": "<normalized answer text>", "signals": [{"slot": "<budget|constraint|preference>", "value": "<text>"}]}`

const interpreterTimeout = 8 * time.Second

// LLMInterpreter classifies utterances with an LLM and falls back to the
// deterministic pattern classifier on any failure. It never fails a turn.
type LLMInterpreter struct {
	client   LLMClient
	model    string
	fallback *PatternInterpreter
	logger   *logging.Logger
	metrics  *metrics.DialogueMetrics
}

// NewLLMInterpreter builds an AI-backed interpreter. The pattern
// classifier is always constructed alongside; it is not optional.
func NewLLMInterpreter(client LLMClient, model string, logger *logging.Logger, m *metrics.DialogueMetrics) *LLMInterpreter {
	if logger == nil {
		logger = logging.Default()
	}
	return &LLMInterpreter{
		client:   client,
		model:    model,
		fallback: NewPatternInterpreter(),
		logger:   logger,
		metrics:  m,
	}
}

// Interpret classifies the utterance, preferring the LLM and degrading
// to patterns whenever the provider misbehaves.
func (i *LLMInterpreter) Interpret(text string, lastAsked Slot) Interpretation {
	if i.client == nil || strings.TrimSpace(i.model) == "" {
		return i.fallback.Interpret(text, lastAsked)
	}

	ctx, cancel := context.WithTimeout(context.Background(), interpreterTimeout)
	defer cancel()

	asked := "nothing yet"
	if lastAsked != SlotNone {
		asked = string(lastAsked)
	}

	resp, err := i.client.Complete(ctx, LLMRequest{
		Model:       i.model,
		Messages:    []ChatMessage{{Role: ChatRoleUser, Content: fmt.Sprintf(interpreterPrompt, asked, text)}},
		MaxTokens:   256,
		Temperature: 0,
	})
	if err != nil {
		i.logger.Warn("llm interpreter failed, using pattern classifier", "error", err)
		i.metrics.ObserveInterpreterFallback()
		return i.fallback.Interpret(text, lastAsked)
	}

	parsed, ok := parseInterpretationJSON(resp.Text)
	if !ok {
		i.logger.Warn("llm interpreter returned unparseable output", "output", resp.Text)
		i.metrics.ObserveInterpreterFallback()
		return i.fallback.Interpret(text, lastAsked)
	}
	return parsed
}

// parseInterpretationJSON extracts the first JSON object from the model
// output and validates it against the closed intent and slot sets.
func parseInterpretationJSON(output string) (Interpretation, bool) {
	start := strings.Index(output, "{")
	end := strings.LastIndex(output, "}")
	if start < 0 || end <= start {
		return Interpretation{}, false
	}

	var raw struct {
		Intent  string `json:"intent"`
		Value   string `json:"value"`
		Signals []struct {
			Slot  string `json:"slot"`
			Value string `json:"value"`
		} `json:"signals"`
	}
	if err := json.Unmarshal([]byte(output[start:end+1]), &raw); err != nil {
		return Interpretation{}, false
	}

	intent := Intent(strings.ToLower(strings.TrimSpace(raw.Intent)))
	switch intent {
	case IntentAnswer, IntentUnknown, IntentRefusal, IntentContextShift, IntentNoise:
	default:
		return Interpretation{}, false
	}

	result := Interpretation{Intent: intent, Value: strings.TrimSpace(raw.Value)}
	if intent != IntentAnswer {
		// Secondary signals are only meaningful on answers.
		return result, true
	}

	for _, s := range raw.Signals {
		slot := Slot(strings.ToLower(strings.TrimSpace(s.Slot)))
		switch slot {
		case SlotBudget, SlotConstraint, SlotPreference:
			if v := strings.TrimSpace(s.Value); v != "" {
				result.Signals = append(result.Signals, Signal{Slot: slot, Value: v})
			}
		default:
			// Unrecognized slot names are dropped rather than guessed at.
		}
	}
	return result, true
}
