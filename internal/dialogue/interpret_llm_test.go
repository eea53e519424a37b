package dialogue

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopguide/shopguide-ai-platform/pkg/logging"
)

type stubLLMClient struct {
	resp LLMResponse
	err  error
	reqs []LLMRequest
}

func (s *stubLLMClient) Complete(_ context.Context, req LLMRequest) (LLMResponse, error) {
	s.reqs = append(s.reqs, req)
	return s.resp, s.err
}

func TestLLMInterpreterParsesModelOutput(t *testing.T) {
	client := &stubLLMClient{resp: LLMResponse{
		Text: `Sure! {"intent": "answer", "value": "a wireless headset", "signals": [{"slot": "budget", "value": "200"}]}`,
	}}
	i := NewLLMInterpreter(client, "model-a", logging.Default(), nil)

	in := i.Interpret("a wireless headset under $200", SlotTarget)

	assert.Equal(t, IntentAnswer, in.Intent)
	assert.Equal(t, "a wireless headset", in.Value)
	require.Len(t, in.Signals, 1)
	assert.Equal(t, SlotBudget, in.Signals[0].Slot)
	assert.Equal(t, "200", in.Signals[0].Value)

	require.Len(t, client.reqs, 1)
	assert.Equal(t, "model-a", client.reqs[0].Model)
}

func TestLLMInterpreterFallsBackOnError(t *testing.T) {
	client := &stubLLMClient{err: errors.New("provider down")}
	i := NewLLMInterpreter(client, "model-a", logging.Default(), nil)

	in := i.Interpret("I don't know", SlotBudget)

	assert.Equal(t, IntentUnknown, in.Intent, "pattern classifier takes over")
}

func TestLLMInterpreterFallsBackOnGarbage(t *testing.T) {
	client := &stubLLMClient{resp: LLMResponse{Text: "certainly, here is my analysis"}}
	i := NewLLMInterpreter(client, "model-a", logging.Default(), nil)

	in := i.Interpret("a coffee maker", SlotTarget)

	assert.Equal(t, IntentAnswer, in.Intent)
	assert.Equal(t, "a coffee maker", in.Value)
}

func TestLLMInterpreterWithoutClientUsesPatterns(t *testing.T) {
	i := NewLLMInterpreter(nil, "", logging.Default(), nil)

	in := i.Interpret("um, ok", SlotTarget)
	assert.Equal(t, IntentNoise, in.Intent)
}

func TestParseInterpretationJSON(t *testing.T) {
	tests := []struct {
		name   string
		output string
		ok     bool
		intent Intent
	}{
		{"plain object", `{"intent": "refusal"}`, true, IntentRefusal},
		{"wrapped in prose", `Here you go: {"intent": "noise"} hope that helps`, true, IntentNoise},
		{"invalid intent", `{"intent": "maybe"}`, false, ""},
		{"no json", `refusal`, false, ""},
		{"broken json", `{"intent": `, false, ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			in, ok := parseInterpretationJSON(tc.output)
			assert.Equal(t, tc.ok, ok)
			if ok {
				assert.Equal(t, tc.intent, in.Intent)
			}
		})
	}
}

func TestParseInterpretationJSONDropsSignalsOffAnswers(t *testing.T) {
	in, ok := parseInterpretationJSON(`{"intent": "unknown", "signals": [{"slot": "budget", "value": "100"}]}`)
	require.True(t, ok)
	assert.Empty(t, in.Signals)
}

func TestParseInterpretationJSONDropsUnknownSlots(t *testing.T) {
	in, ok := parseInterpretationJSON(`{"intent": "answer", "value": "x", "signals": [{"slot": "mood", "value": "happy"}, {"slot": "constraint", "value": "nothing too heavy"}]}`)
	require.True(t, ok)
	require.Len(t, in.Signals, 1)
	assert.Equal(t, SlotConstraint, in.Signals[0].Slot)
}
