package dialogue

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBindAnswerNoiseProducesNothing(t *testing.T) {
	q := QuestionContext{LastAsked: SlotTarget}
	assert.Nil(t, BindAnswer(Interpretation{Intent: IntentNoise}, q))
}

func TestBindAnswerContextShiftProducesNothing(t *testing.T) {
	q := QuestionContext{LastAsked: SlotTarget}
	assert.Nil(t, BindAnswer(Interpretation{Intent: IntentContextShift, Value: "start over"}, q))
}

func TestBindAnswerRefusalMarksLastAsked(t *testing.T) {
	q := QuestionContext{LastAsked: SlotBudget}
	cmds := BindAnswer(Interpretation{Intent: IntentRefusal}, q)

	require.Len(t, cmds, 1)
	assert.Equal(t, SlotBudget, cmds[0].Slot)
	assert.Equal(t, CommandUserUnknown, cmds[0].Kind)
}

func TestBindAnswerUnknownWithoutQuestionIsDropped(t *testing.T) {
	assert.Nil(t, BindAnswer(Interpretation{Intent: IntentUnknown}, QuestionContext{}))
}

func TestBindAnswerBindsToLastAsked(t *testing.T) {
	q := QuestionContext{LastAsked: SlotTarget}
	cmds := BindAnswer(Interpretation{Intent: IntentAnswer, Value: "a wireless headset"}, q)

	require.Len(t, cmds, 1)
	assert.Equal(t, SlotTarget, cmds[0].Slot)
	assert.Equal(t, CommandAnswered, cmds[0].Kind)
	assert.Equal(t, "a wireless headset", cmds[0].Value)
}

func TestBindAnswerFansOutSecondarySignals(t *testing.T) {
	q := QuestionContext{LastAsked: SlotTarget}
	in := Interpretation{
		Intent: IntentAnswer,
		Value:  "a headset under $200",
		Signals: []Signal{
			{Slot: SlotBudget, Value: "200"},
		},
	}

	cmds := BindAnswer(in, q)

	require.Len(t, cmds, 2)
	assert.Equal(t, SlotTarget, cmds[0].Slot)
	assert.Equal(t, SlotBudget, cmds[1].Slot)
	assert.Equal(t, "200", cmds[1].Value)
}

func TestBindAnswerNeverDoubleCountsAskedSlot(t *testing.T) {
	q := QuestionContext{LastAsked: SlotBudget}
	in := Interpretation{
		Intent: IntentAnswer,
		Value:  "about 200 dollars",
		Signals: []Signal{
			{Slot: SlotBudget, Value: "200"},
			{Slot: SlotPreference, Value: "something compact"},
		},
	}

	cmds := BindAnswer(in, q)

	require.Len(t, cmds, 2)
	assert.Equal(t, SlotBudget, cmds[0].Slot)
	assert.Equal(t, "about 200 dollars", cmds[0].Value)
	assert.Equal(t, SlotPreference, cmds[1].Slot)
}

func TestBindAnswerSignalsOnlyWhenNoQuestionPending(t *testing.T) {
	in := Interpretation{
		Intent:  IntentAnswer,
		Value:   "under 100 bucks",
		Signals: []Signal{{Slot: SlotBudget, Value: "100"}},
	}

	cmds := BindAnswer(in, QuestionContext{})

	require.Len(t, cmds, 1)
	assert.Equal(t, SlotBudget, cmds[0].Slot)
}
