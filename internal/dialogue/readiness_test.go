package dialogue

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEvaluateReadinessHomeIntentNeedsKeyword(t *testing.T) {
	c := NewConversationContext()
	c.Intent = IntentTagHome

	r := EvaluateReadiness(c, NewCriteria("", []string{"wireless"}, 0, "", IntentTagHome))
	assert.False(t, r.Ready)
	assert.Equal(t, ReasonNoKeyword, r.Reason)
}

func TestEvaluateReadinessNoKeywordAnywhere(t *testing.T) {
	c := NewConversationContext()
	c.Intent = IntentTagShopping

	r := EvaluateReadiness(c, NewCriteria("", nil, 100, "Acme", IntentTagShopping))
	assert.False(t, r.Ready)
	assert.Equal(t, ReasonNoKeyword, r.Reason)
}

func TestEvaluateReadinessAccumulatedKeywordSuffices(t *testing.T) {
	c := NewConversationContext()
	c.Intent = IntentTagShopping
	c.Keyword = "headset"
	c.Turns = 2

	r := EvaluateReadiness(c, NewCriteria("", nil, 0, "", IntentTagShopping))
	assert.True(t, r.Ready)
	assert.Equal(t, ReasonNone, r.Reason)
}

func TestEvaluateReadinessZeroConditionFirstTurn(t *testing.T) {
	c := NewConversationContext()
	c.Intent = IntentTagShopping

	r := EvaluateReadiness(c, NewCriteria("headset", nil, 0, "", IntentTagShopping))
	assert.False(t, r.Ready)
	assert.Equal(t, ReasonNeedMoreCondition, r.Reason)
}

func TestEvaluateReadinessKeywordWithCondition(t *testing.T) {
	c := NewConversationContext()
	c.Intent = IntentTagShopping

	r := EvaluateReadiness(c, NewCriteria("headset", []string{"wireless"}, 0, "", IntentTagShopping))
	assert.True(t, r.Ready)
}

func TestEvaluateReadinessLaterTurnWithoutCondition(t *testing.T) {
	c := NewConversationContext()
	c.Intent = IntentTagShopping
	c.Keyword = "headset"
	c.Turns = 1

	r := EvaluateReadiness(c, NewCriteria("headset", nil, 0, "", IntentTagShopping))
	assert.True(t, r.Ready, "the zero-condition gate only applies to the very first turn")
}
