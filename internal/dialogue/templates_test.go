package dialogue

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFollowUpTextKnownKeys(t *testing.T) {
	for _, key := range []TemplateKey{
		TemplateNeedMoreCondition,
		TemplateAskTarget,
		TemplateAskPurpose,
		TemplateAskBudget,
		TemplateNarrowDown,
	} {
		assert.NotEmpty(t, FollowUpText(key), "key %s", key)
	}
}

func TestFollowUpTextUnknownKeyFallsBack(t *testing.T) {
	assert.Equal(t, FollowUpText(TemplateNeedMoreCondition), FollowUpText(TemplateKey("bogus")))
}

func TestCanonicalFollowUp(t *testing.T) {
	for key, text := range followUpTemplates {
		assert.Equal(t, text, CanonicalFollowUp(text), "key %s", key)
	}

	assert.Equal(t, FollowUpText(TemplateNeedMoreCondition), CanonicalFollowUp("free-form model output"))
	assert.Equal(t, FollowUpText(TemplateNeedMoreCondition), CanonicalFollowUp(""))
}

func TestFallbackQuestionAndGuideCoverEverySlot(t *testing.T) {
	for _, s := range AllSlots() {
		assert.NotEmpty(t, FallbackQuestion(s), "question for %s", s)
		assert.NotEmpty(t, FallbackGuide(s), "guide for %s", s)
	}
}
