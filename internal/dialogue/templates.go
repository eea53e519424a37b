package dialogue

// TemplateKey names one canonical follow-up template. The set is closed:
// requery decisions may only carry one of these five texts.
type TemplateKey string

const (
	TemplateNeedMoreCondition TemplateKey = "need_more_condition"
	TemplateAskTarget         TemplateKey = "ask_target"
	TemplateAskPurpose        TemplateKey = "ask_purpose"
	TemplateAskBudget         TemplateKey = "ask_budget"
	TemplateNarrowDown        TemplateKey = "narrow_down"
)

// followUpTemplates is the single lookup table for canonical follow-up
// text, kept apart from the decision rules so wording (or localization)
// can change without touching the rule table.
var followUpTemplates = map[TemplateKey]string{
	TemplateNeedMoreCondition: "Could you tell me a bit more about what matters most to you: a feature, a brand, or a price range?",
	TemplateAskTarget:         "What kind of product are you shopping for?",
	TemplateAskPurpose:        "What will you mainly use it for?",
	TemplateAskBudget:         "Do you have a budget in mind?",
	TemplateNarrowDown:        "Several options look similar. Is there anything you definitely want to avoid?",
}

// FollowUpText returns the canonical text for a template key.
func FollowUpText(key TemplateKey) string {
	if text, ok := followUpTemplates[key]; ok {
		return text
	}
	return followUpTemplates[TemplateNeedMoreCondition]
}

// CanonicalFollowUp normalizes arbitrary follow-up text: only the five
// canonical templates pass through verbatim, everything else collapses
// to the need-more-condition template.
func CanonicalFollowUp(text string) string {
	for _, canonical := range followUpTemplates {
		if text == canonical {
			return text
		}
	}
	return followUpTemplates[TemplateNeedMoreCondition]
}

// fallbackQuestions is the fixed per-slot question used whenever the
// text generator is unavailable.
var fallbackQuestions = map[Slot]string{
	SlotTarget:     "What kind of product are you shopping for?",
	SlotPurpose:    "What will you mainly use it for?",
	SlotConstraint: "Is there anything you want to avoid: materials, features, anything?",
	SlotPreference: "Any styles or brands you particularly like?",
	SlotBudget:     "Do you have a budget in mind?",
	SlotContext:    "Who is this for, and for what occasion?",
}

// fallbackGuides is the fixed per-slot guide shown when the shopper says
// they don't know.
var fallbackGuides = map[Slot]string{
	SlotTarget:     "No problem. Many shoppers start from a category, like headphones, a backpack, or a coffee maker.",
	SlotPurpose:    "That's fine. Think about the moment you'd reach for it: commuting, working out, a gift?",
	SlotConstraint: "Nothing comes to mind? Some people rule out heavy items, loud colors, or anything over a certain price.",
	SlotPreference: "If you're unsure, a brand you've been happy with before is a good starting point.",
	SlotBudget:     "A rough range helps: under $50, around $100, whatever feels right.",
	SlotContext:    "For example: a gift for a friend, something for your desk at work, gear for a trip.",
}

const (
	fallbackReadySummary = "Got it, I have enough to search with. Let me look for options that fit."
	fallbackExplanation  = "These picks line up best with what you told me."
	fallbackInvalid      = "I couldn't find anything matching that. Want to try a different keyword?"
	fallbackConsult      = "I'm having trouble narrowing this down. Could you describe what you're looking for in your own words?"
)

// FallbackQuestion returns the fixed question for a slot.
func FallbackQuestion(s Slot) string {
	if q, ok := fallbackQuestions[s]; ok {
		return q
	}
	return followUpTemplates[TemplateNeedMoreCondition]
}

// FallbackGuide returns the fixed guide for a slot.
func FallbackGuide(s Slot) string {
	if g, ok := fallbackGuides[s]; ok {
		return g
	}
	return followUpTemplates[TemplateNeedMoreCondition]
}
