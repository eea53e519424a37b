package dialogue

import (
	"strconv"
	"strings"
)

// maxGuidesBetweenQuestions caps how many guides may be shown since the
// last direct question.
const maxGuidesBetweenQuestions = 2

// NextQuestionSlot scans slots in priority order and returns the first
// one that still qualifies for a direct question.
//
// A slot qualifies when it is empty, or when it was asked but never got
// a usable reply. User-unknown slots are deliberately NOT re-selectable
// here: once the shopper has said they don't know, the only way back in
// is the guide path, subject to guide protection.
func NextQuestionSlot(b *SlotBoard) (Slot, bool) {
	for _, s := range slotPriority {
		switch b.State(s).Status {
		case StatusEmpty, StatusAsked:
			return s, true
		case StatusUserUnknown, StatusAnswered, StatusConfirmed:
			// settled for questioning purposes
		}
	}
	return SlotNone, false
}

// NextGuideSlot returns the first user-unknown slot that guide
// protection still allows a guide for.
func NextGuideSlot(b *SlotBoard) (Slot, bool) {
	for _, s := range slotPriority {
		if b.State(s).Status != StatusUserUnknown {
			continue
		}
		if GuideAllowed(b.Question, s) {
			return s, true
		}
	}
	return SlotNone, false
}

// GuideAllowed enforces guide protection: never the same slot twice in a
// row, and never more than maxGuidesBetweenQuestions guides since the
// last direct question.
func GuideAllowed(q QuestionContext, s Slot) bool {
	if q.LastGuided == s {
		return false
	}
	return q.GuidesSinceAsk < maxGuidesBetweenQuestions
}

// ConfirmableValue is the per-slot type guard for promoting an answered
// slot to confirmed. Budget must be integer-coercible; every other slot
// accepts any non-blank value.
func ConfirmableValue(s Slot, value string) bool {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return false
	}
	if s == SlotBudget {
		_, ok := ParseBudget(trimmed)
		return ok
	}
	return true
}

// ParseBudget coerces a budget value ("$1,200", "300 dollars") to an
// integer amount. Returns false when no usable number is present.
func ParseBudget(value string) (int, bool) {
	cleaned := strings.TrimSpace(value)
	cleaned = strings.TrimPrefix(cleaned, "$")
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	for _, suffix := range []string{"dollars", "bucks", "usd"} {
		cleaned = strings.TrimSuffix(cleaned, suffix)
	}
	cleaned = strings.TrimSpace(cleaned)

	n, err := strconv.Atoi(cleaned)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// ReadyToLeaveDiscovery is the ready-condition policy: purpose must be
// filled, plus at least one of target or context.
func ReadyToLeaveDiscovery(b *SlotBoard) bool {
	if !b.Filled(SlotPurpose) {
		return false
	}
	return b.Filled(SlotTarget) || b.Filled(SlotContext)
}
