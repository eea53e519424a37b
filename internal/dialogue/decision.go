package dialogue

import "fmt"

// DecisionType is the final classification of one evaluated turn.
type DecisionType string

const (
	DecisionInvalid   DecisionType = "invalid"
	DecisionRequery   DecisionType = "requery"
	DecisionRecommend DecisionType = "recommend"
)

// Confidence grades a decision. It is a pure function of the decision
// type and can never be set independently.
type Confidence string

const (
	ConfidenceInsufficientData Confidence = "insufficient_data"
	ConfidenceWeakSignal       Confidence = "weak_signal"
	ConfidenceStrongSignal     Confidence = "strong_signal"
)

func confidenceFor(t DecisionType) Confidence {
	switch t {
	case DecisionInvalid:
		return ConfidenceInsufficientData
	case DecisionRequery:
		return ConfidenceWeakSignal
	case DecisionRecommend:
		return ConfidenceStrongSignal
	default:
		panic(fmt.Sprintf("dialogue: unrecognized decision type %q", t))
	}
}

// Decision is the rule table's verdict for one turn.
type Decision struct {
	Type       DecisionType
	Confidence Confidence
	Reason     string // internal, never shown to the shopper
	FollowUp   string // canonical template text, requery only
}

// NewInvalid builds an invalid decision.
func NewInvalid(reason string) Decision {
	return Decision{Type: DecisionInvalid, Confidence: confidenceFor(DecisionInvalid), Reason: reason}
}

// NewRecommend builds a recommend decision.
func NewRecommend(reason string) Decision {
	return Decision{Type: DecisionRecommend, Confidence: confidenceFor(DecisionRecommend), Reason: reason}
}

// NewRequery builds a requery decision. The follow-up text is
// normalized: anything outside the canonical template set collapses to
// the need-more-condition template.
func NewRequery(reason, followUp string) Decision {
	return Decision{
		Type:       DecisionRequery,
		Confidence: confidenceFor(DecisionRequery),
		Reason:     reason,
		FollowUp:   CanonicalFollowUp(followUp),
	}
}

// ambiguousMargin is the score gap at or under which a lead is not
// trusted on its own.
const ambiguousMargin = 1

// Decide runs the ordered decision table over an evaluation result.
// First match wins:
//
//  1. no candidates at all is invalid
//  2. a single candidate is recommended outright
//  3. a keyword match alone is enough to recommend
//  4. no keyword and no brand signal asks for more conditions
//  5. a brand preference breaks an exactly tied field
//  6. an ambiguous margin asks for more conditions
//  7. a confident margin recommends
func Decide(result EvaluationResult) Decision {
	switch {
	case result.CandidateCount == 0:
		return NewInvalid("no candidates")
	case result.CandidateCount == 1:
		return NewRecommend("single candidate")
	case result.HasKeywordMatch:
		return NewRecommend("keyword match")
	case !result.HasKeywordMatch && !result.HasBrandMatch:
		return NewRequery("no match signal", FollowUpText(TemplateNeedMoreCondition))
	case result.HasBrandMatch && result.TopScore == result.SecondScore:
		return NewRecommend("brand preference tie-break")
	case result.TopScore-result.SecondScore <= ambiguousMargin:
		return NewRequery("ambiguous margin", FollowUpText(TemplateNeedMoreCondition))
	default:
		return NewRecommend("confident margin")
	}
}
