package dialogue

// ReadinessReason explains why a search cannot run yet.
type ReadinessReason string

const (
	ReasonNone              ReadinessReason = ""
	ReasonNoKeyword         ReadinessReason = "no_keyword"
	ReasonNeedMoreCondition ReadinessReason = "need_more_condition"
)

// Readiness is the verdict of the search-readiness gate.
type Readiness struct {
	Ready  bool
	Reason ReadinessReason
}

// EvaluateReadiness decides whether enough signal exists to run a
// product search at all. Checks run in order, first match wins:
//
//  1. an undirected home intent with no confirmed keyword cannot search
//  2. no keyword anywhere (this turn or accumulated) cannot search
//  3. a zero-condition very first turn needs more context first
//  4. otherwise the search may run
func EvaluateReadiness(c *ConversationContext, crit Criteria) Readiness {
	if c.Intent == IntentTagHome && c.Keyword == "" {
		return Readiness{Reason: ReasonNoKeyword}
	}
	if crit.Keyword == "" && c.Keyword == "" {
		return Readiness{Reason: ReasonNoKeyword}
	}
	if !crit.HasAnyCondition() && !contextHasCondition(c) && c.Turns == 0 {
		return Readiness{Reason: ReasonNeedMoreCondition}
	}
	return Readiness{Ready: true}
}

func contextHasCondition(c *ConversationContext) bool {
	return len(c.Options) > 0 || c.Brand != "" || c.MaxPrice > 0
}
