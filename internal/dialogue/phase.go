package dialogue

// Phase is the linear conversation phase chain. Consult and invalid are
// terminal per-turn outcomes, not phases.
type Phase string

const (
	PhaseDiscovery Phase = "discovery"
	PhaseReady     Phase = "ready"
	PhaseSearching Phase = "searching"
)

// DecisionResult binds a decision to the next conversation phase.
// allowSearch is true only in searching; a discovery reason is attached
// only in discovery. The constructors below are the only way these
// invariants are produced.
type DecisionResult struct {
	Decision        Decision
	NextPhase       Phase
	AllowSearch     bool
	DiscoveryReason ReadinessReason
	ReasoningKey    string
}

// DiscoveryResult keeps the session collecting context.
func DiscoveryResult(decision Decision, reason ReadinessReason, reasoningKey string) DecisionResult {
	return DecisionResult{
		Decision:        decision,
		NextPhase:       PhaseDiscovery,
		DiscoveryReason: reason,
		ReasoningKey:    reasoningKey,
	}
}

// ReadyResult marks the session as having sufficient context with the
// search not yet run.
func ReadyResult(decision Decision, reasoningKey string) DecisionResult {
	return DecisionResult{
		Decision:     decision,
		NextPhase:    PhaseReady,
		ReasoningKey: reasoningKey,
	}
}

// SearchingResult authorizes the search.
func SearchingResult(decision Decision, reasoningKey string) DecisionResult {
	return DecisionResult{
		Decision:     decision,
		NextPhase:    PhaseSearching,
		AllowSearch:  true,
		ReasoningKey: reasoningKey,
	}
}
