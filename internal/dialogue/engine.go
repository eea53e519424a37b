package dialogue

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/shopguide/shopguide-ai-platform/internal/catalog"
	"github.com/shopguide/shopguide-ai-platform/internal/observability/metrics"
	"github.com/shopguide/shopguide-ai-platform/pkg/logging"
)

// Engine is the dialogue decision engine: it owns the per-turn pipeline
// from raw shopper input to a rendered response.
//
// One turn at a time per session: every entry point takes the session's
// lock, so concurrent requests against the same session serialize
// rather than interleave state mutations.
type Engine struct {
	sessions   *SessionStore
	transcript *TranscriptStore
	interp     Interpreter
	textgen    *TextGenerator
	searcher   catalog.Searcher
	metrics    *metrics.DialogueMetrics
	logger     *logging.Logger

	locks sync.Map // sessionID -> *sync.Mutex
}

var _ Service = (*Engine)(nil)

// EngineOption configures optional collaborators.
type EngineOption func(*Engine)

// WithTranscriptStore enables durable turn logging.
func WithTranscriptStore(ts *TranscriptStore) EngineOption {
	return func(e *Engine) {
		e.transcript = ts
	}
}

// WithMetrics attaches dialogue metrics.
func WithMetrics(m *metrics.DialogueMetrics) EngineOption {
	return func(e *Engine) {
		e.metrics = m
	}
}

// NewEngine wires the dialogue engine.
func NewEngine(sessions *SessionStore, interp Interpreter, textgen *TextGenerator, searcher catalog.Searcher, logger *logging.Logger, opts ...EngineOption) *Engine {
	if sessions == nil {
		panic("dialogue: session store cannot be nil")
	}
	if interp == nil {
		interp = NewPatternInterpreter()
	}
	if textgen == nil {
		textgen = NewTextGenerator(nil, "", logger)
	}
	if logger == nil {
		logger = logging.Default()
	}
	e := &Engine{
		sessions: sessions,
		interp:   interp,
		textgen:  textgen,
		searcher: searcher,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// StartSession creates session state and asks the opening question.
func (e *Engine) StartSession(ctx context.Context, req StartRequest) (*Response, error) {
	sessionID := strings.TrimSpace(req.SessionID)
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	unlock := e.lockSession(sessionID)
	defer unlock()

	state := NewSessionState()
	if req.Intent != "" {
		state.Context.Intent = req.Intent
	} else {
		state.Context.Intent = IntentTagHome
	}

	slot, ok := NextQuestionSlot(state.Board)
	if !ok {
		// A fresh board always has empty slots; reaching here is a bug.
		return nil, fmt.Errorf("dialogue: fresh board offered no slot to ask")
	}
	state.Board.MarkAsked(slot)
	question := e.textgen.Question(ctx, slot, state.Board)

	if err := e.sessions.Save(ctx, sessionID, state); err != nil {
		return nil, err
	}
	e.logTurn(ctx, sessionID, ChatRoleAssistant, question)

	return &Response{
		SessionID: sessionID,
		Outcome:   OutcomeRequery,
		Message:   question,
		Phase:     PhaseDiscovery,
		Reason:    string(ReasonNeedMoreCondition),
		Timestamp: time.Now().UTC(),
	}, nil
}

// ProcessTurn runs the full pipeline for one shopper message.
func (e *Engine) ProcessTurn(ctx context.Context, req TurnRequest) (*Response, error) {
	sessionID := strings.TrimSpace(req.SessionID)
	if sessionID == "" {
		return nil, fmt.Errorf("dialogue: session id is required")
	}

	unlock := e.lockSession(sessionID)
	defer unlock()

	state, err := e.sessions.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	e.logTurn(ctx, sessionID, ChatRoleUser, req.Message)

	in := e.interp.Interpret(req.Message, state.Board.Question.LastAsked)

	if in.Intent == IntentContextShift {
		resp, err := e.restartDiscovery(ctx, sessionID, state, "topic_shift")
		return e.observe(resp), err
	}

	for _, cmd := range BindAnswer(in, state.Board.Question) {
		if err := state.Board.Apply(cmd); err != nil {
			e.logger.Error("slot command failed", "session_id", sessionID, "slot", cmd.Slot, "error", err)
		}
		if cmd.Kind == CommandAnswered {
			state.Board.Confirm(cmd.Slot)
		}
	}

	if !ReadyToLeaveDiscovery(state.Board) {
		resp, err := e.continueDiscovery(ctx, sessionID, state)
		return e.observe(resp), err
	}

	crit := criteriaFromState(state)

	// Readiness reads the pre-merge context: the first-turn check needs
	// the turn counter before this turn is absorbed.
	readiness := EvaluateReadiness(state.Context, crit)

	state.Context.Merge(crit)

	// Merge resets wipe the whole session, slots included.
	if state.Context.Turns == 0 {
		resp, err := e.restartDiscovery(ctx, sessionID, state, "context_reset")
		return e.observe(resp), err
	}

	if !readiness.Ready {
		state.Context.Phase = PhaseDiscovery
		result := DiscoveryResult(
			NewRequery(string(readiness.Reason), FollowUpText(TemplateNeedMoreCondition)),
			readiness.Reason,
			"readiness."+string(readiness.Reason),
		)
		resp, err := e.respondRequery(ctx, sessionID, state, result)
		return e.observe(resp), err
	}

	// Record the handoff out of discovery in the transcript.
	if e.transcript != nil && state.Context.Phase != PhaseSearching {
		e.logTurn(ctx, sessionID, ChatRoleAssistant, e.textgen.ReadySummary(ctx, crit))
	}

	state.Context.Phase = PhaseSearching
	resp, err := e.searchAndDecide(ctx, sessionID, state, crit)
	return e.observe(resp), err
}

// ResetSession wipes a session back to a fresh state on explicit command.
func (e *Engine) ResetSession(ctx context.Context, sessionID string) error {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return fmt.Errorf("dialogue: session id is required")
	}

	unlock := e.lockSession(sessionID)
	defer unlock()

	state, err := e.sessions.Load(ctx, sessionID)
	if err != nil {
		return err
	}
	state.Board.Reset()
	state.Context.Reset()
	return e.sessions.Save(ctx, sessionID, state)
}

// EndSession removes the live session state and closes its transcript.
func (e *Engine) EndSession(ctx context.Context, sessionID string) error {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return fmt.Errorf("dialogue: session id is required")
	}

	unlock := e.lockSession(sessionID)
	defer unlock()

	if _, err := e.sessions.Load(ctx, sessionID); err != nil {
		return err
	}
	if err := e.sessions.Delete(ctx, sessionID); err != nil {
		return err
	}
	if err := e.transcript.EndSession(ctx, sessionID); err != nil {
		// The live state is already gone; a stale transcript row is not
		// worth failing the request over.
		e.logger.Error("failed to close transcript", "session_id", sessionID, "error", err)
	}
	return nil
}

// Transcripts exposes the durable transcript store, nil when none is
// configured.
func (e *Engine) Transcripts() *TranscriptStore {
	return e.transcript
}

// ---------- turn stages ----------

func (e *Engine) continueDiscovery(ctx context.Context, sessionID string, state *SessionState) (*Response, error) {
	if slot, ok := NextQuestionSlot(state.Board); ok {
		state.Board.MarkAsked(slot)
		question := e.textgen.Question(ctx, slot, state.Board)
		result := DiscoveryResult(
			NewRequery("slot "+string(slot)+" open", question),
			ReasonNeedMoreCondition,
			"discovery.ask."+string(slot),
		)
		// The generated question is not a canonical template, so carry
		// it on the response rather than through the decision.
		return e.finishTurn(ctx, sessionID, state, &Response{
			SessionID:   sessionID,
			Outcome:     OutcomeRequery,
			Message:     question,
			Phase:       result.NextPhase,
			AllowSearch: result.AllowSearch,
			Reason:      string(result.DiscoveryReason),
			Timestamp:   time.Now().UTC(),
		})
	}

	if slot, ok := NextGuideSlot(state.Board); ok {
		state.Board.MarkGuided(slot)
		guide := e.textgen.Guide(ctx, slot, state.Board)
		return e.finishTurn(ctx, sessionID, state, &Response{
			SessionID: sessionID,
			Outcome:   OutcomeRequery,
			Message:   guide,
			Phase:     PhaseDiscovery,
			Reason:    string(ReasonNeedMoreCondition),
			Timestamp: time.Now().UTC(),
		})
	}

	// Every open slot is user-unknown and guide protection is
	// exhausted: hand the shopper back to free-form consultation.
	return e.finishTurn(ctx, sessionID, state, &Response{
		SessionID: sessionID,
		Outcome:   OutcomeConsult,
		Message:   fallbackConsult,
		Phase:     PhaseDiscovery,
		Reason:    "guides_exhausted",
		Timestamp: time.Now().UTC(),
	})
}

func (e *Engine) searchAndDecide(ctx context.Context, sessionID string, state *SessionState, crit Criteria) (*Response, error) {
	keyword := state.Context.Keyword
	if keyword == "" {
		keyword = crit.Keyword
	}
	maxPrice := state.Context.MaxPrice
	if maxPrice == 0 {
		maxPrice = crit.MaxPrice
	}

	merged := NewCriteria(keyword, state.Context.Options, maxPrice, state.Context.Brand, state.Context.Intent)

	var products []catalog.Product
	if e.searcher != nil {
		start := time.Now()
		found, err := e.searcher.SearchProducts(ctx, keyword, maxPrice, 0)
		e.metrics.ObserveSearchLatency(time.Since(start).Seconds())
		if err != nil {
			// The turn still completes with a well-formed outcome.
			e.logger.Error("catalog search failed", "session_id", sessionID, "error", err)
		} else {
			products = found
		}
	}

	result := Evaluate(products, merged)
	decision := Decide(result)
	e.metrics.ObserveDecision(string(decision.Type))

	dr := SearchingResult(decision, "decision."+strings.ReplaceAll(decision.Reason, " ", "_"))

	switch decision.Type {
	case DecisionRecommend:
		items := make([]RecommendedItem, 0, len(result.Products))
		for _, ep := range result.Products {
			items = append(items, RecommendedItem{
				ID:         ep.Product.ID,
				Title:      ep.Product.Title,
				Brand:      ep.Product.Brand,
				PriceCents: ep.Product.PriceCents,
				ProductURL: ep.Product.ProductURL,
				Score:      ep.Score,
			})
		}
		explanation := e.textgen.Explanation(ctx, result.Products, merged)
		return e.finishTurn(ctx, sessionID, state, &Response{
			SessionID:   sessionID,
			Outcome:     OutcomeRecommend,
			Message:     explanation,
			Items:       items,
			Phase:       dr.NextPhase,
			AllowSearch: dr.AllowSearch,
			Reason:      dr.ReasoningKey,
			Timestamp:   time.Now().UTC(),
		})
	case DecisionRequery:
		state.Context.Retries++
		return e.respondRequery(ctx, sessionID, state, dr)
	case DecisionInvalid:
		return e.finishTurn(ctx, sessionID, state, &Response{
			SessionID:   sessionID,
			Outcome:     OutcomeInvalid,
			Message:     fallbackInvalid,
			Phase:       dr.NextPhase,
			AllowSearch: dr.AllowSearch,
			Reason:      dr.ReasoningKey,
			Timestamp:   time.Now().UTC(),
		})
	default:
		return nil, fmt.Errorf("dialogue: unrecognized decision type %q", decision.Type)
	}
}

func (e *Engine) respondRequery(ctx context.Context, sessionID string, state *SessionState, dr DecisionResult) (*Response, error) {
	return e.finishTurn(ctx, sessionID, state, &Response{
		SessionID:   sessionID,
		Outcome:     OutcomeRequery,
		Message:     dr.Decision.FollowUp,
		Phase:       dr.NextPhase,
		AllowSearch: dr.AllowSearch,
		Reason:      dr.ReasoningKey,
		Timestamp:   time.Now().UTC(),
	})
}

func (e *Engine) restartDiscovery(ctx context.Context, sessionID string, state *SessionState, reason string) (*Response, error) {
	state.Board.Reset()
	state.Context.Reset()

	slot, _ := NextQuestionSlot(state.Board)
	state.Board.MarkAsked(slot)
	question := e.textgen.Question(ctx, slot, state.Board)

	return e.finishTurn(ctx, sessionID, state, &Response{
		SessionID: sessionID,
		Outcome:   OutcomeRequery,
		Message:   question,
		Phase:     PhaseDiscovery,
		Reason:    reason,
		Timestamp: time.Now().UTC(),
	})
}

func (e *Engine) finishTurn(ctx context.Context, sessionID string, state *SessionState, resp *Response) (*Response, error) {
	if err := e.sessions.Save(ctx, sessionID, state); err != nil {
		return nil, err
	}
	content := resp.Message
	if len(resp.Items) > 0 {
		content = resp.Message + " Recommended: " + describeProducts(resp.Items)
	}
	e.logTurn(ctx, sessionID, ChatRoleAssistant, content)
	return resp, nil
}

func (e *Engine) observe(resp *Response) *Response {
	if resp != nil {
		e.metrics.ObserveTurn(string(resp.Outcome))
	}
	return resp
}

func (e *Engine) logTurn(ctx context.Context, sessionID, role, content string) {
	if e.transcript == nil || content == "" {
		return
	}
	if err := e.transcript.AppendTurn(ctx, sessionID, role, content); err != nil {
		e.logger.Error("failed to persist turn", "session_id", sessionID, "error", err)
	}
}

func (e *Engine) lockSession(sessionID string) func() {
	value, _ := e.locks.LoadOrStore(sessionID, &sync.Mutex{})
	mu := value.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// ---------- criteria derivation ----------

var brandRE = regexp.MustCompile(`(?i)\b(?:brand|by|from)\s+([A-Za-z][\w-]*)`)

// optionStopwords are words too generic to act as option keywords.
var optionStopwords = map[string]bool{
	"the": true, "and": true, "for": true, "with": true, "that": true,
	"this": true, "something": true, "anything": true, "nothing": true,
	"really": true, "very": true, "would": true, "want": true, "like": true,
	"need": true, "just": true, "some": true, "one": true, "ones": true,
	"prefer": true, "love": true, "into": true, "avoid": true, "without": true,
	"too": true, "not": true, "but": true, "them": true, "they": true,
}

// criteriaFromState derives this turn's search criteria from the slot
// board. The target value is the keyword; constraint and preference
// values are tokenized into option keywords; budget is coerced to an
// amount; a brand is only picked up when named explicitly.
func criteriaFromState(state *SessionState) Criteria {
	board := state.Board

	var options []string
	for _, slot := range []Slot{SlotConstraint, SlotPreference} {
		if !board.Filled(slot) {
			continue
		}
		options = append(options, optionTokens(board.Value(slot))...)
	}

	maxPrice := 0
	if board.Filled(SlotBudget) {
		if amount, ok := ParseBudget(board.Value(SlotBudget)); ok {
			maxPrice = amount
		}
	}

	brand := ""
	if board.Filled(SlotPreference) {
		if m := brandRE.FindStringSubmatch(board.Value(SlotPreference)); len(m) == 2 {
			brand = m[1]
		}
	}

	intent := state.Context.Intent
	if intent == "" {
		intent = IntentTagShopping
	}

	return NewCriteria(board.Value(SlotTarget), options, maxPrice, brand, intent)
}

// optionTokens splits a slot value into matchable option keywords. Short
// values pass through whole; longer answers are broken into significant
// words.
func optionTokens(value string) []string {
	normalized := strings.ToLower(strings.TrimSpace(value))
	if normalized == "" {
		return nil
	}
	words := strings.Fields(punctuationRE.ReplaceAllString(normalized, " "))
	if len(words) <= 2 {
		return []string{strings.Join(words, " ")}
	}
	var tokens []string
	for _, w := range words {
		if len(w) < 3 || optionStopwords[w] || fillerWords[w] {
			continue
		}
		tokens = append(tokens, w)
	}
	return tokens
}
