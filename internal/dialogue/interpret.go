package dialogue

import (
	"regexp"
	"strings"
)

// Intent is the primary classification of one user utterance.
type Intent string

const (
	IntentAnswer       Intent = "answer"
	IntentUnknown      Intent = "unknown"
	IntentRefusal      Intent = "refusal"
	IntentContextShift Intent = "context_shift"
	IntentNoise        Intent = "noise"
)

// Signal is a secondary piece of information extracted from the same
// utterance, aimed at a slot other than the one being asked about.
type Signal struct {
	Slot  Slot   `json:"slot"`
	Value string `json:"value"`
}

// Interpretation is the classified form of one utterance.
type Interpretation struct {
	Intent  Intent   `json:"intent"`
	Value   string   `json:"value"`
	Signals []Signal `json:"signals,omitempty"`
}

// Interpreter classifies free-text input. Implementations must never
// fail a turn: whatever happens upstream, a well-formed interpretation
// comes back.
type Interpreter interface {
	Interpret(text string, lastAsked Slot) Interpretation
}

// ---------- package-level compiled regexes ----------

var (
	budgetRE      = regexp.MustCompile(`(?i)(?:\$|under |below |at most |max(?:imum)? |up to |budget (?:is |of )?)\s*([0-9][0-9,]*)(?:\s*(?:dollars|bucks|usd))?`)
	bareAmountRE  = regexp.MustCompile(`(?i)\b([0-9][0-9,]*)\s*(?:dollars|bucks|usd)\b`)
	constraintRE  = regexp.MustCompile(`(?i)\b(?:avoid \w+|without \w+|allergic to \w+|nothing too \w+|not too \w+|cheap(?:er|est)?|affordable|inexpensive|low[- ]priced)\b`)
	preferenceRE  = regexp.MustCompile(`(?i)\b(?:prefer|i like|i love|i'm into|fond of|fan of|my style|my taste|favorite|favourite)\b`)
	punctuationRE = regexp.MustCompile(`[\p{P}\p{S}]+`)
)

// fillerWords are tokens that carry no decision signal on their own.
var fillerWords = map[string]bool{
	"um": true, "uh": true, "uhh": true, "umm": true, "hmm": true,
	"hm": true, "mm": true, "mmm": true, "huh": true, "eh": true,
	"ok": true, "okay": true, "k": true, "kk": true,
	"lol": true, "haha": true, "hehe": true, "hah": true,
	"hi": true, "hey": true, "hello": true, "yo": true,
	"well": true, "so": true, "like": true, "right": true,
	"thanks": true, "thank": true, "you": true, "cool": true, "nice": true,
}

var contextShiftPhrases = []string{
	"start over",
	"start again",
	"from scratch",
	"forget that",
	"forget all that",
	"never mind that",
	"nevermind that",
	"different thing",
	"something else entirely",
	"something completely different",
	"new search",
	"look for something else",
	"changed my mind",
	"change of plans",
	"actually i want something else",
}

var refusalPhrases = []string{
	"rather not say",
	"rather not answer",
	"i'd rather not",
	"id rather not",
	"won't say",
	"wont say",
	"not telling",
	"no comment",
	"skip that",
	"skip this",
	"pass on that",
	"don't want to answer",
	"dont want to answer",
	"don't want to say",
	"dont want to say",
	"none of your business",
}

var unknownPhrases = []string{
	"don't know",
	"dont know",
	"do not know",
	"dunno",
	"no idea",
	"no clue",
	"not sure",
	"unsure",
	"hard to say",
	"can't decide",
	"cant decide",
	"haven't thought",
	"havent thought",
	"beats me",
}

// PatternInterpreter is the deterministic, pattern-based classifier.
// It is the mandatory fallback behind any AI-backed interpreter and is
// pure: same text in, same interpretation out.
type PatternInterpreter struct{}

// NewPatternInterpreter returns the deterministic classifier.
func NewPatternInterpreter() *PatternInterpreter {
	return &PatternInterpreter{}
}

// Interpret classifies the utterance. Priority, first match wins:
// noise > context shift > refusal > unknown > answer.
func (p *PatternInterpreter) Interpret(text string, lastAsked Slot) Interpretation {
	normalized := strings.ToLower(strings.TrimSpace(text))

	if isFillerOnly(normalized) {
		return Interpretation{Intent: IntentNoise}
	}
	if containsAny(normalized, contextShiftPhrases) {
		return Interpretation{Intent: IntentContextShift, Value: strings.TrimSpace(text)}
	}
	if containsAny(normalized, refusalPhrases) {
		return Interpretation{Intent: IntentRefusal}
	}
	if containsAny(normalized, unknownPhrases) {
		return Interpretation{Intent: IntentUnknown}
	}

	return Interpretation{
		Intent:  IntentAnswer,
		Value:   strings.TrimSpace(text),
		Signals: scanSignals(text),
	}
}

// scanSignals extracts budget, constraint, and preference signals that
// are explicitly present in the text. Nothing is ever inferred.
func scanSignals(text string) []Signal {
	var signals []Signal
	lower := strings.ToLower(text)

	if amount := matchBudgetAmount(lower); amount != "" {
		signals = append(signals, Signal{Slot: SlotBudget, Value: amount})
	}
	if m := constraintRE.FindString(lower); m != "" {
		signals = append(signals, Signal{Slot: SlotConstraint, Value: strings.TrimSpace(m)})
	}
	if preferenceRE.MatchString(lower) {
		signals = append(signals, Signal{Slot: SlotPreference, Value: strings.TrimSpace(text)})
	}
	return signals
}

func matchBudgetAmount(lower string) string {
	if m := budgetRE.FindStringSubmatch(lower); len(m) == 2 {
		return strings.ReplaceAll(m[1], ",", "")
	}
	if m := bareAmountRE.FindStringSubmatch(lower); len(m) == 2 {
		return strings.ReplaceAll(m[1], ",", "")
	}
	return ""
}

func isFillerOnly(normalized string) bool {
	stripped := punctuationRE.ReplaceAllString(normalized, " ")
	fields := strings.Fields(stripped)
	if len(fields) == 0 {
		return true
	}
	for _, f := range fields {
		if !fillerWords[f] {
			return false
		}
	}
	return true
}

func containsAny(s string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}
