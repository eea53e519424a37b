package dialogue

import "strings"

// maxTurnsBeforeReset is the accumulation limit: a context that has
// absorbed this many merges starts over on the next one.
const maxTurnsBeforeReset = 6

// ConversationContext is the session's running accumulation of confirmed
// facts across turns. It is owned by one session and mutated only
// through Merge, ExcludeKeyword, and Reset.
type ConversationContext struct {
	Intent       IntentTag `json:"intent,omitempty"`
	Keyword      string    `json:"keyword,omitempty"`
	Options      []string  `json:"options,omitempty"`
	Excluded     []string  `json:"excluded,omitempty"`
	Brand        string    `json:"brand,omitempty"`
	MaxPrice     int       `json:"max_price,omitempty"`
	Turns        int       `json:"turns"`
	Retries      int       `json:"retries"`
	Phase        Phase     `json:"phase"`
	LastCriteria *Criteria `json:"last_criteria,omitempty"`
}

// NewConversationContext returns a fresh context in discovery phase.
func NewConversationContext() *ConversationContext {
	return &ConversationContext{Phase: PhaseDiscovery}
}

// Merge folds one turn's criteria into the accumulated context.
//
// A non-blank incoming keyword that differs from the confirmed one is a
// topic change and forces a full reset before anything is absorbed.
// Hitting the turn limit also resets, discarding the current turn's
// data. Keyword accumulation is sticky (first non-blank wins) while
// brand and price always take the latest non-blank value; preserve this
// asymmetry.
func (c *ConversationContext) Merge(in Criteria) {
	if in.Keyword != "" && c.Keyword != "" && !strings.EqualFold(in.Keyword, c.Keyword) {
		c.Reset()
	}

	c.Turns++
	if c.Turns >= maxTurnsBeforeReset {
		c.Reset()
		return
	}

	for _, opt := range in.Options {
		if c.isExcluded(opt) || c.hasOption(opt) {
			continue
		}
		c.Options = append(c.Options, opt)
	}

	if c.Keyword == "" && in.Keyword != "" {
		c.Keyword = in.Keyword
	}
	if in.Brand != "" {
		c.Brand = in.Brand
	}
	if in.MaxPrice > 0 {
		c.MaxPrice = in.MaxPrice
	}
	if in.Intent != "" {
		c.Intent = in.Intent
	}

	copied := in
	c.LastCriteria = &copied
}

// ExcludeKeyword removes the keyword from the active option set and
// suppresses it from every later merge for the rest of the session.
func (c *ConversationContext) ExcludeKeyword(k string) {
	normalized := strings.ToLower(strings.TrimSpace(k))
	if normalized == "" {
		return
	}

	kept := c.Options[:0]
	for _, opt := range c.Options {
		if opt != normalized {
			kept = append(kept, opt)
		}
	}
	c.Options = kept

	if !c.isExcluded(normalized) {
		c.Excluded = append(c.Excluded, normalized)
	}
}

// Reset clears every field and returns the phase to discovery with both
// counters at zero.
func (c *ConversationContext) Reset() {
	*c = ConversationContext{Phase: PhaseDiscovery}
}

func (c *ConversationContext) isExcluded(opt string) bool {
	for _, e := range c.Excluded {
		if e == opt {
			return true
		}
	}
	return false
}

func (c *ConversationContext) hasOption(opt string) bool {
	for _, o := range c.Options {
		if o == opt {
			return true
		}
	}
	return false
}
