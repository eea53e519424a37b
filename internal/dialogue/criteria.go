package dialogue

import "strings"

// IntentTag distinguishes an undirected "just browsing" session from a
// directed shopping request.
type IntentTag string

const (
	IntentTagHome     IntentTag = "home"
	IntentTagShopping IntentTag = "shopping"
)

// Criteria is the immutable set of search and filter facts derived from
// one turn's input. Construct it with NewCriteria; the option set is
// always a defensive copy and never nil.
type Criteria struct {
	Keyword  string
	Options  []string
	MaxPrice int // 0 means no cap
	Brand    string
	Intent   IntentTag
}

// NewCriteria builds a criteria value. Option keywords are lowercased,
// blank entries dropped, and duplicates removed while preserving order.
func NewCriteria(keyword string, options []string, maxPrice int, brand string, intent IntentTag) Criteria {
	copied := make([]string, 0, len(options))
	seen := make(map[string]bool, len(options))
	for _, opt := range options {
		normalized := strings.ToLower(strings.TrimSpace(opt))
		if normalized == "" || seen[normalized] {
			continue
		}
		seen[normalized] = true
		copied = append(copied, normalized)
	}
	if maxPrice < 0 {
		maxPrice = 0
	}
	return Criteria{
		Keyword:  strings.TrimSpace(keyword),
		Options:  copied,
		MaxPrice: maxPrice,
		Brand:    strings.TrimSpace(brand),
		Intent:   intent,
	}
}

// PrefersBrand reports whether a non-blank preferred brand is present.
func (c Criteria) PrefersBrand() bool {
	return strings.TrimSpace(c.Brand) != ""
}

// HasAnyCondition reports whether any option, brand, or price signal is
// present.
func (c Criteria) HasAnyCondition() bool {
	return len(c.Options) > 0 || c.PrefersBrand() || c.MaxPrice > 0
}
