package dialogue

import (
	"sort"
	"strings"

	"github.com/shopguide/shopguide-ai-platform/internal/catalog"
)

// maxRankedProducts caps how many scored products survive into the
// decision stage.
const maxRankedProducts = 5

// EvaluatedProduct is one candidate with its score and match flags.
type EvaluatedProduct struct {
	Product        catalog.Product
	Score          int
	KeywordMatch   bool
	BrandMatch     bool
	MatchedOptions []string
}

// EvaluationResult is the ranked outcome of scoring candidates against
// the accumulated criteria.
type EvaluationResult struct {
	Products        []EvaluatedProduct
	CandidateCount  int
	TopScore        int
	SecondScore     int
	HasKeywordMatch bool
	HasBrandMatch   bool
}

// EmptyEvaluation is the canonical zero-candidate result.
func EmptyEvaluation() EvaluationResult {
	return EvaluationResult{Products: []EvaluatedProduct{}}
}

// Evaluate scores every candidate and ranks them.
//
// Option match is a substring hit of any option keyword in the title;
// repeated hits never add extra score. Brand match only checks that a
// brand is preferred and the product carries one; equality is not
// tested. Each match is worth exactly one point. The keyword flag is a
// separate, unscored signal: it records whether the search keyword
// itself appears in the title, and two option hits on a keyword-free
// title never raise it. The sort is stable so provider order breaks
// ties, the ranking is truncated to the top five, and the aggregate
// flags are computed over the truncated ranking only: a match ranked
// sixth is invisible to the decision stage.
func Evaluate(products []catalog.Product, crit Criteria) EvaluationResult {
	if len(products) == 0 {
		return EmptyEvaluation()
	}

	keyword := strings.ToLower(strings.TrimSpace(crit.Keyword))

	scored := make([]EvaluatedProduct, 0, len(products))
	for _, p := range products {
		ep := EvaluatedProduct{Product: p}

		title := strings.ToLower(p.Title)
		if keyword != "" && strings.Contains(title, keyword) {
			ep.KeywordMatch = true
		}

		for _, opt := range crit.Options {
			if strings.Contains(title, opt) {
				ep.MatchedOptions = append(ep.MatchedOptions, opt)
			}
		}
		if len(ep.MatchedOptions) > 0 {
			ep.Score++
		}

		if crit.PrefersBrand() && p.HasBrand() {
			ep.BrandMatch = true
			ep.Score++
		}

		scored = append(scored, ep)
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	ranked := scored
	if len(ranked) > maxRankedProducts {
		ranked = ranked[:maxRankedProducts]
	}

	result := EvaluationResult{
		Products:       ranked,
		CandidateCount: len(products),
		TopScore:       ranked[0].Score,
	}
	if len(ranked) > 1 {
		result.SecondScore = ranked[1].Score
	}
	for _, ep := range ranked {
		result.HasKeywordMatch = result.HasKeywordMatch || ep.KeywordMatch
		result.HasBrandMatch = result.HasBrandMatch || ep.BrandMatch
	}
	return result
}
