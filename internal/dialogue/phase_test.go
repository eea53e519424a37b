package dialogue

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDiscoveryResultCarriesReason(t *testing.T) {
	dr := DiscoveryResult(NewRequery("no keyword", ""), ReasonNoKeyword, "readiness.no_keyword")

	assert.Equal(t, PhaseDiscovery, dr.NextPhase)
	assert.False(t, dr.AllowSearch)
	assert.Equal(t, ReasonNoKeyword, dr.DiscoveryReason)
}

func TestReadyResultNeverAllowsSearch(t *testing.T) {
	dr := ReadyResult(NewRecommend("ready"), "ready")

	assert.Equal(t, PhaseReady, dr.NextPhase)
	assert.False(t, dr.AllowSearch)
	assert.Equal(t, ReasonNone, dr.DiscoveryReason)
}

func TestSearchingResultAllowsSearch(t *testing.T) {
	dr := SearchingResult(NewRecommend("keyword match"), "decision.keyword_match")

	assert.Equal(t, PhaseSearching, dr.NextPhase)
	assert.True(t, dr.AllowSearch)
	assert.Equal(t, ReasonNone, dr.DiscoveryReason)
}
