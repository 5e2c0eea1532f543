package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func scorePtr(v float64) *float64 { return &v }

func TestAnalysisSignalMissingFields(t *testing.T) {
	sig := AnalysisSignal{
		Recommendation: RecommendDecrease,
		Confidence:     scorePtr(0.7),
		OverallScore:   scorePtr(0.4),
		Factors:        &AnalysisFactors{Performance: 0.4, Recovery: 0.3, Adherence: 0.6, Lifestyle: 0.5},
		Reasons:        []string{"performance declining"},
		WeekDateRange:  "2024-04-22 to 2024-04-28",
	}
	assert.Empty(t, sig.MissingFields())
}

func TestAnalysisSignalMissingFieldsEnumeratesAbsent(t *testing.T) {
	sig := AnalysisSignal{Recommendation: RecommendMaintain}
	assert.ElementsMatch(t, []string{
		SignalFieldConfidence,
		SignalFieldOverallScore,
		SignalFieldFactors,
		SignalFieldReasons,
		SignalFieldWeekDateRange,
	}, sig.MissingFields())
}

func TestAnalysisSignalZeroScoresArePresent(t *testing.T) {
	sig := AnalysisSignal{
		Recommendation: RecommendDeload,
		Confidence:     scorePtr(0),
		OverallScore:   scorePtr(0),
		Factors:        &AnalysisFactors{},
		Reasons:        []string{},
		WeekDateRange:  "2024-04-22 to 2024-04-28",
	}
	assert.Empty(t, sig.MissingFields())
}

func TestRecommendationLabel(t *testing.T) {
	assert.Equal(t, "Deload", RecommendDeload.Label())
	assert.Equal(t, "", Recommendation("").Label())
}
