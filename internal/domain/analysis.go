package domain

import "strings"

// Recommendation is the output category of the weekly analysis process and
// the input to the plan-modification engine.
type Recommendation string

const (
	RecommendMaintain Recommendation = "maintain"
	RecommendIncrease Recommendation = "increase"
	RecommendDecrease Recommendation = "decrease"
	RecommendModify   Recommendation = "modify"
	RecommendDeload   Recommendation = "deload"
)

// Recommendations lists the valid categories in canonical order.
var Recommendations = []Recommendation{
	RecommendMaintain,
	RecommendIncrease,
	RecommendDecrease,
	RecommendModify,
	RecommendDeload,
}

// Label renders the category as a plan name ("deload" becomes "Deload").
func (r Recommendation) Label() string {
	if r == "" {
		return ""
	}
	s := string(r)
	return strings.ToUpper(s[:1]) + s[1:]
}

// Valid reports whether r is one of the five known categories.
func (r Recommendation) Valid() bool {
	for _, known := range Recommendations {
		if r == known {
			return true
		}
	}
	return false
}

// AnalysisFactors are the four named sub-scores of a weekly analysis, each
// in [0,1].
type AnalysisFactors struct {
	Performance float64 `json:"performance"`
	Recovery    float64 `json:"recovery"`
	Adherence   float64 `json:"adherence"`
	Lifestyle   float64 `json:"lifestyle"`
}

// Signal field names used in missing-field error responses. They mirror the
// request body keys.
const (
	SignalFieldRecommendation = "recommendation"
	SignalFieldConfidence     = "confidence"
	SignalFieldOverallScore   = "overallScore"
	SignalFieldFactors        = "factors"
	SignalFieldReasons        = "reasons"
	SignalFieldWeekDateRange  = "weekDateRange"
)

// AnalysisSignal is the weekly analysis result driving a plan modification.
// It is consumed, never persisted. The score fields are pointers so an
// absent field is distinguishable from a legitimate zero score.
type AnalysisSignal struct {
	Recommendation Recommendation   `json:"recommendation"`
	Confidence     *float64         `json:"confidence,omitempty"`
	OverallScore   *float64         `json:"overallScore,omitempty"`
	Factors        *AnalysisFactors `json:"factors,omitempty"`
	Reasons        []string         `json:"reasons,omitempty"`
	WeekDateRange  string           `json:"weekDateRange,omitempty"`

	// Preference constraints accumulated across prior weeks.
	CumulativeWants  string `json:"cumulativeWants,omitempty"`
	CumulativeAvoids string `json:"cumulativeAvoids,omitempty"`

	// Pain override. When HasPain is set, Area and Cause are mandatory and
	// the pain protocol supersedes every other modification rule.
	HasPain bool   `json:"hasPain,omitempty"`
	Area    string `json:"area,omitempty"`
	Cause   string `json:"cause,omitempty"`
}

// MissingFields reports which of the six required signal fields are absent.
// A field is missing when it is nil or an empty string; zero scores and an
// empty reasons list are present.
func (s *AnalysisSignal) MissingFields() []string {
	var missing []string
	if s.Recommendation == "" {
		missing = append(missing, SignalFieldRecommendation)
	}
	if s.Confidence == nil {
		missing = append(missing, SignalFieldConfidence)
	}
	if s.OverallScore == nil {
		missing = append(missing, SignalFieldOverallScore)
	}
	if s.Factors == nil {
		missing = append(missing, SignalFieldFactors)
	}
	if s.Reasons == nil {
		missing = append(missing, SignalFieldReasons)
	}
	if s.WeekDateRange == "" {
		missing = append(missing, SignalFieldWeekDateRange)
	}
	return missing
}
