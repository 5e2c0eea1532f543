package prompt

import (
	"pulsefit/coach-app/internal/domain"
)

// CategoryDirective captures what one recommendation category demands of the
// modified plan. The numeric fields exist so the table is testable without
// rendering prompt text.
type CategoryDirective struct {
	Headline string

	// Signed adjustment applied to the plan's RPE targets (zero for
	// categories that keep intensity).
	RPEDeltaMin float64
	RPEDeltaMax float64

	// Absolute RPE ceiling; only the deload category caps intensity.
	RPECapLow  float64
	RPECapHigh float64

	// Volume reduction range in percent; zero means volume is preserved.
	VolumeCutMinPct int
	VolumeCutMaxPct int

	// DropTempo removes tempo prescriptions in favor of natural cadence.
	DropTempo bool

	Bullets []string
}

// Capped reports whether the directive imposes an absolute RPE ceiling.
func (d CategoryDirective) Capped() bool { return d.RPECapHigh > 0 }

var categoryDirectives = map[domain.Recommendation]CategoryDirective{
	domain.RecommendMaintain: {
		Headline: "MAINTAIN the current plan structure with minor progressive adjustments:",
		Bullets: []string{
			"Keep the same exercise selection and weekly structure",
			"Make small increases in weight, reps, or sets for progression",
			"Ensure the plan remains sustainable and consistent",
		},
	},
	domain.RecommendIncrease: {
		Headline:    "INCREASE the training intensity from the current plan:",
		RPEDeltaMin: 0.5,
		RPEDeltaMax: 1,
		Bullets: []string{
			"Reduce reps by 1-2 per set (max 12 reps per set) while increasing load",
			"Increase RPE targets by 0.5-1 point (e.g., RPE 7-8 becomes RPE 8-9)",
			"Add tempo prescriptions for increased time under tension",
			"Include load progression notes (e.g., \"Increase weight by 2.5-5% from last week\")",
			"Focus on progressive overload through intensity, not volume",
			"Add fatigue management cues in day notes",
		},
	},
	domain.RecommendDecrease: {
		Headline:        "DECREASE the training intensity/volume from the current plan:",
		RPEDeltaMin:     -2,
		RPEDeltaMax:     -1,
		VolumeCutMinPct: 20,
		VolumeCutMaxPct: 30,
		DropTempo:       true,
		Bullets: []string{
			"Reduce RPE targets by 1-2 points (e.g., RPE 8-9 becomes RPE 6-7)",
			"Decrease volume by 20-30% (reduce sets or exercises)",
			"Remove tempo prescriptions and use natural cadence",
			"Include recovery-focused notes (e.g., \"Focus on form and feel\")",
			"Emphasize movement quality and technique refinement",
			"Add mobility work and corrective exercises",
		},
	},
	domain.RecommendModify: {
		Headline: "MODIFY the plan structure and exercise selection:",
		Bullets: []string{
			"Replace exercises while maintaining movement patterns (push/pull balance)",
			"Adjust training split based on recovery and lifestyle factors",
			"Include exercise variations that target same muscles differently",
			"Maintain similar volume landmarks but improve movement quality",
			"Add exercise progression/regression options in notes",
			"Focus on adherence-friendly exercise selection",
		},
	},
	domain.RecommendDeload: {
		Headline:        "DELOAD the current plan for recovery:",
		RPECapLow:       5,
		RPECapHigh:      7,
		VolumeCutMinPct: 40,
		VolumeCutMaxPct: 50,
		DropTempo:       true,
		Bullets: []string{
			"Reduce RPE targets to 5-7 across all exercises",
			"Decrease volume by 40-50% (reduce sets and/or exercises)",
			"Remove all tempo prescriptions, use natural movement",
			"Include extensive warm-up and mobility work",
			"Add recovery-focused notes (e.g., \"Priority: joint health and movement quality\")",
			"Focus on corrective exercises and movement preparation",
			"Include sleep and stress management cues in day notes",
		},
	},
}

// DirectiveFor looks up the modification directive for a recommendation
// category.
func DirectiveFor(rec domain.Recommendation) (CategoryDirective, bool) {
	d, ok := categoryDirectives[rec]
	return d, ok
}
