package prompt

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"pulsefit/coach-app/internal/domain"
)

// Instructions is a composed system/user prompt pair ready to send.
type Instructions struct {
	System string
	User   string
}

// weekSchema is the exact output contract both generation and modification
// demand from the model. Minified so the model mirrors it without wrapping.
const weekSchema = `{"weekNumber":1,"notes":"string","days":[{"dayNumber":1,"dayName":"string","notes":"string","exercises":[{"name":"string","sets":3,"reps":"8-10","notes":"string"}]}]}`

const trainingSystemPrompt = `You are an elite strength and conditioning coach who writes precise, structured one-week training plans.

STRUCTURAL RULES (non-negotiable):
- The week contains exactly 7 day entries, dayNumber 1 through 7.
- Every training day has 6-8 exercises, ordered from most to least neurally demanding (compound lifts first, isolation and accessory work last).
- No exercise exceeds 3 sets. No set exceeds 12 reps.
- Rest days use dayName "Rest Day" and an empty exercises array. The exercises field must still be present.
- Reps are strings so ranges ("8-10") and time prescriptions ("30s") are expressible.

OUTPUT RULES:
Respond with ONLY minified JSON matching this schema exactly, no markdown fences, no commentary:
` + weekSchema

const modificationSystemPrompt = `You are an elite strength and conditioning coach modifying an existing one-week training plan based on the athlete's weekly analysis.

PRIORITY ORDER (strict, highest first):
1. Pain protocol. If a pain alert is present it overrides every other instruction.
2. Athlete exercise preferences (MUST INCLUDE / MUST NOT INCLUDE lists).
3. The category modification directives.

STRUCTURAL RULES (non-negotiable):
- The week contains exactly 7 day entries, dayNumber 1 through 7.
- Every training day has 6-8 exercises, ordered from most to least neurally demanding.
- No exercise exceeds 3 sets. No set exceeds 12 reps.
- Rest days use dayName "Rest Day" and an empty exercises array. The exercises field must still be present.

OUTPUT RULES:
Respond with ONLY minified JSON matching this schema exactly, no markdown fences, no commentary:
` + weekSchema

const nutritionSystemPrompt = `You are a sports nutritionist setting daily macronutrient targets for an athlete. Base your targets on the athlete's goal, body data and weight trend. Be realistic and conservative; no extreme deficits or surpluses.

Respond in EXACTLY this format, nothing else:
Daily Calories: <integer>
Daily Protein (g): <number>
Daily Carbs (g): <number>
Daily Fat (g): <number>
Notes: <one or two short sentences>`

// AssistantPersona is the base instruction set of the coaching assistant. Per
// conversation context is supplied separately as additional instructions.
const AssistantPersona = `You are a knowledgeable, supportive personal fitness coach. Answer questions about the user's training plan, technique, recovery and nutrition. Keep answers short and practical. Never prescribe medical treatment; recommend a professional for pain or injury concerns.`

// ComposeTrainingGeneration builds the prompt pair for a first-time training
// plan. The caller has already verified the required profile fields.
func ComposeTrainingGeneration(p *domain.UserProfile, now time.Time) Instructions {
	var b strings.Builder
	b.WriteString("Create a one-week training plan for this athlete:\n\n")
	b.WriteString("ATHLETE PROFILE:\n")
	if age, ok := p.Age(now); ok {
		fmt.Fprintf(&b, "- Age: %d\n", age)
	}
	if p.TrainingExperienceYears != nil {
		fmt.Fprintf(&b, "- Training experience: %d years (%s)\n",
			*p.TrainingExperienceYears, p.ExperienceLevel())
	}
	fmt.Fprintf(&b, "- Primary goal: %s\n", p.PrimaryFitnessGoal)
	if p.ShortTermGoal != "" {
		fmt.Fprintf(&b, "- Short-term goal: %s\n", p.ShortTermGoal)
	}
	if p.TrainingDaysPerWeek != nil {
		fmt.Fprintf(&b, "- Training days per week: %d\n", *p.TrainingDaysPerWeek)
	}
	if p.CurrentTrainingSplit != "" {
		fmt.Fprintf(&b, "- Current split: %s\n", p.CurrentTrainingSplit)
	}
	if p.TrainingLocationType != "" {
		fmt.Fprintf(&b, "- Training location: %s\n", p.TrainingLocationType)
	}
	if p.PreferredWorkoutDuration != nil {
		fmt.Fprintf(&b, "- Preferred session length: %d minutes\n", *p.PreferredWorkoutDuration)
	}
	if p.DoesCardio {
		line := "- Does cardio"
		if p.CardioType != "" {
			line += ": " + p.CardioType
		}
		if p.CardioFrequencyPerWeek != nil {
			line += fmt.Sprintf(", %d times per week", *p.CardioFrequencyPerWeek)
		}
		b.WriteString(line + "\n")
	}
	writePreferenceCriticals(&b, p.UserWants, p.UserAvoids)

	b.WriteString("\nPLAN REQUIREMENTS:\n")
	if p.TrainingDaysPerWeek != nil {
		days := *p.TrainingDaysPerWeek
		fmt.Fprintf(&b, "- Exactly %d training days and %d rest days\n", days, domain.DaysPerWeek-days)
		b.WriteString("- " + restDayGuidance(days) + "\n")
	}
	switch p.ExperienceLevel() {
	case "Beginner":
		b.WriteString("- Beginner adaptations: emphasize compound movement patterns, moderate loads, detailed form cues in exercise notes\n")
	case "Intermediate":
		b.WriteString("- Intermediate adaptations: balanced compound and accessory work, RPE targets 7-8, some tempo work\n")
	case "Advanced":
		b.WriteString("- Advanced adaptations: higher intensity techniques, RPE targets up to 9, tempo and pause variations\n")
	}
	writeGoalGuidance(&b, p.PrimaryFitnessGoal)
	b.WriteString("- Include RPE targets and practical cues in exercise notes\n")

	return Instructions{System: trainingSystemPrompt, User: b.String()}
}

// ComposeModification builds the prompt pair that turns an analysis signal
// and the current plan into a modified plan. It rejects unknown
// recommendation categories and incomplete pain alerts.
func ComposeModification(sig domain.AnalysisSignal, plan *domain.TrainingPlan) (Instructions, error) {
	directive, ok := DirectiveFor(sig.Recommendation)
	if !ok {
		return Instructions{}, fmt.Errorf("unknown recommendation category %q", sig.Recommendation)
	}
	if sig.HasPain && (sig.Area == "" || sig.Cause == "") {
		return Instructions{}, fmt.Errorf("pain alert requires both area and cause")
	}

	planJSON, err := json.Marshal(plan.PlanData)
	if err != nil {
		return Instructions{}, fmt.Errorf("encode current plan: %w", err)
	}

	var b strings.Builder
	b.WriteString("Modify the current training plan based on this weekly analysis:\n\n")

	b.WriteString("ANALYSIS SUMMARY:\n")
	if sig.WeekDateRange != "" {
		fmt.Fprintf(&b, "- Week: %s\n", sig.WeekDateRange)
	}
	fmt.Fprintf(&b, "- Recommendation: %s\n", strings.ToUpper(string(sig.Recommendation)))
	if sig.OverallScore != nil {
		fmt.Fprintf(&b, "- Overall score: %.2f/1.0\n", *sig.OverallScore)
	}
	if sig.Confidence != nil {
		fmt.Fprintf(&b, "- Confidence: %.2f\n", *sig.Confidence)
	}

	if sig.Factors != nil {
		b.WriteString("\nFACTOR SCORES:\n")
		fmt.Fprintf(&b, "- Performance: %.2f\n", sig.Factors.Performance)
		fmt.Fprintf(&b, "- Recovery: %.2f\n", sig.Factors.Recovery)
		fmt.Fprintf(&b, "- Adherence: %.2f\n", sig.Factors.Adherence)
		fmt.Fprintf(&b, "- Lifestyle: %.2f\n", sig.Factors.Lifestyle)
	}

	if len(sig.Reasons) > 0 {
		b.WriteString("\nKEY FINDINGS:\n")
		for _, reason := range sig.Reasons {
			fmt.Fprintf(&b, "- %s\n", reason)
		}
	}

	// The pain block precedes preferences and directives so the model sees
	// the override before any competing instruction.
	if sig.HasPain {
		b.WriteString("\nPAIN ALERT - CRITICAL PRIORITY:\n")
		fmt.Fprintf(&b, "- Pain area: %s\n", sig.Area)
		fmt.Fprintf(&b, "- Reported cause: %s\n", sig.Cause)
	}

	writePreferenceCriticals(&b, sig.CumulativeWants, sig.CumulativeAvoids)

	b.WriteString("\nCURRENT PLAN:\n")
	b.Write(planJSON)
	b.WriteString("\n")

	b.WriteString("\nMODIFICATION INSTRUCTIONS:\n")
	if sig.HasPain {
		fmt.Fprintf(&b, "PAIN PROTOCOL (overrides everything below):\n")
		fmt.Fprintf(&b, "- Remove or substitute every exercise that loads the %s\n", sig.Area)
		fmt.Fprintf(&b, "- Cap intensity at RPE 5-6 for any movement involving the affected area\n")
		b.WriteString("- Keep full planned intensity for movements that do not involve the affected area\n")
		fmt.Fprintf(&b, "- Add rehabilitative or mobility work for the %s where appropriate\n", sig.Area)
		b.WriteString("- Note the pain accommodation in the plan notes\n\n")
	}
	b.WriteString(directive.Headline + "\n")
	for _, bullet := range directive.Bullets {
		fmt.Fprintf(&b, "- %s\n", bullet)
	}

	b.WriteString("\nOUTPUT REQUIREMENTS:\n")
	b.WriteString("- Keep the 7-day structure; rest days keep dayName \"Rest Day\" and an empty exercises array\n")
	b.WriteString("- Respect the set and rep caps\n")
	if sig.CumulativeWants != "" {
		b.WriteString("- The MUST INCLUDE exercises above are non-negotiable\n")
	}
	if sig.CumulativeAvoids != "" {
		b.WriteString("- The MUST NOT INCLUDE exercises above may not appear anywhere in the plan\n")
	}

	return Instructions{System: modificationSystemPrompt, User: b.String()}, nil
}

// ComposeNutritionGeneration builds the prompt pair for daily macro targets.
// Weight samples must be ordered ascending by measurement date.
func ComposeNutritionGeneration(p *domain.UserProfile, now time.Time, samples []domain.WeightSample) Instructions {
	var b strings.Builder
	b.WriteString("Set daily nutrition targets for this athlete:\n\n")
	b.WriteString("ATHLETE PROFILE:\n")
	if age, ok := p.Age(now); ok {
		fmt.Fprintf(&b, "- Age: %d\n", age)
	}
	if p.HeightCm != nil {
		fmt.Fprintf(&b, "- Height: %.0f cm\n", *p.HeightCm)
	}
	fmt.Fprintf(&b, "- Primary goal: %s\n", p.PrimaryFitnessGoal)
	if p.TargetWeightKg != nil {
		fmt.Fprintf(&b, "- Target weight: %.1f kg\n", *p.TargetWeightKg)
	}
	if p.DietaryPreferences != "" {
		fmt.Fprintf(&b, "- Dietary preferences: %s\n", p.DietaryPreferences)
	}
	if len(p.Allergies) > 0 {
		fmt.Fprintf(&b, "- Allergies: %s\n", strings.Join(p.Allergies, ", "))
	}

	b.WriteString("\nWEIGHT DATA:\n")
	if weight, ok := domain.CurrentWeight(samples, p.TargetWeightKg); ok {
		source := "latest measurement"
		if len(samples) == 0 {
			source = "target weight, no measurements recorded"
		}
		fmt.Fprintf(&b, "- Current weight: %.1f kg (%s)\n", weight, source)
	} else {
		b.WriteString("- Current weight: unknown\n")
	}
	if delta, days, trend, ok := domain.WeightTrendOf(samples); ok && len(samples) > 1 {
		fmt.Fprintf(&b, "- Trend over last %d days: %s (%+.1f kg)\n", days, trend, delta)
	}
	for _, s := range samples {
		fmt.Fprintf(&b, "- %s: %.1f kg\n", s.MeasuredAt.Format("2006-01-02"), s.WeightKg)
	}

	return Instructions{System: nutritionSystemPrompt, User: b.String()}
}

// ComposeChatInstructions renders the per-turn context the assistant is
// grounded with: the profile essentials and, when present, the active plan.
func ComposeChatInstructions(p *domain.UserProfile, plan *domain.TrainingPlan) string {
	var b strings.Builder
	b.WriteString("Context for this conversation.\n\nUSER:\n")
	if p.FullName != "" {
		fmt.Fprintf(&b, "- Name: %s\n", p.FullName)
	}
	if p.PrimaryFitnessGoal != "" {
		fmt.Fprintf(&b, "- Primary goal: %s\n", p.PrimaryFitnessGoal)
	}
	if level := p.ExperienceLevel(); level != "" {
		fmt.Fprintf(&b, "- Experience level: %s\n", level)
	}
	if p.TrainingDaysPerWeek != nil {
		fmt.Fprintf(&b, "- Training days per week: %d\n", *p.TrainingDaysPerWeek)
	}

	if plan != nil {
		planJSON, err := json.Marshal(plan.PlanData)
		if err == nil {
			fmt.Fprintf(&b, "\nACTIVE TRAINING PLAN (%q, started %s):\n",
				plan.PlanName, plan.StartDate.Format("2006-01-02"))
			b.Write(planJSON)
			b.WriteString("\n")
		}
	} else {
		b.WriteString("\nThe user has no active training plan yet.\n")
	}
	return b.String()
}

// writePreferenceCriticals renders the accumulated wants/avoids constraints.
// Both lists are hard requirements, not suggestions.
func writePreferenceCriticals(b *strings.Builder, wants, avoids string) {
	if wants == "" && avoids == "" {
		return
	}
	b.WriteString("\nUSER EXERCISE PREFERENCES (CRITICAL):\n")
	if wants != "" {
		fmt.Fprintf(b, "- MUST INCLUDE: %s\n", wants)
	}
	if avoids != "" {
		fmt.Fprintf(b, "- MUST NOT INCLUDE: %s\n", avoids)
	}
}

func restDayGuidance(trainingDays int) string {
	switch trainingDays {
	case 3:
		return "Alternate training and rest days (e.g. train days 1, 3, 5)"
	case 4:
		return "Avoid more than two consecutive training days (e.g. train days 1, 2, 4, 6)"
	case 5:
		return "Place rest days after the hardest sessions (e.g. rest days 4 and 7)"
	case 6:
		return "Place the single rest day mid-week or at the end (e.g. rest day 4 or 7)"
	default:
		return "Distribute rest days evenly across the week"
	}
}

func writeGoalGuidance(b *strings.Builder, goal string) {
	switch {
	case strings.Contains(strings.ToLower(goal), "strength"):
		b.WriteString("- Goal adaptations: prioritize heavy compound lifts early in each session, lower rep ranges (4-6), longer rests noted in exercise notes\n")
	case strings.Contains(strings.ToLower(goal), "muscle"), strings.Contains(strings.ToLower(goal), "hypertrophy"):
		b.WriteString("- Goal adaptations: moderate rep ranges (8-12), controlled tempo, exercise variety across the week\n")
	case strings.Contains(strings.ToLower(goal), "fat"), strings.Contains(strings.ToLower(goal), "weight loss"):
		b.WriteString("- Goal adaptations: higher training density, supersets where sensible, conditioning finishers on 1-2 days\n")
	case strings.Contains(strings.ToLower(goal), "endurance"):
		b.WriteString("- Goal adaptations: higher rep ranges (10-12), shorter rests, include aerobic conditioning work\n")
	}
}
