package llm

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	"pulsefit/coach-app/internal/domain"
)

// NutritionTargets is the parsed output of a nutrition generation call.
type NutritionTargets struct {
	DailyCalories int
	DailyProteinG float64
	DailyCarbsG   float64
	DailyFatG     float64
	Notes         string
}

// ParseWeekSchedule decodes the model's JSON into a week schedule and checks
// its structural invariants. Markdown fences are stripped first; models wrap
// JSON in them despite instructions often enough.
func ParseWeekSchedule(raw string) (domain.WeekSchedule, error) {
	cleaned := stripFences(raw)

	var week domain.WeekSchedule
	dec := json.NewDecoder(strings.NewReader(cleaned))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&week); err != nil {
		return domain.WeekSchedule{}, &MalformedError{Raw: raw, Reason: "invalid JSON: " + err.Error()}
	}
	if err := week.Validate(); err != nil {
		return domain.WeekSchedule{}, &MalformedError{Raw: raw, Reason: err.Error()}
	}
	return week, nil
}

var (
	caloriesRe = regexp.MustCompile(`Daily Calories:\s*([\d,]+)`)
	proteinRe  = regexp.MustCompile(`Daily Protein \(g\):\s*([\d.]+)`)
	carbsRe    = regexp.MustCompile(`Daily Carbs \(g\):\s*([\d.]+)`)
	fatRe      = regexp.MustCompile(`Daily Fat \(g\):\s*([\d.]+)`)
	notesRe    = regexp.MustCompile(`(?s)Notes:\s*(.+?)(?:\n\n|$)`)
)

// ParseNutritionTargets extracts the labeled lines of a nutrition response.
// All four numeric targets are required; notes are optional.
func ParseNutritionTargets(raw string) (NutritionTargets, error) {
	var t NutritionTargets

	m := caloriesRe.FindStringSubmatch(raw)
	if m == nil {
		return NutritionTargets{}, &MalformedError{Raw: raw, Reason: "missing Daily Calories line"}
	}
	calories, err := strconv.Atoi(strings.ReplaceAll(m[1], ",", ""))
	if err != nil {
		return NutritionTargets{}, &MalformedError{Raw: raw, Reason: "unparseable calories value"}
	}
	t.DailyCalories = calories

	for _, field := range []struct {
		re    *regexp.Regexp
		label string
		dst   *float64
	}{
		{proteinRe, "Daily Protein (g)", &t.DailyProteinG},
		{carbsRe, "Daily Carbs (g)", &t.DailyCarbsG},
		{fatRe, "Daily Fat (g)", &t.DailyFatG},
	} {
		m := field.re.FindStringSubmatch(raw)
		if m == nil {
			return NutritionTargets{}, &MalformedError{Raw: raw, Reason: "missing " + field.label + " line"}
		}
		v, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			return NutritionTargets{}, &MalformedError{Raw: raw, Reason: "unparseable " + field.label + " value"}
		}
		*field.dst = v
	}

	if m := notesRe.FindStringSubmatch(raw); m != nil {
		t.Notes = strings.TrimSpace(m[1])
	}
	return t, nil
}

// stripFences removes a surrounding ```json ... ``` block if present.
func stripFences(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
