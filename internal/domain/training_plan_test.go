package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func validWeek() WeekSchedule {
	week := WeekSchedule{WeekNumber: 1}
	for i := 1; i <= DaysPerWeek; i++ {
		week.Days = append(week.Days, PlanDay{
			DayNumber: i,
			DayName:   "Rest Day",
			Notes:     "easy walk and mobility",
			Exercises: []PlanExercise{},
		})
	}
	return week
}

func TestWeekScheduleValidateOK(t *testing.T) {
	assert.NoError(t, validWeek().Validate())
}

func TestWeekScheduleValidateWrongDayCount(t *testing.T) {
	week := validWeek()
	week.Days = week.Days[:6]
	assert.Error(t, week.Validate())
}

func TestWeekScheduleValidateDuplicateDay(t *testing.T) {
	week := validWeek()
	week.Days[1].DayNumber = 1
	assert.Error(t, week.Validate())
}

func TestWeekScheduleValidateMissingExerciseList(t *testing.T) {
	week := validWeek()
	week.Days[2].Exercises = nil
	assert.Error(t, week.Validate())
}

func TestWeekScheduleValidateSetCap(t *testing.T) {
	week := validWeek()
	week.Days[0].DayName = "Push Day"
	week.Days[0].Exercises = []PlanExercise{{Name: "Bench Press", Sets: MaxSets + 1, Reps: "8"}}
	assert.Error(t, week.Validate())
}

func TestIsRestDay(t *testing.T) {
	assert.True(t, PlanDay{Exercises: []PlanExercise{}}.IsRestDay())
	assert.False(t, PlanDay{Exercises: []PlanExercise{{Name: "Row"}}}.IsRestDay())
}

func TestRecommendationValid(t *testing.T) {
	for _, r := range Recommendations {
		assert.True(t, r.Valid())
	}
	assert.False(t, Recommendation("sprint").Valid())
	assert.False(t, Recommendation("").Valid())
}
