package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NutritionPlan holds a user's daily intake targets with the rationale that
// produced them. Same single-active invariant as TrainingPlan, but retired
// plans are always kept as inactive history.
type NutritionPlan struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID        primitive.ObjectID `bson:"userId" json:"userId"`
	DailyCalories int                `bson:"dailyCalories" json:"daily_calories"`
	DailyProteinG float64            `bson:"dailyProteinG" json:"daily_protein_g"`
	DailyCarbsG   float64            `bson:"dailyCarbsG" json:"daily_carbs_g"`
	DailyFatG     float64            `bson:"dailyFatG" json:"daily_fat_g"`
	Notes         string             `bson:"notes,omitempty" json:"notes,omitempty"`
	IsActive      bool               `bson:"isActive" json:"is_active"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt" json:"updatedAt"`
}
