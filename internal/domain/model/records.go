package model

import (
	"encoding/json"
	"time"
)

// Meal types accepted on a nutrition entry.
const (
	MealBreakfast = "breakfast"
	MealLunch     = "lunch"
	MealDinner    = "dinner"
	MealSnack     = "snack"
)

// Friendship statuses.
const (
	FriendshipPending  = "pending"
	FriendshipAccepted = "accepted"
	FriendshipBlocked  = "blocked"
)

// Challenge statuses.
const (
	ChallengeActive    = "active"
	ChallengeCompleted = "completed"
	ChallengeCancelled = "cancelled"
)

// MillilitresPerGlass converts water amounts to glasses.
const MillilitresPerGlass = 250

// NutritionEntry is one logged food item.
type NutritionEntry struct {
	ID        int64     `json:"id"`
	UserID    string    `json:"userId"`
	MealType  string    `json:"mealType"`
	FoodItem  string    `json:"foodItem"`
	Quantity  string    `json:"quantity,omitempty"`
	Calories  *int      `json:"calories,omitempty"`
	Protein   *float64  `json:"protein,omitempty"`
	Carbs     *float64  `json:"carbs,omitempty"`
	Fat       *float64  `json:"fat,omitempty"`
	Date      time.Time `json:"date"`
	CreatedAt time.Time `json:"createdAt"`
}

// WaterIntake is the number of glasses drunk on one UTC day.
type WaterIntake struct {
	ID      int64     `json:"id,omitempty"`
	UserID  string    `json:"userId,omitempty"`
	Date    time.Time `json:"date"`
	Glasses int       `json:"glasses"`
}

// DailyGoal is a target for one UTC day.
type DailyGoal struct {
	ID           int64     `json:"id"`
	UserID       string    `json:"userId"`
	GoalType     string    `json:"goalType"`
	TargetValue  int       `json:"targetValue"`
	CurrentValue int       `json:"currentValue"`
	Completed    bool      `json:"completed"`
	PointsValue  int       `json:"pointsValue"`
	Date         time.Time `json:"date"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Friendship links a requester (UserID) to an addressee (FriendID).
type Friendship struct {
	ID        int64     `json:"id"`
	UserID    string    `json:"userId"`
	FriendID  string    `json:"friendId"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

// Challenge is a goal set between a creator and an optional participant.
type Challenge struct {
	ID            int64     `json:"id"`
	CreatorID     string    `json:"creatorId"`
	ParticipantID string    `json:"participantId,omitempty"`
	ChallengeType string    `json:"challengeType"`
	Title         string    `json:"title"`
	Description   string    `json:"description,omitempty"`
	TargetValue   int       `json:"targetValue"`
	StartDate     time.Time `json:"startDate"`
	EndDate       time.Time `json:"endDate"`
	Status        string    `json:"status"`
	WinnerID      string    `json:"winnerId,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

// Achievement is a badge unlocked by a user.
type Achievement struct {
	ID            int64     `json:"id"`
	UserID        string    `json:"userId"`
	Title         string    `json:"title"`
	Description   string    `json:"description,omitempty"`
	BadgeIcon     string    `json:"badgeIcon,omitempty"`
	PointsAwarded int       `json:"pointsAwarded"`
	UnlockedAt    time.Time `json:"unlockedAt"`
}

// WorkoutPlan is a stored weekly plan, possibly generated by the coach.
type WorkoutPlan struct {
	ID          int64           `json:"id"`
	UserID      string          `json:"userId"`
	Title       string          `json:"title"`
	Description string          `json:"description,omitempty"`
	Plan        json.RawMessage `json:"plan"`
	Difficulty  string          `json:"difficulty,omitempty"`
	DaysPerWeek int             `json:"daysPerWeek"`
	CreatedByAI bool            `json:"createdByAI"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// ChatMessage is one coach exchange.
type ChatMessage struct {
	ID          int64     `json:"id"`
	UserID      string    `json:"userId"`
	Message     string    `json:"message"`
	Response    string    `json:"response"`
	MessageType string    `json:"messageType"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Day truncates t to midnight UTC.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
