package coach

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/okian/fitquest/internal/domain/model"
)

// ChatPrompt frames a user's question with their profile and history.
func ChatPrompt(stats model.UserStats, message string) string {
	u := stats.User
	var b strings.Builder
	b.WriteString("You are a professional fitness coach and nutritionist. ")
	fmt.Fprintf(&b, "The user is %s years old, ", age(u))
	fmt.Fprintf(&b, "with a goal to %s, ", humanize(u.FitnessGoal, "stay healthy"))
	fmt.Fprintf(&b, "and has a %s activity level. ", humanize(u.ActivityLevel, "moderate"))
	fmt.Fprintf(&b, "They have completed %d workouts and burned %d calories so far. ", stats.TotalWorkouts, stats.TotalCalories)
	b.WriteString("Please provide helpful, encouraging, and personalized advice. ")
	b.WriteString("Keep your response concise but informative. ")
	fmt.Fprintf(&b, "User's question: %s", message)
	return b.String()
}

// PlanPrompt asks for a weekly plan formatted as a JSON object keyed by day.
func PlanPrompt(u model.User, goal, experience string, daysPerWeek int) string {
	var b strings.Builder
	b.WriteString("Create a detailed workout plan for a user with the following profile: ")
	fmt.Fprintf(&b, "Goal: %s, Experience level: %s, Days per week: %d. ", goal, experience, daysPerWeek)
	fmt.Fprintf(&b, "Age: %s, ", age(u))
	fmt.Fprintf(&b, "Fitness goal: %s, ", humanize(u.FitnessGoal, goal))
	b.WriteString("Please provide a structured weekly workout plan with specific exercises, sets, reps, and rest periods. ")
	b.WriteString("Format the response as a JSON object with days as keys and exercise arrays as values. ")
	b.WriteString("Each exercise should have: name, sets, reps, rest, notes.")
	return b.String()
}

func age(u model.User) string {
	if u.Age == nil {
		return "unknown"
	}
	return strconv.Itoa(*u.Age)
}

func humanize(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return strings.ReplaceAll(v, "_", " ")
}
