package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/okian/fitquest/internal/adapters/coach"
	"github.com/okian/fitquest/internal/domain/model"
	"github.com/okian/fitquest/pkg/logger"
)

const defaultMessageType = "fitness"

// PlanRequest describes the plan the coach should generate.
type PlanRequest struct {
	Goal        string `json:"goal"`
	Experience  string `json:"experience"`
	DaysPerWeek int    `json:"daysPerWeek"`
}

func (s *Service) coachReady() error {
	if s.coach == nil || !s.coach.Available() {
		return ErrCoachUnavailable
	}
	return nil
}

// Chat asks the coach a question and stores the exchange.
func (s *Service) Chat(ctx context.Context, userID, message, messageType string) (model.ChatMessage, error) {
	const op = "service.Chat"
	message = strings.TrimSpace(message)
	if message == "" {
		return model.ChatMessage{}, invalid("message is required")
	}
	if messageType = strings.TrimSpace(messageType); messageType == "" {
		messageType = defaultMessageType
	}
	if err := s.coachReady(); err != nil {
		return model.ChatMessage{}, err
	}

	stats, err := s.GetUserStats(ctx, userID)
	if err != nil {
		return model.ChatMessage{}, err
	}
	reply, err := s.coach.Generate(ctx, "chat", coach.ChatPrompt(stats, message))
	if err != nil {
		s.logger.Warn(ctx, "coach chat failed", logger.String("user_id", userID), logger.Error(err))
		return model.ChatMessage{}, coachErr(op, err)
	}

	m, err := s.store.AddChatMessage(ctx, model.ChatMessage{
		UserID:      userID,
		Message:     message,
		Response:    reply,
		MessageType: messageType,
	})
	if err != nil {
		return model.ChatMessage{}, storeErr(op, err)
	}
	return m, nil
}

// ChatHistory returns the newest exchanges, 50 by default.
func (s *Service) ChatHistory(ctx context.Context, userID string, limit int) ([]model.ChatMessage, error) {
	if limit <= 0 {
		limit = defaultChatLimit
	}
	out, err := s.store.ListChatMessages(ctx, userID, limit)
	if err != nil {
		return nil, storeErr("service.ChatHistory", err)
	}
	return out, nil
}

// GenerateWorkoutPlan has the coach write a weekly plan and stores it.
func (s *Service) GenerateWorkoutPlan(ctx context.Context, userID string, req PlanRequest) (model.WorkoutPlan, error) {
	const op = "service.GenerateWorkoutPlan"
	req.Goal = strings.TrimSpace(req.Goal)
	req.Experience = strings.TrimSpace(req.Experience)
	switch {
	case req.Goal == "":
		return model.WorkoutPlan{}, invalid("goal is required")
	case req.Experience == "":
		return model.WorkoutPlan{}, invalid("experience is required")
	case req.DaysPerWeek < 1 || req.DaysPerWeek > 7:
		return model.WorkoutPlan{}, invalid("daysPerWeek must be between 1 and 7")
	}
	if err := s.coachReady(); err != nil {
		return model.WorkoutPlan{}, err
	}

	u, err := s.CurrentUser(ctx, userID)
	if err != nil {
		return model.WorkoutPlan{}, err
	}
	reply, err := s.coach.Generate(ctx, "plan", coach.PlanPrompt(u, req.Goal, req.Experience, req.DaysPerWeek))
	if err != nil {
		s.logger.Warn(ctx, "coach plan failed", logger.String("user_id", userID), logger.Error(err))
		return model.WorkoutPlan{}, coachErr(op, err)
	}

	p, err := s.store.CreateWorkoutPlan(ctx, model.WorkoutPlan{
		UserID:      userID,
		Title:       fmt.Sprintf("%s - %s Plan", req.Goal, req.Experience),
		Description: fmt.Sprintf("AI-generated %d day workout plan", req.DaysPerWeek),
		Plan:        planDocument(reply),
		Difficulty:  req.Experience,
		DaysPerWeek: req.DaysPerWeek,
		CreatedByAI: true,
	})
	if err != nil {
		return model.WorkoutPlan{}, storeErr(op, err)
	}
	return p, nil
}

// planDocument returns reply as JSON when it is a JSON object, possibly
// fenced as a markdown code block, and {"description": reply} otherwise.
func planDocument(reply string) json.RawMessage {
	body := strings.TrimSpace(reply)
	if strings.HasPrefix(body, "```") {
		body = strings.TrimPrefix(body, "```json")
		body = strings.TrimPrefix(body, "```")
		body = strings.TrimSuffix(strings.TrimSpace(body), "```")
		body = strings.TrimSpace(body)
	}
	if strings.HasPrefix(body, "{") && json.Valid([]byte(body)) {
		var buf bytes.Buffer
		if err := json.Compact(&buf, []byte(body)); err == nil {
			return buf.Bytes()
		}
	}
	out, _ := json.Marshal(map[string]string{"description": reply})
	return out
}

// CreateWorkoutPlan stores a hand-written plan.
func (s *Service) CreateWorkoutPlan(ctx context.Context, userID string, p model.WorkoutPlan) (model.WorkoutPlan, error) { //nolint:gocritic // hugeParam: models travel by value
	p.Title = strings.TrimSpace(p.Title)
	switch {
	case p.Title == "":
		return model.WorkoutPlan{}, invalid("title is required")
	case p.DaysPerWeek < 0 || p.DaysPerWeek > 7:
		return model.WorkoutPlan{}, invalid("daysPerWeek must be between 0 and 7")
	case len(p.Plan) > 0 && !json.Valid(p.Plan):
		return model.WorkoutPlan{}, invalid("plan must be a JSON document")
	}
	if len(p.Plan) == 0 {
		p.Plan = json.RawMessage(`{}`)
	}
	p.ID = 0
	p.UserID = userID
	p.CreatedByAI = false
	out, err := s.store.CreateWorkoutPlan(ctx, p)
	if err != nil {
		return model.WorkoutPlan{}, storeErr("service.CreateWorkoutPlan", err)
	}
	return out, nil
}

// ListWorkoutPlans returns the user's plans, newest first.
func (s *Service) ListWorkoutPlans(ctx context.Context, userID string) ([]model.WorkoutPlan, error) {
	out, err := s.store.ListWorkoutPlans(ctx, userID)
	if err != nil {
		return nil, storeErr("service.ListWorkoutPlans", err)
	}
	return out, nil
}
