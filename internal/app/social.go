package service

import (
	"context"
	"slices"
	"strings"

	"github.com/okian/fitquest/internal/domain/model"
)

var challengeStatuses = []string{model.ChallengeActive, model.ChallengeCompleted, model.ChallengeCancelled} //nolint:gochecknoglobals // fixed value set

// RequestFriend sends a pending friend request from userID to friendID.
func (s *Service) RequestFriend(ctx context.Context, userID, friendID string) (model.Friendship, error) {
	const op = "service.RequestFriend"
	friendID = strings.TrimSpace(friendID)
	switch {
	case friendID == "":
		return model.Friendship{}, invalid("friendId is required")
	case friendID == userID:
		return model.Friendship{}, invalid("cannot befriend yourself")
	}
	if _, err := s.store.GetUser(ctx, friendID); err != nil {
		return model.Friendship{}, storeErr(op, err)
	}
	f, err := s.store.CreateFriendship(ctx, model.Friendship{
		UserID:   userID,
		FriendID: friendID,
		Status:   model.FriendshipPending,
	})
	if err != nil {
		return model.Friendship{}, storeErr(op, err)
	}
	return f, nil
}

// AcceptFriend accepts a pending request addressed to userID.
func (s *Service) AcceptFriend(ctx context.Context, userID string, friendshipID int64) (model.Friendship, error) {
	f, err := s.store.AcceptFriendship(ctx, userID, friendshipID)
	if err != nil {
		return model.Friendship{}, storeErr("service.AcceptFriend", err)
	}
	return f, nil
}

// ListFriends returns the users on the other side of accepted friendships.
func (s *Service) ListFriends(ctx context.Context, userID string) ([]model.User, error) {
	out, err := s.store.ListFriends(ctx, userID)
	if err != nil {
		return nil, storeErr("service.ListFriends", err)
	}
	return out, nil
}

// ListFriendRequests returns pending requests addressed to userID.
func (s *Service) ListFriendRequests(ctx context.Context, userID string) ([]model.Friendship, error) {
	out, err := s.store.ListFriendRequests(ctx, userID)
	if err != nil {
		return nil, storeErr("service.ListFriendRequests", err)
	}
	return out, nil
}

// CreateChallenge stores a challenge created by userID.
func (s *Service) CreateChallenge(ctx context.Context, userID string, c model.Challenge) (model.Challenge, error) { //nolint:gocritic // hugeParam: models travel by value
	const op = "service.CreateChallenge"
	c.Title = strings.TrimSpace(c.Title)
	c.ChallengeType = strings.TrimSpace(c.ChallengeType)
	if c.Status == "" {
		c.Status = model.ChallengeActive
	}
	switch {
	case c.Title == "":
		return model.Challenge{}, invalid("title is required")
	case c.ChallengeType == "":
		return model.Challenge{}, invalid("challengeType is required")
	case c.TargetValue < 0:
		return model.Challenge{}, invalid("targetValue must not be negative")
	case c.StartDate.IsZero() || c.EndDate.IsZero():
		return model.Challenge{}, invalid("startDate and endDate are required")
	case c.EndDate.Before(c.StartDate):
		return model.Challenge{}, invalid("endDate must not be before startDate")
	case !slices.Contains(challengeStatuses, c.Status):
		return model.Challenge{}, invalid("status must be one of %s", strings.Join(challengeStatuses, ", "))
	case c.ParticipantID == userID:
		return model.Challenge{}, invalid("cannot challenge yourself")
	}
	if c.ParticipantID != "" {
		if _, err := s.store.GetUser(ctx, c.ParticipantID); err != nil {
			return model.Challenge{}, storeErr(op, err)
		}
	}
	c.ID = 0
	c.CreatorID = userID
	c.WinnerID = ""
	out, err := s.store.CreateChallenge(ctx, c)
	if err != nil {
		return model.Challenge{}, storeErr(op, err)
	}
	return out, nil
}

// ListChallenges returns challenges userID created or takes part in.
func (s *Service) ListChallenges(ctx context.Context, userID string) ([]model.Challenge, error) {
	out, err := s.store.ListChallenges(ctx, userID)
	if err != nil {
		return nil, storeErr("service.ListChallenges", err)
	}
	return out, nil
}

// ListAchievements returns the user's badges, newest first.
func (s *Service) ListAchievements(ctx context.Context, userID string) ([]model.Achievement, error) {
	out, err := s.store.ListAchievements(ctx, userID)
	if err != nil {
		return nil, storeErr("service.ListAchievements", err)
	}
	return out, nil
}
