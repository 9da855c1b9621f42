package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Dias221467/Habit_Tracker/internal/models"
	"github.com/Dias221467/Habit_Tracker/internal/repository"
	"github.com/Dias221467/Habit_Tracker/internal/streak"
	"github.com/Dias221467/Habit_Tracker/pkg/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PublicPageSize is how many habits the public landing listing returns.
const PublicPageSize = 6

var (
	// ErrInvalidHabitID is returned when an id is not a valid ObjectID.
	ErrInvalidHabitID = errors.New("invalid habit ID")
	// ErrOwnerEmailRequired is returned when listing by owner without an email.
	ErrOwnerEmailRequired = errors.New("owner email is required")
)

// HabitStore is the datastore the service works against.
// *repository.HabitRepository is the MongoDB implementation.
type HabitStore interface {
	CreateHabit(ctx context.Context, doc bson.M) (primitive.ObjectID, error)
	GetHabitByID(ctx context.Context, id primitive.ObjectID) (*models.Habit, error)
	FindHabits(ctx context.Context, filter repository.HabitFilter, limit int64) ([]*models.Habit, error)
	UpdateHabit(ctx context.Context, id primitive.ObjectID, set bson.M) (int64, error)
	DeleteHabit(ctx context.Context, id primitive.ObjectID) (int64, error)
	AddCompletionDay(ctx context.Context, id primitive.ObjectID, day string) error
	SaveStreaks(ctx context.Context, id primitive.ObjectID, update models.StreakUpdate) error
}

// HabitService encapsulates the business logic for habits.
type HabitService struct {
	store HabitStore
	now   func() time.Time
}

// NewHabitService creates a new instance of HabitService.
func NewHabitService(store HabitStore) *HabitService {
	return &HabitService{
		store: store,
		now:   time.Now,
	}
}

// WithClock replaces the time source used for createdAt and "today".
func (s *HabitService) WithClock(now func() time.Time) *HabitService {
	s.now = now
	return s
}

func parseHabitID(id string) (primitive.ObjectID, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		logger.Log.WithField("habit_id", id).WithError(err).Warn("Invalid habit ID")
		return primitive.NilObjectID, fmt.Errorf("%w: %q", ErrInvalidHabitID, id)
	}
	return objID, nil
}

// CreateHabit stamps createdAt on the submitted fields and stores them.
func (s *HabitService) CreateHabit(ctx context.Context, fields models.Fields) (primitive.ObjectID, error) {
	id, err := s.store.CreateHabit(ctx, models.NewHabitDocument(fields, s.now()))
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("failed to create habit: %w", err)
	}
	return id, nil
}

// ListPublicHabits returns the newest public habits, at most PublicPageSize.
func (s *HabitService) ListPublicHabits(ctx context.Context) ([]*models.Habit, error) {
	return s.listPublic(ctx, PublicPageSize)
}

// ListAllPublicHabits returns every public habit, newest first.
func (s *HabitService) ListAllPublicHabits(ctx context.Context) ([]*models.Habit, error) {
	return s.listPublic(ctx, 0)
}

func (s *HabitService) listPublic(ctx context.Context, limit int64) ([]*models.Habit, error) {
	habits, err := s.store.FindHabits(ctx, repository.HabitFilter{PublicOnly: true}, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list public habits: %w", err)
	}
	return habits, nil
}

// GetHabit retrieves a habit by its ID.
func (s *HabitService) GetHabit(ctx context.Context, id string) (*models.Habit, error) {
	objID, err := parseHabitID(id)
	if err != nil {
		return nil, err
	}

	habit, err := s.store.GetHabitByID(ctx, objID)
	if err != nil {
		return nil, fmt.Errorf("failed to get habit: %w", err)
	}
	return habit, nil
}

// GetHabitsByOwner returns the habits created by email, newest first.
func (s *HabitService) GetHabitsByOwner(ctx context.Context, email string) ([]*models.Habit, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, ErrOwnerEmailRequired
	}

	habits, err := s.store.FindHabits(ctx, repository.HabitFilter{OwnerEmail: email}, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to list habits for owner: %w", err)
	}
	return habits, nil
}

// UpdateHabit merges fields into the habit. It reports whether anything
// actually changed.
func (s *HabitService) UpdateHabit(ctx context.Context, id string, fields models.Fields) (bool, error) {
	objID, err := parseHabitID(id)
	if err != nil {
		return false, err
	}

	modified, err := s.store.UpdateHabit(ctx, objID, models.MergeFields(fields))
	if err != nil {
		return false, fmt.Errorf("failed to update habit: %w", err)
	}
	return modified > 0, nil
}

// DeleteHabit removes a habit and reports whether one was removed.
func (s *HabitService) DeleteHabit(ctx context.Context, id string) (bool, error) {
	objID, err := parseHabitID(id)
	if err != nil {
		return false, err
	}

	deleted, err := s.store.DeleteHabit(ctx, objID)
	if err != nil {
		return false, fmt.Errorf("failed to delete habit: %w", err)
	}
	return deleted > 0, nil
}

// CompleteHabit marks the habit done for the current UTC day and recomputes
// its streaks from the full history.
//
// Adding the day is atomic. The read-recompute-write of the streak fields
// that follows is not, so two completions racing on the same habit may
// leave the derived fields of the slower one.
func (s *HabitService) CompleteHabit(ctx context.Context, id string) (*models.StreakUpdate, error) {
	objID, err := parseHabitID(id)
	if err != nil {
		return nil, err
	}
	today := streak.Today(s.now())
	log := logger.Log.WithField("habit_id", id).WithField("day", today)

	if err := s.store.AddCompletionDay(ctx, objID, today); err != nil {
		return nil, fmt.Errorf("failed to mark habit complete: %w", err)
	}

	habit, err := s.store.GetHabitByID(ctx, objID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload habit: %w", err)
	}

	history := habit.CompletionHistory
	if history == nil {
		history = []interface{}{}
	}
	result := streak.Compute(habit.Days())
	update := models.StreakUpdate{
		CompletionHistory: history,
		CurrentStreak:     result.Current,
		BestStreak:        result.Best,
	}

	if err := s.store.SaveStreaks(ctx, objID, update); err != nil {
		return nil, fmt.Errorf("failed to save streaks: %w", err)
	}

	log.WithFields(map[string]interface{}{
		"current_streak": update.CurrentStreak,
		"best_streak":    update.BestStreak,
	}).Info("Habit marked complete")
	return &update, nil
}
