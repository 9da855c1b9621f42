package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/Dias221467/Habit_Tracker/internal/models"
	"github.com/Dias221467/Habit_Tracker/pkg/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrHabitNotFound is returned when no habit matches the given id.
var ErrHabitNotFound = errors.New("habit not found")

// HabitFilter narrows a habit listing. Zero values match everything.
type HabitFilter struct {
	PublicOnly bool
	OwnerEmail string
}

func (f HabitFilter) toBSON() bson.M {
	filter := bson.M{}
	if f.PublicOnly {
		filter[models.FieldIsPublic] = true
	}
	if f.OwnerEmail != "" {
		filter[models.FieldOwnerEmail] = f.OwnerEmail
	}
	return filter
}

// HabitRepository handles database operations related to habits
type HabitRepository struct {
	collection *mongo.Collection
}

// NewHabitRepository creates a new instance of HabitRepository
func NewHabitRepository(db *mongo.Database, collection string) *HabitRepository {
	return &HabitRepository{
		collection: db.Collection(collection),
	}
}

// CreateHabit inserts a habit document and returns its generated id
func (r *HabitRepository) CreateHabit(ctx context.Context, doc bson.M) (primitive.ObjectID, error) {
	result, err := r.collection.InsertOne(ctx, doc)
	if err != nil {
		logger.Log.WithError(err).Error("Failed to insert habit")
		return primitive.NilObjectID, fmt.Errorf("failed to insert habit: %w", err)
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		logger.Log.Error("Failed to cast inserted ID")
		return primitive.NilObjectID, fmt.Errorf("failed to cast inserted ID")
	}

	logger.Log.WithField("habit_id", insertedID.Hex()).Info("Habit created successfully")
	return insertedID, nil
}

// GetHabitByID fetches a habit by its ID
func (r *HabitRepository) GetHabitByID(ctx context.Context, id primitive.ObjectID) (*models.Habit, error) {
	var doc bson.M
	err := r.collection.FindOne(ctx, bson.M{models.FieldID: id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		logger.Log.WithField("habit_id", id.Hex()).Warn("Habit not found")
		return nil, ErrHabitNotFound
	}
	if err != nil {
		logger.Log.WithError(err).WithField("habit_id", id.Hex()).Error("Failed to find habit by ID")
		return nil, fmt.Errorf("failed to find habit: %w", err)
	}

	return models.HabitFromDocument(doc), nil
}

// FindHabits returns habits matching filter, newest first. A limit of zero
// means no limit.
func (r *HabitRepository) FindHabits(ctx context.Context, filter HabitFilter, limit int64) ([]*models.Habit, error) {
	opts := options.Find().SetSort(bson.D{{Key: models.FieldCreatedAt, Value: -1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}

	cursor, err := r.collection.Find(ctx, filter.toBSON(), opts)
	if err != nil {
		logger.Log.WithError(err).Error("Failed to fetch habits")
		return nil, fmt.Errorf("failed to fetch habits: %w", err)
	}
	defer cursor.Close(ctx)

	habits := []*models.Habit{}
	for cursor.Next(ctx) {
		var doc bson.M
		if err := cursor.Decode(&doc); err != nil {
			logger.Log.WithError(err).Error("Failed to decode habit")
			return nil, fmt.Errorf("failed to decode habit: %w", err)
		}
		habits = append(habits, models.HabitFromDocument(doc))
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate habits: %w", err)
	}

	logger.Log.WithFields(map[string]interface{}{
		"public_only": filter.PublicOnly,
		"owner":       filter.OwnerEmail,
		"count":       len(habits),
	}).Info("Habits fetched successfully")
	return habits, nil
}

// UpdateHabit merges set into the habit and reports how many documents
// changed.
func (r *HabitRepository) UpdateHabit(ctx context.Context, id primitive.ObjectID, set bson.M) (int64, error) {
	if len(set) == 0 {
		return 0, nil
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{models.FieldID: id}, bson.M{"$set": set})
	if err != nil {
		logger.Log.WithError(err).WithField("habit_id", id.Hex()).Error("Failed to update habit")
		return 0, fmt.Errorf("failed to update habit: %w", err)
	}

	logger.Log.WithField("habit_id", id.Hex()).WithField("modified", result.ModifiedCount).Info("Habit updated")
	return result.ModifiedCount, nil
}

// DeleteHabit deletes a habit by its ID and reports how many documents
// were removed.
func (r *HabitRepository) DeleteHabit(ctx context.Context, id primitive.ObjectID) (int64, error) {
	result, err := r.collection.DeleteOne(ctx, bson.M{models.FieldID: id})
	if err != nil {
		logger.Log.WithError(err).WithField("habit_id", id.Hex()).Error("Failed to delete habit")
		return 0, fmt.Errorf("failed to delete habit: %w", err)
	}

	logger.Log.WithField("habit_id", id.Hex()).WithField("deleted", result.DeletedCount).Info("Habit deleted")
	return result.DeletedCount, nil
}

// AddCompletionDay adds day to the habit's completion history.
func (r *HabitRepository) AddCompletionDay(ctx context.Context, id primitive.ObjectID, day string) error {
	update := bson.M{
		"$addToSet": bson.M{models.FieldCompletionHistory: day}, // Prevents duplicates
	}

	_, err := r.collection.UpdateOne(ctx, bson.M{models.FieldID: id}, update)
	if err != nil {
		logger.Log.WithError(err).WithFields(map[string]interface{}{
			"habit_id": id.Hex(),
			"day":      day,
		}).Error("Failed to add completion day")
		return fmt.Errorf("failed to add completion day: %w", err)
	}
	return nil
}

// SaveStreaks writes the derived streaks. The completion history itself is
// only ever changed by AddCompletionDay.
func (r *HabitRepository) SaveStreaks(ctx context.Context, id primitive.ObjectID, update models.StreakUpdate) error {
	set := bson.M{
		models.FieldCurrentStreak: update.CurrentStreak,
		models.FieldBestStreak:    update.BestStreak,
	}

	_, err := r.collection.UpdateOne(ctx, bson.M{models.FieldID: id}, bson.M{"$set": set})
	if err != nil {
		logger.Log.WithError(err).WithField("habit_id", id.Hex()).Error("Failed to save streaks")
		return fmt.Errorf("failed to save streaks: %w", err)
	}

	logger.Log.WithFields(map[string]interface{}{
		"habit_id":       id.Hex(),
		"current_streak": update.CurrentStreak,
		"best_streak":    update.BestStreak,
	}).Debug("Streaks saved")
	return nil
}
