package repository

import (
	"context"
	"testing"
	"time"

	"github.com/Dias221467/Habit_Tracker/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

const ns = "habits-db.habits"

func newMock(t *testing.T) *mtest.T {
	return mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
}

func writeError() bson.D {
	return mtest.CreateWriteErrorsResponse(mtest.WriteError{Index: 0, Code: 11000, Message: "duplicate key error"})
}

func TestCreateHabit(t *testing.T) {
	mt := newMock(t)

	mt.Run("success", func(mt *mtest.T) {
		repo := NewHabitRepository(mt.DB, "habits")
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		id, err := repo.CreateHabit(context.Background(), models.NewHabitDocument(models.Fields{"title": "Read"}, time.Now()))
		require.NoError(mt, err)
		assert.False(mt, id.IsZero())
	})

	mt.Run("write error", func(mt *mtest.T) {
		repo := NewHabitRepository(mt.DB, "habits")
		mt.AddMockResponses(writeError())

		_, err := repo.CreateHabit(context.Background(), bson.M{"title": "Read"})
		assert.Error(mt, err)
	})
}

func TestGetHabitByID(t *testing.T) {
	mt := newMock(t)

	mt.Run("found", func(mt *mtest.T) {
		repo := NewHabitRepository(mt.DB, "habits")
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, bson.D{
			{Key: "_id", Value: id},
			{Key: "title", Value: "Read"},
			{Key: "userEmail", Value: "a@example.com"},
			{Key: "completionHistory", Value: bson.A{"2024-01-01"}},
			{Key: "currentStreak", Value: 1},
			{Key: "bestStreak", Value: 1},
		}))

		habit, err := repo.GetHabitByID(context.Background(), id)
		require.NoError(mt, err)
		assert.Equal(mt, id, habit.ID)
		assert.Equal(mt, "a@example.com", habit.OwnerEmail)
		assert.Equal(mt, []interface{}{"2024-01-01"}, habit.CompletionHistory)
		assert.Equal(mt, 1, habit.BestStreak)
		assert.Equal(mt, "Read", habit.Extra["title"])
	})

	mt.Run("not found", func(mt *mtest.T) {
		repo := NewHabitRepository(mt.DB, "habits")
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))

		_, err := repo.GetHabitByID(context.Background(), primitive.NewObjectID())
		assert.ErrorIs(mt, err, ErrHabitNotFound)
	})
}

func TestFindHabits(t *testing.T) {
	mt := newMock(t)

	mt.Run("public with limit", func(mt *mtest.T) {
		repo := NewHabitRepository(mt.DB, "habits")
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch,
			bson.D{{Key: "_id", Value: primitive.NewObjectID()}, {Key: "isPublic", Value: true}},
			bson.D{{Key: "_id", Value: primitive.NewObjectID()}, {Key: "isPublic", Value: true}},
		))
		mt.ClearEvents()

		habits, err := repo.FindHabits(context.Background(), HabitFilter{PublicOnly: true}, 6)
		require.NoError(mt, err)
		assert.Len(mt, habits, 2)
		assert.True(mt, habits[0].IsPublic)

		evt := mt.GetStartedEvent()
		require.NotNil(mt, evt)
		assert.Equal(mt, "find", evt.CommandName)
		assert.Equal(mt, int64(6), evt.Command.Lookup("limit").AsInt64())
		assert.True(mt, evt.Command.Lookup("filter", "isPublic").Boolean())
		assert.Equal(mt, int64(-1), evt.Command.Lookup("sort", "createdAt").AsInt64())
	})

	mt.Run("by owner without limit", func(mt *mtest.T) {
		repo := NewHabitRepository(mt.DB, "habits")
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))
		mt.ClearEvents()

		habits, err := repo.FindHabits(context.Background(), HabitFilter{OwnerEmail: "a@example.com"}, 0)
		require.NoError(mt, err)
		assert.NotNil(mt, habits)
		assert.Empty(mt, habits)

		evt := mt.GetStartedEvent()
		require.NotNil(mt, evt)
		_, err = evt.Command.LookupErr("limit")
		assert.Error(mt, err)
		assert.Equal(mt, "a@example.com", evt.Command.Lookup("filter", "userEmail").StringValue())
	})
}

func TestUpdateHabit(t *testing.T) {
	mt := newMock(t)

	mt.Run("modified", func(mt *mtest.T) {
		repo := NewHabitRepository(mt.DB, "habits")
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1}))

		modified, err := repo.UpdateHabit(context.Background(), primitive.NewObjectID(), bson.M{"title": "Run"})
		require.NoError(mt, err)
		assert.Equal(mt, int64(1), modified)
	})

	mt.Run("empty set skips the datastore", func(mt *mtest.T) {
		repo := NewHabitRepository(mt.DB, "habits")
		mt.ClearEvents()

		modified, err := repo.UpdateHabit(context.Background(), primitive.NewObjectID(), bson.M{})
		require.NoError(mt, err)
		assert.Zero(mt, modified)
		assert.Nil(mt, mt.GetStartedEvent())
	})

	mt.Run("write error", func(mt *mtest.T) {
		repo := NewHabitRepository(mt.DB, "habits")
		mt.AddMockResponses(writeError())

		_, err := repo.UpdateHabit(context.Background(), primitive.NewObjectID(), bson.M{"title": "Run"})
		assert.Error(mt, err)
	})
}

func TestDeleteHabit(t *testing.T) {
	mt := newMock(t)

	mt.Run("deleted", func(mt *mtest.T) {
		repo := NewHabitRepository(mt.DB, "habits")
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}))

		deleted, err := repo.DeleteHabit(context.Background(), primitive.NewObjectID())
		require.NoError(mt, err)
		assert.Equal(mt, int64(1), deleted)
	})

	mt.Run("nothing to delete", func(mt *mtest.T) {
		repo := NewHabitRepository(mt.DB, "habits")
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}))

		deleted, err := repo.DeleteHabit(context.Background(), primitive.NewObjectID())
		require.NoError(mt, err)
		assert.Zero(mt, deleted)
	})
}

func TestAddCompletionDay(t *testing.T) {
	mt := newMock(t)

	mt.Run("success", func(mt *mtest.T) {
		repo := NewHabitRepository(mt.DB, "habits")
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1}))
		mt.ClearEvents()

		err := repo.AddCompletionDay(context.Background(), primitive.NewObjectID(), "2024-01-04")
		require.NoError(mt, err)

		evt := mt.GetStartedEvent()
		require.NotNil(mt, evt)
		assert.Equal(mt, "update", evt.CommandName)
	})

	mt.Run("write error", func(mt *mtest.T) {
		repo := NewHabitRepository(mt.DB, "habits")
		mt.AddMockResponses(writeError())

		err := repo.AddCompletionDay(context.Background(), primitive.NewObjectID(), "2024-01-04")
		assert.Error(mt, err)
	})
}

func TestSaveStreaks(t *testing.T) {
	mt := newMock(t)

	mt.Run("success", func(mt *mtest.T) {
		repo := NewHabitRepository(mt.DB, "habits")
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1}))
		mt.ClearEvents()

		err := repo.SaveStreaks(context.Background(), primitive.NewObjectID(), models.StreakUpdate{
			CompletionHistory: []interface{}{"2024-01-01", "2024-01-02"},
			CurrentStreak:     2,
			BestStreak:        2,
		})
		assert.NoError(mt, err)

		evt := mt.GetStartedEvent()
		require.NotNil(mt, evt)
		assert.Equal(mt, "update", evt.CommandName)
		assert.NotContains(mt, evt.Command.String(), "completionHistory", "history is only changed by $addToSet")
	})

	mt.Run("write error", func(mt *mtest.T) {
		repo := NewHabitRepository(mt.DB, "habits")
		mt.AddMockResponses(writeError())

		err := repo.SaveStreaks(context.Background(), primitive.NewObjectID(), models.StreakUpdate{})
		assert.Error(mt, err)
	})
}
