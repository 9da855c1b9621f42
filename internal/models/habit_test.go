package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestNewHabitDocument(t *testing.T) {
	now := time.Date(2024, 1, 4, 9, 30, 0, 0, time.UTC)
	fields := Fields{
		"title":     "Read",
		"_id":       "client-chosen",
		"createdAt": "yesterday",
		"isPublic":  true,
	}

	doc := NewHabitDocument(fields, now)

	assert.Equal(t, "Read", doc["title"])
	assert.Equal(t, true, doc["isPublic"])
	assert.Equal(t, now, doc[FieldCreatedAt])
	assert.NotContains(t, doc, FieldID)
	assert.Equal(t, "client-chosen", fields["_id"], "input bag must not be mutated")
}

func TestMergeFieldsDropsProtectedKeys(t *testing.T) {
	set := MergeFields(Fields{
		"title":             "Run",
		"isPublic":          false,
		"_id":               "x",
		"createdAt":         "x",
		"completionHistory": []string{"2024-01-01"},
		"currentStreak":     99,
		"bestStreak":        99,
	})

	assert.Equal(t, bson.M{"title": "Run", "isPublic": false}, set)
}

func TestHabitFromDocument(t *testing.T) {
	id := primitive.NewObjectID()
	created := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	doc := bson.M{
		"_id":               id,
		"userEmail":         "a@example.com",
		"isPublic":          true,
		"createdAt":         primitive.NewDateTimeFromTime(created),
		"completionHistory": primitive.A{"2024-01-01", "2024-01-02", int32(7)},
		"currentStreak":     int32(2),
		"bestStreak":        int64(5),
		"title":             "Read",
		"tags":              primitive.A{"books"},
	}

	h := HabitFromDocument(doc)

	assert.Equal(t, id, h.ID)
	assert.Equal(t, "a@example.com", h.OwnerEmail)
	assert.True(t, h.IsPublic)
	assert.True(t, created.Equal(h.CreatedAt))
	assert.Equal(t, []interface{}{"2024-01-01", "2024-01-02", int32(7)}, h.CompletionHistory)
	assert.Equal(t, []string{"2024-01-01", "2024-01-02"}, h.Days())
	assert.Equal(t, 2, h.CurrentStreak)
	assert.Equal(t, 5, h.BestStreak)
	assert.Equal(t, Fields{"title": "Read", "tags": primitive.A{"books"}}, h.Extra)
}

func TestHabitFromDocumentWrongTypes(t *testing.T) {
	h := HabitFromDocument(bson.M{"isPublic": "yes", "currentStreak": "three", "bestStreak": 2.5})

	assert.False(t, h.IsPublic)
	assert.Zero(t, h.CurrentStreak)
	assert.Nil(t, h.CompletionHistory)
	assert.Equal(t, Fields{"isPublic": "yes", "currentStreak": "three", "bestStreak": 2.5}, h.Extra)
}

func TestHabitFromDocumentEmptyHistory(t *testing.T) {
	h := HabitFromDocument(bson.M{"completionHistory": primitive.A{}})

	assert.NotNil(t, h.CompletionHistory)
	assert.Empty(t, h.Days())
}

func TestHabitMarshalJSON(t *testing.T) {
	id := primitive.NewObjectID()
	h := &Habit{
		ID:         id,
		OwnerEmail: "a@example.com",
		CreatedAt:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Extra:      Fields{"title": "Read"},
	}

	raw, err := json.Marshal(h)
	require.NoError(t, err)

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.Equal(t, id.Hex(), out["_id"])
	assert.Equal(t, "Read", out["title"])
	assert.Equal(t, "a@example.com", out["userEmail"])
	assert.Equal(t, "2024-01-01T00:00:00Z", out["createdAt"])
	assert.Equal(t, []interface{}{}, out["completionHistory"])
	assert.Equal(t, float64(0), out["bestStreak"])
}

func TestHabitMarshalJSONKeepsStoredValues(t *testing.T) {
	id := primitive.NewObjectID()
	h := HabitFromDocument(bson.M{
		"_id":               id,
		"title":             "Read",
		"isPublic":          "yes",
		"completionHistory": primitive.A{"2024-01-02", int32(20240101)},
	})

	raw, err := json.Marshal(h)
	require.NoError(t, err)

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.Equal(t, id.Hex(), out["_id"])
	assert.Equal(t, "yes", out["isPublic"])
	assert.Equal(t, []interface{}{"2024-01-02", float64(20240101)}, out["completionHistory"])
	for _, k := range []string{"userEmail", "createdAt", "currentStreak", "bestStreak"} {
		assert.NotContains(t, out, k, "%s was never stored", k)
	}
}
