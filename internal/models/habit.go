package models

import (
	"encoding/json"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Document keys of the fields a Habit knows about.
const (
	FieldID                = "_id"
	FieldOwnerEmail        = "userEmail"
	FieldIsPublic          = "isPublic"
	FieldCreatedAt         = "createdAt"
	FieldCompletionHistory = "completionHistory"
	FieldCurrentStreak     = "currentStreak"
	FieldBestStreak        = "bestStreak"
)

// Fields is a schema-less bag of user supplied habit attributes.
type Fields map[string]interface{}

// Habit is a tracked habit. The known fields are typed; anything else the
// client stored on the document is kept verbatim in Extra, including known
// keys whose stored value has an unexpected type.
type Habit struct {
	ID                primitive.ObjectID
	OwnerEmail        string
	IsPublic          bool
	CreatedAt         time.Time
	CompletionHistory []interface{}
	CurrentStreak     int
	BestStreak        int
	Extra             Fields

	// unset holds the known keys that were not decoded from the document.
	unset map[string]bool
}

// Days returns the string entries of the completion history.
func (h *Habit) Days() []string {
	days := make([]string, 0, len(h.CompletionHistory))
	for _, item := range h.CompletionHistory {
		if s, ok := item.(string); ok {
			days = append(days, s)
		}
	}
	return days
}

// StreakUpdate is the outcome of a completion. CompletionHistory is the
// history as stored and is not written back.
type StreakUpdate struct {
	CompletionHistory []interface{} `json:"completionHistory" bson:"-"`
	CurrentStreak     int           `json:"currentStreak" bson:"currentStreak"`
	BestStreak        int           `json:"bestStreak" bson:"bestStreak"`
}

// immutable keys are never taken from a client on create or update.
var immutable = map[string]bool{
	FieldID:        true,
	FieldCreatedAt: true,
}

// derived keys are owned by the completion flow.
var derived = map[string]bool{
	FieldCompletionHistory: true,
	FieldCurrentStreak:     true,
	FieldBestStreak:        true,
}

// NewHabitDocument builds the document to insert for a create request.
// Client fields are kept verbatim except _id; createdAt is always now.
func NewHabitDocument(fields Fields, now time.Time) bson.M {
	doc := bson.M{}
	for k, v := range fields {
		if k == FieldID {
			continue
		}
		doc[k] = v
	}
	doc[FieldCreatedAt] = now
	return doc
}

// MergeFields returns the subset of fields a partial update may set.
func MergeFields(fields Fields) bson.M {
	set := bson.M{}
	for k, v := range fields {
		if immutable[k] || derived[k] {
			continue
		}
		set[k] = v
	}
	return set
}

var knownFields = []string{
	FieldID,
	FieldOwnerEmail,
	FieldIsPublic,
	FieldCreatedAt,
	FieldCompletionHistory,
	FieldCurrentStreak,
	FieldBestStreak,
}

// HabitFromDocument maps a raw document onto a Habit. A known field holding
// a value of an unexpected type is kept in Extra under its own key.
func HabitFromDocument(doc bson.M) *Habit {
	h := &Habit{Extra: Fields{}, unset: map[string]bool{}}
	for _, k := range knownFields {
		h.unset[k] = true
	}

	for k, v := range doc {
		ok := true
		switch k {
		case FieldID:
			h.ID, ok = v.(primitive.ObjectID)
		case FieldOwnerEmail:
			h.OwnerEmail, ok = v.(string)
		case FieldIsPublic:
			h.IsPublic, ok = v.(bool)
		case FieldCreatedAt:
			h.CreatedAt, ok = toTime(v)
		case FieldCompletionHistory:
			h.CompletionHistory, ok = toList(v)
		case FieldCurrentStreak:
			h.CurrentStreak, ok = toInt(v)
		case FieldBestStreak:
			h.BestStreak, ok = toInt(v)
		default:
			h.Extra[k] = v
			continue
		}
		if ok {
			delete(h.unset, k)
		} else {
			h.Extra[k] = v
		}
	}
	return h
}

// MarshalJSON flattens the habit back into a single object the way it is
// stored. Known fields missing from the stored document are left out.
func (h Habit) MarshalJSON() ([]byte, error) {
	out := make(map[string]interface{}, len(h.Extra)+len(knownFields))
	history := h.CompletionHistory
	if history == nil {
		history = []interface{}{}
	}
	known := map[string]interface{}{
		FieldID:                h.ID.Hex(),
		FieldOwnerEmail:        h.OwnerEmail,
		FieldIsPublic:          h.IsPublic,
		FieldCreatedAt:         h.CreatedAt,
		FieldCompletionHistory: history,
		FieldCurrentStreak:     h.CurrentStreak,
		FieldBestStreak:        h.BestStreak,
	}
	for k, v := range known {
		if !h.unset[k] {
			out[k] = v
		}
	}
	for k, v := range h.Extra {
		out[k] = v
	}
	return json.Marshal(out)
}

func toTime(v interface{}) (time.Time, bool) {
	switch t := v.(type) {
	case primitive.DateTime:
		return t.Time().UTC(), true
	case time.Time:
		return t, true
	}
	return time.Time{}, false
}

func toList(v interface{}) ([]interface{}, bool) {
	switch a := v.(type) {
	case primitive.A:
		return append([]interface{}{}, a...), true
	case []interface{}:
		return append([]interface{}{}, a...), true
	case []string:
		out := make([]interface{}, len(a))
		for i, s := range a {
			out[i] = s
		}
		return out, true
	}
	return nil, false
}

func toInt(v interface{}) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case float64:
		if n == float64(int(n)) {
			return int(n), true
		}
	}
	return 0, false
}
