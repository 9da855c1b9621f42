// Package testutil provides an in-memory habit store for tests.
package testutil

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"sync"
	"time"

	"github.com/Dias221467/Habit_Tracker/internal/models"
	"github.com/Dias221467/Habit_Tracker/internal/repository"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryHabitStore keeps habit documents in a map and mimics the MongoDB
// semantics the service relies on: $set merges, $addToSet de-duplicates,
// and modified/deleted counts reflect real changes.
type MemoryHabitStore struct {
	mu   sync.Mutex
	docs map[primitive.ObjectID]bson.M

	// Errors makes the named method fail with the given error.
	Errors map[string]error
}

// NewMemoryHabitStore returns an empty store.
func NewMemoryHabitStore() *MemoryHabitStore {
	return &MemoryHabitStore{
		docs:   map[primitive.ObjectID]bson.M{},
		Errors: map[string]error{},
	}
}

func (m *MemoryHabitStore) fail(method string) error {
	return m.Errors[method]
}

// Insert stores doc as is and returns its id. It is meant for seeding.
func (m *MemoryHabitStore) Insert(doc bson.M) primitive.ObjectID {
	m.mu.Lock()
	defer m.mu.Unlock()

	id, ok := doc[models.FieldID].(primitive.ObjectID)
	if !ok {
		id = primitive.NewObjectID()
	}
	stored := copyDoc(doc)
	stored[models.FieldID] = id
	m.docs[id] = stored
	return id
}

// Doc returns a copy of the stored document, or nil.
func (m *MemoryHabitStore) Doc(id primitive.ObjectID) bson.M {
	m.mu.Lock()
	defer m.mu.Unlock()

	doc, ok := m.docs[id]
	if !ok {
		return nil
	}
	return copyDoc(doc)
}

// Len returns the number of stored habits.
func (m *MemoryHabitStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.docs)
}

func (m *MemoryHabitStore) CreateHabit(_ context.Context, doc bson.M) (primitive.ObjectID, error) {
	if err := m.fail("CreateHabit"); err != nil {
		return primitive.NilObjectID, err
	}
	return m.Insert(doc), nil
}

func (m *MemoryHabitStore) GetHabitByID(_ context.Context, id primitive.ObjectID) (*models.Habit, error) {
	if err := m.fail("GetHabitByID"); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	doc, ok := m.docs[id]
	if !ok {
		return nil, repository.ErrHabitNotFound
	}
	return models.HabitFromDocument(copyDoc(doc)), nil
}

func (m *MemoryHabitStore) FindHabits(_ context.Context, filter repository.HabitFilter, limit int64) ([]*models.Habit, error) {
	if err := m.fail("FindHabits"); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	habits := []*models.Habit{}
	for _, doc := range m.docs {
		h := models.HabitFromDocument(copyDoc(doc))
		if filter.PublicOnly && !h.IsPublic {
			continue
		}
		if filter.OwnerEmail != "" && h.OwnerEmail != filter.OwnerEmail {
			continue
		}
		habits = append(habits, h)
	}
	sort.Slice(habits, func(i, j int) bool { return habits[i].CreatedAt.After(habits[j].CreatedAt) })
	if limit > 0 && int64(len(habits)) > limit {
		habits = habits[:limit]
	}
	return habits, nil
}

func (m *MemoryHabitStore) UpdateHabit(_ context.Context, id primitive.ObjectID, set bson.M) (int64, error) {
	if err := m.fail("UpdateHabit"); err != nil {
		return 0, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	doc, ok := m.docs[id]
	if !ok {
		return 0, nil
	}
	var changed bool
	for k, v := range set {
		if old, exists := doc[k]; !exists || !reflect.DeepEqual(old, v) {
			doc[k] = v
			changed = true
		}
	}
	if changed {
		return 1, nil
	}
	return 0, nil
}

func (m *MemoryHabitStore) DeleteHabit(_ context.Context, id primitive.ObjectID) (int64, error) {
	if err := m.fail("DeleteHabit"); err != nil {
		return 0, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.docs[id]; !ok {
		return 0, nil
	}
	delete(m.docs, id)
	return 1, nil
}

func (m *MemoryHabitStore) AddCompletionDay(_ context.Context, id primitive.ObjectID, day string) error {
	if err := m.fail("AddCompletionDay"); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	doc, ok := m.docs[id]
	if !ok {
		return nil
	}
	history := models.HabitFromDocument(doc).CompletionHistory
	if raw, present := doc[models.FieldCompletionHistory]; present && history == nil {
		return fmt.Errorf("cannot apply $addToSet to non-array field %s of type %T", models.FieldCompletionHistory, raw)
	}
	for _, d := range history {
		if s, ok := d.(string); ok && s == day {
			return nil
		}
	}
	doc[models.FieldCompletionHistory] = append(history, day)
	return nil
}

func (m *MemoryHabitStore) SaveStreaks(_ context.Context, id primitive.ObjectID, update models.StreakUpdate) error {
	if err := m.fail("SaveStreaks"); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	doc, ok := m.docs[id]
	if !ok {
		return nil
	}
	doc[models.FieldCurrentStreak] = update.CurrentStreak
	doc[models.FieldBestStreak] = update.BestStreak
	return nil
}

// SeedHabit inserts a habit with the given owner, visibility, creation time
// and history.
func (m *MemoryHabitStore) SeedHabit(owner string, public bool, createdAt time.Time, history ...string) primitive.ObjectID {
	doc := bson.M{
		models.FieldOwnerEmail: owner,
		models.FieldIsPublic:   public,
		models.FieldCreatedAt:  createdAt,
	}
	if len(history) > 0 {
		doc[models.FieldCompletionHistory] = history
	}
	return m.Insert(doc)
}

func copyDoc(doc bson.M) bson.M {
	out := make(bson.M, len(doc))
	for k, v := range doc {
		switch a := v.(type) {
		case []string:
			v = append([]string(nil), a...)
		case []interface{}:
			v = append([]interface{}(nil), a...)
		case primitive.A:
			v = append(primitive.A(nil), a...)
		}
		out[k] = v
	}
	return out
}
