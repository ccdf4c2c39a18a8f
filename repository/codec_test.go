package repository

import (
	"reflect"
	"strings"
	"testing"
	"time"

	"checklistapp/model"
	"checklistapp/store"

	"github.com/go-playground/assert/v2"
)

var (
	fixtureDue     = time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)
	fixtureCreated = time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)
)

func rawTask() store.Document {
	return store.Document{ID: "t1", Data: map[string]interface{}{
		"title":           "Inspect",
		"description":     "north wing",
		"dueDate":         fixtureDue,
		"priority":        "alta",
		"completed":       false,
		"assignedTo":      "team",
		"assignedTeamUID": "team1",
		"createdBy":       "m1",
		"createdAt":       fixtureCreated,
		"checklistItems": []interface{}{
			map[string]interface{}{"id": "i1", "text": "helmet", "completed": true},
			map[string]interface{}{"id": "i2", "text": "reading", "type": "number", "completed": false, "numberValue": 4.5},
		},
	}}
}

func TestDecodeIsIdempotent(t *testing.T) {
	first, err := taskCodec{}.Decode(rawTask())
	assert.Equal(t, err, nil)
	second, err := taskCodec{}.Decode(rawTask())
	assert.Equal(t, err, nil)
	assert.Equal(t, first, second)

	team := store.Document{ID: "team1", Data: map[string]interface{}{
		"name": "Alpha", "managerUID": "m1", "memberUIDs": []interface{}{"w1", "w2"}, "createdAt": fixtureCreated,
	}}
	teamA, err := teamCodec{}.Decode(team)
	assert.Equal(t, err, nil)
	teamB, _ := teamCodec{}.Decode(team)
	assert.Equal(t, teamA, teamB)

	user := store.Document{ID: "w1", Data: map[string]interface{}{
		"email": "w1@example.com", "name": "Worker One", "role": "worker", "teamUIDs": []interface{}{"team1"},
	}}
	userA, err := userCodec{}.Decode(user)
	assert.Equal(t, err, nil)
	userB, _ := userCodec{}.Decode(user)
	assert.Equal(t, userA, userB)
}

func TestDecodeEncodeDecode(t *testing.T) {
	first, err := taskCodec{}.Decode(rawTask())
	assert.Equal(t, err, nil)

	data, _ := store.Normalize(taskCodec{}.Encode(first))
	again, err := taskCodec{}.Decode(store.Document{ID: "t1", Data: data.(map[string]interface{})})
	assert.Equal(t, err, nil)
	assert.Equal(t, again, first)
}

// firestoreNames lists the firestore tag names of v's fields, skipping "-".
func firestoreNames(v interface{}) map[string]bool {
	names := map[string]bool{}
	rt := reflect.TypeOf(v)
	for i := 0; i < rt.NumField(); i++ {
		name, _, _ := strings.Cut(rt.Field(i).Tag.Get("firestore"), ",")
		if name != "" && name != "-" {
			names[name] = true
		}
	}
	return names
}

func TestFirestoreTagsMatchEncodedFields(t *testing.T) {
	task, err := taskCodec{}.Decode(rawTask())
	assert.Equal(t, err, nil)
	task.AssignedUserUID = "u1"
	taskFields := firestoreNames(model.Task{})
	for key := range (taskCodec{}).Encode(task) {
		assert.Equal(t, taskFields[key], true)
	}
	for _, item := range task.ChecklistItems {
		itemFields := firestoreNames(model.ChecklistItem{})
		for key := range encodeItem(item) {
			assert.Equal(t, itemFields[key], true)
		}
	}

	teamFields := firestoreNames(model.Team{})
	for key := range (teamCodec{}).Encode(model.Team{Name: "a", Description: "d", ManagerUID: "m", MemberUIDs: []string{"x", "y"}}) {
		assert.Equal(t, teamFields[key], true)
	}
	userFields := firestoreNames(model.User{})
	for key := range (userCodec{}).Encode(model.User{UID: "u", Email: "e@x.io", Name: "n", Role: model.RoleWorker}) {
		assert.Equal(t, userFields[key], true)
	}
}
