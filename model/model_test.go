package model

import (
	"math"
	"testing"

	"github.com/go-playground/assert/v2"
)

func strptr(s string) *string { return &s }

func TestHasSingleAssignee(t *testing.T) {
	cases := []struct {
		name string
		task Task
		want bool
	}{
		{"team", Task{AssignedTo: AssignTeam, AssignedTeamUID: "t1"}, true},
		{"user", Task{AssignedTo: AssignUser, AssignedUserUID: "u1"}, true},
		{"team missing uid", Task{AssignedTo: AssignTeam}, false},
		{"both set", Task{AssignedTo: AssignUser, AssignedUserUID: "u1", AssignedTeamUID: "t1"}, false},
		{"kind mismatch", Task{AssignedTo: AssignTeam, AssignedUserUID: "u1"}, false},
		{"no kind", Task{AssignedUserUID: "u1"}, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, c.task.HasSingleAssignee())
		})
	}
}

func TestSanitizeKeepsOnlyMatchingField(t *testing.T) {
	n := 4.5
	item := ChecklistItem{
		ID:          "a",
		Text:        "weight",
		Type:        ItemNumberInput,
		Value:       strptr("stale"),
		NumberValue: &n,
		FileURI:     strptr("file://x"),
	}
	clean := item.Sanitize()
	assert.Equal(t, clean.Value == nil, true)
	assert.Equal(t, clean.FileURI == nil, true)
	assert.Equal(t, *clean.NumberValue, 4.5)

	// the copy does not alias the original
	*item.NumberValue = 9
	assert.Equal(t, *clean.NumberValue, 4.5)
}

func TestSanitizeDropsNaN(t *testing.T) {
	nan := math.NaN()
	item := ChecklistItem{ID: "a", Text: "count", Type: ItemNumberInput, NumberValue: &nan}
	assert.Equal(t, item.Sanitize().NumberValue == nil, true)
}

func TestSanitizeCheckboxCarriesNoValue(t *testing.T) {
	item := ChecklistItem{ID: "a", Text: "done?", Type: ItemCheckbox, Completed: true, Value: strptr("x")}
	clean := item.Sanitize()
	assert.Equal(t, clean, ChecklistItem{ID: "a", Text: "done?", Type: ItemCheckbox, Completed: true})
}

func TestNewItemIDUnique(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 1000; i++ {
		id := NewItemID()
		assert.Equal(t, seen[id], false)
		seen[id] = true
	}
}

func TestTaskPatchApplySwitchesAssignee(t *testing.T) {
	task := Task{UID: "x", AssignedTo: AssignTeam, AssignedTeamUID: "t1"}
	kind := AssignUser
	patch := TaskPatch{AssignedTo: &kind, AssignedUserUID: strptr("u1")}

	next := patch.Apply(task)
	assert.Equal(t, next.AssignedTo, AssignUser)
	assert.Equal(t, next.AssignedUserUID, "u1")
	assert.Equal(t, next.AssignedTeamUID, "")
	assert.Equal(t, next.HasSingleAssignee(), true)
	// original untouched
	assert.Equal(t, task.AssignedTeamUID, "t1")
}

func TestTaskCloneDoesNotShareChecklist(t *testing.T) {
	task := Task{ChecklistItems: []ChecklistItem{{ID: "a", Text: "one", Type: ItemTextInput, Value: strptr("v")}}}
	c := task.Clone()
	c.ChecklistItems[0].Completed = true
	*c.ChecklistItems[0].Value = "changed"
	assert.Equal(t, task.ChecklistItems[0].Completed, false)
	assert.Equal(t, *task.ChecklistItems[0].Value, "v")
}
