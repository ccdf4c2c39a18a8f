package model

import "time"

type Priority string

// Wire values are the ones the mobile clients already store.
const (
	PriorityHigh   Priority = "alta"
	PriorityMedium Priority = "media"
	PriorityLow    Priority = "baja"
)

func (p Priority) IsValid() bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

type AssigneeKind string

const (
	AssignTeam AssigneeKind = "team"
	AssignUser AssigneeKind = "user"
)

func (k AssigneeKind) IsValid() bool {
	return k == AssignTeam || k == AssignUser
}

// Task is assigned to exactly one of a team or a user, matching AssignedTo.
type Task struct {
	UID             string          `json:"uid" firestore:"-"`
	Title           string          `json:"title" firestore:"title" validate:"required"`
	Description     string          `json:"description" firestore:"description"`
	DueDate         time.Time       `json:"dueDate" firestore:"dueDate" validate:"required"`
	Priority        Priority        `json:"priority" firestore:"priority" validate:"required,oneof=alta media baja"`
	Completed       bool            `json:"completed" firestore:"completed"`
	AssignedTo      AssigneeKind    `json:"assignedTo" firestore:"assignedTo" validate:"required,oneof=team user"`
	AssignedTeamUID string          `json:"assignedTeamUID,omitempty" firestore:"assignedTeamUID,omitempty"`
	AssignedUserUID string          `json:"assignedUserUID,omitempty" firestore:"assignedUserUID,omitempty"`
	CreatedBy       string          `json:"createdBy" firestore:"createdBy" validate:"required"`
	CreatedAt       time.Time       `json:"createdAt" firestore:"createdAt"`
	ChecklistItems  []ChecklistItem `json:"checklistItems" firestore:"checklistItems" validate:"dive"`
}

func (t Task) Key() string {
	return t.UID
}

// Assignee returns the UID of the team or user the task is assigned to.
func (t Task) Assignee() string {
	if t.AssignedTo == AssignTeam {
		return t.AssignedTeamUID
	}
	return t.AssignedUserUID
}

// HasSingleAssignee reports whether exactly one assignee field is set and it
// matches AssignedTo.
func (t Task) HasSingleAssignee() bool {
	switch t.AssignedTo {
	case AssignTeam:
		return t.AssignedTeamUID != "" && t.AssignedUserUID == ""
	case AssignUser:
		return t.AssignedUserUID != "" && t.AssignedTeamUID == ""
	}
	return false
}

// ItemIndex returns the position of the checklist item with the given id, or -1.
func (t Task) ItemIndex(itemID string) int {
	for i, item := range t.ChecklistItems {
		if item.ID == itemID {
			return i
		}
	}
	return -1
}

// Clone returns a copy whose checklist can be mutated without touching t.
func (t Task) Clone() Task {
	c := t
	if t.ChecklistItems != nil {
		c.ChecklistItems = make([]ChecklistItem, len(t.ChecklistItems))
		for i, item := range t.ChecklistItems {
			c.ChecklistItems[i] = item.Clone()
		}
	}
	return c
}

// TaskPatch carries the fields of a partial task update. Nil fields are left
// untouched. ChecklistItems, when set, replaces the whole array.
type TaskPatch struct {
	Title           *string          `json:"title,omitempty"`
	Description     *string          `json:"description,omitempty"`
	DueDate         *time.Time       `json:"dueDate,omitempty"`
	Priority        *Priority        `json:"priority,omitempty"`
	Completed       *bool            `json:"completed,omitempty"`
	AssignedTo      *AssigneeKind    `json:"assignedTo,omitempty"`
	AssignedTeamUID *string          `json:"assignedTeamUID,omitempty"`
	AssignedUserUID *string          `json:"assignedUserUID,omitempty"`
	ChecklistItems  *[]ChecklistItem `json:"checklistItems,omitempty"`
}

func (p TaskPatch) TouchesAssignment() bool {
	return p.AssignedTo != nil || p.AssignedTeamUID != nil || p.AssignedUserUID != nil
}

// Apply returns t with the patch applied, as the server would store it.
func (p TaskPatch) Apply(t Task) Task {
	next := t.Clone()
	if p.Title != nil {
		next.Title = *p.Title
	}
	if p.Description != nil {
		next.Description = *p.Description
	}
	if p.DueDate != nil {
		next.DueDate = *p.DueDate
	}
	if p.Priority != nil {
		next.Priority = *p.Priority
	}
	if p.Completed != nil {
		next.Completed = *p.Completed
	}
	if p.AssignedTo != nil {
		next.AssignedTo = *p.AssignedTo
		switch next.AssignedTo {
		case AssignTeam:
			next.AssignedUserUID = ""
		case AssignUser:
			next.AssignedTeamUID = ""
		}
	}
	if p.AssignedTeamUID != nil {
		next.AssignedTeamUID = *p.AssignedTeamUID
	}
	if p.AssignedUserUID != nil {
		next.AssignedUserUID = *p.AssignedUserUID
	}
	if p.ChecklistItems != nil {
		next.ChecklistItems = SanitizeItems(*p.ChecklistItems)
	}
	return next
}
