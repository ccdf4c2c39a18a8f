package dto

import (
	"time"

	"checklistapp/model"
)

type CreateTaskRequest struct {
	Title           string                 `json:"title" binding:"required"`
	Description     string                 `json:"description"`
	DueDate         time.Time              `json:"dueDate" binding:"required"`
	Priority        model.Priority         `json:"priority" binding:"required"`
	AssignedTo      model.AssigneeKind     `json:"assignedTo" binding:"required"`
	AssignedTeamUID string                 `json:"assignedTeamUID"`
	AssignedUserUID string                 `json:"assignedUserUID"`
	ChecklistItems  []ChecklistItemRequest `json:"checklistItems"`
}

func (r CreateTaskRequest) Task(createdBy string) model.Task {
	t := model.Task{
		Title:           r.Title,
		Description:     r.Description,
		DueDate:         r.DueDate,
		Priority:        r.Priority,
		AssignedTo:      r.AssignedTo,
		AssignedTeamUID: r.AssignedTeamUID,
		AssignedUserUID: r.AssignedUserUID,
		CreatedBy:       createdBy,
	}
	for _, item := range r.ChecklistItems {
		t.ChecklistItems = append(t.ChecklistItems, item.Item())
	}
	return t
}

type ChecklistItemRequest struct {
	ID           string                  `json:"id"`
	Text         string                  `json:"text" binding:"required"`
	Type         model.ChecklistItemType `json:"type"`
	Completed    bool                    `json:"completed"`
	Value        *string                 `json:"value"`
	NumberValue  *float64                `json:"numberValue"`
	FileURI      *string                 `json:"fileUri"`
	SignatureURI *string                 `json:"signatureUri"`
}

func (r ChecklistItemRequest) Item() model.ChecklistItem {
	itemType := r.Type
	if itemType == "" {
		itemType = model.ItemCheckbox
	}
	return model.ChecklistItem{
		ID:           r.ID,
		Text:         r.Text,
		Type:         itemType,
		Completed:    r.Completed,
		Value:        r.Value,
		NumberValue:  r.NumberValue,
		FileURI:      r.FileURI,
		SignatureURI: r.SignatureURI,
	}
}

// ChecklistItemEdit sets the fields that are present.
type ChecklistItemEdit struct {
	Text         *string  `json:"text"`
	Completed    *bool    `json:"completed"`
	Value        *string  `json:"value"`
	NumberValue  *float64 `json:"numberValue"`
	FileURI      *string  `json:"fileUri"`
	SignatureURI *string  `json:"signatureUri"`
}

func (e ChecklistItemEdit) Apply(item *model.ChecklistItem) {
	if e.Text != nil {
		item.Text = *e.Text
	}
	if e.Completed != nil {
		item.Completed = *e.Completed
	}
	if e.Value != nil {
		v := *e.Value
		item.Value = &v
	}
	if e.NumberValue != nil {
		v := *e.NumberValue
		item.NumberValue = &v
	}
	if e.FileURI != nil {
		v := *e.FileURI
		item.FileURI = &v
	}
	if e.SignatureURI != nil {
		v := *e.SignatureURI
		item.SignatureURI = &v
	}
}

type CompletedRequest struct {
	Completed *bool `json:"completed" binding:"required"`
}

type ReorderRequest struct {
	ItemIDs []string `json:"itemIds" binding:"required"`
}
