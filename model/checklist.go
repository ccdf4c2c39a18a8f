package model

import (
	"math"

	"github.com/google/uuid"
)

type ChecklistItemType string

const (
	ItemCheckbox        ChecklistItemType = "checkbox"
	ItemTextInput       ChecklistItemType = "text"
	ItemNumberInput     ChecklistItemType = "number"
	ItemFileUpload      ChecklistItemType = "file"
	ItemSignatureUpload ChecklistItemType = "signature"
)

func (t ChecklistItemType) IsValid() bool {
	switch t {
	case ItemCheckbox, ItemTextInput, ItemNumberInput, ItemFileUpload, ItemSignatureUpload:
		return true
	}
	return false
}

// ChecklistItem lives inline in its task's checklistItems array. At most the
// value field matching Type is populated; checkbox items carry none.
type ChecklistItem struct {
	ID           string            `json:"id" firestore:"id" validate:"required"`
	Text         string            `json:"text" firestore:"text" validate:"required"`
	Type         ChecklistItemType `json:"type" firestore:"type" validate:"required,oneof=checkbox text number file signature"`
	Completed    bool              `json:"completed" firestore:"completed"`
	Value        *string           `json:"value,omitempty" firestore:"value,omitempty"`
	NumberValue  *float64          `json:"numberValue,omitempty" firestore:"numberValue,omitempty"`
	FileURI      *string           `json:"fileUri,omitempty" firestore:"fileUri,omitempty"`
	SignatureURI *string           `json:"signatureUri,omitempty" firestore:"signatureUri,omitempty"`
}

// NewItemID returns a random 128-bit identifier for a checklist item.
func NewItemID() string {
	return uuid.NewString()
}

func NewChecklistItem(text string, itemType ChecklistItemType) ChecklistItem {
	return ChecklistItem{
		ID:   NewItemID(),
		Text: text,
		Type: itemType,
	}
}

func (i ChecklistItem) Clone() ChecklistItem {
	c := i
	if i.Value != nil {
		v := *i.Value
		c.Value = &v
	}
	if i.NumberValue != nil {
		v := *i.NumberValue
		c.NumberValue = &v
	}
	if i.FileURI != nil {
		v := *i.FileURI
		c.FileURI = &v
	}
	if i.SignatureURI != nil {
		v := *i.SignatureURI
		c.SignatureURI = &v
	}
	return c
}

// Sanitize returns a copy holding only the value field that matches the
// item's type, with NaN and infinite numbers dropped. Array removal in the
// store matches elements by deep equality, so every write goes through here.
func (i ChecklistItem) Sanitize() ChecklistItem {
	c := ChecklistItem{
		ID:        i.ID,
		Text:      i.Text,
		Type:      i.Type,
		Completed: i.Completed,
	}
	switch i.Type {
	case ItemTextInput:
		if i.Value != nil {
			v := *i.Value
			c.Value = &v
		}
	case ItemNumberInput:
		if i.NumberValue != nil && !math.IsNaN(*i.NumberValue) && !math.IsInf(*i.NumberValue, 0) {
			v := *i.NumberValue
			c.NumberValue = &v
		}
	case ItemFileUpload:
		if i.FileURI != nil {
			v := *i.FileURI
			c.FileURI = &v
		}
	case ItemSignatureUpload:
		if i.SignatureURI != nil {
			v := *i.SignatureURI
			c.SignatureURI = &v
		}
	}
	return c
}

func SanitizeItems(items []ChecklistItem) []ChecklistItem {
	out := make([]ChecklistItem, 0, len(items))
	for _, item := range items {
		out = append(out, item.Sanitize())
	}
	return out
}

// ReorderItems moves the listed items to the front in the given order. Items
// not listed keep their relative order after them; unknown ids are ignored.
func ReorderItems(items []ChecklistItem, ids []string) []ChecklistItem {
	byID := make(map[string]ChecklistItem, len(items))
	for _, item := range items {
		byID[item.ID] = item
	}
	out := make([]ChecklistItem, 0, len(items))
	placed := map[string]bool{}
	for _, id := range ids {
		item, ok := byID[id]
		if !ok || placed[id] {
			continue
		}
		placed[id] = true
		out = append(out, item)
	}
	for _, item := range items {
		if !placed[item.ID] {
			out = append(out, item)
		}
	}
	return out
}
