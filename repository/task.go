package repository

import (
	"context"
	"fmt"
	"reflect"
	"slices"
	"time"

	"checklistapp/model"
	"checklistapp/store"
)

const fieldChecklist = "checklistItems"

type taskCodec struct{}

func (taskCodec) Key(t model.Task) string { return t.UID }

func (taskCodec) WithKey(t model.Task, id string) model.Task {
	t.UID = id
	return t
}

func (taskCodec) Decode(doc store.Document) (model.Task, error) {
	r := newReader(store.CollectionTasks, doc)
	t := model.Task{
		UID:             doc.ID,
		Title:           r.str("title", true),
		Description:     r.str("description", false),
		DueDate:         r.timestamp("dueDate", true),
		Priority:        model.Priority(r.str("priority", true)),
		Completed:       r.boolean("completed"),
		AssignedTo:      model.AssigneeKind(r.str("assignedTo", true)),
		AssignedTeamUID: r.str("assignedTeamUID", false),
		AssignedUserUID: r.str("assignedUserUID", false),
		CreatedBy:       r.str("createdBy", false),
		CreatedAt:       r.timestamp("createdAt", false),
	}
	for i, raw := range r.list(fieldChecklist) {
		item, err := decodeItem(doc.ID, i, raw)
		if err != nil {
			r.fail(fmt.Sprintf("%s[%d]", fieldChecklist, i), err)
			break
		}
		t.ChecklistItems = append(t.ChecklistItems, item)
	}
	if r.err != nil {
		return model.Task{}, r.err
	}

	// a stale field left by an older client does not make the task unreadable,
	// but a missing assignee does
	switch t.AssignedTo {
	case model.AssignTeam:
		t.AssignedUserUID = ""
	case model.AssignUser:
		t.AssignedTeamUID = ""
	default:
		return model.Task{}, &DecodeError{Collection: store.CollectionTasks, ID: doc.ID, Field: "assignedTo",
			Err: fmt.Errorf("unknown assignee kind %q", t.AssignedTo)}
	}
	if t.Assignee() == "" {
		return model.Task{}, &DecodeError{Collection: store.CollectionTasks, ID: doc.ID, Field: "assignedTo",
			Err: fmt.Errorf("no %s uid", t.AssignedTo)}
	}
	return t, nil
}

func decodeItem(taskID string, index int, raw interface{}) (model.ChecklistItem, error) {
	m, ok := raw.(map[string]interface{})
	if !ok {
		return model.ChecklistItem{}, fmt.Errorf("%w: %T", errWrongType, raw)
	}
	r := &reader{collection: store.CollectionTasks, id: taskID, data: m}
	item := model.ChecklistItem{
		ID:           r.str("id", true),
		Text:         r.str("text", false),
		Type:         model.ChecklistItemType(r.str("type", false)),
		Completed:    r.boolean("completed"),
		Value:        r.optStr("value"),
		NumberValue:  r.number("numberValue"),
		FileURI:      r.optStr("fileUri"),
		SignatureURI: r.optStr("signatureUri"),
	}
	if item.Type == "" {
		item.Type = model.ItemCheckbox
	}
	if r.err != nil {
		return model.ChecklistItem{}, r.err
	}
	return item, nil
}

func (taskCodec) Encode(t model.Task) map[string]interface{} {
	data := map[string]interface{}{
		"title":        t.Title,
		"description":  t.Description,
		"dueDate":      t.DueDate,
		"priority":     string(t.Priority),
		"completed":    t.Completed,
		"assignedTo":   string(t.AssignedTo),
		"createdBy":    t.CreatedBy,
		"createdAt":    t.CreatedAt,
		fieldChecklist: encodeItems(t.ChecklistItems),
	}
	if t.AssignedTeamUID != "" {
		data["assignedTeamUID"] = t.AssignedTeamUID
	}
	if t.AssignedUserUID != "" {
		data["assignedUserUID"] = t.AssignedUserUID
	}
	return data
}

// encodeItem writes only the fields the sanitized item carries, so the
// element stays addressable by deep equality.
func encodeItem(item model.ChecklistItem) map[string]interface{} {
	item = item.Sanitize()
	m := map[string]interface{}{
		"id":        item.ID,
		"text":      item.Text,
		"type":      string(item.Type),
		"completed": item.Completed,
	}
	if item.Value != nil {
		m["value"] = *item.Value
	}
	if item.NumberValue != nil {
		m["numberValue"] = *item.NumberValue
	}
	if item.FileURI != nil {
		m["fileUri"] = *item.FileURI
	}
	if item.SignatureURI != nil {
		m["signatureUri"] = *item.SignatureURI
	}
	return m
}

func encodeItems(items []model.ChecklistItem) []interface{} {
	out := make([]interface{}, 0, len(items))
	for _, item := range items {
		out = append(out, encodeItem(item))
	}
	return out
}

// TaskRepository adds checklist operations on top of the generic repository.
type TaskRepository struct {
	*Repository[model.Task]
	now func() time.Time
}

func NewTaskRepository(s store.Store) *TaskRepository {
	return &TaskRepository{
		Repository: New[model.Task](s, store.CollectionTasks, taskCodec{}),
		now:        time.Now,
	}
}

func validateItems(items []model.ChecklistItem, fields fieldErrors) {
	seen := map[string]bool{}
	for i, item := range items {
		if item.ID != "" && seen[item.ID] {
			fields.add(fmt.Sprintf("ChecklistItems[%d].ID", i), "duplicate checklist item id")
		}
		seen[item.ID] = true
	}
}

// ValidateTask checks a task before it is written.
func ValidateTask(t model.Task) error {
	fields := fieldErrors{}
	validateStruct(t, fields)
	if t.DueDate.IsZero() {
		fields.add("DueDate", "is required")
	}
	if t.AssignedTo.IsValid() && !t.HasSingleAssignee() {
		fields.add("AssignedTo", "exactly one of assignedTeamUID or assignedUserUID must be set, matching assignedTo")
	}
	validateItems(t.ChecklistItems, fields)
	return fields.err()
}

// Create validates and writes a new task. Checklist items without an id get
// one; CreatedAt defaults to now.
func (r *TaskRepository) Create(ctx context.Context, t model.Task) (model.Task, error) {
	t = t.Clone()
	t.UID = ""
	if t.CreatedAt.IsZero() {
		t.CreatedAt = r.now()
	}
	for i := range t.ChecklistItems {
		if t.ChecklistItems[i].ID == "" {
			t.ChecklistItems[i].ID = model.NewItemID()
		}
	}
	t.ChecklistItems = model.SanitizeItems(t.ChecklistItems)
	if err := ValidateTask(t); err != nil {
		return model.Task{}, err
	}
	return r.create(ctx, t)
}

// patchFields turns a patch into the store update. An assignment change must
// name the kind and its uid; the other uid field is deleted.
func patchFields(p model.TaskPatch) (map[string]interface{}, error) {
	fields := map[string]interface{}{}
	problems := fieldErrors{}

	if p.Title != nil {
		if *p.Title == "" {
			problems.add("Title", "is required")
		}
		fields["title"] = *p.Title
	}
	if p.Description != nil {
		fields["description"] = *p.Description
	}
	if p.DueDate != nil {
		if p.DueDate.IsZero() {
			problems.add("DueDate", "is required")
		}
		fields["dueDate"] = *p.DueDate
	}
	if p.Priority != nil {
		if !p.Priority.IsValid() {
			problems.add("Priority", "must be one of alta media baja")
		}
		fields["priority"] = string(*p.Priority)
	}
	if p.Completed != nil {
		fields["completed"] = *p.Completed
	}
	if p.TouchesAssignment() {
		switch {
		case p.AssignedTo == nil || !p.AssignedTo.IsValid():
			problems.add("AssignedTo", "must be team or user when changing the assignee")
		case *p.AssignedTo == model.AssignTeam:
			if p.AssignedTeamUID == nil || *p.AssignedTeamUID == "" || (p.AssignedUserUID != nil && *p.AssignedUserUID != "") {
				problems.add("AssignedTeamUID", "exactly one of assignedTeamUID or assignedUserUID must be set, matching assignedTo")
			} else {
				fields["assignedTo"] = string(model.AssignTeam)
				fields["assignedTeamUID"] = *p.AssignedTeamUID
				fields["assignedUserUID"] = store.DeleteField
			}
		case *p.AssignedTo == model.AssignUser:
			if p.AssignedUserUID == nil || *p.AssignedUserUID == "" || (p.AssignedTeamUID != nil && *p.AssignedTeamUID != "") {
				problems.add("AssignedUserUID", "exactly one of assignedTeamUID or assignedUserUID must be set, matching assignedTo")
			} else {
				fields["assignedTo"] = string(model.AssignUser)
				fields["assignedUserUID"] = *p.AssignedUserUID
				fields["assignedTeamUID"] = store.DeleteField
			}
		}
	}
	if p.ChecklistItems != nil {
		items := model.SanitizeItems(*p.ChecklistItems)
		validateStruct(checklistInput{ChecklistItems: items}, problems)
		validateItems(items, problems)
		fields[fieldChecklist] = encodeItems(items)
	}
	if err := problems.err(); err != nil {
		return nil, err
	}
	return fields, nil
}

// ValidateChecklistItem checks one item as it would be written.
func ValidateChecklistItem(item model.ChecklistItem) error {
	problems := fieldErrors{}
	validateStruct(item, problems)
	return problems.err()
}

// ValidateTaskPatch checks a patch without writing it.
func ValidateTaskPatch(p model.TaskPatch) error {
	_, err := patchFields(p)
	return err
}

type checklistInput struct {
	ChecklistItems []model.ChecklistItem `validate:"dive"`
}

// Update applies a partial update. Switching the assignee deletes the other
// assignee field in the same write.
func (r *TaskRepository) Update(ctx context.Context, id string, patch model.TaskPatch) error {
	fields, err := patchFields(patch)
	if err != nil {
		return err
	}
	return r.update(ctx, id, fields)
}

func (r *TaskRepository) SetCompleted(ctx context.Context, id string, completed bool) error {
	return r.update(ctx, id, map[string]interface{}{"completed": completed})
}

// AddChecklistItem appends item and returns it as stored. An item without
// an id gets a fresh one and is appended atomically. A caller-chosen id is
// checked against the stored checklist inside a transaction.
func (r *TaskRepository) AddChecklistItem(ctx context.Context, taskID string, item model.ChecklistItem) (model.ChecklistItem, error) {
	fresh := item.ID == ""
	if fresh {
		item.ID = model.NewItemID()
	}
	item = item.Sanitize()
	if err := ValidateChecklistItem(item); err != nil {
		return model.ChecklistItem{}, err
	}
	if fresh {
		if err := r.store.ArrayAppend(ctx, store.CollectionTasks, taskID, fieldChecklist, encodeItem(item)); err != nil {
			return model.ChecklistItem{}, err
		}
		return item, nil
	}
	err := r.store.Transform(ctx, store.CollectionTasks, taskID, func(current store.Document) (map[string]interface{}, error) {
		raw, _ := current.Data[fieldChecklist].([]interface{})
		if storedIndex(raw, item.ID) >= 0 {
			return nil, DuplicateItemError(item.ID)
		}
		return map[string]interface{}{fieldChecklist: append(slices.Clone(raw), encodeItem(item))}, nil
	})
	if err != nil {
		return model.ChecklistItem{}, err
	}
	return item, nil
}

// DuplicateItemError reports an item id already used in the task.
func DuplicateItemError(id string) error {
	return &ValidationError{Fields: map[string]string{"ID": fmt.Sprintf("checklist item id %q is already used", id)}}
}

// storedIndex finds an item by id in the raw stored checklist.
func storedIndex(raw []interface{}, id string) int {
	for i, elem := range raw {
		if m, ok := elem.(map[string]interface{}); ok && m["id"] == id {
			return i
		}
	}
	return -1
}

// RemoveChecklistItem removes the stored item with item's id inside a
// transaction. The stored element is removed as it is, even when it was
// written in an older shape. It fails with ErrItemNotFound when the item is
// gone or no longer matches item, so a stale copy removes nothing.
func (r *TaskRepository) RemoveChecklistItem(ctx context.Context, taskID string, item model.ChecklistItem) error {
	want := item.Sanitize()
	return r.store.Transform(ctx, store.CollectionTasks, taskID, func(current store.Document) (map[string]interface{}, error) {
		raw, _ := current.Data[fieldChecklist].([]interface{})
		i := storedIndex(raw, want.ID)
		if i < 0 {
			return nil, fmt.Errorf("%s in task %s: %w", want.ID, taskID, ErrItemNotFound)
		}
		stored, err := decodeItem(taskID, i, raw[i])
		if err != nil {
			return nil, err
		}
		if !reflect.DeepEqual(stored.Sanitize(), want) {
			return nil, fmt.Errorf("%s in task %s changed since it was read: %w", want.ID, taskID, ErrItemNotFound)
		}
		return map[string]interface{}{fieldChecklist: slices.Delete(slices.Clone(raw), i, i+1)}, nil
	})
}

// EditChecklistItem rewrites one item by id inside a transaction, so
// concurrent edits to other items of the same task are not lost.
func (r *TaskRepository) EditChecklistItem(ctx context.Context, taskID, itemID string, edit func(*model.ChecklistItem)) (model.ChecklistItem, error) {
	var edited model.ChecklistItem
	err := r.store.Transform(ctx, store.CollectionTasks, taskID, func(current store.Document) (map[string]interface{}, error) {
		task, err := r.codec.Decode(current)
		if err != nil {
			return nil, err
		}
		i := task.ItemIndex(itemID)
		if i < 0 {
			return nil, fmt.Errorf("%s in task %s: %w", itemID, taskID, ErrItemNotFound)
		}
		item := task.ChecklistItems[i].Clone()
		edit(&item)
		item.ID = itemID
		item = item.Sanitize()
		if err := ValidateChecklistItem(item); err != nil {
			return nil, err
		}
		task.ChecklistItems[i] = item
		edited = item
		return map[string]interface{}{fieldChecklist: encodeItems(task.ChecklistItems)}, nil
	})
	if err != nil {
		return model.ChecklistItem{}, err
	}
	return edited, nil
}

// ReorderChecklist applies model.ReorderItems to the stored checklist.
func (r *TaskRepository) ReorderChecklist(ctx context.Context, taskID string, itemIDs []string) error {
	return r.store.Transform(ctx, store.CollectionTasks, taskID, func(current store.Document) (map[string]interface{}, error) {
		task, err := r.codec.Decode(current)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{fieldChecklist: encodeItems(model.ReorderItems(task.ChecklistItems, itemIDs))}, nil
	})
}

// GetByAssignee returns the tasks assigned to the user or to the team.
func (r *TaskRepository) GetByAssignee(ctx context.Context, kind model.AssigneeKind, uid string) ([]model.Task, error) {
	return r.GetByPredicate(ctx, func(t model.Task) bool {
		return t.AssignedTo == kind && t.Assignee() == uid
	})
}
