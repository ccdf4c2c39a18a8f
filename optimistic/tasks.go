package optimistic

import (
	"context"
	"fmt"
	"reflect"

	"checklistapp/model"
	"checklistapp/repository"
)

// TaskMutations are the optimistic task edits a screen offers.
type TaskMutations struct {
	*Coordinator[model.Task]
	repo *repository.TaskRepository
}

func NewTaskMutations(repo *repository.TaskRepository, local Local[model.Task], poster Poster, opts Options) *TaskMutations {
	return &TaskMutations{
		Coordinator: NewCoordinator[model.Task](local, poster, sameTask, opts),
		repo:        repo,
	}
}

func unknown(label, key string) error {
	return fmt.Errorf("%s %s: %w", label, key, ErrUnknownEntity)
}

func sameTask(a, b model.Task) bool {
	return reflect.DeepEqual(a, b)
}

func (m *TaskMutations) ToggleCompleted(ctx context.Context, taskID string) (string, error) {
	var completed bool
	return m.Apply(ctx, taskID, "toggle task",
		func(t model.Task) model.Task {
			next := t.Clone()
			next.Completed = !t.Completed
			completed = next.Completed
			return next
		},
		func(ctx context.Context) error {
			return m.repo.SetCompleted(ctx, taskID, completed)
		},
	)
}

// Update applies a patch locally the way the store will, then writes it.
func (m *TaskMutations) Update(ctx context.Context, taskID string, patch model.TaskPatch) (string, error) {
	if err := repository.ValidateTaskPatch(patch); err != nil {
		return "", err
	}
	return m.Apply(ctx, taskID, "update task",
		patch.Apply,
		func(ctx context.Context) error {
			return m.repo.Update(ctx, taskID, patch)
		},
	)
}

// ToggleItem flips one checklist item. The write targets the item by id on
// the stored task, so it does not overwrite other items.
func (m *TaskMutations) ToggleItem(ctx context.Context, taskID, itemID string) (string, error) {
	task, ok := m.local.Get(taskID)
	if !ok {
		return "", unknown("toggle item", taskID)
	}
	i := task.ItemIndex(itemID)
	if i < 0 {
		return "", repository.ErrItemNotFound
	}
	completed := !task.ChecklistItems[i].Completed
	return m.EditItem(ctx, taskID, itemID, func(item *model.ChecklistItem) {
		item.Completed = completed
	})
}

// EditItem changes one checklist item in place. edit may run more than once
// and must only set fields.
func (m *TaskMutations) EditItem(ctx context.Context, taskID, itemID string, edit func(*model.ChecklistItem)) (string, error) {
	task, ok := m.local.Get(taskID)
	if ok {
		i := task.ItemIndex(itemID)
		if i < 0 {
			return "", repository.ErrItemNotFound
		}
		probe := task.ChecklistItems[i].Clone()
		edit(&probe)
		probe.ID = itemID
		if err := repository.ValidateChecklistItem(probe.Sanitize()); err != nil {
			return "", err
		}
	}
	return m.Apply(ctx, taskID, "edit item",
		func(t model.Task) model.Task {
			next := t.Clone()
			i := next.ItemIndex(itemID)
			edit(&next.ChecklistItems[i])
			next.ChecklistItems[i].ID = itemID
			next.ChecklistItems[i] = next.ChecklistItems[i].Sanitize()
			return next
		},
		func(ctx context.Context) error {
			_, err := m.repo.EditChecklistItem(ctx, taskID, itemID, edit)
			return err
		},
	)
}

// AddItem appends an item, generating its id when empty.
func (m *TaskMutations) AddItem(ctx context.Context, taskID string, item model.ChecklistItem) (string, error) {
	if item.ID == "" {
		item.ID = model.NewItemID()
	}
	item = item.Sanitize()
	if err := repository.ValidateChecklistItem(item); err != nil {
		return "", err
	}
	if task, ok := m.local.Get(taskID); ok && task.ItemIndex(item.ID) >= 0 {
		return "", repository.DuplicateItemError(item.ID)
	}
	return m.Apply(ctx, taskID, "add item",
		func(t model.Task) model.Task {
			next := t.Clone()
			next.ChecklistItems = append(next.ChecklistItems, item.Clone())
			return next
		},
		func(ctx context.Context) error {
			_, err := m.repo.AddChecklistItem(ctx, taskID, item)
			return err
		},
	)
}

// RemoveItem removes an item as last seen in local state.
func (m *TaskMutations) RemoveItem(ctx context.Context, taskID, itemID string) (string, error) {
	task, ok := m.local.Get(taskID)
	if !ok {
		return "", unknown("remove item", taskID)
	}
	i := task.ItemIndex(itemID)
	if i < 0 {
		return "", repository.ErrItemNotFound
	}
	stored := task.ChecklistItems[i].Clone()
	return m.Apply(ctx, taskID, "remove item",
		func(t model.Task) model.Task {
			next := t.Clone()
			if j := next.ItemIndex(itemID); j >= 0 {
				next.ChecklistItems = append(next.ChecklistItems[:j], next.ChecklistItems[j+1:]...)
			}
			return next
		},
		func(ctx context.Context) error {
			return m.repo.RemoveChecklistItem(ctx, taskID, stored)
		},
	)
}

func (m *TaskMutations) Reorder(ctx context.Context, taskID string, itemIDs []string) (string, error) {
	ids := append([]string(nil), itemIDs...)
	return m.Apply(ctx, taskID, "reorder items",
		func(t model.Task) model.Task {
			next := t.Clone()
			next.ChecklistItems = model.ReorderItems(next.ChecklistItems, ids)
			return next
		},
		func(ctx context.Context) error {
			return m.repo.ReorderChecklist(ctx, taskID, ids)
		},
	)
}
