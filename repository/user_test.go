package repository

import (
	"context"
	"errors"
	"testing"

	"checklistapp/model"
	"checklistapp/store"

	"github.com/go-playground/assert/v2"
)

func TestUserCreateUsesUID(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	users := NewUserRepository(s)

	_, err := users.Create(ctx, model.User{UID: "abc", Email: " a@example.com ", Name: "Ana", Role: model.RoleManager})
	assert.Equal(t, err, nil)

	docs, _ := s.GetAll(ctx, store.CollectionUsers)
	assert.Equal(t, docs[0].ID, "abc")
	assert.Equal(t, docs[0].Data["email"], "a@example.com")
}

func TestUserValidation(t *testing.T) {
	users := NewUserRepository(store.NewMemoryStore())
	_, err := users.Create(context.Background(), model.User{UID: "abc", Email: "nope", Name: "Ana", Role: "boss"})

	var verr *ValidationError
	assert.Equal(t, errors.As(err, &verr), true)
	assert.Equal(t, len(verr.Fields), 2)
}

func TestGetByRoleAndEmail(t *testing.T) {
	ctx := context.Background()
	users := NewUserRepository(store.NewMemoryStore())
	_, _ = users.Create(ctx, model.User{UID: "m", Email: "boss@example.com", Name: "Boss", Role: model.RoleManager})
	_, _ = users.Create(ctx, model.User{UID: "w", Email: "w@example.com", Name: "W", Role: model.RoleWorker})

	managers, err := users.GetByRole(ctx, model.RoleManager)
	assert.Equal(t, err, nil)
	assert.Equal(t, len(managers), 1)
	assert.Equal(t, managers[0].UID, "m")

	u, err := users.GetByEmail(ctx, "BOSS@example.com")
	assert.Equal(t, err, nil)
	assert.Equal(t, u.UID, "m")

	_, err = users.GetByEmail(ctx, "ghost@example.com")
	assert.Equal(t, errors.Is(err, store.ErrNotFound), true)
}

func TestDecodeLegacyUser(t *testing.T) {
	u, err := userCodec{}.Decode(store.Document{ID: "x1", Data: map[string]interface{}{
		"email":   "a@example.com",
		"role":    "worker",
		"teamIds": []interface{}{"t1"},
	}})
	assert.Equal(t, err, nil)
	assert.Equal(t, u.UID, "x1")
	assert.Equal(t, u.TeamUIDs, []string{"t1"})
}
