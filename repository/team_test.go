package repository

import (
	"context"
	"testing"

	"checklistapp/model"
	"checklistapp/store"

	"github.com/go-playground/assert/v2"
)

func setupTeams(t *testing.T) (*TeamRepository, *UserRepository) {
	t.Helper()
	s := store.NewMemoryStore()
	users := NewUserRepository(s)
	for _, uid := range []string{"u1", "u2", "u3"} {
		_, err := users.Create(context.Background(), model.User{
			UID: uid, Email: uid + "@example.com", Name: uid, Role: model.RoleWorker,
		})
		assert.Equal(t, err, nil)
	}
	return NewTeamRepository(s), users
}

func TestCreateTeamLinksMembers(t *testing.T) {
	ctx := context.Background()
	teams, users := setupTeams(t)

	team, err := teams.Create(ctx, model.Team{Name: "night", ManagerUID: "m1", MemberUIDs: []string{"u1", "u2"}})
	assert.Equal(t, err, nil)

	u1, _ := users.GetByID(ctx, "u1")
	u3, _ := users.GetByID(ctx, "u3")
	assert.Equal(t, u1.TeamUIDs, []string{team.UID})
	assert.Equal(t, len(u3.TeamUIDs), 0)
}

func TestCreateTeamValidation(t *testing.T) {
	teams, _ := setupTeams(t)
	ctx := context.Background()

	_, err := teams.Create(ctx, model.Team{Name: "solo", ManagerUID: "m1", MemberUIDs: []string{"u1"}})
	assert.Equal(t, IsValidation(err), true)

	_, err = teams.Create(ctx, model.Team{Name: "dup", ManagerUID: "m1", MemberUIDs: []string{"u1", "u1"}})
	assert.Equal(t, IsValidation(err), true)

	_, err = teams.Create(ctx, model.Team{ManagerUID: "m1", MemberUIDs: []string{"u1", "u2"}})
	assert.Equal(t, IsValidation(err), true)
}

func TestUpdateTeamMembers(t *testing.T) {
	ctx := context.Background()
	teams, users := setupTeams(t)
	team, _ := teams.Create(ctx, model.Team{Name: "night", ManagerUID: "m1", MemberUIDs: []string{"u1", "u2"}})

	members := []string{"u2", "u3"}
	assert.Equal(t, teams.Update(ctx, team.UID, model.TeamPatch{MemberUIDs: &members}), nil)

	u1, _ := users.GetByID(ctx, "u1")
	u3, _ := users.GetByID(ctx, "u3")
	assert.Equal(t, len(u1.TeamUIDs), 0)
	assert.Equal(t, u3.TeamUIDs, []string{team.UID})

	got, _ := teams.GetByID(ctx, team.UID)
	assert.Equal(t, got.MemberUIDs, members)

	short := []string{"u1"}
	assert.Equal(t, IsValidation(teams.Update(ctx, team.UID, model.TeamPatch{MemberUIDs: &short})), true)
}

func TestDeleteTeamUnlinks(t *testing.T) {
	ctx := context.Background()
	teams, users := setupTeams(t)
	team, _ := teams.Create(ctx, model.Team{Name: "night", ManagerUID: "m1", MemberUIDs: []string{"u1", "ghost"}})

	assert.Equal(t, teams.Delete(ctx, team.UID), nil)
	u1, _ := users.GetByID(ctx, "u1")
	assert.Equal(t, len(u1.TeamUIDs), 0)

	all, _ := teams.GetAll(ctx)
	assert.Equal(t, len(all), 0)
}

func TestGetByManager(t *testing.T) {
	ctx := context.Background()
	teams, _ := setupTeams(t)
	_, _ = teams.Create(ctx, model.Team{Name: "a", ManagerUID: "m1", MemberUIDs: []string{"u1", "u2"}})
	_, _ = teams.Create(ctx, model.Team{Name: "b", ManagerUID: "m2", MemberUIDs: []string{"u1", "u3"}})

	mine, err := teams.GetByManager(ctx, "m1")
	assert.Equal(t, err, nil)
	assert.Equal(t, len(mine), 1)
	assert.Equal(t, mine[0].Name, "a")

	withU1, _ := teams.GetByMember(ctx, "u1")
	assert.Equal(t, len(withU1), 2)
}

func TestDiffMembers(t *testing.T) {
	joined, left := diffMembers([]string{"a", "b"}, []string{"b", "c"})
	assert.Equal(t, joined, []string{"c"})
	assert.Equal(t, left, []string{"a"})
}
