package views

import (
	"errors"
	"testing"
	"time"

	"checklistapp/model"

	"github.com/go-playground/assert/v2"
)

var now = time.Date(2024, 5, 10, 15, 0, 0, 0, time.UTC)

func task(uid string, due time.Time, completed bool) model.Task {
	return model.Task{
		UID:             uid,
		Title:           uid,
		DueDate:         due,
		Priority:        model.PriorityMedium,
		Completed:       completed,
		AssignedTo:      model.AssignUser,
		AssignedUserUID: "a",
	}
}

func uids(tasks []model.Task) []string {
	out := []string{}
	for _, t := range tasks {
		out = append(out, t.UID)
	}
	return out
}

func TestPendingCompletedPartition(t *testing.T) {
	tasks := []model.Task{task("1", now, false), task("2", now, true), task("3", now, false)}
	pending := Pending(tasks)
	completed := Completed(tasks)
	assert.Equal(t, len(pending)+len(completed), len(tasks))
	for _, p := range pending {
		for _, c := range completed {
			assert.NotEqual(t, p.UID, c.UID)
		}
	}
}

func TestCompletionRate(t *testing.T) {
	tasks := []model.Task{task("1", now, true), task("2", now, false), task("3", now, false), task("4", now, false)}
	assert.Equal(t, CompletionRate(tasks), 25)
	assert.Equal(t, CompletionRate(nil), 0)

	third := []model.Task{task("1", now, true), task("2", now, false), task("3", now, false)}
	assert.Equal(t, CompletionRate(third), 33)
	twoThirds := []model.Task{task("1", now, true), task("2", now, true), task("3", now, false)}
	assert.Equal(t, CompletionRate(twoThirds), 67)
}

func TestUrgentCutoff(t *testing.T) {
	day := 24 * time.Hour
	tasks := []model.Task{
		task("plus3", now.Add(3*day), false),
		task("plus4", now.Add(4*day), false),
		task("yesterday", now.Add(-day), false),
	}
	assert.Equal(t, uids(Urgent(tasks, now)), []string{"plus3"})
	assert.Equal(t, uids(Overdue(tasks, now)), []string{"yesterday"})
}

func TestUrgentSortedAndCapped(t *testing.T) {
	var tasks []model.Task
	for i, h := range []int{50, 10, 70, 20, 60, 30, 40} {
		tasks = append(tasks, task(string(rune('a'+i)), now.Add(time.Duration(h)*time.Hour), false))
	}
	tasks = append(tasks, task("done", now.Add(time.Hour), true))

	got := Urgent(tasks, now)
	assert.Equal(t, uids(got), []string{"b", "d", "f", "g", "a"})
}

func TestDaysUntilUsesCalendarDays(t *testing.T) {
	late := time.Date(2024, 5, 10, 23, 0, 0, 0, time.UTC)
	assert.Equal(t, DaysUntil(time.Date(2024, 5, 11, 1, 0, 0, 0, time.UTC), late), 1)
	assert.Equal(t, DaysUntil(time.Date(2024, 5, 10, 1, 0, 0, 0, time.UTC), late), 0)
	assert.Equal(t, DaysUntil(time.Date(2024, 5, 9, 23, 59, 0, 0, time.UTC), late), -1)
}

func TestAssignedToResolvesTeams(t *testing.T) {
	teamTask := task("team", now, false)
	teamTask.AssignedTo = model.AssignTeam
	teamTask.AssignedUserUID = ""
	teamTask.AssignedTeamUID = "T1"
	orphan := teamTask
	orphan.UID = "orphan"
	orphan.AssignedTeamUID = "gone"

	tasks := []model.Task{teamTask, orphan, task("direct", now, false)}
	teams := []model.Team{{UID: "T1", Name: "t", MemberUIDs: []string{"A", "B"}}}

	assert.Equal(t, uids(AssignedTo("A", tasks, teams)), []string{"team"})
	assert.Equal(t, uids(AssignedTo("C", tasks, teams)), []string{})
	assert.Equal(t, uids(AssignedTo("a", tasks, teams)), []string{"direct"})
}

func TestSearch(t *testing.T) {
	a := task("1", now, false)
	a.Title = "Revisar Bomba"
	b := task("2", now, false)
	b.Description = "cambiar la BOMBA"
	c := task("3", now, false)

	assert.Equal(t, uids(Search([]model.Task{a, b, c}, "bomba")), []string{"1", "2"})
	assert.Equal(t, len(Search([]model.Task{a, b, c}, "  ")), 3)
}

func TestDashboard(t *testing.T) {
	older := task("old", now, true)
	older.CreatedAt = now.Add(-time.Hour)
	newer := task("new", now, false)
	newer.CreatedAt = now
	newer.Priority = model.PriorityHigh

	stats := Dashboard([]model.Task{older, newer},
		[]model.User{{UID: "m", Role: model.RoleManager}, {UID: "w", Role: model.RoleWorker}},
		[]model.Team{{UID: "T1"}})

	assert.Equal(t, stats.TotalTasks, 2)
	assert.Equal(t, stats.PendingTasks, 1)
	assert.Equal(t, stats.CompletedTasks, 1)
	assert.Equal(t, stats.TotalWorkers, 1)
	assert.Equal(t, stats.TotalTeams, 1)
	assert.Equal(t, stats.CompletionRate, 50)
	assert.Equal(t, stats.HighPriorityPending, 1)
	assert.Equal(t, uids(stats.RecentTasks), []string{"new", "old"})
}

func TestPeople(t *testing.T) {
	users := []model.User{{UID: "1", Name: "Ana Diaz", Email: "ana@x.com"}, {UID: "2", Name: "Luis", Email: "luis@x.com"}}
	assert.Equal(t, len(SearchUsers(users, "DIAZ")), 1)
	assert.Equal(t, len(SearchUsers(users, "x.com")), 2)

	teams := []model.Team{{UID: "1", Name: "Noche", ManagerUID: "m"}, {UID: "2", Name: "Dia", Description: "turno de noche", ManagerUID: "z"}}
	assert.Equal(t, len(SearchTeams(teams, "noche")), 2)
	assert.Equal(t, len(ManagerTeams("m", teams)), 1)
}

func TestInitials(t *testing.T) {
	assert.Equal(t, Initials("Juan Carlos Pérez García"), "JG")
	assert.Equal(t, Initials("  ana "), "A")
	assert.Equal(t, Initials(""), "?")
	assert.Equal(t, Initials("élodie martin"), "ÉM")
}

func TestAvatarColor(t *testing.T) {
	assert.Equal(t, AvatarColor("u1", AvatarColors), "#344955")
	assert.Equal(t, AvatarColor("abc", AvatarColors), "#B2BEC3")
	assert.Equal(t, AvatarColor("u1", AvatarColors), AvatarColor("u1", AvatarColors))
	assert.Equal(t, AvatarColor("u1", nil), "")
}

func TestLookup(t *testing.T) {
	v, err := Lookup("pending")
	assert.Equal(t, err, nil)
	assert.Equal(t, v.Needs&Tasks != 0, true)

	_, err = Lookup("nope")
	assert.Equal(t, errors.Is(err, ErrUnknownView), true)
	assert.Equal(t, len(Names()), 11)
}
