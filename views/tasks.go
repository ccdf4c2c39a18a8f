// Package views computes what a screen shows from the latest collections.
// Every function is pure and is re-run on each change.
package views

import (
	"sort"
	"strings"
	"time"

	"checklistapp/model"
)

const (
	UrgentWithinDays = 3
	UrgentLimit      = 5
	RecentLimit      = 5
)

func filter(tasks []model.Task, keep func(model.Task) bool) []model.Task {
	out := make([]model.Task, 0, len(tasks))
	for _, t := range tasks {
		if keep(t) {
			out = append(out, t)
		}
	}
	return out
}

func Pending(tasks []model.Task) []model.Task {
	return filter(tasks, func(t model.Task) bool { return !t.Completed })
}

func Completed(tasks []model.Task) []model.Task {
	return filter(tasks, func(t model.Task) bool { return t.Completed })
}

// AssignedTo returns the tasks assigned to uid directly or through a team
// that lists uid as a member. A task whose team is not in teams is left out.
func AssignedTo(uid string, tasks []model.Task, teams []model.Team) []model.Task {
	byID := make(map[string]model.Team, len(teams))
	for _, team := range teams {
		byID[team.UID] = team
	}
	return filter(tasks, func(t model.Task) bool {
		switch t.AssignedTo {
		case model.AssignUser:
			return t.AssignedUserUID == uid
		case model.AssignTeam:
			team, ok := byID[t.AssignedTeamUID]
			return ok && team.HasMember(uid)
		}
		return false
	})
}

func CreatedBy(uid string, tasks []model.Task) []model.Task {
	return filter(tasks, func(t model.Task) bool { return t.CreatedBy == uid })
}

// DaysUntil counts calendar days from now to due in now's location. A task
// due earlier today is 0 days away; one due yesterday is -1.
func DaysUntil(due, now time.Time) int {
	loc := now.Location()
	d := due.In(loc)
	dueDay := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return int(dueDay.Sub(today).Hours() / 24)
}

// Urgent returns the pending tasks due within the next three days, soonest
// first, at most five.
func Urgent(tasks []model.Task, now time.Time) []model.Task {
	out := filter(tasks, func(t model.Task) bool {
		if t.Completed {
			return false
		}
		days := DaysUntil(t.DueDate, now)
		return days >= 0 && days <= UrgentWithinDays
	})
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DueDate.Before(out[j].DueDate)
	})
	if len(out) > UrgentLimit {
		out = out[:UrgentLimit]
	}
	return out
}

func Overdue(tasks []model.Task, now time.Time) []model.Task {
	return filter(tasks, func(t model.Task) bool {
		return !t.Completed && t.DueDate.Before(now)
	})
}

// Search matches query against title and description, ignoring case. An
// empty query matches everything.
func Search(tasks []model.Task, query string) []model.Task {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return filter(tasks, func(model.Task) bool { return true })
	}
	return filter(tasks, func(t model.Task) bool {
		return strings.Contains(strings.ToLower(t.Title), q) ||
			strings.Contains(strings.ToLower(t.Description), q)
	})
}

// CompletionRate is the rounded percentage of completed tasks, 0 for none.
func CompletionRate(tasks []model.Task) int {
	if len(tasks) == 0 {
		return 0
	}
	done := len(Completed(tasks))
	return (200*done + len(tasks)) / (2 * len(tasks))
}

// Recent returns the newest tasks by creation time.
func Recent(tasks []model.Task, limit int) []model.Task {
	out := filter(tasks, func(model.Task) bool { return true })
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func HighPriorityPending(tasks []model.Task) []model.Task {
	return filter(tasks, func(t model.Task) bool {
		return !t.Completed && t.Priority == model.PriorityHigh
	})
}
