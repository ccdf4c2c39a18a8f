package views

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"checklistapp/model"
)

var ErrUnknownView = errors.New("unknown view")

// Collection names a view reads from.
type Collection int

const (
	Tasks Collection = 1 << iota
	Teams
	Users
)

// Input is the latest state of the collections a view depends on.
type Input struct {
	Me    string
	Tasks []model.Task
	Teams []model.Team
	Users []model.User
	Now   time.Time
	Query string
}

type View struct {
	Needs   Collection
	Compute func(in Input) interface{}
}

var registry = map[string]View{
	"pending":   {Tasks, func(in Input) interface{} { return Pending(in.Tasks) }},
	"completed": {Tasks, func(in Input) interface{} { return Completed(in.Tasks) }},
	"assigned":  {Tasks | Teams, func(in Input) interface{} { return AssignedTo(in.Me, in.Tasks, in.Teams) }},
	"created":   {Tasks, func(in Input) interface{} { return CreatedBy(in.Me, in.Tasks) }},
	"urgent":    {Tasks | Teams, func(in Input) interface{} { return Urgent(AssignedTo(in.Me, in.Tasks, in.Teams), in.Now) }},
	"overdue":   {Tasks | Teams, func(in Input) interface{} { return Overdue(AssignedTo(in.Me, in.Tasks, in.Teams), in.Now) }},
	"search":    {Tasks, func(in Input) interface{} { return Search(in.Tasks, in.Query) }},
	"dashboard": {Tasks | Teams | Users, func(in Input) interface{} { return Dashboard(in.Tasks, in.Users, in.Teams) }},
	"my-teams":  {Teams, func(in Input) interface{} { return ManagerTeams(in.Me, in.Teams) }},
	"people": {Teams | Users, func(in Input) interface{} {
		return map[string]interface{}{
			"users": SearchUsers(in.Users, in.Query),
			"teams": SearchTeams(in.Teams, in.Query),
		}
	}},
	"worker-home": {Tasks | Teams, func(in Input) interface{} {
		mine := AssignedTo(in.Me, in.Tasks, in.Teams)
		return map[string]interface{}{
			"pending":        len(Pending(mine)),
			"completed":      len(Completed(mine)),
			"completionRate": CompletionRate(mine),
			"urgent":         Urgent(mine, in.Now),
			"overdue":        Overdue(mine, in.Now),
		}
	}},
}

func Lookup(name string) (View, error) {
	v, ok := registry[name]
	if !ok {
		return View{}, fmt.Errorf("%w: %s", ErrUnknownView, name)
	}
	return v, nil
}

func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
