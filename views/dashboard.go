package views

import "checklistapp/model"

type DashboardStats struct {
	TotalTasks          int          `json:"totalTasks"`
	PendingTasks        int          `json:"pendingTasks"`
	CompletedTasks      int          `json:"completedTasks"`
	TotalWorkers        int          `json:"totalWorkers"`
	TotalTeams          int          `json:"totalTeams"`
	CompletionRate      int          `json:"completionRate"`
	HighPriorityPending int          `json:"highPriorityPending"`
	RecentTasks         []model.Task `json:"recentTasks"`
}

// Dashboard summarizes every task, user and team, as a manager sees them.
func Dashboard(tasks []model.Task, users []model.User, teams []model.Team) DashboardStats {
	workers := 0
	for _, u := range users {
		if u.Role == model.RoleWorker {
			workers++
		}
	}
	return DashboardStats{
		TotalTasks:          len(tasks),
		PendingTasks:        len(Pending(tasks)),
		CompletedTasks:      len(Completed(tasks)),
		TotalWorkers:        workers,
		TotalTeams:          len(teams),
		CompletionRate:      CompletionRate(tasks),
		HighPriorityPending: len(HighPriorityPending(tasks)),
		RecentTasks:         Recent(tasks, RecentLimit),
	}
}

func ManagerTeams(managerUID string, teams []model.Team) []model.Team {
	out := make([]model.Team, 0)
	for _, team := range teams {
		if team.ManagerUID == managerUID {
			out = append(out, team)
		}
	}
	return out
}
