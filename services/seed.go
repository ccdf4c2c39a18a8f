package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"checklistapp/model"
	"checklistapp/repository"

	"github.com/golang/glog"
	"golang.org/x/sync/errgroup"
)

type sampleUser struct {
	key, email, password, name string
	role                       model.Role
}

var sampleUsers = []sampleUser{
	{"manager", "manager@empresa.com", "manager123", "Ana García", model.RoleManager},
	{"admin", "admin@empresa.com", "admin123", "Carlos López", model.RoleManager},
	{"worker1", "worker1@empresa.com", "worker123", "María Rodríguez", model.RoleWorker},
	{"worker2", "worker2@empresa.com", "worker123", "José Martínez", model.RoleWorker},
	{"worker3", "worker3@empresa.com", "worker123", "Laura Fernández", model.RoleWorker},
}

type sampleTeam struct {
	key, name, description, manager string
	members                         []string
}

var sampleTeams = []sampleTeam{
	{"frontend", "Equipo Desarrollo Frontend", "Equipo encargado del desarrollo de interfaces de usuario", "manager", []string{"worker1", "worker2"}},
	{"backend", "Equipo Backend", "Equipo encargado de APIs y base de datos", "manager", []string{"worker2", "worker3"}},
	{"qa", "Equipo QA", "Equipo de control de calidad y testing", "admin", []string{"worker1", "worker3"}},
}

type sampleTask struct {
	title, description string
	dueInDays          int
	priority           model.Priority
	completed          bool
	team, user         string
	createdBy          string
	checklist          []string
}

var sampleTasks = []sampleTask{
	{"Diseñar nueva interfaz de dashboard", "Crear mockups y prototipos para el nuevo dashboard administrativo", 2, model.PriorityHigh, false, "frontend", "", "manager", []string{"Mockups", "Prototipo navegable"}},
	{"Optimizar consultas de base de datos", "Revisar y optimizar las consultas SQL para mejorar rendimiento", -3, model.PriorityMedium, true, "backend", "", "manager", nil},
	{"Ejecutar pruebas de integración", "Realizar pruebas completas del sistema integrado", -1, model.PriorityHigh, false, "qa", "", "admin", []string{"Casos de prueba", "Reporte"}},
	{"Revisar documentación técnica", "Revisar y actualizar la documentación del proyecto", 5, model.PriorityLow, false, "", "worker1", "manager", nil},
	{"Preparar presentación para cliente", "Crear presentación con los avances del proyecto", 1, model.PriorityMedium, true, "", "worker2", "admin", nil},
	{"Configurar ambiente de desarrollo", "Configurar nuevo ambiente de desarrollo para proyecto interno", 3, model.PriorityMedium, false, "frontend", "", "manager", []string{"Instalar dependencias"}},
}

type SeedResult struct {
	Users int
	Teams int
	Tasks int
}

// Seeder loads the sample data used for demos and local development.
type Seeder struct {
	Auth  *AuthService
	Users *repository.UserRepository
	Teams *repository.TeamRepository
	Tasks *repository.TaskRepository
	Now   func() time.Time
}

// Seed writes the sample users, teams and tasks unless users already exist.
func (s *Seeder) Seed(ctx context.Context) (SeedResult, error) {
	existing, err := s.Users.GetAll(ctx)
	if err != nil {
		return SeedResult{}, err
	}
	if len(existing) > 0 {
		glog.Infof("[seed]%d users present, skipping\n", len(existing))
		return SeedResult{}, nil
	}
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}

	var (
		mu    sync.Mutex
		users = map[string]string{}
		teams = map[string]string{}
	)

	g, gctx := errgroup.WithContext(ctx)
	for _, u := range sampleUsers {
		u := u
		g.Go(func() error {
			created, err := s.Auth.SignUp(gctx, SignUpInput{Email: u.email, Password: u.password, Name: u.name, Role: u.role})
			if err != nil {
				return fmt.Errorf("user %s: %w", u.email, err)
			}
			mu.Lock()
			users[u.key] = created.UID
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return SeedResult{}, err
	}

	g, gctx = errgroup.WithContext(ctx)
	for _, t := range sampleTeams {
		t := t
		members := make([]string, 0, len(t.members))
		for _, m := range t.members {
			members = append(members, users[m])
		}
		team := model.Team{Name: t.name, Description: t.description, ManagerUID: users[t.manager], MemberUIDs: members}
		g.Go(func() error {
			created, err := s.Teams.Create(gctx, team)
			if err != nil {
				return fmt.Errorf("team %s: %w", t.name, err)
			}
			mu.Lock()
			teams[t.key] = created.UID
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return SeedResult{}, err
	}

	today := now().Truncate(24 * time.Hour)
	g, gctx = errgroup.WithContext(ctx)
	for _, t := range sampleTasks {
		task := model.Task{
			Title:       t.title,
			Description: t.description,
			DueDate:     today.AddDate(0, 0, t.dueInDays),
			Priority:    t.priority,
			Completed:   t.completed,
			CreatedBy:   users[t.createdBy],
		}
		if t.team != "" {
			task.AssignedTo = model.AssignTeam
			task.AssignedTeamUID = teams[t.team]
		} else {
			task.AssignedTo = model.AssignUser
			task.AssignedUserUID = users[t.user]
		}
		for _, text := range t.checklist {
			task.ChecklistItems = append(task.ChecklistItems, model.NewChecklistItem(text, model.ItemCheckbox))
		}
		g.Go(func() error {
			if _, err := s.Tasks.Create(gctx, task); err != nil {
				return fmt.Errorf("task %s: %w", task.Title, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return SeedResult{}, err
	}

	result := SeedResult{Users: len(sampleUsers), Teams: len(sampleTeams), Tasks: len(sampleTasks)}
	glog.Infof("[seed]created %d users, %d teams, %d tasks\n", result.Users, result.Teams, result.Tasks)
	return result, nil
}
