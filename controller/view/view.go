package view

import (
	"context"
	"net/http"
	"time"

	"checklistapp/controller"
	"checklistapp/middleware"
	"checklistapp/repository"
	"checklistapp/views"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
)

// Repositories are the collections views are computed from.
type Repositories struct {
	Tasks *repository.TaskRepository
	Teams *repository.TeamRepository
	Users *repository.UserRepository
}

func ViewController(router *gin.Engine, requireAuth gin.HandlerFunc, repos Repositories, settings LiveSettings) {
	router.GET("/views", requireAuth, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"views": views.Names()})
	})
	router.GET("/views/:name", requireAuth, func(c *gin.Context) {
		GetView(c, repos)
	})
	router.GET("/ws/views/:name", requireAuth, func(c *gin.Context) {
		LiveView(c, repos, settings)
	})
}

// GetView computes a view once from fresh reads.
func GetView(c *gin.Context, repos Repositories) {
	v, err := views.Lookup(c.Param("name"))
	if err != nil {
		controller.Fail(c, err)
		return
	}
	in, err := load(c.Request.Context(), repos, v.Needs)
	if err != nil {
		controller.Fail(c, err)
		return
	}
	in.Me = middleware.UserID(c)
	in.Query = c.Query("q")
	in.Now = time.Now()
	c.JSON(http.StatusOK, gin.H{"view": c.Param("name"), "data": v.Compute(in)})
}

func load(ctx context.Context, repos Repositories, needs views.Collection) (views.Input, error) {
	var in views.Input
	g, gctx := errgroup.WithContext(ctx)
	if needs&views.Tasks != 0 {
		g.Go(func() (err error) {
			in.Tasks, err = repos.Tasks.GetAll(gctx)
			return err
		})
	}
	if needs&views.Teams != 0 {
		g.Go(func() (err error) {
			in.Teams, err = repos.Teams.GetAll(gctx)
			return err
		})
	}
	if needs&views.Users != 0 {
		g.Go(func() (err error) {
			in.Users, err = repos.Users.GetAll(gctx)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return views.Input{}, err
	}
	return in, nil
}
