package team

import (
	"net/http"

	"checklistapp/controller"
	"checklistapp/dto"
	"checklistapp/middleware"
	"checklistapp/model"
	"checklistapp/repository"

	"github.com/gin-gonic/gin"
)

func TeamController(router *gin.Engine, requireAuth gin.HandlerFunc, teams *repository.TeamRepository) {
	routes := router.Group("/teams", requireAuth)
	{
		routes.GET("", func(c *gin.Context) {
			ListTeams(c, teams)
		})
		routes.GET("/:id", func(c *gin.Context) {
			GetTeam(c, teams)
		})
		routes.POST("", func(c *gin.Context) {
			CreateTeam(c, teams)
		})
		routes.PATCH("/:id", func(c *gin.Context) {
			UpdateTeam(c, teams)
		})
		routes.DELETE("/:id", func(c *gin.Context) {
			DeleteTeam(c, teams)
		})
	}
}

// ListTeams lists every team, or with ?manager=me the caller's own.
func ListTeams(c *gin.Context, teams *repository.TeamRepository) {
	ctx := c.Request.Context()
	var (
		all []model.Team
		err error
	)
	switch manager := c.Query("manager"); manager {
	case "":
		all, err = teams.GetAll(ctx)
	case "me":
		all, err = teams.GetByManager(ctx, middleware.UserID(c))
	default:
		all, err = teams.GetByManager(ctx, manager)
	}
	if err != nil {
		controller.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, all)
}

func GetTeam(c *gin.Context, teams *repository.TeamRepository) {
	t, err := teams.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		controller.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func CreateTeam(c *gin.Context, teams *repository.TeamRepository) {
	var req dto.CreateTeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		controller.BadRequest(c, err)
		return
	}
	created, err := teams.Create(c.Request.Context(), model.Team{
		Name:        req.Name,
		Description: req.Description,
		ManagerUID:  middleware.UserID(c),
		MemberUIDs:  req.MemberUIDs,
	})
	if err != nil {
		controller.Fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func UpdateTeam(c *gin.Context, teams *repository.TeamRepository) {
	var patch model.TeamPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		controller.BadRequest(c, err)
		return
	}
	if err := teams.Update(c.Request.Context(), c.Param("id"), patch); err != nil {
		controller.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Team updated"})
}

func DeleteTeam(c *gin.Context, teams *repository.TeamRepository) {
	if err := teams.Delete(c.Request.Context(), c.Param("id")); err != nil {
		controller.Fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
