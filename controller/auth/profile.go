package auth

import (
	"errors"
	"net/http"

	"checklistapp/controller"
	"checklistapp/dto"
	"checklistapp/middleware"
	"checklistapp/model"
	"checklistapp/repository"
	"checklistapp/store"

	"github.com/gin-gonic/gin"
)

type profileRequest struct {
	Email string     `json:"email" binding:"required,email"`
	Name  string     `json:"name" binding:"required"`
	Role  model.Role `json:"role" binding:"omitempty,oneof=manager worker"`
}

// ProfileController serves the signed-in user's profile. Users who signed in
// through Firebase create theirs on first use.
func ProfileController(router *gin.Engine, requireAuth gin.HandlerFunc, users *repository.UserRepository) {
	routes := router.Group("/auth", requireAuth)
	{
		routes.GET("/me", func(c *gin.Context) {
			Me(c, users)
		})
		routes.POST("/profile", func(c *gin.Context) {
			EnsureProfile(c, users)
		})
	}
}

func Me(c *gin.Context, users *repository.UserRepository) {
	user, err := users.GetByID(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		controller.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewUserResponse(user))
}

func EnsureProfile(c *gin.Context, users *repository.UserRepository) {
	ctx := c.Request.Context()
	uid := middleware.UserID(c)

	existing, err := users.GetByID(ctx, uid)
	if err == nil {
		c.JSON(http.StatusOK, gin.H{"isNewUser": false, "user": dto.NewUserResponse(existing)})
		return
	}
	if !errors.Is(err, store.ErrNotFound) {
		controller.Fail(c, err)
		return
	}

	var req profileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		controller.BadRequest(c, err)
		return
	}
	role := req.Role
	if role == "" {
		role = model.RoleWorker
	}
	user, err := users.Create(ctx, model.User{UID: uid, Email: req.Email, Name: req.Name, Role: role})
	if err != nil {
		controller.Fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"isNewUser": true, "user": dto.NewUserResponse(user)})
}
