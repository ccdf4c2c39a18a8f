package user

import (
	"net/http"

	"checklistapp/controller"
	"checklistapp/dto"
	"checklistapp/middleware"
	"checklistapp/model"
	"checklistapp/repository"
	"checklistapp/views"

	"github.com/gin-gonic/gin"
)

func UserController(router *gin.Engine, requireAuth gin.HandlerFunc, users *repository.UserRepository) {
	routes := router.Group("/users", requireAuth)
	{
		routes.GET("", func(c *gin.Context) {
			ListUsers(c, users)
		})
		routes.GET("/:id", func(c *gin.Context) {
			GetUser(c, users)
		})
		routes.PUT("/profile", func(c *gin.Context) {
			UpdateProfile(c, users)
		})
	}
}

// ListUsers filters by ?role= and ?q= (name or email).
func ListUsers(c *gin.Context, users *repository.UserRepository) {
	ctx := c.Request.Context()
	var (
		list []model.User
		err  error
	)
	if role := c.Query("role"); role != "" {
		list, err = users.GetByRole(ctx, model.Role(role))
	} else {
		list, err = users.GetAll(ctx)
	}
	if err != nil {
		controller.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewUserResponses(views.SearchUsers(list, c.Query("q"))))
}

func GetUser(c *gin.Context, users *repository.UserRepository) {
	u, err := users.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		controller.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewUserResponse(u))
}

func UpdateProfile(c *gin.Context, users *repository.UserRepository) {
	var req dto.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		controller.BadRequest(c, err)
		return
	}
	if err := users.UpdateProfile(c.Request.Context(), middleware.UserID(c), req.Name, req.Role); err != nil {
		controller.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Profile updated"})
}
