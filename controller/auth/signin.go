package auth

import (
	"net/http"

	"checklistapp/controller"
	"checklistapp/dto"
	"checklistapp/services"

	"github.com/gin-gonic/gin"
)

func SignInController(router *gin.Engine, authService *services.AuthService) {
	router.POST("/auth/signin", func(c *gin.Context) {
		Signin(c, authService)
	})
}

func Signin(c *gin.Context, authService *services.AuthService) {
	var request dto.SigninRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		controller.BadRequest(c, err)
		return
	}

	token, user, err := authService.SignIn(c.Request.Context(), request.Email, request.Password)
	if err != nil {
		controller.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.TokenResponse{
		AccessToken: token,
		User:        dto.NewUserResponse(user),
	})
}
