package auth

import (
	"net/http"

	"checklistapp/controller"
	"checklistapp/dto"
	"checklistapp/model"
	"checklistapp/services"

	"github.com/gin-gonic/gin"
)

func SignUpController(router *gin.Engine, authService *services.AuthService) {
	router.POST("/auth/signup", func(c *gin.Context) {
		Signup(c, authService)
	})
}

func Signup(c *gin.Context, authService *services.AuthService) {
	var request dto.SignupRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		controller.BadRequest(c, err)
		return
	}

	in := services.SignUpInput{
		Email:    request.Email,
		Password: request.Password,
		Name:     request.Name,
		Role:     model.Role(request.Role),
	}
	if request.Captcha != nil {
		in.Captcha = &services.CaptchaRequest{
			Token:     request.Captcha.Token,
			Action:    request.Captcha.Action,
			UserIP:    clientIP(c),
			UserAgent: c.Request.UserAgent(),
		}
	}

	user, err := authService.SignUp(c.Request.Context(), in)
	if err != nil {
		controller.Fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message": "User registered successfully",
		"user":    dto.NewUserResponse(user),
	})
}
