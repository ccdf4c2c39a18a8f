package auth

import (
	"net/http"
	"strings"

	"checklistapp/controller"
	"checklistapp/dto"
	"checklistapp/services"

	"github.com/gin-gonic/gin"
)

// CaptchaController lets clients check a token before submitting sign-up.
func CaptchaController(router *gin.Engine, verifier services.CaptchaVerifier) {
	routes := router.Group("/auth")
	{
		routes.POST("/captcha", func(c *gin.Context) {
			VerifyCaptcha(c, verifier)
		})
	}
}

func VerifyCaptcha(c *gin.Context, verifier services.CaptchaVerifier) {
	var req dto.CaptchaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Token is required"})
		return
	}

	result, err := verifier.Verify(c.Request.Context(), services.CaptchaRequest{
		Token:     req.Token,
		Action:    req.Action,
		UserIP:    clientIP(c),
		UserAgent: c.Request.UserAgent(),
	})
	if err != nil {
		controller.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"score":   result.Score,
		"action":  result.Action,
		"reasons": result.Reasons,
		"message": "Captcha verified successfully",
	})
}

// clientIP keeps the first address of a forwarded list.
func clientIP(c *gin.Context) string {
	ip := c.ClientIP()
	if ip == "" {
		ip = c.Request.RemoteAddr
	}
	if idx := strings.Index(ip, ","); idx != -1 {
		ip = strings.TrimSpace(ip[:idx])
	}
	return ip
}
