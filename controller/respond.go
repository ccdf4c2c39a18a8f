// Package controller holds what the HTTP handlers under it share.
package controller

import (
	"net/http"

	"checklistapp/services"

	"github.com/gin-gonic/gin"
)

var alertStatus = map[services.AlertKind]int{
	services.AlertConnectivity: http.StatusServiceUnavailable,
	services.AlertValidation:   http.StatusBadRequest,
	services.AlertCredentials:  http.StatusUnauthorized,
	services.AlertNotFound:     http.StatusNotFound,
	services.AlertGeneric:      http.StatusInternalServerError,
}

// Fail writes err as an alert with the matching status code.
func Fail(c *gin.Context, err error) {
	alert := services.Describe(err)
	c.AbortWithStatusJSON(alertStatus[alert.Kind], gin.H{"error": alert.Message, "alert": alert})
}

// BadRequest reports a body that could not be bound.
func BadRequest(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
}
