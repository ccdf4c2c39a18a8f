package main

import (
	"checklistapp/cmd"

	"github.com/gin-gonic/gin"
)

func main() {
	gin.SetMode(gin.ReleaseMode)
	cmd.Execute()
}
