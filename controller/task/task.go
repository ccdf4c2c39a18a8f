package task

import (
	"net/http"

	"checklistapp/controller"
	"checklistapp/dto"
	"checklistapp/middleware"
	"checklistapp/model"
	"checklistapp/repository"

	"github.com/gin-gonic/gin"
)

func TaskController(router *gin.Engine, requireAuth gin.HandlerFunc, tasks *repository.TaskRepository) {
	routes := router.Group("/tasks", requireAuth)
	{
		routes.GET("", func(c *gin.Context) {
			ListTasks(c, tasks)
		})
		routes.GET("/:id", func(c *gin.Context) {
			GetTask(c, tasks)
		})
		routes.POST("", func(c *gin.Context) {
			CreateTask(c, tasks)
		})
		routes.PATCH("/:id", func(c *gin.Context) {
			UpdateTask(c, tasks)
		})
		routes.PUT("/:id/completed", func(c *gin.Context) {
			SetCompleted(c, tasks)
		})
		routes.DELETE("/:id", func(c *gin.Context) {
			DeleteTask(c, tasks)
		})
		routes.POST("/:id/checklist", func(c *gin.Context) {
			AddChecklistItem(c, tasks)
		})
		routes.PUT("/:id/checklist", func(c *gin.Context) {
			ReorderChecklist(c, tasks)
		})
		routes.PATCH("/:id/checklist/:itemId", func(c *gin.Context) {
			EditChecklistItem(c, tasks)
		})
		routes.DELETE("/:id/checklist/:itemId", func(c *gin.Context) {
			RemoveChecklistItem(c, tasks)
		})
	}
}

func ListTasks(c *gin.Context, tasks *repository.TaskRepository) {
	all, err := tasks.GetAll(c.Request.Context())
	if err != nil {
		controller.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, all)
}

func GetTask(c *gin.Context, tasks *repository.TaskRepository) {
	t, err := tasks.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		controller.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func CreateTask(c *gin.Context, tasks *repository.TaskRepository) {
	var req dto.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		controller.BadRequest(c, err)
		return
	}
	created, err := tasks.Create(c.Request.Context(), req.Task(middleware.UserID(c)))
	if err != nil {
		controller.Fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func UpdateTask(c *gin.Context, tasks *repository.TaskRepository) {
	var patch model.TaskPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		controller.BadRequest(c, err)
		return
	}
	if err := tasks.Update(c.Request.Context(), c.Param("id"), patch); err != nil {
		controller.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Task updated"})
}

func SetCompleted(c *gin.Context, tasks *repository.TaskRepository) {
	var req dto.CompletedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		controller.BadRequest(c, err)
		return
	}
	if err := tasks.SetCompleted(c.Request.Context(), c.Param("id"), *req.Completed); err != nil {
		controller.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Task updated"})
}

func DeleteTask(c *gin.Context, tasks *repository.TaskRepository) {
	if err := tasks.Delete(c.Request.Context(), c.Param("id")); err != nil {
		controller.Fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func AddChecklistItem(c *gin.Context, tasks *repository.TaskRepository) {
	var req dto.ChecklistItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		controller.BadRequest(c, err)
		return
	}
	item, err := tasks.AddChecklistItem(c.Request.Context(), c.Param("id"), req.Item())
	if err != nil {
		controller.Fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

func EditChecklistItem(c *gin.Context, tasks *repository.TaskRepository) {
	var edit dto.ChecklistItemEdit
	if err := c.ShouldBindJSON(&edit); err != nil {
		controller.BadRequest(c, err)
		return
	}
	item, err := tasks.EditChecklistItem(c.Request.Context(), c.Param("id"), c.Param("itemId"), edit.Apply)
	if err != nil {
		controller.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

// RemoveChecklistItem removes the item as currently stored.
func RemoveChecklistItem(c *gin.Context, tasks *repository.TaskRepository) {
	ctx := c.Request.Context()
	t, err := tasks.GetByID(ctx, c.Param("id"))
	if err != nil {
		controller.Fail(c, err)
		return
	}
	i := t.ItemIndex(c.Param("itemId"))
	if i < 0 {
		controller.Fail(c, repository.ErrItemNotFound)
		return
	}
	if err := tasks.RemoveChecklistItem(ctx, t.UID, t.ChecklistItems[i]); err != nil {
		controller.Fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func ReorderChecklist(c *gin.Context, tasks *repository.TaskRepository) {
	var req dto.ReorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		controller.BadRequest(c, err)
		return
	}
	if err := tasks.ReorderChecklist(c.Request.Context(), c.Param("id"), req.ItemIDs); err != nil {
		controller.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Checklist reordered"})
}
