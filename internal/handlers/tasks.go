package handlers

import (
	"errors"
	"log"
	"net/http"

	"taskboard/internal/board"
	"taskboard/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid"
)

type TaskHandler struct {
	taskService services.TaskService
}

func NewTaskHandler(taskService services.TaskService) *TaskHandler {
	return &TaskHandler{taskService: taskService}
}

// Register mounts the board API under group. The whole surface is one
// resource: the board's task collection.
func (h *TaskHandler) Register(group *gin.RouterGroup) {
	group.GET("/tasks", h.ListTasks)
	group.POST("/tasks", h.PostAction)
	group.PATCH("/tasks", h.UpdateTask)
	group.DELETE("/tasks", h.DeleteTask)
}

// ListTasks runs the rollover sweep best-effort, then returns the active
// tasks plus the archive grouped by month. A failed sweep is logged and
// ignored; it retries on the next load.
func (h *TaskHandler) ListTasks(c *gin.Context) {
	owner, ok := resolveOwner(c)
	if !ok {
		return
	}

	if _, err := h.taskService.RunRollover(c.Request.Context(), owner); err != nil {
		log.Printf("rollover sweep failed for %s: %v", owner, err)
	}

	list, err := h.taskService.ListBoard(c.Request.Context(), owner)
	if err != nil {
		handleTaskError(c, err)
		return
	}

	view := board.NewView(list.Active)
	c.JSON(http.StatusOK, gin.H{
		"tasks":    list.Active,
		"archives": list.Archives,
		"counts":   view.Counts(),
		"progress": view.Progress(),
	})
}

// PostAction dispatches the composite POST body: "create" inserts a task,
// "archive_rollover" runs the sweep on demand, anything else is a 400.
func (h *TaskHandler) PostAction(c *gin.Context) {
	owner, ok := resolveOwner(c)
	if !ok {
		return
	}

	var body struct {
		Action string `json:"action"`
		services.CreateTaskInput
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	switch body.Action {
	case "create":
		task, err := h.taskService.CreateTask(c.Request.Context(), owner, body.CreateTaskInput)
		if err != nil {
			handleTaskError(c, err)
			return
		}
		c.JSON(http.StatusOK, task)
	case "archive_rollover":
		archived, err := h.taskService.RunRollover(c.Request.Context(), owner)
		if err != nil {
			handleTaskError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"archived": archived})
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown action"})
	}
}

func (h *TaskHandler) UpdateTask(c *gin.Context) {
	owner, ok := resolveOwner(c)
	if !ok {
		return
	}

	var body struct {
		ID string `json:"id"`
		services.UpdateTaskInput
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if body.ID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing id"})
		return
	}

	task, err := h.taskService.UpdateTask(c.Request.Context(), owner,
		uuid.FromStringOrNil(body.ID), body.UpdateTaskInput)
	if err != nil {
		handleTaskError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func (h *TaskHandler) DeleteTask(c *gin.Context) {
	owner, ok := resolveOwner(c)
	if !ok {
		return
	}

	var body struct {
		ID string `json:"id"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if body.ID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing id"})
		return
	}

	if err := h.taskService.DeleteTask(c.Request.Context(), owner, uuid.FromStringOrNil(body.ID)); err != nil {
		handleTaskError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func resolveOwner(c *gin.Context) (string, bool) {
	ownerInterface, exists := c.Get("owner")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "no board identity resolved"})
		return "", false
	}
	owner, ok := ownerInterface.(string)
	if !ok || owner == "" {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "invalid board identity"})
		return "", false
	}
	return owner, true
}

func handleTaskError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrMissingID), errors.Is(err, services.ErrInvalidStatus):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "failed to process task request",
			"details": err.Error(),
		})
	}
}
