package handler

import (
	"net/http"

	"github.com/Baaaki/inmobiliaria-api/internal/dto"
	"github.com/Baaaki/inmobiliaria-api/internal/models"
	"github.com/Baaaki/inmobiliaria-api/internal/service"
	"github.com/gin-gonic/gin"
)

const taskNotFound = "task not found"

type TaskHandler struct {
	taskService *service.TaskService
}

func NewTaskHandler(taskService *service.TaskService) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
	}
}

// CreateByAgent POST /api/tasks/agent
// A property the agent does not own reads as missing.
func (h *TaskHandler) CreateByAgent(c *gin.Context) {
	agentID, ok := callerID(c)
	if !ok {
		return
	}

	var req dto.CreateTaskRequest
	if !bindJSON(c, &req) {
		return
	}
	in, err := req.ToInput()
	if err != nil {
		_ = c.Error(invalidID(err))
		return
	}

	task, err := h.taskService.CreateByAgent(c.Request.Context(), in, agentID)
	if err != nil {
		fail(c, err, propertyNotFound)
		return
	}
	respondTaskCreated(c, task)
}

// CreateByAdmin POST /api/tasks/admin
func (h *TaskHandler) CreateByAdmin(c *gin.Context) {
	var req dto.CreateTaskRequest
	if !bindJSON(c, &req) {
		return
	}
	in, err := req.ToInput()
	if err != nil {
		_ = c.Error(invalidID(err))
		return
	}

	task, err := h.taskService.CreateByAdmin(c.Request.Context(), in)
	if err != nil {
		fail(c, err, propertyNotFound)
		return
	}
	respondTaskCreated(c, task)
}

// GetAllForAgent GET /api/tasks/agent
func (h *TaskHandler) GetAllForAgent(c *gin.Context) {
	agentID, ok := callerID(c)
	if !ok {
		return
	}

	tasks, err := h.taskService.GetAllForAgent(c.Request.Context(), agentID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	respondTasks(c, tasks)
}

// GetAll GET /api/tasks/admin
func (h *TaskHandler) GetAll(c *gin.Context) {
	tasks, err := h.taskService.GetAll(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	respondTasks(c, tasks)
}

// GetByIDForAgent GET /api/tasks/agent/:id
func (h *TaskHandler) GetByIDForAgent(c *gin.Context) {
	agentID, ok := callerID(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	task, err := h.taskService.GetByIDForAgent(c.Request.Context(), id, agentID)
	if err != nil {
		fail(c, err, taskNotFound)
		return
	}
	c.JSON(http.StatusOK, gin.H{"task": dto.NewTaskResponse(task)})
}

// GetByIDForAdmin GET /api/tasks/admin/:id
func (h *TaskHandler) GetByIDForAdmin(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	task, err := h.taskService.GetByIDForAdmin(c.Request.Context(), id)
	if err != nil {
		fail(c, err, taskNotFound)
		return
	}
	c.JSON(http.StatusOK, gin.H{"task": dto.NewTaskResponse(task)})
}

// GetByPropertyForAgent GET /api/tasks/property/:propertyId
func (h *TaskHandler) GetByPropertyForAgent(c *gin.Context) {
	agentID, ok := callerID(c)
	if !ok {
		return
	}
	propertyID, ok := pathID(c, "propertyId")
	if !ok {
		return
	}

	tasks, err := h.taskService.GetByPropertyForAgent(c.Request.Context(), propertyID, agentID)
	if err != nil {
		fail(c, err, propertyNotFound)
		return
	}
	respondTasks(c, tasks)
}

// GetByPropertyForAdmin GET /api/tasks/admin/property/:propertyId
func (h *TaskHandler) GetByPropertyForAdmin(c *gin.Context) {
	propertyID, ok := pathID(c, "propertyId")
	if !ok {
		return
	}

	tasks, err := h.taskService.GetByPropertyForAdmin(c.Request.Context(), propertyID)
	if err != nil {
		fail(c, err, propertyNotFound)
		return
	}
	respondTasks(c, tasks)
}

// UpdateByAgent PUT /api/tasks/agent/:id
func (h *TaskHandler) UpdateByAgent(c *gin.Context) {
	agentID, ok := callerID(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateTaskRequest
	if !bindJSON(c, &req) {
		return
	}

	task, err := h.taskService.UpdateByAgent(c.Request.Context(), id, req.ToUpdate(), agentID)
	if err != nil {
		fail(c, err, taskNotFound)
		return
	}
	respondTaskUpdated(c, task)
}

// UpdateByAdmin PUT /api/tasks/admin/:id
// Moving the task to an unknown property is reported as not found.
func (h *TaskHandler) UpdateByAdmin(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateTaskByAdminRequest
	if !bindJSON(c, &req) {
		return
	}
	patch, err := req.ToUpdate()
	if err != nil {
		_ = c.Error(invalidID(err))
		return
	}

	task, err := h.taskService.UpdateByAdmin(c.Request.Context(), id, patch)
	if err != nil {
		fail(c, err, "task or property not found")
		return
	}
	respondTaskUpdated(c, task)
}

// DeleteByAgent DELETE /api/tasks/agent/:id
func (h *TaskHandler) DeleteByAgent(c *gin.Context) {
	agentID, ok := callerID(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if _, err := h.taskService.DeleteByAgent(c.Request.Context(), id, agentID); err != nil {
		fail(c, err, taskNotFound)
		return
	}
	c.Status(http.StatusNoContent)
}

// DeleteByAdmin DELETE /api/tasks/admin/:id
func (h *TaskHandler) DeleteByAdmin(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if _, err := h.taskService.DeleteByAdmin(c.Request.Context(), id); err != nil {
		fail(c, err, taskNotFound)
		return
	}
	c.Status(http.StatusNoContent)
}

func respondTasks(c *gin.Context, tasks []*models.Task) {
	c.JSON(http.StatusOK, gin.H{
		"tasks": dto.NewTaskResponses(tasks),
		"total": len(tasks),
	})
}

func respondTaskCreated(c *gin.Context, task *models.Task) {
	c.JSON(http.StatusCreated, gin.H{
		"message": "Task created successfully",
		"task":    dto.NewTaskResponse(task),
	})
}

func respondTaskUpdated(c *gin.Context, task *models.Task) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Task updated successfully",
		"task":    dto.NewTaskResponse(task),
	})
}
