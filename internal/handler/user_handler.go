package handler

import (
	"net/http"

	"github.com/Baaaki/inmobiliaria-api/internal/dto"
	"github.com/Baaaki/inmobiliaria-api/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const userNotFound = "user not found"

type UserHandler struct {
	authService *service.AuthService
	userService *service.UserService
}

func NewUserHandler(authService *service.AuthService, userService *service.UserService) *UserHandler {
	return &UserHandler{
		authService: authService,
		userService: userService,
	}
}

// GetMe GET /api/users/me
func (h *UserHandler) GetMe(c *gin.Context) {
	id, ok := callerID(c)
	if !ok {
		return
	}
	h.respondUser(c, id)
}

// UpdateMe PUT /api/users/me
func (h *UserHandler) UpdateMe(c *gin.Context) {
	id, ok := callerID(c)
	if !ok {
		return
	}

	var req dto.UpdateUserRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.userService.UpdateProfile(c.Request.Context(), id, req.ToUpdate())
	if err != nil {
		fail(c, err, userNotFound)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Profile updated successfully",
		"user":    dto.NewUserResponse(user),
	})
}

// DeleteMe DELETE /api/users/me
func (h *UserHandler) DeleteMe(c *gin.Context) {
	id, ok := callerID(c)
	if !ok {
		return
	}
	h.delete(c, id)
}

// Create POST /api/users (superadmin)
func (h *UserHandler) Create(c *gin.Context) {
	var req dto.CreateUserRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.authService.CreateByAdmin(c.Request.Context(), req.Name, req.Email, req.Password, req.Role)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "User created successfully",
		"user":    dto.NewUserResponse(user),
	})
}

// GetAll GET /api/users (superadmin)
func (h *UserHandler) GetAll(c *gin.Context) {
	users, err := h.userService.GetAll(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"users": dto.NewUserResponses(users),
		"total": len(users),
	})
}

// GetByID GET /api/users/:id (superadmin)
func (h *UserHandler) GetByID(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	h.respondUser(c, id)
}

// Update PUT /api/users/:id (superadmin)
func (h *UserHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateUserRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.userService.UpdateByAdmin(c.Request.Context(), id, req.ToUpdate())
	if err != nil {
		fail(c, err, userNotFound)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "User updated successfully",
		"user":    dto.NewUserResponse(user),
	})
}

// Delete DELETE /api/users/:id (superadmin)
func (h *UserHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	h.delete(c, id)
}

func (h *UserHandler) respondUser(c *gin.Context, id uuid.UUID) {
	user, err := h.userService.GetByID(c.Request.Context(), id)
	if err != nil {
		fail(c, err, userNotFound)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": dto.NewUserResponse(user)})
}

func (h *UserHandler) delete(c *gin.Context, id uuid.UUID) {
	if _, err := h.userService.Delete(c.Request.Context(), id); err != nil {
		fail(c, err, userNotFound)
		return
	}
	c.Status(http.StatusNoContent)
}
