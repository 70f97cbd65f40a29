package handler

import (
	"net/http"

	"github.com/Baaaki/inmobiliaria-api/internal/dto"
	"github.com/Baaaki/inmobiliaria-api/internal/models"
	"github.com/Baaaki/inmobiliaria-api/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const propertyNotFound = "property not found"

type PropertyHandler struct {
	propertyService *service.PropertyService
}

func NewPropertyHandler(propertyService *service.PropertyService) *PropertyHandler {
	return &PropertyHandler{
		propertyService: propertyService,
	}
}

// GetAll GET /api/properties (public)
func (h *PropertyHandler) GetAll(c *gin.Context) {
	properties, err := h.propertyService.GetAll(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"properties": dto.NewPropertyResponses(properties),
		"total":      len(properties),
	})
}

// GetByID GET /api/properties/:id (public)
func (h *PropertyHandler) GetByID(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	property, err := h.propertyService.GetByID(c.Request.Context(), id)
	if err != nil {
		fail(c, err, propertyNotFound)
		return
	}

	c.JSON(http.StatusOK, gin.H{"property": dto.NewPropertyResponse(property)})
}

// CreateByAgent POST /api/properties/agent
func (h *PropertyHandler) CreateByAgent(c *gin.Context) {
	agentID, ok := callerID(c)
	if !ok {
		return
	}

	var req dto.CreatePropertyRequest
	if !bindJSON(c, &req) {
		return
	}

	property, err := h.propertyService.CreateByAgent(c.Request.Context(), req.ToInput(), agentID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	respondPropertyCreated(c, property)
}

// CreateByAdmin POST /api/properties/admin
func (h *PropertyHandler) CreateByAdmin(c *gin.Context) {
	var req dto.CreatePropertyByAdminRequest
	if !bindJSON(c, &req) {
		return
	}

	ownerID, err := uuid.Parse(req.Owner)
	if err != nil {
		_ = c.Error(invalidID(err))
		return
	}

	property, err := h.propertyService.CreateByAdmin(c.Request.Context(), req.ToInput(), ownerID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	respondPropertyCreated(c, property)
}

// UpdateByAgent PUT /api/properties/agent/:id
func (h *PropertyHandler) UpdateByAgent(c *gin.Context) {
	agentID, ok := callerID(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdatePropertyRequest
	if !bindJSON(c, &req) {
		return
	}

	property, err := h.propertyService.UpdateByAgent(c.Request.Context(), id, req.ToUpdate(), agentID)
	if err != nil {
		fail(c, err, propertyNotFound)
		return
	}
	respondPropertyUpdated(c, property)
}

// UpdateByAdmin PUT /api/properties/admin/:id
func (h *PropertyHandler) UpdateByAdmin(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdatePropertyByAdminRequest
	if !bindJSON(c, &req) {
		return
	}

	patch, err := req.ToUpdate()
	if err != nil {
		_ = c.Error(invalidID(err))
		return
	}

	property, err := h.propertyService.UpdateByAdmin(c.Request.Context(), id, patch)
	if err != nil {
		fail(c, err, propertyNotFound)
		return
	}
	respondPropertyUpdated(c, property)
}

// DeleteByAgent DELETE /api/properties/agent/:id
func (h *PropertyHandler) DeleteByAgent(c *gin.Context) {
	agentID, ok := callerID(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if _, err := h.propertyService.DeleteByAgent(c.Request.Context(), id, agentID); err != nil {
		fail(c, err, propertyNotFound)
		return
	}
	c.Status(http.StatusNoContent)
}

// DeleteByAdmin DELETE /api/properties/admin/:id
func (h *PropertyHandler) DeleteByAdmin(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if _, err := h.propertyService.DeleteByAdmin(c.Request.Context(), id); err != nil {
		fail(c, err, propertyNotFound)
		return
	}
	c.Status(http.StatusNoContent)
}

func respondPropertyCreated(c *gin.Context, property *models.Property) {
	c.JSON(http.StatusCreated, gin.H{
		"message":  "Property created successfully",
		"property": dto.NewPropertyResponse(property),
	})
}

func respondPropertyUpdated(c *gin.Context, property *models.Property) {
	c.JSON(http.StatusOK, gin.H{
		"message":  "Property updated successfully",
		"property": dto.NewPropertyResponse(property),
	})
}
