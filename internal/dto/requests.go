package dto

import (
	"github.com/Baaaki/inmobiliaria-api/internal/models"
	"github.com/Baaaki/inmobiliaria-api/internal/service"
	"github.com/google/uuid"
)

type RegisterRequest struct {
	Name     string `json:"name" binding:"required,max=100"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6,max=72"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type CreateUserRequest struct {
	Name     string      `json:"name" binding:"required,max=100"`
	Email    string      `json:"email" binding:"required,email"`
	Password string      `json:"password" binding:"required,min=6,max=72"`
	Role     models.Role `json:"role" binding:"required,oneof=superadmin agente"`
}

// UpdateUserRequest serves both the self-service and the admin update. The
// self-service handler ignores Role.
type UpdateUserRequest struct {
	Name     *string      `json:"name" binding:"omitempty,min=1,max=100"`
	Email    *string      `json:"email" binding:"omitempty,email"`
	Password *string      `json:"password" binding:"omitempty,min=6,max=72"`
	Role     *models.Role `json:"role" binding:"omitempty,oneof=superadmin agente"`
}

func (r UpdateUserRequest) ToUpdate() service.UserUpdate {
	return service.UserUpdate{
		Name:     r.Name,
		Email:    r.Email,
		Password: r.Password,
		Role:     r.Role,
	}
}

type CreatePropertyRequest struct {
	Title       string   `json:"title" binding:"required"`
	Description string   `json:"description" binding:"required"`
	Price       *float64 `json:"price" binding:"required,gte=0"`
	Location    string   `json:"location" binding:"required"`
	Bedrooms    int      `json:"bedrooms" binding:"gte=0"`
	Bathrooms   int      `json:"bathrooms" binding:"gte=0"`
	Area        *float64 `json:"area" binding:"required,gte=0"`
	ImageURLs   []string `json:"imageUrls" binding:"omitempty,dive,url"`
}

// ToInput must only be called after binding, which guarantees Price and Area.
func (r CreatePropertyRequest) ToInput() service.PropertyInput {
	return service.PropertyInput{
		Title:       r.Title,
		Description: r.Description,
		Price:       *r.Price,
		Location:    r.Location,
		Bedrooms:    r.Bedrooms,
		Bathrooms:   r.Bathrooms,
		Area:        *r.Area,
		ImageURLs:   r.ImageURLs,
	}
}

// CreatePropertyByAdminRequest names the owner explicitly.
type CreatePropertyByAdminRequest struct {
	CreatePropertyRequest
	Owner string `json:"owner" binding:"required,uuid"`
}

type UpdatePropertyRequest struct {
	Title       *string   `json:"title" binding:"omitempty,min=1"`
	Description *string   `json:"description" binding:"omitempty,min=1"`
	Price       *float64  `json:"price" binding:"omitempty,gte=0"`
	Location    *string   `json:"location" binding:"omitempty,min=1"`
	Bedrooms    *int      `json:"bedrooms" binding:"omitempty,gte=0"`
	Bathrooms   *int      `json:"bathrooms" binding:"omitempty,gte=0"`
	Area        *float64  `json:"area" binding:"omitempty,gte=0"`
	ImageURLs   *[]string `json:"imageUrls" binding:"omitempty,dive,url"`
}

func (r UpdatePropertyRequest) ToUpdate() service.PropertyUpdate {
	return service.PropertyUpdate{
		Title:       r.Title,
		Description: r.Description,
		Price:       r.Price,
		Location:    r.Location,
		Bedrooms:    r.Bedrooms,
		Bathrooms:   r.Bathrooms,
		Area:        r.Area,
		ImageURLs:   r.ImageURLs,
	}
}

type UpdatePropertyByAdminRequest struct {
	UpdatePropertyRequest
	Owner *string `json:"owner" binding:"omitempty,uuid"`
}

func (r UpdatePropertyByAdminRequest) ToUpdate() (service.PropertyUpdate, error) {
	update := r.UpdatePropertyRequest.ToUpdate()
	if r.Owner != nil {
		ownerID, err := uuid.Parse(*r.Owner)
		if err != nil {
			return update, err
		}
		update.OwnerID = &ownerID
	}
	return update, nil
}

type CreateTaskRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description" binding:"required"`
	Property    string `json:"property" binding:"required,uuid"`
}

func (r CreateTaskRequest) ToInput() (service.TaskInput, error) {
	propertyID, err := uuid.Parse(r.Property)
	if err != nil {
		return service.TaskInput{}, err
	}
	return service.TaskInput{
		Title:       r.Title,
		Description: r.Description,
		PropertyID:  propertyID,
	}, nil
}

// UpdateTaskRequest is the agent patch; property and assignedTo are not
// bound even when present in the body.
type UpdateTaskRequest struct {
	Title       *string `json:"title" binding:"omitempty,min=1"`
	Description *string `json:"description" binding:"omitempty,min=1"`
	IsCompleted *bool   `json:"isCompleted"`
}

func (r UpdateTaskRequest) ToUpdate() service.TaskUpdate {
	return service.TaskUpdate{
		Title:       r.Title,
		Description: r.Description,
		IsCompleted: r.IsCompleted,
	}
}

type UpdateTaskByAdminRequest struct {
	UpdateTaskRequest
	Property *string `json:"property" binding:"omitempty,uuid"`
}

func (r UpdateTaskByAdminRequest) ToUpdate() (service.TaskAdminUpdate, error) {
	update := service.TaskAdminUpdate{TaskUpdate: r.UpdateTaskRequest.ToUpdate()}
	if r.Property != nil {
		propertyID, err := uuid.Parse(*r.Property)
		if err != nil {
			return update, err
		}
		update.PropertyID = &propertyID
	}
	return update, nil
}
