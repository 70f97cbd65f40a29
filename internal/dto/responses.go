package dto

import (
	"time"

	"github.com/Baaaki/inmobiliaria-api/internal/models"
)

// UserResponse is the public view of a user. The password hash never leaves
// the service layer.
type UserResponse struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Email     string      `json:"email"`
	Role      models.Role `json:"role"`
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`
}

// PropertyResponse carries Owner as a *UserResponse when the owner was
// loaded and as the bare id string otherwise (the shape nested in tasks).
type PropertyResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	Location    string    `json:"location"`
	Bedrooms    int       `json:"bedrooms"`
	Bathrooms   int       `json:"bathrooms"`
	Area        float64   `json:"area"`
	ImageURLs   []string  `json:"imageUrls"`
	Owner       any       `json:"owner"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type TaskResponse struct {
	ID          string            `json:"id"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	IsCompleted bool              `json:"isCompleted"`
	Property    *PropertyResponse `json:"property"`
	AssignedTo  *UserResponse     `json:"assignedTo"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}

func NewUserResponse(u *models.User) *UserResponse {
	if u == nil {
		return nil
	}
	return &UserResponse{
		ID:        u.ID.String(),
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func NewUserResponses(users []*models.User) []*UserResponse {
	out := make([]*UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, NewUserResponse(u))
	}
	return out
}

func NewPropertyResponse(p *models.Property) *PropertyResponse {
	if p == nil {
		return nil
	}

	var owner any = p.OwnerID.String()
	if p.Owner != nil {
		owner = NewUserResponse(p.Owner)
	}

	images := []string(p.ImageURLs)
	if images == nil {
		images = []string{}
	}

	return &PropertyResponse{
		ID:          p.ID.String(),
		Title:       p.Title,
		Description: p.Description,
		Price:       p.Price,
		Location:    p.Location,
		Bedrooms:    p.Bedrooms,
		Bathrooms:   p.Bathrooms,
		Area:        p.Area,
		ImageURLs:   images,
		Owner:       owner,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func NewPropertyResponses(properties []*models.Property) []*PropertyResponse {
	out := make([]*PropertyResponse, 0, len(properties))
	for _, p := range properties {
		out = append(out, NewPropertyResponse(p))
	}
	return out
}

func NewTaskResponse(t *models.Task) *TaskResponse {
	if t == nil {
		return nil
	}
	return &TaskResponse{
		ID:          t.ID.String(),
		Title:       t.Title,
		Description: t.Description,
		IsCompleted: t.IsCompleted,
		Property:    NewPropertyResponse(t.Property),
		AssignedTo:  NewUserResponse(t.AssignedTo),
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func NewTaskResponses(tasks []*models.Task) []*TaskResponse {
	out := make([]*TaskResponse, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, NewTaskResponse(t))
	}
	return out
}
