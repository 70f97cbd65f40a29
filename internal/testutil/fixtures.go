package testutil

import (
	"fmt"
	"testing"
	"time"

	"github.com/Baaaki/inmobiliaria-api/internal/models"
	"github.com/Baaaki/inmobiliaria-api/internal/utils"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	TestJWTSecret = "test-secret-key-for-jwt-signing"
	TestPassword  = "Test123456"
)

// CreateTestUser inserts a user with TestPassword hashed
func CreateTestUser(t *testing.T, db *gorm.DB, name, email string, role models.Role) *models.User {
	t.Helper()

	hashedPassword, err := utils.HashPassword(TestPassword)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}

	user := &models.User{
		Name:         name,
		Email:        email,
		PasswordHash: hashedPassword,
		Role:         role,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}
	return user
}

// CreateTestAgent inserts an agente with a unique email
func CreateTestAgent(t *testing.T, db *gorm.DB, name string) *models.User {
	t.Helper()
	return CreateTestUser(t, db, name, fmt.Sprintf("%s-%s@example.com", name, uuid.NewString()[:8]), models.RoleAgent)
}

// CreateTestAdmin inserts a superadmin with a unique email
func CreateTestAdmin(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	return CreateTestUser(t, db, "admin", fmt.Sprintf("admin-%s@example.com", uuid.NewString()[:8]), models.RoleSuperadmin)
}

// CreateTestProperty inserts a property owned by ownerID
func CreateTestProperty(t *testing.T, db *gorm.DB, ownerID uuid.UUID, title string) *models.Property {
	t.Helper()

	property := &models.Property{
		Title:       title,
		Description: "Bright flat close to the park",
		Price:       250000,
		Location:    "Madrid",
		Bedrooms:    3,
		Bathrooms:   2,
		Area:        95.5,
		ImageURLs:   datatypes.JSONSlice[string]{"https://example.com/1.jpg"},
		OwnerID:     ownerID,
	}
	if err := db.Omit("Owner").Create(property).Error; err != nil {
		t.Fatalf("Failed to create test property: %v", err)
	}
	return property
}

// CreateTestTask inserts a task on property assigned to the property's owner
func CreateTestTask(t *testing.T, db *gorm.DB, property *models.Property, title string) *models.Task {
	t.Helper()

	task := &models.Task{
		Title:        title,
		Description:  "Fix the boiler",
		PropertyID:   property.ID,
		AssignedToID: property.OwnerID,
	}
	if err := db.Omit("Property", "AssignedTo").Create(task).Error; err != nil {
		t.Fatalf("Failed to create test task: %v", err)
	}
	return task
}

// TokenFor signs a bearer token for user with TestJWTSecret
func TokenFor(t *testing.T, user *models.User) string {
	t.Helper()

	token, err := utils.GenerateToken(user, TestJWTSecret, time.Hour)
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}
	return token
}
