package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Task is a maintenance task on a property. AssignedToID always mirrors the
// owner of the referenced property; it is derived by the task service and
// never taken from input.
type Task struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	Title        string    `gorm:"type:varchar(255);not null"`
	Description  string    `gorm:"type:text;not null"`
	IsCompleted  bool      `gorm:"not null;default:false"`
	PropertyID   uuid.UUID `gorm:"type:uuid;not null;index"`
	AssignedToID uuid.UUID `gorm:"type:uuid;not null;index"`
	CreatedAt    time.Time
	UpdatedAt    time.Time

	Property   *Property `gorm:"foreignKey:PropertyID;constraint:OnDelete:RESTRICT"`
	AssignedTo *User     `gorm:"foreignKey:AssignedToID;constraint:OnDelete:RESTRICT"`
}

func (t *Task) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
