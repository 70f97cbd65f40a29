package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Property struct {
	ID          uuid.UUID                   `gorm:"type:uuid;primaryKey"`
	Title       string                      `gorm:"type:varchar(255);not null"`
	Description string                      `gorm:"type:text;not null"`
	Price       float64                     `gorm:"not null"`
	Location    string                      `gorm:"type:varchar(255);not null"`
	Bedrooms    int                         `gorm:"not null;default:0"`
	Bathrooms   int                         `gorm:"not null;default:0"`
	Area        float64                     `gorm:"not null"` // square metres
	ImageURLs   datatypes.JSONSlice[string] `gorm:"not null"`
	OwnerID     uuid.UUID                   `gorm:"type:uuid;not null;index"`
	CreatedAt   time.Time
	UpdatedAt   time.Time

	// Owner is only set when preloaded.
	Owner *User `gorm:"foreignKey:OwnerID;constraint:OnDelete:RESTRICT"`
}

func (p *Property) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.ImageURLs == nil {
		p.ImageURLs = datatypes.JSONSlice[string]{}
	}
	return nil
}
