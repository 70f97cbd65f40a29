package repository

import (
	"context"
	"errors"

	"github.com/Baaaki/inmobiliaria-api/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrEmptyFilter guards mutations that would otherwise touch every row.
var ErrEmptyFilter = errors.New("repository: filter must constrain at least one field")

// PropertyFilter fields are combined with AND in a single statement.
type PropertyFilter struct {
	ID      *uuid.UUID
	OwnerID *uuid.UUID
}

func (f PropertyFilter) empty() bool {
	return f.ID == nil && f.OwnerID == nil
}

func (f PropertyFilter) apply(db *gorm.DB) *gorm.DB {
	if f.ID != nil {
		db = db.Where("properties.id = ?", *f.ID)
	}
	if f.OwnerID != nil {
		db = db.Where("properties.owner_id = ?", *f.OwnerID)
	}
	return db
}

type PropertyRepository struct {
	db *gorm.DB
}

func NewPropertyRepository(db *gorm.DB) *PropertyRepository {
	return &PropertyRepository{db: db}
}

func (r *PropertyRepository) Create(ctx context.Context, property *models.Property) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(property).Error
}

// FindOne returns the first property matching f with Owner left unloaded,
// or nil when nothing matches.
func (r *PropertyRepository) FindOne(ctx context.Context, f PropertyFilter) (*models.Property, error) {
	return r.findOne(ctx, f, false, "")
}

// FindOnePopulated is FindOne with the owner resolved.
func (r *PropertyRepository) FindOnePopulated(ctx context.Context, f PropertyFilter) (*models.Property, error) {
	return r.findOne(ctx, f, true, "")
}

// FindOneLocked is FindOne holding a row lock until the surrounding
// transaction ends. strength is clause.LockingStrengthShare for readers that
// depend on the owner and clause.LockingStrengthUpdate for owner changes.
// sqlite has no row locks and drops the clause.
func (r *PropertyRepository) FindOneLocked(ctx context.Context, f PropertyFilter, strength string) (*models.Property, error) {
	return r.findOne(ctx, f, false, strength)
}

func (r *PropertyRepository) findOne(ctx context.Context, f PropertyFilter, populate bool, lock string) (*models.Property, error) {
	q := f.apply(r.db.WithContext(ctx))
	if populate {
		q = q.Preload("Owner")
	}
	if lock != "" {
		q = q.Clauses(clause.Locking{Strength: lock})
	}

	var property models.Property
	if err := q.First(&property).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &property, nil
}

// FindPopulated lists properties matching f, newest first, owners resolved.
func (r *PropertyRepository) FindPopulated(ctx context.Context, f PropertyFilter) ([]*models.Property, error) {
	var properties []*models.Property
	err := f.apply(r.db.WithContext(ctx)).
		Preload("Owner").
		Order("properties.created_at DESC").
		Find(&properties).Error
	if err != nil {
		return nil, err
	}
	return properties, nil
}

func (r *PropertyRepository) Exists(ctx context.Context, f PropertyFilter) (bool, error) {
	var count int64
	err := f.apply(r.db.WithContext(ctx).Model(&models.Property{})).Count(&count).Error
	return count > 0, err
}

// UpdateWhere applies fields to the property matching f in one filtered
// UPDATE and returns the updated record with its owner resolved. It returns
// nil when no property matches f; f must include ID.
func (r *PropertyRepository) UpdateWhere(ctx context.Context, f PropertyFilter, fields map[string]any) (*models.Property, error) {
	if f.ID == nil {
		return nil, ErrEmptyFilter
	}

	var updated *models.Property
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := f.apply(tx.Model(&models.Property{})).Updates(fields)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		var property models.Property
		if err := tx.Preload("Owner").Where("id = ?", *f.ID).First(&property).Error; err != nil {
			return err
		}
		updated = &property
		return nil
	})
	return updated, err
}

// DeleteWhere deletes the property matching f and returns it, or nil when
// nothing matches. Dependent tasks must already be gone.
func (r *PropertyRepository) DeleteWhere(ctx context.Context, f PropertyFilter) (*models.Property, error) {
	if f.empty() {
		return nil, ErrEmptyFilter
	}

	var deleted *models.Property
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var property models.Property
		if err := f.apply(tx).First(&property).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}
		res := f.apply(tx).Where("properties.id = ?", property.ID).Delete(&models.Property{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 1 {
			deleted = &property
		}
		return nil
	})
	return deleted, err
}
