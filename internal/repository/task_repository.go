package repository

import (
	"context"
	"errors"

	"github.com/Baaaki/inmobiliaria-api/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TaskFilter fields are combined with AND in a single statement.
type TaskFilter struct {
	ID           *uuid.UUID
	PropertyID   *uuid.UUID
	AssignedToID *uuid.UUID
}

func (f TaskFilter) empty() bool {
	return f.ID == nil && f.PropertyID == nil && f.AssignedToID == nil
}

func (f TaskFilter) apply(db *gorm.DB) *gorm.DB {
	if f.ID != nil {
		db = db.Where("tasks.id = ?", *f.ID)
	}
	if f.PropertyID != nil {
		db = db.Where("tasks.property_id = ?", *f.PropertyID)
	}
	if f.AssignedToID != nil {
		db = db.Where("tasks.assigned_to_id = ?", *f.AssignedToID)
	}
	return db
}

type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) Create(ctx context.Context, task *models.Task) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(task).Error
}

// populated resolves the property (owner left as a bare id) and the assignee.
func populated(db *gorm.DB) *gorm.DB {
	return db.Preload("Property").Preload("AssignedTo")
}

func (r *TaskRepository) FindOne(ctx context.Context, f TaskFilter) (*models.Task, error) {
	var task models.Task
	if err := f.apply(r.db.WithContext(ctx)).First(&task).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &task, nil
}

func (r *TaskRepository) FindOnePopulated(ctx context.Context, f TaskFilter) (*models.Task, error) {
	var task models.Task
	if err := populated(f.apply(r.db.WithContext(ctx))).First(&task).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &task, nil
}

// FindPopulated lists tasks matching f, newest first.
func (r *TaskRepository) FindPopulated(ctx context.Context, f TaskFilter) ([]*models.Task, error) {
	var tasks []*models.Task
	err := populated(f.apply(r.db.WithContext(ctx))).
		Order("tasks.created_at DESC").
		Find(&tasks).Error
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

// UpdateWhere applies fields to the task matching f in one filtered UPDATE and
// returns the populated result, or nil when no task matches. f must include ID.
func (r *TaskRepository) UpdateWhere(ctx context.Context, f TaskFilter, fields map[string]any) (*models.Task, error) {
	if f.ID == nil {
		return nil, ErrEmptyFilter
	}

	var updated *models.Task
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := f.apply(tx.Model(&models.Task{})).Updates(fields)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		var task models.Task
		if err := populated(tx).Where("tasks.id = ?", *f.ID).First(&task).Error; err != nil {
			return err
		}
		updated = &task
		return nil
	})
	return updated, err
}

// DeleteWhere deletes the task matching f and returns it, or nil when nothing matches.
func (r *TaskRepository) DeleteWhere(ctx context.Context, f TaskFilter) (*models.Task, error) {
	if f.empty() {
		return nil, ErrEmptyFilter
	}

	var deleted *models.Task
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var task models.Task
		if err := f.apply(tx).First(&task).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}
		res := f.apply(tx).Where("tasks.id = ?", task.ID).Delete(&models.Task{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 1 {
			deleted = &task
		}
		return nil
	})
	return deleted, err
}

// DeleteByProperty removes every task of the property (cascade step).
func (r *TaskRepository) DeleteByProperty(ctx context.Context, propertyID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).Where("property_id = ?", propertyID).Delete(&models.Task{})
	return res.RowsAffected, res.Error
}

// ReassignByProperty points every task of the property at a new assignee.
func (r *TaskRepository) ReassignByProperty(ctx context.Context, propertyID, assigneeID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.Task{}).
		Where("property_id = ?", propertyID).
		Update("assigned_to_id", assigneeID)
	return res.RowsAffected, res.Error
}

// DeleteOrphans removes tasks whose property no longer exists.
func (r *TaskRepository) DeleteOrphans(ctx context.Context) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("property_id NOT IN (?)", r.db.Model(&models.Property{}).Select("id")).
		Delete(&models.Task{})
	return res.RowsAffected, res.Error
}
