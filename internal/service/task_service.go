package service

import (
	"context"
	"strings"
	"time"

	"github.com/Baaaki/inmobiliaria-api/internal/apperrors"
	"github.com/Baaaki/inmobiliaria-api/internal/broker"
	"github.com/Baaaki/inmobiliaria-api/internal/models"
	"github.com/Baaaki/inmobiliaria-api/internal/repository"
	"github.com/Baaaki/inmobiliaria-api/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm/clause"
)

type TaskInput struct {
	Title       string
	Description string
	PropertyID  uuid.UUID
}

// TaskUpdate is the agent patch. The property and the assignee are not part
// of it.
type TaskUpdate struct {
	Title       *string
	Description *string
	IsCompleted *bool
}

// TaskAdminUpdate may also move the task to another property.
type TaskAdminUpdate struct {
	TaskUpdate
	PropertyID *uuid.UUID
}

type TaskService struct {
	repos  repository.Repositories
	tx     *repository.TxRunner
	events broker.EventPublisher
}

func NewTaskService(repos repository.Repositories, tx *repository.TxRunner, events broker.EventPublisher) *TaskService {
	if events == nil {
		events = broker.NoopPublisher{}
	}
	return &TaskService{
		repos:  repos,
		tx:     tx,
		events: events,
	}
}

// CreateByAgent creates a task on a property owned by agentID. A property
// that is missing or owned by someone else is ErrNotFound.
func (s *TaskService) CreateByAgent(ctx context.Context, in TaskInput, agentID uuid.UUID) (*models.Task, error) {
	return s.create(ctx, in, repository.PropertyFilter{ID: &in.PropertyID, OwnerID: &agentID})
}

// CreateByAdmin creates a task on any property. The assignee is always the
// property's current owner.
func (s *TaskService) CreateByAdmin(ctx context.Context, in TaskInput) (*models.Task, error) {
	return s.create(ctx, in, repository.PropertyFilter{ID: &in.PropertyID})
}

func (s *TaskService) create(ctx context.Context, in TaskInput, f repository.PropertyFilter) (*models.Task, error) {
	if err := validateTaskInput(in); err != nil {
		return nil, err
	}

	var created *models.Task
	err := s.tx.Run(ctx, func(repos repository.Repositories) error {
		property, err := repos.Properties.FindOneLocked(ctx, f, clause.LockingStrengthShare)
		if err != nil {
			return err
		}
		if property == nil {
			return ErrNotFound
		}

		task := &models.Task{
			Title:        strings.TrimSpace(in.Title),
			Description:  in.Description,
			PropertyID:   property.ID,
			AssignedToID: property.OwnerID,
		}
		if err := repos.Tasks.Create(ctx, task); err != nil {
			return err
		}

		created, err = repos.Tasks.FindOnePopulated(ctx, repository.TaskFilter{ID: &task.ID})
		return err
	})
	if err != nil {
		if !apperrors.IsKind(err, apperrors.KindNotFound) {
			logger.Log.Error("Failed to create task",
				zap.String("property_id", in.PropertyID.String()),
				zap.Error(err),
			)
		}
		return nil, err
	}

	logger.Log.Info("Task created",
		zap.String("task_id", created.ID.String()),
		zap.String("property_id", created.PropertyID.String()),
		zap.String("assigned_to", created.AssignedToID.String()),
	)
	publishTaskEvent(ctx, s.events, broker.EventTaskAssigned, created)
	return created, nil
}

// UpdateByAgent updates a task assigned to agentID. Only the title, the
// description and the completion flag can change.
func (s *TaskService) UpdateByAgent(ctx context.Context, id uuid.UUID, patch TaskUpdate, agentID uuid.UUID) (*models.Task, error) {
	fields, err := taskFields(patch)
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, ErrNoFieldsToUpdate
	}

	task, err := s.repos.Tasks.UpdateWhere(ctx, repository.TaskFilter{ID: &id, AssignedToID: &agentID}, fields)
	if err != nil {
		logger.Log.Error("Failed to update task",
			zap.String("task_id", id.String()),
			zap.String("agent_id", agentID.String()),
			zap.Error(err),
		)
		return nil, err
	}
	if task == nil {
		logger.Log.Debug("Agent task update missed",
			zap.String("task_id", id.String()),
			zap.String("agent_id", agentID.String()),
			zap.String("reason", s.missReason(ctx, id)),
		)
		return nil, ErrNotFound
	}

	logger.Log.Info("Task updated by agent",
		zap.String("task_id", id.String()),
		zap.String("agent_id", agentID.String()),
	)
	return task, nil
}

// UpdateByAdmin updates any task. Moving it to another property reassigns it
// to that property's owner; an unknown property leaves the task unchanged.
func (s *TaskService) UpdateByAdmin(ctx context.Context, id uuid.UUID, patch TaskAdminUpdate) (*models.Task, error) {
	fields, err := taskFields(patch.TaskUpdate)
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 && patch.PropertyID == nil {
		return nil, ErrNoFieldsToUpdate
	}

	var (
		updated       *models.Task
		previousOwner uuid.UUID
	)
	err = s.tx.Run(ctx, func(repos repository.Repositories) error {
		current, err := repos.Tasks.FindOne(ctx, repository.TaskFilter{ID: &id})
		if err != nil {
			return err
		}
		if current == nil {
			return ErrNotFound
		}
		previousOwner = current.AssignedToID

		if patch.PropertyID != nil {
			property, err := repos.Properties.FindOneLocked(ctx, repository.PropertyFilter{ID: patch.PropertyID}, clause.LockingStrengthShare)
			if err != nil {
				return err
			}
			if property == nil {
				return ErrNotFound
			}
			fields["property_id"] = property.ID
			fields["assigned_to_id"] = property.OwnerID
		}

		updated, err = repos.Tasks.UpdateWhere(ctx, repository.TaskFilter{ID: &id}, fields)
		if err != nil {
			return err
		}
		if updated == nil {
			return ErrNotFound
		}
		return nil
	})
	if err != nil {
		if !apperrors.IsKind(err, apperrors.KindNotFound) {
			logger.Log.Error("Failed to update task", zap.String("task_id", id.String()), zap.Error(err))
		}
		return nil, err
	}

	logger.Log.Info("Task updated by admin",
		zap.String("task_id", id.String()),
		zap.String("assigned_to", updated.AssignedToID.String()),
	)
	if updated.AssignedToID != previousOwner {
		publishTaskEvent(ctx, s.events, broker.EventTaskAssigned, updated)
	}
	return updated, nil
}

func (s *TaskService) DeleteByAgent(ctx context.Context, id, agentID uuid.UUID) (*models.Task, error) {
	return s.delete(ctx, repository.TaskFilter{ID: &id, AssignedToID: &agentID})
}

func (s *TaskService) DeleteByAdmin(ctx context.Context, id uuid.UUID) (*models.Task, error) {
	return s.delete(ctx, repository.TaskFilter{ID: &id})
}

func (s *TaskService) delete(ctx context.Context, f repository.TaskFilter) (*models.Task, error) {
	task, err := s.repos.Tasks.DeleteWhere(ctx, f)
	if err != nil {
		logger.Log.Error("Failed to delete task", zap.String("task_id", f.ID.String()), zap.Error(err))
		return nil, err
	}
	if task == nil {
		if f.AssignedToID != nil {
			logger.Log.Debug("Agent task delete missed",
				zap.String("task_id", f.ID.String()),
				zap.String("agent_id", f.AssignedToID.String()),
				zap.String("reason", s.missReason(ctx, *f.ID)),
			)
		}
		return nil, ErrNotFound
	}

	logger.Log.Info("Task deleted", zap.String("task_id", task.ID.String()))
	publishTaskEvent(ctx, s.events, broker.EventTaskDeleted, task)
	return task, nil
}

func (s *TaskService) GetAll(ctx context.Context) ([]*models.Task, error) {
	return s.find(ctx, repository.TaskFilter{})
}

func (s *TaskService) GetAllForAgent(ctx context.Context, agentID uuid.UUID) ([]*models.Task, error) {
	return s.find(ctx, repository.TaskFilter{AssignedToID: &agentID})
}

func (s *TaskService) GetByIDForAgent(ctx context.Context, id, agentID uuid.UUID) (*models.Task, error) {
	return s.findOne(ctx, repository.TaskFilter{ID: &id, AssignedToID: &agentID})
}

func (s *TaskService) GetByIDForAdmin(ctx context.Context, id uuid.UUID) (*models.Task, error) {
	return s.findOne(ctx, repository.TaskFilter{ID: &id})
}

// GetByPropertyForAgent lists the tasks of a property owned by agentID.
// The property lookup carries the owner condition, so a foreign property
// reads the same as a missing one.
func (s *TaskService) GetByPropertyForAgent(ctx context.Context, propertyID, agentID uuid.UUID) ([]*models.Task, error) {
	return s.findByProperty(ctx, repository.PropertyFilter{ID: &propertyID, OwnerID: &agentID})
}

func (s *TaskService) GetByPropertyForAdmin(ctx context.Context, propertyID uuid.UUID) ([]*models.Task, error) {
	return s.findByProperty(ctx, repository.PropertyFilter{ID: &propertyID})
}

func (s *TaskService) findByProperty(ctx context.Context, f repository.PropertyFilter) ([]*models.Task, error) {
	exists, err := s.repos.Properties.Exists(ctx, f)
	if err != nil {
		logger.Log.Error("Failed to check property", zap.String("property_id", f.ID.String()), zap.Error(err))
		return nil, err
	}
	if !exists {
		return nil, ErrNotFound
	}
	return s.find(ctx, repository.TaskFilter{PropertyID: f.ID})
}

func (s *TaskService) find(ctx context.Context, f repository.TaskFilter) ([]*models.Task, error) {
	tasks, err := s.repos.Tasks.FindPopulated(ctx, f)
	if err != nil {
		logger.Log.Error("Failed to list tasks", zap.Error(err))
		return nil, err
	}
	return tasks, nil
}

func (s *TaskService) findOne(ctx context.Context, f repository.TaskFilter) (*models.Task, error) {
	task, err := s.repos.Tasks.FindOnePopulated(ctx, f)
	if err != nil {
		logger.Log.Error("Failed to fetch task", zap.String("task_id", f.ID.String()), zap.Error(err))
		return nil, err
	}
	if task == nil {
		return nil, ErrNotFound
	}
	return task, nil
}

// missReason tells a missing task from one assigned to someone else, for logs.
func (s *TaskService) missReason(ctx context.Context, id uuid.UUID) string {
	if !logger.Log.Core().Enabled(zap.DebugLevel) {
		return ""
	}
	task, err := s.repos.Tasks.FindOne(ctx, repository.TaskFilter{ID: &id})
	switch {
	case err != nil:
		return "unknown"
	case task != nil:
		return "not_assigned"
	default:
		return "not_found"
	}
}

func validateTaskInput(in TaskInput) error {
	if strings.TrimSpace(in.Title) == "" {
		return apperrors.New(apperrors.KindInvalidInput, "title is required")
	}
	if in.Description == "" {
		return apperrors.New(apperrors.KindInvalidInput, "description is required")
	}
	if in.PropertyID == uuid.Nil {
		return apperrors.New(apperrors.KindInvalidInput, "property is required")
	}
	return nil
}

func taskFields(p TaskUpdate) (map[string]any, error) {
	fields := map[string]any{}
	if p.Title != nil {
		title := strings.TrimSpace(*p.Title)
		if title == "" {
			return nil, apperrors.New(apperrors.KindInvalidInput, "title must not be empty")
		}
		fields["title"] = title
	}
	if p.Description != nil {
		if *p.Description == "" {
			return nil, apperrors.New(apperrors.KindInvalidInput, "description must not be empty")
		}
		fields["description"] = *p.Description
	}
	if p.IsCompleted != nil {
		fields["is_completed"] = *p.IsCompleted
	}
	return fields, nil
}

// publishTaskEvent is best effort: a failed publish is logged and dropped.
func publishTaskEvent(ctx context.Context, events broker.EventPublisher, eventType string, task *models.Task) {
	event := broker.TaskEvent{
		Type:       eventType,
		TaskID:     task.ID.String(),
		PropertyID: task.PropertyID.String(),
		AssignedTo: task.AssignedToID.String(),
		Timestamp:  time.Now().UTC(),
	}
	if err := events.Publish(ctx, event); err != nil {
		logger.Log.Warn("Failed to publish task event",
			zap.String("type", eventType),
			zap.String("task_id", event.TaskID),
			zap.Error(err),
		)
	}
}
