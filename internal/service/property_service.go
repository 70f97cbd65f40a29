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
	"gorm.io/datatypes"
	"gorm.io/gorm/clause"
)

// PropertyInput is the payload for creating a property.
type PropertyInput struct {
	Title       string
	Description string
	Price       float64
	Location    string
	Bedrooms    int
	Bathrooms   int
	Area        float64
	ImageURLs   []string
}

// PropertyUpdate is a partial update. OwnerID is honoured on the admin path only.
type PropertyUpdate struct {
	Title       *string
	Description *string
	Price       *float64
	Location    *string
	Bedrooms    *int
	Bathrooms   *int
	Area        *float64
	ImageURLs   *[]string
	OwnerID     *uuid.UUID
}

type PropertyService struct {
	repos  repository.Repositories
	tx     *repository.TxRunner
	events broker.EventPublisher
}

func NewPropertyService(repos repository.Repositories, tx *repository.TxRunner, events broker.EventPublisher) *PropertyService {
	if events == nil {
		events = broker.NoopPublisher{}
	}
	return &PropertyService{
		repos:  repos,
		tx:     tx,
		events: events,
	}
}

// CreateByAgent creates a property owned by the calling agent.
func (s *PropertyService) CreateByAgent(ctx context.Context, in PropertyInput, agentID uuid.UUID) (*models.Property, error) {
	return s.create(ctx, in, agentID)
}

// CreateByAdmin creates a property for an explicit owner, who must exist.
func (s *PropertyService) CreateByAdmin(ctx context.Context, in PropertyInput, ownerID uuid.UUID) (*models.Property, error) {
	exists, err := s.repos.Users.Exists(ctx, ownerID)
	if err != nil {
		logger.Log.Error("Failed to check property owner", zap.String("owner_id", ownerID.String()), zap.Error(err))
		return nil, err
	}
	if !exists {
		return nil, ErrOwnerNotFound
	}
	return s.create(ctx, in, ownerID)
}

func (s *PropertyService) create(ctx context.Context, in PropertyInput, ownerID uuid.UUID) (*models.Property, error) {
	if err := validatePropertyInput(in); err != nil {
		return nil, err
	}

	property := &models.Property{
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		Price:       in.Price,
		Location:    in.Location,
		Bedrooms:    in.Bedrooms,
		Bathrooms:   in.Bathrooms,
		Area:        in.Area,
		ImageURLs:   imageList(in.ImageURLs),
		OwnerID:     ownerID,
	}

	if err := s.repos.Properties.Create(ctx, property); err != nil {
		logger.Log.Error("Failed to create property", zap.String("owner_id", ownerID.String()), zap.Error(err))
		return nil, err
	}

	created, err := s.repos.Properties.FindOnePopulated(ctx, repository.PropertyFilter{ID: &property.ID})
	if err != nil {
		return nil, err
	}
	if created == nil {
		return nil, ErrNotFound
	}

	logger.Log.Info("Property created",
		zap.String("property_id", property.ID.String()),
		zap.String("owner_id", ownerID.String()),
	)
	return created, nil
}

func (s *PropertyService) GetAll(ctx context.Context) ([]*models.Property, error) {
	properties, err := s.repos.Properties.FindPopulated(ctx, repository.PropertyFilter{})
	if err != nil {
		logger.Log.Error("Failed to list properties", zap.Error(err))
		return nil, err
	}
	return properties, nil
}

func (s *PropertyService) GetByID(ctx context.Context, id uuid.UUID) (*models.Property, error) {
	property, err := s.repos.Properties.FindOnePopulated(ctx, repository.PropertyFilter{ID: &id})
	if err != nil {
		logger.Log.Error("Failed to fetch property", zap.String("property_id", id.String()), zap.Error(err))
		return nil, err
	}
	if property == nil {
		return nil, ErrNotFound
	}
	return property, nil
}

// UpdateByAgent updates a property only if it belongs to agentID. The id and
// owner conditions are one filtered UPDATE; a miss on either is ErrNotFound.
// Ownership cannot be transferred on this path.
func (s *PropertyService) UpdateByAgent(ctx context.Context, id uuid.UUID, patch PropertyUpdate, agentID uuid.UUID) (*models.Property, error) {
	patch.OwnerID = nil
	fields, err := propertyFields(patch)
	if err != nil {
		return nil, err
	}

	property, err := s.repos.Properties.UpdateWhere(ctx, repository.PropertyFilter{ID: &id, OwnerID: &agentID}, fields)
	if err != nil {
		logger.Log.Error("Failed to update property",
			zap.String("property_id", id.String()),
			zap.String("agent_id", agentID.String()),
			zap.Error(err),
		)
		return nil, err
	}
	if property == nil {
		logger.Log.Debug("Agent property update missed",
			zap.String("property_id", id.String()),
			zap.String("agent_id", agentID.String()),
			zap.String("reason", s.missReason(ctx, id)),
		)
		return nil, ErrNotFound
	}

	logger.Log.Info("Property updated by agent",
		zap.String("property_id", id.String()),
		zap.String("agent_id", agentID.String()),
	)
	return property, nil
}

// UpdateByAdmin updates any property. When the owner changes, the property's
// tasks follow the new owner in the same transaction.
func (s *PropertyService) UpdateByAdmin(ctx context.Context, id uuid.UUID, patch PropertyUpdate) (*models.Property, error) {
	fields, err := propertyFields(patch)
	if err != nil {
		return nil, err
	}

	var (
		updated    *models.Property
		reassigned []*models.Task
	)
	err = s.tx.Run(ctx, func(repos repository.Repositories) error {
		current, err := repos.Properties.FindOneLocked(ctx, repository.PropertyFilter{ID: &id}, clause.LockingStrengthUpdate)
		if err != nil {
			return err
		}
		if current == nil {
			return ErrNotFound
		}
		ownerChanged := patch.OwnerID != nil && *patch.OwnerID != current.OwnerID

		if ownerChanged {
			exists, err := repos.Users.Exists(ctx, *patch.OwnerID)
			if err != nil {
				return err
			}
			if !exists {
				return ErrOwnerNotFound
			}
		}

		property, err := repos.Properties.UpdateWhere(ctx, repository.PropertyFilter{ID: &id}, fields)
		if err != nil {
			return err
		}
		if property == nil {
			return ErrNotFound
		}
		updated = property

		if !ownerChanged {
			return nil
		}
		n, err := repos.Tasks.ReassignByProperty(ctx, id, *patch.OwnerID)
		if err != nil {
			return err
		}
		if n > 0 {
			reassigned, err = repos.Tasks.FindPopulated(ctx, repository.TaskFilter{PropertyID: &id})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if !apperrors.IsKind(err, apperrors.KindNotFound) && !apperrors.IsKind(err, apperrors.KindInvalidInput) {
			logger.Log.Error("Failed to update property", zap.String("property_id", id.String()), zap.Error(err))
		}
		return nil, err
	}

	for _, task := range reassigned {
		publishTaskEvent(ctx, s.events, broker.EventTaskAssigned, task)
	}

	logger.Log.Info("Property updated by admin",
		zap.String("property_id", id.String()),
		zap.Int("tasks_reassigned", len(reassigned)),
	)
	return updated, nil
}

// DeleteByAgent deletes a property owned by agentID together with its tasks.
func (s *PropertyService) DeleteByAgent(ctx context.Context, id, agentID uuid.UUID) (*models.Property, error) {
	return s.delete(ctx, repository.PropertyFilter{ID: &id, OwnerID: &agentID})
}

// DeleteByAdmin deletes any property together with its tasks.
func (s *PropertyService) DeleteByAdmin(ctx context.Context, id uuid.UUID) (*models.Property, error) {
	return s.delete(ctx, repository.PropertyFilter{ID: &id})
}

// delete runs the task cascade and the property delete in one transaction.
// Tasks go first because tasks.property_id restricts deletes.
func (s *PropertyService) delete(ctx context.Context, f repository.PropertyFilter) (*models.Property, error) {
	var (
		deleted      *models.Property
		tasksRemoved int64
	)
	err := s.tx.Run(ctx, func(repos repository.Repositories) error {
		property, err := repos.Properties.FindOne(ctx, f)
		if err != nil {
			return err
		}
		if property == nil {
			return ErrNotFound
		}

		tasksRemoved, err = repos.Tasks.DeleteByProperty(ctx, property.ID)
		if err != nil {
			return err
		}

		deleted, err = repos.Properties.DeleteWhere(ctx, f)
		if err != nil {
			return err
		}
		if deleted == nil {
			return ErrNotFound
		}
		return nil
	})
	if err != nil {
		switch {
		case !apperrors.IsKind(err, apperrors.KindNotFound):
			logger.Log.Error("Failed to delete property", zap.String("property_id", f.ID.String()), zap.Error(err))
		case f.OwnerID != nil:
			logger.Log.Debug("Agent property delete missed",
				zap.String("property_id", f.ID.String()),
				zap.String("agent_id", f.OwnerID.String()),
				zap.String("reason", s.missReason(ctx, *f.ID)),
			)
		}
		return nil, err
	}

	logger.Log.Info("Property deleted",
		zap.String("property_id", deleted.ID.String()),
		zap.Int64("tasks_removed", tasksRemoved),
	)
	return deleted, nil
}

// SweepOrphanTasks removes tasks whose property no longer exists.
func (s *PropertyService) SweepOrphanTasks(ctx context.Context) (int64, error) {
	start := time.Now()
	n, err := s.repos.Tasks.DeleteOrphans(ctx)
	if err != nil {
		logger.Log.Error("Orphan task sweep failed", zap.Error(err))
		return 0, err
	}

	logger.Log.Info("Orphan task sweep completed",
		zap.Int64("removed", n),
		zap.Duration("duration", time.Since(start)),
	)
	return n, nil
}

// missReason tells a missing property from a foreign one. It only feeds logs;
// callers get ErrNotFound in both cases.
func (s *PropertyService) missReason(ctx context.Context, id uuid.UUID) string {
	if !logger.Log.Core().Enabled(zap.DebugLevel) {
		return ""
	}
	exists, err := s.repos.Properties.Exists(ctx, repository.PropertyFilter{ID: &id})
	switch {
	case err != nil:
		return "unknown"
	case exists:
		return "not_owned"
	default:
		return "not_found"
	}
}

func validatePropertyInput(in PropertyInput) error {
	switch {
	case strings.TrimSpace(in.Title) == "":
		return apperrors.New(apperrors.KindInvalidInput, "title is required")
	case in.Description == "":
		return apperrors.New(apperrors.KindInvalidInput, "description is required")
	case in.Location == "":
		return apperrors.New(apperrors.KindInvalidInput, "location is required")
	case in.Price < 0:
		return apperrors.New(apperrors.KindInvalidInput, "price must not be negative")
	case in.Area < 0:
		return apperrors.New(apperrors.KindInvalidInput, "area must not be negative")
	case in.Bedrooms < 0 || in.Bathrooms < 0:
		return apperrors.New(apperrors.KindInvalidInput, "bedrooms and bathrooms must not be negative")
	}
	return nil
}

// propertyFields converts a patch into column updates.
func propertyFields(p PropertyUpdate) (map[string]any, error) {
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
	if p.Price != nil {
		if *p.Price < 0 {
			return nil, apperrors.New(apperrors.KindInvalidInput, "price must not be negative")
		}
		fields["price"] = *p.Price
	}
	if p.Location != nil {
		if *p.Location == "" {
			return nil, apperrors.New(apperrors.KindInvalidInput, "location must not be empty")
		}
		fields["location"] = *p.Location
	}
	if p.Bedrooms != nil {
		if *p.Bedrooms < 0 {
			return nil, apperrors.New(apperrors.KindInvalidInput, "bedrooms must not be negative")
		}
		fields["bedrooms"] = *p.Bedrooms
	}
	if p.Bathrooms != nil {
		if *p.Bathrooms < 0 {
			return nil, apperrors.New(apperrors.KindInvalidInput, "bathrooms must not be negative")
		}
		fields["bathrooms"] = *p.Bathrooms
	}
	if p.Area != nil {
		if *p.Area < 0 {
			return nil, apperrors.New(apperrors.KindInvalidInput, "area must not be negative")
		}
		fields["area"] = *p.Area
	}
	if p.ImageURLs != nil {
		fields["image_urls"] = imageList(*p.ImageURLs)
	}
	if p.OwnerID != nil {
		fields["owner_id"] = *p.OwnerID
	}

	if len(fields) == 0 {
		return nil, ErrNoFieldsToUpdate
	}
	return fields, nil
}

// imageList never yields nil, which would be stored as JSON null.
func imageList(urls []string) datatypes.JSONSlice[string] {
	if urls == nil {
		return datatypes.JSONSlice[string]{}
	}
	return datatypes.NewJSONSlice(urls)
}
