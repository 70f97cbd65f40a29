package service

import (
	"context"
	"errors"
	"strings"

	"github.com/Baaaki/inmobiliaria-api/internal/models"
	"github.com/Baaaki/inmobiliaria-api/internal/repository"
	"github.com/Baaaki/inmobiliaria-api/internal/utils"
	"github.com/Baaaki/inmobiliaria-api/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// UserUpdate is a partial update; nil fields are left untouched.
type UserUpdate struct {
	Name     *string
	Email    *string
	Password *string
	Role     *models.Role
}

type UserService struct {
	userRepo     *repository.UserRepository
	propertyRepo *repository.PropertyRepository
}

func NewUserService(userRepo *repository.UserRepository, propertyRepo *repository.PropertyRepository) *UserService {
	return &UserService{
		userRepo:     userRepo,
		propertyRepo: propertyRepo,
	}
}

func (s *UserService) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.userRepo.GetUserByID(ctx, id)
	if err != nil {
		logger.Log.Error("Failed to fetch user", zap.String("user_id", id.String()), zap.Error(err))
		return nil, err
	}
	if user == nil {
		return nil, ErrNotFound
	}
	return user, nil
}

func (s *UserService) GetAll(ctx context.Context) ([]*models.User, error) {
	users, err := s.userRepo.GetAllUsers(ctx)
	if err != nil {
		logger.Log.Error("Failed to fetch all users", zap.Error(err))
		return nil, err
	}

	logger.Log.Debug("Fetched all users", zap.Int("count", len(users)))
	return users, nil
}

// UpdateProfile is the self-service update: the role can never change here.
func (s *UserService) UpdateProfile(ctx context.Context, id uuid.UUID, patch UserUpdate) (*models.User, error) {
	patch.Role = nil
	return s.update(ctx, id, patch)
}

// UpdateByAdmin may change any field, including the role.
func (s *UserService) UpdateByAdmin(ctx context.Context, id uuid.UUID, patch UserUpdate) (*models.User, error) {
	if patch.Role != nil && !patch.Role.Valid() {
		return nil, ErrInvalidRole
	}
	return s.update(ctx, id, patch)
}

func (s *UserService) update(ctx context.Context, id uuid.UUID, patch UserUpdate) (*models.User, error) {
	fields := map[string]any{}

	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if err := validateName(name); err != nil {
			return nil, err
		}
		fields["name"] = name
	}
	if patch.Email != nil {
		email := normalizeEmail(*patch.Email)
		if err := validateEmail(email); err != nil {
			return nil, err
		}
		fields["email"] = email
	}
	if patch.Password != nil {
		if err := validatePassword(*patch.Password); err != nil {
			return nil, err
		}
		hash, err := utils.HashPassword(*patch.Password)
		if err != nil {
			logger.Log.Error("Failed to hash password", zap.Error(err))
			return nil, err
		}
		fields["password_hash"] = hash
	}
	if patch.Role != nil {
		fields["role"] = *patch.Role
	}

	if len(fields) == 0 {
		return nil, ErrNoFieldsToUpdate
	}

	user, err := s.userRepo.UpdateUser(ctx, id, fields)
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailAlreadyExists
		}
		logger.Log.Error("Failed to update user", zap.String("user_id", id.String()), zap.Error(err))
		return nil, err
	}
	if user == nil {
		return nil, ErrNotFound
	}

	logger.Log.Info("User updated",
		zap.String("user_id", id.String()),
		zap.Int("fields", len(fields)),
	)
	return user, nil
}

// Delete removes a user that owns no properties. A user that still owns any
// property is left untouched and ErrUserHasProperties is returned.
func (s *UserService) Delete(ctx context.Context, id uuid.UUID) (*models.User, error) {
	hasProperties, err := s.propertyRepo.Exists(ctx, repository.PropertyFilter{OwnerID: &id})
	if err != nil {
		logger.Log.Error("Failed to check user properties", zap.String("user_id", id.String()), zap.Error(err))
		return nil, err
	}
	if hasProperties {
		logger.Log.Warn("Refusing to delete user with properties", zap.String("user_id", id.String()))
		return nil, ErrUserHasProperties
	}

	user, err := s.userRepo.DeleteUser(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			return nil, ErrUserHasProperties
		}
		logger.Log.Error("Failed to delete user", zap.String("user_id", id.String()), zap.Error(err))
		return nil, err
	}
	if user == nil {
		return nil, ErrNotFound
	}

	logger.Log.Info("User deleted", zap.String("user_id", id.String()))
	return user, nil
}
