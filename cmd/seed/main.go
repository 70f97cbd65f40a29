package main

import (
	"context"
	"errors"
	"log"
	"os"
	"time"

	"github.com/Baaaki/inmobiliaria-api/internal/apperrors"
	"github.com/Baaaki/inmobiliaria-api/internal/config"
	"github.com/Baaaki/inmobiliaria-api/internal/database"
	"github.com/Baaaki/inmobiliaria-api/internal/models"
	"github.com/Baaaki/inmobiliaria-api/internal/repository"
	"github.com/Baaaki/inmobiliaria-api/internal/service"
	"github.com/Baaaki/inmobiliaria-api/pkg/logger"
	"go.uber.org/zap"
)

// seed creates the first superadmin and, optionally, a test agent. Accounts
// that already exist are left as they are, so it is safe to run repeatedly.
func main() {
	cfg := config.Load()
	if cfg.DatabaseURL == "" {
		log.Fatal("Missing environment variable: DATABASE_URL")
	}

	if err := logger.Init(cfg.Environment); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	adminName := os.Getenv("ADMIN_NAME")
	adminEmail := os.Getenv("ADMIN_EMAIL")
	adminPassword := os.Getenv("ADMIN_PASSWORD")
	if adminName == "" || adminEmail == "" || adminPassword == "" {
		log.Fatal("Missing environment variables: ADMIN_NAME, ADMIN_EMAIL, ADMIN_PASSWORD")
	}

	db, err := database.Connect(cfg)
	if err != nil {
		logger.Log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer database.Close(db)

	if err := database.Migrate(db); err != nil {
		logger.Log.Fatal("Failed to migrate database", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	// Tokens are never issued here, so the signing settings are irrelevant.
	authService := service.NewAuthService(repository.NewUserRepository(db), "", 0)

	seedUser(ctx, authService, adminName, adminEmail, adminPassword, models.RoleSuperadmin)

	agentName := os.Getenv("AGENT_NAME")
	agentEmail := os.Getenv("AGENT_EMAIL")
	agentPassword := os.Getenv("AGENT_PASSWORD")
	if agentName != "" && agentEmail != "" && agentPassword != "" {
		seedUser(ctx, authService, agentName, agentEmail, agentPassword, models.RoleAgent)
	}
}

func seedUser(ctx context.Context, authService *service.AuthService, name, email, password string, role models.Role) {
	user, err := authService.CreateByAdmin(ctx, name, email, password, role)
	switch {
	case errors.Is(err, service.ErrEmailAlreadyExists):
		logger.Log.Info("User already exists, skipping",
			zap.String("email", email),
			zap.String("role", string(role)),
		)
	case apperrors.IsKind(err, apperrors.KindInvalidInput):
		logger.Log.Fatal("Invalid seed user", zap.String("email", email), zap.Error(err))
	case err != nil:
		logger.Log.Fatal("Failed to create user", zap.String("email", email), zap.Error(err))
	default:
		logger.Log.Info("User created",
			zap.String("user_id", user.ID.String()),
			zap.String("email", user.Email),
			zap.String("role", string(user.Role)),
		)
	}
}
