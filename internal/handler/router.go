package handler

import (
	"net/http"
	"slices"
	"time"

	"github.com/Baaaki/inmobiliaria-api/internal/middleware"
	"github.com/Baaaki/inmobiliaria-api/internal/models"
	"github.com/Baaaki/inmobiliaria-api/internal/service"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RouterDeps carries everything the HTTP layer needs. RateLimiter may be nil,
// in which case the auth endpoints are not rate limited.
type RouterDeps struct {
	AuthService     *service.AuthService
	UserService     *service.UserService
	PropertyService *service.PropertyService
	TaskService     *service.TaskService
	RateLimiter     *middleware.RateLimiter

	JWTSecret          string
	Environment        string
	CORSAllowedOrigins []string
}

func NewRouter(deps RouterDeps) *gin.Engine {
	middleware.UseJSONFieldNames()

	router := gin.New()
	router.Use(
		middleware.Recovery(deps.Environment),
		middleware.RequestLogger(),
		corsMiddleware(deps.CORSAllowedOrigins),
		middleware.SecurityHeadersMiddleware(),
		middleware.HSTSMiddleware(deps.Environment == "production"),
		middleware.ErrorHandler(deps.Environment),
	)

	authHandler := NewAuthHandler(deps.AuthService)
	userHandler := NewUserHandler(deps.AuthService, deps.UserService)
	propertyHandler := NewPropertyHandler(deps.PropertyService)
	taskHandler := NewTaskHandler(deps.TaskService)

	authenticated := middleware.AuthMiddleware(deps.JWTSecret)
	agentOnly := middleware.RequireRole(models.RoleAgent)
	adminOnly := middleware.RequireRole(models.RoleSuperadmin)

	api := router.Group("/api")
	api.GET("", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "inmobiliaria API is running"})
	})

	users := api.Group("/users")
	{
		public := users.Group("")
		if deps.RateLimiter != nil {
			public.Use(deps.RateLimiter.Middleware())
		}
		public.POST("/register", authHandler.Register)
		public.POST("/login", authHandler.Login)

		me := users.Group("/me", authenticated)
		me.GET("", userHandler.GetMe)
		me.PUT("", userHandler.UpdateMe)
		me.DELETE("", userHandler.DeleteMe)

		admin := users.Group("", authenticated, adminOnly)
		admin.POST("", userHandler.Create)
		admin.GET("", userHandler.GetAll)
		admin.GET("/:id", userHandler.GetByID)
		admin.PUT("/:id", userHandler.Update)
		admin.DELETE("/:id", userHandler.Delete)
	}

	properties := api.Group("/properties")
	{
		properties.GET("", propertyHandler.GetAll)
		properties.GET("/:id", propertyHandler.GetByID)

		agent := properties.Group("/agent", authenticated, agentOnly)
		agent.POST("", propertyHandler.CreateByAgent)
		agent.PUT("/:id", propertyHandler.UpdateByAgent)
		agent.DELETE("/:id", propertyHandler.DeleteByAgent)

		admin := properties.Group("/admin", authenticated, adminOnly)
		admin.POST("", propertyHandler.CreateByAdmin)
		admin.PUT("/:id", propertyHandler.UpdateByAdmin)
		admin.DELETE("/:id", propertyHandler.DeleteByAdmin)
	}

	tasks := api.Group("/tasks")
	{
		agent := tasks.Group("", authenticated, agentOnly)
		agent.GET("/agent", taskHandler.GetAllForAgent)
		agent.POST("/agent", taskHandler.CreateByAgent)
		agent.GET("/agent/:id", taskHandler.GetByIDForAgent)
		agent.PUT("/agent/:id", taskHandler.UpdateByAgent)
		agent.DELETE("/agent/:id", taskHandler.DeleteByAgent)
		agent.GET("/property/:propertyId", taskHandler.GetByPropertyForAgent)

		admin := tasks.Group("/admin", authenticated, adminOnly)
		admin.GET("", taskHandler.GetAll)
		admin.POST("", taskHandler.CreateByAdmin)
		admin.GET("/property/:propertyId", taskHandler.GetByPropertyForAdmin)
		admin.GET("/:id", taskHandler.GetByIDForAdmin)
		admin.PUT("/:id", taskHandler.UpdateByAdmin)
		admin.DELETE("/:id", taskHandler.DeleteByAdmin)
	}

	return router
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders: []string{"Retry-After"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || slices.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cors.New(cfg)
}
