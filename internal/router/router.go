package router

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"erpdesk/internal/config"
	"erpdesk/internal/domain"
	"erpdesk/internal/handler"
	"erpdesk/internal/middleware"
	"erpdesk/internal/service"
)

// Handlers bundles every HTTP handler the router mounts. Realtime may be nil
// to disable the event stream.
type Handlers struct {
	Auth     *handler.AuthHandler
	Document *handler.DocumentHandler
	Tax      *handler.TaxHandler
	Export   *handler.ExportHandler
	Stats    *handler.StatsHandler
	Tenant   *handler.TenantHandler
	User     *handler.UserHandler
	Health   *handler.HealthHandler
	Realtime *handler.RealtimeHandler
}

// Options are the router settings outside the handler set.
type Options struct {
	CORS    config.CORSConfig
	Swagger bool
}

// Setup configures the Gin engine with all routes and middleware.
func Setup(authSvc service.AuthService, h Handlers, opts Options, log zerolog.Logger) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(log))
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(log))
	r.Use(middleware.CORS(opts.CORS))

	// Health checks
	r.GET("/healthz", h.Health.Liveness)
	r.GET("/readyz", h.Health.Readiness)

	if opts.Swagger {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	v1 := r.Group("/api/v1")

	// Public auth routes
	auth := v1.Group("/auth")
	auth.POST("/login", h.Auth.Login)
	auth.POST("/refresh", h.Auth.RefreshToken)
	auth.POST("/register", h.Auth.Register)

	// Protected routes - require valid JWT
	protected := v1.Group("")
	protected.Use(middleware.AuthMiddleware(authSvc))
	protected.Use(middleware.TenantGuard())

	// Documents
	docs := protected.Group("/documents")
	docs.POST("", h.Document.Create)
	docs.GET("", h.Document.List)
	docs.GET("/:id", h.Document.GetByID)
	docs.DELETE("/:id", h.Document.Delete)
	docs.PUT("/:id/lines", h.Document.RecomputeTotals)
	docs.GET("/:id/transitions", h.Document.AllowedTransitions)
	docs.POST("/:id/transitions", h.Document.Transition)
	docs.POST("/:id/approve", h.Document.Approve)
	docs.POST("/:id/derive", h.Document.Derive)
	docs.GET("/:id/history", h.Document.History)

	// Tax calculations
	tax := protected.Group("/tax")
	tax.POST("/preview", h.Tax.Preview)
	tax.GET("/hsn/:code", h.Tax.LookupHSN)

	// Register exports
	exports := protected.Group("/exports")
	exports.Use(middleware.RequireRole(domain.RoleAdmin, domain.RoleManager, domain.RoleFinance))
	exports.GET("/documents", h.Export.Download)
	exports.POST("/documents", h.Export.Publish)

	// Stats
	protected.GET("/stats", h.Stats.GetStats)

	// Tenant settings
	protected.GET("/tenant", h.Tenant.Get)
	protected.PUT("/tenant", middleware.RequireRole(domain.RoleAdmin), h.Tenant.Update)

	// User management (tenant-scoped)
	users := protected.Group("/users")
	users.POST("", middleware.RequireRole(domain.RoleAdmin), h.User.Create)
	users.GET("", middleware.RequireRole(domain.RoleAdmin), h.User.List)
	users.GET("/:id", h.User.GetByID)
	users.PUT("/:id", h.User.Update)
	users.DELETE("/:id", middleware.RequireRole(domain.RoleAdmin), h.User.Delete)

	// Realtime document events
	if h.Realtime != nil {
		protected.GET("/ws", h.Realtime.Stream)
	}

	return r
}
