package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	_ "github.com/entregas/delivery-marketplace/docs"
	"github.com/entregas/delivery-marketplace/internal/api/handler"
	"github.com/entregas/delivery-marketplace/internal/api/middleware"
	"github.com/entregas/delivery-marketplace/internal/core/domain"
	"github.com/entregas/delivery-marketplace/internal/core/ports"
	"github.com/entregas/delivery-marketplace/internal/core/service"
	"github.com/entregas/delivery-marketplace/internal/infrastructure/config"
	mongorepo "github.com/entregas/delivery-marketplace/internal/infrastructure/db/mongo"
	redisrepo "github.com/entregas/delivery-marketplace/internal/infrastructure/db/redis"
)

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(
	db *mongo.Database,
	rdb *redis.Client,
	files ports.FileStore,
	sink ports.AuditSink,
	auditRepo ports.AuditRepository,
	cfg *config.Config,
	log zerolog.Logger,
) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)
	e.Validator = handler.NewValidator()

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("marketplace"))

	// --- Dependencies ---
	clock := ports.SystemClock{}

	packageRepo := mongorepo.NewPackageRepository(db)
	travelRepo := mongorepo.NewTravelRepository(db)
	userRepo := mongorepo.NewUserRepository(db)
	employeeRepo := mongorepo.NewEmployeeRepository(db)
	localRepo := mongorepo.NewLocalRepository(db)
	permissionRepo := mongorepo.NewPermissionRepository(db)
	roleCache := redisrepo.NewRoleCache(rdb, cfg.Redis.RoleTTL)

	travelService := service.NewTravelService(travelRepo, clock, log)
	packageService := service.NewPackageService(packageRepo, travelRepo, employeeRepo, files, sink, clock, log)
	matchingService := service.NewMatchingService(packageRepo, travelRepo, clock, log)
	dashboardService := service.NewDashboardService(packageRepo, userRepo, log)
	authService := service.NewAuthService(userRepo, clock, cfg.JWTSecret, cfg.TokenTTL)
	userService := service.NewUserService(userRepo, files, roleCache, clock, log)
	employeeService := service.NewEmployeeService(employeeRepo, userRepo, localRepo, permissionRepo, clock, log)
	localService := service.NewLocalService(localRepo, clock, log)
	permissionService := service.NewPermissionService(permissionRepo, clock)

	authHandler := handler.NewAuthHandler(authService)
	travelHandler := handler.NewTravelHandler(travelService)
	packageHandler := handler.NewPackageHandler(packageService, auditRepo)
	matchingHandler := handler.NewMatchingHandler(matchingService)
	dashboardHandler := handler.NewDashboardHandler(dashboardService)
	userHandler := handler.NewUserHandler(userService)
	employeeHandler := handler.NewEmployeeHandler(employeeService)
	localHandler := handler.NewLocalHandler(localService)
	permissionHandler := handler.NewPermissionHandler(permissionService)
	imageHandler := handler.NewImageHandler(files)

	authMiddleware := middleware.Auth(cfg.JWTSecret, roleCache, userRepo, log)
	staffOnly := middleware.RBAC(domain.RoleAdmin, domain.RoleSuperAdmin)

	// --- Public routes ---
	e.POST("/auth/signup", authHandler.Signup)
	e.POST("/auth/login", authHandler.Login)
	e.POST("/auth/dashboard/login", authHandler.DashboardLogin)

	e.GET("/v1/images/:ref", imageHandler.Get)

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(db, rdb)
	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?

	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// --- Authenticated routes ---
	v1 := e.Group("/v1", authMiddleware)

	travels := v1.Group("/travels")
	travels.POST("", travelHandler.Create)
	travels.GET("", travelHandler.ListUpcoming)
	travels.GET("/mine", travelHandler.ListMine)
	travels.GET("/:id", travelHandler.Get)
	travels.PUT("/:id", travelHandler.Update)
	travels.POST("/:id/cancel", travelHandler.Cancel)

	packages := v1.Group("/packages")
	packages.POST("", packageHandler.Create)
	packages.GET("/mine", packageHandler.ListMine)
	packages.GET("/:id", packageHandler.Get)
	packages.GET("/:id/history", packageHandler.History)
	packages.PUT("/:id", packageHandler.Update)
	packages.POST("/:id/suggest", packageHandler.Suggest)
	packages.POST("/:id/confirm-suggestion", packageHandler.ConfirmSuggestion)
	packages.POST("/:id/confirm-request", packageHandler.ConfirmRequest)
	packages.POST("/:id/reject-request", packageHandler.RejectRequest)
	packages.POST("/:id/cancel", packageHandler.Cancel)

	matching := v1.Group("/matching")
	matching.GET("/packages", matchingHandler.Matches)
	matching.GET("/accepted", matchingHandler.Accepted)
	matching.GET("/suggested", matchingHandler.Suggested)
	matching.GET("/requests", matchingHandler.Requests)

	profile := v1.Group("/profile")
	profile.PUT("", userHandler.UpdateProfile)
	profile.PUT("/password", userHandler.ChangePassword)
	profile.PUT("/image", userHandler.ChangeImage)

	// --- Staff dashboard: read projections and pipeline transitions ---
	dashboard := v1.Group("/dashboard", staffOnly)
	dashboard.GET("/approved", dashboardHandler.Approved)
	dashboard.GET("/shipped", dashboardHandler.Shipped)
	dashboard.GET("/in-transit", dashboardHandler.InTransit)
	dashboard.GET("/completed", dashboardHandler.Completed)
	dashboard.POST("/packages/:id/ship", packageHandler.MarkShipped)
	dashboard.POST("/packages/:id/transit", packageHandler.MarkInTransit)
	dashboard.POST("/packages/:id/receive", packageHandler.MarkReceived)
	dashboard.POST("/packages/:id/complete", packageHandler.MarkCompleted)

	// --- Administration. Super-admin-only operations are enforced in the
	// services; the group gate keeps regular users out entirely. ---
	admin := v1.Group("/admin", staffOnly)
	admin.GET("/packages", packageHandler.ListAll)
	admin.DELETE("/packages/:id", packageHandler.Delete)
	admin.GET("/travels", travelHandler.ListAll)
	admin.DELETE("/travels/:id", travelHandler.Delete)

	admin.POST("/users", userHandler.CreateUser)
	admin.GET("/users", userHandler.ListUsers)
	admin.GET("/users/:id", userHandler.GetUser)
	admin.PUT("/users/:id", userHandler.UpdateUser)
	admin.DELETE("/users/:id", userHandler.DeleteUser)

	admin.POST("/employees", employeeHandler.Create)
	admin.GET("/employees", employeeHandler.List)
	admin.GET("/employees/:id", employeeHandler.Get)
	admin.PUT("/employees/:id", employeeHandler.Update)
	admin.DELETE("/employees/:id", employeeHandler.Delete)

	admin.POST("/locals", localHandler.Create)
	admin.GET("/locals", localHandler.List)
	admin.GET("/locals/:id", localHandler.Get)
	admin.PUT("/locals/:id", localHandler.Update)
	admin.DELETE("/locals/:id", localHandler.Delete)

	admin.POST("/permissions", permissionHandler.Create)
	admin.GET("/permissions", permissionHandler.List)
	admin.DELETE("/permissions/:id", permissionHandler.Delete)

	return e
}
