package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/poolconsultant/portal/internal/api/docs"
	"github.com/poolconsultant/portal/internal/api/handler"
	"github.com/poolconsultant/portal/internal/api/middleware"
	"github.com/poolconsultant/portal/internal/core/domain"
	"github.com/poolconsultant/portal/internal/core/ports"
	"github.com/poolconsultant/portal/internal/core/service"
)

// Dependencies are the collaborators the router wires into handlers.
type Dependencies struct {
	Portal     ports.PortalService
	Sessions   *service.Sessions
	Guard      *service.Guard
	Navigator  *service.Navigator
	Backend    ports.Backend
	Checks     map[string]handler.DependencyCheck
	Cookie     middleware.CookieConfig
	Log        zerolog.Logger
	Registerer prometheus.Registerer // nil means the global registry
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "portal",
		Registerer: deps.Registerer,
	}))

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(deps.Portal, deps.Log)
	sessionHandler := handler.NewSessionHandler(deps.Navigator)
	dashboardHandler := handler.NewDashboardHandler(deps.Backend, deps.Log)

	// --- Client routes: every one knows its client and session ---
	client := e.Group("",
		middleware.ClientID(deps.Cookie),
		middleware.Session(deps.Sessions),
	)

	client.GET("/", sessionHandler.Root)
	client.GET("/session", sessionHandler.Current)
	client.GET("/login", authHandler.LoginView)
	client.POST("/login", authHandler.Login)
	client.GET("/register", authHandler.RegisterView)
	client.POST("/register", authHandler.Register)
	client.POST("/logout", authHandler.Logout)

	admin := client.Group("/admin", middleware.RequireRole(deps.Guard, domain.RoleAdmin, deps.Log))
	admin.GET("/dashboard", dashboardHandler.AdminDashboard)
	admin.GET("/consultants/:id/report", dashboardHandler.ConsultantReport)

	consultant := client.Group("/consultant", middleware.RequireRole(deps.Guard, domain.RoleConsultant, deps.Log))
	consultant.GET("/dashboard", dashboardHandler.ConsultantDashboard)
	consultant.POST("/resume", dashboardHandler.UploadResume)

	// --- Health probes, metrics and docs (no client identity) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(deps.Checks)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}
