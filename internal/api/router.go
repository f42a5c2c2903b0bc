package api

import (
	"fmt"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/quincy-permits/permit-portal/internal/api/handler"
	"github.com/quincy-permits/permit-portal/internal/api/middleware"
	"github.com/quincy-permits/permit-portal/internal/core/domain"
	"github.com/quincy-permits/permit-portal/internal/core/ports"
)

const (
	basePath = "/api/v1"
	// multipartOverhead leaves room for form boundaries and text fields.
	multipartOverhead = 64 << 10
)

// Deps are the collaborators the router wires into handlers.
type Deps struct {
	Tokens       ports.TokenService
	Auth         ports.AuthService
	Applications ports.ApplicationService
	PermitTypes  ports.PermitTypeService
	Properties   ports.PropertyRecordService
	Documents    ports.DocumentService
	Users        ports.UserService
	Statistics   ports.StatisticsService

	// Health dependencies checked by /health/ready.
	Health []handler.Pinger
	// Registry receives HTTP metrics and backs /metrics.
	Registry *prometheus.Registry

	MaxUploadBytes int64
	Log            zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(d.Log))
	if d.Registry != nil {
		e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
			Subsystem:  "http",
			Registerer: d.Registry,
		}))
		e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: d.Registry}))
	}

	// --- Health probes and docs (no auth required) ---
	health := handler.NewHealthHandler(d.Health...)
	e.GET("/health", health.Liveness)
	e.GET("/health/ready", health.Readiness)
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group(basePath)
	auth := middleware.Auth(d.Tokens)
	uploadLimit := echomiddleware.BodyLimit(fmt.Sprintf("%dB", d.MaxUploadBytes+multipartOverhead))

	// --- Auth ---
	authHandler := handler.NewAuthHandler(d.Auth)
	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)
	api.GET("/auth/me", authHandler.Me, auth)
	api.POST("/auth/refresh", authHandler.Refresh, auth)
	api.POST("/auth/logout", authHandler.Logout, auth)

	// --- Permit catalog ---
	permitTypes := handler.NewPermitTypeHandler(d.PermitTypes)
	api.GET("/permit-types", permitTypes.List)
	api.GET("/permit-types/by-slug/:slug", permitTypes.GetBySlug)
	api.GET("/permit-types/:id", permitTypes.Get)

	// --- Property lookup ---
	properties := handler.NewPropertyRecordHandler(d.Properties)
	api.GET("/property-records/search", properties.Search)

	// --- Applications ---
	apps := handler.NewApplicationHandler(d.Applications)
	docs := handler.NewDocumentHandler(d.Documents)
	ag := api.Group("/applications", auth)
	ag.POST("", apps.Create)
	ag.GET("", apps.ListMine)
	ag.GET("/staff", apps.ListAll, middleware.RequireCapability(domain.CapViewAllApplications))
	ag.GET("/:id", apps.Get)
	ag.PATCH("/:id", apps.Update)
	ag.POST("/:id/submit", apps.Submit)
	ag.GET("/:id/documents", docs.ListForApplication)
	ag.POST("/:id/documents", docs.Attach, uploadLimit)

	// --- Document library ---
	api.GET("/documents", docs.List)
	api.GET("/documents/categories", docs.Categories)
	api.GET("/documents/:id/file", docs.Download, middleware.OptionalAuth(d.Tokens))
	api.POST("/documents", docs.Upload, auth, middleware.RequireCapability(domain.CapManageDocuments), uploadLimit)

	// --- Reports ---
	stats := handler.NewStatisticsHandler(d.Statistics)
	rg := api.Group("/permits", auth, middleware.RequireCapability(domain.CapViewReports))
	rg.GET("/statistics", stats.Statistics)
	rg.GET("/recent", stats.Recent)

	// --- User administration ---
	users := handler.NewUserHandler(d.Users)
	ug := api.Group("/users", auth, middleware.RequireCapability(domain.CapManageUsers))
	ug.GET("", users.List)
	ug.POST("", users.Create)
	ug.GET("/:id", users.Get)
	ug.PUT("/:id", users.Update)
	ug.DELETE("/:id", users.Delete)
	ug.PUT("/:id/active", users.SetActive)

	return e
}

// requestLogger writes one zerolog line per request.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Status >= 500 {
				ev = log.Error().Err(v.Error)
			}
			ev.Str("request_id", v.RequestID).
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Msg("request")
			return nil
		},
	})
}
