package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/qubehealth/appointments-api/docs"
	"github.com/qubehealth/appointments-api/internal/api/handler"
	"github.com/qubehealth/appointments-api/internal/api/middleware"
	"github.com/qubehealth/appointments-api/internal/core/ports"
)

// Services are the core use cases exposed over HTTP.
type Services struct {
	Patients ports.PatientService
	Staff    ports.StaffService
	Meetings ports.MeetingService
}

// Options tunes the router. Zero values are usable: no CORS origins means
// CORS is not installed, and a nil Registry uses the default Prometheus registry.
type Options struct {
	Logger      zerolog.Logger
	CORSOrigins []string
	// Ready lists the dependencies probed by /health/ready, keyed by name.
	Ready    map[string]handler.Pinger
	Registry *prometheus.Registry
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(svc Services, opts Options) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(opts.Logger)

	var (
		registerer prometheus.Registerer = prometheus.DefaultRegisterer
		gatherer   prometheus.Gatherer   = prometheus.DefaultGatherer
	)
	if opts.Registry != nil {
		registerer, gatherer = opts.Registry, opts.Registry
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.RequestLogger(opts.Logger))
	if len(opts.CORSOrigins) > 0 {
		e.Use(middleware.CORS(opts.CORSOrigins))
	}
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  "qubehealth",
		Registerer: registerer,
	}))

	// --- Dependencies ---
	patients := handler.NewPatientHandler(svc.Patients)
	staff := handler.NewStaffHandler(svc.Staff)
	meetings := handler.NewMeetingHandler(svc.Meetings)

	api := e.Group("/api")

	// /api/patients, /api/doctors and /api/appointments are the paths used by the web client.
	for _, prefix := range []string{"/users", "/patients"} {
		g := api.Group(prefix)
		g.POST("", patients.Create)
		g.GET("", patients.List)
		g.GET("/:id", patients.Get)
		g.PUT("/:id", patients.Update)
		g.DELETE("/:id", patients.Delete)
	}
	for _, prefix := range []string{"/staff", "/doctors"} {
		g := api.Group(prefix)
		g.POST("", staff.Create)
		g.GET("", staff.List)
		g.GET("/:id", staff.Get)
		g.PUT("/:id", staff.Update)
		g.DELETE("/:id", staff.Delete)
	}
	for _, prefix := range []string{"/meetings", "/appointments"} {
		g := api.Group(prefix)
		g.POST("", meetings.Create)
		g.GET("", meetings.List)
		g.GET("/:id", meetings.Get)
		g.PUT("/:id", meetings.Update)
		g.DELETE("/:id", meetings.Delete)
	}

	// --- Health probes ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(opts.Ready)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?

	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}
