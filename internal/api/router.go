package api

import (
	"net/http"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/vikram-software/portal/internal/api/handler"
	"github.com/vikram-software/portal/internal/api/middleware"
	"github.com/vikram-software/portal/internal/core/domain"
	"github.com/vikram-software/portal/internal/core/ports"
)

// Services bundles the use cases served over HTTP.
type Services struct {
	Auth            ports.AuthService
	Accounts        ports.AccountService
	Projects        ports.ProjectService
	ServiceRequests ports.ServiceRequestService
	Messages        ports.MessageService
	Notifications   ports.NotificationService
	Attachments     ports.AttachmentService
}

// Options configures the HTTP surface.
type Options struct {
	JWTSecret      string
	AllowedOrigins []string
	// ExposeResetToken returns reset tokens in the forgot-password response.
	ExposeResetToken bool
	// Readiness lists the dependencies pinged by /health/ready.
	Readiness map[string]handler.Pinger
	// Registerer receives the HTTP metrics; nil means the default registry.
	Registerer prometheus.Registerer
	Logger     zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(svc Services, opts Options) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(opts.Logger)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.RequestLogger(opts.Logger))
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:     opts.AllowedOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowCredentials: true,
	}))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  "portal",
		Subsystem:  "http",
		Registerer: opts.Registerer,
	}))

	// --- Operational routes (no auth required) ---
	health := handler.NewHealthHandler(opts.Readiness)
	e.GET("/health", health.Liveness)
	e.GET("/health/ready", health.Readiness)
	e.GET("/metrics", metricsHandler(opts.Registerer))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	authn := middleware.Auth(opts.JWTSecret)
	admin := middleware.RBAC(domain.RoleAdmin)
	employee := middleware.RBAC(domain.RoleEmployee)
	client := middleware.RBAC(domain.RoleClient)
	staff := middleware.RBAC(domain.RoleAdmin, domain.RoleEmployee)

	// --- Auth ---
	authHandler := handler.NewAuthHandler(svc.Auth, opts.ExposeResetToken)
	auth := e.Group("/auth")
	auth.POST("/login", authHandler.Login)
	auth.POST("/forgot-password", authHandler.ForgotPassword)
	auth.PUT("/reset-password/:token", authHandler.ResetPassword)
	auth.GET("/me", authHandler.Me, authn)
	auth.GET("/logout", authHandler.Logout, authn)
	auth.PUT("/update-password", authHandler.UpdatePassword, authn)

	// --- Accounts ---
	accounts := handler.NewAccountHandler(svc.Accounts)
	users := e.Group("/users", authn)
	users.GET("", accounts.List)
	users.POST("", accounts.Create, admin)
	users.GET("/role/:role", accounts.ListByRole, staff)
	users.GET("/:id", accounts.Get)
	users.PUT("/:id", accounts.Update)
	users.PUT("/:id/toggle-status", accounts.ToggleStatus, admin)
	users.DELETE("/:id", accounts.Deactivate, admin)

	// --- Projects ---
	projects := handler.NewProjectHandler(svc.Projects)
	pg := e.Group("/projects", authn)
	pg.GET("", projects.List, admin)
	pg.POST("", projects.Create, admin)
	pg.GET("/stats", projects.Stats, admin)
	pg.GET("/assigned", projects.Assigned, employee)
	pg.GET("/my-projects", projects.Mine, client)
	pg.GET("/:id", projects.Get)
	pg.PUT("/:id", projects.Update, admin)
	pg.DELETE("/:id", projects.Delete, admin)
	pg.PUT("/:id/status", projects.UpdateStatus, employee)
	pg.POST("/:id/assign", projects.Assign, admin)
	pg.DELETE("/:id/assign/:employeeId", projects.Unassign, admin)

	// --- Service requests ---
	requests := handler.NewServiceRequestHandler(svc.ServiceRequests)
	rg := e.Group("/service-requests", authn)
	rg.POST("", requests.Create, client)
	rg.GET("", requests.List, admin)
	rg.GET("/my-requests", requests.Mine, client)
	rg.GET("/:id", requests.Get)
	rg.PUT("/:id", requests.Update, client)
	rg.DELETE("/:id", requests.Delete, client)
	rg.PUT("/:id/approve", requests.Approve, admin)
	rg.PUT("/:id/reject", requests.Reject, admin)

	// --- Messages ---
	messages := handler.NewMessageHandler(svc.Messages)
	mg := e.Group("/messages", authn)
	mg.POST("", messages.Send)
	mg.GET("/conversations", messages.Conversations)
	mg.GET("/unread/count", messages.UnreadCount)
	mg.GET("/:userId", messages.Thread)
	mg.PUT("/:messageId/read", messages.MarkRead)
	mg.DELETE("/:messageId", messages.Delete)

	// --- Notifications ---
	notifications := handler.NewNotificationHandler(svc.Notifications)
	ng := e.Group("/notifications", authn)
	ng.GET("", notifications.List)
	ng.GET("/unread/count", notifications.UnreadCount)
	ng.PUT("/:id/read", notifications.MarkRead)

	// --- Attachments ---
	attachments := handler.NewAttachmentHandler(svc.Attachments)
	ag := e.Group("/attachments", authn)
	ag.POST("/presign", attachments.Presign)
	ag.GET("/url", attachments.DownloadURL)

	return e
}

// metricsHandler serves the registry the HTTP metrics were registered with when
// it can be gathered, and the default registry otherwise.
func metricsHandler(reg prometheus.Registerer) echo.HandlerFunc {
	if g, ok := reg.(prometheus.Gatherer); ok {
		return echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: g})
	}
	return echoprometheus.NewHandler()
}
