// Package router mounts the HTTP API on echo.
package router

import (
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/poolforyou/poolforyou-api/internal/config"
	"github.com/poolforyou/poolforyou-api/internal/handler"
	"github.com/poolforyou/poolforyou-api/internal/middleware"
	"github.com/poolforyou/poolforyou-api/internal/service"
)

// Handlers groups the endpoint implementations.
type Handlers struct {
	Auth    *handler.AuthHandler
	Users   *handler.UserHandler
	Reports *handler.ReportHandler
	Form    *handler.FormHandler
}

// Options carries the cross-cutting dependencies.  Redis may be nil.
type Options struct {
	Access    *service.AccessControl
	Redis     *redis.Client
	RateLimit config.RateLimitConfig
	Cache     config.CacheConfig

	// UploadDir is served under /uploads when photos are stored locally.
	UploadDir string
	// UploadLimit caps photo upload bodies, e.g. "25M".
	UploadLimit string
}

// Register installs the error handler and every route.  Anonymous routes
// are rate limited per IP; authenticated routes use the configured key
// strategy once the caller is known.
func Register(e *echo.Echo, h Handlers, o Options) {
	e.HTTPErrorHandler = handler.ErrorHandler

	anonCfg := o.RateLimit
	anonCfg.KeyStrategy = "ip"
	anonLimit := middleware.RateLimit(anonCfg, o.Redis)
	limit := middleware.RateLimit(o.RateLimit, o.Redis)

	e.GET("/", handler.Health)
	e.GET("/healthz", handler.Health)
	e.POST("/login", h.Auth.Login, anonLimit)
	e.POST("/activate", h.Users.Activate, anonLimit)
	if o.UploadDir != "" {
		e.Static("/uploads", o.UploadDir)
	}

	authn := middleware.Authenticate(o.Access)
	guard := func(op service.Operation, extra ...echo.MiddlewareFunc) []echo.MiddlewareFunc {
		return append([]echo.MiddlewareFunc{authn, limit, middleware.Authorize(o.Access, op)}, extra...)
	}

	e.POST("/logout", h.Auth.Logout, guard(service.OpLogout)...)
	e.GET("/me", h.Auth.Me, guard(service.OpViewProfile)...)
	e.GET("/work-report-form", h.Form.Get, guard(service.OpViewForm, middleware.ResponseCache(o.Cache, o.Redis))...)

	e.POST("/users", h.Users.CreateUser, guard(service.OpCreateUser)...)

	e.POST("/work-reports", h.Reports.Create, guard(service.OpCreateReport)...)
	e.GET("/my/work-reports", h.Reports.ListMine, guard(service.OpListOwnReports)...)
	e.GET("/admin/work-reports", h.Reports.ListAll, guard(service.OpListAllReports)...)
	e.PATCH("/admin/work-reports/:id", h.Reports.UpdateStatus, guard(service.OpUpdateStatus)...)

	uploadLimit := o.UploadLimit
	if uploadLimit == "" {
		uploadLimit = "25M"
	}
	e.POST("/work-reports/:id/photos", h.Reports.UploadPhotos, guard(service.OpAttachPhotos, echomw.BodyLimit(uploadLimit))...)
}
