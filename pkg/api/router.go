// Package api serves the directory, the admin console and the driver
// self-service pages over gin.
package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"towtruck/pkg/logger"
	"towtruck/pkg/models"
	"towtruck/service"
	"towtruck/storage"
)

type Options struct {
	ServiceName string
	// AppURL prefixes pagination links; empty keeps them relative.
	AppURL       string
	AppKey       string
	AssetVersion string

	SessionLifetime  time.Duration
	RememberLifetime time.Duration
	SecureCookies    bool

	// UploadDir is served under /storage when set.
	UploadDir string
}

type Handler struct {
	svc      service.IServiceManager
	sessions storage.ISessionStorage
	log      logger.ILogger
	opts     Options
	metrics  *metrics
}

func NewRouter(svc service.IServiceManager, sessions storage.ISessionStorage, log logger.ILogger, opts Options) http.Handler {
	if opts.SessionLifetime <= 0 {
		opts.SessionLifetime = 120 * time.Minute
	}
	if opts.RememberLifetime <= 0 {
		opts.RememberLifetime = 30 * 24 * time.Hour
	}
	if opts.ServiceName == "" {
		opts.ServiceName = "towtruck"
	}

	h := &Handler{
		svc:      svc,
		sessions: sessions,
		log:      log,
		opts:     opts,
		metrics:  newMetrics(opts.ServiceName),
	}

	useFormNames()
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(h.requestLogger())
	r.Use(h.metrics.middleware())

	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(h.metrics.registry, promhttp.HandlerOpts{})))
	if opts.UploadDir != "" {
		r.Static("/storage", opts.UploadDir)
	}

	web := r.Group("/")
	web.Use(h.sessionMiddleware(), h.verifyCSRF())
	{
		web.GET("/", h.directory)

		admin := web.Group("/admin")
		{
			guest := admin.Group("", h.guest(models.GuardAdmin))
			guest.GET("/login", h.showLogin(models.GuardAdmin))
			guest.POST("/login", h.login(models.GuardAdmin))

			authed := admin.Group("", h.authenticate(models.GuardAdmin))
			authed.GET("/dashboard", h.adminDashboard)
			authed.GET("/drivers", h.adminDrivers)
			authed.POST("/drivers", h.adminCreateDriver)
			authed.PUT("/drivers/:id", h.adminUpdateDriver)
			authed.DELETE("/drivers/:id", h.adminDeleteDriver)
			authed.POST("/drivers/:id/approve", h.adminApproveDriver)
			authed.GET("/service-areas", h.adminServiceAreas)
			authed.POST("/service-areas", h.adminCreateServiceArea)
			authed.PUT("/service-areas/:id", h.adminUpdateServiceArea)
			authed.DELETE("/service-areas/:id", h.adminDeleteServiceArea)
			authed.GET("/profile", h.adminProfile)
			authed.PUT("/profile", h.adminUpdateProfile)
			authed.POST("/password/change", h.adminChangePassword)
			authed.POST("/logout", h.logout(models.GuardAdmin))
		}

		driver := web.Group("/driver")
		{
			guest := driver.Group("", h.guest(models.GuardDriver))
			guest.GET("/login", h.showLogin(models.GuardDriver))
			guest.POST("/login", h.login(models.GuardDriver))
			guest.GET("/register", h.showRegister)
			guest.POST("/register", h.register)

			authed := driver.Group("", h.authenticate(models.GuardDriver))
			authed.GET("/dashboard", h.driverDashboard)
			authed.POST("/toggle-online", h.driverToggleOnline)
			authed.PATCH("/update-profile", h.driverUpdateProfile)
			authed.POST("/password/change", h.driverChangePassword)
			authed.POST("/logout", h.logout(models.GuardDriver))
		}
	}

	return methodOverride(r)
}

func identity[T models.Identity](c *gin.Context) T {
	return c.MustGet(identityKey).(T)
}
