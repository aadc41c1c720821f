package v1

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/inficare/inficare/config"
	"github.com/inficare/inficare/pkg/auth"
	"github.com/inficare/inficare/pkg/metrics"
)

// Handlers bundles everything the router mounts.
type Handlers struct {
	Auth      *AuthHandler
	Profile   *ProfileHandler
	Smartcard *SmartcardHandler
	Draft     *DraftHandler
	Record    *RecordHandler
}

func NewRouter(cfg *config.Config, h Handlers, jwtManager *auth.JWTManager, collector *metrics.Collector) *gin.Engine {
	if cfg.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestID())
	r.Use(Metrics(collector))
	r.Use(RateLimit(cfg.RateLimit))
	r.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORS.AllowedOrigins,
		AllowMethods: cfg.CORS.AllowedMethods,
		AllowHeaders: cfg.CORS.AllowedHeaders,
		MaxAge:       cfg.CORS.MaxAge,
	}))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "version": cfg.App.Version})
	})
	r.GET("/metrics", gin.WrapH(metrics.MetricsHandler()))

	v1 := r.Group("/v1")

	authGroup := v1.Group("/auth")
	{
		authGroup.POST("/register", h.Auth.Register)
		authGroup.POST("/login", h.Auth.Login)
		authGroup.GET("/uid/:uid", h.Auth.LookupUID)
		authGroup.POST("/uid/:uid/login", h.Auth.LoginByUID)
		authGroup.POST("/refresh", h.Auth.Refresh)
	}

	authed := v1.Group("")
	authed.Use(Authenticated(jwtManager))
	{
		authed.GET("/profile", h.Profile.Get)
		authed.GET("/smartcard", h.Smartcard.QR)

		draftGroup := authed.Group("/draft")
		{
			draftGroup.GET("", h.Draft.Get)
			draftGroup.PUT("", h.Draft.SetFields)
			draftGroup.DELETE("", h.Draft.Discard)
			draftGroup.POST("/medicines", h.Draft.AddMedicine)
			draftGroup.DELETE("/medicines/:row", h.Draft.RemoveMedicine)
			draftGroup.POST("/tests", h.Draft.AddTest)
			draftGroup.DELETE("/tests/:row", h.Draft.RemoveTest)
			draftGroup.POST("/attachments", h.Draft.UploadAttachments)
			draftGroup.DELETE("/attachments/:name", h.Draft.RemoveAttachment)
			draftGroup.POST("/submit", h.Draft.Submit)
		}

		authed.GET("/records", h.Record.List)
		authed.GET("/records/:id", h.Record.Get)
	}

	return r
}
