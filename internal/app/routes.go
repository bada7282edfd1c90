package app

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/portfolio-space/core/internal/middleware"
	"github.com/portfolio-space/core/internal/modules/auth"
	"github.com/portfolio-space/core/internal/modules/chatbot"
	"github.com/portfolio-space/core/internal/modules/content/category"
	"github.com/portfolio-space/core/internal/modules/content/comment"
	"github.com/portfolio-space/core/internal/modules/content/post"
	"github.com/portfolio-space/core/internal/modules/notify"
	"github.com/portfolio-space/core/internal/modules/portfolio"
	"github.com/portfolio-space/core/internal/modules/subscribe"
	"github.com/portfolio-space/core/internal/pkg/mail"
	pkgredis "github.com/portfolio-space/core/internal/pkg/redis"
	"github.com/portfolio-space/core/internal/pkg/response"
	"github.com/portfolio-space/core/internal/pkg/taskqueue"
)

const apiPrefix = "/api/v1"

func (a *App) registerRoutes(rc *pkgredis.Client, mailer *mail.Sender, taskSvc *taskqueue.Service) {
	r := a.router
	db := a.db
	cfg := a.cfg
	authMW := middleware.Auth()

	r.NoRoute(func(c *gin.Context) {
		response.NotFound(c)
	})
	r.NoMethod(func(c *gin.Context) {
		response.MethodNotAllowed(c)
	})

	r.GET("/", func(c *gin.Context) {
		response.OK(c, gin.H{
			"name":    "folio-core",
			"version": "1.0.0",
		})
	})

	api := r.Group(apiPrefix)
	api.Use(middleware.OptionalAuth())

	api.GET("/health", func(c *gin.Context) {
		response.OK(c, gin.H{"status": "ok"})
	})

	// Services
	authSvc := auth.NewService(db)
	categorySvc := category.NewService(db)
	postSvc := post.NewService(db, taskSvc, a.logger, cfg.RenotifyOnRepublish())
	commentSvc := comment.NewService(db, mailer, a.logger, cfg.SiteURL, cfg.OwnerEmail)
	portfolioSvc := portfolio.NewService(db)
	subscribeSvc := subscribe.NewService(db, mailer, a.logger, cfg.SiteName, cfg.SiteURL)
	notifySvc := notify.NewService(db, mailer, a.logger, cfg.SiteURL, cfg.OwnerName)
	chatbotSvc := chatbot.NewService(db, cfg.Chatbot, a.logger)

	notifySvc.RegisterWorker(a.worker)

	chatRateLimit := middleware.RateLimit(rc.Raw(), "chatbot",
		cfg.Chatbot.RateLimit, time.Duration(cfg.Chatbot.RateWindow)*time.Second)

	// Handlers
	auth.NewHandler(authSvc).RegisterRoutes(api, authMW)
	category.NewHandler(categorySvc).RegisterRoutes(api, authMW)
	post.NewHandler(postSvc).RegisterRoutes(api, authMW)
	comment.NewHandler(commentSvc).RegisterRoutes(api, authMW)
	portfolio.NewHandler(portfolioSvc).RegisterRoutes(api, authMW)
	subscribe.NewHandler(subscribeSvc).RegisterRoutes(api, authMW)
	notify.NewHandler(notifySvc).RegisterRoutes(api, authMW)
	chatbot.NewHandler(chatbotSvc).RegisterRoutes(api, chatRateLimit, authMW)

	// Background job introspection
	cron := api.Group("/cron", authMW)
	cron.GET("", func(c *gin.Context) {
		response.OK(c, gin.H{"data": a.sched.List()})
	})
	cron.POST("/:name/run", func(c *gin.Context) {
		if err := a.sched.Run(c.Request.Context(), c.Param("name")); err != nil {
			response.NotFoundMsg(c, err.Error())
			return
		}
		response.OK(c, gin.H{"triggered": c.Param("name")})
	})
}
