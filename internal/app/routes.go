package app

import (
	"github.com/gin-gonic/gin"

	"github.com/regionpress/core/internal/middleware"
	"github.com/regionpress/core/internal/modules/article"
	"github.com/regionpress/core/internal/modules/auth"
	"github.com/regionpress/core/internal/modules/configs"
	"github.com/regionpress/core/internal/modules/region"
	"github.com/regionpress/core/internal/modules/reporter"
	"github.com/regionpress/core/internal/modules/rewrite"
	"github.com/regionpress/core/internal/modules/source"
	"github.com/regionpress/core/internal/modules/usage"
	pkgredis "github.com/regionpress/core/internal/pkg/redis"
	"github.com/regionpress/core/internal/pkg/response"
	"github.com/regionpress/core/internal/pkg/taskqueue"
)

func (a *App) registerRoutes(rc *pkgredis.Client) {
	r := a.router
	db := a.db
	authMW := middleware.Auth()

	r.NoRoute(func(c *gin.Context) {
		response.NotFound(c)
	})
	r.NoMethod(func(c *gin.Context) {
		response.MethodNotAllowed(c)
	})

	r.Use(middleware.RateLimit(rc.Raw()))

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		response.OK(c, gin.H{"status": "ok"})
	})

	// Shared services
	cfgSvc := configs.NewService(db)
	tasks := taskqueue.NewService(rc)

	authSvc := auth.NewService(db)
	articleSvc := article.NewService(db)
	regionSvc := region.NewService(db)
	reporterSvc := reporter.NewService(db)
	sourceSvc := source.NewService(db, articleSvc)
	usageSvc := usage.NewService(db)

	guard := rewrite.NewGuard(db, rc, a.logger)
	engine := rewrite.NewDecisionEngine(rewrite.NewArticleStore(db), a.logger)
	rewriteSvc := rewrite.NewService(
		cfgSvc,
		rewrite.NewReporterLookup(db),
		guard,
		engine,
		rewrite.NewInvoker(),
		a.logger,
	)

	auth.NewHandler(authSvc).RegisterRoutes(api, authMW)
	configs.NewHandler(cfgSvc).RegisterRoutes(api, authMW)
	article.NewHandler(articleSvc).RegisterRoutes(api, authMW)
	region.NewHandler(regionSvc).RegisterRoutes(api, authMW)
	reporter.NewHandler(reporterSvc).RegisterRoutes(api, authMW)
	source.NewHandler(sourceSvc).RegisterRoutes(api, authMW)
	usage.NewHandler(usageSvc).RegisterRoutes(api, authMW)
	rewrite.NewHandler(rewriteSvc, tasks, a.logger).RegisterRoutes(api, authMW)
}
