package api

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"tama/internal/aggregator"
	"tama/internal/ingestor"
	"tama/internal/logger"
	"tama/internal/store"
)

// Router holds the dependencies every handler needs. Grounded on the
// teacher's Router{db, appConfig, authService} shape, trimmed to this
// engine's three components — there is no auth service here.
type Router struct {
	store      *store.Store
	aggregator *aggregator.Aggregator
	ingestor   *ingestor.Ingestor
	log        *logrus.Logger
	uploadDir  string
}

// NewRouter builds a Router.
func NewRouter(st *store.Store, agg *aggregator.Aggregator, ing *ingestor.Ingestor, log *logrus.Logger, uploadDir string) *Router {
	return &Router{
		store:      st,
		aggregator: agg,
		ingestor:   ing,
		log:        log,
		uploadDir:  uploadDir,
	}
}

// Setup registers middleware and every route §6 names on engine.
func Setup(engine *gin.Engine, r *Router, allowedOrigins []string) {
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = allowedOrigins
	corsConfig.AllowMethods = []string{"GET", "POST", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept"}
	engine.Use(cors.New(corsConfig))

	engine.Use(logger.GinLogger(r.log))
	engine.Use(gin.Recovery())

	engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok", "service": "tama"})
	})

	v1 := engine.Group("/api/v1")
	{
		v1.POST("/upload", r.handleUpload)
		v1.GET("/progress/:task_id", r.handleProgress)
		v1.GET("/months", r.handleListMonths)
		v1.DELETE("/months/:month", r.handleDeleteMonth)
		v1.POST("/analyze", r.handleAnalyze)

		v1.GET("/summary", r.handleSummary)
		v1.GET("/trends", r.handleTrends)
		v1.GET("/anomalies", r.handleAnomalies)

		v1.GET("/projects", r.handleListProjects)
		v1.GET("/projects/top", r.handleProjectTopN)
		v1.GET("/projects/:code/orders", r.handleProjectOrders)

		v1.GET("/departments/hierarchy", r.handleDepartmentHierarchy)
		v1.GET("/departments/list", r.handleDepartmentList)
		v1.GET("/departments/details", r.handleDepartmentDetails)
		v1.GET("/departments/level1/statistics", r.handleLevel1Statistics)
		v1.GET("/departments/level2/statistics", r.handleLevel2Statistics)
	}
}
