package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"research-pilot/config"
	"research-pilot/models"
	"research-pilot/pipeline"
	"research-pilot/providers"
	"research-pilot/providers/arxiv"
	"research-pilot/storage"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	papersFoundCounter        prometheus.Counter
	pipelinesCompletedCounter prometheus.Counter
	pipelinesFailedCounter    prometheus.Counter
	staleTopicsCounter        prometheus.Counter
)

func init() {
	papersFoundCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "research_papers_found_total",
		Help: "Total number of papers retained across all pipeline runs.",
	})
	pipelinesCompletedCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "research_pipelines_completed_total",
		Help: "Total number of pipeline runs that reached completed status.",
	})
	pipelinesFailedCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "research_pipelines_failed_total",
		Help: "Total number of pipeline runs that ended in failed status.",
	})
	staleTopicsCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "research_stale_topics_total",
		Help: "Total number of stuck topics swept to failed by the staleness job.",
	})
	prometheus.MustRegister(papersFoundCounter, pipelinesCompletedCounter, pipelinesFailedCounter, staleTopicsCounter)
}

func apiKeyAuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		if cfg.APISecretKey == "" {
			c.Next()
			return
		}
		apiKey := c.GetHeader("X-API-KEY")
		if apiKey != cfg.APISecretKey {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized: Invalid API Key"})
			return
		}
		c.Next()
	}
}

// ownerID extracts the caller identity. The identity provider itself is
// external; this service only scopes rows by the id it asserts.
func ownerID(c *gin.Context) string {
	return strings.TrimSpace(c.GetHeader("X-Owner-ID"))
}

func main() {
	logging, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("can't initialize zap logger: %v", err)
	}
	defer logging.Sync()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatal("Config load error", zap.Error(err))
	}

	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		logging.Fatal("Failed to connect to database", zap.Error(err))
	}
	logging.Info("Successfully connected to database.")

	logging.Info("Running database auto-migration...")
	if err := db.AutoMigrate(&models.Topic{}, &models.Paper{}, &models.Summary{}, &models.ResearchGap{}, &models.Proposal{}); err != nil {
		logging.Fatal("Auto-migration failed", zap.Error(err))
	}

	// Setup Providers
	enabledProviderNames := strings.Split(cfg.EnabledProviders, ",")
	var enabledProviders []providers.Provider
	for _, name := range enabledProviderNames {
		switch strings.TrimSpace(name) {
		case "arxiv":
			enabledProviders = append(enabledProviders, arxiv.NewFetcher(cfg, logging))
		default:
			logging.Warn("Unknown provider in config", zap.String("provider_name", name))
		}
	}
	if len(enabledProviders) == 0 {
		logging.Fatal("No valid providers enabled. Check ENABLED_PROVIDERS in .env")
	}
	logging.Info("Active providers loaded", zap.Strings("providers", enabledProviderNames))

	// Optional document archive
	runner := pipeline.NewRunner(cfg, db, logging, enabledProviders, nil)
	if cfg.ArchiveEnabled() {
		client, err := storage.NewS3Client(cfg)
		if err != nil {
			logging.Fatal("S3 client creation failed", zap.Error(err))
		}
		runner.S3Client = client
		logging.Info("Document archive enabled", zap.String("bucket", cfg.ArchiveS3Bucket))
	}

	// Setup Router
	router := newRouter(cfg, db, runner, logging)

	// Setup Cron: staleness sweep so a stalled topic is distinguishable
	// from one still processing.
	cronScheduler := cron.New()
	cronScheduler.AddFunc(cfg.CronSchedule, func() {
		swept, err := runner.FailStaleTopics()
		if err != nil {
			logging.Error("Staleness sweep failed", zap.Error(err))
			return
		}
		if swept > 0 {
			staleTopicsCounter.Add(float64(swept))
			logging.Warn("Swept stale topics to failed", zap.Int64("count", swept))
		}
	})
	cronScheduler.Start()

	logging.Info("Starting server", zap.String("port", cfg.HTTPPort))
	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadTimeout:       30 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil {
		logging.Fatal("Failed to run server", zap.Error(err))
	}
}

// newRouter assembles the middleware chain and all routes.
func newRouter(cfg *config.Config, db *gorm.DB, runner *pipeline.Runner, log *zap.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Content-Type", "Authorization", "X-API-KEY", "X-Owner-ID"},
	}))
	router.Use(apiKeyAuthMiddleware(cfg))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": "research-pilot"})
	})

	setupTopicRoutes(router, db, runner, log)
	setupArtifactRoutes(router, db, log)
	setupProcessRoutes(router, runner, log)
	return router
}

func setupTopicRoutes(router *gin.Engine, db *gorm.DB, runner *pipeline.Runner, log *zap.Logger) {
	rg := router.Group("/topics")

	// POST - Submit a new topic. Processing starts fire-and-forget; the
	// caller polls status afterwards.
	rg.POST("/", func(c *gin.Context) {
		owner := ownerID(c)
		if owner == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "X-Owner-ID header is required"})
			return
		}
		var req struct {
			Text string `json:"text" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body. 'text' field is required."})
			return
		}

		topic := models.Topic{OwnerID: owner, Text: req.Text, Status: models.StatusPending}
		if err := db.Create(&topic).Error; err != nil {
			log.Error("Failed to create topic", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create topic"})
			return
		}

		go func(topicID string) {
			count, err := runner.Process(context.Background(), topicID)
			if err != nil {
				pipelinesFailedCounter.Inc()
				log.Error("Async pipeline run failed", zap.String("topic_id", topicID), zap.Error(err))
				return
			}
			pipelinesCompletedCounter.Inc()
			papersFoundCounter.Add(float64(count))
		}(topic.ID)

		c.JSON(http.StatusCreated, topic)
	})

	// GET - List the caller's topics.
	rg.GET("/", func(c *gin.Context) {
		owner := ownerID(c)
		if owner == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "X-Owner-ID header is required"})
			return
		}
		var topics []models.Topic
		if err := db.Where("owner_id = ?", owner).Order("created_at desc").Find(&topics).Error; err != nil {
			log.Error("Database query for topics failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		c.JSON(http.StatusOK, topics)
	})

	// GET - Fetch one topic, owner-scoped.
	rg.GET("/:id", func(c *gin.Context) {
		topic, ok := ownedTopic(c, db, log)
		if !ok {
			return
		}
		c.JSON(http.StatusOK, topic)
	})

	// DELETE - Remove a topic; dependent rows go with it via cascade.
	rg.DELETE("/:id", func(c *gin.Context) {
		topic, ok := ownedTopic(c, db, log)
		if !ok {
			return
		}
		if err := db.Delete(&topic).Error; err != nil {
			log.Error("Failed to delete topic", zap.String("id", topic.ID), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete topic"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "topic deleted"})
	})
}

func setupArtifactRoutes(router *gin.Engine, db *gorm.DB, log *zap.Logger) {
	rg := router.Group("/topics/:id")

	rg.GET("/papers", func(c *gin.Context) {
		topic, ok := ownedTopic(c, db, log)
		if !ok {
			return
		}
		var papers []models.Paper
		if err := db.Where("topic_id = ?", topic.ID).Order("created_at asc").Find(&papers).Error; err != nil {
			log.Error("Database query for papers failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		c.JSON(http.StatusOK, papers)
	})

	rg.GET("/summary", func(c *gin.Context) {
		topic, ok := ownedTopic(c, db, log)
		if !ok {
			return
		}
		var summary models.Summary
		if err := db.Where("topic_id = ?", topic.ID).First(&summary).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "summary not available yet"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		c.JSON(http.StatusOK, summary)
	})

	rg.GET("/gaps", func(c *gin.Context) {
		topic, ok := ownedTopic(c, db, log)
		if !ok {
			return
		}
		var gaps []models.ResearchGap
		if err := db.Where("topic_id = ?", topic.ID).Order("created_at asc").Find(&gaps).Error; err != nil {
			log.Error("Database query for gaps failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		c.JSON(http.StatusOK, gaps)
	})

	rg.GET("/proposal", func(c *gin.Context) {
		topic, ok := ownedTopic(c, db, log)
		if !ok {
			return
		}
		var proposal models.Proposal
		if err := db.Where("topic_id = ?", topic.ID).First(&proposal).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "proposal not available yet"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		c.JSON(http.StatusOK, proposal)
	})
}

func setupProcessRoutes(router *gin.Engine, runner *pipeline.Runner, log *zap.Logger) {
	rg := router.Group("/process")

	// POST - Run the pipeline synchronously and report the paper count.
	rg.POST("/", func(c *gin.Context) {
		var req struct {
			TopicID string `json:"topicId"`
		}
		if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.TopicID) == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "topicId is required"})
			return
		}

		count, err := runner.Process(c.Request.Context(), req.TopicID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "topic not found"})
				return
			}
			pipelinesFailedCounter.Inc()
			log.Error("Pipeline run failed", zap.String("topic_id", req.TopicID), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		pipelinesCompletedCounter.Inc()
		papersFoundCounter.Add(float64(count))
		c.JSON(http.StatusOK, gin.H{"success": true, "papersFound": count})
	})

	// POST - Fire-and-forget variant.
	rg.POST("/async", func(c *gin.Context) {
		var req struct {
			TopicID string `json:"topicId"`
		}
		if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.TopicID) == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "topicId is required"})
			return
		}
		var topic models.Topic
		if err := runner.DB.First(&topic, "id = ?", req.TopicID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "topic not found"})
			return
		}

		go func(topicID string) {
			count, err := runner.Process(context.Background(), topicID)
			if err != nil {
				pipelinesFailedCounter.Inc()
				log.Error("Async pipeline run failed", zap.String("topic_id", topicID), zap.Error(err))
				return
			}
			pipelinesCompletedCounter.Inc()
			papersFoundCounter.Add(float64(count))
			log.Info("Async pipeline run completed", zap.String("topic_id", topicID), zap.Int("papers_found", count))
		}(topic.ID)

		c.JSON(http.StatusAccepted, gin.H{"message": "Processing triggered for topic " + topic.ID})
	})
}

// ownedTopic loads the topic from the :id param scoped to the caller.
// Writes the error response itself when the lookup fails.
func ownedTopic(c *gin.Context, db *gorm.DB, log *zap.Logger) (models.Topic, bool) {
	var topic models.Topic
	owner := ownerID(c)
	if owner == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "X-Owner-ID header is required"})
		return topic, false
	}
	id := c.Param("id")
	if err := db.Where("id = ? AND owner_id = ?", id, owner).First(&topic).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "topic not found"})
			return topic, false
		}
		log.Error("DB error loading topic", zap.String("id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
		return topic, false
	}
	return topic, true
}
