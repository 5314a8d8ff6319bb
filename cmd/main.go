package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"certprep-platform/internal/ai"
	"certprep-platform/internal/auth"
	"certprep-platform/internal/config"
	"certprep-platform/internal/logger"
	"certprep-platform/internal/storage"
	"certprep-platform/internal/telemetry"
	"certprep-platform/middleware"
	"certprep-platform/routes"
	"certprep-platform/services"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	logger.InitLogger(cfg)

	shutdownTracer, err := telemetry.InitTracer("certprep-platform", cfg.OTLPEndpoint)
	if err != nil {
		logger.Warn("Tracing disabled", "error", err)
		shutdownTracer = func() {}
	}
	defer shutdownTracer()

	metrics, err := telemetry.InitMetrics()
	if err != nil {
		log.Fatal("Failed to initialize metrics:", err)
	}

	mongoClient, err := config.ConnectMongoDB(cfg)
	if err != nil {
		log.Fatal("Failed to connect to MongoDB:", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		mongoClient.Disconnect(ctx)
	}()
	db := mongoClient.Database(cfg.DBName)

	// Vector index setup is idempotent and runs once per deployment, not
	// per document.
	{
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		if err := config.EnsureVectorSearchIndex(ctx, mongoClient, cfg); err != nil {
			logger.Warn("Vector search index setup failed", "error", err)
		}
		cancel()
	}

	redisClient, err := config.NewRedisClient(cfg)
	if err != nil {
		log.Fatal("Failed to connect to Redis:", err)
	}
	defer redisClient.Close()

	geminiClient, err := ai.NewGeminiClient(cfg.GeminiAPIKey, cfg.GeminiModel, cfg.EmbeddingsModel, cfg.GeminiTier)
	if err != nil {
		log.Fatal("Failed to initialize Gemini client:", err)
	}
	defer geminiClient.Close()

	objectStore, err := storage.NewFileObjectStore(cfg.FileStorageDir)
	if err != nil {
		log.Fatal("Failed to initialize object store:", err)
	}

	queueClient := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     cfg.RedisURL,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	defer queueClient.Close()

	// Pipeline services
	textExtractor := services.NewTextExtractor()
	classifier := services.NewCertificationClassifier()
	chunker := services.NewChunker(cfg.MaxChunkSize, cfg.ChunkOverlap, cfg.MinChunkSize)
	questionExtractor := services.NewQuestionExtractor(cfg.MinStemLength)
	indexer := services.NewIndexer(geminiClient, db, cfg)
	ingestion := services.NewIngestionService(db, objectStore, textExtractor, classifier, chunker, questionExtractor, indexer)

	// Serving services
	searcher := services.NewMongoSearcher(db, cfg.VectorIndexName)
	retrieval := services.NewRetrievalEngine(geminiClient, searcher, geminiClient, cfg)
	history := services.NewRedisHistoryStore(redisClient, time.Duration(cfg.QuizHistoryTTLDays)*24*time.Hour)
	quizBuilder := services.NewQuizBuilder(services.NewMongoQuestionSource(db), history, geminiClient, services.NewMongoSessionStore(db))
	export := services.NewExportService(db)

	verifier := auth.NewVerifier(cfg, nil)
	authMiddleware := middleware.NewAuthMiddleware(verifier)

	if cfg.GinMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.CORSMiddleware(cfg.CORSOrigins))
	router.Use(middleware.TracingMiddleware())
	router.Use(middleware.EnrichTrace())
	router.Use(middleware.MetricsMiddleware(metrics))
	router.Use(middleware.RateLimitMiddleware(redisClient, cfg))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "timestamp": time.Now()})
	})

	api := router.Group("/api/v1")
	api.Use(authMiddleware.RequireAuth())
	{
		api.POST("/documents", routes.HandleDocumentUpload(cfg, db, objectStore, ingestion, queueClient))
		api.GET("/documents", routes.HandleListDocuments(db))
		api.GET("/documents/:id", routes.HandleDocumentStatus(db))
		api.POST("/answer", routes.HandleAnswer(retrieval, metrics))
		api.POST("/quiz", routes.HandleGenerateQuiz(quizBuilder, metrics))
		api.GET("/quiz/export", routes.HandleExportQuestions(export))
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Info("Server starting", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	logger.Info("Server exited")
}
