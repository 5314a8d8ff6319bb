package main

import (
	"context"
	"log"
	"time"

	"certprep-platform/internal/ai"
	"certprep-platform/internal/config"
	"certprep-platform/internal/logger"
	"certprep-platform/internal/queue"
	"certprep-platform/internal/storage"
	"certprep-platform/services"

	"github.com/hibiken/asynq"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	logger.InitLogger(cfg)

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

	geminiClient, err := ai.NewGeminiClient(cfg.GeminiAPIKey, cfg.GeminiModel, cfg.EmbeddingsModel, cfg.GeminiTier)
	if err != nil {
		log.Fatal("Failed to initialize Gemini client:", err)
	}
	defer geminiClient.Close()

	objectStore, err := storage.NewFileObjectStore(cfg.FileStorageDir)
	if err != nil {
		log.Fatal("Failed to initialize object store:", err)
	}

	ingestion := services.NewIngestionService(
		db,
		objectStore,
		services.NewTextExtractor(),
		services.NewCertificationClassifier(),
		services.NewChunker(cfg.MaxChunkSize, cfg.ChunkOverlap, cfg.MinChunkSize),
		services.NewQuestionExtractor(cfg.MinStemLength),
		services.NewIndexer(geminiClient, db, cfg),
	)

	redisOpt := asynq.RedisClientOpt{
		Addr:     cfg.RedisURL,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}

	server := asynq.NewServer(
		redisOpt,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"critical": 6,
				"default":  3,
				"low":      1,
			},
			StrictPriority: true,
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				logger.Error("Task failed", "type", task.Type(), "error", err)
			}),
		},
	)

	processor := queue.NewTaskProcessor(ingestion)

	mux := asynq.NewServeMux()
	mux.HandleFunc(queue.TaskIngestDocument, processor.ProcessIngest)

	logger.Info("Starting ingestion worker", "redis", redisOpt.Addr, "concurrency", 10)

	if err := server.Run(mux); err != nil {
		log.Fatal("Failed to start worker:", err)
	}
}
