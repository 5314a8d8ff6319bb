package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	MongoURI string
	DBName   string
	Port     string
	GinMode  string

	CORSOrigins []string

	// Upload handling
	MaxFileSize         int64
	AllowedTypes        []string
	FileStorageDir      string
	SyncProcessingLimit int64

	// Chunking (word-based windows)
	MaxChunkSize int
	ChunkOverlap int
	MinChunkSize int

	// Question extraction
	MinStemLength int

	// Redis Configuration
	RedisURL      string
	RedisPassword string
	RedisDB       int

	// Gemini Configuration
	GeminiAPIKey    string
	GeminiModel     string
	EmbeddingsModel string
	GeminiTier      string

	// Vector search
	VectorIndexName  string
	VectorDimensions int

	// Retrieval thresholding. SimilarityMetric and MetricDirection are fixed
	// per deployment; the threshold comparison always consumes the configured
	// direction instead of assuming one.
	RetrievalK         int
	RelevanceThreshold float64
	SimilarityMetric   string // "cosine", "dotProduct", "euclidean"
	MetricDirection    string // "higher" (similarity) or "lower" (distance)

	// Embedding retry policy
	EmbedMaxRetries  int
	EmbedBackoffMS   int
	EmbedTimeoutSecs int

	// Quiz building
	QuizHistoryTTLDays int

	// Identity verification (external authorizer)
	JWKSURL       string
	TokenIssuer   string
	TokenClientID string
	TokenUse      string

	// HTTP rate limiting
	RateLimitReqs   int
	RateLimitWindow int

	// Telemetry
	OTLPEndpoint string
}

func LoadConfig() (*Config, error) {
	// Load .env file if exists
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return nil, fmt.Errorf("error loading .env file: %v", err)
		}
	}

	cfg := &Config{
		MongoURI: getEnv("MONGO_URI", "mongodb://localhost:27017/certprep"),
		DBName:   getEnv("DB_NAME", "certprep"),
		Port:     getEnv("PORT", "8080"),
		GinMode:  getEnv("GIN_MODE", "debug"),

		CORSOrigins: strings.Split(getEnv("CORS_ORIGINS", "http://localhost:3000,http://localhost:8080"), ","),

		MaxFileSize:         getEnvInt64("MAX_FILE_SIZE", 52428800), // 50MB
		AllowedTypes:        strings.Split(getEnv("ALLOWED_FILE_TYPES", "pdf,txt,md"), ","),
		FileStorageDir:      getEnv("FILE_STORAGE_DIR", "./storage"),
		SyncProcessingLimit: getEnvInt64("SYNC_PROCESSING_LIMIT", 2097152), // 2MB processed inline

		MaxChunkSize: getEnvInt("MAX_CHUNK_SIZE", 1000),
		ChunkOverlap: getEnvInt("CHUNK_OVERLAP", 150),
		MinChunkSize: getEnvInt("MIN_CHUNK_SIZE", 50),

		MinStemLength: getEnvInt("MIN_STEM_LENGTH", 12),

		// Redis Configuration
		RedisURL:      getEnv("REDIS_URL", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		// Gemini Configuration
		GeminiAPIKey:    getEnv("GEMINI_API_KEY", ""),
		GeminiModel:     getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
		EmbeddingsModel: getEnv("GOOGLE_EMBEDDINGS_MODEL", "text-embedding-004"),
		GeminiTier:      getEnv("GEMINI_TIER", "free"),

		VectorIndexName:  getEnv("MONGODB_VECTOR_INDEX", "index_records_vector"),
		VectorDimensions: getEnvInt("VECTOR_DIM", 768),

		RetrievalK:         getEnvInt("RETRIEVAL_K", 4),
		RelevanceThreshold: getEnvFloat64("RELEVANCE_THRESHOLD", 0.72),
		SimilarityMetric:   getEnv("SIMILARITY_METRIC", "cosine"),
		MetricDirection:    getEnv("METRIC_DIRECTION", "higher"),

		EmbedMaxRetries:  getEnvInt("EMBED_MAX_RETRIES", 4),
		EmbedBackoffMS:   getEnvInt("EMBED_BACKOFF_MS", 500),
		EmbedTimeoutSecs: getEnvInt("EMBED_TIMEOUT_SECS", 30),

		QuizHistoryTTLDays: getEnvInt("QUIZ_HISTORY_TTL_DAYS", 90),

		JWKSURL:       getEnv("JWKS_URL", ""),
		TokenIssuer:   getEnv("TOKEN_ISSUER", ""),
		TokenClientID: getEnv("TOKEN_CLIENT_ID", ""),
		TokenUse:      getEnv("TOKEN_USE", "access"),

		RateLimitReqs:   getEnvInt("RATE_LIMIT_REQUESTS", 100),
		RateLimitWindow: getEnvInt("RATE_LIMIT_WINDOW", 60),

		OTLPEndpoint: getEnv("OTLP_ENDPOINT", "localhost:4317"),
	}

	// Validate required fields
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required - set it in .env file")
	}

	if cfg.JWKSURL == "" || cfg.TokenIssuer == "" || cfg.TokenClientID == "" {
		return nil, fmt.Errorf("JWKS_URL, TOKEN_ISSUER and TOKEN_CLIENT_ID are required - set them in .env file")
	}

	if cfg.MetricDirection != "higher" && cfg.MetricDirection != "lower" {
		return nil, fmt.Errorf("METRIC_DIRECTION must be \"higher\" or \"lower\", got %q", cfg.MetricDirection)
	}

	if cfg.ChunkOverlap >= cfg.MaxChunkSize {
		return nil, fmt.Errorf("CHUNK_OVERLAP (%d) must be smaller than MAX_CHUNK_SIZE (%d)", cfg.ChunkOverlap, cfg.MaxChunkSize)
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloat64(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
