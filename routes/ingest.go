package routes

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
	"time"

	"certprep-platform/internal/config"
	"certprep-platform/internal/logger"
	"certprep-platform/internal/queue"
	"certprep-platform/internal/storage"
	"certprep-platform/models"
	"certprep-platform/services"
	"certprep-platform/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// HandleDocumentUpload accepts a study document, stores the blob, creates
// the SourceDocument record and either processes it inline (small files) or
// enqueues a background ingestion task.
func HandleDocumentUpload(cfg *config.Config, db *mongo.Database, store storage.ObjectStore, ingestion *services.IngestionService, queueClient *asynq.Client) gin.HandlerFunc {
	documents := db.Collection("documents")

	return func(c *gin.Context) {
		if err := c.Request.ParseMultipartForm(cfg.MaxFileSize); err != nil {
			utils.RespondWithBadRequest(c, "File size exceeds maximum limit", nil)
			return
		}

		file, header, err := c.Request.FormFile("document")
		if err != nil {
			utils.RespondWithBadRequest(c, "No document file provided", nil)
			return
		}
		defer file.Close()

		if header.Size > cfg.MaxFileSize {
			utils.RespondWithBadRequest(c, "File size exceeds maximum limit", nil)
			return
		}

		if !allowedType(cfg.AllowedTypes, header.Filename) {
			utils.RespondWithBadRequest(c, "Unsupported file type", gin.H{"allowed": cfg.AllowedTypes})
			return
		}

		data, err := io.ReadAll(io.LimitReader(file, cfg.MaxFileSize))
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to read uploaded file", nil)
			return
		}

		// An optional certification form field becomes a path hint so the
		// classifier can use placement as a signal.
		certHint := strings.ToLower(strings.TrimSpace(c.PostForm("certification")))
		storageKey := buildStorageKey(certHint, header.Filename)

		if err := store.Put(storageKey, data); err != nil {
			utils.RespondWithInternalError(c, "Failed to store document", nil)
			return
		}

		doc := models.SourceDocument{
			StorageKey:  storageKey,
			Filename:    header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Size:        header.Size,
			Status:      models.StatusPending,
			UploadedAt:  time.Now(),
		}

		result, err := documents.InsertOne(c.Request.Context(), doc)
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to record document", nil)
			return
		}
		documentID := result.InsertedID.(primitive.ObjectID)

		// Small documents process synchronously so the caller sees the
		// final status; larger ones go through the queue.
		if header.Size <= cfg.SyncProcessingLimit {
			if err := ingestion.Ingest(c.Request.Context(), documentID); err != nil {
				logger.Error("Inline ingestion failed", "document_id", documentID.Hex(), "error", err)
				utils.RespondWithAppError(c, err)
				return
			}

			c.JSON(http.StatusOK, models.UploadResponse{
				ID:       documentID.Hex(),
				Filename: header.Filename,
				Status:   models.StatusCompleted,
				Message:  "Document processed",
			})
			return
		}

		task, err := queue.NewIngestTask(documentID.Hex(), header.Filename)
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to create ingestion task", nil)
			return
		}

		info, err := queueClient.Enqueue(task)
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to enqueue ingestion task", nil)
			return
		}

		c.JSON(http.StatusAccepted, models.UploadResponse{
			ID:       documentID.Hex(),
			Filename: header.Filename,
			Status:   models.StatusPending,
			TaskID:   info.ID,
			Message:  "Document queued for processing",
		})
	}
}

// HandleDocumentStatus reports processing state for one uploaded document.
func HandleDocumentStatus(db *mongo.Database) gin.HandlerFunc {
	documents := db.Collection("documents")

	return func(c *gin.Context) {
		documentID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			utils.RespondWithBadRequest(c, "Invalid document id", nil)
			return
		}

		var doc models.SourceDocument
		err = documents.FindOne(c.Request.Context(), bson.M{"_id": documentID}).Decode(&doc)
		if err == mongo.ErrNoDocuments {
			utils.RespondWithNotFound(c, "Document not found")
			return
		}
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to load document", nil)
			return
		}

		c.JSON(http.StatusOK, doc)
	}
}

// HandleListDocuments lists uploaded documents, optionally filtered by
// certification.
func HandleListDocuments(db *mongo.Database) gin.HandlerFunc {
	documents := db.Collection("documents")

	return func(c *gin.Context) {
		filter := bson.M{}
		if cert := c.Query("certification"); cert != "" {
			filter["certification"] = strings.ToUpper(cert)
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
		defer cancel()

		cursor, err := documents.Find(ctx, filter)
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to list documents", nil)
			return
		}
		defer cursor.Close(ctx)

		docs := []models.SourceDocument{}
		if err := cursor.All(ctx, &docs); err != nil {
			utils.RespondWithInternalError(c, "Failed to decode documents", nil)
			return
		}

		c.JSON(http.StatusOK, gin.H{"documents": docs, "count": len(docs)})
	}
}

func allowedType(allowed []string, filename string) bool {
	ext := strings.TrimPrefix(strings.ToLower(path.Ext(filename)), ".")
	for _, a := range allowed {
		if ext == a {
			return true
		}
	}
	return false
}

func buildStorageKey(certHint, filename string) string {
	if certHint == "" {
		certHint = "uploads"
	}
	return fmt.Sprintf("%s/%s_%s", certHint, uuid.NewString(), filename)
}
