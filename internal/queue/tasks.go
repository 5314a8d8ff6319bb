package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"certprep-platform/internal/apperr"
	"certprep-platform/internal/logger"
	"certprep-platform/services"
)

const TaskIngestDocument = "document:ingest"

type IngestPayload struct {
	DocumentID string `json:"document_id"`
	Filename   string `json:"filename"`
}

// NewIngestTask creates the background ingestion task for one uploaded
// document.
func NewIngestTask(documentID, filename string) (*asynq.Task, error) {
	payload, err := json.Marshal(IngestPayload{
		DocumentID: documentID,
		Filename:   filename,
	})
	if err != nil {
		return nil, err
	}

	return asynq.NewTask(
		TaskIngestDocument,
		payload,
		asynq.MaxRetry(3),
		asynq.Timeout(10*time.Minute),
		asynq.Queue("critical"),
	), nil
}

// TaskProcessor wires asynq handlers to the ingestion pipeline.
type TaskProcessor struct {
	ingestion *services.IngestionService
}

func NewTaskProcessor(ingestion *services.IngestionService) *TaskProcessor {
	return &TaskProcessor{ingestion: ingestion}
}

func (p *TaskProcessor) ProcessIngest(ctx context.Context, t *asynq.Task) error {
	var payload IngestPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal failed: %w", asynq.SkipRetry)
	}

	documentID, err := primitive.ObjectIDFromHex(payload.DocumentID)
	if err != nil {
		return fmt.Errorf("invalid document id %q: %w", payload.DocumentID, asynq.SkipRetry)
	}

	logger.Info("Processing document ingestion task", "document_id", payload.DocumentID, "filename", payload.Filename)

	if err := p.ingestion.Ingest(ctx, documentID); err != nil {
		// Validation and not-found failures are permanent; retrying the
		// task cannot fix the document.
		if errors.Is(err, apperr.ErrValidation) || errors.Is(err, apperr.ErrNotFound) {
			logger.Error("Document ingestion failed permanently", "document_id", payload.DocumentID, "error", err)
			return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
		}
		return err
	}

	return nil
}
