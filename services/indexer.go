package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"certprep-platform/internal/apperr"
	"certprep-platform/internal/config"
	"certprep-platform/internal/logger"
	"certprep-platform/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Embedder produces a fixed-dimension vector for a piece of text.
type Embedder interface {
	EmbedText(ctx context.Context, text string) ([]float32, error)
}

// Indexer embeds chunks and extracted questions and upserts them as
// IndexRecords. Record ids are derived from the document id and ordinal, so
// re-processing a document overwrites its own records and concurrent
// ingestion of different documents never collides.
type Indexer struct {
	embedder    Embedder
	collection  *mongo.Collection
	maxRetries  int
	baseBackoff time.Duration
	timeout     time.Duration
}

func NewIndexer(embedder Embedder, db *mongo.Database, cfg *config.Config) *Indexer {
	return &Indexer{
		embedder:    embedder,
		collection:  db.Collection("index_records"),
		maxRetries:  cfg.EmbedMaxRetries,
		baseBackoff: time.Duration(cfg.EmbedBackoffMS) * time.Millisecond,
		timeout:     time.Duration(cfg.EmbedTimeoutSecs) * time.Second,
	}
}

// IndexDocument embeds and persists all chunks and questions of one
// document. Embedding calls run serially to respect service rate limits;
// throttling retries with backoff instead of abandoning the batch.
func (ix *Indexer) IndexDocument(ctx context.Context, doc *models.SourceDocument, certification string, chunks []models.ContentChunk, questions []models.ExtractedQuestion) (int, error) {
	records := make([]models.IndexRecord, 0, len(chunks)+len(questions))

	for _, chunk := range chunks {
		vector, err := ix.embedWithRetry(ctx, chunk.Text)
		if err != nil {
			return len(records), fmt.Errorf("failed to embed chunk %d: %w", chunk.Sequence, err)
		}
		records = append(records, models.IndexRecord{
			RecordID:      fmt.Sprintf("%s_chunk_%d", doc.ID.Hex(), chunk.Sequence),
			DocumentID:    doc.ID,
			Sequence:      chunk.Sequence,
			Text:          chunk.Text,
			ContentType:   models.ContentTypeChunk,
			Certification: certification,
			Category:      chunk.Metadata.Category,
			Difficulty:    chunk.Metadata.Difficulty,
			SourceFile:    doc.Filename,
			Vector:        vector,
			ProcessedAt:   time.Now(),
		})
	}

	for i, q := range questions {
		vector, err := ix.embedWithRetry(ctx, q.QuestionText)
		if err != nil {
			return len(records), fmt.Errorf("failed to embed question %d: %w", i, err)
		}
		records = append(records, models.IndexRecord{
			RecordID:         fmt.Sprintf("%s_question_%d", doc.ID.Hex(), i),
			DocumentID:       doc.ID,
			Sequence:         i,
			Text:             q.QuestionText,
			ContentType:      models.ContentTypeQuestion,
			Certification:    certification,
			SourceFile:       doc.Filename,
			ExtractionMethod: q.ExtractedBy,
			Vector:           vector,
			Question: &models.QuestionPayload{
				Options:       q.Options,
				CorrectAnswer: q.CorrectAnswer,
				Number:        q.Number,
			},
			ProcessedAt: time.Now(),
		})
	}

	if err := ix.upsertRecords(ctx, records); err != nil {
		return 0, err
	}
	return len(records), nil
}

// embedWithRetry retries throttled embedding calls with exponential backoff
// before surfacing the failure as a downstream error.
func (ix *Indexer) embedWithRetry(ctx context.Context, text string) ([]float32, error) {
	var lastErr error

	for attempt := 0; attempt <= ix.maxRetries; attempt++ {
		callCtx, cancel := context.WithTimeout(ctx, ix.timeout)
		vector, err := ix.embedder.EmbedText(callCtx, text)
		cancel()

		if err == nil {
			return vector, nil
		}
		lastErr = err

		if !apperr.Retryable(err) || attempt == ix.maxRetries {
			break
		}

		backoff := ix.baseBackoff << uint(attempt)
		logger.Warn("Embedding call throttled, backing off", "attempt", attempt+1, "backoff", backoff.String())
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
	}

	if errors.Is(lastErr, apperr.ErrThrottled) {
		return nil, apperr.Downstreamf("embedding service still throttled after %d retries: %v", ix.maxRetries, lastErr)
	}
	return nil, lastErr
}

// upsertRecords writes the records with an unordered bulk upsert keyed on
// record_id.
func (ix *Indexer) upsertRecords(ctx context.Context, records []models.IndexRecord) error {
	if len(records) == 0 {
		return nil
	}

	batch := make([]mongo.WriteModel, 0, len(records))
	for _, rec := range records {
		batch = append(batch, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"record_id": rec.RecordID}).
			SetUpdate(bson.M{"$set": rec}).
			SetUpsert(true))
	}

	if _, err := ix.collection.BulkWrite(ctx, batch, options.BulkWrite().SetOrdered(false)); err != nil {
		return fmt.Errorf("failed to write index records: %w", err)
	}
	return nil
}

// DeleteDocumentRecords removes all index records belonging to a document.
func (ix *Indexer) DeleteDocumentRecords(ctx context.Context, documentID primitive.ObjectID) error {
	if _, err := ix.collection.DeleteMany(ctx, bson.M{"document_id": documentID}); err != nil {
		return fmt.Errorf("failed to delete index records: %w", err)
	}
	return nil
}
