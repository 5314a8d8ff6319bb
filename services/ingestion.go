package services

import (
	"context"
	"fmt"
	"time"

	"certprep-platform/internal/apperr"
	"certprep-platform/internal/logger"
	"certprep-platform/internal/storage"
	"certprep-platform/models"
	"certprep-platform/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// IngestionService drives the full document pipeline: load blob, extract
// text, classify, chunk, extract questions, embed and index.
type IngestionService struct {
	documents  *mongo.Collection
	store      storage.ObjectStore
	extractor  *TextExtractor
	classifier *CertificationClassifier
	chunker    *Chunker
	questions  *QuestionExtractor
	indexer    *Indexer
}

func NewIngestionService(db *mongo.Database, store storage.ObjectStore, extractor *TextExtractor, classifier *CertificationClassifier, chunker *Chunker, questions *QuestionExtractor, indexer *Indexer) *IngestionService {
	return &IngestionService{
		documents:  db.Collection("documents"),
		store:      store,
		extractor:  extractor,
		classifier: classifier,
		chunker:    chunker,
		questions:  questions,
		indexer:    indexer,
	}
}

// Ingest processes one uploaded document end to end. Failures are recorded
// on the document so the upload can be inspected and retried.
func (s *IngestionService) Ingest(ctx context.Context, documentID primitive.ObjectID) error {
	var doc models.SourceDocument
	err := s.documents.FindOne(ctx, bson.M{"_id": documentID}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return apperr.NotFoundf("document %s not found", documentID.Hex())
	}
	if err != nil {
		return fmt.Errorf("failed to load document: %w", err)
	}

	s.updateStatus(ctx, documentID, models.StatusProcessing, "")

	if err := s.process(ctx, &doc); err != nil {
		s.updateStatus(ctx, documentID, models.StatusFailed, err.Error())
		return err
	}

	s.updateStatus(ctx, documentID, models.StatusCompleted, "")
	return nil
}

func (s *IngestionService) process(ctx context.Context, doc *models.SourceDocument) error {
	data, err := s.store.Get(doc.StorageKey)
	if err != nil {
		return fmt.Errorf("failed to read document blob: %w", err)
	}

	extraction, err := s.extractor.Extract(data, doc.ContentType, doc.Filename)
	if err != nil {
		return fmt.Errorf("text extraction failed: %w", err)
	}
	if extraction.Text == "" {
		return apperr.Validationf("document %s contains no extractable text", doc.Filename)
	}

	classification := s.classifier.Classify(doc.StorageKey, doc.Filename, extraction.Text)
	logger.Info("Document classified",
		"document_id", doc.ID.Hex(),
		"certification", classification.Code,
		"location_signal", classification.Signals.Location,
		"filename_signal", classification.Signals.Filename,
		"content_signal", classification.Signals.Content)

	compressed, algorithm, err := utils.CompressText(extraction.Text)
	if err != nil {
		return fmt.Errorf("failed to compress document text: %w", err)
	}

	_, err = s.documents.UpdateOne(ctx, bson.M{"_id": doc.ID}, bson.M{"$set": bson.M{
		"certification":   classification.Code,
		"signals":         classification.Signals,
		"pages":           extraction.Pages,
		"compressed_text": compressed,
		"compression":     string(algorithm),
	}})
	if err != nil {
		return fmt.Errorf("failed to update document metadata: %w", err)
	}

	chunks := s.chunker.Chunk(doc.ID, classification.Code, extraction.Text)
	questions := s.questions.Extract(extraction.Text, classification.Code)

	written, err := s.indexer.IndexDocument(ctx, doc, classification.Code, chunks, questions)
	if err != nil {
		return fmt.Errorf("indexing failed after %d records: %w", written, err)
	}

	logger.Info("Document ingested",
		"document_id", doc.ID.Hex(),
		"chunks", len(chunks),
		"questions", len(questions),
		"records", written,
		"quality", extraction.QualityScore)
	return nil
}

func (s *IngestionService) updateStatus(ctx context.Context, documentID primitive.ObjectID, status, errMsg string) {
	update := bson.M{"status": status}
	if errMsg != "" {
		update["error_message"] = errMsg
	}
	if status == models.StatusCompleted || status == models.StatusFailed {
		now := time.Now()
		update["processed_at"] = now
	}

	if _, err := s.documents.UpdateOne(ctx, bson.M{"_id": documentID}, bson.M{"$set": update}); err != nil {
		logger.Error("Failed to update document status", "document_id", documentID.Hex(), "status", status, "error", err)
	}
}
