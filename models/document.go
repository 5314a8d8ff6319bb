package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SourceDocument represents an uploaded study document. It is created once on
// upload and consumed once by the ingestion pipeline; the extracted text is
// stored compressed alongside the record.
type SourceDocument struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	StorageKey     string             `bson:"storage_key" json:"storage_key"`
	Filename       string             `bson:"filename" json:"filename"`
	ContentType    string             `bson:"content_type" json:"content_type"`
	Size           int64              `bson:"size" json:"size"`
	Pages          int                `bson:"pages" json:"pages"`
	Certification  string             `bson:"certification" json:"certification"`
	Signals        DetectionSignals   `bson:"signals" json:"signals"`
	CompressedText []byte             `bson:"compressed_text,omitempty" json:"-"`
	Compression    string             `bson:"compression,omitempty" json:"-"`
	Status         string             `bson:"status" json:"status"`
	ErrorMessage   string             `bson:"error_message,omitempty" json:"error_message,omitempty"`
	UploadedAt     time.Time          `bson:"uploaded_at" json:"uploaded_at"`
	ProcessedAt    *time.Time         `bson:"processed_at,omitempty" json:"processed_at,omitempty"`
}

// DetectionSignals holds the three raw classifier signals, retained for audit.
type DetectionSignals struct {
	Location string `bson:"location" json:"location"`
	Filename string `bson:"filename" json:"filename"`
	Content  string `bson:"content" json:"content"`
}

// ContentChunk is one bounded, overlapping window of a document's text.
type ContentChunk struct {
	ChunkID       string             `bson:"chunk_id" json:"chunk_id"`
	DocumentID    primitive.ObjectID `bson:"document_id" json:"document_id"`
	Sequence      int                `bson:"sequence" json:"sequence"`
	Text          string             `bson:"text" json:"text"`
	Certification string             `bson:"certification" json:"certification"`
	ContentType   string             `bson:"content_type" json:"content_type"`
	Vector        []float32          `bson:"vector,omitempty" json:"-"`
	Metadata      ChunkMetadata      `bson:"metadata" json:"metadata"`
}

// ChunkMetadata carries classification hints attached at ingestion time.
type ChunkMetadata struct {
	Category         string `bson:"category,omitempty" json:"category,omitempty"`
	Difficulty       string `bson:"difficulty,omitempty" json:"difficulty,omitempty"`
	ExtractionMethod string `bson:"extraction_method,omitempty" json:"extraction_method,omitempty"`
}

// IndexRecord is the persisted, searchable unit: a chunk or extracted question
// plus its embedding vector and metadata. Kept in a dedicated collection so
// Atlas $vectorSearch stays efficient.
type IndexRecord struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	RecordID           string             `bson:"record_id" json:"record_id"`
	DocumentID         primitive.ObjectID `bson:"document_id" json:"document_id"`
	Sequence           int                `bson:"sequence" json:"sequence"`
	Text               string             `bson:"text" json:"text"`
	ContentType        string             `bson:"content_type" json:"content_type"`
	Certification      string             `bson:"certification" json:"certification"`
	CertificationLevel string             `bson:"certification_level,omitempty" json:"certification_level,omitempty"`
	Category           string             `bson:"category,omitempty" json:"category,omitempty"`
	Difficulty         string             `bson:"difficulty,omitempty" json:"difficulty,omitempty"`
	Tags               []string           `bson:"tags,omitempty" json:"tags,omitempty"`
	SourceFile         string             `bson:"source_file" json:"source_file"`
	ExtractionMethod   string             `bson:"extraction_method,omitempty" json:"extraction_method,omitempty"`
	Vector             []float32          `bson:"vector,omitempty" json:"-"`
	Question           *QuestionPayload   `bson:"question,omitempty" json:"question,omitempty"`
	ProcessedAt        time.Time          `bson:"processed_at" json:"processed_at"`
}

// QuestionPayload is the structured form stored on question-type records.
type QuestionPayload struct {
	Options       []string `bson:"options" json:"options"`
	CorrectAnswer string   `bson:"correct_answer,omitempty" json:"correct_answer,omitempty"`
	Number        int      `bson:"number,omitempty" json:"number,omitempty"`
}

// Content types stored in the index.
const (
	ContentTypeChunk    = "chunk"
	ContentTypeQuestion = "question"
)

// Document processing status constants.
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// UploadResponse is returned after a successful document upload.
type UploadResponse struct {
	ID            string `json:"id"`
	Filename      string `json:"filename"`
	Certification string `json:"certification"`
	Status        string `json:"status"`
	TaskID        string `json:"task_id,omitempty"`
	Message       string `json:"message"`
}
