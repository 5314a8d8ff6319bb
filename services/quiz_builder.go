package services

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"certprep-platform/internal/apperr"
	"certprep-platform/internal/logger"
	"certprep-platform/models"
	"certprep-platform/utils"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// QuestionSource supplies indexed question records for a certification.
type QuestionSource interface {
	QuestionsFor(ctx context.Context, certification, difficulty string, limit int) ([]models.IndexRecord, error)
}

// QuestionGenerator synthesizes new quiz questions when the index pool is
// short of the requested count.
type QuestionGenerator interface {
	GenerateQuestions(ctx context.Context, certification, difficulty string, count int) ([]models.QuizQuestion, error)
}

// SessionStore persists assembled quiz sessions.
type SessionStore interface {
	SaveSession(ctx context.Context, session *models.QuizSession) error
}

// MongoQuestionSource reads question-type index records from the index
// collection.
type MongoQuestionSource struct {
	collection *mongo.Collection
}

func NewMongoQuestionSource(db *mongo.Database) *MongoQuestionSource {
	return &MongoQuestionSource{collection: db.Collection("index_records")}
}

func (s *MongoQuestionSource) QuestionsFor(ctx context.Context, certification, difficulty string, limit int) ([]models.IndexRecord, error) {
	filter := bson.M{"content_type": models.ContentTypeQuestion}
	if certification != "" && certification != CertificationGeneral {
		filter["certification"] = certification
	}
	if difficulty != "" {
		filter["difficulty"] = difficulty
	}

	cursor, err := s.collection.Find(ctx, filter, options.Find().SetLimit(int64(limit)))
	if err != nil {
		return nil, apperr.Downstreamf("failed to query question index: %v", err)
	}
	defer cursor.Close(ctx)

	var records []models.IndexRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("failed to decode question records: %w", err)
	}
	return records, nil
}

// MongoSessionStore persists quiz sessions to the quiz_sessions collection.
type MongoSessionStore struct {
	collection *mongo.Collection
}

func NewMongoSessionStore(db *mongo.Database) *MongoSessionStore {
	return &MongoSessionStore{collection: db.Collection("quiz_sessions")}
}

func (s *MongoSessionStore) SaveSession(ctx context.Context, session *models.QuizSession) error {
	if _, err := s.collection.InsertOne(ctx, session); err != nil {
		return fmt.Errorf("failed to save quiz session: %w", err)
	}
	return nil
}

// QuizBuilder assembles per-user quizzes from the question index, filling
// shortfalls with generated questions and honoring the uniqueness flag
// against the user's history.
type QuizBuilder struct {
	source    QuestionSource
	history   HistoryStore
	generator QuestionGenerator
	sessions  SessionStore
	// poolMultiplier over-fetches from the index so uniqueness filtering
	// still leaves enough candidates.
	poolMultiplier int
}

func NewQuizBuilder(source QuestionSource, history HistoryStore, generator QuestionGenerator, sessions SessionStore) *QuizBuilder {
	return &QuizBuilder{
		source:         source,
		history:        history,
		generator:      generator,
		sessions:       sessions,
		poolMultiplier: 4,
	}
}

// BuildQuiz assembles a quiz of req.Count questions. Indexed questions come
// first; when the pool runs short the remainder is generated. Zero available
// and zero generatable questions is a hard failure, never an empty quiz.
func (qb *QuizBuilder) BuildQuiz(ctx context.Context, userID string, req *models.QuizRequest) (*models.QuizSession, error) {
	if req.Certification == "" {
		return nil, apperr.Validationf("certification is required")
	}
	if req.Count <= 0 {
		return nil, apperr.Validationf("question count must be positive")
	}

	records, err := qb.source.QuestionsFor(ctx, req.Certification, req.Difficulty, req.Count*qb.poolMultiplier)
	if err != nil {
		return nil, err
	}

	var seen map[string]bool
	if req.Unique && userID != "" {
		seen, err = qb.history.SeenQuestions(ctx, userID, req.Certification)
		if err != nil {
			// History is advisory for assembly; a failed lookup degrades to
			// a quiz that may repeat rather than no quiz at all.
			logger.Warn("Question history lookup failed, uniqueness not enforced", "user_id", userID, "error", err)
			seen = nil
		}
	}

	pool := make([]models.QuizQuestion, 0, len(records))
	for _, rec := range records {
		if rec.Question == nil {
			continue
		}
		q := models.QuizQuestion{
			QuestionID:    utils.StemKey(rec.Text),
			QuestionText:  rec.Text,
			Options:       rec.Question.Options,
			CorrectAnswer: rec.Question.CorrectAnswer,
			Category:      rec.Category,
			Difficulty:    rec.Difficulty,
			Source:        models.QuizSourceIndex,
		}
		if seen[q.QuestionID] {
			continue
		}
		pool = append(pool, q)
	}

	rand.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
	if len(pool) > req.Count {
		pool = pool[:req.Count]
	}

	if shortfall := req.Count - len(pool); shortfall > 0 {
		generated, err := qb.generator.GenerateQuestions(ctx, req.Certification, req.Difficulty, shortfall)
		if err != nil {
			if len(pool) == 0 {
				return nil, apperr.NotFoundf("no quiz content available for %s: %v", req.Certification, err)
			}
			// A partial quiz from the index beats failing the request.
			logger.Warn("Question generation failed, serving partial quiz", "certification", req.Certification, "have", len(pool), "wanted", req.Count, "error", err)
		}
		for _, q := range generated {
			q.QuestionID = utils.StemKey(q.QuestionText)
			if seen[q.QuestionID] {
				continue
			}
			pool = append(pool, q)
		}
	}

	if len(pool) == 0 {
		return nil, apperr.NotFoundf("no quiz content available for certification %s", req.Certification)
	}
	if len(pool) > req.Count {
		pool = pool[:req.Count]
	}

	session := &models.QuizSession{
		QuizID:        uuid.NewString(),
		UserID:        userID,
		Certification: req.Certification,
		Difficulty:    req.Difficulty,
		Questions:     pool,
		CreatedAt:     time.Now(),
	}

	if err := qb.sessions.SaveSession(ctx, session); err != nil {
		return nil, err
	}

	if userID != "" {
		ids := make([]string, len(pool))
		for i, q := range pool {
			ids[i] = q.QuestionID
		}
		if err := qb.history.RecordQuestions(ctx, userID, req.Certification, ids); err != nil {
			logger.Warn("Failed to record question history", "user_id", userID, "error", err)
		}
	}

	return session, nil
}
