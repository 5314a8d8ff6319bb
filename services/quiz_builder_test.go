package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"certprep-platform/internal/apperr"
	"certprep-platform/models"
	"certprep-platform/utils"
)

type fakeQuestionSource struct {
	records []models.IndexRecord
}

func (f *fakeQuestionSource) QuestionsFor(ctx context.Context, certification, difficulty string, limit int) ([]models.IndexRecord, error) {
	if len(f.records) > limit {
		return f.records[:limit], nil
	}
	return f.records, nil
}

type fakeHistory struct {
	seen     map[string]bool
	recorded []string
}

func (f *fakeHistory) SeenQuestions(ctx context.Context, userID, certification string) (map[string]bool, error) {
	return f.seen, nil
}

func (f *fakeHistory) RecordQuestions(ctx context.Context, userID, certification string, questionIDs []string) error {
	f.recorded = append(f.recorded, questionIDs...)
	return nil
}

type fakeQuestionGen struct {
	err   error
	calls int
}

func (f *fakeQuestionGen) GenerateQuestions(ctx context.Context, certification, difficulty string, count int) ([]models.QuizQuestion, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	questions := make([]models.QuizQuestion, count)
	for i := range questions {
		questions[i] = models.QuizQuestion{
			QuestionText:  fmt.Sprintf("generated question number %d about %s", i, certification),
			Options:       []string{"alpha", "beta", "gamma", "delta"},
			CorrectAnswer: "alpha",
			Source:        models.QuizSourceGenerated,
		}
	}
	return questions, nil
}

type fakeSessionStore struct {
	saved []*models.QuizSession
}

func (f *fakeSessionStore) SaveSession(ctx context.Context, session *models.QuizSession) error {
	f.saved = append(f.saved, session)
	return nil
}

func questionRecords(n int) []models.IndexRecord {
	records := make([]models.IndexRecord, n)
	for i := range records {
		records[i] = models.IndexRecord{
			RecordID:      fmt.Sprintf("doc_question_%d", i),
			Text:          fmt.Sprintf("indexed question number %d covering a distinct topic", i),
			ContentType:   models.ContentTypeQuestion,
			Certification: "SAA",
			Question: &models.QuestionPayload{
				Options:       []string{"one", "two", "three", "four"},
				CorrectAnswer: "one",
			},
		}
	}
	return records
}

func TestBuildQuizUniquenessWithGeneratedFill(t *testing.T) {
	const n, m = 5, 3

	// n+m-1 indexed questions, of which the user has already seen m.
	records := questionRecords(n + m - 1)
	seen := make(map[string]bool)
	for i := 0; i < m; i++ {
		seen[utils.StemKey(records[i].Text)] = true
	}

	history := &fakeHistory{seen: seen}
	gen := &fakeQuestionGen{}
	sessions := &fakeSessionStore{}
	builder := NewQuizBuilder(&fakeQuestionSource{records: records}, history, gen, sessions)

	session, err := builder.BuildQuiz(context.Background(), "user-1", &models.QuizRequest{
		Certification: "SAA",
		Count:         n,
		Unique:        true,
	})
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}

	if len(session.Questions) != n {
		t.Fatalf("expected %d questions, got %d", n, len(session.Questions))
	}

	generated := 0
	for _, q := range session.Questions {
		if seen[q.QuestionID] {
			t.Errorf("question %s was already seen by the user", q.QuestionID)
		}
		if q.Source == models.QuizSourceGenerated {
			generated++
		}
	}
	if generated == 0 {
		t.Error("expected generated fill for the shortfall")
	}
	if gen.calls != 1 {
		t.Errorf("expected exactly one generation call, got %d", gen.calls)
	}
	if len(history.recorded) != n {
		t.Errorf("expected %d questions recorded in history, got %d", n, len(history.recorded))
	}
	if len(sessions.saved) != 1 {
		t.Fatalf("expected session persisted once, got %d", len(sessions.saved))
	}
}

func TestBuildQuizNoContentFails(t *testing.T) {
	builder := NewQuizBuilder(
		&fakeQuestionSource{},
		&fakeHistory{},
		&fakeQuestionGen{err: errors.New("quota exhausted")},
		&fakeSessionStore{},
	)

	_, err := builder.BuildQuiz(context.Background(), "user-1", &models.QuizRequest{
		Certification: "ANS",
		Count:         5,
	})
	if err == nil {
		t.Fatal("expected hard failure when nothing is available")
	}
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("expected not-found error, got %v", err)
	}
}

func TestBuildQuizPartialWhenGenerationFails(t *testing.T) {
	records := questionRecords(3)
	builder := NewQuizBuilder(
		&fakeQuestionSource{records: records},
		&fakeHistory{},
		&fakeQuestionGen{err: errors.New("quota exhausted")},
		&fakeSessionStore{},
	)

	session, err := builder.BuildQuiz(context.Background(), "user-1", &models.QuizRequest{
		Certification: "SAA",
		Count:         10,
	})
	if err != nil {
		t.Fatalf("expected partial quiz, got error: %v", err)
	}
	if len(session.Questions) != 3 {
		t.Errorf("expected the 3 available questions, got %d", len(session.Questions))
	}
}

func TestBuildQuizValidation(t *testing.T) {
	builder := NewQuizBuilder(&fakeQuestionSource{}, &fakeHistory{}, &fakeQuestionGen{}, &fakeSessionStore{})

	_, err := builder.BuildQuiz(context.Background(), "user-1", &models.QuizRequest{Count: 5})
	if !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("expected validation error for missing certification, got %v", err)
	}

	_, err = builder.BuildQuiz(context.Background(), "user-1", &models.QuizRequest{Certification: "SAA"})
	if !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("expected validation error for zero count, got %v", err)
	}
}
