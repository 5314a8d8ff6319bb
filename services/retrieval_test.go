package services

import (
	"context"
	"math"
	"sort"
	"testing"

	"certprep-platform/internal/config"
	"certprep-platform/models"
)

type fakeEmbedder struct {
	vectors map[string][]float32
}

func (f *fakeEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	if v, ok := f.vectors[text]; ok {
		return v, nil
	}
	return []float32{0, 0, 1}, nil
}

// fakeSearcher ranks stored records by cosine similarity against the query.
type fakeSearcher struct {
	records []models.IndexRecord
}

func (f *fakeSearcher) Search(ctx context.Context, vector []float32, k int, certification, contentType string) ([]ScoredRecord, error) {
	var results []ScoredRecord
	for _, rec := range f.records {
		if certification != "" && certification != CertificationGeneral && rec.Certification != certification {
			continue
		}
		results = append(results, ScoredRecord{Record: rec, Score: cosine(vector, rec.Vector)})
	}
	sort.Slice(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if len(results) > k {
		results = results[:k]
	}
	return results, nil
}

func cosine(a, b []float32) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

type fakeGenerator struct {
	lastPassages []string
}

func (f *fakeGenerator) GenerateAnswer(ctx context.Context, query string, passages []string) (string, error) {
	f.lastPassages = passages
	return "an answer", nil
}

func newTestEngine(searcher Searcher, threshold float64, direction string) (*RetrievalEngine, *fakeGenerator) {
	embedder := &fakeEmbedder{vectors: map[string][]float32{
		"what is s3": {1, 0, 0},
	}}
	gen := &fakeGenerator{}
	cfg := &config.Config{
		RetrievalK:         3,
		RelevanceThreshold: threshold,
		MetricDirection:    direction,
	}
	return NewRetrievalEngine(embedder, searcher, gen, cfg), gen
}

func indexedRecords() []models.IndexRecord {
	return []models.IndexRecord{
		{RecordID: "d1_chunk_0", Text: "S3 is object storage", Certification: "SAA", Vector: []float32{1, 0, 0}},
		{RecordID: "d1_chunk_1", Text: "EC2 is compute", Certification: "SAA", Vector: []float32{0, 1, 0}},
		{RecordID: "d2_chunk_0", Text: "IAM manages access", Certification: "SCS", Vector: []float32{0.5, 0.5, 0}},
	}
}

func TestRetrieveIdenticalVectorIsTopResult(t *testing.T) {
	engine, _ := newTestEngine(&fakeSearcher{records: indexedRecords()}, 0.7, "higher")

	results, _, err := engine.Retrieve(context.Background(), "what is s3", "")
	if err != nil {
		t.Fatalf("retrieve failed: %v", err)
	}
	if len(results) == 0 {
		t.Fatal("expected results")
	}
	if results[0].Record.RecordID != "d1_chunk_0" {
		t.Errorf("expected identical-vector record first, got %s", results[0].Record.RecordID)
	}
	if math.Abs(results[0].Score-1.0) > 1e-9 {
		t.Errorf("expected best possible score 1.0, got %f", results[0].Score)
	}
}

func TestAnswerQueryModeSelection(t *testing.T) {
	tests := []struct {
		name      string
		threshold float64
		direction string
		wantMode  string
	}{
		{"above threshold higher is better", 0.5, "higher", models.AnswerModeRAG},
		{"below threshold higher is better", 0.99, "higher", models.AnswerModeEnhanced},
		{"below threshold lower is better", 0.99, "lower", models.AnswerModeRAG},
		{"above threshold lower is better", 0.1, "lower", models.AnswerModeEnhanced},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine, gen := newTestEngine(&fakeSearcher{records: indexedRecords()}, tt.threshold, tt.direction)

			resp, err := engine.AnswerQuery(context.Background(), "what is s3", "SAA")
			if err != nil {
				t.Fatalf("answer failed: %v", err)
			}
			if resp.Mode != tt.wantMode {
				t.Errorf("expected mode %s, got %s (score %f)", tt.wantMode, resp.Mode, resp.Score)
			}
			if tt.wantMode == models.AnswerModeRAG && len(gen.lastPassages) == 0 {
				t.Error("rag mode should pass retrieved passages to the generator")
			}
			if tt.wantMode == models.AnswerModeEnhanced && len(gen.lastPassages) != 0 {
				t.Error("enhanced mode should not pass passages to the generator")
			}
		})
	}
}

func TestAnswerQueryEmptyIndexFallsBack(t *testing.T) {
	engine, _ := newTestEngine(&fakeSearcher{}, 0.5, "higher")

	resp, err := engine.AnswerQuery(context.Background(), "what is s3", "")
	if err != nil {
		t.Fatalf("expected fallback success, got error: %v", err)
	}
	if resp.Mode != models.AnswerModeEnhanced {
		t.Errorf("expected enhanced mode on empty index, got %s", resp.Mode)
	}
}

func TestAnswerQueryRejectsEmptyQuery(t *testing.T) {
	engine, _ := newTestEngine(&fakeSearcher{}, 0.5, "higher")

	if _, err := engine.AnswerQuery(context.Background(), "", ""); err == nil {
		t.Fatal("expected validation error for empty query")
	}
}
