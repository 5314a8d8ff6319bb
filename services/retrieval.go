package services

import (
	"context"
	"fmt"

	"certprep-platform/internal/apperr"
	"certprep-platform/internal/config"
	"certprep-platform/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// ScoredRecord is an index record with its search similarity score attached.
type ScoredRecord struct {
	Record models.IndexRecord
	Score  float64
}

// Searcher runs a filtered k-NN query against the vector index.
type Searcher interface {
	Search(ctx context.Context, vector []float32, k int, certification, contentType string) ([]ScoredRecord, error)
}

// AnswerGenerator produces the final answer text, grounded on passages when
// any are supplied.
type AnswerGenerator interface {
	GenerateAnswer(ctx context.Context, query string, passages []string) (string, error)
}

// MongoSearcher implements Searcher over an Atlas $vectorSearch index.
type MongoSearcher struct {
	collection *mongo.Collection
	indexName  string
}

func NewMongoSearcher(db *mongo.Database, indexName string) *MongoSearcher {
	return &MongoSearcher{
		collection: db.Collection("index_records"),
		indexName:  indexName,
	}
}

func (s *MongoSearcher) Search(ctx context.Context, vector []float32, k int, certification, contentType string) ([]ScoredRecord, error) {
	if k <= 0 {
		k = 4
	}

	vectorStage := bson.M{
		"index":         s.indexName,
		"path":          "vector",
		"queryVector":   vector,
		"numCandidates": k * 15,
		"limit":         k,
	}

	filter := bson.M{}
	if certification != "" && certification != CertificationGeneral {
		filter["certification"] = certification
	}
	if contentType != "" {
		filter["content_type"] = contentType
	}
	if len(filter) > 0 {
		vectorStage["filter"] = filter
	}

	pipeline := mongo.Pipeline{
		{{Key: "$vectorSearch", Value: vectorStage}},
		{{Key: "$addFields", Value: bson.M{"search_score": bson.M{"$meta": "vectorSearchScore"}}}},
	}

	cursor, err := s.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, apperr.Downstreamf("vector search failed: %v", err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		models.IndexRecord `bson:",inline"`
		SearchScore        float64 `bson:"search_score"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode search results: %w", err)
	}

	results := make([]ScoredRecord, 0, len(rows))
	for _, row := range rows {
		results = append(results, ScoredRecord{Record: row.IndexRecord, Score: row.SearchScore})
	}
	return results, nil
}

// RetrievalEngine embeds a query, searches the index, and decides between
// grounded (rag) and ungrounded (enhanced) answering based on the mean
// similarity of the top results against a calibrated threshold.
type RetrievalEngine struct {
	embedder  Embedder
	searcher  Searcher
	generator AnswerGenerator
	k         int
	threshold float64
	// higherIsBetter follows the configured metric direction. Cosine
	// similarity scores improve upward; a distance metric would invert the
	// comparison.
	higherIsBetter bool
}

func NewRetrievalEngine(embedder Embedder, searcher Searcher, generator AnswerGenerator, cfg *config.Config) *RetrievalEngine {
	return &RetrievalEngine{
		embedder:       embedder,
		searcher:       searcher,
		generator:      generator,
		k:              cfg.RetrievalK,
		threshold:      cfg.RelevanceThreshold,
		higherIsBetter: cfg.MetricDirection == "higher",
	}
}

// Retrieve returns the top-k scored records for a query plus the aggregate
// relevance score (mean of the returned scores).
func (re *RetrievalEngine) Retrieve(ctx context.Context, query, certification string) ([]ScoredRecord, float64, error) {
	vector, err := re.embedder.EmbedText(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to embed query: %w", err)
	}

	results, err := re.searcher.Search(ctx, vector, re.k, certification, "")
	if err != nil {
		return nil, 0, err
	}
	if len(results) == 0 {
		return nil, 0, nil
	}

	var total float64
	for _, r := range results {
		total += r.Score
	}
	return results, total / float64(len(results)), nil
}

// meetsThreshold applies the configured comparison direction.
func (re *RetrievalEngine) meetsThreshold(score float64) bool {
	if re.higherIsBetter {
		return score >= re.threshold
	}
	return score <= re.threshold
}

// AnswerQuery answers a user query. When retrieval produces relevant
// passages the answer is grounded on them (rag mode); otherwise the engine
// deliberately falls back to ungrounded generation (enhanced mode) and still
// succeeds. The mode is always reported to the caller.
func (re *RetrievalEngine) AnswerQuery(ctx context.Context, query, certification string) (*models.AnswerResponse, error) {
	if query == "" {
		return nil, apperr.Validationf("query is required")
	}

	results, score, err := re.Retrieve(ctx, query, certification)
	if err != nil {
		return nil, err
	}

	mode := models.AnswerModeEnhanced
	var passages []string
	if len(results) > 0 && re.meetsThreshold(score) {
		mode = models.AnswerModeRAG
		for _, r := range results {
			passages = append(passages, r.Record.Text)
		}
	}

	text, err := re.generator.GenerateAnswer(ctx, query, passages)
	if err != nil {
		return nil, err
	}

	return &models.AnswerResponse{
		Mode:     mode,
		Passages: passages,
		Text:     text,
		Score:    score,
	}, nil
}
