package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds all application metrics
type Metrics struct {
	RequestCounter     metric.Int64Counter
	RequestDuration    metric.Float64Histogram
	TokensUsed         metric.Int64Counter
	DocumentsIngested  metric.Int64Counter
	QuestionsExtracted metric.Int64Counter
	IngestionDuration  metric.Float64Histogram
	AnswerModes        metric.Int64Counter
	QuizzesBuilt       metric.Int64Counter
}

// InitMetrics initializes all application metrics
func InitMetrics() (*Metrics, error) {
	meter := otel.Meter("certprep-platform")

	requestCounter, err := meter.Int64Counter(
		"http.requests.total",
		metric.WithDescription("Total HTTP requests"),
	)
	if err != nil {
		return nil, err
	}

	requestDuration, err := meter.Float64Histogram(
		"http.request.duration",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	tokensUsed, err := meter.Int64Counter(
		"gemini.tokens.used",
		metric.WithDescription("Total Gemini tokens used"),
	)
	if err != nil {
		return nil, err
	}

	documentsIngested, err := meter.Int64Counter(
		"ingestion.documents.total",
		metric.WithDescription("Total documents ingested"),
	)
	if err != nil {
		return nil, err
	}

	questionsExtracted, err := meter.Int64Counter(
		"ingestion.questions.extracted",
		metric.WithDescription("Total questions extracted from documents"),
	)
	if err != nil {
		return nil, err
	}

	ingestionDuration, err := meter.Float64Histogram(
		"ingestion.duration",
		metric.WithDescription("Document ingestion duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	answerModes, err := meter.Int64Counter(
		"retrieval.answers.total",
		metric.WithDescription("Answers served, by retrieval mode"),
	)
	if err != nil {
		return nil, err
	}

	quizzesBuilt, err := meter.Int64Counter(
		"quiz.sessions.total",
		metric.WithDescription("Quiz sessions assembled"),
	)
	if err != nil {
		return nil, err
	}

	return &Metrics{
		RequestCounter:     requestCounter,
		RequestDuration:    requestDuration,
		TokensUsed:         tokensUsed,
		DocumentsIngested:  documentsIngested,
		QuestionsExtracted: questionsExtracted,
		IngestionDuration:  ingestionDuration,
		AnswerModes:        answerModes,
		QuizzesBuilt:       quizzesBuilt,
	}, nil
}

// RecordRequest records HTTP request metrics
func (m *Metrics) RecordRequest(method, path, status string, duration float64) {
	attrs := []attribute.KeyValue{
		attribute.String("http.method", method),
		attribute.String("http.path", path),
		attribute.String("http.status", status),
	}

	m.RequestCounter.Add(context.Background(), 1, metric.WithAttributes(attrs...))
	m.RequestDuration.Record(context.Background(), duration, metric.WithAttributes(attrs...))
}

// RecordTokensUsed records Gemini token usage
func (m *Metrics) RecordTokensUsed(tokens int64, model string) {
	attrs := []attribute.KeyValue{
		attribute.String("gemini.model", model),
	}

	m.TokensUsed.Add(context.Background(), tokens, metric.WithAttributes(attrs...))
}

// RecordIngestion records one processed document
func (m *Metrics) RecordIngestion(status string, questions int, duration float64) {
	attrs := []attribute.KeyValue{
		attribute.String("ingestion.status", status),
	}

	m.DocumentsIngested.Add(context.Background(), 1, metric.WithAttributes(attrs...))
	m.QuestionsExtracted.Add(context.Background(), int64(questions), metric.WithAttributes(attrs...))
	m.IngestionDuration.Record(context.Background(), duration, metric.WithAttributes(attrs...))
}

// RecordAnswer records one served answer and its retrieval mode
func (m *Metrics) RecordAnswer(mode string) {
	m.AnswerModes.Add(context.Background(), 1, metric.WithAttributes(
		attribute.String("retrieval.mode", mode),
	))
}

// RecordQuiz records one assembled quiz session
func (m *Metrics) RecordQuiz(certification string, generated int) {
	m.QuizzesBuilt.Add(context.Background(), 1, metric.WithAttributes(
		attribute.String("certification", certification),
		attribute.Int("questions.generated", generated),
	))
}
