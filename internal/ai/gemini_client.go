package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"certprep-platform/internal/apperr"
	"certprep-platform/internal/logger"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/time/rate"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	genai "github.com/google/generative-ai-go/genai"
)

type GeminiClient struct {
	apiKey       string
	model        string
	embedModel   string
	breaker      *gobreaker.CircuitBreaker
	rateLimiter  *rate.Limiter
	tokenCounter *TokenCounter
	client       *genai.Client
	tier         string
}

type TokenCounter struct {
	mu              sync.Mutex
	limits          RateLimits
	minuteTokens    int
	dailyTokens     int
	minuteRequests  int
	dailyRequests   int
	lastMinuteReset time.Time
	lastDayReset    time.Time
}

type RateLimits struct {
	RPM int // Requests per minute
	TPM int // Tokens per minute
	RPD int // Requests per day
}

func NewGeminiClient(apiKey, model, embedModel, tier string) (*GeminiClient, error) {
	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}

	// Configure rate limits based on tier
	limits := getRateLimits(tier)

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "GeminiAPI",
		MaxRequests: 5,
		Interval:    10 * time.Second,
		Timeout:     60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("Circuit breaker state change", "breaker", name, "from", from.String(), "to", to.String())
		},
	})

	// RPM limit with some buffer
	rateLimiter := rate.NewLimiter(rate.Limit(float64(limits.RPM)*0.9/60.0), limits.RPM/10)

	return &GeminiClient{
		apiKey:       apiKey,
		model:        model,
		embedModel:   embedModel,
		breaker:      breaker,
		rateLimiter:  rateLimiter,
		tokenCounter: &TokenCounter{limits: limits},
		client:       client,
		tier:         tier,
	}, nil
}

func getRateLimits(tier string) RateLimits {
	switch tier {
	case "free":
		return RateLimits{RPM: 10, TPM: 250000, RPD: 250}
	case "tier1":
		return RateLimits{RPM: 1000, TPM: 1000000, RPD: 10000}
	case "tier2":
		return RateLimits{RPM: 2000, TPM: 4000000, RPD: 50000}
	default:
		return RateLimits{RPM: 10, TPM: 250000, RPD: 250}
	}
}

// GenerateAnswer produces an answer for the query. When passages are supplied
// the answer is grounded on them; with no passages it falls back to the
// model's own knowledge.
func (gc *GeminiClient) GenerateAnswer(ctx context.Context, query string, passages []string) (string, error) {
	tracer := otel.Tracer("gemini-client")
	ctx, span := tracer.Start(ctx, "gemini.generate_answer")
	defer span.End()

	estimatedTokens := estimateTokens(query, passages)
	span.SetAttributes(
		attribute.Int("gemini.estimated_tokens", estimatedTokens),
		attribute.Int("gemini.context_passages", len(passages)),
		attribute.String("gemini.model", gc.model),
	)

	if !gc.tokenCounter.CanConsume(estimatedTokens, 1) {
		span.SetAttributes(attribute.Bool("gemini.rate_limited", true))
		return "", apperr.Throttledf("local token budget exhausted")
	}

	if err := gc.rateLimiter.Wait(ctx); err != nil {
		span.SetAttributes(attribute.Bool("gemini.rate_limited", true))
		return "", err
	}

	result, err := gc.breaker.Execute(func() (interface{}, error) {
		model := gc.client.GenerativeModel(gc.model)
		model.SetTemperature(0.7)
		model.SetMaxOutputTokens(2048)

		prompt := buildAnswerPrompt(query, passages)

		resp, err := model.GenerateContent(ctx, genai.Text(prompt))
		if err != nil {
			span.SetAttributes(attribute.Bool("gemini.error", true))
			return nil, classifyGenaiError(err)
		}

		gc.tokenCounter.RecordUsage(extractTokenUsage(resp), 1)
		return resp, nil
	})

	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) {
			span.SetAttributes(attribute.Bool("gemini.circuit_breaker_open", true))
			return "", apperr.Downstreamf("generation circuit open")
		}
		return "", err
	}

	text := responseText(result.(*genai.GenerateContentResponse))
	if text == "" {
		return "", apperr.Downstreamf("empty generation response")
	}

	span.SetAttributes(attribute.Bool("gemini.success", true))
	return text, nil
}

func (tc *TokenCounter) CanConsume(tokens, requests int) bool {
	tc.mu.Lock()
	defer tc.mu.Unlock()

	now := time.Now()

	// Reset counters if time windows expired
	if now.Sub(tc.lastMinuteReset) >= time.Minute {
		tc.minuteTokens = 0
		tc.minuteRequests = 0
		tc.lastMinuteReset = now
	}

	if now.Sub(tc.lastDayReset) >= 24*time.Hour {
		tc.dailyTokens = 0
		tc.dailyRequests = 0
		tc.lastDayReset = now
	}

	if tc.minuteRequests+requests > tc.limits.RPM {
		return false
	}
	if tc.minuteTokens+tokens > tc.limits.TPM {
		return false
	}
	if tc.dailyRequests+requests > tc.limits.RPD {
		return false
	}

	return true
}

func (tc *TokenCounter) RecordUsage(tokens, requests int) {
	tc.mu.Lock()
	defer tc.mu.Unlock()

	tc.minuteTokens += tokens
	tc.minuteRequests += requests
	tc.dailyTokens += tokens
	tc.dailyRequests += requests
}

// classifyGenaiError maps Google API errors onto the platform taxonomy so
// callers can decide between backoff and surfacing.
func classifyGenaiError(err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		switch gerr.Code {
		case 429:
			return apperr.Throttledf("gemini rate limited: %v", err)
		case 500, 502, 503, 504:
			return apperr.Downstreamf("gemini unavailable: %v", err)
		}
	}
	if strings.Contains(err.Error(), "429") || strings.Contains(strings.ToLower(err.Error()), "resource has been exhausted") {
		return apperr.Throttledf("gemini rate limited: %v", err)
	}
	return err
}

// Rough estimation: 1 token is about 4 characters.
func estimateTokens(prompt string, chunks []string) int {
	total := len(prompt)
	for _, chunk := range chunks {
		total += len(chunk) + 1
	}
	return total / 4
}

// Extract token usage from Gemini response
func extractTokenUsage(resp *genai.GenerateContentResponse) int {
	if resp.UsageMetadata != nil {
		return int(resp.UsageMetadata.TotalTokenCount)
	}

	estimated := len(responseText(resp)) / 4
	if estimated < 1 {
		estimated = 1
	}
	return estimated
}

func responseText(resp *genai.GenerateContentResponse) string {
	var sb strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				sb.WriteString(string(text))
			}
		}
	}
	return sb.String()
}

func buildAnswerPrompt(query string, passages []string) string {
	if len(passages) == 0 {
		return fmt.Sprintf("You are a study assistant for professional certification exams. Answer this question clearly and accurately: %s", query)
	}

	var sb strings.Builder
	for i, passage := range passages {
		fmt.Fprintf(&sb, "Context %d:\n%s\n\n", i+1, passage)
	}

	return fmt.Sprintf("You are a study assistant for professional certification exams. Based on the following study material:\n\n%s\nAnswer this question: %s", sb.String(), query)
}

// Close the client
func (gc *GeminiClient) Close() error {
	if gc.client != nil {
		return gc.client.Close()
	}
	return nil
}
