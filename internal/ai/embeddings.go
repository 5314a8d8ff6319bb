package ai

import (
	"context"
	"errors"

	"certprep-platform/internal/apperr"

	"github.com/google/generative-ai-go/genai"
	"github.com/sony/gobreaker"
)

// EmbedText returns an embedding vector for the given text using the
// configured embedding model (text-embedding-004 by default).
func (gc *GeminiClient) EmbedText(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, apperr.Validationf("cannot embed empty text")
	}

	if err := gc.rateLimiter.Wait(ctx); err != nil {
		return nil, err
	}

	result, err := gc.breaker.Execute(func() (interface{}, error) {
		model := gc.client.EmbeddingModel(gc.embedModel)
		resp, err := model.EmbedContent(ctx, genai.Text(text))
		if err != nil {
			return nil, classifyGenaiError(err)
		}
		if resp.Embedding == nil || len(resp.Embedding.Values) == 0 {
			return nil, apperr.Downstreamf("no embedding returned")
		}
		return resp.Embedding.Values, nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) {
			return nil, apperr.Downstreamf("embedding circuit open")
		}
		return nil, err
	}

	return result.([]float32), nil
}
