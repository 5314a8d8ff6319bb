package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"certprep-platform/internal/apperr"
	"certprep-platform/models"

	genai "github.com/google/generative-ai-go/genai"
	"github.com/sony/gobreaker"
)

// generatedQuestion mirrors the JSON shape the model is instructed to emit.
type generatedQuestion struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correct_answer"`
	Category      string   `json:"category"`
}

// GenerateQuestions asks Gemini to synthesize count multiple-choice practice
// questions for the certification. Used to fill quizzes when the index pool
// is short.
func (gc *GeminiClient) GenerateQuestions(ctx context.Context, certification, difficulty string, count int) ([]models.QuizQuestion, error) {
	if count <= 0 {
		return nil, nil
	}

	if err := gc.rateLimiter.Wait(ctx); err != nil {
		return nil, err
	}

	prompt := buildQuestionPrompt(certification, difficulty, count)

	result, err := gc.breaker.Execute(func() (interface{}, error) {
		model := gc.client.GenerativeModel(gc.model)
		model.SetTemperature(0.9)
		model.SetMaxOutputTokens(4096)
		model.ResponseMIMEType = "application/json"

		resp, err := model.GenerateContent(ctx, genai.Text(prompt))
		if err != nil {
			return nil, classifyGenaiError(err)
		}

		gc.tokenCounter.RecordUsage(extractTokenUsage(resp), 1)
		return responseText(resp), nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) {
			return nil, apperr.Downstreamf("generation circuit open")
		}
		return nil, err
	}

	raw := stripCodeFences(result.(string))

	var generated []generatedQuestion
	if err := json.Unmarshal([]byte(raw), &generated); err != nil {
		return nil, apperr.Downstreamf("unparseable question generation response: %v", err)
	}

	questions := make([]models.QuizQuestion, 0, len(generated))
	for _, g := range generated {
		if strings.TrimSpace(g.Question) == "" || len(g.Options) < 2 {
			continue
		}
		questions = append(questions, models.QuizQuestion{
			QuestionText:  strings.TrimSpace(g.Question),
			Options:       g.Options,
			CorrectAnswer: strings.TrimSpace(g.CorrectAnswer),
			Category:      g.Category,
			Difficulty:    difficulty,
			Source:        models.QuizSourceGenerated,
		})
	}

	return questions, nil
}

func buildQuestionPrompt(certification, difficulty string, count int) string {
	level := difficulty
	if level == "" {
		level = "intermediate"
	}

	return fmt.Sprintf(`Generate %d multiple-choice practice questions for the %s professional certification exam at %s difficulty.
Respond with a JSON array only. Each element must have:
"question" (the full question text ending with a question mark),
"options" (exactly 4 answer strings),
"correct_answer" (the exact text of the correct option),
"category" (the exam domain the question covers).`, count, certification, level)
}

// stripCodeFences removes markdown fences models sometimes wrap JSON in
// despite the response MIME type.
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	return strings.TrimSpace(s)
}
