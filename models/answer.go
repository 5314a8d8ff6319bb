package models

// Answer modes. Grounded answers cite retrieved passages; enhanced answers are
// generated without retrieved context when relevance falls below the threshold.
const (
	AnswerModeRAG      = "rag"
	AnswerModeEnhanced = "enhanced"
)

// AnswerRequest is a conversational Q&A request.
type AnswerRequest struct {
	Query         string `json:"query" binding:"required"`
	Certification string `json:"certification,omitempty"`
}

// AnswerResponse carries the generated answer plus the mode flag. Fallback to
// enhanced mode is a deliberate mode switch, not an error.
type AnswerResponse struct {
	Mode     string   `json:"mode"`
	Passages []string `json:"passages,omitempty"`
	Text     string   `json:"text"`
	Score    float64  `json:"relevance_score"`
}
