package services

import (
	"context"
	"fmt"
	"time"

	"interview-guide/internal/models"
	"interview-guide/internal/repositories"
)

// AnswerGrader is the external collaborator that scores a completed session.
// It receives every question, answered or not; unanswered questions come back
// scored zero by prompt contract.
type AnswerGrader interface {
	GradeSession(ctx context.Context, questions []models.Question) (*repositories.EvaluationResult, error)
}

type geminiAnswerGrader struct {
	gemini        GeminiService
	promptBuilder *PromptBuilder
	timeout       time.Duration
}

func NewAnswerGrader(gemini GeminiService, timeout time.Duration) AnswerGrader {
	return &geminiAnswerGrader{
		gemini:        gemini,
		promptBuilder: NewPromptBuilder(),
		timeout:       timeout,
	}
}

type gradedQuestion struct {
	QuestionIndex   int      `json:"question_index"`
	Score           int      `json:"score"`
	Feedback        string   `json:"feedback"`
	ReferenceAnswer string   `json:"reference_answer"`
	KeyPoints       []string `json:"key_points"`
}

type gradingResponse struct {
	Questions       []gradedQuestion `json:"questions"`
	OverallScore    int              `json:"overall_score"`
	OverallFeedback string           `json:"overall_feedback"`
	Strengths       []string         `json:"strengths"`
	Improvements    []string         `json:"improvements"`
}

// GradeSession implements AnswerGrader. The grading call is made exactly
// once; a timeout counts as a grading failure, not a retryable error.
func (g *geminiAnswerGrader) GradeSession(ctx context.Context, questions []models.Question) (*repositories.EvaluationResult, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	prompt := g.promptBuilder.BuildGradingPrompt(questions)

	response, err := g.gemini.GenerateText(ctx, prompt, 0.3)
	if err != nil {
		return nil, fmt.Errorf("failed to grade session: %w", err)
	}

	var graded gradingResponse
	if err := parseJSONResponse(response, &graded); err != nil {
		return nil, fmt.Errorf("failed to parse grading response: %w", err)
	}

	if len(graded.Questions) != len(questions) {
		return nil, fmt.Errorf("grader returned %d results, expected %d", len(graded.Questions), len(questions))
	}

	result := &repositories.EvaluationResult{
		OverallScore:    graded.OverallScore,
		OverallFeedback: graded.OverallFeedback,
		Strengths:       graded.Strengths,
		Improvements:    graded.Improvements,
	}
	for _, q := range graded.Questions {
		result.Questions = append(result.Questions, repositories.QuestionEvaluation{
			QuestionIndex:   q.QuestionIndex,
			Score:           q.Score,
			Feedback:        q.Feedback,
			ReferenceAnswer: q.ReferenceAnswer,
			KeyPoints:       q.KeyPoints,
		})
	}

	return result, nil
}
