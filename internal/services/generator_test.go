package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"interview-guide/internal/models"
)

type scriptedGemini struct {
	response string
	err      error
}

func (g *scriptedGemini) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	return []float32{0.1, 0.2}, nil
}

func (g *scriptedGemini) GenerateText(ctx context.Context, prompt string, temperature float32) (string, error) {
	return g.response, g.err
}

func (g *scriptedGemini) GenerateTextWithRetry(ctx context.Context, prompt string, temperature float32, maxRetries int) (string, error) {
	return g.response, g.err
}

func TestGenerateQuestionsParsesMarkdownWrappedJSON(t *testing.T) {
	gemini := &scriptedGemini{response: "```json\n" + `[
		{"category": "project_experience", "question": "Walk me through your last project."},
		{"category": "database", "question": "How do you tune a slow query?"},
		{"category": "language_basics", "question": "Explain goroutine scheduling."}
	]` + "\n```"}

	generator := NewQuestionGenerator(gemini, nil, time.Minute, 1)
	questions, err := generator.GenerateQuestions(context.Background(), "resume", 3, models.DefaultCategoryQuotas())
	require.NoError(t, err)
	require.Len(t, questions, 3)

	assert.Equal(t, 0, questions[0].QuestionIndex)
	assert.Equal(t, models.CategoryProjectExperience, questions[0].Category)
	assert.Equal(t, 1, questions[1].QuestionIndex)
	assert.Equal(t, models.CategoryDatabase, questions[1].Category)
	assert.Equal(t, 2, questions[2].QuestionIndex)
}

func TestGenerateQuestionsCountMismatch(t *testing.T) {
	gemini := &scriptedGemini{response: `[{"category": "database", "question": "Only one"}]`}

	generator := NewQuestionGenerator(gemini, nil, time.Minute, 1)
	_, err := generator.GenerateQuestions(context.Background(), "resume", 5, models.DefaultCategoryQuotas())
	assert.Error(t, err)
}

func TestGenerateQuestionsUnknownCategoryFallsBack(t *testing.T) {
	gemini := &scriptedGemini{response: `[{"category": "quantum_computing", "question": "What is a qubit?"}]`}

	generator := NewQuestionGenerator(gemini, nil, time.Minute, 1)
	questions, err := generator.GenerateQuestions(context.Background(), "resume", 1, models.DefaultCategoryQuotas())
	require.NoError(t, err)
	assert.Equal(t, models.CategoryLanguageBasics, questions[0].Category)
}

func TestExtractJSON(t *testing.T) {
	assert.Equal(t, `[1, 2]`, extractJSON("Here you go:\n```json\n[1, 2]\n```\nDone."))
	assert.Equal(t, `{"a": 1}`, extractJSON("prefix {\"a\": 1} suffix"))
	assert.Equal(t, `[{"a": 1}]`, extractJSON(`noise [{"a": 1}] trailing`))
}
