package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"interview-guide/internal/models"
)

// QuestionGenerator is the external collaborator that produces the ordered
// question sequence for a new session. Treated as fallible and slow; callers
// bound it with the generation timeout.
type QuestionGenerator interface {
	GenerateQuestions(ctx context.Context, resumeText string, count int, quotas []models.CategoryQuota) ([]models.Question, error)
}

type geminiQuestionGenerator struct {
	gemini        GeminiService
	knowledge     KnowledgeService
	promptBuilder *PromptBuilder
	timeout       time.Duration
	maxRetries    int
}

func NewQuestionGenerator(
	gemini GeminiService,
	knowledge KnowledgeService,
	timeout time.Duration,
	maxRetries int,
) QuestionGenerator {
	return &geminiQuestionGenerator{
		gemini:        gemini,
		knowledge:     knowledge,
		promptBuilder: NewPromptBuilder(),
		timeout:       timeout,
		maxRetries:    maxRetries,
	}
}

type generatedQuestion struct {
	Category string `json:"category"`
	Question string `json:"question"`
}

// GenerateQuestions implements QuestionGenerator.
func (g *geminiQuestionGenerator) GenerateQuestions(ctx context.Context, resumeText string, count int, quotas []models.CategoryQuota) ([]models.Question, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	knowledgeContext := ""
	if g.knowledge != nil {
		retrieved, err := g.knowledge.RetrieveContext(ctx, resumeText, 3)
		if err != nil {
			log.Printf("⚠️  Failed to retrieve knowledge context: %v\n", err)
		} else {
			knowledgeContext = retrieved
		}
	}

	prompt := g.promptBuilder.BuildQuestionGenerationPrompt(resumeText, count, quotas, knowledgeContext)

	response, err := g.gemini.GenerateTextWithRetry(ctx, prompt, 0.7, g.maxRetries)
	if err != nil {
		return nil, fmt.Errorf("failed to generate questions: %w", err)
	}

	var generated []generatedQuestion
	if err := parseJSONResponse(response, &generated); err != nil {
		return nil, fmt.Errorf("failed to parse generated questions: %w", err)
	}

	if len(generated) != count {
		return nil, fmt.Errorf("generator returned %d questions, expected %d", len(generated), count)
	}

	questions := make([]models.Question, 0, count)
	for i, gq := range generated {
		text := strings.TrimSpace(gq.Question)
		if text == "" {
			return nil, fmt.Errorf("generator returned empty question at position %d", i)
		}
		questions = append(questions, models.Question{
			QuestionIndex: i,
			Category:      normalizeCategory(gq.Category),
			Question:      text,
		})
	}

	return questions, nil
}

func normalizeCategory(raw string) models.QuestionCategory {
	switch models.QuestionCategory(strings.ToLower(strings.TrimSpace(raw))) {
	case models.CategoryProjectExperience:
		return models.CategoryProjectExperience
	case models.CategoryDatabase:
		return models.CategoryDatabase
	case models.CategorySystemDesign:
		return models.CategorySystemDesign
	case models.CategoryFramework:
		return models.CategoryFramework
	default:
		return models.CategoryLanguageBasics
	}
}

func parseJSONResponse(response string, target interface{}) error {
	jsonStr := extractJSON(response)

	if err := json.Unmarshal([]byte(jsonStr), target); err != nil {
		return fmt.Errorf("failed to unmarshal JSON: %w", err)
	}

	return nil
}

// extractJSON tries to extract JSON from text that might contain markdown or other formatting
func extractJSON(text string) string {
	// Remove markdown code blocks
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```", "")

	// Find JSON object or array boundaries
	startObj := strings.Index(text, "{")
	startArr := strings.Index(text, "[")
	endObj := strings.LastIndex(text, "}")
	endArr := strings.LastIndex(text, "]")

	if startArr != -1 && endArr != -1 && (startObj == -1 || startArr < startObj) && endArr > startArr {
		return text[startArr : endArr+1]
	}
	if startObj != -1 && endObj != -1 && endObj > startObj {
		return text[startObj : endObj+1]
	}

	return text
}
