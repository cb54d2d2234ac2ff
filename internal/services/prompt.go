package services

import (
	"fmt"
	"strings"

	"interview-guide/internal/models"
)

type PromptBuilder struct{}

func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{}
}

// BuildQuestionGenerationPrompt creates the prompt for generating the
// interview question sequence. The category proportions are a generation-time
// contract; the caller only verifies the total count of the returned set.
func (pb *PromptBuilder) BuildQuestionGenerationPrompt(resumeText string, count int, quotas []models.CategoryQuota, knowledgeContext string) string {
	var quotaLines []string
	for _, q := range quotas {
		quotaLines = append(quotaLines, fmt.Sprintf("- %s: about %d%% of the questions", q.Category, q.Percent))
	}

	contextSection := ""
	if knowledgeContext != "" {
		contextSection = fmt.Sprintf("\nREFERENCE MATERIAL (use for inspiration, do not quote verbatim):\n%s\n", knowledgeContext)
	}

	return fmt.Sprintf(`You are a senior technical interviewer preparing a mock interview for a candidate.

CANDIDATE RESUME:
%s
%s
Generate exactly %d interview questions tailored to this resume.

Target category distribution:
%s

Allowed category values: project_experience, database, system_design, language_basics, framework.

Return your response as a JSON array, ordered from easiest to hardest:
[
  {"category": "<category>", "question": "<question text>"},
  ...
]

Return ONLY the JSON array. Questions must be specific to the candidate's actual experience where possible.`,
		resumeText, contextSection, count, strings.Join(quotaLines, "\n"))
}

// BuildGradingPrompt creates the prompt for grading a completed session.
// Unanswered questions are included and must be scored zero.
func (pb *PromptBuilder) BuildGradingPrompt(questions []models.Question) string {
	var entries []string
	for _, q := range questions {
		answer := "(no answer given)"
		if q.UserAnswer != nil && strings.TrimSpace(*q.UserAnswer) != "" {
			answer = *q.UserAnswer
		}
		entries = append(entries, fmt.Sprintf("Question %d [%s]: %s\nCandidate answer: %s",
			q.QuestionIndex, q.Category, q.Question, answer))
	}

	return fmt.Sprintf(`You are a senior technical interviewer grading a completed mock interview.

INTERVIEW TRANSCRIPT:
%s

Grade each question on a 0-100 scale. A question with no answer given MUST score 0.
For each question provide feedback, a model reference answer, and the key points a strong answer covers.
Then provide an overall assessment.

Return your response in the following JSON format:
{
  "questions": [
    {
      "question_index": <index>,
      "score": <0-100>,
      "feedback": "<2-3 sentences on this answer>",
      "reference_answer": "<model answer>",
      "key_points": ["<point>", ...]
    }
  ],
  "overall_score": <0-100, weighted by answer quality>,
  "overall_feedback": "<3-5 sentences summarizing the performance>",
  "strengths": ["<strength>", ...],
  "improvements": ["<improvement>", ...]
}

Return ONLY the JSON object. Be specific and reference the candidate's actual answers.`,
		strings.Join(entries, "\n\n"))
}

// Helper to clean and format context from knowledge-base retrieval
func FormatKnowledgeContext(results []SearchResult) string {
	if len(results) == 0 {
		return ""
	}

	var parts []string
	for i, result := range results {
		parts = append(parts, fmt.Sprintf("--- Context %d (Score: %.2f) ---\n%s",
			i+1, result.Score, strings.TrimSpace(result.Text)))
	}

	return strings.Join(parts, "\n\n")
}
