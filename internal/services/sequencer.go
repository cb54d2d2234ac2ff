package services

import (
	"interview-guide/internal/models"
)

// Question sequencing over a loaded session: the cursor points at the next
// question expecting an answer and only ever moves forward, one step per
// recorded answer.

// CurrentQuestion returns the question at the cursor. The second return is
// false once the cursor has passed the last question.
func CurrentQuestion(session *models.Session) (*models.Question, bool) {
	if session.CurrentQuestionIndex >= session.TotalQuestions {
		return nil, false
	}
	return session.QuestionAt(session.CurrentQuestionIndex), true
}

// Replay reconstructs the conversational transcript of a session up to and
// including the question at the cursor. Each answered question is followed
// by its answer; the question at the cursor appears last as the active
// prompt. The result is shape-identical to a transcript built live, so a
// resumed session renders indistinguishably from a fresh one.
func Replay(session *models.Session) []models.TranscriptEntry {
	var transcript []models.TranscriptEntry

	last := session.CurrentQuestionIndex
	if last >= session.TotalQuestions {
		last = session.TotalQuestions - 1
	}

	for i := 0; i <= last; i++ {
		question := session.QuestionAt(i)
		if question == nil {
			continue
		}
		transcript = append(transcript, models.TranscriptEntry{
			Role:          "interviewer",
			Content:       question.Question,
			QuestionIndex: i,
		})
		if question.UserAnswer != nil {
			transcript = append(transcript, models.TranscriptEntry{
				Role:          "candidate",
				Content:       *question.UserAnswer,
				QuestionIndex: i,
			})
		}
	}

	return transcript
}
