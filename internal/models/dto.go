package models

import "time"

type CreateSessionRequest struct {
	ResumeText    string `json:"resume_text"`
	QuestionCount int    `json:"question_count"`
	ResumeID      *uint  `json:"resume_id,omitempty"`
	ForceCreate   bool   `json:"force_create"`
}

type CreateSessionResponse struct {
	Resumed bool     `json:"resumed"`
	Session *Session `json:"session"`
}

type CurrentQuestionResponse struct {
	Completed bool      `json:"completed"`
	Question  *Question `json:"question,omitempty"`
}

type SubmitAnswerRequest struct {
	SessionID     string `json:"session_id"`
	QuestionIndex int    `json:"question_index"`
	Answer        string `json:"answer"`
}

type SubmitAnswerResponse struct {
	HasNextQuestion bool      `json:"has_next_question"`
	NextQuestion    *Question `json:"next_question,omitempty"`
}

type TranscriptEntry struct {
	Role          string `json:"role"` // "interviewer" or "candidate"
	Content       string `json:"content"`
	QuestionIndex int    `json:"question_index"`
}

type QuestionReport struct {
	QuestionIndex   int              `json:"question_index"`
	Category        QuestionCategory `json:"category"`
	Question        string           `json:"question"`
	UserAnswer      string           `json:"user_answer"`
	Score           int              `json:"score"`
	Feedback        string           `json:"feedback"`
	ReferenceAnswer string           `json:"reference_answer"`
	KeyPoints       []string         `json:"key_points"`
	AnsweredAt      *time.Time       `json:"answered_at,omitempty"`
}

type InterviewReport struct {
	SessionID       string           `json:"session_id"`
	TotalQuestions  int              `json:"total_questions"`
	OverallScore    int              `json:"overall_score"`
	OverallFeedback string           `json:"overall_feedback"`
	Strengths       []string         `json:"strengths"`
	Improvements    []string         `json:"improvements"`
	Questions       []QuestionReport `json:"questions"`
	CompletedAt     *time.Time       `json:"completed_at,omitempty"`
}

type ResumeUploadResponse struct {
	ID               uint   `json:"id"`
	OriginalFilename string `json:"original_filename"`
	TextLength       int    `json:"text_length"`
	PageCount        int    `json:"page_count"`
}
