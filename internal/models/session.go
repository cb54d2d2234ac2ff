package models

import (
	"time"
)

type SessionStatus string

const (
	SessionCreated    SessionStatus = "created"
	SessionInProgress SessionStatus = "in_progress"
	SessionCompleted  SessionStatus = "completed"
	SessionEvaluated  SessionStatus = "evaluated"
)

// Terminal reports whether the session can no longer accept answers
// or be returned by the resumption lookup.
func (s SessionStatus) Terminal() bool {
	return s == SessionCompleted || s == SessionEvaluated
}

type EvaluateStatus string

const (
	EvaluatePending    EvaluateStatus = "pending"
	EvaluateProcessing EvaluateStatus = "processing"
	EvaluateCompleted  EvaluateStatus = "completed"
	EvaluateFailed     EvaluateStatus = "failed"
)

type QuestionCategory string

const (
	CategoryProjectExperience QuestionCategory = "project_experience"
	CategoryDatabase          QuestionCategory = "database"
	CategorySystemDesign      QuestionCategory = "system_design"
	CategoryLanguageBasics    QuestionCategory = "language_basics"
	CategoryFramework         QuestionCategory = "framework"
)

// CategoryQuota is the generation-time proportion contract passed to the
// question generator. The orchestrator never verifies the returned
// distribution, only the total count.
type CategoryQuota struct {
	Category QuestionCategory
	Percent  int
}

func DefaultCategoryQuotas() []CategoryQuota {
	return []CategoryQuota{
		{CategoryProjectExperience, 20},
		{CategoryDatabase, 20},
		{CategorySystemDesign, 20},
		{CategoryLanguageBasics, 30},
		{CategoryFramework, 10},
	}
}

type Session struct {
	ID                   uint           `gorm:"primarykey" json:"-"`
	SessionID            string         `gorm:"type:uuid;uniqueIndex;not null" json:"session_id"`
	ResumeID             *uint          `gorm:"index" json:"resume_id,omitempty"`
	TotalQuestions       int            `gorm:"not null" json:"total_questions"`
	CurrentQuestionIndex int            `gorm:"not null;default:0" json:"current_question_index"`
	Status               SessionStatus  `gorm:"type:varchar(20);not null;default:'created'" json:"status"`
	Forced               bool           `gorm:"not null;default:false" json:"-"`
	EvaluateStatus       EvaluateStatus `gorm:"type:varchar(20)" json:"evaluate_status,omitempty"`
	OverallScore         *int           `json:"overall_score,omitempty"`
	OverallFeedback      *string        `gorm:"type:text" json:"overall_feedback,omitempty"`
	StrengthsJSON        *string        `gorm:"type:text" json:"-"`
	ImprovementsJSON     *string        `gorm:"type:text" json:"-"`
	EvaluationError      *string        `gorm:"type:text" json:"evaluation_error,omitempty"`
	CreatedAt            time.Time      `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt            time.Time      `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
	CompletedAt          *time.Time     `json:"completed_at,omitempty"`

	Questions []Question `gorm:"foreignKey:SessionRef;constraint:OnDelete:CASCADE" json:"questions,omitempty"`
}

func (Session) TableName() string {
	return "interview_sessions"
}

type Question struct {
	ID              uint             `gorm:"primarykey" json:"-"`
	SessionRef      uint             `gorm:"index:idx_question_session,unique,priority:1;not null" json:"-"`
	QuestionIndex   int              `gorm:"index:idx_question_session,unique,priority:2;not null" json:"question_index"`
	Category        QuestionCategory `gorm:"type:varchar(30);not null" json:"category"`
	Question        string           `gorm:"type:text;not null" json:"question"`
	UserAnswer      *string          `gorm:"type:text" json:"user_answer,omitempty"`
	Score           *int             `json:"score,omitempty"`
	Feedback        *string          `gorm:"type:text" json:"feedback,omitempty"`
	ReferenceAnswer *string          `gorm:"type:text" json:"reference_answer,omitempty"`
	KeyPointsJSON   *string          `gorm:"type:text" json:"-"`
	AnsweredAt      *time.Time       `json:"answered_at,omitempty"`
}

func (Question) TableName() string {
	return "interview_questions"
}

// QuestionAt returns the question with the given index, relying on the
// contiguous 0-based indexing assigned at generation time.
func (s *Session) QuestionAt(index int) *Question {
	for i := range s.Questions {
		if s.Questions[i].QuestionIndex == index {
			return &s.Questions[i]
		}
	}
	return nil
}
