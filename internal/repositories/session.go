package repositories

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"interview-guide/internal/models"
)

type SessionRepository interface {
	Create(session *models.Session) error
	FindBySessionID(sessionID string) (*models.Session, error)
	FindUnfinishedByResumeID(resumeID uint) ([]models.Session, error)
	RecordAnswer(sessionID string, questionIndex int, answer string, answeredAt time.Time) error
	MarkCompleted(sessionID string, completedAt time.Time) (bool, error)
	ClaimEvaluation(sessionID string) (bool, error)
	SaveEvaluation(sessionID string, result *EvaluationResult) error
	FailEvaluation(sessionID string, errMsg string) error
	FindPendingEvaluations(limit int) ([]models.Session, error)
}

// ErrDuplicateActiveSession is returned by Create when the partial unique
// index on non-terminal sessions rejects a second active session for the
// same resume. Callers resolve the race by re-running the resumption lookup.
var ErrDuplicateActiveSession = errors.New("an active session already exists for this resume")

type QuestionEvaluation struct {
	QuestionIndex   int
	Score           int
	Feedback        string
	ReferenceAnswer string
	KeyPoints       []string
}

type EvaluationResult struct {
	OverallScore    int
	OverallFeedback string
	Strengths       []string
	Improvements    []string
	Questions       []QuestionEvaluation
}

type sessionRepository struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) SessionRepository {
	return &sessionRepository{db: db}
}

func (r *sessionRepository) Create(session *models.Session) error {
	if err := r.db.Create(session).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateActiveSession
		}
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

func (r *sessionRepository) FindBySessionID(sessionID string) (*models.Session, error) {
	var session models.Session
	err := r.db.
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("question_index ASC")
		}).
		Where("session_id = ?", sessionID).
		First(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to find session: %w", err)
	}
	return &session, nil
}

func (r *sessionRepository) FindUnfinishedByResumeID(resumeID uint) ([]models.Session, error) {
	var sessions []models.Session
	err := r.db.
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("question_index ASC")
		}).
		Where("resume_id = ? AND status IN ?", resumeID,
			[]models.SessionStatus{models.SessionCreated, models.SessionInProgress}).
		Order("created_at DESC").
		Find(&sessions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find unfinished sessions: %w", err)
	}
	return sessions, nil
}

// RecordAnswer attaches the answer to the question at questionIndex and
// advances the cursor by one, in a single transaction. The cursor update is
// conditional on the cursor still being at questionIndex, which makes the
// stale-submission guard atomic under concurrent retries.
func (r *sessionRepository) RecordAnswer(sessionID string, questionIndex int, answer string, answeredAt time.Time) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Session{}).
			Where("session_id = ? AND current_question_index = ? AND status IN ?",
				sessionID, questionIndex,
				[]models.SessionStatus{models.SessionCreated, models.SessionInProgress}).
			Updates(map[string]interface{}{
				"current_question_index": questionIndex + 1,
				"status":                 models.SessionInProgress,
				"updated_at":             time.Now(),
			})
		if result.Error != nil {
			return fmt.Errorf("failed to advance cursor: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return models.ErrStaleSubmission
		}

		var session models.Session
		if err := tx.Select("id").Where("session_id = ?", sessionID).First(&session).Error; err != nil {
			return fmt.Errorf("failed to load session: %w", err)
		}

		result = tx.Model(&models.Question{}).
			Where("session_ref = ? AND question_index = ?", session.ID, questionIndex).
			Updates(map[string]interface{}{
				"user_answer": answer,
				"answered_at": answeredAt,
			})
		if result.Error != nil {
			return fmt.Errorf("failed to record answer: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return models.ErrSessionNotFound
		}
		return nil
	})
}

// MarkCompleted transitions the session to completed and arms the evaluation
// state machine. Returns false when the session was already completed, so the
// caller dispatches the evaluation exactly once.
func (r *sessionRepository) MarkCompleted(sessionID string, completedAt time.Time) (bool, error) {
	result := r.db.Model(&models.Session{}).
		Where("session_id = ? AND status IN ?", sessionID,
			[]models.SessionStatus{models.SessionCreated, models.SessionInProgress}).
		Updates(map[string]interface{}{
			"status":          models.SessionCompleted,
			"completed_at":    completedAt,
			"evaluate_status": models.EvaluatePending,
			"updated_at":      time.Now(),
		})
	if result.Error != nil {
		return false, fmt.Errorf("failed to mark session completed: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

// ClaimEvaluation moves pending to processing. Returns false when the
// session is not awaiting evaluation, which makes repeat triggers a no-op.
func (r *sessionRepository) ClaimEvaluation(sessionID string) (bool, error) {
	result := r.db.Model(&models.Session{}).
		Where("session_id = ? AND evaluate_status = ?", sessionID, models.EvaluatePending).
		Updates(map[string]interface{}{
			"evaluate_status": models.EvaluateProcessing,
			"updated_at":      time.Now(),
		})
	if result.Error != nil {
		return false, fmt.Errorf("failed to claim evaluation: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (r *sessionRepository) SaveEvaluation(sessionID string, data *EvaluationResult) error {
	strengths, err := json.Marshal(data.Strengths)
	if err != nil {
		return fmt.Errorf("failed to marshal strengths: %w", err)
	}
	improvements, err := json.Marshal(data.Improvements)
	if err != nil {
		return fmt.Errorf("failed to marshal improvements: %w", err)
	}

	return r.db.Transaction(func(tx *gorm.DB) error {
		var session models.Session
		if err := tx.Select("id").Where("session_id = ?", sessionID).First(&session).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.ErrSessionNotFound
			}
			return fmt.Errorf("failed to load session: %w", err)
		}

		for _, q := range data.Questions {
			keyPoints, err := json.Marshal(q.KeyPoints)
			if err != nil {
				return fmt.Errorf("failed to marshal key points: %w", err)
			}
			result := tx.Model(&models.Question{}).
				Where("session_ref = ? AND question_index = ?", session.ID, q.QuestionIndex).
				Updates(map[string]interface{}{
					"score":            q.Score,
					"feedback":         q.Feedback,
					"reference_answer": q.ReferenceAnswer,
					"key_points_json":  string(keyPoints),
				})
			if result.Error != nil {
				return fmt.Errorf("failed to save question evaluation: %w", result.Error)
			}
		}

		result := tx.Model(&models.Session{}).
			Where("id = ?", session.ID).
			Updates(map[string]interface{}{
				"status":            models.SessionEvaluated,
				"evaluate_status":   models.EvaluateCompleted,
				"overall_score":     data.OverallScore,
				"overall_feedback":  data.OverallFeedback,
				"strengths_json":    string(strengths),
				"improvements_json": string(improvements),
				"updated_at":        time.Now(),
			})
		if result.Error != nil {
			return fmt.Errorf("failed to save evaluation result: %w", result.Error)
		}
		return nil
	})
}

func (r *sessionRepository) FailEvaluation(sessionID string, errMsg string) error {
	result := r.db.Model(&models.Session{}).
		Where("session_id = ?", sessionID).
		Updates(map[string]interface{}{
			"evaluate_status":  models.EvaluateFailed,
			"evaluation_error": errMsg,
			"updated_at":       time.Now(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to record evaluation failure: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return models.ErrSessionNotFound
	}
	return nil
}

func (r *sessionRepository) FindPendingEvaluations(limit int) ([]models.Session, error) {
	var sessions []models.Session
	err := r.db.
		Where("evaluate_status = ?", models.EvaluatePending).
		Order("completed_at ASC").
		Limit(limit).
		Find(&sessions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find pending evaluations: %w", err)
	}
	return sessions, nil
}
