package services

import (
	"context"
	"fmt"
	"log"

	"interview-guide/internal/models"
	"interview-guide/internal/repositories"
)

// EvaluatorService drives the evaluation state machine for one session:
// pending -> processing -> completed | failed. It runs off the request flow
// that completed the session; its failures are recorded, never propagated.
type EvaluatorService interface {
	EvaluateSession(ctx context.Context, sessionID string) error
}

type evaluatorService struct {
	sessionRepo repositories.SessionRepository
	grader      AnswerGrader
}

func NewEvaluatorService(
	sessionRepo repositories.SessionRepository,
	grader AnswerGrader,
) EvaluatorService {
	return &evaluatorService{
		sessionRepo: sessionRepo,
		grader:      grader,
	}
}

// EvaluateSession implements EvaluatorService. The claim is conditional on
// evaluate_status being pending, so a session already processing or already
// graded is a no-op even when the same id is enqueued twice.
func (e *evaluatorService) EvaluateSession(ctx context.Context, sessionID string) error {
	claimed, err := e.sessionRepo.ClaimEvaluation(sessionID)
	if err != nil {
		return fmt.Errorf("failed to claim evaluation: %w", err)
	}
	if !claimed {
		log.Printf("⏭️  Session %s is not awaiting evaluation, skipping\n", sessionID)
		return nil
	}

	log.Printf("🔄 Starting evaluation for session %s\n", sessionID)

	session, err := e.sessionRepo.FindBySessionID(sessionID)
	if err != nil {
		e.fail(sessionID, err)
		return fmt.Errorf("failed to load session: %w", err)
	}

	result, err := e.grader.GradeSession(ctx, session.Questions)
	if err != nil {
		e.fail(sessionID, err)
		return fmt.Errorf("%w: %v", models.ErrEvaluationFailed, err)
	}

	if err := e.sessionRepo.SaveEvaluation(sessionID, result); err != nil {
		e.fail(sessionID, err)
		return fmt.Errorf("failed to save evaluation: %w", err)
	}

	log.Printf("✅ Evaluation completed for session %s (score %d)\n", sessionID, result.OverallScore)
	return nil
}

// fail records the terminal failed state. No automatic retry follows; a
// manual re-trigger is an administrative operation.
func (e *evaluatorService) fail(sessionID string, cause error) {
	if err := e.sessionRepo.FailEvaluation(sessionID, cause.Error()); err != nil {
		log.Printf("❌ Failed to record evaluation failure for %s: %v\n", sessionID, err)
	}
}
