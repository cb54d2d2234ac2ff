package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"interview-guide/internal/models"
	"interview-guide/internal/repositories"
)

// EvaluationDispatcher hands a completed session to the background
// evaluation machinery without blocking the request that completed it.
type EvaluationDispatcher interface {
	Enqueue(sessionID string)
}

// SessionOrchestrator owns the interview session lifecycle: creation with
// resumption and dedup semantics, strictly-sequenced answer submission,
// early termination, and the hand-off to asynchronous evaluation.
type SessionOrchestrator interface {
	CreateSession(ctx context.Context, req *models.CreateSessionRequest) (*models.CreateSessionResponse, error)
	GetSession(sessionID string) (*models.Session, error)
	GetCurrentQuestion(sessionID string) (*models.CurrentQuestionResponse, error)
	SubmitAnswer(ctx context.Context, req *models.SubmitAnswerRequest) (*models.SubmitAnswerResponse, error)
	CompleteInterview(ctx context.Context, sessionID string) error
	GetTranscript(sessionID string) ([]models.TranscriptEntry, error)
	GetReport(sessionID string) (*models.InterviewReport, error)
	FindUnfinished(resumeID uint) (*models.Session, error)
}

type sessionOrchestrator struct {
	sessionRepo     repositories.SessionRepository
	resolver        ResumptionResolver
	generator       QuestionGenerator
	dispatcher      EvaluationDispatcher
	supportedCounts []int
}

func NewSessionOrchestrator(
	sessionRepo repositories.SessionRepository,
	resolver ResumptionResolver,
	generator QuestionGenerator,
	dispatcher EvaluationDispatcher,
	supportedCounts []int,
) SessionOrchestrator {
	return &sessionOrchestrator{
		sessionRepo:     sessionRepo,
		resolver:        resolver,
		generator:       generator,
		dispatcher:      dispatcher,
		supportedCounts: supportedCounts,
	}
}

// CreateSession implements SessionOrchestrator. The result is explicitly
// tagged Resumed so callers never have to re-derive intent from cursor
// state. Question generation happens before anything is persisted, so a
// generator failure leaves no partially-created session behind.
func (o *sessionOrchestrator) CreateSession(ctx context.Context, req *models.CreateSessionRequest) (*models.CreateSessionResponse, error) {
	if strings.TrimSpace(req.ResumeText) == "" {
		return nil, fmt.Errorf("%w: resume text is required", models.ErrInvalidArgument)
	}
	if !o.isSupportedCount(req.QuestionCount) {
		return nil, fmt.Errorf("%w: unsupported question count %d", models.ErrInvalidArgument, req.QuestionCount)
	}

	if req.ResumeID != nil && !req.ForceCreate {
		existing, err := o.resolver.FindUnfinished(*req.ResumeID)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return &models.CreateSessionResponse{Resumed: true, Session: existing}, nil
		}
	}

	questions, err := o.generator.GenerateQuestions(ctx, req.ResumeText, req.QuestionCount, models.DefaultCategoryQuotas())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrGenerationFailed, err)
	}

	session := &models.Session{
		SessionID:            uuid.New().String(),
		ResumeID:             req.ResumeID,
		TotalQuestions:       req.QuestionCount,
		CurrentQuestionIndex: 0,
		Status:               models.SessionInProgress,
		Forced:               req.ForceCreate,
		Questions:            questions,
	}

	if err := o.sessionRepo.Create(session); err != nil {
		if !errors.Is(err, repositories.ErrDuplicateActiveSession) || req.ResumeID == nil || req.ForceCreate {
			return nil, err
		}

		// Lost the find-or-create race: another request created the active
		// session first. Return the winner as a resumption.
		existing, resolveErr := o.resolver.FindUnfinished(*req.ResumeID)
		if resolveErr != nil {
			return nil, resolveErr
		}
		if existing != nil {
			return &models.CreateSessionResponse{Resumed: true, Session: existing}, nil
		}

		// The winner finished between the insert and the lookup, so the
		// constraint no longer blocks a fresh session. One retry is enough.
		if err := o.sessionRepo.Create(session); err != nil {
			return nil, err
		}
	}

	log.Printf("🎤 Created interview session %s (%d questions)\n", session.SessionID, session.TotalQuestions)
	return &models.CreateSessionResponse{Resumed: false, Session: session}, nil
}

// GetSession implements SessionOrchestrator.
func (o *sessionOrchestrator) GetSession(sessionID string) (*models.Session, error) {
	return o.sessionRepo.FindBySessionID(sessionID)
}

// GetCurrentQuestion implements SessionOrchestrator. Read-only.
func (o *sessionOrchestrator) GetCurrentQuestion(sessionID string) (*models.CurrentQuestionResponse, error) {
	session, err := o.sessionRepo.FindBySessionID(sessionID)
	if err != nil {
		return nil, err
	}

	question, ok := CurrentQuestion(session)
	if !ok {
		return &models.CurrentQuestionResponse{Completed: true}, nil
	}
	return &models.CurrentQuestionResponse{Completed: false, Question: question}, nil
}

// SubmitAnswer implements SessionOrchestrator. The cursor-equality guard is
// the sole request-level defense against duplicated, out-of-order, or
// replayed submissions; a rejected submission mutates nothing.
func (o *sessionOrchestrator) SubmitAnswer(ctx context.Context, req *models.SubmitAnswerRequest) (*models.SubmitAnswerResponse, error) {
	session, err := o.sessionRepo.FindBySessionID(req.SessionID)
	if err != nil {
		return nil, err
	}

	if req.QuestionIndex != session.CurrentQuestionIndex {
		return nil, fmt.Errorf("%w: got index %d, current is %d",
			models.ErrStaleSubmission, req.QuestionIndex, session.CurrentQuestionIndex)
	}

	if err := o.sessionRepo.RecordAnswer(req.SessionID, req.QuestionIndex, req.Answer, time.Now()); err != nil {
		return nil, err
	}

	nextIndex := req.QuestionIndex + 1
	if nextIndex < session.TotalQuestions {
		return &models.SubmitAnswerResponse{
			HasNextQuestion: true,
			NextQuestion:    session.QuestionAt(nextIndex),
		}, nil
	}

	if err := o.completeAndDispatch(req.SessionID); err != nil {
		return nil, err
	}
	return &models.SubmitAnswerResponse{HasNextQuestion: false}, nil
}

// CompleteInterview implements SessionOrchestrator. Early termination:
// unanswered questions stay blank and the grader scores their absence as
// zero. Idempotent, repeat calls on a completed session are a no-op.
func (o *sessionOrchestrator) CompleteInterview(ctx context.Context, sessionID string) error {
	session, err := o.sessionRepo.FindBySessionID(sessionID)
	if err != nil {
		return err
	}

	if session.Status.Terminal() {
		return nil
	}

	return o.completeAndDispatch(sessionID)
}

// completeAndDispatch persists the completed state and hands the session to
// the evaluation worker. The persistence failure is the caller's problem: a
// session left in progress never enters the evaluation pipeline, so the
// client must see the error and retry. Only the enqueue is fire-and-forget.
func (o *sessionOrchestrator) completeAndDispatch(sessionID string) error {
	claimed, err := o.sessionRepo.MarkCompleted(sessionID, time.Now())
	if err != nil {
		return fmt.Errorf("failed to mark session %s completed: %w", sessionID, err)
	}
	if claimed {
		o.dispatcher.Enqueue(sessionID)
	}
	return nil
}

// GetTranscript implements SessionOrchestrator.
func (o *sessionOrchestrator) GetTranscript(sessionID string) ([]models.TranscriptEntry, error) {
	session, err := o.sessionRepo.FindBySessionID(sessionID)
	if err != nil {
		return nil, err
	}
	return Replay(session), nil
}

// GetReport implements SessionOrchestrator. Evaluation errors are only
// observable here and through polling; they never surfaced to the request
// that triggered completion.
func (o *sessionOrchestrator) GetReport(sessionID string) (*models.InterviewReport, error) {
	session, err := o.sessionRepo.FindBySessionID(sessionID)
	if err != nil {
		return nil, err
	}

	switch session.EvaluateStatus {
	case models.EvaluateCompleted:
		return buildReport(session), nil
	case models.EvaluateFailed:
		msg := "unknown error"
		if session.EvaluationError != nil {
			msg = *session.EvaluationError
		}
		return nil, fmt.Errorf("%w: %s", models.ErrEvaluationFailed, msg)
	default:
		return nil, models.ErrReportNotReady
	}
}

// FindUnfinished implements SessionOrchestrator.
func (o *sessionOrchestrator) FindUnfinished(resumeID uint) (*models.Session, error) {
	return o.resolver.FindUnfinished(resumeID)
}

func (o *sessionOrchestrator) isSupportedCount(count int) bool {
	for _, supported := range o.supportedCounts {
		if count == supported {
			return true
		}
	}
	return false
}

func buildReport(session *models.Session) *models.InterviewReport {
	report := &models.InterviewReport{
		SessionID:      session.SessionID,
		TotalQuestions: session.TotalQuestions,
		Strengths:      unmarshalStringList(session.StrengthsJSON),
		Improvements:   unmarshalStringList(session.ImprovementsJSON),
		CompletedAt:    session.CompletedAt,
	}
	if session.OverallScore != nil {
		report.OverallScore = *session.OverallScore
	}
	if session.OverallFeedback != nil {
		report.OverallFeedback = *session.OverallFeedback
	}

	for _, q := range session.Questions {
		qr := models.QuestionReport{
			QuestionIndex: q.QuestionIndex,
			Category:      q.Category,
			Question:      q.Question,
			KeyPoints:     unmarshalStringList(q.KeyPointsJSON),
			AnsweredAt:    q.AnsweredAt,
		}
		if q.UserAnswer != nil {
			qr.UserAnswer = *q.UserAnswer
		}
		if q.Score != nil {
			qr.Score = *q.Score
		}
		if q.Feedback != nil {
			qr.Feedback = *q.Feedback
		}
		if q.ReferenceAnswer != nil {
			qr.ReferenceAnswer = *q.ReferenceAnswer
		}
		report.Questions = append(report.Questions, qr)
	}

	return report
}

func unmarshalStringList(raw *string) []string {
	if raw == nil {
		return nil
	}
	var list []string
	if err := json.Unmarshal([]byte(*raw), &list); err != nil {
		log.Printf("⚠️  Failed to parse stored list: %v\n", err)
		return nil
	}
	return list
}
