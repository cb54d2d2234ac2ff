package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"interview-guide/internal/models"
)

func completedSession(t *testing.T, repo *fakeSessionRepo) *models.Session {
	t.Helper()
	orchestrator := NewSessionOrchestrator(repo, NewResumptionResolver(repo),
		&fakeGenerator{}, &fakeDispatcher{}, []int{5})
	session := createSession(t, orchestrator, nil, 5, false)
	for i := 0; i < 5; i++ {
		_, err := orchestrator.SubmitAnswer(context.Background(), &models.SubmitAnswerRequest{
			SessionID:     session.SessionID,
			QuestionIndex: i,
			Answer:        "answer",
		})
		require.NoError(t, err)
	}
	return session
}

func TestEvaluateSessionSuccess(t *testing.T) {
	repo := newFakeSessionRepo()
	session := completedSession(t, repo)
	grader := &fakeGrader{}
	evaluator := NewEvaluatorService(repo, grader)

	require.NoError(t, evaluator.EvaluateSession(context.Background(), session.SessionID))

	evaluated, err := repo.FindBySessionID(session.SessionID)
	require.NoError(t, err)
	assert.Equal(t, models.SessionEvaluated, evaluated.Status)
	assert.Equal(t, models.EvaluateCompleted, evaluated.EvaluateStatus)
	require.NotNil(t, evaluated.OverallScore)
	assert.Equal(t, 80, *evaluated.OverallScore)
	for _, q := range evaluated.Questions {
		require.NotNil(t, q.Score, "every question gets a score")
	}
	assert.Equal(t, 1, grader.callCount())
}

func TestEvaluateSessionDoubleTriggerIsNoOp(t *testing.T) {
	repo := newFakeSessionRepo()
	session := completedSession(t, repo)
	grader := &fakeGrader{}
	evaluator := NewEvaluatorService(repo, grader)

	require.NoError(t, evaluator.EvaluateSession(context.Background(), session.SessionID))
	require.NoError(t, evaluator.EvaluateSession(context.Background(), session.SessionID))

	assert.Equal(t, 1, grader.callCount(), "a repeat trigger must not grade twice")
}

func TestEvaluateSessionGraderFailureIsTerminal(t *testing.T) {
	repo := newFakeSessionRepo()
	session := completedSession(t, repo)
	evaluator := NewEvaluatorService(repo, &fakeGrader{err: assert.AnError})

	err := evaluator.EvaluateSession(context.Background(), session.SessionID)
	assert.ErrorIs(t, err, models.ErrEvaluationFailed)

	failed, findErr := repo.FindBySessionID(session.SessionID)
	require.NoError(t, findErr)
	assert.Equal(t, models.EvaluateFailed, failed.EvaluateStatus)
	require.NotNil(t, failed.EvaluationError)
	assert.Equal(t, models.SessionCompleted, failed.Status, "a failed evaluation never promotes the session")

	// Terminal: a second run does not retry
	grader := &fakeGrader{}
	retry := NewEvaluatorService(repo, grader)
	require.NoError(t, retry.EvaluateSession(context.Background(), session.SessionID))
	assert.Equal(t, 0, grader.callCount())
}

func TestEvaluateSessionNotPending(t *testing.T) {
	repo := newFakeSessionRepo()
	orchestrator := NewSessionOrchestrator(repo, NewResumptionResolver(repo),
		&fakeGenerator{}, &fakeDispatcher{}, []int{5})
	session := createSession(t, orchestrator, nil, 5, false)

	grader := &fakeGrader{}
	evaluator := NewEvaluatorService(repo, grader)

	// Still in progress, nothing pending to claim
	require.NoError(t, evaluator.EvaluateSession(context.Background(), session.SessionID))
	assert.Equal(t, 0, grader.callCount())
}
