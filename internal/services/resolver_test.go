package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"interview-guide/internal/models"
)

func TestResolverNoSessions(t *testing.T) {
	resolver := NewResumptionResolver(newFakeSessionRepo())

	session, err := resolver.FindUnfinished(42)
	require.NoError(t, err)
	assert.Nil(t, session)
}

func TestResolverSkipsTerminalSessions(t *testing.T) {
	repo := newFakeSessionRepo()
	resumeID := uint(42)

	done := &models.Session{
		SessionID:      uuid.New().String(),
		ResumeID:       &resumeID,
		TotalQuestions: 5,
		Status:         models.SessionCompleted,
	}
	require.NoError(t, repo.Create(done))

	resolver := NewResumptionResolver(repo)
	session, err := resolver.FindUnfinished(resumeID)
	require.NoError(t, err)
	assert.Nil(t, session)
}

func TestResolverPicksMostRecentOnAnomaly(t *testing.T) {
	repo := newFakeSessionRepo()
	resumeID := uint(42)

	older := &models.Session{
		SessionID:      uuid.New().String(),
		ResumeID:       &resumeID,
		TotalQuestions: 5,
		Status:         models.SessionInProgress,
		Forced:         true,
		CreatedAt:      time.Now().Add(-time.Hour),
	}
	newer := &models.Session{
		SessionID:      uuid.New().String(),
		ResumeID:       &resumeID,
		TotalQuestions: 5,
		Status:         models.SessionInProgress,
		Forced:         true,
		CreatedAt:      time.Now(),
	}
	require.NoError(t, repo.Create(older))
	require.NoError(t, repo.Create(newer))

	resolver := NewResumptionResolver(repo)
	session, err := resolver.FindUnfinished(resumeID)
	require.NoError(t, err)
	require.NotNil(t, session)
	assert.Equal(t, newer.SessionID, session.SessionID)
}
