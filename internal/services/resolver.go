package services

import (
	"fmt"
	"log"

	"interview-guide/internal/models"
	"interview-guide/internal/repositories"
)

// ResumptionResolver finds the session a candidate should continue instead
// of starting over.
type ResumptionResolver interface {
	FindUnfinished(resumeID uint) (*models.Session, error)
}

type resumptionResolver struct {
	sessionRepo repositories.SessionRepository
}

func NewResumptionResolver(sessionRepo repositories.SessionRepository) ResumptionResolver {
	return &resumptionResolver{sessionRepo: sessionRepo}
}

// FindUnfinished returns the most recently created non-terminal session for
// the resume, or nil when none exists. More than one non-terminal session is
// a data-integrity anomaly (the storage constraint should prevent it outside
// forced creation); it is logged and the most recent wins, never merged.
func (r *resumptionResolver) FindUnfinished(resumeID uint) (*models.Session, error) {
	sessions, err := r.sessionRepo.FindUnfinishedByResumeID(resumeID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve unfinished session: %w", err)
	}

	if len(sessions) == 0 {
		return nil, nil
	}

	if len(sessions) > 1 {
		log.Printf("⚠️  Resume %d has %d non-terminal sessions, using most recent %s\n",
			resumeID, len(sessions), sessions[0].SessionID)
	}

	return &sessions[0], nil
}
