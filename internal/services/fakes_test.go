package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"interview-guide/internal/models"
	"interview-guide/internal/repositories"
)

// In-memory stand-ins for the repository and the external collaborators,
// mirroring the conditional-update semantics of the Postgres implementation.

type fakeSessionRepo struct {
	mu       sync.Mutex
	seq      uint
	sessions map[string]*models.Session
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: make(map[string]*models.Session)}
}

func (f *fakeSessionRepo) Create(session *models.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if session.ResumeID != nil && !session.Forced {
		for _, existing := range f.sessions {
			if existing.ResumeID != nil && *existing.ResumeID == *session.ResumeID &&
				!existing.Forced && !existing.Status.Terminal() {
				return repositories.ErrDuplicateActiveSession
			}
		}
	}

	f.seq++
	session.ID = f.seq
	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now().Add(time.Duration(f.seq) * time.Millisecond)
	}
	f.sessions[session.SessionID] = session
	return nil
}

func (f *fakeSessionRepo) FindBySessionID(sessionID string) (*models.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	session, ok := f.sessions[sessionID]
	if !ok {
		return nil, models.ErrSessionNotFound
	}
	copied := *session
	copied.Questions = append([]models.Question(nil), session.Questions...)
	return &copied, nil
}

func (f *fakeSessionRepo) FindUnfinishedByResumeID(resumeID uint) ([]models.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var result []models.Session
	for _, session := range f.sessions {
		if session.ResumeID != nil && *session.ResumeID == resumeID && !session.Status.Terminal() {
			result = append(result, *session)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (f *fakeSessionRepo) RecordAnswer(sessionID string, questionIndex int, answer string, answeredAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	session, ok := f.sessions[sessionID]
	if !ok {
		return models.ErrSessionNotFound
	}
	if session.Status.Terminal() || session.CurrentQuestionIndex != questionIndex {
		return models.ErrStaleSubmission
	}

	question := session.QuestionAt(questionIndex)
	if question == nil {
		return models.ErrSessionNotFound
	}
	question.UserAnswer = &answer
	question.AnsweredAt = &answeredAt
	session.CurrentQuestionIndex = questionIndex + 1
	session.Status = models.SessionInProgress
	return nil
}

func (f *fakeSessionRepo) MarkCompleted(sessionID string, completedAt time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	session, ok := f.sessions[sessionID]
	if !ok {
		return false, models.ErrSessionNotFound
	}
	if session.Status.Terminal() {
		return false, nil
	}
	session.Status = models.SessionCompleted
	session.CompletedAt = &completedAt
	session.EvaluateStatus = models.EvaluatePending
	return true, nil
}

func (f *fakeSessionRepo) ClaimEvaluation(sessionID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	session, ok := f.sessions[sessionID]
	if !ok || session.EvaluateStatus != models.EvaluatePending {
		return false, nil
	}
	session.EvaluateStatus = models.EvaluateProcessing
	return true, nil
}

func (f *fakeSessionRepo) SaveEvaluation(sessionID string, data *repositories.EvaluationResult) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	session, ok := f.sessions[sessionID]
	if !ok {
		return models.ErrSessionNotFound
	}

	for _, q := range data.Questions {
		question := session.QuestionAt(q.QuestionIndex)
		if question == nil {
			continue
		}
		score, feedback, reference := q.Score, q.Feedback, q.ReferenceAnswer
		question.Score = &score
		question.Feedback = &feedback
		question.ReferenceAnswer = &reference
		if keyPoints, err := json.Marshal(q.KeyPoints); err == nil {
			s := string(keyPoints)
			question.KeyPointsJSON = &s
		}
	}

	score, feedback := data.OverallScore, data.OverallFeedback
	session.OverallScore = &score
	session.OverallFeedback = &feedback
	if strengths, err := json.Marshal(data.Strengths); err == nil {
		s := string(strengths)
		session.StrengthsJSON = &s
	}
	if improvements, err := json.Marshal(data.Improvements); err == nil {
		s := string(improvements)
		session.ImprovementsJSON = &s
	}
	session.Status = models.SessionEvaluated
	session.EvaluateStatus = models.EvaluateCompleted
	return nil
}

func (f *fakeSessionRepo) FailEvaluation(sessionID string, errMsg string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	session, ok := f.sessions[sessionID]
	if !ok {
		return models.ErrSessionNotFound
	}
	session.EvaluateStatus = models.EvaluateFailed
	session.EvaluationError = &errMsg
	return nil
}

func (f *fakeSessionRepo) FindPendingEvaluations(limit int) ([]models.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var result []models.Session
	for _, session := range f.sessions {
		if session.EvaluateStatus == models.EvaluatePending {
			result = append(result, *session)
		}
		if len(result) == limit {
			break
		}
	}
	return result, nil
}

type fakeGenerator struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (g *fakeGenerator) GenerateQuestions(ctx context.Context, resumeText string, count int, quotas []models.CategoryQuota) ([]models.Question, error) {
	g.mu.Lock()
	g.calls++
	g.mu.Unlock()

	if g.err != nil {
		return nil, g.err
	}

	questions := make([]models.Question, count)
	for i := range questions {
		questions[i] = models.Question{
			QuestionIndex: i,
			Category:      models.CategoryLanguageBasics,
			Question:      fmt.Sprintf("Question %d", i),
		}
	}
	return questions, nil
}

func (g *fakeGenerator) callCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

type fakeDispatcher struct {
	mu       sync.Mutex
	enqueued []string
}

func (d *fakeDispatcher) Enqueue(sessionID string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.enqueued = append(d.enqueued, sessionID)
}

func (d *fakeDispatcher) ids() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.enqueued...)
}

type fakeGrader struct {
	mu     sync.Mutex
	calls  int
	result *repositories.EvaluationResult
	err    error
}

func (g *fakeGrader) GradeSession(ctx context.Context, questions []models.Question) (*repositories.EvaluationResult, error) {
	g.mu.Lock()
	g.calls++
	g.mu.Unlock()

	if g.err != nil {
		return nil, g.err
	}
	if g.result != nil {
		return g.result, nil
	}

	result := &repositories.EvaluationResult{
		OverallScore:    80,
		OverallFeedback: "Solid performance",
		Strengths:       []string{"clear explanations"},
		Improvements:    []string{"more depth on internals"},
	}
	for _, q := range questions {
		score := 0
		if q.UserAnswer != nil {
			score = 80
		}
		result.Questions = append(result.Questions, repositories.QuestionEvaluation{
			QuestionIndex:   q.QuestionIndex,
			Score:           score,
			Feedback:        "feedback",
			ReferenceAnswer: "reference",
			KeyPoints:       []string{"point"},
		})
	}
	return result, nil
}

func (g *fakeGrader) callCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}
