package services

import (
	"context"
	"log"
	"sync"
	"time"

	"interview-guide/internal/repositories"
)

// Worker consumes completed sessions and runs the evaluator over them. The
// ticker that re-scans pending sessions gives restart safety: a session
// marked pending before a crash is picked up again without a client action.
type Worker interface {
	Start(ctx context.Context)
	Stop()
	Enqueue(sessionID string)
}

type worker struct {
	sessionRepo repositories.SessionRepository
	evaluator   EvaluatorService
	jobQueue    chan string
	concurrency int
	wg          sync.WaitGroup
	stopChan    chan struct{}
}

func NewWorker(
	sessionRepo repositories.SessionRepository,
	evaluator EvaluatorService,
	concurrency int,
) Worker {
	return &worker{
		sessionRepo: sessionRepo,
		evaluator:   evaluator,
		jobQueue:    make(chan string, 100),
		concurrency: concurrency,
		stopChan:    make(chan struct{}),
	}
}

// Start implements Worker.
func (w *worker) Start(ctx context.Context) {
	log.Printf("🚀 Starting evaluation worker with %d concurrent workers\n", w.concurrency)

	for i := 0; i < w.concurrency; i++ {
		w.wg.Add(1)
		go w.processJobs(ctx, i+1)
	}

	w.wg.Add(1)
	go w.pollPendingSessions(ctx)
}

// Stop implements Worker.
func (w *worker) Stop() {
	log.Println("🛑 Stopping evaluation worker...")
	close(w.stopChan)
	w.wg.Wait()
	log.Println("✅ Evaluation worker stopped")
}

// Enqueue implements Worker. Non-blocking hand-off for the request that
// completed the session; if the queue is full the pending-session poller
// picks the job up on its next tick.
func (w *worker) Enqueue(sessionID string) {
	select {
	case w.jobQueue <- sessionID:
		log.Printf("📥 Session %s enqueued for evaluation\n", sessionID)
	case <-w.stopChan:
		log.Printf("⚠️  Worker stopped, cannot enqueue session %s\n", sessionID)
	default:
		log.Printf("⚠️  Evaluation queue full, session %s deferred to poller\n", sessionID)
	}
}

func (w *worker) processJobs(ctx context.Context, workerID int) {
	defer w.wg.Done()

	for {
		select {
		case <-w.stopChan:
			log.Printf("👷 Worker #%d stopped\n", workerID)
			return
		case sessionID := <-w.jobQueue:
			log.Printf("👷 Worker #%d evaluating session %s\n", workerID, sessionID)
			if err := w.evaluator.EvaluateSession(ctx, sessionID); err != nil {
				log.Printf("❌ Worker #%d failed to evaluate session %s: %v\n", workerID, sessionID, err)
			}
		}
	}
}

func (w *worker) pollPendingSessions(ctx context.Context) {
	defer w.wg.Done()
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopChan:
			return
		case <-ticker.C:
			pending, err := w.sessionRepo.FindPendingEvaluations(10)
			if err != nil {
				log.Printf("⚠️  Failed to fetch pending evaluations: %v\n", err)
				continue
			}

			for _, session := range pending {
				w.Enqueue(session.SessionID)
			}
		}
	}
}
