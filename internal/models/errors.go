package models

import "errors"

// Error taxonomy shared by repositories, services, and handlers. Handlers
// translate these to HTTP statuses; services wrap them with context.
var (
	ErrSessionNotFound  = errors.New("interview session not found")
	ErrResumeNotFound   = errors.New("resume not found")
	ErrInvalidArgument  = errors.New("invalid argument")
	ErrStaleSubmission  = errors.New("submission does not match the current question")
	ErrGenerationFailed = errors.New("question generation failed")
	ErrEvaluationFailed = errors.New("interview evaluation failed")
	ErrReportNotReady   = errors.New("evaluation report not ready")
)
