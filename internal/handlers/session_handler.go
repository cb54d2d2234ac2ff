package handlers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"interview-guide/internal/models"
	"interview-guide/internal/repositories"
	"interview-guide/internal/services"
)

type SessionHandler struct {
	orchestrator services.SessionOrchestrator
}

func NewSessionHandler(orchestrator services.SessionOrchestrator) *SessionHandler {
	return &SessionHandler{orchestrator: orchestrator}
}

// HandleCreateSession handles POST /interview/session
func (h *SessionHandler) HandleCreateSession(c *fiber.Ctx) error {
	var req models.CreateSessionRequest

	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request payload",
		})
	}

	response, err := h.orchestrator.CreateSession(c.Context(), &req)
	if err != nil {
		return sessionError(c, err)
	}

	status := fiber.StatusCreated
	if response.Resumed {
		status = fiber.StatusOK
	}
	return c.Status(status).JSON(response)
}

// HandleGetSession handles GET /interview/session/:id
func (h *SessionHandler) HandleGetSession(c *fiber.Ctx) error {
	session, err := h.orchestrator.GetSession(c.Params("id"))
	if err != nil {
		return sessionError(c, err)
	}
	return c.JSON(session)
}

// HandleGetCurrentQuestion handles GET /interview/session/:id/question
func (h *SessionHandler) HandleGetCurrentQuestion(c *fiber.Ctx) error {
	response, err := h.orchestrator.GetCurrentQuestion(c.Params("id"))
	if err != nil {
		return sessionError(c, err)
	}
	return c.JSON(response)
}

// HandleSubmitAnswer handles POST /interview/answer
func (h *SessionHandler) HandleSubmitAnswer(c *fiber.Ctx) error {
	var req models.SubmitAnswerRequest

	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request payload",
		})
	}

	if req.SessionID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "session_id is required",
		})
	}

	response, err := h.orchestrator.SubmitAnswer(c.Context(), &req)
	if err != nil {
		return sessionError(c, err)
	}
	return c.JSON(response)
}

// HandleCompleteInterview handles POST /interview/session/:id/complete
func (h *SessionHandler) HandleCompleteInterview(c *fiber.Ctx) error {
	if err := h.orchestrator.CompleteInterview(c.Context(), c.Params("id")); err != nil {
		return sessionError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Interview completed, evaluation started",
	})
}

// HandleGetTranscript handles GET /interview/session/:id/transcript
func (h *SessionHandler) HandleGetTranscript(c *fiber.Ctx) error {
	transcript, err := h.orchestrator.GetTranscript(c.Params("id"))
	if err != nil {
		return sessionError(c, err)
	}
	return c.JSON(fiber.Map{
		"transcript": transcript,
	})
}

// HandleGetReport handles GET /interview/session/:id/report
func (h *SessionHandler) HandleGetReport(c *fiber.Ctx) error {
	report, err := h.orchestrator.GetReport(c.Params("id"))
	if err != nil {
		return sessionError(c, err)
	}
	return c.JSON(report)
}

// HandleFindUnfinished handles GET /interview/unfinished?resume_id=
func (h *SessionHandler) HandleFindUnfinished(c *fiber.Ctx) error {
	resumeID, err := strconv.ParseUint(c.Query("resume_id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "resume_id is required",
		})
	}

	session, err := h.orchestrator.FindUnfinished(uint(resumeID))
	if err != nil {
		return sessionError(c, err)
	}

	if session == nil {
		return c.JSON(fiber.Map{
			"found": false,
		})
	}
	return c.JSON(fiber.Map{
		"found":   true,
		"session": session,
	})
}

func sessionError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, models.ErrSessionNotFound), errors.Is(err, models.ErrResumeNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": err.Error(),
		})
	case errors.Is(err, models.ErrStaleSubmission):
		// Safe to retry with the current question index, nothing was mutated
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": err.Error(),
			"code":  "STALE_SUBMISSION",
		})
	case errors.Is(err, repositories.ErrDuplicateActiveSession):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": err.Error(),
			"code":  "SESSION_CONFLICT",
		})
	case errors.Is(err, models.ErrInvalidArgument):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	case errors.Is(err, models.ErrGenerationFailed):
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": err.Error(),
		})
	case errors.Is(err, models.ErrReportNotReady):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": err.Error(),
		})
	case errors.Is(err, models.ErrEvaluationFailed):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error": err.Error(),
		})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
}
