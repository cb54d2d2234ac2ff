package handlers

import (
	"fmt"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"interview-guide/internal/models"
	"interview-guide/internal/repositories"
	"interview-guide/internal/services"
)

type ResumeHandler struct {
	resumeRepo    repositories.ResumeRepository
	pdfParser     services.PDFParserService
	maxResumeSize int64
}

func NewResumeHandler(
	resumeRepo repositories.ResumeRepository,
	pdfParser services.PDFParserService,
	maxResumeSize int64,
) *ResumeHandler {
	return &ResumeHandler{
		resumeRepo:    resumeRepo,
		pdfParser:     pdfParser,
		maxResumeSize: maxResumeSize,
	}
}

// HandleUpload handles POST /resume/upload. The extracted text is stored as
// the resume identity used for session resumption; the file itself is not
// kept.
func (h *ResumeHandler) HandleUpload(c *fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "resume file is required",
		})
	}

	if file.Size > h.maxResumeSize {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": fmt.Sprintf("Resume file too large. Max size: %d bytes", h.maxResumeSize),
		})
	}

	content, err := h.pdfParser.ExtractTextFromUpload(file)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": fmt.Sprintf("failed to extract resume text: %v", err),
		})
	}

	resume := &models.Resume{
		OriginalFilename: file.Filename,
		TextContent:      content.Text,
		FileSize:         file.Size,
		UploadedAt:       time.Now(),
	}

	if err := h.resumeRepo.Create(resume); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to save resume",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(models.ResumeUploadResponse{
		ID:               resume.ID,
		OriginalFilename: resume.OriginalFilename,
		TextLength:       len(resume.TextContent),
		PageCount:        content.PageCount,
	})
}

// HandleGetResume handles GET /resume/:id
func (h *ResumeHandler) HandleGetResume(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid resume ID format",
		})
	}

	resume, err := h.resumeRepo.FindByID(uint(id))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Resume not found",
		})
	}
	return c.JSON(resume)
}
