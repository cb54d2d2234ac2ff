package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"interview-guide/internal/config"
	"interview-guide/internal/handlers"
	"interview-guide/internal/repositories"
	"interview-guide/internal/services"
)

func main() {
	// Load configuration
	cfg := config.Load()
	log.Println("✅ Config loaded successfully")

	// Initialize database
	db, err := config.InitDatabase(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to initialize database: %v", err)
	}

	// Initialize repositories
	sessionRepo := repositories.NewSessionRepository(db)
	resumeRepo := repositories.NewResumeRepository(db)
	log.Println("✅ Repositories initialized successfully")

	// Initialize Gemini AI
	geminiService, err := services.NewGeminiService(cfg.Gemini.APIKey)
	if err != nil {
		log.Fatalf("❌ Failed to initialize Gemini AI: %v", err)
	}
	log.Println("✅ Gemini AI initialized successfully")

	// Initialize knowledge base
	knowledgeService, err := services.NewKnowledgeService(
		cfg.Qdrant.URL,
		cfg.Qdrant.APIKey,
		cfg.Qdrant.Collection,
		geminiService,
	)
	if err != nil {
		log.Fatalf("❌ Failed to initialize Qdrant: %v", err)
	}

	if err := knowledgeService.InitCollection(); err != nil {
		log.Fatalf("❌ Failed to initialize Qdrant collection: %v", err)
	}
	log.Println("✅ Knowledge base initialized successfully")

	// Initialize collaborators and core services
	pdfParser := services.NewPDFParserService()
	generator := services.NewQuestionGenerator(
		geminiService,
		knowledgeService,
		cfg.Interview.GenerationTimeout,
		cfg.Worker.RetryMaxAttempts,
	)
	grader := services.NewAnswerGrader(geminiService, cfg.Interview.GradingTimeout)
	evaluatorService := services.NewEvaluatorService(sessionRepo, grader)
	log.Println("✅ Services initialized successfully")

	// Initialize worker
	worker := services.NewWorker(
		sessionRepo,
		evaluatorService,
		cfg.Worker.Concurrency,
	)

	// Start worker
	ctx := context.Background()
	worker.Start(ctx)
	log.Println("✅ Worker started successfully")

	// Initialize orchestrator
	resolver := services.NewResumptionResolver(sessionRepo)
	orchestrator := services.NewSessionOrchestrator(
		sessionRepo,
		resolver,
		generator,
		worker,
		cfg.Interview.SupportedQuestionCounts,
	)

	// Initialize handlers
	sessionHandler := handlers.NewSessionHandler(orchestrator)
	resumeHandler := handlers.NewResumeHandler(
		resumeRepo,
		pdfParser,
		cfg.Interview.MaxResumeSize,
	)
	log.Println("✅ Handlers initialized")

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "AI Interview Guide API",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		BodyLimit:    int(cfg.Interview.MaxResumeSize),
		ErrorHandler: customErrorHandler,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
		TimeFormat: "2006-01-02 15:04:05",
	}))

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	// Routes
	api := app.Group("/api/v1")

	// Health check
	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now(),
		})
	})

	// Resume endpoints
	api.Post("/resume/upload", resumeHandler.HandleUpload)
	api.Get("/resume/:id", resumeHandler.HandleGetResume)

	// Interview endpoints
	interview := api.Group("/interview")
	interview.Post("/session", sessionHandler.HandleCreateSession)
	interview.Get("/session/:id", sessionHandler.HandleGetSession)
	interview.Get("/session/:id/question", sessionHandler.HandleGetCurrentQuestion)
	interview.Post("/answer", sessionHandler.HandleSubmitAnswer)
	interview.Post("/session/:id/complete", sessionHandler.HandleCompleteInterview)
	interview.Get("/session/:id/transcript", sessionHandler.HandleGetTranscript)
	interview.Get("/session/:id/report", sessionHandler.HandleGetReport)
	interview.Get("/unfinished", sessionHandler.HandleFindUnfinished)

	// Root route
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "AI Interview Guide API",
			"version": "1.0.0",
			"endpoints": []string{
				"POST /api/v1/resume/upload",
				"POST /api/v1/interview/session",
				"GET /api/v1/interview/session/:id",
				"GET /api/v1/interview/session/:id/question",
				"POST /api/v1/interview/answer",
				"POST /api/v1/interview/session/:id/complete",
				"GET /api/v1/interview/session/:id/report",
			},
		})
	})

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Println("\n🛑 Shutting down server...")
		worker.Stop()
		if err := app.Shutdown(); err != nil {
			log.Printf("❌ Server forced to shutdown: %v", err)
		}
	}()

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("🚀 Server starting on %s\n", addr)

	if err := app.Listen(addr); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
		"code":  code,
	})
}
