package main

import (
	"fmt"
	"log"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"coursehub-backend/cmd/app/internal/controller"
	"coursehub-backend/internal/config"
	"coursehub-backend/internal/db"
	"coursehub-backend/internal/render"
	"coursehub-backend/internal/repository"
	"coursehub-backend/internal/service"
	"coursehub-backend/pkg/middleware"
	"coursehub-backend/utilities"
)

func main() {
	printStartUpBanner()

	// .env overrides (DB password, JWT secret) for local development.
	_ = godotenv.Load()

	cfg, err := config.LoadConfig("config.xml")
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	utilities.SetupLogging("logs")

	conn, err := db.Open(&cfg.DB)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	if cfg.DB.Initialize {
		if err := db.AutoMigrate(conn); err != nil {
			log.Fatalf("failed to run migrations: %v", err)
		}
	}
	if cfg.Context.SeedData {
		if err := seedCatalog(conn); err != nil {
			log.Fatalf("failed to seed catalog: %v", err)
		}
	}

	// Repositories.
	catalogRepo := repository.NewCatalogRepository(conn)
	factRepo := repository.NewFactRepository(conn)
	examRepo := repository.NewExamRepository(conn)
	certRepo := repository.NewCertificateRepository(conn)
	submissionRepo := repository.NewSubmissionRepository(conn)
	userRepo := repository.NewUserRepository(conn)

	// Event bus and services.
	events := utilities.NewEventBus()
	progressService := service.NewProgressService(catalogRepo, factRepo)
	examService := service.NewExamService(catalogRepo, examRepo)
	certificationService := service.NewCertificationService(
		progressService, catalogRepo, examRepo, certRepo, factRepo, userRepo, events,
		cfg.Certification.InsertRetries, cfg.Certification.CodeRetries,
	)
	submissionService := service.NewSubmissionService(submissionRepo, factRepo, events)
	plagiarismService := service.NewPlagiarismService(
		submissionRepo, userRepo,
		cfg.Plagiarism.SimilarityFloor, cfg.Plagiarism.MinTokenLength, cfg.Plagiarism.MinSnippetRun,
	)
	factService := service.NewFactService(factRepo)

	renderer := render.NewPDFRenderer()
	service.InitPlagiarismEventListeners(events, plagiarismService)
	render.InitCertificateEventListeners(events, renderer)

	// HTTP shell.
	r := gin.Default()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	if cfg.RequestDump {
		r.Use(middleware.RequestDumpMiddleware())
	}
	r.Use(utilities.AuthMiddleware())

	writeLimiter := utilities.RateLimitMiddleware(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
	controller.RegisterRoutes(
		r,
		progressService, examService, certificationService, submissionService, factService,
		catalogRepo, submissionRepo, renderer, writeLimiter,
	)

	addr := fmt.Sprintf("%s:%d", cfg.Context.Host, cfg.Context.Port)
	utilities.Info("listening on %s", addr)
	if err := r.Run(addr); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}

func printStartUpBanner() {
	myFigure := figure.NewFigure("COURSEHUB", "", true)
	myFigure.Print()

	fmt.Println("======================================================")
	fmt.Printf("COURSEHUB Progress & Certification API (v%s)\n\n", "1.0.0")
}
