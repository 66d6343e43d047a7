package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/skillroute/skillroute-api/internal/config"
	"github.com/skillroute/skillroute-api/internal/database"
	"github.com/skillroute/skillroute-api/internal/events"
	"github.com/skillroute/skillroute-api/internal/handler"
	"github.com/skillroute/skillroute-api/internal/middleware"
	"github.com/skillroute/skillroute-api/internal/models"
	"github.com/skillroute/skillroute-api/internal/repository"
	"github.com/skillroute/skillroute-api/internal/router"
	"github.com/skillroute/skillroute-api/internal/service"
	"github.com/skillroute/skillroute-api/pkg/ai"
	cloud "github.com/skillroute/skillroute-api/pkg/cloudinary"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.Group{},
		&models.Student{},
		&models.Lesson{},
		&models.StudentProgress{},
		&models.Assignment{},
		&models.Submission{},
		&models.TutorMessage{},
	); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		logger.Warn().Err(err).Msg("redis unavailable, stats caching disabled")
		redisClient = nil
	} else {
		defer redisClient.Close()
	}

	var natsConn *nats.Conn
	if cfg.NATSURL != "" {
		natsConn, err = nats.Connect(cfg.NATSURL)
		if err != nil {
			logger.Warn().Err(err).Msg("nats unavailable, event publishing disabled")
			natsConn = nil
		} else {
			defer natsConn.Close()
		}
	}
	publisher := events.NewPublisher(natsConn, logger)

	var uploader service.FileUploader
	cloudService, err := cloud.New(cloud.Config{
		CloudName: cfg.CloudinaryCloudName,
		APIKey:    cfg.CloudinaryAPIKey,
		APISecret: cfg.CloudinaryAPISecret,
		Folder:    cfg.CloudinaryUploadFolder,
	}, logger)
	if err != nil {
		logger.Warn().Err(err).Msg("cloudinary unavailable, media uploads disabled")
	} else {
		uploader = cloudService
	}

	provider := buildAIProvider(cfg, logger)

	validate := validator.New(validator.WithRequiredStructEnabled())

	lessonRepo := repository.NewLessonRepository(db)
	progressRepo := repository.NewProgressRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	groupRepo := repository.NewGroupRepository(db)
	tutorRepo := repository.NewTutorRepository(db)

	statsService := service.NewStatsService(progressRepo, submissionRepo, redisClient, cfg.StatsCacheTTL, logger)
	unlockService := service.NewUnlockService(lessonRepo, progressRepo, publisher, statsService, logger)
	quizService := service.NewQuizService(submissionRepo, assignmentRepo, validate, provider, publisher, statsService, logger)
	certificateService := service.NewCertificateService(submissionRepo, logger)
	lessonService := service.NewLessonService(lessonRepo, validate, uploader, logger)
	assignmentService := service.NewAssignmentService(assignmentRepo, validate, logger)
	studentService := service.NewStudentService(studentRepo, groupRepo, progressRepo, submissionRepo, validate, logger)
	tutorService := service.NewTutorService(tutorRepo, provider, validate, logger)
	seedService := service.NewSeedService(lessonRepo, assignmentRepo, cfg.SeedEnabled, cfg.SeedToken, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		LessonHandler:       handler.NewLessonHandler(unlockService, logger),
		AssignmentHandler:   handler.NewAssignmentHandler(assignmentService, logger),
		SubmissionHandler:   handler.NewSubmissionHandler(quizService, certificateService, logger),
		AdminLessonHandler:  handler.NewAdminLessonHandler(lessonService, logger),
		AdminStudentHandler: handler.NewAdminStudentHandler(studentService, logger),
		StatsHandler:        handler.NewStatsHandler(statsService, logger),
		TutorHandler:        handler.NewTutorHandler(tutorService, logger),
		SeedHandler:         handler.NewSeedHandler(seedService, logger),
		JWTMiddleware:       middleware.JWTProtected(cfg.JWTSecret),
		TutorRateLimit:      middleware.RateLimit("tutor", cfg.TutorRateLimit, cfg.TutorRateWindow),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

func buildAIProvider(cfg config.Config, logger zerolog.Logger) ai.Provider {
	switch cfg.AIProvider {
	case "anthropic":
		provider, err := ai.NewAnthropicProvider(ai.AnthropicConfig{
			APIKey: cfg.AnthropicAPIKey,
			Model:  cfg.TutorModel,
		})
		if err != nil {
			logger.Warn().Err(err).Msg("anthropic provider unavailable")
			return nil
		}
		return provider
	case "openai":
		provider, err := ai.NewOpenAIProvider(ai.OpenAIConfig{
			APIKey: cfg.OpenAIAPIKey,
			Model:  cfg.TutorModel,
			Logger: logger,
		})
		if err != nil {
			logger.Warn().Err(err).Msg("openai provider unavailable")
			return nil
		}
		return provider
	default:
		logger.Warn().Str("provider", cfg.AIProvider).Msg("unknown ai provider, grading and tutoring disabled")
		return nil
	}
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
