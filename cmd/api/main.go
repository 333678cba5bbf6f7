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
	"github.com/rs/zerolog"

	"github.com/fisikaku/fisikaku-api/internal/config"
	"github.com/fisikaku/fisikaku-api/internal/database"
	"github.com/fisikaku/fisikaku-api/internal/handler"
	"github.com/fisikaku/fisikaku-api/internal/middleware"
	"github.com/fisikaku/fisikaku-api/internal/models"
	"github.com/fisikaku/fisikaku-api/internal/repository"
	"github.com/fisikaku/fisikaku-api/internal/router"
	"github.com/fisikaku/fisikaku-api/internal/service"
	"github.com/fisikaku/fisikaku-api/pkg/ai"
	cloud "github.com/fisikaku/fisikaku-api/pkg/cloudinary"
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
		&models.Course{},
		&models.Material{},
		&models.MaterialContent{},
		&models.Assessment{},
		&models.Question{},
		&models.QuestionOption{},
		&models.Submission{},
		&models.MultipleChoiceAnswer{},
		&models.EssayAnswer{},
		&models.Notification{},
	); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		logger.Warn().Err(err).Msg("redis unavailable, result caching disabled")
		redisClient = nil
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	natsConn, err := database.ConnectNATS(cfg.NATSURL)
	if err != nil {
		logger.Warn().Err(err).Msg("nats unavailable, notification fan-out disabled")
		natsConn = nil
	}
	if natsConn != nil {
		defer natsConn.Close()
	}

	var uploader service.FileUploader
	if cfg.CloudinaryCloudName != "" {
		cloudService, err := cloud.New(cloud.Config{
			CloudName: cfg.CloudinaryCloudName,
			APIKey:    cfg.CloudinaryAPIKey,
			APISecret: cfg.CloudinaryAPISecret,
			Folder:    cfg.CloudinaryUploadFolder,
		}, logger)
		if err != nil {
			log.Fatalf("failed to create cloudinary client: %v", err)
		}
		uploader = cloudService
	}

	var evaluator ai.Evaluator
	if cfg.AIProvider == "openai" && cfg.OpenAIAPIKey != "" {
		openAIEvaluator, err := ai.NewOpenAIEvaluator(ai.OpenAIConfig{
			APIKey: cfg.OpenAIAPIKey,
			Model:  cfg.OpenAIModel,
			Logger: logger,
		})
		if err != nil {
			log.Fatalf("failed to create openai evaluator: %v", err)
		}
		evaluator = openAIEvaluator
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	courseRepo := repository.NewCourseRepository(db)
	materialRepo := repository.NewMaterialRepository(db)
	assessmentRepo := repository.NewAssessmentRepository(db)
	questionRepo := repository.NewQuestionRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)
	answerRepo := repository.NewAnswerRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	notificationService := service.NewNotificationService(notificationRepo, natsConn, cfg.NATSNotificationTopic, validate, logger)
	courseService := service.NewCourseService(courseRepo, materialRepo, validate, logger)
	contentService := service.NewContentService(materialRepo, uploader, cfg.UploadMaxSizeMB, validate, logger)
	assessmentService := service.NewAssessmentService(assessmentRepo, questionRepo, materialRepo, validate, logger)
	submissionService := service.NewSubmissionService(submissionRepo, answerRepo, questionRepo, assessmentRepo, validate, logger)
	gradingService := service.NewGradingService(submissionRepo, answerRepo, questionRepo, assessmentRepo, notificationService, evaluator, validate, logger)
	resultService := service.NewResultService(submissionRepo, answerRepo, assessmentRepo, redisClient, cfg.ResultCacheTTL, logger)

	courseHandler := handler.NewCourseHandler(courseService, logger)
	materialHandler := handler.NewMaterialHandler(courseService, contentService, logger)
	assessmentHandler := handler.NewAssessmentHandler(assessmentService, logger)
	submissionHandler := handler.NewSubmissionHandler(submissionService, logger)
	gradingHandler := handler.NewGradingHandler(gradingService, logger)
	resultHandler := handler.NewResultHandler(resultService, logger)
	notificationHandler := handler.NewNotificationHandler(notificationService, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		CourseHandler:       courseHandler,
		MaterialHandler:     materialHandler,
		AssessmentHandler:   assessmentHandler,
		SubmissionHandler:   submissionHandler,
		GradingHandler:      gradingHandler,
		ResultHandler:       resultHandler,
		NotificationHandler: notificationHandler,
		JWTMiddleware:       middleware.JWTProtected(cfg.JWTSecret),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
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
