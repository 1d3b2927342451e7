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

	"github.com/optikform/optik-api/internal/config"
	"github.com/optikform/optik-api/internal/database"
	"github.com/optikform/optik-api/internal/handler"
	"github.com/optikform/optik-api/internal/middleware"
	"github.com/optikform/optik-api/internal/models"
	"github.com/optikform/optik-api/internal/repository"
	"github.com/optikform/optik-api/internal/router"
	"github.com/optikform/optik-api/internal/service"
	cloud "github.com/optikform/optik-api/pkg/cloudinary"
	"github.com/optikform/optik-api/pkg/localstore"
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
		&models.School{},
		&models.User{},
		&models.Class{},
		&models.Student{},
		&models.OpticalTemplate{},
		&models.Exam{},
		&models.Result{},
	); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	storage, err := buildStorage(cfg, logger)
	if err != nil {
		log.Fatalf("failed to create file storage: %v", err)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	userRepo := repository.NewUserRepository(db)
	schoolRepo := repository.NewSchoolRepository(db)
	classRepo := repository.NewClassRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	templateRepo := repository.NewOpticalTemplateRepository(db)
	examRepo := repository.NewExamRepository(db)
	resultRepo := repository.NewResultRepository(db)

	authService := service.NewAuthService(db, userRepo, schoolRepo, validate, cfg.JWTSecret, cfg.TokenTTL, logger)
	userService := service.NewUserService(db, userRepo, schoolRepo, validate, logger)
	schoolService := service.NewSchoolService(schoolRepo, validate, logger)
	classService := service.NewClassService(db, classRepo, schoolRepo, validate, logger)
	studentService := service.NewStudentService(db, studentRepo, classRepo, schoolRepo, validate, logger)
	templateService := service.NewOpticalTemplateService(templateRepo, storage, redisClient, cfg.TemplateCacheTTL, validate, logger)
	examService := service.NewExamService(db, examRepo, schoolRepo, classRepo, templateRepo, storage, validate, logger)
	resultService := service.NewResultService(resultRepo, examRepo, studentRepo, templateRepo, validate, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		AuthHandler:            handler.NewAuthHandler(authService, logger),
		UserHandler:            handler.NewUserHandler(userService, logger),
		SchoolHandler:          handler.NewSchoolHandler(schoolService, logger),
		ClassHandler:           handler.NewClassHandler(classService, logger),
		StudentHandler:         handler.NewStudentHandler(studentService, logger),
		OpticalTemplateHandler: handler.NewOpticalTemplateHandler(templateService, logger),
		ExamHandler:            handler.NewExamHandler(examService, logger),
		ResultHandler:          handler.NewResultHandler(resultService, logger),
		JWTMiddleware:          middleware.JWTProtected(cfg.JWTSecret),
	})

	if cfg.StorageBackend == "local" {
		app.Static("/uploads", cfg.UploadsDir)
	}

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

func buildStorage(cfg config.Config, logger zerolog.Logger) (service.FileStorage, error) {
	if cfg.StorageBackend == "cloudinary" {
		svc, err := cloud.New(cloud.Config{
			CloudName: cfg.CloudinaryCloudName,
			APIKey:    cfg.CloudinaryAPIKey,
			APISecret: cfg.CloudinaryAPISecret,
			Folder:    cfg.CloudinaryUploadFolder,
		}, logger)
		if err != nil {
			return nil, err
		}
		return svc, nil
	}

	svc, err := localstore.New(cfg.UploadsDir, logger)
	if err != nil {
		return nil, err
	}
	return svc, nil
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
