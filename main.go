package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/gofiber/fiber/v2"
	"github.com/google/generative-ai-go/genai"
	"github.com/sirupsen/logrus"

	"startupops/config"
	"startupops/middleware"
	"startupops/routes"
	"startupops/utils"
	"startupops/worker"
)

func main() {
	if err := config.LoadConfig(); err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	if config.AppConfig.Environment == "development" {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
		logger.SetLevel(logrus.DebugLevel)
	}

	if config.AppConfig.SentryDSN != "" {
		err := sentry.Init(sentry.ClientOptions{
			Dsn:         config.AppConfig.SentryDSN,
			Environment: config.AppConfig.Environment,
		})
		if err != nil {
			logger.WithError(err).Warn("sentry initialization failed")
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	if err := config.ConnectDB(); err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var aiClient *genai.Client
	if config.AppConfig.GeminiAPIKey != "" {
		var err error
		aiClient, err = utils.NewAIClient(ctx)
		if err != nil {
			logger.Fatalf("Failed to initialize AI client: %v", err)
		}
		defer aiClient.Close()
	} else {
		logger.Warn("GEMINI_API_KEY not set, pitch generation disabled")
	}

	notifier := worker.NewNotifier(logger)
	go notifier.Start(ctx)

	app := fiber.New(fiber.Config{
		AppName:      "StartupOps",
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			if code >= fiber.StatusInternalServerError {
				sentry.CaptureException(err)
				logger.WithFields(logrus.Fields{
					"path":  c.Path(),
					"error": err,
				}).Error("unhandled request error")
			}
			return utils.ErrorResponse(c, code, err.Error(), nil)
		},
	})

	app.Use(middleware.CORS())

	routes.SetupRoutes(app, logger, notifier, aiClient)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		logger.Info("Shutting down server...")
		cancel()
		_ = app.ShutdownWithTimeout(10 * time.Second)
	}()

	logger.Infof("Server listening on port %s", config.AppConfig.ServerPort)
	if err := app.Listen(":" + config.AppConfig.ServerPort); err != nil {
		logger.Fatalf("Server error: %v", err)
	}
}
