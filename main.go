package main

import (
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"leadreach/config"
	"leadreach/middleware"
	"leadreach/routes"
	"leadreach/store"
	"leadreach/utils"
	"leadreach/worker"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := config.Load()
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}
	if cfg.Environment == "production" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}

	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         cfg.SentryDSN,
			Environment: cfg.Environment,
		}); err != nil {
			logger.WithError(err).Warn("Sentry initialization failed")
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	db, err := config.ConnectDB(cfg)
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to database")
	}
	logger.WithField("dsn", cfg.MaskedDSN()).Info("Database connected")

	leadStore := store.NewLeadStore(db, logger)
	logStore := store.NewEmailLogStore(db, logger)

	var mailer utils.Mailer
	switch cfg.MailProvider {
	case "smtp":
		mailer = utils.NewSMTPMailer(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password)
	default:
		mailer = utils.NewResendMailer(cfg.ResendBaseURL, cfg.ResendAPIKey, logger)
	}

	var audit *utils.AuditClient
	if cfg.TrackerURL != "" {
		audit = utils.NewAuditClient(cfg.TrackerURL)
	}

	sender := &utils.OutreachSender{
		Mailer:       mailer,
		Audit:        audit,
		Recorder:     logStore,
		Logger:       logger,
		FromEmail:    cfg.FromEmail,
		FromName:     cfg.FromName,
		PixelBaseURL: cfg.AppBaseURL,
		Pacing:       cfg.SendPacing,
	}

	hub := worker.NewProgressHub()
	jobs := worker.NewJobRegistry(sender, hub, logger)

	app := fiber.New(fiber.Config{
		AppName: "leadreach",
	})
	app.Use(middleware.CORS())

	routes.SetupRoutes(app, routes.Deps{
		Config: cfg,
		Logger: logger,
		Leads:  leadStore,
		Logs:   logStore,
		Sender: sender,
		Jobs:   jobs,
		Hub:    hub,
	})

	logger.WithField("port", cfg.ServerPort).Info("Server starting")
	if err := app.Listen(":" + cfg.ServerPort); err != nil {
		logger.WithError(err).Fatal("Failed to start server")
	}
}
