package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/websocket/v2"
	"github.com/sirupsen/logrus"

	"leadreach/config"
	controller "leadreach/controllers"
	"leadreach/middleware"
	"leadreach/store"
	"leadreach/utils"
	"leadreach/worker"
)

// Deps holds everything the HTTP layer needs wired in.
type Deps struct {
	Config *config.Config
	Logger *logrus.Logger
	Leads  *store.LeadStore
	Logs   *store.EmailLogStore
	Sender *utils.OutreachSender
	Jobs   *worker.JobRegistry
	Hub    *worker.ProgressHub
}

func SetupRoutes(app *fiber.App, deps Deps) {
	leadController := controller.NewLeadController(deps.Leads, deps.Logs, deps.Logger)
	composeController := controller.NewComposeController(deps.Leads, deps.Logger, deps.Config.AppBaseURL)
	outreachController := controller.NewOutreachController(deps.Leads, deps.Sender, deps.Jobs, deps.Logger)
	unsubscribeController := controller.NewUnsubscribeController(deps.Leads, deps.Logger)
	trackController := controller.NewTrackController(deps.Logs, deps.Logger)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api", logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	// Lead gateway
	api.Get("/leads", leadController.GetLeads)
	api.Get("/leads/:id", leadController.GetLead)
	api.Get("/leads/:id/emails", leadController.GetLeadEmails)

	// Composer
	api.Post("/generate-emails", composeController.GenerateEmails)
	api.Post("/generate-comet-prompt", composeController.GenerateCometPrompt)

	// Dispatcher, rate limited per client
	send := api.Group("", middleware.SendRateLimiter(deps.Config))
	send.Post("/send-email", outreachController.SendEmail)
	send.Post("/send-all", outreachController.SendAll)
	api.Get("/send-all/:jobID", outreachController.GetBatch)

	// Suppression
	api.Get("/unsubscribe", unsubscribeController.Unsubscribe)
	api.Post("/unsubscribe", unsubscribeController.UnsubscribePost)

	// Live batch progress
	app.Get("/api/outreach/progress", websocket.New(controller.HandleOutreachProgressWS(deps.Hub, deps.Logger)))

	// Open tracking pixel
	app.Get("/track/open/:messageID/:token", trackController.TrackOpen)

	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error":   "Not Found",
			"message": "The requested resource was not found",
		})
	})

	deps.Logger.Info("API routes initialized successfully")
}
