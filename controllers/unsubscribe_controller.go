package controller

import (
	"fmt"
	"html/template"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"leadreach/utils"
)

type unsubscriber interface {
	MarkUnsubscribed(email, leadID, source string) error
}

type UnsubscribeController struct {
	Leads  unsubscriber
	Logger *logrus.Logger
}

func NewUnsubscribeController(leads unsubscriber, logger *logrus.Logger) *UnsubscribeController {
	return &UnsubscribeController{
		Leads:  leads,
		Logger: logger,
	}
}

// Unsubscribe handles the one-click link from email footers. The suppression
// write is best effort; the confirmation page renders either way so the
// recipient always sees success.
func (uc *UnsubscribeController) Unsubscribe(c *fiber.Ctx) error {
	email := c.Query("email")
	leadID := c.Query("id")
	if email == "" || leadID == "" {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Email and id parameters are required", nil)
	}

	if err := uc.Leads.MarkUnsubscribed(email, leadID, "email_link"); err != nil {
		uc.Logger.WithFields(logrus.Fields{
			"email":   email,
			"lead_id": leadID,
		}).WithError(err).Warn("Unsubscribe write failed")
	} else {
		uc.Logger.WithField("email", email).Info("Lead unsubscribed")
	}

	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return c.SendString(unsubscribePage(email))
}

// UnsubscribePost exists for list-unsubscribe POST callbacks from mail
// clients. They expect a bare 200.
func (uc *UnsubscribeController) UnsubscribePost(c *fiber.Ctx) error {
	return c.SendStatus(fiber.StatusOK)
}

func unsubscribePage(email string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
    <meta charset="utf-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Unsubscribed - Addis Care</title>
</head>
<body style="margin: 0; padding: 40px 20px; font-family: 'Segoe UI', Tahoma, Geneva, Verdana, sans-serif; background-color: #f8f9fa; text-align: center;">
    <div style="max-width: 480px; margin: 0 auto; background-color: #ffffff; padding: 40px; border-radius: 8px; box-shadow: 0 4px 6px rgba(0, 0, 0, 0.1);">
        <h1 style="color: #333; font-size: 24px; font-weight: 300;">You've been unsubscribed</h1>
        <p style="color: #666; line-height: 1.6;">%s will no longer receive outreach emails from Addis Care.</p>
        <p style="color: #888; font-size: 13px;">Unsubscribed by mistake? Reply to any previous email and we'll add you back.</p>
    </div>
</body>
</html>`, template.HTMLEscapeString(email))
}
