package controller

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"leadreach/models"
	"leadreach/utils"
)

type ComposeController struct {
	Leads      leadReader
	Logger     *logrus.Logger
	AppBaseURL string
}

func NewComposeController(leads leadReader, logger *logrus.Logger, appBaseURL string) *ComposeController {
	return &ComposeController{
		Leads:      leads,
		Logger:     logger,
		AppBaseURL: appBaseURL,
	}
}

// GenerateEmails composes the email sequence for a lead. Research notes
// containing Subject: blocks are parsed verbatim; anything else feeds the
// synthesized sequence.
func (cc *ComposeController) GenerateEmails(c *fiber.Ctx) error {
	var input struct {
		LeadID        string `json:"lead_id" validate:"required"`
		CustomerType  string `json:"customer_type"`
		EmailCount    int    `json:"email_count" validate:"omitempty,gte=1,lte=10"`
		ResearchNotes string `json:"research_notes"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}
	if input.EmailCount == 0 {
		input.EmailCount = utils.DefaultSequenceLength
	}

	lead, err := cc.Leads.GetByID(input.LeadID)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch lead", err)
	}
	if lead == nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Lead not found", nil)
	}
	if input.CustomerType != "" {
		// Per-request override, never persisted.
		lead.Type = input.CustomerType
	}

	settings := utils.CampaignSettings{
		CustomerType:        lead.CustomerType(),
		EmailSequenceLength: input.EmailCount,
	}
	unsubscribeURL := utils.UnsubscribeURL(cc.AppBaseURL, lead.Email, lead.ID)
	drafts, err := utils.ComposeDrafts(lead, settings, input.ResearchNotes, unsubscribeURL)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to compose emails", err)
	}

	cc.Logger.WithFields(logrus.Fields{
		"lead_id": lead.ID,
		"count":   len(drafts),
	}).Info("Email sequence composed")

	return c.JSON(fiber.Map{
		"success":         true,
		"emails":          utils.DraftMap(drafts),
		"research_prompt": utils.BuildResearchPrompt(lead, settings),
		"message":         fmt.Sprintf("Generated %d personalized emails from research", len(drafts)),
	})
}

// GenerateCometPrompt wraps free-form research instructions in the fixed
// multi-day research task format. The lead arrives inline so prompts can be
// built for prospects not yet stored.
func (cc *ComposeController) GenerateCometPrompt(c *fiber.Ctx) error {
	var input struct {
		Prompt string `json:"prompt" validate:"required"`
		Lead   struct {
			ID           string `json:"id"`
			Name         string `json:"name" validate:"required"`
			Company      string `json:"company" validate:"required"`
			Position     string `json:"position"`
			Email        string `json:"email"`
			Type         string `json:"type"`
			FacilityType string `json:"facility_type"`
		} `json:"lead" validate:"required"`
		CampaignDays int `json:"campaign_days" validate:"omitempty,gte=1,lte=30"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}
	if input.CampaignDays == 0 {
		input.CampaignDays = utils.DefaultSequenceLength
	}

	lead := &models.Lead{
		ID:           input.Lead.ID,
		Name:         input.Lead.Name,
		Email:        input.Lead.Email,
		Company:      input.Lead.Company,
		Position:     input.Lead.Position,
		Type:         input.Lead.Type,
		FacilityType: input.Lead.FacilityType,
	}

	return c.JSON(fiber.Map{
		"success":      true,
		"comet_prompt": utils.BuildCometPrompt(input.Prompt, lead, input.CampaignDays),
	})
}
