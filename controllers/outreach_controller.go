package controller

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"leadreach/utils"
	"leadreach/worker"
)

type OutreachController struct {
	Leads  leadReader
	Sender *utils.OutreachSender
	Jobs   *worker.JobRegistry
	Logger *logrus.Logger
}

func NewOutreachController(leads leadReader, sender *utils.OutreachSender, jobs *worker.JobRegistry, logger *logrus.Logger) *OutreachController {
	return &OutreachController{
		Leads:  leads,
		Sender: sender,
		Jobs:   jobs,
		Logger: logger,
	}
}

// SendEmail dispatches one composed draft to a lead.
func (oc *OutreachController) SendEmail(c *fiber.Ctx) error {
	var input struct {
		LeadID        string `json:"lead_id" validate:"required"`
		EmailKey      string `json:"email_key"`
		To            string `json:"to"`
		Subject       string `json:"subject" validate:"required"`
		HTMLContent   string `json:"html_content" validate:"required"`
		ScheduledTime string `json:"scheduled_time"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}
	if input.EmailKey == "" {
		input.EmailKey = "Email 1"
	}

	lead, err := oc.Leads.GetByID(input.LeadID)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch lead", err)
	}
	if lead == nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Lead not found", nil)
	}
	if input.To != "" {
		lead.Email = input.To
	}

	result, err := oc.Sender.SendDraft(c.UserContext(), lead, utils.EmailDraft{
		Key:      input.EmailKey,
		Subject:  input.Subject,
		HTML:     input.HTMLContent,
		Schedule: input.ScheduledTime,
	})
	switch {
	case errors.Is(err, utils.ErrValidation):
		return utils.ErrorResponse(c, fiber.StatusBadRequest, result.Error, nil)
	case errors.Is(err, utils.ErrBusy):
		return utils.ErrorResponse(c, fiber.StatusConflict, "A send for this draft is already in progress", nil)
	case err != nil:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"result":  result,
			"error":   result.Error,
		})
	}
	return c.JSON(utils.SuccessResponse(result))
}

// SendAll starts a background batch dispatching the whole sequence. Batches
// containing a deferred schedule are rejected until the caller confirms once
// for the whole batch.
func (oc *OutreachController) SendAll(c *fiber.Ctx) error {
	var input struct {
		LeadID string `json:"lead_id" validate:"required"`
		Emails []struct {
			EmailKey      string `json:"email_key"`
			Subject       string `json:"subject" validate:"required"`
			HTMLContent   string `json:"html_content" validate:"required"`
			ScheduledTime string `json:"scheduled_time"`
		} `json:"emails" validate:"required,min=1,dive"`
		DefaultSchedule string `json:"default_schedule"`
		ConfirmDeferred bool   `json:"confirm_deferred"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	lead, err := oc.Leads.GetByID(input.LeadID)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch lead", err)
	}
	if lead == nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Lead not found", nil)
	}

	drafts := make([]utils.EmailDraft, 0, len(input.Emails))
	for i, e := range input.Emails {
		schedule := e.ScheduledTime
		if schedule == "" {
			schedule = input.DefaultSchedule
		}
		key := e.EmailKey
		if key == "" {
			key = utils.DraftKey(i + 1)
		}
		drafts = append(drafts, utils.EmailDraft{
			Key:      key,
			Subject:  e.Subject,
			HTML:     e.HTMLContent,
			Schedule: schedule,
		})
	}

	if utils.HasDeferred(drafts) && !input.ConfirmDeferred {
		return utils.ErrorResponse(c, fiber.StatusBadRequest,
			"Batch contains scheduled sends; set confirm_deferred to proceed", nil)
	}

	// The batch outlives the request, so it runs on a fresh context.
	job := oc.Jobs.Start(context.Background(), lead, drafts)
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"success": true,
		"job_id":  job.ID,
		"total":   len(drafts),
	})
}

// GetBatch reports the state of a send-all job.
func (oc *OutreachController) GetBatch(c *fiber.Ctx) error {
	snapshot, ok := oc.Jobs.Get(c.Params("jobID"))
	if !ok {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Batch job not found", nil)
	}
	return c.JSON(utils.SuccessResponse(snapshot))
}
