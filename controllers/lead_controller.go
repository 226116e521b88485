package controller

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"leadreach/models"
	"leadreach/store"
	"leadreach/utils"
)

// leadReader is the slice of the lead store the HTTP layer needs.
type leadReader interface {
	GetAll() []models.Lead
	GetByID(id string) (*models.Lead, error)
}

type emailHistory interface {
	RecentForLead(leadID string, limit int) ([]models.EmailLog, error)
}

type LeadController struct {
	Leads  leadReader
	Logs   emailHistory
	Logger *logrus.Logger
}

func NewLeadController(leads leadReader, logs emailHistory, logger *logrus.Logger) *LeadController {
	return &LeadController{
		Leads:  leads,
		Logs:   logs,
		Logger: logger,
	}
}

// GetLeads returns the lead collection, optionally narrowed by query
// filters. A failing backing store yields an empty collection, never a 5xx.
func (lc *LeadController) GetLeads(c *fiber.Ctx) error {
	var filter store.LeadFilter
	if err := c.QueryParser(&filter); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid filter parameters", err)
	}

	leads := store.FilterLeads(lc.Leads.GetAll(), filter)
	return c.JSON(fiber.Map{
		"leads": leads,
		"total": len(leads),
	})
}

// GetLead returns a single lead by ID
func (lc *LeadController) GetLead(c *fiber.Ctx) error {
	lead, err := lc.Leads.GetByID(c.Params("id"))
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch lead", err)
	}
	if lead == nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Lead not found", nil)
	}
	return c.JSON(utils.SuccessResponse(lead))
}

// GetLeadEmails returns the most recent delivery records for a lead.
func (lc *LeadController) GetLeadEmails(c *fiber.Ctx) error {
	lead, err := lc.Leads.GetByID(c.Params("id"))
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch lead", err)
	}
	if lead == nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Lead not found", nil)
	}

	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	logs, err := lc.Logs.RecentForLead(lead.ID, limit)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch email history", err)
	}
	return c.JSON(utils.SuccessResponse(logs))
}
