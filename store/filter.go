package store

import (
	"strings"

	"leadreach/models"
)

// LeadFilter narrows a lead collection in memory. Zero values match
// everything, so an empty filter is the identity.
type LeadFilter struct {
	Search      string `query:"search"`
	Type        string `query:"type"`
	Status      string `query:"status"`
	AssignedTo  string `query:"assigned_to"`
	HasEmail    bool   `query:"has_email"`
	HasResearch bool   `query:"has_research"`
}

// FilterLeads applies the filter to an already-loaded collection. Search is
// a case-insensitive substring match over name, company and email; the
// remaining string fields are exact matches.
func FilterLeads(leads []models.Lead, f LeadFilter) []models.Lead {
	out := make([]models.Lead, 0, len(leads))
	search := strings.ToLower(strings.TrimSpace(f.Search))
	for _, lead := range leads {
		if search != "" && !matchesSearch(lead, search) {
			continue
		}
		if f.Type != "" && lead.CustomerType() != f.Type {
			continue
		}
		if f.Status != "" && lead.Status != f.Status {
			continue
		}
		if f.AssignedTo != "" && lead.AssignedTo != f.AssignedTo {
			continue
		}
		if f.HasEmail && strings.TrimSpace(lead.Email) == "" {
			continue
		}
		if f.HasResearch && !lead.HasResearchData() {
			continue
		}
		out = append(out, lead)
	}
	return out
}

func matchesSearch(lead models.Lead, search string) bool {
	return strings.Contains(strings.ToLower(lead.Name), search) ||
		strings.Contains(strings.ToLower(lead.Company), search) ||
		strings.Contains(strings.ToLower(lead.Email), search)
}
