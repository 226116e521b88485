package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leadreach/models"
)

func TestProfileForKnownTypes(t *testing.T) {
	for _, ct := range KnownCustomerTypes() {
		profile := ProfileFor(ct)
		assert.NotEmpty(t, profile.Label, ct)
		assert.NotEmpty(t, profile.ValueProps, ct)
	}
}

func TestProfileForUnknownFallsBackToHomeCare(t *testing.T) {
	fallback := ProfileFor("home-care-agency")
	assert.Equal(t, fallback, ProfileFor("skilled-nursing"))
	assert.Equal(t, fallback, ProfileFor(""))
}

func TestBuildResearchPromptEmbedsLeadAndSettings(t *testing.T) {
	lead := &models.Lead{
		ID:       "lead-1",
		Name:     "Dana Reyes",
		Email:    "dana@sunrisecare.com",
		Company:  "Sunrise Care",
		Position: "Director of Operations",
		Type:     "home-care-agency",
	}
	prompt := BuildResearchPrompt(lead, CampaignSettings{
		CustomerType:        lead.CustomerType(),
		EmailSequenceLength: 5,
	})

	assert.Contains(t, prompt, "Company: Sunrise Care")
	assert.Contains(t, prompt, "Contact: Dana Reyes (Director of Operations)")
	assert.Contains(t, prompt, "Create 5 complete emails")
	assert.Contains(t, prompt, "Home Care Agencies")
	assert.Contains(t, prompt, "Save 2-4 hours/day on administrative tasks")
	assert.Contains(t, prompt, "Subject:")
}

func TestBuildResearchPromptUsesFacilityTypeWhenTypeMissing(t *testing.T) {
	lead := &models.Lead{Name: "A", Company: "B", FacilityType: "alf"}
	prompt := BuildResearchPrompt(lead, CampaignSettings{EmailSequenceLength: 3})
	assert.Contains(t, prompt, "Assisted Living Facilities")
}

func TestCampaignSettingsValidate(t *testing.T) {
	assert.NoError(t, CampaignSettings{EmailSequenceLength: 1}.Validate())
	assert.NoError(t, CampaignSettings{EmailSequenceLength: 10}.Validate())
	assert.Error(t, CampaignSettings{EmailSequenceLength: 0}.Validate())
	assert.Error(t, CampaignSettings{EmailSequenceLength: 11}.Validate())
}

func TestBuildCometPromptFormat(t *testing.T) {
	lead := &models.Lead{Name: "Dana Reyes", Company: "Sunrise Care", Type: "ccrc"}
	prompt := BuildCometPrompt("Focus on their new memory care wing.", lead, 7)

	require.Contains(t, prompt, "RESEARCH TASK: Sunrise Care - Dana Reyes")
	assert.Contains(t, prompt, "CAMPAIGN DURATION: 7 days")
	assert.Contains(t, prompt, "Focus on their new memory care wing.")
	assert.Contains(t, prompt, "create 7 personalized emails")
	assert.Contains(t, prompt, "Research the ccrc industry")
}
