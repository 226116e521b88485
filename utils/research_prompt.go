package utils

import (
	"fmt"
	"strings"

	"leadreach/models"
)

// CampaignSettings is the ephemeral per-session campaign configuration.
type CampaignSettings struct {
	CustomerType        string `json:"customer_type"`
	EmailSequenceLength int    `json:"email_sequence_length"`
}

const (
	MinSequenceLength = 1
	MaxSequenceLength = 10

	DefaultCustomerType   = "home-care-agency"
	DefaultSequenceLength = 3
)

func (s CampaignSettings) Validate() error {
	if s.EmailSequenceLength < MinSequenceLength || s.EmailSequenceLength > MaxSequenceLength {
		return fmt.Errorf("email sequence length must be between %d and %d, got %d",
			MinSequenceLength, MaxSequenceLength, s.EmailSequenceLength)
	}
	return nil
}

// CustomerProfile holds the pitch material for one customer classification.
type CustomerProfile struct {
	Label      string
	ValueProps []string
}

// customerProfiles keys match the Lead.Type / Lead.FacilityType vocabulary.
// Unknown classifications fall back to home-care-agency.
var customerProfiles = map[string]CustomerProfile{
	"home-care-agency": {
		Label: "Home Care Agencies",
		ValueProps: []string{
			"More clients and growth",
			"Save 2-4 hours/day on administrative tasks",
			"Better compassionate care delivery",
			"HIPAA secure family communication to build trust",
			"Effective care plans and coordination",
			"Streamlined compliance and training",
		},
	},
	"adult-care-home": {
		Label: "Adult Care Homes",
		ValueProps: []string{
			"Streamlined daily operations and documentation",
			"Reduced caregiver turnover through lighter admin load",
			"Faster state compliance reporting",
			"Family communication that builds trust",
			"Multilingual training for diverse care teams",
		},
	},
	"ccrc": {
		Label: "Continuing Care Retirement Communities",
		ValueProps: []string{
			"Coordinated care across independent, assisted and skilled levels",
			"Occupancy growth through better family engagement",
			"Standardized training across large mixed-skill staff",
			"Census and compliance reporting without spreadsheet overhead",
		},
	},
	"alf": {
		Label: "Assisted Living Facilities",
		ValueProps: []string{
			"Higher occupancy through faster move-in coordination",
			"Care plan consistency across shifts",
			"Reduced onboarding time for new caregivers",
			"Streamlined compliance and survey readiness",
		},
	},
}

// ProfileFor resolves a classification string to its pitch profile,
// falling back to the home-care-agency block for anything unrecognized.
func ProfileFor(customerType string) CustomerProfile {
	if p, ok := customerProfiles[customerType]; ok {
		return p
	}
	return customerProfiles[DefaultCustomerType]
}

// KnownCustomerTypes lists the classifications with a dedicated pitch block.
func KnownCustomerTypes() []string {
	return []string{"home-care-agency", "adult-care-home", "ccrc", "alf"}
}

// BuildResearchPrompt produces the research-and-draft instruction block for a
// lead. It is pure string construction and always succeeds.
func BuildResearchPrompt(lead *models.Lead, settings CampaignSettings) string {
	profile := ProfileFor(lead.CustomerType())

	var props strings.Builder
	for _, vp := range profile.ValueProps {
		props.WriteString("- ")
		props.WriteString(vp)
		props.WriteString("\n")
	}

	return fmt.Sprintf(`You are a sales research specialist for Addis Care, a modern multilingual care training platform.

RESEARCH AND DRAFT COMPLETE EMAILS for this prospect:

Company: %s
Contact: %s (%s)
Email: %s
Type: %s

Key Value Propositions for %s:
%s
RESEARCH INSTRUCTIONS:
1. Research %s online
2. Look for their website, LinkedIn, social media
3. Understand their services, challenges, and values
4. Find specific pain points they might have
5. Look for any multilingual or cultural focus

EMAIL REQUIREMENTS:
- Create %d complete emails
- Use natural, conversational tone
- Reference specific research findings
- Include personalized value propositions
- DO NOT use placeholder text - write complete emails
- Make each email build on the previous one

FORMAT YOUR RESPONSE AS:
Subject: [Email Subject]
[Complete email body with proper formatting]

[Continue for all %d emails]`,
		lead.Company,
		lead.Name, lead.Position,
		lead.Email,
		lead.CustomerType(),
		profile.Label,
		props.String(),
		lead.Company,
		settings.EmailSequenceLength,
		settings.EmailSequenceLength,
	)
}

// BuildCometPrompt wraps free-form research instructions in the fixed
// multi-day research task format.
func BuildCometPrompt(instructions string, lead *models.Lead, campaignDays int) string {
	return fmt.Sprintf(`RESEARCH TASK: %s - %s

CAMPAIGN DURATION: %d days

RESEARCH OBJECTIVES:
1. Company Research:
   - Visit %s's website
   - Research their services, mission, and values
   - Identify their target market and positioning
   - Look for any recent news, press releases, or updates

2. LinkedIn Research:
   - Research %s's LinkedIn profile
   - Understand their role, responsibilities, and background
   - Look for their professional interests and connections
   - Identify any shared connections or mutual interests

3. Industry Research:
   - Research the %s industry
   - Identify common challenges and pain points
   - Look for industry trends and opportunities
   - Research competitors and market positioning

4. Personalization Opportunities:
   - Find specific details about their company culture
   - Look for any multilingual or cultural focus
   - Identify potential pain points from their services
   - Find any recent achievements or milestones

RESEARCH INSTRUCTIONS:
%s

OUTPUT FORMAT:
Please provide a comprehensive research summary including:
- Company overview and key services
- Lead's role and responsibilities
- Industry challenges and opportunities
- Specific personalization opportunities
- Recommended outreach angles
- Any relevant news or updates

This research will be used to create %d personalized emails for a multi-day outreach campaign.`,
		lead.Company, lead.Name,
		campaignDays,
		lead.Company,
		lead.Name,
		lead.CustomerType(),
		instructions,
		campaignDays,
	)
}
