package utils

import (
	"fmt"
	"html/template"
	"strings"

	"leadreach/models"
)

// EmailHeader is the banner block at the top of every outreach email.
type EmailHeader struct {
	Title    string
	Subtitle string
}

// HeaderForLead picks the banner copy by lead classification, then by
// position keywords, with a generic fallback.
func HeaderForLead(lead *models.Lead) EmailHeader {
	company := lead.Company
	position := strings.ToLower(lead.Position)

	switch lead.CustomerType() {
	case "home-care-agency":
		return EmailHeader{
			Title:    "More Clients • Save Time • Better Care",
			Subtitle: fmt.Sprintf("Helping %s grow faster with AI-powered solutions", company),
		}
	case "adult-care-home":
		return EmailHeader{
			Title:    "Streamline Operations • Reduce Costs • Improve Care",
			Subtitle: fmt.Sprintf("Helping %s optimize efficiency and compliance", company),
		}
	}
	switch {
	case strings.Contains(position, "director"):
		return EmailHeader{
			Title:    "Scale Growth • Automate Admin • Enhance Quality",
			Subtitle: fmt.Sprintf("Supporting %s's leadership with proven solutions", company),
		}
	case strings.Contains(position, "owner"):
		return EmailHeader{
			Title:    "Grow Revenue • Save Time • Build Trust",
			Subtitle: fmt.Sprintf("Partnering with %s to scale and succeed", company),
		}
	}
	return EmailHeader{
		Title:    "More Clients • Save Time • Better Care",
		Subtitle: fmt.Sprintf("Supporting %s with AI-powered growth solutions", company),
	}
}

// SubjectForOrdinal returns the subject line for the Nth email in a sequence.
// Ordinals outside 1..10 reuse the opener.
func SubjectForOrdinal(n int, company string) string {
	subjects := map[int]string{
		1:  "Quick question about %s",
		2:  "Following up - %s",
		3:  "Growth opportunity for %s",
		4:  "Quick call about %s",
		5:  "Final follow-up - %s",
		6:  "Partnership opportunity - %s",
		7:  "Innovation for %s",
		8:  "Growth roadmap - %s",
		9:  "Success story - %s",
		10: "Partnership proposal - %s",
	}
	f, ok := subjects[n]
	if !ok {
		f = subjects[1]
	}
	return fmt.Sprintf(f, company)
}

// FirstNameOf returns the first whitespace-separated token of a full name,
// or "there" when the name is blank.
func FirstNameOf(name string) string {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return "there"
	}
	return fields[0]
}

func humanizeType(customerType string) string {
	return strings.ReplaceAll(customerType, "-", " ")
}

// baseBody is the plain-text message for the Nth email in a sequence.
// Ordinals past 3 cycle back to the opener so long sequences stay sendable.
func baseBody(n int, firstName, company, customerType string) string {
	audience := humanizeType(customerType)
	switch n {
	case 2:
		return fmt.Sprintf(`Hi %s,

Quick follow-up on supporting %s's growth.

What's the biggest challenge you're currently facing in terms of client acquisition or operational efficiency?

We've helped similar %s organizations achieve remarkable results, and I'd love to see if we could do the same for you.

When might be a good time for a brief call to discuss how we might support %s's mission?`,
			firstName, company, audience, company)
	case 3:
		return fmt.Sprintf(`Hi %s,

I hope you're having a great week. I wanted to circle back on %s's growth opportunities.

Based on my research, I see specific opportunities where our AI solutions could amplify your existing strengths.

Would you be interested in a brief 15-minute call next week to discuss how we might help %s scale more effectively?

Looking forward to connecting!`,
			firstName, company, company)
	default:
		return fmt.Sprintf(`Hi %s,

I've been researching %s and I'm impressed by your approach to %s.

The challenge I see for organizations like yours: how to grow your client base while maintaining quality care and not burning out your team.

Our AI solutions help %s leaders save 2-4 hours daily on administrative tasks, which translates to:

• More time for client care
• Better team retention
• Increased growth opportunities

Would you be interested in a quick 15-minute call to discuss how we might help %s scale more effectively?

Looking forward to connecting!`,
			firstName, company, audience, audience, company)
	}
}

// enhanceWithResearch rewrites stock phrasing when the research notes carry
// concrete findings. The notes gate on generic research keywords first so
// prompts with no substance leave the message untouched.
func enhanceWithResearch(message, research string) string {
	lower := strings.ToLower(research)
	hasResearch := strings.Contains(lower, "research") ||
		strings.Contains(lower, "findings") ||
		strings.Contains(lower, "company") ||
		strings.Contains(lower, "challenges")
	if !hasResearch {
		return message
	}
	if strings.Contains(lower, "challenge") || strings.Contains(lower, "pain point") {
		message = strings.ReplaceAll(message,
			"The challenge I see for organizations like yours:",
			"Based on my research, the specific challenges I see for your organization include:")
	}
	if strings.Contains(lower, "growth") || strings.Contains(lower, "scale") {
		message = strings.ReplaceAll(message,
			"growth opportunities",
			"growth opportunities and the specific scaling challenges I identified")
	}
	return message
}

var emailTemplate = template.Must(template.New("outreach").Parse(`<!DOCTYPE html>
<html>
<head>
    <meta charset="utf-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>{{.Subject}}</title>
</head>
<body style="margin: 0; padding: 0; font-family: 'Segoe UI', Tahoma, Geneva, Verdana, sans-serif; background-color: #f8f9fa;">
    <div style="max-width: 600px; margin: 0 auto; background-color: #ffffff; box-shadow: 0 4px 6px rgba(0, 0, 0, 0.1);">
        <div style="background: linear-gradient(135deg, #f8f9fa 0%, #e9ecef 100%); padding: 30px; text-align: center;">
            <h1 style="color: #666; margin: 0; font-size: 20px; font-weight: 300;">{{.HeaderTitle}}</h1>
            <p style="color: #888; margin: 5px 0 0 0; font-size: 14px; font-weight: 300;">{{.HeaderSubtitle}}</p>
        </div>
        <div style="padding: 40px 30px; line-height: 1.8; color: #333; font-size: 16px;">
            <p style="margin: 0 0 20px 0;">Hi <strong>{{.FirstName}}</strong>,</p>
            <div style="height: 20px;"></div>
            {{.Content}}
        </div>
        <div style="background-color: #f8f9fa; padding: 30px; border-top: 1px solid #e9ecef;">
            <div style="margin-bottom: 20px;">
                <p style="margin: 0; color: #333; font-size: 16px;">Cheers,</p>
                <p style="margin: 5px 0 0 0; color: #333; font-size: 16px; font-weight: 500;"><strong>Nolan Singroy</strong></p>
                <p style="margin: 5px 0 0 0; color: #666; font-size: 14px;">Nolan Singroy, <a href="https://www.addiscare.ai" style="color: #667eea; text-decoration: none;">Addis Care</a></p>
            </div>
            <div style="margin-bottom: 20px;">
                <a href="https://www.addiscare.ai" style="color: #667eea; text-decoration: none; font-size: 14px; padding: 8px 12px; border: 1px solid #667eea; border-radius: 6px;">Website</a>
                <a href="https://www.linkedin.com/in/nolansingroy" style="color: #667eea; text-decoration: none; font-size: 14px; padding: 8px 12px; border: 1px solid #667eea; border-radius: 6px;">LinkedIn</a>
                <a href="https://calendar.app.google/BvAkPiFnGpoyXKnh7" style="color: #667eea; text-decoration: none; font-size: 14px; padding: 8px 12px; border: 1px solid #667eea; border-radius: 6px;">Schedule Time Now</a>
            </div>
        </div>
        <div style="background-color: #333; color: white; padding: 20px; text-align: center; font-size: 12px;">
            <p style="margin: 0;">&copy; 2025 <a href="https://www.addiscare.ai" style="color: #667eea; text-decoration: none;">Addis Care</a>. All rights reserved.</p>
            <p style="margin: 5px 0 0 0; opacity: 0.8;">Modern multilingual care training platform</p>
            <div style="margin-top: 15px; padding-top: 15px; border-top: 1px solid #555;">
                <p style="margin: 0; opacity: 0.7; font-size: 11px;">
                    You're receiving this email because you're a potential customer of <a href="https://www.addiscare.ai" style="color: #667eea; text-decoration: none;">Addis Care</a>.
                </p>
                <p style="margin: 15px 0 0 0;">
                    <a href="{{.UnsubscribeURL}}" style="color: #667eea; text-decoration: none; font-size: 11px;">Unsubscribe from emails</a>
                </p>
            </div>
        </div>
    </div>
</body>
</html>`))

type emailTemplateData struct {
	Subject        string
	HeaderTitle    string
	HeaderSubtitle string
	FirstName      string
	Content        template.HTML
	UnsubscribeURL string
}

// renderBodyHTML converts a plain-text message to paragraph markup. The
// greeting paragraph is dropped because the template carries its own, and
// bullet runs become real lists.
func renderBodyHTML(message string) template.HTML {
	var parts []string
	for _, paragraph := range strings.Split(message, "\n\n") {
		paragraph = strings.TrimSpace(paragraph)
		if paragraph == "" || strings.HasPrefix(paragraph, "Hi ") {
			continue
		}
		if strings.Contains(paragraph, "•") {
			lines := strings.Split(paragraph, "\n")
			var intro string
			var bullets []string
			for i, line := range lines {
				line = strings.TrimSpace(line)
				if line == "" {
					continue
				}
				if strings.HasPrefix(line, "•") {
					bullets = append(bullets, strings.TrimSpace(strings.TrimPrefix(line, "•")))
				} else if i == 0 {
					intro = line
				}
			}
			if len(bullets) > 0 {
				var b strings.Builder
				fmt.Fprintf(&b, `<p style="margin: 0 0 20px 0;">%s</p>`, template.HTMLEscapeString(intro))
				b.WriteString(`<ul style="margin: 0 0 20px 0; padding-left: 20px;">`)
				for _, item := range bullets {
					fmt.Fprintf(&b, `<li style="margin: 0 0 10px 0; color: #333;">%s</li>`, template.HTMLEscapeString(item))
				}
				b.WriteString(`</ul>`)
				parts = append(parts, b.String())
				continue
			}
		}
		parts = append(parts, fmt.Sprintf(`<p style="margin: 0 0 20px 0;">%s</p>`,
			template.HTMLEscapeString(paragraph)))
	}
	return template.HTML(strings.Join(parts, "\n            "))
}

// RenderHTML produces the full branded HTML document for one draft.
func RenderHTML(lead *models.Lead, subject, message, unsubscribeURL string) (string, error) {
	header := HeaderForLead(lead)
	var out strings.Builder
	err := emailTemplate.Execute(&out, emailTemplateData{
		Subject:        subject,
		HeaderTitle:    header.Title,
		HeaderSubtitle: header.Subtitle,
		FirstName:      FirstNameOf(lead.Name),
		Content:        renderBodyHTML(message),
		UnsubscribeURL: unsubscribeURL,
	})
	if err != nil {
		return "", fmt.Errorf("render email template: %w", err)
	}
	return out.String(), nil
}

// RenderComponentSource emits a React Email component mirroring the HTML
// rendering, kept as an export artifact for frontend preview tooling.
func RenderComponentSource(n int, lead *models.Lead, message string) string {
	return fmt.Sprintf(`import { Body, Container, Head, Heading, Html, Link, Markdown, Preview, Section, Text } from '@react-email/components';
import * as React from 'react';

export const EmailTemplate%d = ({
  firstName = '%s',
  company = '%s',
  customerType = '%s',
}) => (
  <Html>
    <Head />
    <Preview>Addis Care</Preview>
    <Body>
      <Container>
        <Section>
          <Heading>%s</Heading>
          <Text>%s</Text>
        </Section>
        <Section>
          <Text>Hi {firstName},</Text>
          <Markdown>{%s}</Markdown>
        </Section>
        <Section>
          <Text>Cheers,</Text>
          <Text><strong>Nolan Singroy</strong></Text>
          <Link href="https://www.addiscare.ai">Addis Care</Link>
        </Section>
      </Container>
    </Body>
  </Html>
);

export default EmailTemplate%d;`,
		n,
		lead.Name, lead.Company, lead.CustomerType(),
		HeaderForLead(lead).Title,
		HeaderForLead(lead).Subtitle,
		componentMessageLiteral(message),
		n,
	)
}

// componentMessageLiteral embeds the message as a JS template literal with
// the greeting stripped, matching renderBodyHTML.
func componentMessageLiteral(message string) string {
	var kept []string
	for _, paragraph := range strings.Split(message, "\n\n") {
		if p := strings.TrimSpace(paragraph); p != "" && !strings.HasPrefix(p, "Hi ") {
			kept = append(kept, p)
		}
	}
	literal := strings.Join(kept, "\n\n")
	literal = strings.ReplaceAll(literal, "`", "'")
	return "`" + literal + "`"
}

// ComposeDrafts builds the full email sequence for a lead. Research notes
// that contain "Subject:" blocks are parsed and used as-is; otherwise the
// stock sequence is synthesized and enhanced with whatever the notes hold.
func ComposeDrafts(lead *models.Lead, settings CampaignSettings, research, unsubscribeURL string) ([]EmailDraft, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	n := settings.EmailSequenceLength
	firstName := FirstNameOf(lead.Name)

	drafts := ParseEmails(research, n)
	if len(drafts) == 0 {
		drafts = make([]EmailDraft, 0, n)
		for i := 1; i <= n; i++ {
			body := enhanceWithResearch(baseBody(i, firstName, lead.Company, lead.CustomerType()), research)
			drafts = append(drafts, EmailDraft{
				Key:     DraftKey(i),
				Subject: SubjectForOrdinal(i, lead.Company),
				Body:    body,
			})
		}
	}

	for i := range drafts {
		html, err := RenderHTML(lead, drafts[i].Subject, drafts[i].Body, unsubscribeURL)
		if err != nil {
			return nil, err
		}
		drafts[i].HTML = html
		drafts[i].ComponentSource = RenderComponentSource(i+1, lead, drafts[i].Body)
	}
	return drafts, nil
}
