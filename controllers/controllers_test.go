package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leadreach/models"
	"leadreach/utils"
	"leadreach/worker"
)

type stubLeads struct {
	leads map[string]*models.Lead
	err   error
}

func (s *stubLeads) GetAll() []models.Lead {
	out := make([]models.Lead, 0, len(s.leads))
	for _, l := range s.leads {
		out = append(out, *l)
	}
	return out
}

func (s *stubLeads) GetByID(id string) (*models.Lead, error) {
	if s.err != nil {
		return nil, s.err
	}
	lead, ok := s.leads[id]
	if !ok {
		return nil, nil
	}
	clone := *lead
	return &clone, nil
}

type stubUnsubscriber struct {
	mu     sync.Mutex
	calls  []string
	failOn bool
}

func (s *stubUnsubscriber) MarkUnsubscribed(email, leadID, source string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, email)
	if s.failOn {
		return errors.New("database unavailable")
	}
	return nil
}

type recordingMailer struct {
	mu   sync.Mutex
	sent []utils.OutboundEmail
	err  error
}

func (m *recordingMailer) Send(ctx context.Context, email utils.OutboundEmail) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, email)
	if m.err != nil {
		return "", m.err
	}
	return "provider-1", nil
}

func (m *recordingMailer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

type stubHistory struct {
	logs []models.EmailLog
	err  error
}

func (s *stubHistory) RecentForLead(leadID string, limit int) ([]models.EmailLog, error) {
	return s.logs, s.err
}

func testLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func defaultLeads() *stubLeads {
	return &stubLeads{leads: map[string]*models.Lead{
		"lead-1": {
			ID:      "lead-1",
			Name:    "Dana Reyes",
			Email:   "dana@sunrisecare.com",
			Company: "Sunrise Care",
			Type:    "home-care-agency",
			Status:  "new",
		},
	}}
}

func postJSON(t *testing.T, app *fiber.App, path string, payload interface{}) *http.Response {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, 5000)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	defer resp.Body.Close()
	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestGetLeadsReturnsCollection(t *testing.T) {
	app := fiber.New()
	lc := NewLeadController(defaultLeads(), &stubHistory{}, testLogger())
	app.Get("/api/leads", lc.GetLeads)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/leads", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.EqualValues(t, 1, body["total"])
}

func TestGetLeadsFilters(t *testing.T) {
	app := fiber.New()
	lc := NewLeadController(defaultLeads(), &stubHistory{}, testLogger())
	app.Get("/api/leads", lc.GetLeads)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/leads?search=nomatch", nil))
	require.NoError(t, err)
	body := decodeBody(t, resp)
	assert.EqualValues(t, 0, body["total"])
}

func TestGetLeadNotFound(t *testing.T) {
	app := fiber.New()
	lc := NewLeadController(defaultLeads(), &stubHistory{}, testLogger())
	app.Get("/api/leads/:id", lc.GetLead)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/leads/missing", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestGetLeadEmails(t *testing.T) {
	history := &stubHistory{logs: []models.EmailLog{{
		LeadID:  "lead-1",
		Subject: "Quick question about Sunrise Care",
		Status:  "sent",
	}}}
	app := fiber.New()
	lc := NewLeadController(defaultLeads(), history, testLogger())
	app.Get("/api/leads/:id/emails", lc.GetLeadEmails)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/leads/lead-1/emails", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	data := body["data"].([]interface{})
	require.Len(t, data, 1)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/api/leads/missing/emails", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestGenerateEmailsDefaultsToThree(t *testing.T) {
	app := fiber.New()
	cc := NewComposeController(defaultLeads(), testLogger(), "http://localhost:8080")
	app.Post("/api/generate-emails", cc.GenerateEmails)

	resp := postJSON(t, app, "/api/generate-emails", fiber.Map{"lead_id": "lead-1"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	emails := body["emails"].(map[string]interface{})
	assert.Len(t, emails, 3)
	assert.Contains(t, emails, "Email 1")
	assert.Contains(t, emails, "Email 3")
	assert.Contains(t, body["research_prompt"], "Sunrise Care")
}

func TestGenerateEmailsExplicitCount(t *testing.T) {
	app := fiber.New()
	cc := NewComposeController(defaultLeads(), testLogger(), "http://localhost:8080")
	app.Post("/api/generate-emails", cc.GenerateEmails)

	resp := postJSON(t, app, "/api/generate-emails", fiber.Map{"lead_id": "lead-1", "email_count": 5})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Len(t, body["emails"].(map[string]interface{}), 5)

	resp = postJSON(t, app, "/api/generate-emails", fiber.Map{"lead_id": "lead-1", "email_count": 11})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestGenerateEmailsParsesResearchNotes(t *testing.T) {
	app := fiber.New()
	cc := NewComposeController(defaultLeads(), testLogger(), "http://localhost:8080")
	app.Post("/api/generate-emails", cc.GenerateEmails)

	resp := postJSON(t, app, "/api/generate-emails", fiber.Map{
		"lead_id":        "lead-1",
		"research_notes": "Subject: Custom opener\nCustom body.",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	emails := body["emails"].(map[string]interface{})
	require.Len(t, emails, 1)
	first := emails["Email 1"].(map[string]interface{})
	assert.Equal(t, "Custom opener", first["subject"])
}

func TestGenerateEmailsUnknownLead(t *testing.T) {
	app := fiber.New()
	cc := NewComposeController(defaultLeads(), testLogger(), "http://localhost:8080")
	app.Post("/api/generate-emails", cc.GenerateEmails)

	resp := postJSON(t, app, "/api/generate-emails", fiber.Map{"lead_id": "ghost"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestGenerateCometPrompt(t *testing.T) {
	app := fiber.New()
	cc := NewComposeController(defaultLeads(), testLogger(), "http://localhost:8080")
	app.Post("/api/generate-comet-prompt", cc.GenerateCometPrompt)

	resp := postJSON(t, app, "/api/generate-comet-prompt", fiber.Map{
		"prompt": "Check their new locations.",
		"lead": fiber.Map{
			"name":    "Dana Reyes",
			"company": "Sunrise Care",
		},
		"campaign_days": 5,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	prompt := body["comet_prompt"].(string)
	assert.Contains(t, prompt, "RESEARCH TASK: Sunrise Care - Dana Reyes")
	assert.Contains(t, prompt, "CAMPAIGN DURATION: 5 days")
}

func newOutreachApp(mailer utils.Mailer, leads leadReader) (*fiber.App, *worker.JobRegistry) {
	logger := testLogger()
	sender := &utils.OutreachSender{
		Mailer:    mailer,
		Logger:    logger,
		FromEmail: "nolan@addiscare.ai",
		FromName:  "Nolan Singroy",
		Pacing:    time.Millisecond,
	}
	hub := worker.NewProgressHub()
	jobs := worker.NewJobRegistry(sender, hub, logger)
	oc := NewOutreachController(leads, sender, jobs, logger)

	app := fiber.New()
	app.Post("/api/send-email", oc.SendEmail)
	app.Post("/api/send-all", oc.SendAll)
	app.Get("/api/send-all/:jobID", oc.GetBatch)
	return app, jobs
}

func TestSendEmailHappyPath(t *testing.T) {
	mailer := &recordingMailer{}
	app, _ := newOutreachApp(mailer, defaultLeads())

	resp := postJSON(t, app, "/api/send-email", fiber.Map{
		"lead_id":      "lead-1",
		"subject":      "Quick question about Sunrise Care",
		"html_content": "<html><body><p>hi</p></body></html>",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	result := body["data"].(map[string]interface{})
	assert.Equal(t, "provider-1", result["provider_id"])
	assert.Equal(t, 1, mailer.count())
}

func TestSendEmailValidationIsBadRequest(t *testing.T) {
	mailer := &recordingMailer{}
	leads := defaultLeads()
	leads.leads["lead-1"].Email = "not-an-address"
	app, _ := newOutreachApp(mailer, leads)

	resp := postJSON(t, app, "/api/send-email", fiber.Map{
		"lead_id":      "lead-1",
		"subject":      "s",
		"html_content": "<p>x</p>",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
	assert.Equal(t, 0, mailer.count())
}

func TestSendAllRequiresDeferredConfirmation(t *testing.T) {
	mailer := &recordingMailer{}
	app, _ := newOutreachApp(mailer, defaultLeads())

	resp := postJSON(t, app, "/api/send-all", fiber.Map{
		"lead_id": "lead-1",
		"emails": []fiber.Map{
			{"subject": "s1", "html_content": "<p>1</p>"},
			{"subject": "s2", "html_content": "<p>2</p>", "scheduled_time": "tomorrow 9am"},
		},
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
	assert.Equal(t, 0, mailer.count(), "rejected batches must not start")
}

func TestSendAllRunsBatchInBackground(t *testing.T) {
	mailer := &recordingMailer{}
	app, jobs := newOutreachApp(mailer, defaultLeads())

	resp := postJSON(t, app, "/api/send-all", fiber.Map{
		"lead_id": "lead-1",
		"emails": []fiber.Map{
			{"subject": "s1", "html_content": "<p>1</p>"},
			{"subject": "s2", "html_content": "<p>2</p>", "scheduled_time": "tomorrow 9am"},
		},
		"confirm_deferred": true,
	})
	require.Equal(t, http.StatusAccepted, resp.StatusCode)
	body := decodeBody(t, resp)
	jobID := body["job_id"].(string)
	require.NotEmpty(t, jobID)

	var snapshot worker.JobSnapshot
	require.Eventually(t, func() bool {
		s, ok := jobs.Get(jobID)
		if !ok || s.Status != worker.JobStatusCompleted {
			return false
		}
		snapshot = s
		return true
	}, 2*time.Second, 10*time.Millisecond)

	require.Len(t, snapshot.Results, 2)
	assert.True(t, snapshot.Results[0].OK())
	assert.True(t, snapshot.Results[1].Scheduled)
	assert.Equal(t, 2, mailer.count())

	getResp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/send-all/"+jobID, nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, getResp.StatusCode)
	getResp.Body.Close()
}

func TestGetBatchUnknownJob(t *testing.T) {
	app, _ := newOutreachApp(&recordingMailer{}, defaultLeads())
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/send-all/nope", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestUnsubscribeRequiresEmailAndID(t *testing.T) {
	app := fiber.New()
	stub := &stubUnsubscriber{}
	uc := NewUnsubscribeController(stub, testLogger())
	app.Get("/api/unsubscribe", uc.Unsubscribe)

	for _, target := range []string{
		"/api/unsubscribe",
		"/api/unsubscribe?email=a%40b.com",
		"/api/unsubscribe?id=lead-1",
	} {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, target, nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, target)
		resp.Body.Close()
	}
	assert.Empty(t, stub.calls)
}

func TestUnsubscribeRendersConfirmationEvenWhenWriteFails(t *testing.T) {
	app := fiber.New()
	stub := &stubUnsubscriber{failOn: true}
	uc := NewUnsubscribeController(stub, testLogger())
	app.Get("/api/unsubscribe", uc.Unsubscribe)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/unsubscribe?email=a%40b.com&id=lead-1", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	raw, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Contains(t, string(raw), "unsubscribed")
	assert.Equal(t, []string{"a@b.com"}, stub.calls)
}

func TestUnsubscribePostIsNoOp(t *testing.T) {
	app := fiber.New()
	uc := NewUnsubscribeController(&stubUnsubscriber{}, testLogger())
	app.Post("/api/unsubscribe", uc.UnsubscribePost)

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/api/unsubscribe", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
}

type stubOpens struct {
	mu      sync.Mutex
	opens   [][2]string
	matched bool
}

func (s *stubOpens) RecordOpen(messageID, token string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.opens = append(s.opens, [2]string{messageID, token})
	return s.matched
}

func TestTrackOpenAlwaysServesPixel(t *testing.T) {
	app := fiber.New()
	stub := &stubOpens{matched: false}
	tc := NewTrackController(stub, testLogger())
	app.Get("/track/open/:messageID/:token", tc.TrackOpen)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/track/open/m1/bad-token", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/gif", resp.Header.Get("Content-Type"))

	raw, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, trackingPixel, raw)
	assert.Equal(t, [][2]string{{"m1", "bad-token"}}, stub.opens)
}
