package utils

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestResendMailerSend(t *testing.T) {
	var gotAuth string
	var gotBody resendRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/emails", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &gotBody)
		_ = json.NewEncoder(w).Encode(map[string]string{"id": "re_123"})
	}))
	defer srv.Close()

	m := NewResendMailer(srv.URL, "key-abc", discardLogger())
	id, err := m.Send(context.Background(), OutboundEmail{
		FromEmail:     "nolan@addiscare.ai",
		FromName:      "Nolan Singroy",
		To:            "dana@sunrisecare.com",
		Subject:       "hello",
		HTML:          "<p>hi</p>",
		Headers:       map[string]string{"X-Email-Type": "outreach"},
		ScheduledTime: "in 1 hour",
	})
	require.NoError(t, err)

	assert.Equal(t, "re_123", id)
	assert.Equal(t, "Bearer key-abc", gotAuth)
	assert.Equal(t, "Nolan Singroy <nolan@addiscare.ai>", gotBody.From)
	assert.Equal(t, []string{"dana@sunrisecare.com"}, gotBody.To)
	assert.Equal(t, "in 1 hour", gotBody.ScheduledAt)
	assert.Equal(t, "outreach", gotBody.Headers["X-Email-Type"])
}

func TestResendMailerMissingKeyFailsBeforeNetwork(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	m := NewResendMailer(srv.URL, "", discardLogger())
	_, err := m.Send(context.Background(), OutboundEmail{To: "a@b.com"})
	require.Error(t, err)
	assert.False(t, called)
}

func TestResendMailerErrorMessages(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{"message field", 422, `{"message":"Invalid from address"}`, "Invalid from address"},
		{"error field", 400, `{"error":"missing subject"}`, "missing subject"},
		{"unparseable body", 503, `<html>gateway</html>`, "resend API error: 503 Service Unavailable"},
		{"empty error json", 429, `{}`, "resend API error: 429 Too Many Requests"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			m := NewResendMailer(srv.URL, "key", discardLogger())
			_, err := m.Send(context.Background(), OutboundEmail{To: "a@b.com"})
			require.Error(t, err)
			assert.Equal(t, tc.want, err.Error())
		})
	}
}

func TestResendMailerSynthesizesIDWhenMissing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	m := NewResendMailer(srv.URL, "key", discardLogger())
	id, err := m.Send(context.Background(), OutboundEmail{To: "a@b.com"})
	require.NoError(t, err)
	assert.NotEmpty(t, id)
}
