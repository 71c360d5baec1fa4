package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finance-chatbot-be/internal/dto"
	"finance-chatbot-be/internal/repository/memory"
	"finance-chatbot-be/pkg/events"
)

type stubChatService struct {
	lastUserID  string
	lastMessage string
	reply       string
}

func (s *stubChatService) Chat(ctx context.Context, userID, message string) string {
	s.lastUserID = userID
	s.lastMessage = message
	return s.reply
}

type stubLogger struct{}

func (stubLogger) Debug(module, message string, details map[string]interface{}) {}
func (stubLogger) Info(module, message string, details map[string]interface{})  {}
func (stubLogger) Warn(module, message string, details map[string]interface{})  {}
func (stubLogger) Error(module, message string, details map[string]interface{}) {}
func (stubLogger) Sync() error                                                  { return nil }

func newTestApp(svc *stubChatService, sessions memory.ISessionRepository, usage *events.UsageTracker) *fiber.App {
	app := fiber.New()
	api := app.Group("/api")
	NewChatController(svc, sessions, usage, stubLogger{}).RegisterRoutes(api)
	return app
}

func postChat(t *testing.T, app *fiber.App, body string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/chat/v1/", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func TestChatEndpointReturnsInterpretation(t *testing.T) {
	svc := &stubChatService{reply: "hello there"}
	sessions := memory.NewSessionRepository(30*time.Minute, 5*time.Minute)
	app := newTestApp(svc, sessions, events.NewUsageTracker(1000))

	resp := postChat(t, app, `{"message":"hi","user_id":"u1"}`)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body dto.ChatResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "hello there", body.Interpretation)
	assert.Equal(t, "u1", svc.lastUserID)
	assert.Equal(t, "hi", svc.lastMessage)
}

func TestChatEndpointRejectsInvalidRequests(t *testing.T) {
	svc := &stubChatService{reply: "x"}
	sessions := memory.NewSessionRepository(30*time.Minute, 5*time.Minute)
	app := newTestApp(svc, sessions, events.NewUsageTracker(1000))

	tests := []struct {
		name string
		body string
	}{
		{"missing message", `{"user_id":"u1"}`},
		{"missing user id", `{"message":"hi"}`},
		{"oversized message", `{"message":"` + strings.Repeat("a", 1001) + `","user_id":"u1"}`},
		{"oversized user id", `{"message":"hi","user_id":"` + strings.Repeat("u", 65) + `"}`},
		{"malformed json", `{"message":`},
		{"whitespace-only message", `{"message":"   \n\t ","user_id":"u1"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := postChat(t, app, tt.body)
			defer resp.Body.Close()
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}

	assert.Empty(t, svc.lastMessage, "rejected requests must never reach the chat service")
}

func TestHealthEndpointReportsCounters(t *testing.T) {
	svc := &stubChatService{reply: "x"}
	sessions := memory.NewSessionRepository(30*time.Minute, 5*time.Minute)
	sessions.Get("u1")
	sessions.Get("u2")
	usage := events.NewUsageTracker(1000)
	usage.Allow()
	app := newTestApp(svc, sessions, usage)

	req := httptest.NewRequest(http.MethodGet, "/api/chat/v1/health", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body dto.HealthResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body.Status)
	assert.Equal(t, 2, body.ActiveSessions)
	assert.Equal(t, 1, body.CallsToday)
	assert.Equal(t, 1000, body.DailyCap)
}
