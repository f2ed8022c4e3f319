package webapi

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/ebalci/oratio/internal/audio"
	"github.com/ebalci/oratio/internal/config"
	"github.com/ebalci/oratio/internal/evaluation"
	"github.com/ebalci/oratio/internal/models"
	"github.com/ebalci/oratio/internal/report"
	"github.com/ebalci/oratio/internal/scoring"
	"github.com/ebalci/oratio/internal/session"
	"github.com/ebalci/oratio/internal/standards"
)

const testToken = "test-token"

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	deps := Deps{
		Sessions:     session.NewStore(),
		Orchestrator: evaluation.New(standards.NewRegistry(), &scoring.HeuristicScorer{}),
		Renderer:     report.NewRenderer(language.English, "http://localhost:5173", t.TempDir()),
		Audio:        audio.NewStore(t.TempDir()),
	}

	mux := http.NewServeMux()
	RegisterRoutes(mux, deps, testToken)

	srv := httptest.NewServer(CORSMiddleware(mux))
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, srv *httptest.Server, method, path, token string, body any, out any) int {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, srv.URL+path, reader)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close() //nolint:errcheck

	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func TestHealthNeedsNoAuth(t *testing.T) {
	srv := newTestServer(t)

	var health HealthResponse
	code := doJSON(t, srv, http.MethodGet, "/health", "", nil, &health)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", health.Status)
}

func TestBearerAuth(t *testing.T) {
	srv := newTestServer(t)

	code := doJSON(t, srv, http.MethodPost, "/api/session/start", "", SessionStartRequest{}, nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	code = doJSON(t, srv, http.MethodPost, "/api/session/start", "wrong-token", SessionStartRequest{}, nil)
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestSessionFlow(t *testing.T) {
	srv := newTestServer(t)

	var started SessionStartResponse
	code := doJSON(t, srv, http.MethodPost, "/api/session/start", testToken, SessionStartRequest{
		Mode:     session.ModeText,
		UserName: "Ada",
		Consent:  session.Consent{Granted: true},
	}, &started)
	require.Equal(t, http.StatusOK, code)
	require.NotEmpty(t, started.SessionID)
	assert.Contains(t, started.AssistantGreeting, "introduce yourself")

	var chat ChatResponse
	code = doJSON(t, srv, http.MethodPost, "/api/chat", testToken, ChatRequest{
		SessionID:   started.SessionID,
		UserMessage: "Hi, I am Ada and I build embedded systems for wind turbines.",
	}, &chat)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 1, chat.TurnsCompleted)
	assert.NotEmpty(t, chat.AssistantMessage)

	var finished SessionFinishResponse
	code = doJSON(t, srv, http.MethodPost, "/api/session/finish", testToken, SessionFinishRequest{SessionID: started.SessionID}, &finished)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, started.SessionID, finished.SessionID)
	assert.Equal(t, 12, finished.WordCount)
}

func TestChatUnknownSession(t *testing.T) {
	srv := newTestServer(t)

	code := doJSON(t, srv, http.MethodPost, "/api/chat", testToken, ChatRequest{SessionID: "ghost", UserMessage: "hi"}, nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestEvaluateValidation(t *testing.T) {
	srv := newTestServer(t)

	code := doJSON(t, srv, http.MethodPost, "/api/evaluate", testToken, EvaluationRequest{}, nil)
	assert.Equal(t, http.StatusBadRequest, code)

	code = doJSON(t, srv, http.MethodPost, "/api/evaluate", testToken, EvaluationRequest{SessionID: "ghost"}, nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestEvaluateInlineTranscript(t *testing.T) {
	srv := newTestServer(t)

	var result models.DualEvaluationResult
	code := doJSON(t, srv, http.MethodPost, "/api/evaluate", testToken, EvaluationRequest{
		Transcript: []models.ChatMessage{
			{Role: models.RoleAssistant, Content: "Tell me about your work."},
			{Role: models.RoleUser, Content: "I maintain a distributed ingestion pipeline and spend most days improving its reliability."},
		},
	}, &result)
	require.Equal(t, http.StatusOK, code)

	require.Len(t, result.Standards, 2)
	assert.Equal(t, "toefl", result.Standards[0].StandardID)
	assert.Equal(t, "ielts", result.Standards[1].StandardID)
	assert.NotEmpty(t, result.ConsensusCEFR)
}

func TestReportEndpoint(t *testing.T) {
	srv := newTestServer(t)

	overall := 2.8
	cefr := "B2"
	var resp ReportResponse
	code := doJSON(t, srv, http.MethodPost, "/api/report", testToken, ReportRequest{
		Evaluation: models.DualEvaluationResult{
			Session: models.SessionInfo{ID: "sess-r"},
			Standards: []models.StandardEvaluation{{
				StandardID: "toefl", Label: "TOEFL iBT Speaking",
				Overall: &overall, CEFR: &cefr,
				Criteria: map[string]models.CriterionAssessment{},
				Status:   models.StatusOK,
			}},
			Crosswalk:     models.CrosswalkSummary{ConsensusCEFR: "B2", Notes: "TOEFL iBT Speaking 2.8≈B2; consistent."},
			SessionID:     "sess-r",
			ConsensusCEFR: "B2",
		},
	}, &resp)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, resp.ReportURL, "/reports/report_sess-r_")
	assert.Contains(t, resp.HTML, "TOEFL 2.80/4 (~B2)")
	assert.Nil(t, resp.BlobURL)
}

func TestEmailNotConfigured(t *testing.T) {
	config.Reset()
	t.Cleanup(config.Reset)

	srv := newTestServer(t)

	code := doJSON(t, srv, http.MethodPost, "/api/email", testToken, EmailRequest{
		To: "learner@example.com", Subject: "Report", Body: "hi",
	}, nil)
	assert.Equal(t, http.StatusServiceUnavailable, code)
}

func TestJudgeKeySettings(t *testing.T) {
	config.EnvFilePath = filepath.Join(t.TempDir(), ".env")
	t.Cleanup(func() { config.EnvFilePath = ".env" })
	t.Setenv("JUDGE_API_KEY", "")
	config.Reset()
	t.Cleanup(config.Reset)

	srv := newTestServer(t)

	var status JudgeKeyStatus
	code := doJSON(t, srv, http.MethodGet, "/api/settings/judge", testToken, nil, &status)
	require.Equal(t, http.StatusOK, code)
	assert.False(t, status.Configured)

	code = doJSON(t, srv, http.MethodPost, "/api/settings/judge", testToken, JudgeKeyRequest{}, nil)
	assert.Equal(t, http.StatusBadRequest, code)

	code = doJSON(t, srv, http.MethodPost, "/api/settings/judge", testToken, JudgeKeyRequest{APIKey: "sk-new"}, &status)
	require.Equal(t, http.StatusOK, code)
	assert.True(t, status.Configured)

	code = doJSON(t, srv, http.MethodGet, "/api/settings/judge", testToken, nil, &status)
	require.Equal(t, http.StatusOK, code)
	assert.True(t, status.Configured)
}

func TestEmailSettingsUpdate(t *testing.T) {
	config.EnvFilePath = filepath.Join(t.TempDir(), ".env")
	t.Cleanup(func() { config.EnvFilePath = ".env" })
	for _, key := range []string{"SMTP_HOST", "SMTP_USERNAME", "SMTP_PASSWORD", "EMAIL_DEFAULT_SENDER", "TARGET_EMAIL"} {
		t.Setenv(key, "")
	}
	config.Reset()
	t.Cleanup(config.Reset)

	srv := newTestServer(t)

	port := 465
	var status EmailConfigStatus
	code := doJSON(t, srv, http.MethodPut, "/api/settings/email", testToken, EmailConfigUpdateRequest{
		SMTPHost:      "smtp.example.com",
		SMTPPort:      &port,
		SMTPUsername:  "mailer",
		SMTPPassword:  "hunter2",
		DefaultSender: "noreply@example.com",
	}, &status)
	require.Equal(t, http.StatusOK, code)
	assert.True(t, status.Configured)
	assert.Empty(t, status.MissingFields)
	assert.Equal(t, 465, status.Settings.SMTPPort)
	// The secret never appears in the public view.
	assert.Equal(t, "mailer", status.Settings.SMTPUsername)
}

func TestAudioConsentRequired(t *testing.T) {
	srv := newTestServer(t)

	var started SessionStartResponse
	code := doJSON(t, srv, http.MethodPost, "/api/session/start", testToken, SessionStartRequest{}, &started)
	require.Equal(t, http.StatusOK, code)

	code = doJSON(t, srv, http.MethodPost, "/api/session/audio", testToken, SessionAudioUploadRequest{
		SessionID:   started.SessionID,
		AudioBase64: "aGVsbG8=",
		MimeType:    "audio/mpeg",
	}, nil)
	assert.Equal(t, http.StatusForbidden, code)
}

func TestCORSPreflight(t *testing.T) {
	srv := newTestServer(t)

	req, err := http.NewRequest(http.MethodOptions, srv.URL+"/api/chat", nil)
	require.NoError(t, err)
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close() //nolint:errcheck

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}
