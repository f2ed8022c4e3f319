// Package webapi exposes the HTTP surface: session lifecycle, chat,
// evaluation, reporting, email, audio upload, and runtime settings.
package webapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/ebalci/oratio/internal/audio"
	"github.com/ebalci/oratio/internal/config"
	"github.com/ebalci/oratio/internal/conversation"
	"github.com/ebalci/oratio/internal/evaluation"
	"github.com/ebalci/oratio/internal/mailer"
	"github.com/ebalci/oratio/internal/models"
	"github.com/ebalci/oratio/internal/report"
	"github.com/ebalci/oratio/internal/session"
)

// Version is set at build time or defaults to dev.
var Version = "dev"

// Deps are the collaborators the handlers drive.
type Deps struct {
	Sessions     *session.Store
	Orchestrator *evaluation.Orchestrator
	Renderer     *report.Renderer
	Blob         report.BlobArchiver
	Audio        *audio.Store
	Archive      session.Archiver
}

// Handlers holds the HTTP handler methods for the web API.
type Handlers struct {
	deps Deps
}

// NewHandlers creates Handlers with the given collaborators.
func NewHandlers(deps Deps) *Handlers {
	return &Handlers{deps: deps}
}

// HandleHealth returns a simple health check response.
func (h *Handlers) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   Version,
	})
}

// HandleSessionStart opens a session and returns the opening prompt.
func (h *Handlers) HandleSessionStart(w http.ResponseWriter, r *http.Request) {
	var req SessionStartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	sess := h.deps.Sessions.Create(session.StartParams{
		Mode:            req.Mode,
		DurationMinutes: req.DurationMinutes,
		UserName:        req.UserName,
		UserEmail:       req.UserEmail,
		Consent:         req.Consent,
	})

	greeting := conversation.NextPrompt(nil)
	if err := h.deps.Sessions.AppendMessage(sess.ID, models.ChatMessage{Role: models.RoleAssistant, Content: greeting}); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, SessionStartResponse{
		SessionID:         sess.ID,
		StartedAt:         sess.StartedAt,
		AssistantGreeting: greeting,
		Mode:              sess.Mode,
	})
}

// HandleChat records the participant's turn and returns the next prompt.
func (h *Handlers) HandleChat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.deps.Sessions.AppendMessage(req.SessionID, models.ChatMessage{Role: models.RoleUser, Content: req.UserMessage}); err != nil {
		writeSessionError(w, err)
		return
	}

	sess, err := h.deps.Sessions.Get(req.SessionID)
	if err != nil {
		writeSessionError(w, err)
		return
	}

	reply := conversation.NextPrompt(sess.Messages)
	if err := h.deps.Sessions.AppendMessage(req.SessionID, models.ChatMessage{Role: models.RoleAssistant, Content: reply}); err != nil {
		writeSessionError(w, err)
		return
	}

	turns, err := h.deps.Sessions.IncrementTurn(req.SessionID)
	if err != nil {
		writeSessionError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ChatResponse{
		AssistantMessage: reply,
		Mode:             sess.Mode,
		TurnsCompleted:   turns,
	})
}

// HandleSessionFinish closes the session and archives its transcript when
// archiving is enabled.
func (h *Handlers) HandleSessionFinish(w http.ResponseWriter, r *http.Request) {
	var req SessionFinishRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	sess, err := h.deps.Sessions.Get(req.SessionID)
	if err != nil {
		writeSessionError(w, err)
		return
	}

	duration, err := h.deps.Sessions.DurationSeconds(req.SessionID)
	if err != nil {
		writeSessionError(w, err)
		return
	}

	if settings, err := config.Get(); err == nil && settings.StoreTranscripts && h.deps.Archive.Enabled() {
		if path, err := h.deps.Archive.Write(sess); err != nil {
			slog.Warn("transcript archive failed", "session_id", sess.ID, "error", err)
		} else {
			slog.Debug("transcript archived", "session_id", sess.ID, "path", path)
		}
	}

	writeJSON(w, http.StatusOK, SessionFinishResponse{
		SessionID:       sess.ID,
		Summary:         "Conversation completed. Awaiting evaluation.",
		WordCount:       sess.WordCount(),
		DurationSeconds: duration,
	})
}

// HandleEvaluate runs the dual-standard evaluation over a stored session
// or an inline transcript.
func (h *Handlers) HandleEvaluate(w http.ResponseWriter, r *http.Request) {
	var req EvaluationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var transcript []models.ChatMessage
	switch {
	case req.SessionID != "":
		sess, err := h.deps.Sessions.Get(req.SessionID)
		if err != nil {
			writeSessionError(w, err)
			return
		}
		transcript = sess.Messages
	case len(req.Transcript) > 0:
		transcript = req.Transcript
	default:
		writeError(w, http.StatusBadRequest, "provide session_id or transcript")
		return
	}

	evalReq := evaluation.Request{SessionID: req.SessionID, Transcript: transcript}
	if req.Metadata != nil {
		evalReq.Metadata = *req.Metadata
	}

	result, err := h.deps.Orchestrator.Evaluate(r.Context(), evalReq)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// HandleReport renders and persists the HTML report.
func (h *Handlers) HandleReport(w http.ResponseWriter, r *http.Request) {
	var req ReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	html, url, err := h.deps.Renderer.Persist(&req.Evaluation, req.SessionMetadata)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	resp := ReportResponse{ReportURL: url, HTML: html}
	if h.deps.Blob.Enabled() {
		name := "report_" + req.Evaluation.Session.ID + ".html"
		if blobURL, err := h.deps.Blob.Archive(r.Context(), name, html); err != nil {
			slog.Warn("report blob archive failed", "session_id", req.Evaluation.Session.ID, "error", err)
		} else {
			resp.BlobURL = &blobURL
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandleEmail sends a report email using the current SMTP settings.
func (h *Handlers) HandleEmail(w http.ResponseWriter, r *http.Request) {
	var req EmailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	settings, err := config.Get()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	messageID, err := mailer.New(settings.Email).Send(r.Context(), mailer.Message{
		To:          req.To,
		Subject:     req.Subject,
		Body:        req.Body,
		Attachments: req.Attachments,
		Links:       req.Links,
	})
	if err != nil {
		switch {
		case errors.Is(err, mailer.ErrNotConfigured):
			writeError(w, http.StatusServiceUnavailable, err.Error())
		case errors.Is(err, mailer.ErrInvalidAttachment):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			writeError(w, http.StatusBadGateway, err.Error())
		}
		return
	}

	writeJSON(w, http.StatusOK, EmailResponse{Status: "sent", MessageID: messageID})
}

// HandleSessionAudio stores a consented session recording.
func (h *Handlers) HandleSessionAudio(w http.ResponseWriter, r *http.Request) {
	var req SessionAudioUploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	sess, err := h.deps.Sessions.Get(req.SessionID)
	if err != nil {
		writeSessionError(w, err)
		return
	}

	filename, path, err := h.deps.Audio.Save(r.Context(), sess, audio.Upload{
		AudioBase64: req.AudioBase64,
		MimeType:    req.MimeType,
		ReportDate:  req.ReportDate,
	})
	if err != nil {
		switch {
		case errors.Is(err, audio.ErrConsentRequired):
			writeError(w, http.StatusForbidden, err.Error())
		case errors.Is(err, audio.ErrInvalidPayload):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, audio.ErrConversionFailed):
			writeError(w, http.StatusUnprocessableEntity, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	writeJSON(w, http.StatusOK, SessionAudioUploadResponse{
		Filename:    filename,
		StoredPath:  path,
		ContentType: "audio/mpeg",
	})
}

// HandleJudgeKeyStatus reports whether a judge API key is configured.
func (h *Handlers) HandleJudgeKeyStatus(w http.ResponseWriter, _ *http.Request) {
	settings, err := config.Get()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, JudgeKeyStatus{Configured: settings.JudgeAPIKey != ""})
}

// HandleJudgeKeySet stores a new judge API key.
func (h *Handlers) HandleJudgeKeySet(w http.ResponseWriter, r *http.Request) {
	var req JudgeKeyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.APIKey == "" {
		writeError(w, http.StatusBadRequest, "api_key is required")
		return
	}
	if err := config.SetJudgeAPIKey(req.APIKey); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, JudgeKeyStatus{Configured: true})
}

// HandleEmailConfigStatus returns the current email configuration state.
func (h *Handlers) HandleEmailConfigStatus(w http.ResponseWriter, _ *http.Request) {
	settings, err := config.Get()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, emailStatus(settings))
}

// HandleEmailConfigUpdate applies partial SMTP settings updates.
func (h *Handlers) HandleEmailConfigUpdate(w http.ResponseWriter, r *http.Request) {
	var req EmailConfigUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	update := config.EmailUpdate{
		Provider:      req.Provider,
		SMTPHost:      req.SMTPHost,
		SMTPUsername:  req.SMTPUsername,
		SMTPPassword:  req.SMTPPassword,
		DefaultSender: req.DefaultSender,
		TargetEmail:   req.TargetEmail,
	}
	if req.SMTPPort != nil && *req.SMTPPort != 0 {
		update.SMTPPort = strconv.Itoa(*req.SMTPPort)
	}

	if err := config.UpdateEmailSettings(update); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	settings, err := config.Get()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, emailStatus(settings))
}

func emailStatus(settings *config.Settings) EmailConfigStatus {
	missing := settings.Email.MissingFields()
	if missing == nil {
		missing = []string{}
	}
	return EmailConfigStatus{
		Configured:    settings.Email.Configured(),
		MissingFields: missing,
		Settings: EmailSettingsPublic{
			Provider:      settings.Email.Provider,
			SMTPHost:      settings.Email.SMTPHost,
			SMTPPort:      settings.Email.SMTPPort,
			SMTPUsername:  settings.Email.SMTPUsername,
			DefaultSender: settings.Email.DefaultSender,
		},
		TargetEmail: settings.TargetEmail,
	}
}

// RegisterRoutes registers the API on the mux. Everything except /health
// sits behind bearer auth.
func RegisterRoutes(mux *http.ServeMux, deps Deps, token string) {
	h := NewHandlers(deps)
	mux.HandleFunc("GET /health", h.HandleHealth)

	api := http.NewServeMux()
	api.HandleFunc("POST /api/session/start", h.HandleSessionStart)
	api.HandleFunc("POST /api/chat", h.HandleChat)
	api.HandleFunc("POST /api/session/finish", h.HandleSessionFinish)
	api.HandleFunc("POST /api/evaluate", h.HandleEvaluate)
	api.HandleFunc("POST /api/report", h.HandleReport)
	api.HandleFunc("POST /api/email", h.HandleEmail)
	api.HandleFunc("POST /api/session/audio", h.HandleSessionAudio)
	api.HandleFunc("GET /api/settings/judge", h.HandleJudgeKeyStatus)
	api.HandleFunc("POST /api/settings/judge", h.HandleJudgeKeySet)
	api.HandleFunc("GET /api/settings/email", h.HandleEmailConfigStatus)
	api.HandleFunc("PUT /api/settings/email", h.HandleEmailConfigUpdate)

	mux.Handle("/api/", AuthMiddleware(api, token))
}

// CORSMiddleware wraps a handler with permissive CORS headers.
func CORSMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func writeSessionError(w http.ResponseWriter, err error) {
	if errors.Is(err, session.ErrNotFound) {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	writeError(w, http.StatusInternalServerError, err.Error())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, ErrorResponse{Error: msg, Code: code})
}

