package webapi

import (
	"time"

	"github.com/ebalci/oratio/internal/mailer"
	"github.com/ebalci/oratio/internal/models"
	"github.com/ebalci/oratio/internal/report"
	"github.com/ebalci/oratio/internal/session"
)

// HealthResponse is returned by the health check endpoint.
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
}

// ErrorResponse is the JSON error envelope.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  int    `json:"code"`
}

// SessionStartRequest opens a new interview session.
type SessionStartRequest struct {
	Mode            string          `json:"mode"`
	DurationMinutes int             `json:"duration_minutes"`
	UserName        string          `json:"user_name,omitempty"`
	UserEmail       string          `json:"user_email,omitempty"`
	Consent         session.Consent `json:"consent"`
}

// SessionStartResponse carries the new session id and opening prompt.
type SessionStartResponse struct {
	SessionID         string    `json:"session_id"`
	StartedAt         time.Time `json:"started_at"`
	AssistantGreeting string    `json:"assistant_greeting"`
	Mode              string    `json:"mode"`
}

// ChatRequest submits one participant turn.
type ChatRequest struct {
	SessionID   string `json:"session_id"`
	UserMessage string `json:"user_message"`
}

// ChatResponse returns the interviewer's next prompt.
type ChatResponse struct {
	AssistantMessage string `json:"assistant_message"`
	Mode             string `json:"mode"`
	TurnsCompleted   int    `json:"turns_completed"`
}

// SessionFinishRequest closes a session.
type SessionFinishRequest struct {
	SessionID string `json:"session_id"`
}

// SessionFinishResponse summarizes the finished session.
type SessionFinishResponse struct {
	SessionID       string `json:"session_id"`
	Summary         string `json:"summary"`
	WordCount       int    `json:"word_count"`
	DurationSeconds int    `json:"duration_seconds"`
}

// EvaluationRequest asks for a dual-standard evaluation of a stored
// session or an inline transcript.
type EvaluationRequest struct {
	SessionID  string                     `json:"session_id,omitempty"`
	Transcript []models.ChatMessage       `json:"transcript,omitempty"`
	Metadata   *models.TranscriptMetadata `json:"metadata,omitempty"`
}

// ReportRequest renders an evaluation into the HTML report.
type ReportRequest struct {
	Evaluation      models.DualEvaluationResult `json:"evaluation"`
	SessionMetadata *report.Metadata            `json:"session_metadata,omitempty"`
}

// ReportResponse carries the rendered report and its URL.
type ReportResponse struct {
	ReportURL string  `json:"report_url"`
	BlobURL   *string `json:"blob_url,omitempty"`
	HTML      string  `json:"html"`
}

// EmailRequest sends a report by email.
type EmailRequest struct {
	To          string              `json:"to"`
	Subject     string              `json:"subject"`
	Body        string              `json:"body"`
	Attachments []mailer.Attachment `json:"attachments,omitempty"`
	Links       []string            `json:"links,omitempty"`
	SessionID   string              `json:"session_id,omitempty"`
}

// EmailResponse confirms delivery.
type EmailResponse struct {
	Status    string `json:"status"`
	MessageID string `json:"message_id"`
}

// SessionAudioUploadRequest stores a session recording.
type SessionAudioUploadRequest struct {
	SessionID   string `json:"session_id"`
	AudioBase64 string `json:"audio_base64"`
	MimeType    string `json:"mime_type,omitempty"`
	ReportDate  string `json:"report_date,omitempty"`
}

// SessionAudioUploadResponse names the stored file.
type SessionAudioUploadResponse struct {
	Filename    string `json:"filename"`
	StoredPath  string `json:"stored_path"`
	ContentType string `json:"content_type"`
}

// JudgeKeyRequest sets the judge API key.
type JudgeKeyRequest struct {
	APIKey string `json:"api_key"`
}

// JudgeKeyStatus reports whether a judge key is configured.
type JudgeKeyStatus struct {
	Configured bool `json:"configured"`
}

// EmailSettingsPublic is the non-secret view of the SMTP settings.
type EmailSettingsPublic struct {
	Provider      string `json:"provider"`
	SMTPHost      string `json:"smtp_host,omitempty"`
	SMTPPort      int    `json:"smtp_port"`
	SMTPUsername  string `json:"smtp_username,omitempty"`
	DefaultSender string `json:"default_sender,omitempty"`
}

// EmailConfigStatus reports email readiness and current settings.
type EmailConfigStatus struct {
	Configured    bool                `json:"configured"`
	MissingFields []string            `json:"missing_fields"`
	Settings      EmailSettingsPublic `json:"settings"`
	TargetEmail   string              `json:"target_email,omitempty"`
}

// EmailConfigUpdateRequest updates SMTP settings; empty fields are left
// unchanged.
type EmailConfigUpdateRequest struct {
	Provider      string `json:"provider,omitempty"`
	SMTPHost      string `json:"smtp_host,omitempty"`
	SMTPPort      *int   `json:"smtp_port,omitempty"`
	SMTPUsername  string `json:"smtp_username,omitempty"`
	SMTPPassword  string `json:"smtp_password,omitempty"`
	DefaultSender string `json:"default_sender,omitempty"`
	TargetEmail   string `json:"target_email,omitempty"`
}
