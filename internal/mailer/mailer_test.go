package mailer

import (
	"bytes"
	"context"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ebalci/oratio/internal/config"
)

func configuredSettings() config.EmailSettings {
	return config.EmailSettings{
		Provider:      "smtp",
		SMTPHost:      "smtp.example.com",
		SMTPPort:      587,
		SMTPUsername:  "mailer",
		SMTPPassword:  "hunter2",
		DefaultSender: "noreply@example.com",
	}
}

func TestSendNotConfigured(t *testing.T) {
	m := New(config.EmailSettings{Provider: "smtp", SMTPPort: 587})

	_, err := m.Send(context.Background(), Message{To: "user@example.com", Subject: "Report"})
	require.ErrorIs(t, err, ErrNotConfigured)
	assert.Contains(t, err.Error(), "smtp_host")
	assert.Contains(t, err.Error(), "default_sender")
}

func TestBuildMessage(t *testing.T) {
	m := New(configuredSettings())

	email, err := m.build(Message{
		To:      "learner@example.com",
		Subject: "Your speaking assessment",
		Body:    "Your **report** is attached.",
		Links:   []string{"http://localhost:5173/reports/report_x.html"},
		Attachments: []Attachment{
			{
				Filename:    "report.html",
				ContentType: "text/html",
				Data:        base64.StdEncoding.EncodeToString([]byte("<html></html>")),
			},
		},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, email.GetMessageID())

	var buf bytes.Buffer
	_, err = email.WriteTo(&buf)
	require.NoError(t, err)
	raw := buf.String()

	assert.Contains(t, raw, "From: <noreply@example.com>")
	assert.Contains(t, raw, "To: <learner@example.com>")
	assert.Contains(t, raw, "Subject: Your speaking assessment")
	// Markdown body renders into the HTML alternative.
	assert.Contains(t, raw, "<strong>report</strong>")
	assert.Contains(t, raw, "report_x.html")
	assert.Contains(t, raw, `filename="report.html"`)
}

func TestBuildBadAttachment(t *testing.T) {
	m := New(configuredSettings())

	_, err := m.build(Message{
		To:          "learner@example.com",
		Subject:     "Report",
		Body:        "hi",
		Attachments: []Attachment{{Filename: "x.bin", ContentType: "application/pdf", Data: "%%% not base64 %%%"}},
	})
	require.ErrorIs(t, err, ErrInvalidAttachment)
	assert.Contains(t, err.Error(), "x.bin")
}

func TestBuildBadRecipient(t *testing.T) {
	m := New(configuredSettings())

	_, err := m.build(Message{To: "not-an-address", Subject: "Report", Body: "hi"})
	require.Error(t, err)
}

func TestRenderHTMLBodyEscapesLinks(t *testing.T) {
	body, err := renderHTMLBody(Message{
		Body:  "report attached",
		Links: []string{`http://example.com/r?a=1&b="<x>`},
	})
	require.NoError(t, err)
	assert.Contains(t, body, `href="http://example.com/r?a=1&amp;b=&#34;&lt;x&gt;"`)
	assert.NotContains(t, body, `b="<x>`)
}

func TestRenderHTMLBodyWithoutLinks(t *testing.T) {
	html, err := renderHTMLBody(Message{Body: "plain sentence"})
	require.NoError(t, err)
	assert.Contains(t, html, "plain sentence")
	assert.NotContains(t, html, "<ul>")
}
