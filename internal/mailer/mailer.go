// Package mailer delivers assessment reports over SMTP. The message body
// is treated as markdown and rendered into an HTML alternative; report
// links and attachments ride along.
package mailer

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"html"
	"strings"

	"github.com/wneessen/go-mail"
	"github.com/yuin/goldmark"

	"github.com/ebalci/oratio/internal/config"
)

var (
	// ErrNotConfigured means required SMTP settings are missing. The
	// wrapped message names them.
	ErrNotConfigured = errors.New("email service is not configured")
	// ErrInvalidAttachment marks an attachment whose base64 payload does
	// not decode.
	ErrInvalidAttachment = errors.New("invalid attachment provided")
	// ErrSendFailed wraps SMTP delivery failures.
	ErrSendFailed = errors.New("failed to send email")
)

// Attachment is a base64-encoded file to include in the message.
type Attachment struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Data        string `json:"data"`
}

// Message is one outgoing email.
type Message struct {
	To          string
	Subject     string
	Body        string
	Attachments []Attachment
	Links       []string
}

// Mailer sends messages using the given SMTP settings.
type Mailer struct {
	cfg config.EmailSettings
}

// New builds a Mailer.
func New(cfg config.EmailSettings) *Mailer {
	return &Mailer{cfg: cfg}
}

// Send delivers the message and returns its Message-ID. Port 465 uses
// implicit TLS; every other port negotiates STARTTLS.
func (m *Mailer) Send(ctx context.Context, msg Message) (string, error) {
	if missing := m.cfg.MissingFields(); len(missing) > 0 {
		return "", fmt.Errorf("%w: missing %s", ErrNotConfigured, strings.Join(missing, ", "))
	}

	email, err := m.build(msg)
	if err != nil {
		return "", err
	}

	opts := []mail.Option{
		mail.WithPort(m.cfg.SMTPPort),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(m.cfg.SMTPUsername),
		mail.WithPassword(m.cfg.SMTPPassword),
	}
	if m.cfg.SMTPPort == 465 {
		opts = append(opts, mail.WithSSL())
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
	}

	client, err := mail.NewClient(m.cfg.SMTPHost, opts...)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSendFailed, err)
	}

	if err := client.DialAndSendWithContext(ctx, email); err != nil {
		return "", fmt.Errorf("%w: %v", ErrSendFailed, err)
	}
	return email.GetMessageID(), nil
}

// build assembles the MIME message: plain-text body, HTML alternative with
// rendered markdown and the links list, and decoded attachments.
func (m *Mailer) build(msg Message) (*mail.Msg, error) {
	email := mail.NewMsg()
	if err := email.From(m.cfg.DefaultSender); err != nil {
		return nil, fmt.Errorf("invalid sender address: %w", err)
	}
	if err := email.To(msg.To); err != nil {
		return nil, fmt.Errorf("invalid recipient address: %w", err)
	}
	email.Subject(msg.Subject)
	email.SetMessageID()

	email.SetBodyString(mail.TypeTextPlain, msg.Body)

	html, err := renderHTMLBody(msg)
	if err != nil {
		return nil, err
	}
	email.AddAlternativeString(mail.TypeTextHTML, html)

	for _, att := range msg.Attachments {
		data, err := base64.StdEncoding.DecodeString(att.Data)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrInvalidAttachment, att.Filename)
		}
		ctype := att.ContentType
		if !strings.Contains(ctype, "/") {
			ctype = "application/octet-stream"
		}
		if err := email.AttachReader(att.Filename, bytes.NewReader(data), mail.WithFileContentType(mail.ContentType(ctype))); err != nil {
			return nil, fmt.Errorf("attach %s: %w", att.Filename, err)
		}
	}

	return email, nil
}

func renderHTMLBody(msg Message) (string, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(msg.Body), &buf); err != nil {
		return "", fmt.Errorf("render email body: %w", err)
	}

	if len(msg.Links) > 0 {
		buf.WriteString("<ul>")
		for _, link := range msg.Links {
			escaped := html.EscapeString(link)
			fmt.Fprintf(&buf, `<li><a href="%s">%s</a></li>`, escaped, escaped)
		}
		buf.WriteString("</ul>")
	}
	return buf.String(), nil
}
