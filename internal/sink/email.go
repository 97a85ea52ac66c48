// Package sink implements the delivery adapters the contact dispatcher
// fans out to. Each adapter is independently configured and independently
// optional: incomplete configuration produces a skipped outcome, never an
// error, and no adapter shares state with another.
package sink

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/resend/resend-go/v2"
	"github.com/wneessen/go-mail"
	"go.uber.org/zap"

	"github.com/clearstack/consulting-api/internal/config"
	"github.com/clearstack/consulting-api/internal/contact"
)

// EmailSink delivers a submission as a transactional email. When a Resend
// API key is configured it is preferred over raw SMTP; either transport
// makes exactly one delivery attempt.
type EmailSink struct {
	smtp         config.SMTPConfig
	resendCfg    config.ResendConfig
	resendClient *resend.Client
	logger       *zap.Logger
}

// NewEmailSink creates the email adapter from its injected configuration.
func NewEmailSink(smtp config.SMTPConfig, resendCfg config.ResendConfig, logger *zap.Logger) *EmailSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &EmailSink{
		smtp:      smtp,
		resendCfg: resendCfg,
		logger:    logger,
	}
	if resendCfg.Complete() {
		s.resendClient = resend.NewClient(resendCfg.APIKey)
	}
	return s
}

func (s *EmailSink) Name() string { return "email" }

// Deliver composes plain-text and HTML renderings of the submission and
// attempts one delivery.
func (s *EmailSink) Deliver(ctx context.Context, sub *contact.Submission) contact.Outcome {
	subject := fmt.Sprintf("New contact request — %s", sub.DisplayName())
	text := renderText(sub)
	htmlBody := renderHTML(sub)

	switch {
	case s.resendClient != nil:
		if err := s.sendViaResend(ctx, subject, text, htmlBody); err != nil {
			return contact.FailedOutcome(err)
		}
	case s.smtp.Complete():
		if err := s.sendViaSMTP(ctx, subject, text, htmlBody); err != nil {
			return contact.FailedOutcome(err)
		}
	default:
		return contact.SkippedOutcome("mail transport configuration missing")
	}

	return contact.Delivered()
}

func (s *EmailSink) sendViaResend(ctx context.Context, subject, text, htmlBody string) error {
	params := &resend.SendEmailRequest{
		From:    fmt.Sprintf("Contact Form <%s>", s.resendCfg.From),
		To:      []string{s.resendCfg.To},
		Subject: subject,
		Html:    htmlBody,
		Text:    text,
		Headers: map[string]string{
			"X-Entity-Ref-ID": uuid.New().String(),
		},
		Tags: []resend.Tag{
			{Name: "category", Value: "contact"},
		},
	}

	sent, err := s.resendClient.Emails.SendWithContext(ctx, params)
	if err != nil {
		s.logger.Error("failed to send contact email via resend",
			zap.Error(err),
			zap.String("to", s.resendCfg.To))
		return errors.Wrap(err, "resend delivery failed")
	}

	s.logger.Info("contact email sent",
		zap.String("transport", "resend"),
		zap.String("email_id", sent.Id),
		zap.String("to", s.resendCfg.To))
	return nil
}

func (s *EmailSink) sendViaSMTP(ctx context.Context, subject, text, htmlBody string) error {
	msg := mail.NewMsg()
	if err := msg.From(s.smtp.From); err != nil {
		return errors.Wrap(err, "invalid sender address")
	}
	if err := msg.To(s.smtp.To); err != nil {
		return errors.Wrap(err, "invalid recipient address")
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, text)
	msg.AddAlternativeString(mail.TypeTextHTML, htmlBody)

	opts := []mail.Option{
		mail.WithPort(s.smtp.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(s.smtp.User),
		mail.WithPassword(s.smtp.Pass),
	}
	if s.smtp.Secure {
		opts = append(opts, mail.WithSSL())
	} else {
		opts = append(opts, mail.WithTLSPortPolicy(mail.TLSOpportunistic))
	}

	client, err := mail.NewClient(s.smtp.Host, opts...)
	if err != nil {
		return errors.Wrap(err, "smtp client setup failed")
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		s.logger.Error("failed to send contact email via smtp",
			zap.Error(err),
			zap.String("host", s.smtp.Host),
			zap.String("to", s.smtp.To))
		return errors.Wrap(err, "smtp delivery failed")
	}

	s.logger.Info("contact email sent",
		zap.String("transport", "smtp"),
		zap.String("to", s.smtp.To))
	return nil
}

func renderText(sub *contact.Submission) string {
	return strings.Join([]string{
		"Name: " + orDash(sub.Name),
		"Email: " + sub.Email,
		"Company: " + orDash(sub.Company),
		"Budget: " + orDash(sub.Budget),
		"Details: " + sub.Details,
	}, "\n")
}

func renderHTML(sub *contact.Submission) string {
	details := strings.ReplaceAll(html.EscapeString(sub.Details), "\n", "<br/>")
	return fmt.Sprintf(`<h2>New contact request</h2>
<p><b>Name:</b> %s</p>
<p><b>Email:</b> %s</p>
<p><b>Company:</b> %s</p>
<p><b>Budget:</b> %s</p>
<p><b>Details:</b><br/>%s</p>`,
		html.EscapeString(orDash(sub.Name)),
		html.EscapeString(sub.Email),
		html.EscapeString(orDash(sub.Company)),
		html.EscapeString(orDash(sub.Budget)),
		details)
}

func orDash(value string) string {
	if value == "" {
		return "-"
	}
	return value
}
