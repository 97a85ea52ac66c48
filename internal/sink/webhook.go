package sink

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/clearstack/consulting-api/internal/client/httpx"
	"github.com/clearstack/consulting-api/internal/config"
	"github.com/clearstack/consulting-api/internal/contact"
)

// webhookSource identifies this service in outbound webhook envelopes.
const webhookSource = "it-consulting-site"

// webhookEnvelope is the JSON body posted to the configured webhook URL.
type webhookEnvelope struct {
	Source  string              `json:"source"`
	Type    string              `json:"type"`
	Payload *contact.Submission `json:"payload"`
}

// WebhookSink posts the submission to a generic webhook receiver.
type WebhookSink struct {
	cfg    config.WebhookConfig
	client *httpx.Client
	logger *zap.Logger
}

// NewWebhookSink creates the webhook adapter from its injected configuration.
func NewWebhookSink(cfg config.WebhookConfig, logger *zap.Logger) *WebhookSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WebhookSink{
		cfg: cfg,
		client: httpx.NewClient(
			httpx.WithTimeout(15*time.Second),
			httpx.WithLogger(logger),
		),
		logger: logger,
	}
}

func (s *WebhookSink) Name() string { return "webhook" }

// Deliver issues one POST to the configured URL. A non-2xx response is a
// failed outcome whose message carries the HTTP status.
func (s *WebhookSink) Deliver(ctx context.Context, sub *contact.Submission) contact.Outcome {
	if !s.cfg.Complete() {
		return contact.SkippedOutcome("webhook URL missing")
	}

	envelope := webhookEnvelope{
		Source:  webhookSource,
		Type:    "contact",
		Payload: sub,
	}

	resp, err := s.client.Post(ctx, s.cfg.URL, envelope)
	if err != nil {
		if httpErr, ok := err.(*httpx.HTTPError); ok {
			s.logger.Warn("webhook delivery rejected",
				zap.Int("status", httpErr.StatusCode),
				zap.String("url", s.cfg.URL))
			return contact.FailedOutcome(fmt.Errorf("webhook HTTP %d", httpErr.StatusCode))
		}
		s.logger.Error("webhook delivery failed", zap.Error(err), zap.String("url", s.cfg.URL))
		return contact.FailedOutcome(err)
	}
	defer resp.Body.Close()

	// Anything outside the 2xx range is a failure. The client only errors
	// on 4xx/5xx, so a surfaced redirect status lands here.
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		s.logger.Warn("webhook delivery rejected",
			zap.Int("status", resp.StatusCode),
			zap.String("url", s.cfg.URL))
		return contact.FailedOutcome(fmt.Errorf("webhook HTTP %d", resp.StatusCode))
	}

	s.logger.Info("webhook delivered", zap.String("url", s.cfg.URL))
	return contact.Delivered()
}
