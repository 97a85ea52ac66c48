package sink

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/clearstack/consulting-api/internal/client/httpx"
	"github.com/clearstack/consulting-api/internal/config"
	"github.com/clearstack/consulting-api/internal/contact"
)

const (
	notionBaseURL = "https://api.notion.com"
	notionVersion = "2022-06-28"
)

// RecordSink creates one page per submission in a Notion database. The
// page's properties mirror name/email/company/budget plus a creation
// timestamp; the free-text details go into the page body.
type RecordSink struct {
	cfg    config.NotionConfig
	client *httpx.Client
	logger *zap.Logger
	now    func() time.Time
}

// RecordSinkOption configures a RecordSink.
type RecordSinkOption func(*RecordSink)

// WithRecordBaseURL points the sink at a different API endpoint. Used in
// tests to target a local server.
func WithRecordBaseURL(baseURL string) RecordSinkOption {
	return func(s *RecordSink) {
		s.client = newNotionClient(s.cfg, baseURL, s.logger)
	}
}

// WithRecordClock replaces the clock used for the Created property.
func WithRecordClock(now func() time.Time) RecordSinkOption {
	return func(s *RecordSink) {
		if now != nil {
			s.now = now
		}
	}
}

// NewRecordSink creates the record adapter from its injected configuration.
func NewRecordSink(cfg config.NotionConfig, logger *zap.Logger, opts ...RecordSinkOption) *RecordSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &RecordSink{
		cfg:    cfg,
		logger: logger,
		now:    time.Now,
	}
	if cfg.Complete() {
		s.client = newNotionClient(cfg, notionBaseURL, logger)
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func newNotionClient(cfg config.NotionConfig, baseURL string, logger *zap.Logger) *httpx.Client {
	return httpx.NewClient(
		httpx.WithBaseURL(baseURL),
		httpx.WithTimeout(15*time.Second),
		httpx.WithDefaultHeader("Authorization", "Bearer "+cfg.Token),
		httpx.WithDefaultHeader("Notion-Version", notionVersion),
		httpx.WithLogger(logger),
	)
}

func (s *RecordSink) Name() string { return "record" }

// Deliver creates one database page for the submission.
func (s *RecordSink) Deliver(ctx context.Context, sub *contact.Submission) contact.Outcome {
	if !s.cfg.Complete() {
		return contact.SkippedOutcome("workspace token or database id missing")
	}

	body := s.buildPageRequest(sub)

	resp, err := s.client.Post(ctx, "/v1/pages", body)
	if err != nil {
		s.logger.Error("failed to create contact record",
			zap.Error(err),
			zap.String("database_id", s.cfg.DatabaseID))
		return contact.FailedOutcome(errors.Wrap(err, "record creation failed"))
	}
	defer resp.Body.Close()

	s.logger.Info("contact record created", zap.String("database_id", s.cfg.DatabaseID))
	return contact.Delivered()
}

func (s *RecordSink) buildPageRequest(sub *contact.Submission) map[string]interface{} {
	return map[string]interface{}{
		"parent": map[string]interface{}{
			"database_id": s.cfg.DatabaseID,
		},
		"properties": map[string]interface{}{
			"Name": map[string]interface{}{
				"title": []map[string]interface{}{
					{"text": map[string]interface{}{"content": sub.DisplayName()}},
				},
			},
			"Email": map[string]interface{}{
				"email": sub.Email,
			},
			"Company": map[string]interface{}{
				"rich_text": []map[string]interface{}{
					{"text": map[string]interface{}{"content": orDash(sub.Company)}},
				},
			},
			"Budget": map[string]interface{}{
				"rich_text": []map[string]interface{}{
					{"text": map[string]interface{}{"content": orDash(sub.Budget)}},
				},
			},
			"Created": map[string]interface{}{
				"date": map[string]interface{}{"start": s.now().UTC().Format(time.RFC3339)},
			},
		},
		"children": []map[string]interface{}{
			{
				"object": "block",
				"type":   "paragraph",
				"paragraph": map[string]interface{}{
					"rich_text": []map[string]interface{}{
						{"text": map[string]interface{}{"content": sub.Details}},
					},
				},
			},
		},
	}
}
