package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/clearstack/consulting-api/internal/contact"
	"github.com/clearstack/consulting-api/internal/middleware"
)

// ContactResponse is the body returned after a dispatch attempt.
type ContactResponse struct {
	OK    bool              `json:"ok"`
	Sinks []contact.Outcome `json:"sinks"`
}

// ValidationErrorResponse is the 400 body for a rejected submission.
type ValidationErrorResponse struct {
	OK     bool                `json:"ok"`
	Errors contact.FieldErrors `json:"errors"`
}

// GenericErrorResponse is the 500 body for failures before dispatch.
type GenericErrorResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

// ContactHandler handles contact form submissions
type ContactHandler struct {
	dispatcher *contact.Dispatcher
	logger     *zap.Logger
}

// NewContactHandler creates a new ContactHandler
func NewContactHandler(dispatcher *contact.Dispatcher, logger *zap.Logger) *ContactHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ContactHandler{dispatcher: dispatcher, logger: logger}
}

// HandleOptions answers the CORS preflight with an empty success body. The
// permissive headers themselves come from the CORS middleware.
func (h *ContactHandler) HandleOptions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{})
}

// SubmitContact validates the request body, fans it out to the configured
// sinks and reports every sink's outcome. The response is 200 when at least
// one sink delivered, 500 when none did, 400 on a schema violation.
func (h *ContactHandler) SubmitContact(c *gin.Context) {
	correlationID := middleware.GetCorrelationID(c)

	var body map[string]interface{}
	if err := c.ShouldBindJSON(&body); err != nil {
		h.logger.Warn("undecodable contact request body",
			zap.String("correlation_id", correlationID),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, GenericErrorResponse{OK: false, Error: err.Error()})
		return
	}

	sub, fieldErrors := contact.ParseSubmission(body)
	if sub == nil {
		h.logger.Info("contact submission rejected",
			zap.String("correlation_id", correlationID),
			zap.Int("invalid_fields", len(fieldErrors)))
		c.JSON(http.StatusBadRequest, ValidationErrorResponse{OK: false, Errors: fieldErrors})
		return
	}

	outcomes, anyOK := h.dispatcher.Dispatch(c.Request.Context(), sub)

	status := http.StatusOK
	if !anyOK {
		status = http.StatusInternalServerError
	}

	h.logger.Info("contact submission dispatched",
		zap.String("correlation_id", correlationID),
		zap.Bool("ok", anyOK),
		zap.Int("sinks", len(outcomes)))

	c.JSON(status, ContactResponse{OK: anyOK, Sinks: outcomes})
}
