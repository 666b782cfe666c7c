package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/Domenick1991/triprex/internal/domain"
	"github.com/Domenick1991/triprex/internal/logger"
	"github.com/Domenick1991/triprex/internal/payment"
	"github.com/Domenick1991/triprex/internal/service/booking"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	stripeSignatureHeader = "Stripe-Signature"
	maxWebhookBody        = 64 << 10
)

type WebhookParser interface {
	ParseWebhook(payload []byte, signature string) (*payment.WebhookEvent, error)
}

type WebhookHandler struct {
	parser   WebhookParser
	bookings booking.BookingUseCase
}

func NewWebhookHandler(parser WebhookParser, bookings booking.BookingUseCase) *WebhookHandler {
	return &WebhookHandler{parser: parser, bookings: bookings}
}

func (h *WebhookHandler) Register(router *gin.RouterGroup) {
	router.POST("/stripe", h.stripe)
}

// stripe acknowledges every verified event. Events for unknown payments are
// logged and acknowledged so Stripe stops retrying them.
func (h *WebhookHandler) stripe(c *gin.Context) {
	log := logger.FromGin(c)

	payload, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			log.Warn("stripe webhook body too large", zap.Int64("limit", tooLarge.Limit))
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "Request body too large"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	event, err := h.parser.ParseWebhook(payload, c.GetHeader(stripeSignatureHeader))
	switch {
	case errors.Is(err, payment.ErrWebhookSecretMissing):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Webhooks are not configured"})
		return
	case err != nil:
		log.Warn("stripe webhook rejected", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid signature"})
		return
	}

	if event.Status == "" || event.PaymentRef == "" {
		log.Debug("stripe event ignored", zap.String("event_type", event.Type), zap.String("event_id", event.ID))
		c.JSON(http.StatusOK, gin.H{"received": true})
		return
	}

	updated, err := h.bookings.MarkPayment(c.Request.Context(), event.PaymentRef, event.Status)
	switch {
	case errors.Is(err, domain.ErrBookingNotFound):
		log.Warn("stripe event for unknown payment", zap.String("payment_ref", event.PaymentRef), zap.String("event_type", event.Type))
	case err != nil:
		writeError(c, err)
		return
	default:
		log.Info("booking payment updated",
			zap.String("booking_id", updated.ID),
			zap.String("payment_status", string(updated.PaymentStatus)),
			zap.String("event_id", event.ID),
		)
	}
	c.JSON(http.StatusOK, gin.H{"received": true})
}
