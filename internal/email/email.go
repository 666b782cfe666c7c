package email

import (
	"context"
	"fmt"
	"strings"

	"github.com/Domenick1991/triprex/config"
	"github.com/Domenick1991/triprex/internal/kafka"
	"github.com/wneessen/go-mail"
	"go.uber.org/zap"
)

// Sender delivers booking notifications over SMTP. Without an SMTP host it only logs.
type Sender struct {
	client   *mail.Client
	from     string
	fromName string
	logger   *zap.Logger
}

func NewSender(cfg config.SMTPConfig, logger *zap.Logger) (*Sender, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Sender{from: cfg.From, fromName: cfg.FromName, logger: logger}
	if s.from == "" {
		s.from = "no-reply@triprex.com"
	}
	if s.fromName == "" {
		s.fromName = "TripRex"
	}
	if cfg.Host == "" {
		return s, nil
	}

	client, err := mail.NewClient(cfg.Host,
		mail.WithPort(cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(cfg.Username),
		mail.WithPassword(cfg.Password),
	)
	if err != nil {
		return nil, fmt.Errorf("init smtp client: %w", err)
	}
	s.client = client
	return s, nil
}

func (s *Sender) Send(ctx context.Context, event kafka.BookingEvent) error {
	if event.CustomerEmail == "" {
		s.logger.Debug("skip notification without recipient", zap.String("booking_id", event.BookingID))
		return nil
	}

	subject, body, ok := Compose(event)
	if !ok {
		return nil
	}

	if s.client == nil {
		s.logger.Info("notification (smtp disabled)",
			zap.String("to", event.CustomerEmail),
			zap.String("subject", subject),
			zap.String("booking_id", event.BookingID),
		)
		return nil
	}

	msg := mail.NewMsg()
	if err := msg.FromFormat(s.fromName, s.from); err != nil {
		return fmt.Errorf("set from address: %w", err)
	}
	if err := msg.To(event.CustomerEmail); err != nil {
		return fmt.Errorf("set to address: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, body)

	if err := s.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	s.logger.Info("notification sent", zap.String("booking_id", event.BookingID), zap.String("type", event.Type))
	return nil
}

// Compose renders the subject and plain text body for an event. ok is false for
// events that do not notify the customer.
func Compose(event kafka.BookingEvent) (subject, body string, ok bool) {
	kind := strings.ToLower(event.BookingType)
	if kind == "" {
		kind = "trip"
	}
	ref := event.BookingID
	if len(ref) > 8 {
		ref = ref[:8]
	}

	var b strings.Builder
	greeting := "Hello"
	if event.CustomerName != "" {
		greeting = "Hello " + event.CustomerName
	}
	fmt.Fprintf(&b, "%s,\n\n", greeting)

	switch event.Type {
	case kafka.EventBookingConfirmed:
		subject = fmt.Sprintf("Your %s booking %s is confirmed", kind, ref)
		fmt.Fprintf(&b, "Your %s booking is confirmed.\n", kind)
		if event.ProviderRef != "" {
			fmt.Fprintf(&b, "Confirmation number: %s\n", event.ProviderRef)
		}
		fmt.Fprintf(&b, "Amount charged: %s %s\n", event.Amount, event.Currency)
	case kafka.EventBookingFailed, kafka.EventBookingExpired:
		subject = fmt.Sprintf("Your %s booking %s could not be completed", kind, ref)
		fmt.Fprintf(&b, "We could not complete your %s booking.\n", kind)
		b.WriteString("If you were charged, the payment will be returned.\n")
	case kafka.EventBookingCancelled:
		subject = fmt.Sprintf("Your %s booking %s was cancelled", kind, ref)
		fmt.Fprintf(&b, "Your %s booking has been cancelled.\n", kind)
		if event.PaymentStatus == "refunded" {
			fmt.Fprintf(&b, "A refund of %s %s is on its way.\n", event.Amount, event.Currency)
		}
	default:
		return "", "", false
	}

	fmt.Fprintf(&b, "\nBooking reference: %s\n\nTripRex", event.BookingID)
	return subject, b.String(), true
}
