package booking

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"go.uber.org/zap"
)

// Receipt renders a plain text receipt. The processor status is looked up
// when a payment exists and omitted if the lookup fails.
func (s *BookingService) Receipt(ctx context.Context, id string) (string, error) {
	b, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString("TripRex booking receipt\n\n")
	w := tabwriter.NewWriter(&sb, 0, 0, 2, ' ', 0)
	line := func(label, value string) {
		if value != "" {
			fmt.Fprintf(w, "%s:\t%s\n", label, value)
		}
	}

	line("Booking", b.ID)
	line("Type", string(b.Type))
	line("Status", string(b.Status))
	line("Amount", b.Currency+" "+b.Amount.StringFixed(2))
	line("Payment", string(b.PaymentStatus))
	line("Payment reference", b.PaymentRef)
	if b.PaymentRef != "" && s.payments != nil {
		payment, err := s.payments.Retrieve(ctx, b.PaymentRef)
		if err != nil {
			s.logger.Warn("payment lookup for receipt failed", zap.String("booking_id", b.ID), zap.Error(err))
		} else {
			line("Processor status", payment.Status)
		}
	}
	line("Provider", b.Provider)
	line("Provider reference", b.ProviderRef)
	line("Customer", b.CustomerName)
	line("Email", b.CustomerEmail)
	line("Failure", b.FailureReason)
	if !b.CreatedAt.IsZero() {
		line("Created", b.CreatedAt.UTC().Format(time.RFC3339))
	}
	if err := w.Flush(); err != nil {
		return "", err
	}
	return sb.String(), nil
}
