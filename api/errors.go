package api

import (
	"context"
	"errors"
	"net/http"
	"unicode"
	"unicode/utf8"

	"github.com/Domenick1991/triprex/internal/domain"
	"github.com/gin-gonic/gin"
)

// writeError maps domain errors onto a status code and a {"error": ...} body.
// Failed bookings also report the id of the stored row.
func writeError(c *gin.Context, err error) {
	_ = c.Error(err)

	var failed *domain.BookingFailedError
	if errors.As(err, &failed) {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Booking failed: " + failed.Err.Error(),
			"bookingId": failed.BookingID,
		})
		return
	}
	status, message := errorStatus(err)
	c.JSON(status, gin.H{"error": message})
}

func errorStatus(err error) (int, string) {
	var invalid *domain.ValidationError
	switch {
	case errors.As(err, &invalid):
		return http.StatusBadRequest, upperFirst(invalid.Message)
	case errors.Is(err, domain.ErrBookingAlreadyCancelled):
		return http.StatusBadRequest, "Booking already cancelled"
	case errors.Is(err, domain.ErrURLNotAllowed):
		return http.StatusBadRequest, "URL is not allowed"
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest, upperFirst(err.Error())
	case errors.Is(err, domain.ErrBookingNotFound):
		return http.StatusNotFound, "Booking not found"
	case errors.Is(err, domain.ErrNoFlightsFound):
		return http.StatusNotFound, "No flights found on any provider"
	case errors.Is(err, domain.ErrBookingBusy), errors.Is(err, domain.ErrRequestInProgress):
		return http.StatusConflict, upperFirst(err.Error())
	case errors.Is(err, domain.ErrHotelDetailsUnavailable):
		return http.StatusInternalServerError, "Failed to fetch details"
	case errors.Is(err, domain.ErrProviderUnavailable):
		return http.StatusBadGateway, "Provider unavailable, please try again later"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "Request timed out"
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}

func upperFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
