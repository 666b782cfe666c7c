package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/Domenick1991/triprex/internal/domain"
	"github.com/Domenick1991/triprex/internal/service/booking"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"
)

const idempotencyHeader = "Idempotency-Key"

type BookingHandler struct {
	service booking.BookingUseCase
}

type bookFlightRequest struct {
	FlightOffer   json.RawMessage   `json:"flightOffer"`
	Travelers     []travelerRequest `json:"travelers"`
	Contact       *contactRequest   `json:"contact"`
	PaymentMethod string            `json:"paymentMethod"`
}

// travelerRequest accepts flat names as well as the provider's nested
// {"name": {"firstName", "lastName"}} shape.
type travelerRequest struct {
	ID          string       `json:"id"`
	FirstName   string       `json:"firstName"`
	LastName    string       `json:"lastName"`
	Name        *nameRequest `json:"name"`
	DateOfBirth string       `json:"dateOfBirth"`
	Gender      string       `json:"gender"`
	Email       string       `json:"email"`
	Phone       string       `json:"phone"`
}

type nameRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

type contactRequest struct {
	EmailAddress string         `json:"emailAddress"`
	Email        string         `json:"email"`
	Phone        string         `json:"phone"`
	Phones       []phoneRequest `json:"phones"`
	Name         string         `json:"name"`
}

type phoneRequest struct {
	CountryCallingCode string `json:"countryCallingCode"`
	Number             string `json:"number"`
}

type bookHotelRequest struct {
	OfferID         string          `json:"offerId"`
	Guests          []domain.Guest  `json:"guests"`
	Payment         *paymentRequest `json:"payment"`
	SpecialRequests string          `json:"specialRequests"`
}

type paymentRequest struct {
	Vendor     string `json:"vendor"`
	VendorCode string `json:"vendorCode"`
	CardNumber string `json:"cardNumber"`
	ExpiryDate string `json:"expiryDate"`
	HolderName string `json:"holderName"`
}

type bookingResult struct {
	ID               string          `json:"id"`
	BookingReference string          `json:"bookingReference,omitempty"`
	Status           string          `json:"status"`
	PaymentStatus    string          `json:"paymentStatus"`
	TotalAmount      decimal.Decimal `json:"totalAmount"`
	Currency         string          `json:"currency"`
	PaymentIntentID  string          `json:"paymentIntentId,omitempty"`
	Travelers        int             `json:"travelers,omitempty"`
	Itinerary        json.RawMessage `json:"itinerary,omitempty"`
	HotelName        string          `json:"hotelName,omitempty"`
	Guests           int             `json:"guests,omitempty"`
}

func NewBookingHandler(service booking.BookingUseCase) *BookingHandler {
	return &BookingHandler{service: service}
}

// Register mounts the booking routes on the /api group.
func (h *BookingHandler) Register(router *gin.RouterGroup) {
	router.POST("/flights/book", h.bookFlight)
	router.POST("/hotels/book", h.bookHotel)
	router.GET("/bookings/:id", h.get)
	router.DELETE("/bookings/:id", h.cancel)
}

func (h *BookingHandler) bookFlight(c *gin.Context) {
	var req bookFlightRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": bindMessage(err)})
		return
	}
	if isNull(req.FlightOffer) || len(req.Travelers) == 0 || req.Contact == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields: flightOffer, travelers, contact"})
		return
	}

	travelers := make([]domain.Traveler, 0, len(req.Travelers))
	for _, t := range req.Travelers {
		travelers = append(travelers, t.toDomain())
	}

	created, err := h.service.BookFlight(c.Request.Context(), booking.BookFlightInput{
		FlightOffer:    req.FlightOffer,
		Travelers:      travelers,
		Contact:        req.Contact.toDomain(),
		PaymentMethod:  req.PaymentMethod,
		IdempotencyKey: strings.TrimSpace(c.GetHeader(idempotencyHeader)),
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "booking": newBookingResult(created)})
}

func (h *BookingHandler) bookHotel(c *gin.Context) {
	var req bookHotelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": bindMessage(err)})
		return
	}
	if strings.TrimSpace(req.OfferID) == "" || len(req.Guests) == 0 || req.Payment == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields: offerId, guests, payment"})
		return
	}

	vendor := req.Payment.Vendor
	if vendor == "" {
		vendor = req.Payment.VendorCode
	}
	created, err := h.service.BookHotel(c.Request.Context(), booking.BookHotelInput{
		OfferID: req.OfferID,
		Guests:  req.Guests,
		Payment: domain.CardPayment{
			Vendor:     vendor,
			CardNumber: req.Payment.CardNumber,
			ExpiryDate: req.Payment.ExpiryDate,
			HolderName: req.Payment.HolderName,
		},
		SpecialRequests: req.SpecialRequests,
		IdempotencyKey:  strings.TrimSpace(c.GetHeader(idempotencyHeader)),
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "booking": newBookingResult(created)})
}

func (h *BookingHandler) get(c *gin.Context) {
	view, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *BookingHandler) cancel(c *gin.Context) {
	cancelled, err := h.service.Cancel(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"booking": cancelled,
		"message": "Booking cancelled successfully",
	})
}

func (t travelerRequest) toDomain() domain.Traveler {
	first, last := t.FirstName, t.LastName
	if t.Name != nil {
		if first == "" {
			first = t.Name.FirstName
		}
		if last == "" {
			last = t.Name.LastName
		}
	}
	return domain.Traveler{
		ID:          t.ID,
		FirstName:   first,
		LastName:    last,
		DateOfBirth: t.DateOfBirth,
		Gender:      t.Gender,
		Email:       t.Email,
		Phone:       t.Phone,
	}
}

func (r *contactRequest) toDomain() domain.Contact {
	email := r.EmailAddress
	if email == "" {
		email = r.Email
	}
	phone := r.Phone
	if phone == "" && len(r.Phones) > 0 {
		phone = "+" + r.Phones[0].CountryCallingCode + r.Phones[0].Number
	}
	return domain.Contact{Email: email, Phone: phone, Name: r.Name}
}

func newBookingResult(b *domain.Booking) bookingResult {
	res := bookingResult{
		ID:               b.ID,
		BookingReference: b.ProviderRef,
		Status:           string(b.Status),
		PaymentStatus:    string(b.PaymentStatus),
		TotalAmount:      b.Amount,
		Currency:         b.Currency,
		PaymentIntentID:  b.PaymentRef,
	}
	details := gjson.ParseBytes(b.Details)
	switch b.Type {
	case domain.BookingTypeFlight:
		res.Travelers = len(details.Get("travelers").Array())
		if it := details.Get("flightOffer.itineraries"); it.Exists() {
			res.Itinerary = json.RawMessage(it.Raw)
		}
	case domain.BookingTypeHotel:
		res.Guests = len(details.Get("guests").Array())
		res.HotelName = details.Get("hotelOffer.hotelName").String()
	}
	return res
}
