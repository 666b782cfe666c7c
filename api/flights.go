package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/Domenick1991/triprex/internal/domain"
	"github.com/Domenick1991/triprex/internal/service/flights"
	"github.com/gin-gonic/gin"
	"github.com/tidwall/gjson"
)

type FlightHandler struct {
	service flights.FlightUseCase
}

type searchFlightsRequest struct {
	Origin      string `json:"origin" binding:"required,iata"`
	Destination string `json:"destination" binding:"required,iata"`
	Date        string `json:"date" binding:"required,isodate"`
	ReturnDate  string `json:"returnDate" binding:"omitempty,isodate"`
	Adults      int    `json:"adults" binding:"omitempty,min=1,max=9"`
	Children    int    `json:"children" binding:"omitempty,min=0,max=9"`
}

type confirmPriceRequest struct {
	OfferID     string          `json:"offerId"`
	FlightOffer json.RawMessage `json:"flightOffer"`
}

func NewFlightHandler(service flights.FlightUseCase) *FlightHandler {
	return &FlightHandler{service: service}
}

func (h *FlightHandler) Register(router *gin.RouterGroup) {
	router.POST("/search", h.search)
	router.POST("/confirm-price", h.confirmPrice)
}

func (h *FlightHandler) search(c *gin.Context) {
	var req searchFlightsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": bindMessage(err)})
		return
	}

	offers, err := h.service.Search(c.Request.Context(), domain.FlightQuery{
		Origin:        req.Origin,
		Destination:   req.Destination,
		DepartureDate: req.Date,
		ReturnDate:    req.ReturnDate,
		Adults:        req.Adults,
		Children:      req.Children,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, offers)
}

// confirmPrice accepts either a bare offer id or the offer itself, as
// returned by search (the provider document may sit under "raw").
func (h *FlightHandler) confirmPrice(c *gin.Context) {
	var req confirmPriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": bindMessage(err)})
		return
	}

	offer := req.FlightOffer
	if isNull(offer) {
		offer = nil
	} else if raw := gjson.GetBytes(offer, "raw"); raw.IsObject() {
		offer = json.RawMessage(raw.Raw)
	}
	offerID := strings.TrimSpace(req.OfferID)
	if offerID == "" && offer != nil {
		offerID = gjson.GetBytes(offer, "id").String()
	}
	if offerID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing offerId"})
		return
	}

	priced, err := h.service.ConfirmPrice(c.Request.Context(), offerID, offer)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "offer": priced})
}

func isNull(raw json.RawMessage) bool {
	s := strings.TrimSpace(string(raw))
	return s == "" || s == "null"
}
