package api

import (
	"net/http"
	"strings"

	"github.com/Domenick1991/triprex/internal/domain"
	"github.com/Domenick1991/triprex/internal/service/hotels"
	"github.com/gin-gonic/gin"
)

const defaultHotelAdults = 2

type HotelHandler struct {
	service hotels.HotelUseCase
}

type searchHotelsRequest struct {
	Location string              `json:"location" binding:"required"`
	CheckIn  string              `json:"checkIn" binding:"required,isodate"`
	CheckOut string              `json:"checkOut" binding:"required,isodate"`
	Guests   *hotelGuestsRequest `json:"guests" binding:"required"`
	Offset   int                 `json:"offset" binding:"min=0"`
}

type hotelGuestsRequest struct {
	Adults   int `json:"adults" binding:"omitempty,min=1,max=30"`
	Children int `json:"children" binding:"omitempty,min=0,max=10"`
	Rooms    int `json:"rooms" binding:"omitempty,min=1,max=30"`
}

type hotelDetailsRequest struct {
	URL string `json:"url"`
}

func NewHotelHandler(service hotels.HotelUseCase) *HotelHandler {
	return &HotelHandler{service: service}
}

func (h *HotelHandler) Register(router *gin.RouterGroup) {
	router.POST("/search", h.search)
	router.POST("/details", h.details)
}

func (h *HotelHandler) search(c *gin.Context) {
	var req searchHotelsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": bindMessage(err)})
		return
	}
	// an empty guests object still means a double room
	if req.Guests.Adults == 0 {
		req.Guests.Adults = defaultHotelAdults
	}

	found, err := h.service.Search(c.Request.Context(), domain.HotelQuery{
		Location: req.Location,
		CheckIn:  req.CheckIn,
		CheckOut: req.CheckOut,
		Guests: domain.GuestConfig{
			Adults:   req.Guests.Adults,
			Children: req.Guests.Children,
			Rooms:    req.Guests.Rooms,
		},
		Offset: req.Offset,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, found)
}

func (h *HotelHandler) details(c *gin.Context) {
	var req hotelDetailsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": bindMessage(err)})
		return
	}
	if strings.TrimSpace(req.URL) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "URL is required"})
		return
	}

	details, err := h.service.Details(c.Request.Context(), req.URL)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, details)
}
