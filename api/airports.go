package api

import (
	"net/http"
	"strconv"

	"github.com/Domenick1991/triprex/internal/domain"
	"github.com/gin-gonic/gin"
)

const maxAirportResults = 50

type AirportSearcher interface {
	Search(query string, limit int) []domain.Airport
}

type AirportHandler struct {
	airports AirportSearcher
}

func NewAirportHandler(airports AirportSearcher) *AirportHandler {
	return &AirportHandler{airports: airports}
}

func (h *AirportHandler) Register(router *gin.RouterGroup) {
	router.GET("", h.search)
}

func (h *AirportHandler) search(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "0"))
	if err != nil || limit < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive number"})
		return
	}
	limit = min(limit, maxAirportResults)

	found := h.airports.Search(c.Query("q"), limit)
	if found == nil {
		found = []domain.Airport{}
	}
	c.JSON(http.StatusOK, found)
}
