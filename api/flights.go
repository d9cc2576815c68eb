package api

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Domenick1991/flightbot/internal/domain"
	"github.com/Domenick1991/flightbot/internal/offers"
	"github.com/Domenick1991/flightbot/internal/service/flights"
	"github.com/gin-gonic/gin"
	"github.com/jszwec/csvutil"
)

const dateLayout = "2006-01-02"

type FlightHandler struct {
	service flights.FlightUseCase
}

type searchRequest struct {
	Origin        string `json:"origin" binding:"required"`
	Destination   string `json:"destination" binding:"required"`
	DepartureDate string `json:"departureDate" binding:"required"`
	ReturnDate    string `json:"returnDate"`
	Passengers    int    `json:"passengers"`
	TravelClass   string `json:"travelClass"`
}

func (r searchRequest) criteria() (domain.SearchCriteria, error) {
	departure, err := time.Parse(dateLayout, r.DepartureDate)
	if err != nil {
		return domain.SearchCriteria{}, fmt.Errorf("%w: departureDate must be YYYY-MM-DD", flights.ErrInvalidCriteria)
	}
	criteria := domain.SearchCriteria{
		Origin:        r.Origin,
		Destination:   r.Destination,
		DepartureDate: departure,
		Passengers:    r.Passengers,
		TravelClass:   domain.TravelClass(strings.ToUpper(r.TravelClass)),
	}
	if criteria.Passengers == 0 {
		criteria.Passengers = 1
	}
	if r.ReturnDate != "" {
		ret, err := time.Parse(dateLayout, r.ReturnDate)
		if err != nil {
			return domain.SearchCriteria{}, fmt.Errorf("%w: returnDate must be YYYY-MM-DD", flights.ErrInvalidCriteria)
		}
		criteria.ReturnDate = &ret
	}
	return criteria, nil
}

type offersRequest struct {
	Offers []domain.FlightOffer `json:"offers"`
}

type filterRequest struct {
	Offers  []domain.FlightOffer `json:"offers"`
	Filters offers.FilterSpec    `json:"filters"`
}

func NewFlightHandler(service flights.FlightUseCase) *FlightHandler {
	return &FlightHandler{service: service}
}

func (h *FlightHandler) Register(router *gin.RouterGroup) {
	router.POST("/search", h.search)
	router.POST("/compare", h.compare)
	router.POST("/filter", h.filter)
	router.GET("/details/:offerId", h.details)
	router.GET("/airports/search", h.airport)
}

func (h *FlightHandler) search(c *gin.Context) {
	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	criteria, err := req.criteria()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.service.Search(c.Request.Context(), criteria)
	if err != nil {
		abort(c, err, "Failed to search flights")
		return
	}
	if result == nil {
		result = []domain.FlightOffer{}
	}
	c.JSON(http.StatusOK, result)
}

// compare answers with the full comparison, or only the table as CSV when
// the client asks for text/csv.
func (h *FlightHandler) compare(c *gin.Context) {
	var req offersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	comparison := offers.Compare(req.Offers)
	if c.Query("format") == "csv" || strings.Contains(c.GetHeader("Accept"), "text/csv") {
		data, err := csvutil.Marshal(comparison.Table)
		if err != nil {
			abort(c, err, "Failed to export comparison")
			return
		}
		c.Data(http.StatusOK, "text/csv; charset=utf-8", data)
		return
	}
	c.JSON(http.StatusOK, comparison)
}

func (h *FlightHandler) filter(c *gin.Context) {
	var req filterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, offers.ApplyFilters(req.Offers, req.Filters))
}

func (h *FlightHandler) details(c *gin.Context) {
	details, err := h.service.Details(c.Request.Context(), c.Param("offerId"))
	if err != nil {
		abort(c, err, "Failed to get flight details")
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", details)
}

func (h *FlightHandler) airport(c *gin.Context) {
	query := strings.TrimSpace(c.Query("query"))
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query is required"})
		return
	}
	code, err := h.service.AirportCode(c.Request.Context(), query)
	if err != nil {
		abort(c, err, "Airport not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": code})
}
