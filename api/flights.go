package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/travelwithsue/travelapi/internal/service/flights"
)

type FlightHandler struct {
	service flights.FlightUseCase
}

func NewFlightHandler(service flights.FlightUseCase) *FlightHandler {
	return &FlightHandler{service: service}
}

func (h *FlightHandler) Register(router *gin.RouterGroup) {
	router.GET("/flights", h.list)
	router.GET("/flights/:id", h.get)
	router.GET("/flights/:id/available-seats", h.availableSeats)
	router.GET("/fetch-flights", h.refresh)
}

func (h *FlightHandler) list(c *gin.Context) {
	list, err := h.service.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *FlightHandler) get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		respondBadRequest(c, "invalid flight id")
		return
	}
	flight, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, flight)
}

// availableSeats takes the flight number in the path, e.g.
// /flights/FL123/available-seats.
func (h *FlightHandler) availableSeats(c *gin.Context) {
	flightNumber := c.Param("id")
	seats, err := h.service.AvailableSeats(c.Request.Context(), flightNumber)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"flight_number":   flightNumber,
		"available_seats": seats,
	})
}

func (h *FlightHandler) refresh(c *gin.Context) {
	updated, err := h.service.Refresh(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Flights updated successfully",
		"flights": updated,
	})
}
