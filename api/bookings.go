package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/travelwithsue/travelapi/internal/domain"
	"github.com/travelwithsue/travelapi/internal/service/booking"
)

type BookingHandler struct {
	service booking.BookingUseCase
}

type bookFlightRequest struct {
	FlightID int64  `json:"flight_id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Tickets  int    `json:"tickets"`
}

type bookingResponse struct {
	Reference  string `json:"reference"`
	FlightID   int64  `json:"flight_id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Tickets    int    `json:"tickets"`
	QRCodePath string `json:"qr_code_path,omitempty"`
	CheckedIn  bool   `json:"checked_in"`
	BookedAt   string `json:"booked_at"`
}

func NewBookingHandler(service booking.BookingUseCase) *BookingHandler {
	return &BookingHandler{service: service}
}

func (h *BookingHandler) Register(router *gin.RouterGroup) {
	router.POST("/book-flight", h.create)
	router.GET("/verify/:reference", h.verify)
	router.GET("/check-in/:reference", h.checkIn)
	router.GET("/bookings/:reference", h.get)
}

func (h *BookingHandler) create(c *gin.Context) {
	var req bookFlightRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	created, err := h.service.SubmitBooking(c.Request.Context(), booking.SubmitBookingInput{
		FlightID: req.FlightID,
		Name:     req.Name,
		Email:    req.Email,
		Tickets:  req.Tickets,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Flight booked successfully!",
		"booking": toBookingResponse(created),
	})
}

// verify answers QR scans. Unknown references return 404 with an "invalid"
// status so scanners can tell a bad code from a server fault.
func (h *BookingHandler) verify(c *gin.Context) {
	reference := c.Param("reference")
	view, err := h.service.VerifyBooking(c.Request.Context(), reference)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"status":  "invalid",
				"message": "no booking found for this reference",
			})
			return
		}
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":           true,
		"status":            "valid",
		"reference":         view.Reference,
		"name":              view.Name,
		"flight_number":     view.FlightNumber,
		"airline":           view.Airline,
		"departure_airport": view.DepartureAirport,
		"arrival_airport":   view.ArrivalAirport,
		"tickets":           view.Tickets,
		"checked_in":        view.CheckedIn,
	})
}

func (h *BookingHandler) checkIn(c *gin.Context) {
	reference := c.Param("reference")
	checked, err := h.service.CheckIn(c.Request.Context(), reference)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Checked in",
		"booking": toBookingResponse(checked),
	})
}

func (h *BookingHandler) get(c *gin.Context) {
	reference := c.Param("reference")
	found, err := h.service.GetBooking(c.Request.Context(), reference)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"booking": toBookingResponse(found),
	})
}

func toBookingResponse(b *domain.Booking) bookingResponse {
	resp := bookingResponse{
		Reference: b.Reference,
		FlightID:  b.FlightID,
		Name:      b.Name,
		Email:     b.Email,
		Tickets:   b.Tickets,
		CheckedIn: b.CheckedIn,
		BookedAt:  b.CreatedAt.Format(time.RFC3339),
	}
	if b.QRCodePath != nil {
		resp.QRCodePath = *b.QRCodePath
	}
	return resp
}
