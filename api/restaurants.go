package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/travelwithsue/travelapi/internal/service/places"
	"github.com/travelwithsue/travelapi/internal/service/users"
)

type RestaurantHandler struct {
	service places.PlaceUseCase
	// identity is optional; reservations from logged-in callers get linked
	// to their account.
	identity users.UserUseCase
}

func NewRestaurantHandler(service places.PlaceUseCase, identity users.UserUseCase) *RestaurantHandler {
	return &RestaurantHandler{service: service, identity: identity}
}

func (h *RestaurantHandler) Register(router *gin.RouterGroup) {
	router.GET("/restaurants", h.list)
	router.GET("/restaurants/:id", h.get)
	router.GET("/restaurants/fetch", h.fetch)
	router.POST("/reservations", h.createReservation)
}

func (h *RestaurantHandler) list(c *gin.Context) {
	restaurants, err := h.service.ListRestaurants(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, restaurants)
}

func (h *RestaurantHandler) get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		respondBadRequest(c, "invalid restaurant id")
		return
	}
	restaurant, err := h.service.GetRestaurant(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, restaurant)
}

func (h *RestaurantHandler) fetch(c *gin.Context) {
	location := c.Query("location")
	restaurants, err := h.service.ImportRestaurants(c.Request.Context(), location)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"location":    location,
		"count":       len(restaurants),
		"restaurants": restaurants,
	})
}

func (h *RestaurantHandler) createReservation(c *gin.Context) {
	var req places.ReservationInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}
	req.UserID = h.callerID(c)

	reservation, err := h.service.CreateReservation(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":     true,
		"reservation": reservation,
	})
}

func (h *RestaurantHandler) callerID(c *gin.Context) *int64 {
	if h.identity == nil {
		return nil
	}
	token, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
	if !ok || token == "" {
		return nil
	}
	claims, err := h.identity.Authenticate(c.Request.Context(), token)
	if err != nil {
		return nil
	}
	return &claims.UserID
}
