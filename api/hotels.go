package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/travelwithsue/travelapi/internal/domain"
	"github.com/travelwithsue/travelapi/internal/service/places"
)

type HotelHandler struct {
	service places.PlaceUseCase
}

func NewHotelHandler(service places.PlaceUseCase) *HotelHandler {
	return &HotelHandler{service: service}
}

func (h *HotelHandler) Register(router *gin.RouterGroup) {
	router.GET("/hotels", h.list)
	router.GET("/hotels/:id", h.get)
	router.GET("/hotels/search-locations", h.searchLocations)
}

func (h *HotelHandler) list(c *gin.Context) {
	filter := domain.HotelFilter{
		Search:  c.Query("search"),
		OrderBy: c.Query("order_by"),
	}
	if raw, ok := c.GetQuery("has_wifi"); ok {
		v := raw == "true"
		filter.HasWifi = &v
	}
	if raw, ok := c.GetQuery("has_parking"); ok {
		v := raw == "true"
		filter.HasParking = &v
	}

	hotels, err := h.service.ListHotels(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, hotels)
}

func (h *HotelHandler) get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		respondBadRequest(c, "invalid hotel id")
		return
	}
	hotel, err := h.service.GetHotel(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, hotel)
}

func (h *HotelHandler) searchLocations(c *gin.Context) {
	hotels, err := h.service.SearchHotelLocations(c.Request.Context(), c.Query("query"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, hotels)
}
