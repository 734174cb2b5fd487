package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/travelwithsue/travelapi/internal/service/places"
)

type AttractionHandler struct {
	service places.PlaceUseCase
}

func NewAttractionHandler(service places.PlaceUseCase) *AttractionHandler {
	return &AttractionHandler{service: service}
}

func (h *AttractionHandler) Register(router *gin.RouterGroup) {
	router.GET("/attractions", h.list)
	router.GET("/attractions/:id", h.get)
	router.GET("/attractions/fetch", h.fetch)
}

func (h *AttractionHandler) list(c *gin.Context) {
	attractions, err := h.service.ListAttractions(c.Request.Context(), c.Query("category"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, attractions)
}

func (h *AttractionHandler) get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		respondBadRequest(c, "invalid attraction id")
		return
	}
	attraction, err := h.service.GetAttraction(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, attraction)
}

func (h *AttractionHandler) fetch(c *gin.Context) {
	attractions, err := h.service.RefreshAttractions(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"count":       len(attractions),
		"attractions": attractions,
	})
}
