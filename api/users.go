package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/travelwithsue/travelapi/internal/domain"
	"github.com/travelwithsue/travelapi/internal/service/users"
)

const userIDKey = "user_id"

type UserHandler struct {
	service users.UserUseCase
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type logoutRequest struct {
	Refresh string `json:"refresh"`
}

type userResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

func NewUserHandler(service users.UserUseCase) *UserHandler {
	return &UserHandler{service: service}
}

func (h *UserHandler) Register(router *gin.RouterGroup) {
	router.POST("/register", h.register)
	router.POST("/login", h.login)
	router.POST("/logout", h.logout)

	profile := router.Group("/profile", h.requireAuth)
	profile.GET("", h.profile)
	profile.PUT("", h.updateProfile)
}

// requireAuth validates the Bearer token and stores the caller's user id on
// the context.
func (h *UserHandler) requireAuth(c *gin.Context) {
	header := c.GetHeader("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "authentication required"})
		return
	}
	claims, err := h.service.Authenticate(c.Request.Context(), token)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "invalid or expired token"})
		return
	}
	c.Set(userIDKey, claims.UserID)
	c.Next()
}

func (h *UserHandler) register(c *gin.Context) {
	var req users.RegisterInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	user, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"user":    toUserResponse(user),
	})
}

func (h *UserHandler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	user, pair, err := h.service.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if err == users.ErrInvalidCredentials {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "invalid credentials"})
			return
		}
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"access":  pair.Access,
		"refresh": pair.Refresh,
		"user":    toUserResponse(user),
	})
}

func (h *UserHandler) logout(c *gin.Context) {
	var req logoutRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Refresh == "" {
		respondBadRequest(c, "refresh token is required")
		return
	}

	if err := h.service.Logout(c.Request.Context(), req.Refresh); err != nil {
		respondBadRequest(c, "invalid token")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Logged out successfully"})
}

func (h *UserHandler) profile(c *gin.Context) {
	view, err := h.service.Profile(c.Request.Context(), c.GetInt64(userIDKey))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":         toUserResponse(view.User),
		"profile":      toProfileResponse(view.Profile),
		"reservations": view.Reservations,
	})
}

func (h *UserHandler) updateProfile(c *gin.Context) {
	var req users.UpdateProfileInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	profile, err := h.service.UpdateProfile(c.Request.Context(), c.GetInt64(userIDKey), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toProfileResponse(profile))
}

func toUserResponse(u *domain.User) userResponse {
	return userResponse{ID: u.ID, Username: u.Username, Email: u.Email}
}

func toProfileResponse(p *domain.Profile) gin.H {
	return gin.H{
		"bio":             p.Bio,
		"phone_number":    p.PhoneNumber,
		"profile_picture": p.ProfilePicture,
	}
}
