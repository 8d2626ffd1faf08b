package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	httpapi "github.com/volt-campus/VoltRentalAPI/internal/http"
	"github.com/volt-campus/VoltRentalAPI/internal/users"
)

// ProfileHandler handles student profile endpoints.
type ProfileHandler struct {
	users *users.Service
}

// NewProfileHandler constructs a ProfileHandler.
func NewProfileHandler(svc *users.Service) *ProfileHandler {
	return &ProfileHandler{users: svc}
}

// Get returns the current user's profile with wallet state attached.
func (h *ProfileHandler) Get(c *gin.Context) {
	uid := getUserUID(c)
	if uid == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	profile, err := h.users.GetProfile(c.Request.Context(), uid)
	if err != nil {
		httpapi.AbortWithFault(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// Update applies whitelisted profile fields.
func (h *ProfileHandler) Update(c *gin.Context) {
	uid := getUserUID(c)
	if uid == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var body map[string]string
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	if err := h.users.UpdateProfile(c.Request.Context(), uid, body); err != nil {
		httpapi.AbortWithFault(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "profile updated"})
}
