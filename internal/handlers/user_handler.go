package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/harentsoaR/booking-api/internal/services"
)

// GetProfile returns the authenticated user's profile.
func (h *Handler) GetProfile(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	user, err := h.Accounts.Profile(c.Request.Context(), a)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, user)
}

// UpdateProfile allows a user to update their own name, email or phone.
func (h *Handler) UpdateProfile(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	var req services.UpdateProfileInput
	if !bind(c, &req) {
		return
	}
	user, err := h.Accounts.UpdateProfile(c.Request.Context(), a, req)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, user)
}

func (h *Handler) UpdatePassword(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	var req services.UpdatePasswordInput
	if !bind(c, &req) {
		return
	}
	if err := h.Accounts.UpdatePassword(c.Request.Context(), a, req); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "message": "Password updated"})
}

func (h *Handler) MyBookings(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	bookings, err := h.Accounts.MyBookings(c.Request.Context(), a)
	if err != nil {
		fail(c, err)
		return
	}
	respondList(c, bookings)
}
