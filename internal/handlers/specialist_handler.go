package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/harentsoaR/booking-api/internal/services"
)

func (h *Handler) ListSpecialists(c *gin.Context) {
	list, err := h.Specialists.List(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	respondList(c, list)
}

// GetSpecialist accepts a profile id or the specialist's user id.
func (h *Handler) GetSpecialist(c *gin.Context) {
	specialist, err := h.Specialists.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, specialist)
}

func (h *Handler) CreateSpecialist(c *gin.Context) {
	var req services.CreateSpecialistInput
	if !bind(c, &req) {
		return
	}
	specialist, err := h.Specialists.Create(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusCreated, specialist)
}

func (h *Handler) UpdateSpecialist(c *gin.Context) {
	var req services.UpdateSpecialistInput
	if !bind(c, &req) {
		return
	}
	specialist, err := h.Specialists.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, specialist)
}

// DeleteSpecialist also removes the specialist's bookings and user.
func (h *Handler) DeleteSpecialist(c *gin.Context) {
	if err := h.Specialists.Delete(c.Request.Context(), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
