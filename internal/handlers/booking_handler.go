package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/harentsoaR/booking-api/internal/services"
)

func (h *Handler) CreateBooking(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	var req services.BookingRequest
	if !bind(c, &req) {
		return
	}
	booking, err := h.Bookings.Create(c.Request.Context(), a, req)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusCreated, booking)
}

// ListMyBookings returns the caller's bookings, latest service date first.
func (h *Handler) ListMyBookings(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	bookings, err := h.Bookings.ListMine(c.Request.Context(), a)
	if err != nil {
		fail(c, err)
		return
	}
	respondList(c, bookings)
}

func (h *Handler) ListAllBookings(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	bookings, err := h.Bookings.ListAll(c.Request.Context(), a)
	if err != nil {
		fail(c, err)
		return
	}
	respondList(c, bookings)
}

// BusySlots is public: /booking/busy-slots?specialistId=&date=
func (h *Handler) BusySlots(c *gin.Context) {
	slots, err := h.Bookings.BusySlots(c.Request.Context(), c.Query("specialistId"), c.Query("date"))
	if err != nil {
		fail(c, err)
		return
	}
	respondList(c, slots)
}

func (h *Handler) GetBooking(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	booking, err := h.Bookings.Get(c.Request.Context(), a, c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, booking)
}

func (h *Handler) UpdateBooking(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	var req services.BookingPatch
	if !bind(c, &req) {
		return
	}
	booking, err := h.Bookings.Update(c.Request.Context(), a, c.Param("id"), req)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, booking)
}

func (h *Handler) DeleteBooking(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	if err := h.Bookings.Delete(c.Request.Context(), a, c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
