package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/harentsoaR/booking-api/internal/apperr"
	"github.com/harentsoaR/booking-api/internal/services"
)

// ListServices supports ?active=true|false for admins.
func (h *Handler) ListServices(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	var active *bool
	if raw := c.Query("active"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			fail(c, apperr.Validation("active must be true or false"))
			return
		}
		active = &v
	}
	list, err := h.Catalog.List(c.Request.Context(), a, active)
	if err != nil {
		fail(c, err)
		return
	}
	respondList(c, list)
}

func (h *Handler) GetService(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	service, err := h.Catalog.Get(c.Request.Context(), a, c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, service)
}

func (h *Handler) CreateService(c *gin.Context) {
	var req services.CreateServiceInput
	if !bind(c, &req) {
		return
	}
	service, err := h.Catalog.Create(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusCreated, service)
}

func (h *Handler) UpdateService(c *gin.Context) {
	var req services.UpdateServiceInput
	if !bind(c, &req) {
		return
	}
	service, err := h.Catalog.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, service)
}

func (h *Handler) DeleteService(c *gin.Context) {
	if err := h.Catalog.Delete(c.Request.Context(), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
