package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/harentsoaR/booking-api/internal/services"
)

// Register creates a customer account and returns a token.
func (h *Handler) Register(c *gin.Context) {
	var req services.RegisterInput
	if !bind(c, &req) {
		return
	}
	res, err := h.Accounts.Register(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusCreated, res)
}

func (h *Handler) Login(c *gin.Context) {
	var req services.LoginInput
	if !bind(c, &req) {
		return
	}
	res, err := h.Accounts.Login(c.Request.Context(), req)
	if err != nil {
		log.Println("Login: rejected credentials.")
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, res)
}

// Logout is stateless; clients drop the token.
func (h *Handler) Logout(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "success", "message": "Logged out successfully"})
}
