package middleware

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/harentsoaR/booking-api/internal/apperr"
)

// ErrorHandler renders the last error pushed with c.Error as the
// {status, message} envelope.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		err := apperr.From(c.Errors.Last().Err)
		if err.Kind == apperr.KindInternal {
			log.Printf("[ERROR] request %s %s %s: %v", c.GetString(RequestIDKey), c.Request.Method, c.Request.URL.Path, err)
		}

		status := "fail"
		if err.Status() >= http.StatusInternalServerError {
			status = "error"
		}
		c.JSON(err.Status(), gin.H{"status": status, "message": err.Message})
	}
}
