package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Jogatev/chebeneleven-sub000/internal/utilities"
)

var multipartOverhead = int64(8 * 1024) // rough padding

// SizeLimit caps the request body at maxBodyBytes plus multipart padding.
// Declared oversize bodies are refused with 413 up front; undeclared ones make the
// handler's reads fail with *http.MaxBytesError.
func SizeLimit(maxBodyBytes int64) gin.HandlerFunc {
	limit := maxBodyBytes + multipartOverhead
	return func(c *gin.Context) {
		if c.Request.ContentLength > limit {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, utilities.ErrorResponse{
				Error: "Entity too large",
			})
			return
		}

		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)

		c.Next()
	}
}
