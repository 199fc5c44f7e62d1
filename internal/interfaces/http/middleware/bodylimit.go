package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hms/backend/internal/interfaces/http/dto"
)

// DefaultMaxBodySize is the default request body limit (1 MiB). Bills
// carry at most a few dozen line items, so anything larger is abuse.
const DefaultMaxBodySize int64 = 1 << 20

// BodyLimit returns a middleware that rejects request bodies larger than
// maxBytes. A non-positive value falls back to the default.
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBodySize
	}

	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge,
				dto.NewErrorResponse(dto.ErrCodeBadRequest, "Request body too large"))
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
