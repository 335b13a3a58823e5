package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// multipartSlack room for the caption field and part headers around a photo
const multipartSlack = 64 << 10

// BodyLimit caps the request body. Gallery uploads (multipart) get the photo
// ceiling plus slack so an oversized file fails while streaming; everything
// else gets maxBytes. Handlers see *http.MaxBytesError when reading past it.
func BodyLimit(maxBytes, maxUploadBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := maxBytes
		if maxUploadBytes > 0 && c.ContentType() == gin.MIMEMultipartPOSTForm {
			limit = maxUploadBytes + multipartSlack
		}
		if c.Request.Body != nil && limit > 0 {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		}
		c.Next()
	}
}
