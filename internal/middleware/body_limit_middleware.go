package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/elihudev/elihudroom/internal/app/models"
	"github.com/elihudev/elihudroom/internal/app/models/dto"
)

// MaxRequestBodySize caps inbound bodies. The largest legitimate request is a
// post with MaxAttachmentsPerPost base64-encoded attachments of
// MaxAttachmentSize each, plus headroom for the JSON envelope.
const MaxRequestBodySize = int64(models.MaxAttachmentsPerPost)*((models.MaxAttachmentSize+2)/3*4+256) + 64*1024

// BodyLimitMiddleware rejects oversized request bodies before a handler
// buffers them. Requests with an honest Content-Length get an immediate 413;
// everything else is capped while reading, which surfaces as a bind error.
func BodyLimitMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > MaxRequestBodySize {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, dto.APIResponse{
				Error: dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Request body too large"),
			})
			return
		}
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxRequestBodySize)
		}
		c.Next()
	}
}
