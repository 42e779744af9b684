package ginmw

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/reoring/skemajson"
	"github.com/reoring/skemajson/middleware"
	"github.com/reoring/skemajson/schema"
)

// DecodeJSON decodes the request body with schema s (opt zero means
// middleware.DefaultDecodeOpt), stores the Decoded in the request context,
// and on failure aborts with 400 and an issues payload.
func DecodeJSON(s *schema.Schema, opt skemajson.DecodeOpt) gin.HandlerFunc {
	return func(c *gin.Context) {
		dm, err := middleware.Decode(c.Request.Body, s, opt)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, middleware.FailurePayload(err))
			return
		}
		c.Request = c.Request.WithContext(middleware.ContextWithDecoded(c.Request.Context(), dm))
		c.Next()
	}
}

// GetDecoded fetches the Decoded from gin.Context.
func GetDecoded(c *gin.Context) (middleware.Decoded, bool) {
	return middleware.DecodedFromContext(c.Request.Context())
}
