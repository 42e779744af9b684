package echomw

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/reoring/skemajson"
	"github.com/reoring/skemajson/middleware"
	"github.com/reoring/skemajson/schema"
)

// DecodeJSON decodes the request body with schema s, stores the Decoded in
// context on success, or returns 400 with an issues payload.
func DecodeJSON(s *schema.Schema, opt skemajson.DecodeOpt) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			dm, err := middleware.Decode(c.Request().Body, s, opt)
			if err != nil {
				return c.JSON(http.StatusBadRequest, middleware.FailurePayload(err))
			}
			c.SetRequest(c.Request().WithContext(middleware.ContextWithDecoded(c.Request().Context(), dm)))
			return next(c)
		}
	}
}

// GetDecoded fetches the Decoded from echo.Context.
func GetDecoded(c echo.Context) (middleware.Decoded, bool) {
	return middleware.DecodedFromContext(c.Request().Context())
}
