package middleware

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// HeaderRequestID carries the per-request correlation id
const HeaderRequestID = "X-Request-ID"

// RequestID makes sure every request carries an X-Request-ID, generating one
// when the caller sent none. The id is echoed back on the response.
func RequestID() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			id := req.Header.Get(HeaderRequestID)
			if id == "" {
				id = uuid.NewString()
				req.Header.Set(HeaderRequestID, id)
			}
			c.Response().Header().Set(HeaderRequestID, id)
			c.Set("request_id", id)
			return next(c)
		}
	}
}

// RequireUpload rejects multipart requests that lack the named file field
func RequireUpload(field string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if _, err := c.FormFile(field); err != nil {
				return c.JSON(http.StatusBadRequest, map[string]interface{}{
					"error":   "missing_file",
					"message": "multipart field '" + field + "' is required",
				})
			}
			return next(c)
		}
	}
}
