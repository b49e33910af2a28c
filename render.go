package tilsite

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// RenderXML writes a fully rendered XML document as an HTTP 200 response.
func RenderXML(c echo.Context, contentType string, doc []byte) error {
	return c.Blob(http.StatusOK, contentType, doc)
}
