package handler

import (
	"embed"

	"github.com/labstack/echo/v4"
)

//go:embed assets
var assetsFS embed.FS

// RegisterStatic serves the browser scripts under /static.
func RegisterStatic(e *echo.Echo) {
	e.StaticFS("/static", echo.MustSubFS(assetsFS, "assets"))
}
