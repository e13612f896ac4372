// interfaces.go - Handler interface definitions
package api

import "github.com/labstack/echo/v4"

// SystemHandler serves status and discovery endpoints.
type SystemHandler interface {
	HandleRoot(c echo.Context) error
	HandleDocs(c echo.Context) error
	HandleHealth(c echo.Context) error
}

// OCRHandler serves the text extraction endpoints.
type OCRHandler interface {
	HandleExtractText(c echo.Context) error
	HandleBatchExtract(c echo.Context) error
}
