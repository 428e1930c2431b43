package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/trellis-labs/trellis/backend/internal/server/middleware"
	"github.com/trellis-labs/trellis/backend/internal/storage"
	"github.com/trellis-labs/trellis/backend/pkg/logger"
)

// DeleteSourceHandler removes an uploaded source document by its storage key.
func DeleteSourceHandler(c echo.Context) error {
	key := c.QueryParam("key")
	if key == "" {
		return c.JSON(http.StatusBadRequest, messageResponse{Message: "A storage key is required"})
	}

	app := c.(*middleware.AppContext).App
	if app.S3 == nil {
		return c.JSON(http.StatusServiceUnavailable, messageResponse{Message: "Storage is not configured"})
	}

	if err := storage.DeleteFile(c.Request().Context(), app.S3, key); err != nil {
		logger.Error("Failed to delete source file", "key", key, "err", err)
		return c.JSON(http.StatusInternalServerError, messageResponse{Message: "Internal server error"})
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "Success"})
}
