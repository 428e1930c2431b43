package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"
	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/trellis-labs/trellis/backend/internal/server/middleware"
	"github.com/trellis-labs/trellis/backend/internal/storage"
	"github.com/trellis-labs/trellis/backend/pkg/logger"
)

// UploadSourceHandler stores an uploaded source document and returns the
// storage key referencing it from an extraction request.
func UploadSourceHandler(c echo.Context) error {
	type uploadSourceResponse struct {
		Message    string `json:"message"`
		StorageKey string `json:"storageKey,omitempty"`
	}

	file, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, uploadSourceResponse{Message: "A file is required"})
	}

	app := c.(*middleware.AppContext).App
	if app.S3 == nil {
		return c.JSON(http.StatusServiceUnavailable, uploadSourceResponse{Message: "Storage is not configured"})
	}

	src, err := file.Open()
	if err != nil {
		return c.JSON(http.StatusBadRequest, uploadSourceResponse{Message: "Invalid request body"})
	}
	defer src.Close()

	fID, err := gonanoid.New()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, uploadSourceResponse{Message: "Internal server error"})
	}

	key, err := storage.PutFile(c.Request().Context(), app.S3, "sources", file.Filename, fID, src)
	if err != nil {
		logger.Error("Failed to upload source file", "name", file.Filename, "err", err)
		return c.JSON(http.StatusInternalServerError, uploadSourceResponse{Message: "Internal server error"})
	}

	return c.JSON(http.StatusCreated, uploadSourceResponse{Message: "Success", StorageKey: key})
}
