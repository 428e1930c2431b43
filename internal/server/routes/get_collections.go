package routes

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/trellis-labs/trellis/backend/internal/server/middleware"
	"github.com/trellis-labs/trellis/backend/pkg/logger"
	"github.com/trellis-labs/trellis/backend/pkg/model"
)

// GetCollectionsHandler lists the collections visible in a scope.
func GetCollectionsHandler(c echo.Context) error {
	type getCollectionsResponse struct {
		Message     string             `json:"message"`
		Collections []model.Collection `json:"collections,omitempty"`
	}

	workspaceID, err := strconv.ParseInt(c.QueryParam("workspace_id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, getCollectionsResponse{
			Message: "workspace_id is required",
		})
	}
	projectID, _ := strconv.ParseInt(c.QueryParam("project_id"), 10, 64)

	app := c.(*middleware.AppContext).App
	collections, err := app.Store.ListCollections(c.Request().Context(), model.Scope{
		WorkspaceID: workspaceID,
		ProjectID:   projectID,
	})
	if err != nil {
		logger.Error("Failed to list collections", "err", err)
		return c.JSON(http.StatusInternalServerError, getCollectionsResponse{
			Message: "Internal server error",
		})
	}

	return c.JSON(http.StatusOK, getCollectionsResponse{
		Message:     "Success",
		Collections: collections,
	})
}

// GetRecordsHandler lists the records of one collection.
func GetRecordsHandler(c echo.Context) error {
	type getRecordsResponse struct {
		Message    string            `json:"message"`
		Collection *model.Collection `json:"collection,omitempty"`
		Records    []model.Record    `json:"records,omitempty"`
	}

	app := c.(*middleware.AppContext).App
	collectionID := c.Param("id")
	ctx := c.Request().Context()

	collection, err := app.Store.GetCollection(ctx, collectionID)
	if err != nil {
		status := storeErrorStatus(err)
		if status == http.StatusInternalServerError {
			logger.Error("Failed to load collection", "id", collectionID, "err", err)
			return c.JSON(status, getRecordsResponse{Message: "Internal server error"})
		}
		return c.JSON(status, getRecordsResponse{Message: "Collection not found"})
	}

	records, err := app.Store.ListRecords(ctx, collectionID)
	if err != nil {
		logger.Error("Failed to list records", "collection", collectionID, "err", err)
		return c.JSON(http.StatusInternalServerError, getRecordsResponse{
			Message: "Internal server error",
		})
	}

	return c.JSON(http.StatusOK, getRecordsResponse{
		Message:    "Success",
		Collection: collection,
		Records:    records,
	})
}
