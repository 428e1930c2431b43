package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/trellis-labs/trellis/backend/internal/server/middleware"
	"github.com/trellis-labs/trellis/backend/pkg/logger"
)

// DeleteGraphHandler removes a graph with all of its nodes and edges.
func DeleteGraphHandler(c echo.Context) error {
	app := c.(*middleware.AppContext).App
	graphID := c.Param("id")
	if err := app.Store.DeleteGraph(c.Request().Context(), graphID); err != nil {
		status := storeErrorStatus(err)
		if status == http.StatusInternalServerError {
			logger.Error("Failed to delete graph", "id", graphID, "err", err)
			return c.JSON(status, messageResponse{Message: "Internal server error"})
		}
		return c.JSON(status, messageResponse{Message: "Graph not found"})
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "Success"})
}
