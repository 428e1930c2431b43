package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/trellis-labs/trellis/backend/internal/server/middleware"
	"github.com/trellis-labs/trellis/backend/pkg/logger"
)

// DeleteEdgeHandler removes one edge from a graph.
func DeleteEdgeHandler(c echo.Context) error {
	app := c.(*middleware.AppContext).App
	graphID := c.Param("id")
	edgeID := c.Param("edge_id")
	if err := app.Store.DeleteEdge(c.Request().Context(), graphID, edgeID); err != nil {
		status := storeErrorStatus(err)
		if status == http.StatusInternalServerError {
			logger.Error("Failed to delete edge", "graph", graphID, "edge", edgeID, "err", err)
			return c.JSON(status, messageResponse{Message: "Internal server error"})
		}
		return c.JSON(status, messageResponse{Message: "Edge not found"})
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "Success"})
}
