package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/trellis-labs/trellis/backend/internal/server/middleware"
	"github.com/trellis-labs/trellis/backend/pkg/logger"
)

// DeleteNodeHandler removes a node, its descendants, and every edge touching
// any of them.
func DeleteNodeHandler(c echo.Context) error {
	app := c.(*middleware.AppContext).App
	graphID := c.Param("id")
	nodeID := c.Param("node_id")
	if err := app.Store.DeleteNode(c.Request().Context(), graphID, nodeID); err != nil {
		status := storeErrorStatus(err)
		if status == http.StatusInternalServerError {
			logger.Error("Failed to delete node", "graph", graphID, "node", nodeID, "err", err)
			return c.JSON(status, messageResponse{Message: "Internal server error"})
		}
		return c.JSON(status, messageResponse{Message: "Node not found"})
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "Success"})
}
