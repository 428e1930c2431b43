package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/trellis-labs/trellis/backend/internal/server/middleware"
	"github.com/trellis-labs/trellis/backend/pkg/logger"
	"github.com/trellis-labs/trellis/backend/pkg/store"
)

// EditNodeHandler patches a node's content, parent, or metadata. A parentId
// of "" makes the node a root; an absent parentId leaves it in place.
func EditNodeHandler(c echo.Context) error {
	type editNodeBody struct {
		Content  *string        `json:"content"`
		ParentID *string        `json:"parentId"`
		Metadata map[string]any `json:"metadata"`
	}

	data := new(editNodeBody)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, messageResponse{
			Message: "Invalid request body",
		})
	}
	if data.Content == nil && data.ParentID == nil && data.Metadata == nil {
		return c.JSON(http.StatusBadRequest, messageResponse{
			Message: "Nothing to update",
		})
	}

	app := c.(*middleware.AppContext).App
	graphID := c.Param("id")
	nodeID := c.Param("node_id")
	err := app.Store.UpdateNode(c.Request().Context(), graphID, nodeID, store.NodePatch{
		Content:  data.Content,
		ParentID: data.ParentID,
		Metadata: data.Metadata,
	})
	if err != nil {
		status := storeErrorStatus(err)
		if status == http.StatusInternalServerError {
			logger.Error("Failed to update node", "graph", graphID, "node", nodeID, "err", err)
			return c.JSON(status, messageResponse{Message: "Internal server error"})
		}
		return c.JSON(status, messageResponse{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, messageResponse{Message: "Success"})
}
