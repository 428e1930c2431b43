package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/trellis-labs/trellis/backend/internal/server/middleware"
	"github.com/trellis-labs/trellis/backend/pkg/logger"
)

// CreateNodeHandler adds a node to a graph, optionally under a parent.
func CreateNodeHandler(c echo.Context) error {
	type createNodeBody struct {
		Content  string         `json:"content" validate:"required"`
		ParentID string         `json:"parentId"`
		Metadata map[string]any `json:"metadata"`
	}

	type createNodeResponse struct {
		Message string `json:"message"`
		NodeID  string `json:"nodeId,omitempty"`
	}

	data := new(createNodeBody)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, createNodeResponse{
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, createNodeResponse{
			Message: "Invalid request body",
		})
	}

	app := c.(*middleware.AppContext).App
	graphID := c.Param("id")
	nodeID, err := app.Store.AddNode(c.Request().Context(), graphID, data.Content, data.ParentID, data.Metadata)
	if err != nil {
		status := storeErrorStatus(err)
		if status == http.StatusInternalServerError {
			logger.Error("Failed to add node", "graph", graphID, "err", err)
			return c.JSON(status, createNodeResponse{Message: "Internal server error"})
		}
		return c.JSON(status, createNodeResponse{Message: err.Error()})
	}

	return c.JSON(http.StatusCreated, createNodeResponse{
		Message: "Success",
		NodeID:  nodeID,
	})
}
