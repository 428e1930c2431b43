package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/trellis-labs/trellis/backend/internal/server/middleware"
	"github.com/trellis-labs/trellis/backend/pkg/logger"
)

// CreateEdgeHandler links two nodes of a graph. Adding an edge between an
// already connected pair returns the existing edge instead of a duplicate.
func CreateEdgeHandler(c echo.Context) error {
	type createEdgeBody struct {
		SourceID string `json:"sourceId" validate:"required"`
		TargetID string `json:"targetId" validate:"required"`
	}

	type createEdgeResponse struct {
		Message string `json:"message"`
		EdgeID  string `json:"edgeId,omitempty"`
	}

	data := new(createEdgeBody)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, createEdgeResponse{
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, createEdgeResponse{
			Message: "Invalid request body",
		})
	}

	app := c.(*middleware.AppContext).App
	graphID := c.Param("id")
	edgeID, err := app.Store.AddEdge(c.Request().Context(), graphID, data.SourceID, data.TargetID)
	if err != nil {
		status := storeErrorStatus(err)
		if status == http.StatusInternalServerError {
			logger.Error("Failed to add edge", "graph", graphID, "err", err)
			return c.JSON(status, createEdgeResponse{Message: "Internal server error"})
		}
		return c.JSON(status, createEdgeResponse{Message: err.Error()})
	}

	return c.JSON(http.StatusCreated, createEdgeResponse{
		Message: "Success",
		EdgeID:  edgeID,
	})
}
