package routes

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/trellis-labs/trellis/backend/internal/server/middleware"
	"github.com/trellis-labs/trellis/backend/pkg/logger"
	"github.com/trellis-labs/trellis/backend/pkg/model"
	"github.com/trellis-labs/trellis/backend/pkg/views"
)

// GetGraphsHandler lists the graphs visible in a scope.
func GetGraphsHandler(c echo.Context) error {
	type getGraphsResponse struct {
		Message string        `json:"message"`
		Graphs  []model.Graph `json:"graphs,omitempty"`
	}

	workspaceID, err := strconv.ParseInt(c.QueryParam("workspace_id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, getGraphsResponse{
			Message: "workspace_id is required",
		})
	}
	projectID, _ := strconv.ParseInt(c.QueryParam("project_id"), 10, 64)

	app := c.(*middleware.AppContext).App
	graphs, err := app.Store.ListGraphs(c.Request().Context(), model.Scope{
		WorkspaceID: workspaceID,
		ProjectID:   projectID,
	})
	if err != nil {
		logger.Error("Failed to list graphs", "err", err)
		return c.JSON(http.StatusInternalServerError, getGraphsResponse{
			Message: "Internal server error",
		})
	}

	return c.JSON(http.StatusOK, getGraphsResponse{
		Message: "Success",
		Graphs:  graphs,
	})
}

// GetGraphHandler returns one graph together with its current view
// projection.
func GetGraphHandler(c echo.Context) error {
	type getGraphResponse struct {
		Message    string            `json:"message"`
		Graph      *model.Graph      `json:"graph,omitempty"`
		Projection *views.Projection `json:"projection,omitempty"`
	}

	app := c.(*middleware.AppContext).App
	graph, err := app.Store.GetGraph(c.Request().Context(), c.Param("id"))
	if err != nil {
		status := storeErrorStatus(err)
		if status == http.StatusInternalServerError {
			logger.Error("Failed to load graph", "id", c.Param("id"), "err", err)
		}
		return c.JSON(status, getGraphResponse{Message: "Graph not found"})
	}

	projection := views.Project(graph, time.Now())
	return c.JSON(http.StatusOK, getGraphResponse{
		Message:    "Success",
		Graph:      graph,
		Projection: &projection,
	})
}
