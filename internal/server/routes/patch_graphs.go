package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/trellis-labs/trellis/backend/internal/server/middleware"
	"github.com/trellis-labs/trellis/backend/pkg/logger"
	"github.com/trellis-labs/trellis/backend/pkg/model"
)

// EditGraphHandler changes a graph's view style. The structural kind follows
// the new style; node content and relations are untouched.
func EditGraphHandler(c echo.Context) error {
	type editGraphBody struct {
		Style string `json:"style" validate:"required,oneof=outline mindmap kanban flow grid table timeline freeform"`
	}

	data := new(editGraphBody)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, messageResponse{
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, messageResponse{
			Message: "Invalid request body",
		})
	}

	app := c.(*middleware.AppContext).App
	graphID := c.Param("id")
	if err := app.Store.SetGraphStyle(c.Request().Context(), graphID, model.Style(data.Style)); err != nil {
		status := storeErrorStatus(err)
		if status == http.StatusInternalServerError {
			logger.Error("Failed to update graph style", "id", graphID, "err", err)
			return c.JSON(status, messageResponse{Message: "Internal server error"})
		}
		return c.JSON(status, messageResponse{Message: "Graph not found"})
	}

	return c.JSON(http.StatusOK, messageResponse{Message: "Success"})
}
