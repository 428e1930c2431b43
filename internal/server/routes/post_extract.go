package routes

import (
	"encoding/json"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/trellis-labs/trellis/backend/internal/server/middleware"
	"github.com/trellis-labs/trellis/backend/internal/storage"
	"github.com/trellis-labs/trellis/backend/pkg/extract"
	"github.com/trellis-labs/trellis/backend/pkg/logger"
	"github.com/trellis-labs/trellis/backend/pkg/model"
)

// ExtractHandler runs the extraction pipeline over the posted sources and
// streams its progress as line-delimited JSON events.
func ExtractHandler(c echo.Context) error {
	type extractBody struct {
		WorkspaceID int64            `json:"workspaceId" validate:"required,numeric"`
		ProjectID   int64            `json:"projectId"`
		Sources     []extract.Source `json:"sources" validate:"required,min=1,dive"`

		// AutoConfirm materializes every suggestion without review.
		// SelectedTitles materializes only the named ones. With neither set
		// the run ends after the suggestions event.
		AutoConfirm    bool     `json:"autoConfirm"`
		SelectedTitles []string `json:"selectedTitles"`

		Collaborator middleware.CollaboratorSelection `json:"collaborator"`
	}

	data := new(extractBody)
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

	var confirm extract.ConfirmFunc
	switch {
	case data.AutoConfirm:
		confirm = extract.ConfirmAll
	case len(data.SelectedTitles) > 0:
		confirm = extract.ConfirmTitles(data.SelectedTitles)
	}

	pipeline := extract.New(extract.Params{
		Store:   app.Store,
		Client:  app.ResolveAiClient(data.Collaborator),
		Fetcher: storage.NewFetcher(app.S3),
		Model:   data.Collaborator.Model,
	})

	ctx := c.Request().Context()
	events := pipeline.Run(ctx, extract.RunInput{
		Sources: data.Sources,
		Scope:   model.Scope{WorkspaceID: data.WorkspaceID, ProjectID: data.ProjectID},
		Confirm: confirm,
	})

	c.Response().Header().Set(echo.HeaderContentType, "application/x-ndjson")
	c.Response().WriteHeader(http.StatusOK)

	enc := json.NewEncoder(c.Response())
	for ev := range events {
		if err := enc.Encode(ev); err != nil {
			logger.Debug("Client went away during extraction stream", "err", err)
			return nil
		}
		c.Response().Flush()
	}
	return nil
}
