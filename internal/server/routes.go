package server

import (
	"github.com/labstack/echo/v4"

	"github.com/trellis-labs/trellis/backend/internal/server/routes"
)

func RegisterRoutes(e *echo.Echo) {
	// Health check route
	e.GET("/health", func(c echo.Context) error {
		return c.String(200, "OK")
	})

	apiRoutes := e.Group("/api")

	// Extraction route
	apiRoutes.POST("/extract", routes.ExtractHandler)

	// Source document routes
	apiRoutes.POST("/sources", routes.UploadSourceHandler)
	apiRoutes.DELETE("/sources", routes.DeleteSourceHandler)

	// Graph routes
	apiRoutes.GET("/graphs", routes.GetGraphsHandler)
	apiRoutes.GET("/graphs/:id", routes.GetGraphHandler)
	apiRoutes.PATCH("/graphs/:id", routes.EditGraphHandler)
	apiRoutes.DELETE("/graphs/:id", routes.DeleteGraphHandler)

	// Graph node routes
	apiRoutes.POST("/graphs/:id/nodes", routes.CreateNodeHandler)
	apiRoutes.PATCH("/graphs/:id/nodes/:node_id", routes.EditNodeHandler)
	apiRoutes.DELETE("/graphs/:id/nodes/:node_id", routes.DeleteNodeHandler)

	// Graph edge routes
	apiRoutes.POST("/graphs/:id/edges", routes.CreateEdgeHandler)
	apiRoutes.DELETE("/graphs/:id/edges/:edge_id", routes.DeleteEdgeHandler)

	// Collection routes
	apiRoutes.GET("/collections", routes.GetCollectionsHandler)
	apiRoutes.GET("/collections/:id/records", routes.GetRecordsHandler)
}
