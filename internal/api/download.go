package api

import (
	"github.com/RAj5517/Clustro/internal/storage"
	"github.com/RAj5517/Clustro/internal/xerr"
	"github.com/gofiber/fiber/v2"
)

// RegisterStateRoutes registers GET /api/database/state and
// GET /api/visualization,
func RegisterStateRoutes(app fiber.Router, state *StateReader) {
	app.Get("/api/database/state", func(c *fiber.Ctx) error {
		dbState, err := state.DatabaseState(c.Context())
		if err != nil {
			return errJSON(c, xerr.ServerError, err.Error())
		}
		return c.JSON(dbState)
	})

	app.Get("/api/visualization", func(c *fiber.Ctx) error {
		tree, err := state.VisualizationTree(c.Context())
		if err != nil {
			return errJSON(c, xerr.ServerError, err.Error())
		}
		return c.JSON(tree)
	})
}

// RegisterDownloadRoute registers GET /api/download?path=<relative_uri>,
//, rejecting any path that escapes the storage root
// (P8).
func RegisterDownloadRoute(app fiber.Router, st *storage.Store) {
	app.Get("/api/download", func(c *fiber.Ctx) error {
		relPath := c.Query("path")
		if relPath == "" {
			return errJSON(c, xerr.BadRequest, "missing path parameter")
		}

		full, err := st.AbsolutePath(relPath)
		if err != nil {
			return errJSON(c, xerr.InvalidPath, "path escapes storage root")
		}

		return c.SendFile(full)
	})
}
