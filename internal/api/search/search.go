// Package search exposes the semantic-search engine over HTTP:
// GET /api/search and POST /api/search/semantic,
package search

import (
	"github.com/RAj5517/Clustro/internal/model"
	searchcore "github.com/RAj5517/Clustro/internal/search"
	"github.com/RAj5517/Clustro/internal/xerr"
	"github.com/gofiber/fiber/v2"
)

const defaultTopK = 10

// RegisterSearchRoutes registers both the GET query-string form and
// the POST JSON-body form of the search endpoint.
func RegisterSearchRoutes(app fiber.Router, engine *searchcore.Engine) {
	app.Get("/api/search", searchHandler(engine))
	app.Post("/api/search/semantic", searchHandler(engine))
}

type searchRequest struct {
	Query    string `json:"query"`
	K        int    `json:"k"`
	Modality string `json:"modality"`
}

func searchHandler(engine *searchcore.Engine) fiber.Handler {
	return func(c *fiber.Ctx) error {
		req := searchRequest{K: defaultTopK}
		if c.Method() == fiber.MethodPost {
			if err := c.BodyParser(&req); err != nil {
				return errJSON(c, xerr.BadRequest, "invalid request body")
			}
		} else {
			req.Query = c.Query("q", c.Query("query"))
			if req.Query == "" {
				return errJSON(c, xerr.BadRequest, "missing q parameter")
			}
		}
		if req.K <= 0 {
			req.K = defaultTopK
		}

		resp, err := engine.Search(c.Context(), req.Query, req.K, model.Modality(req.Modality))
		if err != nil {
			return errJSON(c, xerr.QueryFailed, err.Error())
		}

		results := make([]fiber.Map, 0, len(resp.Results))
		for _, hit := range resp.Results {
			results = append(results, fiber.Map{
				"id":         hit.ID,
				"text":       hit.Description,
				"modality":   hit.Modality,
				"similarity": hit.Similarity,
				"metadata":   hit.Metadata,
			})
		}

		return c.JSON(fiber.Map{
			"success": true,
			"results": results,
			"source":  resp.Source,
		})
	}
}

func errJSON(c *fiber.Ctx, code, msg string) error {
	return c.Status(xerr.HTTPStatus(code)).JSON(fiber.Map{
		"success": false,
		"error":   msg,
		"code":    code,
	})
}
