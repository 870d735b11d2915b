package api

import (
	"mime/multipart"

	"github.com/RAj5517/Clustro/internal/ingest"
	"github.com/RAj5517/Clustro/internal/queue"
	"github.com/RAj5517/Clustro/internal/xerr"
	"github.com/gofiber/fiber/v2"
)

// RegisterUploadRoutes registers POST /api/upload
func RegisterUploadRoutes(app fiber.Router, q *queue.Queue, state *StateReader) {
	app.Post("/api/upload", UploadHandler(q, state))
}

// UploadHandler accepts one or more files plus an optional metadata
// string and runs them through the ingestion queue as a single
// batch, blocking for the result so the HTTP response stays
// synchronous
func UploadHandler(q *queue.Queue, state *StateReader) fiber.Handler {
	return func(c *fiber.Ctx) error {
		form, err := c.MultipartForm()
		if err != nil {
			return errJSON(c, xerr.BadRequest, "no files uploaded")
		}

		headers := form.File["files"]
		if len(headers) == 0 {
			return errJSON(c, xerr.BadRequest, "no files uploaded")
		}

		files, err := readUploads(headers)
		if err != nil {
			return errJSON(c, xerr.BadRequest, err.Error())
		}

		report, err := queue.ProduceIngestBatch(q, c.Context(), files)
		if err != nil {
			return errJSON(c, xerr.ServerError, err.Error())
		}

		dbState, err := state.DatabaseState(c.Context())
		if err != nil {
			return errJSON(c, xerr.ServerError, err.Error())
		}

		return c.JSON(fiber.Map{
			"success":       true,
			"message":       "files uploaded successfully",
			"databaseState": dbState,
			"report":        report,
		})
	}
}

func readUploads(headers []*multipart.FileHeader) ([]ingest.InputFile, error) {
	files := make([]ingest.InputFile, 0, len(headers))
	for _, h := range headers {
		f, err := h.Open()
		if err != nil {
			return nil, err
		}
		data := make([]byte, h.Size)
		_, readErr := f.Read(data)
		closeErr := f.Close()
		if readErr != nil {
			return nil, readErr
		}
		if closeErr != nil {
			return nil, closeErr
		}
		files = append(files, ingest.InputFile{Name: h.Filename, Data: data})
	}
	return files, nil
}

func errJSON(c *fiber.Ctx, code, msg string) error {
	return c.Status(xerr.HTTPStatus(code)).JSON(fiber.Map{
		"success": false,
		"error":   msg,
		"code":    code,
	})
}
