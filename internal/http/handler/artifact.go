package handler

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"pdfapi/internal/service"
)

// Download godoc
// @Summary      Download an artifact
// @Tags         artifacts
// @Produce      octet-stream
// @Param        filename  path  string  true  "Artifact filename"
// @Success      200  {file}    binary
// @Failure      404  {object}  errorPayload
// @Failure      500  {object}  errorPayload
// @Router       /api/download/{filename} [get]
func Download(svc service.ArtifactService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		name := c.Params("filename")
		rc, info, err := svc.Open(c.UserContext(), name)
		if err != nil {
			return writeArtifactError(c, err)
		}

		c.Attachment(name)
		if info.ContentType != "" {
			c.Set(fiber.HeaderContentType, info.ContentType)
		}
		// fasthttp closes rc once the body has been written.
		return c.SendStream(rc, int(info.Size))
	}
}

// ListArtifacts godoc
// @Summary      List artifacts
// @Description  Artifacts written by the pipeline, newest first.
// @Tags         artifacts
// @Produce      json
// @Param        limit   query  int  false  "Page size (default 20, max 100)"
// @Param        offset  query  int  false  "Offset"
// @Success      200  {object}  service.ArtifactListResult
// @Failure      400  {object}  errorPayload
// @Failure      500  {object}  errorPayload
// @Router       /api/artifacts [get]
func ListArtifacts(svc service.ArtifactService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, err := strconv.Atoi(c.Query("limit", strconv.Itoa(service.DefaultListLimit)))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_LIMIT", "invalid limit")
		}
		offset, err := strconv.Atoi(c.Query("offset", "0"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_OFFSET", "invalid offset")
		}

		res, err := svc.List(c.UserContext(), limit, offset)
		if err != nil {
			return writeArtifactError(c, err)
		}
		return c.JSON(res)
	}
}
