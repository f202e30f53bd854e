package handler

import (
	"io"
	"mime/multipart"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"pdfapi/internal/apperror"
	"pdfapi/internal/model"
	"pdfapi/internal/service"
)

// MergeFiles godoc
// @Summary      Merge PDFs
// @Description  Concatenates two or more PDFs in upload order.
// @Tags         pdf
// @Accept       multipart/form-data
// @Produce      json
// @Param        files        formData  file    true   "PDF files (repeat the field, or use files[])"
// @Param        output_name  formData  string  false  "Name of the merged file"
// @Success      200  {object}  model.OperationResult
// @Failure      400  {object}  errorPayload
// @Failure      413  {object}  errorPayload
// @Failure      500  {object}  errorPayload
// @Router       /api/merge [post]
func MergeFiles(svc service.PDFService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		form, err := c.MultipartForm()
		if err != nil {
			return missing(c, "No files provided")
		}
		headers := form.File["files"]
		if len(headers) == 0 {
			headers = form.File["files[]"]
		}
		if len(headers) == 0 {
			return missing(c, "No files provided")
		}

		parts, closeAll, err := openParts(headers)
		defer closeAll()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "BAD_REQUEST", "cannot read uploaded file")
		}

		res, err := svc.Merge(c.UserContext(), model.MergeRequest{
			Files:      parts,
			OutputName: c.FormValue("output_name"),
		})
		return respond(c, res, err)
	}
}

// Watermark godoc
// @Summary      Watermark a PDF
// @Description  Stamps text diagonally across every page. The text is rendered upper-cased.
// @Tags         pdf
// @Accept       multipart/form-data
// @Produce      json
// @Param        file            formData  file    true   "PDF file"
// @Param        watermark_text  formData  string  false  "Watermark text (default CONFIDENTIAL)"
// @Param        output_name     formData  string  false  "Name of the output file"
// @Success      200  {object}  model.OperationResult
// @Failure      400  {object}  errorPayload
// @Failure      413  {object}  errorPayload
// @Failure      500  {object}  errorPayload
// @Router       /api/watermark [post]
func Watermark(svc service.PDFService) fiber.Handler {
	return withFile(func(c *fiber.Ctx, part model.FilePart) (*model.OperationResult, error) {
		return svc.Watermark(c.UserContext(), model.WatermarkRequest{
			File:       part,
			Text:       c.FormValue("watermark_text"),
			OutputName: c.FormValue("output_name"),
		})
	})
}

// ExtractText godoc
// @Summary      Extract text
// @Description  Writes the text of every page to a .txt file and returns a preview of up to 1000 characters.
// @Tags         pdf
// @Accept       multipart/form-data
// @Produce      json
// @Param        file  formData  file  true  "PDF file"
// @Success      200  {object}  model.OperationResult
// @Failure      400  {object}  errorPayload
// @Failure      413  {object}  errorPayload
// @Failure      500  {object}  errorPayload
// @Router       /api/extract [post]
func ExtractText(svc service.PDFService) fiber.Handler {
	return withFile(func(c *fiber.Ctx, part model.FilePart) (*model.OperationResult, error) {
		return svc.Extract(c.UserContext(), model.ExtractRequest{File: part})
	})
}

// Split godoc
// @Summary      Split a PDF
// @Description  Writes consecutive chunks of pages_per_file pages each.
// @Tags         pdf
// @Accept       multipart/form-data
// @Produce      json
// @Param        file            formData  file     true   "PDF file"
// @Param        pages_per_file  formData  integer  false  "Pages per output file (default 1)"
// @Success      200  {object}  model.OperationResult
// @Failure      400  {object}  errorPayload
// @Failure      413  {object}  errorPayload
// @Failure      500  {object}  errorPayload
// @Router       /api/split [post]
func Split(svc service.PDFService) fiber.Handler {
	return withFile(func(c *fiber.Ctx, part model.FilePart) (*model.OperationResult, error) {
		n, err := formInt(c, "pages_per_file", 1)
		if err != nil {
			return nil, err
		}
		return svc.Split(c.UserContext(), model.SplitRequest{File: part, PagesPerFile: n})
	})
}

// Rotate godoc
// @Summary      Rotate a PDF
// @Description  Rotates every page clockwise by 90, 180 or 270 degrees.
// @Tags         pdf
// @Accept       multipart/form-data
// @Produce      json
// @Param        file         formData  file     true   "PDF file"
// @Param        angle        formData  integer  false  "Clockwise angle (default 90)"
// @Param        output_name  formData  string   false  "Name of the output file"
// @Success      200  {object}  model.OperationResult
// @Failure      400  {object}  errorPayload
// @Failure      413  {object}  errorPayload
// @Failure      500  {object}  errorPayload
// @Router       /api/rotate [post]
func Rotate(svc service.PDFService) fiber.Handler {
	return withFile(func(c *fiber.Ctx, part model.FilePart) (*model.OperationResult, error) {
		angle, err := formInt(c, "angle", 90)
		if err != nil {
			return nil, err
		}
		return svc.Rotate(c.UserContext(), model.RotateRequest{
			File:       part,
			Angle:      angle,
			OutputName: c.FormValue("output_name"),
		})
	})
}

// CoverLetter godoc
// @Summary      Create a cover letter
// @Description  Renders a one-page cover letter. Accepts JSON or form fields.
// @Tags         pdf
// @Accept       json,x-www-form-urlencoded,multipart/form-data
// @Produce      json
// @Param        request  body      model.CoverLetterRequest  true  "Letter fields"
// @Success      200  {object}  model.OperationResult
// @Failure      400  {object}  errorPayload
// @Failure      500  {object}  errorPayload
// @Router       /api/cover-letter [post]
func CoverLetter(svc service.PDFService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req model.CoverLetterRequest
		if len(c.Body()) > 0 {
			if err := c.BodyParser(&req); err != nil {
				return writeError(c, fiber.StatusBadRequest, "BAD_REQUEST", "invalid request body")
			}
		}
		res, err := svc.CoverLetter(c.UserContext(), req)
		return respond(c, res, err)
	}
}

// withFile reads the single "file" upload and hands it to run.
func withFile(run func(c *fiber.Ctx, part model.FilePart) (*model.OperationResult, error)) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fh, err := c.FormFile("file")
		if err != nil {
			return missing(c, "No file provided")
		}
		parts, closeAll, err := openParts([]*multipart.FileHeader{fh})
		defer closeAll()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "BAD_REQUEST", "cannot read uploaded file")
		}
		res, err := run(c, parts[0])
		return respond(c, res, err)
	}
}

func openParts(headers []*multipart.FileHeader) ([]model.FilePart, func(), error) {
	var closers []io.Closer
	closeAll := func() {
		for _, cl := range closers {
			_ = cl.Close()
		}
	}
	parts := make([]model.FilePart, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			return nil, closeAll, err
		}
		closers = append(closers, f)
		parts = append(parts, model.FilePart{Filename: fh.Filename, Size: fh.Size, Content: f})
	}
	return parts, closeAll, nil
}

// formInt parses an optional integer form field.
func formInt(c *fiber.Ctx, key string, def int) (int, error) {
	raw := strings.TrimSpace(c.FormValue(key))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperror.New(apperror.KindInvalidParameter, key+" must be an integer")
	}
	return n, nil
}

func missing(c *fiber.Ctx, msg string) error {
	return writeError(c, fiber.StatusBadRequest, string(apperror.KindMissingRequiredField), msg)
}

func respond(c *fiber.Ctx, res *model.OperationResult, err error) error {
	if err != nil {
		return writeAppError(c, err)
	}
	return c.JSON(res)
}
