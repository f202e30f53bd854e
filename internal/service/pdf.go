package service

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"pdfapi/internal/apperror"
	"pdfapi/internal/logging"
	"pdfapi/internal/metrics"
	"pdfapi/internal/model"
	"pdfapi/internal/pdf"
	"pdfapi/internal/repository"
	"pdfapi/internal/staging"
	"pdfapi/internal/storage"
	"pdfapi/internal/validation"
)

// PreviewLimit is the number of characters of extracted text returned inline.
const PreviewLimit = 1000

// PDFService runs the transformation pipeline: validate, stage, transform,
// persist, clean up. Every error it returns is an *apperror.Error.
type PDFService interface {
	Merge(ctx context.Context, req model.MergeRequest) (*model.OperationResult, error)
	Watermark(ctx context.Context, req model.WatermarkRequest) (*model.OperationResult, error)
	Extract(ctx context.Context, req model.ExtractRequest) (*model.OperationResult, error)
	Split(ctx context.Context, req model.SplitRequest) (*model.OperationResult, error)
	Rotate(ctx context.Context, req model.RotateRequest) (*model.OperationResult, error)
	CoverLetter(ctx context.Context, req model.CoverLetterRequest) (*model.OperationResult, error)
}

// Dependencies wires a PDFService. Metrics and Logger may be nil; Location
// defaults to UTC and Now to time.Now.
type Dependencies struct {
	Stager            *staging.Stager
	Store             storage.Storage
	Repo              repository.ArtifactRepository
	Engine            pdf.Engine
	Metrics           *metrics.Pipeline
	Logger            *slog.Logger
	AllowedExtensions []string
	Location          *time.Location
	Now               func() time.Time
}

type pdfService struct {
	stager  *staging.Stager
	store   storage.Storage
	repo    repository.ArtifactRepository
	engine  pdf.Engine
	metrics *metrics.Pipeline
	log     *slog.Logger
	allowed []string
	loc     *time.Location
	now     func() time.Time
}

// NewPDFService constructs a PDFService.
func NewPDFService(d Dependencies) PDFService {
	s := &pdfService{
		stager:  d.Stager,
		store:   d.Store,
		repo:    d.Repo,
		engine:  d.Engine,
		metrics: d.Metrics,
		log:     d.Logger,
		allowed: d.AllowedExtensions,
		loc:     d.Location,
		now:     d.Now,
	}
	if s.log == nil {
		s.log = logging.Discard()
	}
	s.log = s.log.With(logging.KeyComponent, "pipeline")
	if len(s.allowed) == 0 {
		s.allowed = []string{"pdf"}
	}
	if s.loc == nil {
		s.loc = time.UTC
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Merge concatenates the valid inputs in upload order. Files with a
// disallowed extension are skipped as long as two valid ones remain.
func (s *pdfService) Merge(ctx context.Context, req model.MergeRequest) (*model.OperationResult, error) {
	return s.run(ctx, model.OpMerge, func(ctx context.Context, ws *staging.Workspace) (*model.OperationResult, error) {
		if err := validation.MergeInputs(len(req.Files)); err != nil {
			return nil, err
		}
		var valid []model.FilePart
		for _, p := range req.Files {
			if validation.AllowedFile(p.Filename, s.allowed) {
				valid = append(valid, p)
			}
		}
		if err := validation.ValidMergeInputs(len(valid)); err != nil {
			return nil, err
		}

		files, err := stage(ws, valid...)
		if err != nil {
			return nil, err
		}
		defer s.consume(ctx, ws, files)

		name, err := s.outputName(ctx, req.OutputName, "merged", ".pdf")
		if err != nil {
			return nil, err
		}
		scratch := ws.Scratch(name)
		if err := s.engine.Merge(ctx, paths(files), scratch); err != nil {
			return nil, apperror.Transformation(err)
		}
		return s.single(ctx, model.OpMerge, scratch, name, contentTypePDF,
			fmt.Sprintf("Successfully merged %d PDF files", len(files)))
	})
}

// Watermark stamps the upper-cased text over every page.
func (s *pdfService) Watermark(ctx context.Context, req model.WatermarkRequest) (*model.OperationResult, error) {
	return s.run(ctx, model.OpWatermark, func(ctx context.Context, ws *staging.Workspace) (*model.OperationResult, error) {
		if err := validation.File(req.File.Filename, s.allowed); err != nil {
			return nil, err
		}
		text := strings.TrimSpace(req.Text)
		if text == "" {
			text = model.DefaultWatermarkText
		}

		files, err := stage(ws, req.File)
		if err != nil {
			return nil, err
		}
		defer s.consume(ctx, ws, files)

		name, err := s.outputName(ctx, req.OutputName, "watermarked", ".pdf")
		if err != nil {
			return nil, err
		}
		scratch := ws.Scratch(name)
		if err := s.engine.Watermark(ctx, files[0].Path, scratch, strings.ToUpper(text)); err != nil {
			return nil, apperror.Transformation(err)
		}
		return s.single(ctx, model.OpWatermark, scratch, name, contentTypePDF,
			fmt.Sprintf(`Watermark "%s" added successfully`, text))
	})
}

// Extract writes the text of every page to a .txt artifact and returns a preview.
func (s *pdfService) Extract(ctx context.Context, req model.ExtractRequest) (*model.OperationResult, error) {
	return s.run(ctx, model.OpExtract, func(ctx context.Context, ws *staging.Workspace) (*model.OperationResult, error) {
		if err := validation.File(req.File.Filename, s.allowed); err != nil {
			return nil, err
		}

		files, err := stage(ws, req.File)
		if err != nil {
			return nil, err
		}
		defer s.consume(ctx, ws, files)

		pages, err := s.engine.ExtractText(ctx, files[0].Path)
		if err != nil {
			return nil, apperror.Transformation(err)
		}
		text := JoinPages(pages)

		name, err := s.generatedName(ctx, "extracted_text", ".txt")
		if err != nil {
			return nil, err
		}
		scratch := ws.Scratch(name)
		if err := os.WriteFile(scratch, []byte(text), 0o600); err != nil {
			return nil, apperror.Wrap(apperror.KindInternal, "failed to save output", err)
		}

		res, err := s.single(ctx, model.OpExtract, scratch, name, contentTypeText, "Text extracted successfully")
		if err != nil {
			return nil, err
		}
		preview := Preview(text)
		res.Preview = &preview
		return res, nil
	})
}

// Split writes consecutive chunks of pagesPerFile pages. Chunks already
// persisted stay in the outbound store if a later chunk fails.
func (s *pdfService) Split(ctx context.Context, req model.SplitRequest) (*model.OperationResult, error) {
	return s.run(ctx, model.OpSplit, func(ctx context.Context, ws *staging.Workspace) (*model.OperationResult, error) {
		if err := validation.File(req.File.Filename, s.allowed); err != nil {
			return nil, err
		}
		if err := validation.PagesPerFile(req.PagesPerFile); err != nil {
			return nil, err
		}

		files, err := stage(ws, req.File)
		if err != nil {
			return nil, err
		}
		defer s.consume(ctx, ws, files)
		in := files[0].Path

		total, err := s.engine.PageCount(ctx, in)
		if err != nil {
			return nil, apperror.Transformation(err)
		}

		res := &model.OperationResult{Success: true}
		for first := 1; first <= total; first += req.PagesPerFile {
			last := min(first+req.PagesPerFile-1, total)
			name, err := s.generatedName(ctx, fmt.Sprintf("split_pages_%d-%d", first, last), ".pdf")
			if err != nil {
				return nil, err
			}
			scratch := ws.Scratch(name)
			if err := s.engine.Trim(ctx, in, scratch, first, last); err != nil {
				return nil, apperror.Transformation(err)
			}
			a, err := s.persist(ctx, model.OpSplit, scratch, name, contentTypePDF)
			if err != nil {
				return nil, err
			}
			res.Files = append(res.Files, a.Filename)
			res.Artifacts = append(res.Artifacts, *a)
		}
		res.Message = fmt.Sprintf("PDF split into %d files", len(res.Files))
		return res, nil
	})
}

// Rotate turns every page clockwise.
func (s *pdfService) Rotate(ctx context.Context, req model.RotateRequest) (*model.OperationResult, error) {
	return s.run(ctx, model.OpRotate, func(ctx context.Context, ws *staging.Workspace) (*model.OperationResult, error) {
		if err := validation.File(req.File.Filename, s.allowed); err != nil {
			return nil, err
		}
		if err := validation.RotationAngle(req.Angle); err != nil {
			return nil, err
		}

		files, err := stage(ws, req.File)
		if err != nil {
			return nil, err
		}
		defer s.consume(ctx, ws, files)

		name, err := s.outputName(ctx, req.OutputName, "rotated", ".pdf")
		if err != nil {
			return nil, err
		}
		scratch := ws.Scratch(name)
		if err := s.engine.Rotate(ctx, files[0].Path, scratch, req.Angle); err != nil {
			return nil, apperror.Transformation(err)
		}
		return s.single(ctx, model.OpRotate, scratch, name, contentTypePDF,
			fmt.Sprintf("PDF rotated by %d degrees", req.Angle))
	})
}

// CoverLetter renders the fixed template for the given applicant.
func (s *pdfService) CoverLetter(ctx context.Context, req model.CoverLetterRequest) (*model.OperationResult, error) {
	return s.run(ctx, model.OpCoverLetter, func(ctx context.Context, ws *staging.Workspace) (*model.OperationResult, error) {
		letter := pdf.CoverLetter{
			Name:     strings.TrimSpace(req.Name),
			Position: strings.TrimSpace(req.Position),
			Company:  strings.TrimSpace(req.Company),
			Email:    strings.TrimSpace(req.Email),
			Phone:    strings.TrimSpace(req.Phone),
			Date:     s.now().In(s.loc),
		}
		if err := validation.Required(
			validation.Field{Name: "name", Value: letter.Name},
			validation.Field{Name: "position", Value: letter.Position},
			validation.Field{Name: "company", Value: letter.Company},
		); err != nil {
			return nil, err
		}

		name, err := s.outputName(ctx, req.OutputName, "cover_letter", ".pdf")
		if err != nil {
			return nil, err
		}
		scratch := ws.Scratch(name)
		if err := s.engine.CoverLetter(ctx, letter, scratch); err != nil {
			return nil, apperror.Transformation(err)
		}
		return s.single(ctx, model.OpCoverLetter, scratch, name, contentTypePDF, "Cover letter created successfully")
	})
}

func (s *pdfService) single(ctx context.Context, op model.Operation, scratch, name, contentType, msg string) (*model.OperationResult, error) {
	a, err := s.persist(ctx, op, scratch, name, contentType)
	if err != nil {
		return nil, err
	}
	return &model.OperationResult{
		Success:   true,
		Message:   msg,
		Filename:  a.Filename,
		Artifacts: []model.Artifact{*a},
	}, nil
}

// JoinPages renders per-page text with "--- Page N ---" headers.
func JoinPages(pages []string) string {
	blocks := make([]string, len(pages))
	for i, p := range pages {
		blocks[i] = fmt.Sprintf("--- Page %d ---\n%s\n", i+1, p)
	}
	return strings.Join(blocks, "\n")
}

// Preview returns text unchanged up to PreviewLimit characters, otherwise the
// first PreviewLimit characters followed by "...".
func Preview(text string) string {
	r := []rune(text)
	if len(r) <= PreviewLimit {
		return text
	}
	return string(r[:PreviewLimit]) + "..."
}
