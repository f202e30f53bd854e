package service

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"pdfapi/internal/apperror"
	"pdfapi/internal/logging"
	"pdfapi/internal/metrics"
	"pdfapi/internal/model"
	"pdfapi/internal/requestctx"
	"pdfapi/internal/staging"
)

var tracer = otel.Tracer("pdfapi/internal/service")

type stepFunc func(ctx context.Context, ws *staging.Workspace) (*model.OperationResult, error)

// run executes one pipeline invocation inside a fresh workspace.
// Whatever fn returns, the workspace is removed before run returns, and any
// error leaves as an *apperror.Error annotated with the operation.
func (s *pdfService) run(ctx context.Context, op model.Operation, fn stepFunc) (res *model.OperationResult, err error) {
	ctx, span := tracer.Start(ctx, "pdf."+string(op),
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("pdf.operation", string(op)),
			attribute.String("request.id", requestctx.RequestID(ctx)),
		))
	defer span.End()
	start := time.Now()

	defer func() {
		outcome := metrics.OutcomeSuccess
		if err != nil {
			err = annotate(op, err)
			outcome = string(apperror.KindOf(err))
			span.RecordError(err)
			span.SetStatus(codes.Error, outcome)
			s.logFailure(ctx, op, err)
		} else {
			span.SetAttributes(attribute.Int("pdf.artifacts", len(res.Artifacts)))
		}
		s.metrics.Observe(string(op), outcome, time.Since(start))
	}()

	ws, err := s.stager.Begin()
	if err != nil {
		return nil, apperror.Wrap(apperror.KindInternal, "failed to prepare workspace", err)
	}
	defer func() {
		if cerr := ws.Close(); cerr != nil {
			s.log.WarnContext(ctx, "workspace_cleanup_failed",
				logging.KeyOperation, string(op),
				logging.KeyError, cerr.Error())
		}
	}()
	if err := ws.PrepareScratch(); err != nil {
		return nil, apperror.Wrap(apperror.KindInternal, "failed to prepare workspace", err)
	}

	return fn(ctx, ws)
}

func annotate(op model.Operation, err error) error {
	ae, ok := apperror.As(err)
	if !ok {
		ae = apperror.Wrap(apperror.KindInternal, "internal server error", err)
	}
	if ae.Op == "" {
		ae = ae.WithOp(string(op))
	}
	return ae
}

// logFailure logs validation rejections at info and everything else at error with the cause.
func (s *pdfService) logFailure(ctx context.Context, op model.Operation, err error) {
	kind := apperror.KindOf(err)
	attrs := []any{
		logging.KeyOperation, string(op),
		logging.KeyRequestID, requestctx.RequestID(ctx),
		"kind", string(kind),
	}
	if kind.IsValidation() {
		s.log.InfoContext(ctx, "operation_rejected", append(attrs, "reason", err.Error())...)
		return
	}
	s.log.Log(ctx, slog.LevelError, "operation_failed", append(attrs, logging.KeyError, err.Error())...)
}

// stage writes each part into ws and confirms it is still there.
func stage(ws *staging.Workspace, parts ...model.FilePart) ([]*model.UploadedFile, error) {
	files := make([]*model.UploadedFile, 0, len(parts))
	for _, p := range parts {
		f, err := ws.Stage(p)
		if err != nil {
			return nil, apperror.Wrap(apperror.KindInternal, "failed to store upload", err)
		}
		files = append(files, f)
	}
	for _, f := range files {
		if err := ws.Verify(f); err != nil {
			return nil, err
		}
	}
	return files, nil
}

func paths(files []*model.UploadedFile) []string {
	out := make([]string, len(files))
	for i, f := range files {
		out[i] = f.Path
	}
	return out
}

// consume deletes staged inputs once the transformation has read them.
func (s *pdfService) consume(ctx context.Context, ws *staging.Workspace, files []*model.UploadedFile) {
	for _, f := range files {
		if err := ws.Consume(f); err != nil {
			s.log.WarnContext(ctx, "consume_failed", "file", f.SanitizedName, logging.KeyError, err.Error())
		}
	}
}
