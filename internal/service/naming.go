package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"

	"pdfapi/internal/apperror"
	"pdfapi/internal/logging"
	"pdfapi/internal/model"
	"pdfapi/internal/requestctx"
	"pdfapi/internal/staging"
	"pdfapi/internal/storage"
)

// TimestampLayout renders the {YYYYMMDD_HHMMSS} part of generated names.
const TimestampLayout = "20060102_150405"

const (
	contentTypePDF  = "application/pdf"
	contentTypeText = "text/plain; charset=utf-8"
)

// generatedName returns base_<timestamp>ext, adding a short random suffix if
// the outbound store already holds that name.
func (s *pdfService) generatedName(ctx context.Context, base, ext string) (string, error) {
	stem := base + "_" + s.now().In(s.loc).Format(TimestampLayout)
	name := stem + ext
	_, err := s.store.Stat(ctx, name)
	switch {
	case errors.Is(err, storage.ErrObjectNotFound):
		return name, nil
	case err != nil:
		return "", apperror.Wrap(apperror.KindInternal, "failed to name output", err)
	}
	return stem + "_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:8] + ext, nil
}

// outputName honours a caller-supplied name after sanitising it and falls
// back to a generated one. Caller names may replace an existing artifact.
func (s *pdfService) outputName(ctx context.Context, requested, base, ext string) (string, error) {
	if name := staging.CleanName(strings.TrimSpace(requested)); name != "" {
		return name, nil
	}
	return s.generatedName(ctx, base, ext)
}

// persist copies a scratch output into the outbound store and registers it.
// A failed registration removes the stored object again.
func (s *pdfService) persist(ctx context.Context, op model.Operation, scratch, name, contentType string) (*model.Artifact, error) {
	f, err := os.Open(scratch)
	if err != nil {
		return nil, apperror.Wrap(apperror.KindInternal, "failed to save output", err)
	}
	defer f.Close()
	st, err := f.Stat()
	if err != nil {
		return nil, apperror.Wrap(apperror.KindInternal, "failed to save output", err)
	}

	rid := requestctx.RequestID(ctx)
	info, err := s.store.Put(ctx, name, f, storage.PutObjectOptions{
		Size:        st.Size(),
		ContentType: contentType,
		Metadata:    map[string]string{"operation": string(op), "request-id": rid},
	})
	if err != nil {
		return nil, apperror.Wrap(apperror.KindInternal, "failed to save output", fmt.Errorf("put %s: %w", name, err))
	}

	stored, err := s.repo.Create(ctx, &model.Artifact{
		ID:          uuid.NewString(),
		Filename:    name,
		Operation:   op,
		Size:        info.Size,
		ContentType: contentType,
		RequestID:   rid,
		CreatedAt:   s.now().UTC(),
	})
	if err != nil {
		if delErr := s.store.Delete(ctx, name); delErr != nil {
			s.log.ErrorContext(ctx, "artifact_rollback_failed", "filename", name, logging.KeyError, delErr.Error())
		}
		return nil, apperror.Wrap(apperror.KindInternal, "failed to save output", fmt.Errorf("register %s: %w", name, err))
	}

	s.metrics.AddArtifactBytes(string(op), info.Size)
	return stored, nil
}
