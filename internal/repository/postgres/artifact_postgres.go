package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"pdfapi/internal/model"
	"pdfapi/internal/repository"
)

// ArtifactPostgres is the PostgreSQL implementation of repository.ArtifactRepository.
type ArtifactPostgres struct {
	db *sql.DB
}

// NewArtifactPostgres creates a new ArtifactPostgres repository.
func NewArtifactPostgres(db *sql.DB) *ArtifactPostgres {
	return &ArtifactPostgres{db: db}
}

var _ repository.ArtifactRepository = (*ArtifactPostgres)(nil)

const artifactColumns = `id, filename, operation, size, content_type, request_id, created_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanArtifact(s scanner) (model.Artifact, error) {
	var (
		a   model.Artifact
		op  string
		rid sql.NullString
	)
	if err := s.Scan(&a.ID, &a.Filename, &op, &a.Size, &a.ContentType, &rid, &a.CreatedAt); err != nil {
		return model.Artifact{}, err
	}
	a.Operation = model.Operation(op)
	a.RequestID = rid.String
	return a, nil
}

func (r *ArtifactPostgres) Create(ctx context.Context, a *model.Artifact) (*model.Artifact, error) {
	const q = `
		INSERT INTO artifacts (` + artifactColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + artifactColumns

	var rid sql.NullString
	if a.RequestID != "" {
		rid = sql.NullString{String: a.RequestID, Valid: true}
	}
	row := r.db.QueryRowContext(ctx, q,
		a.ID,
		a.Filename,
		string(a.Operation),
		a.Size,
		a.ContentType,
		rid,
		a.CreatedAt,
	)
	out, err := scanArtifact(row)
	if err != nil {
		return nil, fmt.Errorf("insert artifact: %w", err)
	}
	return &out, nil
}

// List uses LIMIT/OFFSET pagination plus a separate count.
func (r *ArtifactPostgres) List(ctx context.Context, pq repository.PageQuery) (*repository.PageResult[model.Artifact], error) {
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM artifacts`).Scan(&total); err != nil {
		return nil, fmt.Errorf("count artifacts: %w", err)
	}

	const qList = `
		SELECT ` + artifactColumns + `
		FROM artifacts
		ORDER BY created_at DESC, id DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.db.QueryContext(ctx, qList, pq.Limit, pq.Offset)
	if err != nil {
		return nil, fmt.Errorf("list artifacts: %w", err)
	}
	defer rows.Close()

	items := make([]model.Artifact, 0)
	for rows.Next() {
		a, err := scanArtifact(rows)
		if err != nil {
			return nil, fmt.Errorf("scan artifact: %w", err)
		}
		items = append(items, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &repository.PageResult[model.Artifact]{Items: items, Total: total}, nil
}
