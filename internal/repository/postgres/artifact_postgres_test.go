package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pdfapi/internal/model"
	"pdfapi/internal/repository"
)

var cols = []string{"id", "filename", "operation", "size", "content_type", "request_id", "created_at"}

func newRepo(t *testing.T) (*ArtifactPostgres, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewArtifactPostgres(db), mock
}

func TestArtifactPostgres_Create(t *testing.T) {
	repo, mock := newRepo(t)

	now := time.Now().UTC()
	a := &model.Artifact{
		ID:          "0b7e3c1e-6f7c-4c55-9d6a-0f7f7b0c2a11",
		Filename:    "combined.pdf",
		Operation:   model.OpMerge,
		Size:        2048,
		ContentType: "application/pdf",
		RequestID:   "req-1",
		CreatedAt:   now,
	}

	mock.ExpectQuery("INSERT INTO artifacts").
		WithArgs(a.ID, a.Filename, "merge", a.Size, a.ContentType, "req-1", a.CreatedAt).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow(a.ID, a.Filename, "merge", a.Size, a.ContentType, "req-1", a.CreatedAt))

	got, err := repo.Create(context.Background(), a)

	require.NoError(t, err)
	assert.Equal(t, a, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestArtifactPostgres_CreateWithoutRequestID(t *testing.T) {
	repo, mock := newRepo(t)
	now := time.Now().UTC()

	mock.ExpectQuery("INSERT INTO artifacts").
		WithArgs("id-1", "x.txt", "extract", int64(5), "text/plain", nil, now).
		WillReturnRows(sqlmock.NewRows(cols).AddRow("id-1", "x.txt", "extract", 5, "text/plain", nil, now))

	got, err := repo.Create(context.Background(), &model.Artifact{
		ID: "id-1", Filename: "x.txt", Operation: model.OpExtract, Size: 5, ContentType: "text/plain", CreatedAt: now,
	})

	require.NoError(t, err)
	assert.Empty(t, got.RequestID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestArtifactPostgres_CreateError(t *testing.T) {
	repo, mock := newRepo(t)

	mock.ExpectQuery("INSERT INTO artifacts").WillReturnError(errors.New("connection reset"))

	got, err := repo.Create(context.Background(), &model.Artifact{ID: "id"})
	assert.Nil(t, got)
	assert.ErrorContains(t, err, "insert artifact")
}

func TestArtifactPostgres_List(t *testing.T) {
	repo, mock := newRepo(t)
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM artifacts`).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
		mock.ExpectQuery("SELECT (.+) FROM artifacts ORDER BY").
			WithArgs(2, 0).
			WillReturnRows(sqlmock.NewRows(cols).
				AddRow("b", "split_pages_3-4_20240101_120000.pdf", "split", 10, "application/pdf", "r", time.Now()).
				AddRow("a", "split_pages_1-2_20240101_120000.pdf", "split", 12, "application/pdf", "r", time.Now()))

		res, err := repo.List(ctx, repository.PageQuery{Limit: 2, Offset: 0})

		require.NoError(t, err)
		assert.Equal(t, 3, res.Total)
		require.Len(t, res.Items, 2)
		assert.Equal(t, model.OpSplit, res.Items[0].Operation)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("count fails", func(t *testing.T) {
		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM artifacts`).WillReturnError(errors.New("down"))

		res, err := repo.List(ctx, repository.PageQuery{Limit: 10})
		assert.Nil(t, res)
		assert.ErrorContains(t, err, "count artifacts")
	})

	t.Run("empty page", func(t *testing.T) {
		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM artifacts`).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
		mock.ExpectQuery("SELECT (.+) FROM artifacts ORDER BY").
			WithArgs(10, 0).
			WillReturnRows(sqlmock.NewRows(cols))

		res, err := repo.List(ctx, repository.PageQuery{Limit: 10})
		require.NoError(t, err)
		assert.NotNil(t, res.Items)
		assert.Empty(t, res.Items)
	})
}
