package migration

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pdfapi/internal/logging"
)

const sentinelQuery = `SELECT to_regclass($1) IS NOT NULL`

func TestEnsureMigrated_Skip(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(sentinelQuery)).
		WithArgs("public.artifacts").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	var buf bytes.Buffer
	require.NoError(t, EnsureMigrated(context.Background(), db, logging.New(&buf, time.UTC, nil)))
	assert.Contains(t, buf.String(), "db_migration_skip")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnsureMigrated_RunsAllSteps(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(sentinelQuery)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	for _, s := range steps {
		mock.ExpectExec(regexp.QuoteMeta(s.SQL)).WillReturnResult(sqlmock.NewResult(0, 0))
	}

	var buf bytes.Buffer
	log := logging.New(&buf, time.UTC, slog.LevelDebug)
	require.NoError(t, EnsureMigrated(context.Background(), db, log))
	assert.Contains(t, buf.String(), "create_table_artifacts")
	assert.Contains(t, buf.String(), "db_migration_success")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnsureMigrated_StepFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(sentinelQuery)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectExec(regexp.QuoteMeta(steps[0].SQL)).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta(steps[1].SQL)).WillReturnError(errors.New("permission denied"))

	err = EnsureMigrated(context.Background(), db, logging.Discard())
	assert.ErrorContains(t, err, "create_index_artifacts_filename")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnsureMigrated_SentinelError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(sentinelQuery)).WillReturnError(errors.New("conn refused"))

	err = EnsureMigrated(context.Background(), db, logging.Discard())
	assert.ErrorContains(t, err, "check sentinel table")
}
