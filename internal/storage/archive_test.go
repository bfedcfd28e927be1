package storage

import (
	"context"
	"io"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"jet/internal/domain"
	"jet/internal/migration"
)

func openTestArchive(t *testing.T) *Archive {
	t.Helper()

	archive, err := OpenArchiveAt("sqlite", filepath.Join(t.TempDir(), ".jet", "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { archive.Close() })

	m := migration.NewSchemaMigrator(archive.DB(), archive.Driver(), io.Discard, zaptest.NewLogger(t))
	require.NoError(t, m.Run(context.Background()))
	return archive
}

func TestArchive_RecordAndList(t *testing.T) {
	ctx := context.Background()
	archive := openTestArchive(t)

	first := sampleRecord()
	first.Meta.RunID = "run-1"
	first.Meta.Timestamp = "2026-01-02T10:00:00Z"
	second := domain.ResultRecord{
		Summary: domain.RunSummary{NTests: 2, Pass: 2},
		Meta:    domain.RunMeta{RunID: "run-2", Timestamp: "2026-01-03T10:00:00Z", Workers: 1},
	}

	for _, r := range []domain.ResultRecord{first, second} {
		id, err := archive.Record(ctx, r)
		require.NoError(t, err)
		assert.Equal(t, r.Meta.RunID, id)
	}

	runs, err := archive.Runs(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "run-2", runs[0].Meta.RunID)
	assert.Equal(t, second.Summary, runs[0].Summary)
	assert.Equal(t, first.Summary, runs[1].Summary)
	assert.Equal(t, first.Meta.Workers, runs[1].Meta.Workers)
	assert.InDelta(t, 1.5, runs[1].Meta.DurationSeconds, 1e-9)

	limited, err := archive.Runs(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestArchive_Diagnostics(t *testing.T) {
	ctx := context.Background()
	archive := openTestArchive(t)

	record := sampleRecord()
	_, err := archive.Record(ctx, record)
	require.NoError(t, err)

	diags, err := archive.Diagnostics(ctx, record.Meta.RunID)
	require.NoError(t, err)
	require.Len(t, diags, 2)

	assert.Equal(t, domain.KindFailed, diags[0].Kind)
	assert.Equal(t, "AssertionError", diags[0].AliasName)
	assert.Equal(t, 21, diags[0].SourceLine)
	assert.Equal(t, "Sum", diags[0].TestName)
	assert.Empty(t, diags[0].LocalVariables)
	assert.Equal(t, "PreconditionError", diags[1].AliasName)

	none, err := archive.Diagnostics(ctx, "unknown")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestArchive_GeneratesRunID(t *testing.T) {
	archive := openTestArchive(t)

	id, err := archive.Record(context.Background(), domain.ResultRecord{Meta: domain.RunMeta{Timestamp: "2026-01-01T00:00:00Z"}})
	require.NoError(t, err)
	assert.Len(t, id, 36)
}

func TestArchive_DuplicateRunIsRejected(t *testing.T) {
	ctx := context.Background()
	archive := openTestArchive(t)

	record := sampleRecord()
	_, err := archive.Record(ctx, record)
	require.NoError(t, err)

	_, err = archive.Record(ctx, record)
	assert.Error(t, err)

	runs, err := archive.Runs(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}

func TestOpenArchiveAt_UnknownDriver(t *testing.T) {
	_, err := OpenArchiveAt("postgres", "x")
	assert.ErrorContains(t, err, "unsupported history driver")
}
