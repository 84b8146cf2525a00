package db

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/exoscan-data/exoplanet.report/internal/config"
	"github.com/exoscan-data/exoplanet.report/internal/model"
	"github.com/exoscan-data/exoplanet.report/internal/pipeline"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	db, err := NewDB(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestMigrateUpIsIdempotent(t *testing.T) {
	db := testDB(t)
	require.NoError(t, db.MigrateUp())

	version, dirty, err := db.MigrateVersion()
	require.NoError(t, err)
	assert.False(t, dirty)
	assert.Equal(t, uint(1), version)
}

func TestRecordAndFetchRun(t *testing.T) {
	db := testDB(t)

	run := Run{
		RunID:          "run-1",
		Mission:        "Kepler",
		SourceName:     "cumulative.csv",
		ProcessedFile:  "abc_cumulative_processed.csv",
		TotalRows:      10,
		OKRows:         9,
		FailedRows:     1,
		ImputedValues:  12,
		Candidates:     6,
		Confirmed:      2,
		FalsePositives: 1,
	}
	failures := []pipeline.RowFailure{{Index: 4, Reason: "row has 3 cells, header has 2"}}

	require.NoError(t, db.RecordRun(run, failures))

	got, err := db.GetRun("run-1")
	require.NoError(t, err)
	assert.Equal(t, "Kepler", got.Mission)
	assert.Equal(t, 9, got.OKRows)
	assert.Equal(t, 12, got.ImputedValues)
	assert.False(t, got.CreatedAt.IsZero())

	gotFailures, err := db.RowFailures("run-1")
	require.NoError(t, err)
	require.Len(t, gotFailures, 1)
	assert.Equal(t, 4, gotFailures[0].Index)
}

func TestRecordRunDuplicateIDFails(t *testing.T) {
	db := testDB(t)
	run := Run{RunID: "dup", Mission: "TESS"}
	require.NoError(t, db.RecordRun(run, nil))
	assert.Error(t, db.RecordRun(run, nil))
}

func TestRecentRunsOrdering(t *testing.T) {
	db := testDB(t)
	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, db.RecordRun(Run{RunID: id, Mission: "K2"}, nil))
	}

	runs, err := db.RecentRuns(2)
	require.NoError(t, err)
	assert.Len(t, runs, 2)
}

func TestNewRunFromResult(t *testing.T) {
	router, err := model.NewRouter(t.TempDir())
	require.NoError(t, err)
	p := pipeline.New(config.EmptyBridgeConfig(), router)

	res, err := p.Run("TESS", strings.NewReader("pl_orbper,pl_rade\n3.3,1.9\n5.1,2.2\n"))
	require.NoError(t, err)

	run := NewRunFromResult("run-x", "toi.csv", "out.csv", res)
	assert.Equal(t, "TESS", run.Mission)
	assert.Equal(t, 2, run.TotalRows)
	assert.Equal(t, 2, run.OKRows)
	assert.Equal(t, 2, run.Confirmed, "TESS fallback classifies confirmed")
	assert.Equal(t, 0, run.FailedRows)
}
