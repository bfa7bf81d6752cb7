package cli

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/kassist/internal/core/domain"
)

func consistentReport() *domain.IndexReport {
	return &domain.IndexReport{
		Exists:          true,
		Dimension:       768,
		Model:           "nomic-embed-text",
		IndexLen:        4,
		MapLen:          4,
		IndexGeneration: 3,
		MapGeneration:   3,
		Chunks:          4,
	}
}

func TestIndexVerify_Consistent(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.index.verify = consistentReport()

	out, err := executeCommand("index", "verify")

	require.NoError(t, err)
	assert.Contains(t, out, "Model:       nomic-embed-text")
	assert.Contains(t, out, "4 vectors (generation 3)")
	assert.Contains(t, out, "Index is consistent.")
}

func TestIndexVerify_Inconsistent(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	report := consistentReport()
	report.MapLen = 3
	report.MapGeneration = 2
	ts.index.verify = report

	out, err := executeCommand("index", "verify")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrIndexInconsistency)
	assert.Contains(t, err.Error(), "kassist index rebuild")
	assert.Contains(t, out, "3 entries (generation 2)")
}

func TestIndexVerify_Orphans(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	report := consistentReport()
	report.Chunks = 6
	report.Orphans = 2
	ts.index.verify = report

	out, err := executeCommand("index", "verify")

	require.NoError(t, err)
	assert.Contains(t, out, "2 chunks are not indexed")
}

func TestIndexVerify_NoIndex(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.index.verify = &domain.IndexReport{Chunks: 0}

	out, err := executeCommand("index", "verify")

	require.NoError(t, err)
	assert.Contains(t, out, "No index yet. 0 chunks stored.")
}

func TestIndexVerify_Error(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.index.err = errors.New("corrupt header")

	_, err := executeCommand("index", "verify")

	assert.EqualError(t, err, "verify failed: corrupt header")
}

func TestIndexRebuild(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.index.rebuild = consistentReport()

	out, err := executeCommand("index", "rebuild")

	require.NoError(t, err)
	assert.True(t, ts.index.rebuilt)
	assert.Contains(t, out, "Index rebuilt.")
}

func TestIndexRebuild_ReportsSkipped(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	report := consistentReport()
	report.Orphans = 1
	ts.index.rebuild = report

	out, err := executeCommand("index", "rebuild")

	require.NoError(t, err)
	assert.Contains(t, out, "1 chunks were skipped")
}

func TestIndexCommands_NoService(t *testing.T) {
	SetServices(nil)
	defer rootCmd.SetArgs(nil)

	_, err := executeCommand("index", "verify")
	assert.EqualError(t, err, "index service not configured")

	_, err = executeCommand("index", "rebuild")
	assert.EqualError(t, err, "index service not configured")
}
