package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/kassist/internal/core/domain"
)

func TestHistory_Empty(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	out, err := executeCommand("history")

	require.NoError(t, err)
	assert.Contains(t, out, "No questions answered yet.")
}

func TestHistory_PrintsEntries(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.history.entries = []domain.QuestionLog{
		{ID: "q2", Question: "how long is leave?", Answer: "Twenty days.", Sources: "handbook.pdf - Page 3", CreatedAt: testTime},
		{ID: "q1", Question: "who approves leave?", Answer: "Your manager.", CreatedAt: testTime},
	}

	out, err := executeCommand("history")

	require.NoError(t, err)
	assert.Equal(t, 20, ts.history.limit)
	assert.Contains(t, out, "[2026-03-14 09:30:00] how long is leave?")
	assert.Contains(t, out, "Sources: handbook.pdf - Page 3")
	assert.Contains(t, out, "Your manager.")
}

func TestHistory_Limit(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	_, err := executeCommand("history", "-n", "5")

	require.NoError(t, err)
	assert.Equal(t, 5, ts.history.limit)
}

func TestHistory_NoService(t *testing.T) {
	SetServices(nil)
	defer rootCmd.SetArgs(nil)

	_, err := executeCommand("history")

	assert.EqualError(t, err, "history service not configured")
}
