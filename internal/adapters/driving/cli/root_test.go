package cli

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/kassist/internal/logger"
)

func TestRootCmd_Flags(t *testing.T) {
	assert.NotNil(t, rootCmd.PersistentFlags().Lookup("verbose"))
	assert.NotNil(t, rootCmd.PersistentFlags().Lookup("data-dir"))
	assert.True(t, rootCmd.SilenceUsage)
}

func TestExecute_BootstrapsAndCleansUp(t *testing.T) {
	defer SetBootstrap(nil)
	defer SetServices(nil)
	defer func() { dataDir = "" }()

	var gotOpts Options
	cleaned := false
	SetBootstrap(func(opts Options) (*Services, func(), error) {
		gotOpts = opts
		return &Services{History: &mockHistoryService{}}, func() { cleaned = true }, nil
	})

	rootCmd.SetArgs([]string{"history", "--data-dir", "/tmp/kassist-test"})
	defer rootCmd.SetArgs(nil)

	require.NoError(t, Execute())
	assert.Equal(t, "/tmp/kassist-test", gotOpts.DataDir)
	assert.True(t, cleaned)
}

func TestExecute_BootstrapError(t *testing.T) {
	defer SetBootstrap(nil)

	SetBootstrap(func(Options) (*Services, func(), error) {
		return nil, nil, errors.New("cannot open store")
	})

	_, err := executeCommand("history")
	defer rootCmd.SetArgs(nil)

	assert.EqualError(t, err, "cannot open store")
}

func TestExecute_SkipsBootstrapForVersion(t *testing.T) {
	defer SetBootstrap(nil)

	called := false
	SetBootstrap(func(Options) (*Services, func(), error) {
		called = true
		return &Services{}, nil, nil
	})

	_, err := executeCommand("version")
	defer rootCmd.SetArgs(nil)

	require.NoError(t, err)
	assert.False(t, called)
}

func TestPrepare_SetsVerbose(t *testing.T) {
	defer logger.SetVerbose(false)
	defer func() { verbose = false }()
	_, cleanup := setupTestServices()
	defer cleanup()

	_, err := executeCommand("history", "--verbose")

	require.NoError(t, err)
	assert.True(t, logger.IsVerbose())
}
