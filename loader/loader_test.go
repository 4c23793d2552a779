package loader

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/bitrise-io/go-utils/v2/log"
	"github.com/bitrise-io/go-utils/v2/pathutil"
	"github.com/bitrise-steplib/steps-robot-framework-results/artifact"
	"github.com/bitrise-steplib/steps-robot-framework-results/loader/mocks"
	"github.com/bitrise-steplib/steps-robot-framework-results/model"
	"github.com/bitrise-steplib/steps-robot-framework-results/rebot"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var (
	outputA  = filepath.Join("testdata", "a_output.xml")
	outputB  = filepath.Join("testdata", "b_output.xml")
	combined = filepath.Join("testdata", "combined_output.xml")
)

type recordingLogger struct {
	log.Logger
	warnings []string
}

func (l *recordingLogger) Warnf(format string, v ...interface{}) {
	l.warnings = append(l.warnings, fmt.Sprintf(format, v...))
	l.Logger.Warnf(format, v...)
}

type testingMocks struct {
	logger   *recordingLogger
	combiner *mocks.Combiner
}

func Test_GivenSingleOutput_WhenLoad_ThenParsesItDirectly(t *testing.T) {
	// Given
	loader, mocks := createLoaderAndMocks()

	// When
	result, merged, err := loader.Load([]string{outputA}, true, "")

	// Then
	require.NoError(t, err)
	assert.False(t, merged)
	assert.Equal(t, "A", result.Suite.Name)
	mocks.combiner.AssertNotCalled(t, "Combine", mock.Anything)
}

func Test_GivenNoOutputs_WhenLoad_ThenFails(t *testing.T) {
	loader, _ := createLoaderAndMocks()

	_, _, err := loader.Load(nil, false, "")

	require.ErrorIs(t, err, ErrNoOutputs)
}

func Test_GivenUnreadableOutput_WhenLoad_ThenFails(t *testing.T) {
	loader, _ := createLoaderAndMocks()

	_, _, err := loader.Load([]string{filepath.Join(t.TempDir(), "missing.xml")}, false, "")

	require.Error(t, err)
}

func Test_GivenMismatchedRoots_WhenLoadWithMerge_ThenFallsBackToCombine(t *testing.T) {
	// Given
	loader, mocks := createLoaderAndMocks()
	mocks.combiner.On("Combine", modeIs(rebot.ModeMerge)).Return(&rebot.CommandError{Output: "[ ERROR ] Merged suite 'B' is ignored because it is not found from original result set."})
	mocks.combiner.On("Combine", modeIs(rebot.ModeCombine)).Return(nil).Run(writeDestination(t, combined))

	// When
	result, merged, err := loader.Load([]string{outputA, outputB}, true, "")

	// Then
	require.NoError(t, err)
	assert.False(t, merged)
	require.Len(t, result.Suite.Suites, 2)
	assert.Equal(t, "A", result.Suite.Suites[0].Name)
	assert.Equal(t, "B", result.Suite.Suites[1].Name)
	require.Len(t, mocks.logger.warnings, 1)
	assert.Contains(t, mocks.logger.warnings[0], "Falling back to combine mode.")
	assert.Contains(t, mocks.logger.warnings[0], "Merged suite 'B' is ignored")
	assertStagedDirRemoved(t, mocks.combiner)

	// Falling back yields the same tree as combining directly
	direct, directMocks := createLoaderAndMocks()
	directMocks.combiner.On("Combine", modeIs(rebot.ModeCombine)).Return(nil).Run(writeDestination(t, combined))
	directResult, directMerged, err := direct.Load([]string{outputA, outputB}, false, "")
	require.NoError(t, err)
	assert.Equal(t, directMerged, merged)
	assert.Equal(t, directResult, result)
	assert.Empty(t, directMocks.logger.warnings)
	directMocks.combiner.AssertNumberOfCalls(t, "Combine", 1)
}

func Test_GivenMatchingRoots_WhenLoadWithMerge_ThenReportsMerged(t *testing.T) {
	// Given
	loader, mocks := createLoaderAndMocks()
	mocks.combiner.On("Combine", modeIs(rebot.ModeMerge)).Return(nil).Run(writeDestination(t, outputB))

	// When
	result, merged, err := loader.Load([]string{outputB, outputB}, true, "Nightly")

	// Then
	require.NoError(t, err)
	assert.True(t, merged)
	assert.Equal(t, "B", result.Suite.Name)
	assert.Empty(t, mocks.logger.warnings)
	mocks.combiner.AssertNumberOfCalls(t, "Combine", 1)
	params := mocks.combiner.Calls[0].Arguments.Get(0).(rebot.Params)
	assert.Equal(t, "Nightly", params.Name)
	assert.Equal(t, []string{"--removekeywords", "passed"}, params.AdditionalOptions)
}

func Test_GivenMergeProducesEmptyOutput_WhenLoad_ThenFallsBackToCombine(t *testing.T) {
	// Given
	loader, mocks := createLoaderAndMocks()
	mocks.combiner.On("Combine", modeIs(rebot.ModeMerge)).Return(nil).Run(func(args mock.Arguments) {
		params := args.Get(0).(rebot.Params)
		require.NoError(t, os.WriteFile(params.Destination, nil, 0600))
	})
	mocks.combiner.On("Combine", modeIs(rebot.ModeCombine)).Return(nil).Run(writeDestination(t, combined))

	// When
	result, merged, err := loader.Load([]string{outputA, outputB}, true, "")

	// Then
	require.NoError(t, err)
	assert.False(t, merged)
	assert.Len(t, result.Suite.Suites, 2)
	require.Len(t, mocks.logger.warnings, 1)
}

func Test_GivenMergeProducesNoOutput_WhenLoad_ThenFallsBackToCombine(t *testing.T) {
	// Given
	loader, mocks := createLoaderAndMocks()
	mocks.combiner.On("Combine", modeIs(rebot.ModeMerge)).Return(nil)
	mocks.combiner.On("Combine", modeIs(rebot.ModeCombine)).Return(nil).Run(writeDestination(t, combined))

	// When
	_, merged, err := loader.Load([]string{outputA, outputB}, true, "")

	// Then
	require.NoError(t, err)
	assert.False(t, merged)
	require.Len(t, mocks.logger.warnings, 1)
}

func Test_GivenCombineFails_WhenLoad_ThenFailsAndRemovesStagedDir(t *testing.T) {
	// Given
	loader, mocks := createLoaderAndMocks()
	mocks.combiner.On("Combine", mock.Anything).Return(&rebot.CommandError{ExitCode: 252, Output: "[ ERROR ] Reading XML source 'b.xml' failed"})

	// When
	_, _, err := loader.Load([]string{outputA, outputB}, true, "")

	// Then
	var commandErr *rebot.CommandError
	require.True(t, errors.As(err, &commandErr))
	assert.Equal(t, 252, commandErr.ExitCode)
	mocks.combiner.AssertNumberOfCalls(t, "Combine", 2)
	assertStagedDirRemoved(t, mocks.combiner)
}

func Test_GivenCombinerPanics_WhenLoad_ThenRemovesStagedDir(t *testing.T) {
	// Given
	loader, mocks := createLoaderAndMocks()
	mocks.combiner.On("Combine", mock.Anything).Panic("rebot crashed")

	// When
	assert.Panics(t, func() {
		_, _, _ = loader.Load([]string{outputA, outputB}, false, "")
	})

	// Then
	assertStagedDirRemoved(t, mocks.combiner)
}

// Helpers

func createLoaderAndMocks() (Loader, testingMocks) {
	logger := &recordingLogger{Logger: log.NewLogger()}
	combiner := new(mocks.Combiner)
	stager := artifact.NewStager(logger, pathutil.NewPathProvider(), pathutil.NewPathChecker())
	loader := NewLoader(logger, model.NewOutputXMLParser(logger), combiner, stager, []string{"--removekeywords", "passed"})

	return loader, testingMocks{
		logger:   logger,
		combiner: combiner,
	}
}

func modeIs(mode rebot.Mode) interface{} {
	return mock.MatchedBy(func(params rebot.Params) bool {
		return params.Mode == mode
	})
}

func writeDestination(t *testing.T, source string) func(mock.Arguments) {
	return func(args mock.Arguments) {
		params := args.Get(0).(rebot.Params)
		content, err := os.ReadFile(source)
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(params.Destination, content, 0600))
	}
}

func assertStagedDirRemoved(t *testing.T, combiner *mocks.Combiner) {
	require.NotEmpty(t, combiner.Calls)
	for _, call := range combiner.Calls {
		params := call.Arguments.Get(0).(rebot.Params)
		_, err := os.Stat(filepath.Dir(params.Destination))
		assert.True(t, os.IsNotExist(err), "staged dir should be removed: %s", params.Destination)
	}
}
