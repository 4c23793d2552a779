package rebot

import (
	"errors"
	"testing"

	"github.com/bitrise-io/go-utils/v2/command"
	"github.com/bitrise-io/go-utils/v2/log"
	"github.com/bitrise-steplib/steps-robot-framework-results/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type testingMocks struct {
	commandFactory *mocks.Factory
	command        *mocks.Command
}

func TestArgs(t *testing.T) {
	tests := []struct {
		name   string
		params Params
		want   []string
	}{
		{
			name:   "combine",
			params: Params{Outputs: []string{"a.xml", "b.xml"}, Destination: "/tmp/out.xml"},
			want:   []string{"--output", "/tmp/out.xml", "--log", "NONE", "--report", "NONE", "--nostatusrc", "a.xml", "b.xml"},
		},
		{
			name: "merge with name, xunit and extra options",
			params: Params{
				Outputs:           []string{"a.xml", "rerun.xml"},
				Destination:       "/tmp/out.xml",
				Mode:              ModeMerge,
				Name:              "Nightly",
				XUnitPath:         "/tmp/xunit.xml",
				AdditionalOptions: []string{"--removekeywords", "passed"},
			},
			want: []string{
				"--output", "/tmp/out.xml", "--log", "NONE", "--report", "NONE", "--nostatusrc",
				"--merge", "--name", "Nightly", "--xunit", "/tmp/xunit.xml", "--removekeywords", "passed",
				"a.xml", "rerun.xml",
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Args(tt.params))
		})
	}
}

func Test_GivenCustomToolCommand_WhenCombine_ThenPrefixesArguments(t *testing.T) {
	// Given
	params := Params{Outputs: []string{"a.xml", "b.xml"}, Destination: "/tmp/out.xml"}
	expectedArgs := append([]string{"-m", "robot.rebot"}, Args(params)...)
	combiner, mocks := createCombinerAndMocks([]string{"python3", "-m", "robot.rebot"}, "python3", expectedArgs)
	mocks.command.On("RunAndReturnExitCode").Return(0, nil)

	// When
	err := combiner.Combine(params)

	// Then
	require.NoError(t, err)
	mocks.commandFactory.AssertCalled(t, "Create", "python3", expectedArgs, mock.Anything)
}

func Test_GivenFailingRebot_WhenCombine_ThenReturnsExitCodeAndOutput(t *testing.T) {
	// Given
	params := Params{Outputs: []string{"a.xml", "b.xml"}, Destination: "/tmp/out.xml", Mode: ModeMerge}
	combiner, mocks := createCombinerAndMocks(nil, "rebot", Args(params))
	mocks.command.On("RunAndReturnExitCode").Return(252, errors.New("exit status 252")).Run(func(mock.Arguments) {
		opts := mocks.commandFactory.Calls[0].Arguments.Get(2).(*command.Opts)
		_, _ = opts.Stderr.Write([]byte("[ ERROR ] Merged suite 'B' is ignored because it is not found from original result set.\n"))
	})

	// When
	err := combiner.Combine(params)

	// Then
	var commandErr *CommandError
	require.True(t, errors.As(err, &commandErr))
	assert.Equal(t, 252, commandErr.ExitCode)
	assert.Contains(t, commandErr.Output, "Merged suite 'B' is ignored")
}

func Test_GivenMissingRebot_WhenCombine_ThenFails(t *testing.T) {
	// Given
	params := Params{Outputs: []string{"a.xml", "b.xml"}, Destination: "/tmp/out.xml"}
	combiner, mocks := createCombinerAndMocks(nil, "rebot", Args(params))
	mocks.command.On("RunAndReturnExitCode").Return(-1, errors.New(`exec: "rebot": executable file not found in $PATH`))

	// When
	err := combiner.Combine(params)

	// Then
	require.Error(t, err)
	var commandErr *CommandError
	assert.False(t, errors.As(err, &commandErr))
}

func Test_GivenInstalledRebot_WhenCheckInstall_ThenReturnsVersion(t *testing.T) {
	// Given
	combiner, mocks := createCombinerAndMocks(nil, "rebot", []string{"--version"})
	mocks.command.On("RunAndReturnTrimmedCombinedOutput").Return("Rebot 7.0.1 (Python 3.11.6 on linux)", errors.New("exit status 251"))

	// When
	v, err := combiner.CheckInstall()

	// Then
	require.NoError(t, err)
	assert.Equal(t, "7.0.1", v.String())
}

func Test_GivenMissingRebot_WhenCheckInstall_ThenFails(t *testing.T) {
	// Given
	combiner, mocks := createCombinerAndMocks(nil, "rebot", []string{"--version"})
	mocks.command.On("RunAndReturnTrimmedCombinedOutput").Return("", errors.New(`exec: "rebot": executable file not found in $PATH`))

	// When
	v, err := combiner.CheckInstall()

	// Then
	require.Error(t, err)
	assert.Nil(t, v)
}

func TestMode_String(t *testing.T) {
	assert.Equal(t, "merge", ModeMerge.String())
	assert.Equal(t, "combine", ModeCombine.String())
}

// Helpers

func createCombinerAndMocks(toolCommand []string, name string, args []string) (Combiner, testingMocks) {
	cmd := new(mocks.Command)
	cmd.On("PrintableCommandArgs").Return(name)

	commandFactory := new(mocks.Factory)
	commandFactory.On("Create", name, args, mock.Anything).Return(cmd)

	return NewRunner(log.NewLogger(), commandFactory, toolCommand), testingMocks{
		commandFactory: commandFactory,
		command:        cmd,
	}
}

func Test_GivenMergeReportsIgnoredSuite_WhenCombine_ThenFails(t *testing.T) {
	// Given
	params := Params{Outputs: []string{"a.xml", "b.xml"}, Destination: "/tmp/out.xml", Mode: ModeMerge}
	combiner, mocks := createCombinerAndMocks(nil, "rebot", Args(params))
	mocks.command.On("RunAndReturnExitCode").Return(0, nil).Run(func(mock.Arguments) {
		opts := mocks.commandFactory.Calls[0].Arguments.Get(2).(*command.Opts)
		_, _ = opts.Stdout.Write([]byte("[ ERROR ] Merged suite 'B' is ignored because it is not found from original result set.\nOutput:  /tmp/out.xml\n"))
	})

	// When
	err := combiner.Combine(params)

	// Then
	require.EqualError(t, err, "[ ERROR ] Merged suite 'B' is ignored because it is not found from original result set.")
}

func Test_GivenCombineModeWithErrorLines_WhenCombine_ThenSucceeds(t *testing.T) {
	// Given
	params := Params{Outputs: []string{"a.xml", "b.xml"}, Destination: "/tmp/out.xml"}
	combiner, mocks := createCombinerAndMocks(nil, "rebot", Args(params))
	mocks.command.On("RunAndReturnExitCode").Return(0, nil).Run(func(mock.Arguments) {
		opts := mocks.commandFactory.Calls[0].Arguments.Get(2).(*command.Opts)
		_, _ = opts.Stdout.Write([]byte("[ ERROR ] Invalid syntax in keyword 'X'.\n"))
	})

	// When
	err := combiner.Combine(params)

	// Then
	require.NoError(t, err)
}
