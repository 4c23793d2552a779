package rebot

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/bitrise-io/go-utils/errorutil"
	"github.com/bitrise-io/go-utils/v2/command"
	"github.com/bitrise-io/go-utils/v2/log"
	"github.com/hashicorp/go-version"
)

// DefaultCommand ...
const DefaultCommand = "rebot"

const errorLinePrefix = "[ ERROR ]"

var versionPattern = regexp.MustCompile(`(?:Rebot|Robot)\s+(\d\S*)`)

// Mode selects how several result documents are combined.
type Mode int

const (
	// ModeCombine places every input suite under a new synthetic root suite.
	ModeCombine Mode = iota
	// ModeMerge reconciles inputs sharing the same root suite, e.g. a run and its re-run.
	ModeMerge
)

func (m Mode) String() string {
	if m == ModeMerge {
		return "merge"
	}
	return "combine"
}

// Params ...
type Params struct {
	Outputs     []string
	Destination string
	Mode        Mode
	// Name overrides the top level suite name.
	Name string
	// XUnitPath additionally writes an xUnit compatible report when set.
	XUnitPath         string
	AdditionalOptions []string
}

// Combiner ...
type Combiner interface {
	CheckInstall() (*version.Version, error)
	Combine(params Params) error
}

// CommandError is returned when rebot exits with a non-zero status.
type CommandError struct {
	ExitCode int
	Output   string
}

func (e *CommandError) Error() string {
	if e.ExitCode == 0 {
		return e.Output
	}
	if e.Output == "" {
		return fmt.Sprintf("rebot exited with status %d", e.ExitCode)
	}
	return fmt.Sprintf("rebot exited with status %d: %s", e.ExitCode, e.Output)
}

type runner struct {
	logger         log.Logger
	commandFactory command.Factory
	toolCommand    []string
}

// NewRunner returns a Combiner executing toolCommand (e.g. ["python3", "-m", "robot.rebot"]).
func NewRunner(logger log.Logger, commandFactory command.Factory, toolCommand []string) Combiner {
	if len(toolCommand) == 0 {
		toolCommand = []string{DefaultCommand}
	}
	return &runner{
		logger:         logger,
		commandFactory: commandFactory,
		toolCommand:    toolCommand,
	}
}

func (r *runner) CheckInstall() (*version.Version, error) {
	r.logger.Println()
	r.logger.Infof("Checking rebot version")

	versionCmd := r.create([]string{"--version"}, nil)

	// rebot --version exits with 251 after printing the version
	out, err := versionCmd.RunAndReturnTrimmedCombinedOutput()
	if v := parseVersion(out); v != nil {
		r.logger.Printf("%s", out)
		return v, nil
	}
	if err != nil {
		if errorutil.IsExitStatusError(err) {
			return nil, fmt.Errorf("rebot version command failed: %w, output: %s", err, out)
		}

		return nil, fmt.Errorf("failed to run rebot command: %w", err)
	}

	return nil, fmt.Errorf("unexpected rebot version output: %s", out)
}

func (r *runner) Combine(params Params) error {
	var out bytes.Buffer
	cmd := r.create(Args(params), &command.Opts{
		Stdout: &out,
		Stderr: &out,
	})

	r.logger.TPrintf("$ %s", cmd.PrintableCommandArgs())

	exitCode, err := cmd.RunAndReturnExitCode()
	output := strings.TrimSpace(out.String())
	if exitCode > 0 || (err != nil && errorutil.IsExitStatusError(err)) {
		return &CommandError{ExitCode: exitCode, Output: output}
	}
	if err != nil {
		return fmt.Errorf("failed to run rebot: %w", err)
	}

	// rebot --merge only logs suites it could not merge, the exit status stays 0
	if params.Mode == ModeMerge {
		if line := firstErrorLine(output); line != "" {
			return &CommandError{ExitCode: exitCode, Output: line}
		}
	}

	if output != "" {
		r.logger.Debugf("%s", output)
	}
	return nil
}

func firstErrorLine(output string) string {
	for _, line := range strings.Split(output, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), errorLinePrefix) {
			return strings.TrimSpace(line)
		}
	}
	return ""
}

func (r *runner) create(args []string, opts *command.Opts) command.Command {
	name := r.toolCommand[0]
	fullArgs := append(append([]string{}, r.toolCommand[1:]...), args...)
	return r.commandFactory.Create(name, fullArgs, opts)
}

// Args builds the rebot arguments. Test failures never change the exit status thanks to --nostatusrc.
func Args(params Params) []string {
	args := []string{
		"--output", params.Destination,
		"--log", "NONE",
		"--report", "NONE",
		"--nostatusrc",
	}
	if params.Mode == ModeMerge {
		args = append(args, "--merge")
	}
	if params.Name != "" {
		args = append(args, "--name", params.Name)
	}
	if params.XUnitPath != "" {
		args = append(args, "--xunit", params.XUnitPath)
	}
	args = append(args, params.AdditionalOptions...)
	args = append(args, params.Outputs...)
	return args
}

func parseVersion(out string) *version.Version {
	match := versionPattern.FindStringSubmatch(out)
	if len(match) != 2 {
		return nil
	}
	v, err := version.NewVersion(match[1])
	if err != nil {
		return nil
	}
	return v
}
