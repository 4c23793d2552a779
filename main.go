package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/bitrise-io/go-steputils/v2/export"
	"github.com/bitrise-io/go-steputils/v2/stepconf"
	"github.com/bitrise-io/go-steputils/v2/stepenv"
	"github.com/bitrise-io/go-utils/v2/command"
	"github.com/bitrise-io/go-utils/v2/env"
	"github.com/bitrise-io/go-utils/v2/fileutil"
	"github.com/bitrise-io/go-utils/v2/log"
	"github.com/bitrise-io/go-utils/v2/pathutil"
	"github.com/bitrise-steplib/steps-robot-framework-results/artifact"
	"github.com/bitrise-steplib/steps-robot-framework-results/exitcodes"
	"github.com/bitrise-steplib/steps-robot-framework-results/flags"
	"github.com/bitrise-steplib/steps-robot-framework-results/loader"
	"github.com/bitrise-steplib/steps-robot-framework-results/model"
	"github.com/bitrise-steplib/steps-robot-framework-results/output"
	"github.com/bitrise-steplib/steps-robot-framework-results/rebot"
	"github.com/bitrise-steplib/steps-robot-framework-results/step"
	"github.com/bitrise-steplib/steps-robot-framework-results/testaddon"
	"github.com/urfave/cli/v2"
)

func main() {
	// stdout only carries the report, everything else goes to stderr
	reportOut := os.Stdout
	os.Stdout = os.Stderr

	logger := log.NewLogger()

	app := cli.NewApp()
	app.Name = "robot-results"
	app.Usage = "Summarize Robot Framework output.xml files as JSON"
	app.Flags = flags.Flags
	app.Writer = os.Stderr
	app.ErrWriter = os.Stderr
	app.Action = func(ctx *cli.Context) error {
		return run(ctx, logger, reportOut)
	}
	app.OnUsageError = func(ctx *cli.Context, err error, isSubcommand bool) error {
		return step.NewConfigurationError(err)
	}
	app.ExitErrHandler = func(ctx *cli.Context, err error) {
		if err == nil {
			return
		}
		logger.Errorf("%s", err)
		cli.HandleExitCoder(cli.Exit("", exitCode(err)))
	}

	if err := app.Run(flags.ExpandArgs(os.Args)); err != nil {
		os.Exit(exitCode(err))
	}
}

func exitCode(err error) int {
	switch {
	case err == nil:
		return exitcodes.Success
	case step.IsConfigurationError(err):
		return exitcodes.ConfigError
	default:
		return exitcodes.Failure
	}
}

// checkArgs rejects positional arguments, every input is given by a flag or an env var.
func checkArgs(ctx *cli.Context) error {
	if ctx.NArg() > 0 {
		return step.NewConfigurationError(fmt.Errorf("unexpected arguments: %s", strings.Join(ctx.Args().Slice(), " ")))
	}
	return nil
}

func run(ctx *cli.Context, logger log.Logger, reportOut io.Writer) error {
	if err := checkArgs(ctx); err != nil {
		return err
	}

	osEnvRepository := env.NewRepository()
	envRepository := flags.NewRepository(ctx, stepenv.NewRepository(osEnvRepository))
	inputParser := stepconf.NewInputParser(envRepository)

	configParser := step.NewConfigParser(inputParser, logger)
	config, err := configParser.ProcessConfig()
	if err != nil {
		return err
	}

	commandFactory := command.NewFactory(osEnvRepository)
	fileManager := fileutil.NewFileManager()
	stager := artifact.NewStager(logger, pathutil.NewPathProvider(), pathutil.NewPathChecker())
	combiner := rebot.NewRunner(logger, commandFactory, config.RebotCommand)
	resultLoader := loader.NewLoader(logger, model.NewOutputXMLParser(logger), combiner, stager, config.RebotOptions)

	outputExporter := export.NewExporter(commandFactory, fileManager)
	testAddonExporter := testaddon.NewExporter(testaddon.NewTestAddon(logger, commandFactory, fileManager))
	exporter := output.NewExporter(envRepository, logger, fileManager, &outputExporter, testAddonExporter)

	runner := step.NewReportRunner(logger, combiner, resultLoader, stager, exporter, reportOut)

	if err := runner.InstallDeps(config); err != nil {
		return err
	}

	result, err := runner.Run(config)
	if err != nil {
		return err
	}

	return runner.Export(config, result)
}
