package step

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/bitrise-io/go-steputils/v2/stepconf"
	"github.com/bitrise-io/go-utils/v2/log"
	"github.com/bitrise-steplib/steps-robot-framework-results/aggregate"
	"github.com/bitrise-steplib/steps-robot-framework-results/artifact"
	"github.com/bitrise-steplib/steps-robot-framework-results/model"
	"github.com/bitrise-steplib/steps-robot-framework-results/output"
	"github.com/bitrise-steplib/steps-robot-framework-results/rebot"
	"github.com/bitrise-steplib/steps-robot-framework-results/report"
	"github.com/bitrise-steplib/steps-robot-framework-results/traverse"
	"github.com/kballard/go-shellquote"
)

const xunitFileName = "robot_xunit.xml"

// Input ...
type Input struct {
	// Result documents
	OutputPath  string `env:"output_path"`
	OutputPaths string `env:"output_paths"`
	Merge       bool   `env:"merge,opt[yes,no]"`
	SuiteName   string `env:"suite_name"`

	// Report
	Sections             string `env:"sections"`
	IncludeKeywordTiming bool   `env:"include_keyword_timing,opt[yes,no]"`
	MaxSlowestTests      int    `env:"max_slowest_tests,required"`
	MaxSlowestKeywords   int    `env:"max_slowest_keywords,required"`
	Pretty               bool   `env:"pretty,opt[yes,no]"`

	// rebot
	RebotCommand string `env:"rebot_command,required"`
	RebotOptions string `env:"rebot_options"`

	// Debug
	Verbose bool `env:"verbose,opt[yes,no]"`

	// Output export
	DeployDir         string `env:"BITRISE_DEPLOY_DIR"`
	ExportTestResults bool   `env:"export_test_results,opt[yes,no]"`
}

// Config ...
type Config struct {
	Outputs   []string
	Merge     bool
	SuiteName string

	Sections      []report.Section
	TimingOptions aggregate.TimingOptions
	Pretty        bool

	RebotCommand []string
	RebotOptions []string

	DeployDir         string
	ExportTestResults bool
}

// Result ...
type Result struct {
	Report    []byte
	Merged    bool
	Failed    bool
	SuiteName string
}

// ResultLoader ...
type ResultLoader interface {
	Load(outputs []string, preferMerge bool, name string) (*model.Result, bool, error)
}

// ConfigParser ...
type ConfigParser struct {
	inputParser stepconf.InputParser
	logger      log.Logger
}

// NewConfigParser ...
func NewConfigParser(inputParser stepconf.InputParser, logger log.Logger) ConfigParser {
	return ConfigParser{
		inputParser: inputParser,
		logger:      logger,
	}
}

// ProcessConfig ...
func (p ConfigParser) ProcessConfig() (Config, error) {
	var input Input
	if err := p.inputParser.Parse(&input); err != nil {
		return Config{}, NewConfigurationError(err)
	}

	stepconf.Print(input)
	p.logger.Println()

	p.logger.EnableDebugLog(input.Verbose)

	outputs := splitOutputs(input.OutputPath, input.OutputPaths)
	if len(outputs) == 0 {
		return Config{}, NewConfigurationError(errors.New("no output.xml given, set output_path or output_paths"))
	}

	sections, err := report.ParseSections(input.Sections)
	if err != nil {
		return Config{}, NewConfigurationError(err)
	}

	if input.MaxSlowestTests < 0 {
		return Config{}, NewConfigurationError(fmt.Errorf("max_slowest_tests should not be negative: %d", input.MaxSlowestTests))
	}
	if input.MaxSlowestKeywords < 0 {
		return Config{}, NewConfigurationError(fmt.Errorf("max_slowest_keywords should not be negative: %d", input.MaxSlowestKeywords))
	}

	rebotCommand, err := shellquote.Split(input.RebotCommand)
	if err != nil {
		return Config{}, NewConfigurationError(fmt.Errorf("provided rebot_command (%s) is not a valid CLI command: %w", input.RebotCommand, err))
	}
	if len(rebotCommand) == 0 {
		return Config{}, NewConfigurationError(errors.New("rebot_command is empty"))
	}

	rebotOptions, err := shellquote.Split(input.RebotOptions)
	if err != nil {
		return Config{}, NewConfigurationError(fmt.Errorf("provided rebot_options (%s) are not valid CLI parameters: %w", input.RebotOptions, err))
	}

	if len(outputs) == 1 && input.Merge {
		p.logger.Debugf("Single output given, merge has no effect")
	}

	return Config{
		Outputs:   outputs,
		Merge:     input.Merge,
		SuiteName: strings.TrimSpace(input.SuiteName),

		Sections: sections,
		TimingOptions: aggregate.TimingOptions{
			MaxSlowestTests:    input.MaxSlowestTests,
			MaxSlowestKeywords: input.MaxSlowestKeywords,
			IncludeKeywords:    input.IncludeKeywordTiming,
		},
		Pretty: input.Pretty,

		RebotCommand: rebotCommand,
		RebotOptions: rebotOptions,

		DeployDir:         input.DeployDir,
		ExportTestResults: input.ExportTestResults,
	}, nil
}

// splitOutputs keeps the order of output_path followed by output_paths, which may be separated by '|' or new lines.
func splitOutputs(outputPath, outputPaths string) []string {
	var outputs []string
	if pth := strings.TrimSpace(outputPath); pth != "" {
		outputs = append(outputs, pth)
	}

	fields := strings.FieldsFunc(outputPaths, func(r rune) bool {
		return r == '|' || r == '\n'
	})
	for _, field := range fields {
		if pth := strings.TrimSpace(field); pth != "" {
			outputs = append(outputs, pth)
		}
	}
	return outputs
}

// ReportRunner ...
type ReportRunner struct {
	logger         log.Logger
	combiner       rebot.Combiner
	loader         ResultLoader
	stager         artifact.Stager
	outputExporter output.Exporter
	reportWriter   io.Writer
}

// NewReportRunner ...
func NewReportRunner(logger log.Logger, combiner rebot.Combiner, loader ResultLoader, stager artifact.Stager, outputExporter output.Exporter, reportWriter io.Writer) ReportRunner {
	return ReportRunner{
		logger:         logger,
		combiner:       combiner,
		loader:         loader,
		stager:         stager,
		outputExporter: outputExporter,
		reportWriter:   reportWriter,
	}
}

// InstallDeps checks rebot, which is only needed to combine several outputs.
func (r ReportRunner) InstallDeps(cfg Config) error {
	if len(cfg.Outputs) < 2 {
		return nil
	}

	rebotVersion, err := r.combiner.CheckInstall()
	if err != nil {
		return NewLoadFailure(fmt.Errorf("rebot is required to combine %d outputs: %w", len(cfg.Outputs), err))
	}
	r.logger.Printf("- rebot version: %s", rebotVersion)

	return nil
}

// Run loads the outputs and writes the JSON report to the report writer. Nothing is written on failure.
func (r ReportRunner) Run(cfg Config) (Result, error) {
	r.logger.Println()
	r.logger.Infof("Loading %d output(s)", len(cfg.Outputs))

	result, merged, err := r.loader.Load(cfg.Outputs, cfg.Merge, cfg.SuiteName)
	if err != nil {
		return Result{}, NewLoadFailure(err)
	}

	includeSteps := cfg.TimingOptions.IncludeKeywords && containsSection(cfg.Sections, report.SectionTiming)
	aggregator := aggregate.NewAggregator(result, traverse.Walk(result, includeSteps))
	summary := aggregator.Summary()

	doc := report.Assemble(report.Meta{Outputs: cfg.Outputs, Merged: merged}, cfg.Sections, aggregator, cfg.TimingOptions)

	var buf bytes.Buffer
	if err := report.Encode(&buf, doc, cfg.Pretty); err != nil {
		return Result{}, NewLoadFailure(err)
	}
	if _, err := r.reportWriter.Write(buf.Bytes()); err != nil {
		return Result{}, NewLoadFailure(fmt.Errorf("failed to write report: %w", err))
	}

	r.logger.Println()
	r.logger.Printf("%d test(s): %d passed, %d failed, %d skipped", summary.Totals.Total, summary.Totals.Passed, summary.Totals.Failed, summary.Totals.Skipped)

	failed := summary.Totals.Failed > 0 || summary.OverallStatus.IsFailed()
	if failed {
		r.logger.Warnf("Overall status: %s", summary.OverallStatus)
	} else {
		r.logger.Donef("Overall status: %s", summary.OverallStatus)
	}

	suiteName := cfg.SuiteName
	if suiteName == "" && result.Suite != nil {
		suiteName = result.Suite.Name
	}

	return Result{
		Report:    buf.Bytes(),
		Merged:    merged,
		Failed:    failed,
		SuiteName: suiteName,
	}, nil
}

// Export publishes the report as Bitrise outputs, only when running on Bitrise.
func (r ReportRunner) Export(cfg Config, result Result) error {
	if cfg.DeployDir == "" {
		r.logger.Debugf("No deploy dir set, skipping output export")
		return nil
	}

	r.logger.Println()
	r.logger.Infof("Export outputs")

	pth, err := r.outputExporter.ExportReport(cfg.DeployDir, result.Report)
	if err != nil {
		return fmt.Errorf("failed to export report: %w", err)
	}
	r.logger.Donef("The report is available at: %s", pth)

	r.outputExporter.ExportTestRunResult(result.Failed)

	if cfg.ExportTestResults {
		r.exportTestResults(cfg, result)
	}

	return nil
}

func (r ReportRunner) exportTestResults(cfg Config, result Result) {
	if r.outputExporter.TestResultDir() == "" {
		r.logger.Warnf("Test reports addon directory is not available, skipping test result export")
		return
	}

	xunitPath, release, err := r.stager.Stage(xunitFileName)
	if err != nil {
		r.logger.Warnf("Failed to prepare xUnit report: %s", err)
		return
	}
	defer release()

	mode := rebot.ModeCombine
	if result.Merged {
		mode = rebot.ModeMerge
	}

	if err := r.combiner.Combine(rebot.Params{
		Outputs:           cfg.Outputs,
		Destination:       "NONE",
		Mode:              mode,
		Name:              cfg.SuiteName,
		XUnitPath:         xunitPath,
		AdditionalOptions: cfg.RebotOptions,
	}); err != nil {
		r.logger.Warnf("Failed to generate xUnit report: %s", err)
		return
	}

	if size, err := r.stager.Size(xunitPath); err != nil || size == 0 {
		r.logger.Warnf("rebot did not produce an xUnit report")
		return
	}

	r.outputExporter.ExportTestResults(filepath.Dir(xunitPath), result.SuiteName)
}

func containsSection(sections []report.Section, section report.Section) bool {
	for _, s := range sections {
		if s == section {
			return true
		}
	}
	return false
}
