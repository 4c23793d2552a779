package output

import (
	"fmt"
	"path/filepath"

	"github.com/bitrise-io/bitrise/configs"
	"github.com/bitrise-io/go-utils/v2/env"
	"github.com/bitrise-io/go-utils/v2/fileutil"
	"github.com/bitrise-io/go-utils/v2/log"
	"github.com/bitrise-steplib/steps-robot-framework-results/testaddon"
)

// Exported env vars and files ...
const (
	ReportFileName   = "robot_results.json"
	ReportPathEnvKey = "ROBOT_RESULTS_JSON_PATH"
	ResultEnvKey     = "ROBOT_RESULTS_STATUS"
)

// OutputExporter is the subset of go-steputils' export.Exporter in use.
type OutputExporter interface {
	ExportOutputFile(key, sourcePath, destinationPath string) error
}

// Exporter ...
type Exporter interface {
	ExportReport(deployDir string, report []byte) (string, error)
	ExportTestRunResult(failed bool)
	TestResultDir() string
	ExportTestResults(resultDir, bundleName string)
}

type exporter struct {
	envRepository     env.Repository
	logger            log.Logger
	fileManager       fileutil.FileManager
	outputExporter    OutputExporter
	testAddonExporter testaddon.Exporter
}

// NewExporter ...
func NewExporter(envRepository env.Repository, logger log.Logger, fileManager fileutil.FileManager, outputExporter OutputExporter, testAddonExporter testaddon.Exporter) Exporter {
	return &exporter{
		envRepository:     envRepository,
		logger:            logger,
		fileManager:       fileManager,
		outputExporter:    outputExporter,
		testAddonExporter: testAddonExporter,
	}
}

// ExportReport writes the report into the deploy dir and exposes its path.
func (e exporter) ExportReport(deployDir string, report []byte) (string, error) {
	pth := filepath.Join(deployDir, ReportFileName)
	if err := e.fileManager.Write(pth, string(report), 0600); err != nil {
		return "", fmt.Errorf("failed to write report (%s): %w", pth, err)
	}

	if err := e.outputExporter.ExportOutputFile(ReportPathEnvKey, pth, pth); err != nil {
		e.logger.Warnf("Failed to export: %s: %s", ReportPathEnvKey, err)
	}

	return pth, nil
}

func (e exporter) ExportTestRunResult(failed bool) {
	status := "succeeded"
	if failed {
		status = "failed"
	}
	if err := e.envRepository.Set(ResultEnvKey, status); err != nil {
		e.logger.Warnf("Failed to export: %s: %s", ResultEnvKey, err)
	}
}

// TestResultDir is the test reports addon's per-step directory, empty outside of Bitrise.
func (e exporter) TestResultDir() string {
	return e.envRepository.Get(configs.BitrisePerStepTestResultDirEnvKey)
}

func (e exporter) ExportTestResults(resultDir, bundleName string) {
	addonResultPath := e.TestResultDir()
	if addonResultPath == "" {
		return
	}

	e.logger.Println()
	e.logger.Infof("Exporting test results")

	if err := e.testAddonExporter.CopyAndSaveMetadata(testaddon.AddonCopy{
		SourceTestOutputDir:   resultDir,
		TargetAddonPath:       addonResultPath,
		TargetAddonBundleName: bundleName,
	}); err != nil {
		e.logger.Warnf("Failed to export test results: %s", err)
	}
}
