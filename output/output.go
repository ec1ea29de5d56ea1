package output

import (
	"path/filepath"

	"github.com/bitrise-io/bitrise/configs"
	"github.com/bitrise-io/go-steputils/v2/export"
	"github.com/bitrise-io/go-utils/v2/env"
	"github.com/bitrise-io/go-utils/v2/log"
	"github.com/bitrise-steplib/steps-merge-junit-reports/testaddon"
)

// Exported outputs
const (
	MergedReportPathEnvKey       = "MERGED_JUNIT_REPORT_PATH"
	MergedReportDeployPathEnvKey = "MERGED_JUNIT_REPORT_DEPLOY_PATH"
	TestResultEnvKey             = "MERGED_JUNIT_TEST_RESULT"
)

// Exporter ...
type Exporter interface {
	ExportTestRunResult(failed bool)
	ExportMergedReport(deployDir, reportPath string)
	ExportTestAddonResult(reportPath, bundleName string) error
}

type exporter struct {
	envRepository     env.Repository
	logger            log.Logger
	outputExporter    export.Exporter
	testAddonExporter testaddon.Exporter
}

// NewExporter ...
func NewExporter(envRepository env.Repository, logger log.Logger, outputExporter export.Exporter, testAddonExporter testaddon.Exporter) Exporter {
	return &exporter{
		envRepository:     envRepository,
		logger:            logger,
		outputExporter:    outputExporter,
		testAddonExporter: testAddonExporter,
	}
}

func (e exporter) ExportTestRunResult(failed bool) {
	status := "succeeded"
	if failed {
		status = "failed"
	}
	if err := e.envRepository.Set(TestResultEnvKey, status); err != nil {
		e.logger.Warnf("Failed to export: %s: %s", TestResultEnvKey, err)
	}
}

func (e exporter) ExportMergedReport(deployDir, reportPath string) {
	if err := e.envRepository.Set(MergedReportPathEnvKey, reportPath); err != nil {
		e.logger.Warnf("Failed to export: %s: %s", MergedReportPathEnvKey, err)
	}

	if deployDir == "" {
		return
	}

	deployPth := filepath.Join(deployDir, filepath.Base(reportPath))
	if err := e.outputExporter.ExportOutputFile(MergedReportDeployPathEnvKey, reportPath, deployPth); err != nil {
		e.logger.Warnf("Failed to export: %s: %s", MergedReportDeployPathEnvKey, err)
	}
}

// ExportTestAddonResult copies the merged report to the per-step test result dir, when the build has one.
func (e exporter) ExportTestAddonResult(reportPath, bundleName string) error {
	addonResultPath := e.envRepository.Get(configs.BitrisePerStepTestResultDirEnvKey)
	if addonResultPath == "" {
		e.logger.Debugf("%s is not set, skipping test result export", configs.BitrisePerStepTestResultDirEnvKey)
		return nil
	}

	e.logger.Println()
	e.logger.Infof("Exporting test results")

	return e.testAddonExporter.CopyAndSaveMetadata(testaddon.AddonCopy{
		SourceReportPath:      reportPath,
		TargetAddonPath:       addonResultPath,
		TargetAddonBundleName: bundleName,
	})
}
