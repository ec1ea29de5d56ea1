package output

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/bitrise-io/bitrise/configs"
	"github.com/bitrise-io/go-steputils/v2/export"
	"github.com/bitrise-io/go-utils/v2/command"
	"github.com/bitrise-io/go-utils/v2/env"
	"github.com/bitrise-io/go-utils/v2/fileutil"
	"github.com/bitrise-io/go-utils/v2/log"
	"github.com/bitrise-io/go-utils/v2/pathutil"
	"github.com/bitrise-steplib/steps-merge-junit-reports/output/mocks"
	"github.com/bitrise-steplib/steps-merge-junit-reports/testaddon"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type testingMocks struct {
	envRepository *mocks.Repository
}

func Test_GivenPassingTests_WhenExportingTestRunResults_ThenSetsEnvVariableToSuccess(t *testing.T) {
	// Given
	exporter, mocks := createSutAndMocks()

	// When
	exporter.ExportTestRunResult(false)

	// Then
	mocks.envRepository.AssertCalled(t, "Set", TestResultEnvKey, "succeeded")
}

func Test_GivenFailedTests_WhenExportingTestRunResults_ThenSetsEnvVariableToFailure(t *testing.T) {
	// Given
	exporter, mocks := createSutAndMocks()

	// When
	exporter.ExportTestRunResult(true)

	// Then
	mocks.envRepository.AssertCalled(t, "Set", TestResultEnvKey, "failed")
}

func Test_GivenNoDeployDir_WhenExportingMergedReport_ThenOnlySetsPathEnvVariable(t *testing.T) {
	// Given
	reportPath := "/results/merged-results.xml"
	exporter, mocks := createSutAndMocks()

	// When
	exporter.ExportMergedReport("", reportPath)

	// Then
	mocks.envRepository.AssertCalled(t, "Set", MergedReportPathEnvKey, reportPath)
	mocks.envRepository.AssertNumberOfCalls(t, "Set", 1)
}

func Test_GivenDeployDir_WhenExportingMergedReport_ThenCopiesReportIntoIt(t *testing.T) {
	// Given
	tempDir := t.TempDir()
	reportPath := filepath.Join(tempDir, "results", "merged-results.xml")
	require.NoError(t, fileutil.NewFileManager().Write(reportPath, "<testsuites/>", 0644))
	deployDir := filepath.Join(tempDir, "deploy")
	require.NoError(t, os.MkdirAll(deployDir, 0755))

	exporter, mocks := createSutAndMocks()

	// When
	exporter.ExportMergedReport(deployDir, reportPath)

	// Then
	mocks.envRepository.AssertCalled(t, "Set", MergedReportPathEnvKey, reportPath)
	deployedReport := filepath.Join(deployDir, "merged-results.xml")
	require.FileExists(t, deployedReport)
	content, err := os.ReadFile(deployedReport)
	require.NoError(t, err)
	assert.Equal(t, "<testsuites/>", string(content))
}

func Test_GivenPerStepTestResultDir_WhenExportingTestAddonResult_ThenCopiesReportWithMetadata(t *testing.T) {
	// Given
	tempDir := t.TempDir()
	reportPath := filepath.Join(tempDir, "results", "merged-results.xml")
	require.NoError(t, fileutil.NewFileManager().Write(reportPath, "<testsuites/>", 0644))
	addonDir := filepath.Join(tempDir, "addon")

	exporter, mocks := createSutAndMocks()
	mocks.envRepository.On("Get", configs.BitrisePerStepTestResultDirEnvKey).Return(addonDir)

	// When
	err := exporter.ExportTestAddonResult(reportPath, "Cypress Tests")

	// Then
	require.NoError(t, err)
	assert.True(t, isPathExists(filepath.Join(addonDir, "Cypress Tests", "merged-results.xml")))
	assert.True(t, isPathExists(filepath.Join(addonDir, "Cypress Tests", "test-info.json")))
}

func Test_GivenNoPerStepTestResultDir_WhenExportingTestAddonResult_ThenSkips(t *testing.T) {
	// Given
	exporter, mocks := createSutAndMocks()
	mocks.envRepository.On("Get", configs.BitrisePerStepTestResultDirEnvKey).Return("")

	// When
	err := exporter.ExportTestAddonResult("/results/merged-results.xml", "Cypress Tests")

	// Then
	assert.NoError(t, err)
	mocks.envRepository.AssertCalled(t, "Get", configs.BitrisePerStepTestResultDirEnvKey)
}

// Helpers

func createSutAndMocks() (Exporter, testingMocks) {
	envRepository := new(mocks.Repository)
	envRepository.On("Set", mock.Anything, mock.Anything).Return(nil)

	logger := log.NewLogger()
	cmdFactory := command.NewFactory(env.NewRepository())
	fileManager := fileutil.NewFileManager()
	testAddon := testaddon.NewTestAddon(logger, cmdFactory, fileManager)
	exporter := NewExporter(envRepository, logger, export.NewExporter(cmdFactory, fileManager), testaddon.NewExporter(testAddon))

	return exporter, testingMocks{
		envRepository: envRepository,
	}
}

func isPathExists(path string) bool {
	isExist, _ := pathutil.NewPathChecker().IsPathExists(path)
	return isExist
}
