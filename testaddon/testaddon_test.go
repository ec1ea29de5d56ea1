package testaddon

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/bitrise-io/go-utils/v2/command"
	"github.com/bitrise-io/go-utils/v2/env"
	"github.com/bitrise-io/go-utils/v2/fileutil"
	"github.com/bitrise-io/go-utils/v2/log"
	"github.com/bitrise-io/go-utils/v2/pathutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const reportContent = `<testsuites name="Mocha Tests" tests="0" time="0.000" failures="0"></testsuites>`

func Test_GivenNormalBundleName_WhenExport_ThenCreatesOutputStructure(t *testing.T) {
	runTest(t, "Cypress Tests", "Cypress Tests")
}

func Test_GivenBundleNameWithSpecialCharacters_WhenExport_ThenReplacesSpecialCharacters(t *testing.T) {
	runTest(t, "W/eir/d:Na::me/", "W-eir-d-Na--me-")
}

func Test_GivenMissingReport_WhenExport_ThenFails(t *testing.T) {
	// Given
	tempDir := t.TempDir()
	exporter := NewExporter(newTestAddon())

	// When
	err := exporter.CopyAndSaveMetadata(AddonCopy{
		SourceReportPath:      filepath.Join(tempDir, "missing.xml"),
		TargetAddonPath:       filepath.Join(tempDir, "output"),
		TargetAddonBundleName: "Cypress Tests",
	})

	// Then
	assert.Error(t, err)
}

func runTest(t *testing.T, bundleName string, expectedBundleName string) {
	// Given
	reportPath, outputDir := prepareArtifacts(t)

	exporter := NewExporter(newTestAddon())

	// When
	err := exporter.CopyAndSaveMetadata(AddonCopy{
		SourceReportPath:      reportPath,
		TargetAddonPath:       outputDir,
		TargetAddonBundleName: bundleName,
	})

	// Then
	assert.NoError(t, err)
	assert.True(t, isOutputStructureCorrectWithExpectedBundleName(outputDir, expectedBundleName))

	copied, err := os.ReadFile(filepath.Join(outputDir, expectedBundleName, "merged-results.xml"))
	require.NoError(t, err)
	assert.Equal(t, reportContent, string(copied))
}

func newTestAddon() TestAddon {
	return NewTestAddon(log.NewLogger(), command.NewFactory(env.NewRepository()), fileutil.NewFileManager())
}

func prepareArtifacts(t *testing.T) (string, string) {
	tempDir := t.TempDir()

	reportPath := filepath.Join(tempDir, "results", "merged-results.xml")
	err := fileutil.NewFileManager().Write(reportPath, reportContent, 0644)
	require.NoError(t, err)
	require.FileExists(t, reportPath)

	outputDir := filepath.Join(tempDir, "output")

	return reportPath, outputDir
}

func isOutputStructureCorrectWithExpectedBundleName(outputDir string, bundleName string) bool {
	jsonPath := filepath.Join(outputDir, bundleName, "test-info.json")
	expectedPaths := []string{
		filepath.Join(outputDir, bundleName),
		filepath.Join(outputDir, bundleName, "merged-results.xml"),
		jsonPath,
	}

	for _, path := range expectedPaths {
		if !isPathExists(path) {
			return false
		}
	}

	return exportedBundleNameFromFile(jsonPath) == bundleName
}

func exportedBundleNameFromFile(path string) string {
	type testBundle struct {
		BundleName string `json:"test-name"`
	}

	jsonFile, _ := os.Open(path)

	defer jsonFile.Close()

	bytes, _ := io.ReadAll(jsonFile)

	var bundle testBundle
	_ = json.Unmarshal(bytes, &bundle)

	return bundle.BundleName
}

func isPathExists(path string) bool {
	isExist, _ := pathutil.NewPathChecker().IsPathExists(path)
	return isExist
}
