package testaddon

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bitrise-io/go-utils/errorutil"
	"github.com/bitrise-io/go-utils/v2/command"
	"github.com/bitrise-io/go-utils/v2/fileutil"
	"github.com/bitrise-io/go-utils/v2/log"
)

const metadataFileName = "test-info.json"

// TestAddon ...
type TestAddon interface {
	ReplaceUnsupportedFilenameCharacters(s string) string
	CopyReport(reportPath string, targetDir string) error
	SaveBundleMetadata(outputDir string, bundleName string) error
}

type testAddon struct {
	logger      log.Logger
	cmdFactory  command.Factory
	fileManager fileutil.FileManager
}

// NewTestAddon ...
func NewTestAddon(logger log.Logger, cmdFactory command.Factory, fileManager fileutil.FileManager) TestAddon {
	return &testAddon{
		logger:      logger,
		cmdFactory:  cmdFactory,
		fileManager: fileManager,
	}
}

// ReplaceUnsupportedFilenameCharacters replaces '/' and ':', which are not allowed in bundle directory names.
func (t testAddon) ReplaceUnsupportedFilenameCharacters(s string) string {
	s = strings.ReplaceAll(s, "/", "-")
	s = strings.ReplaceAll(s, ":", "-")
	return s
}

func (t testAddon) CopyReport(reportPath string, targetDir string) error {
	if err := os.MkdirAll(targetDir, 0700); err != nil {
		return fmt.Errorf("failed to create directory (%s): %w", targetDir, err)
	}

	// -p keeps the modification time of the merged report
	cmd := t.cmdFactory.Create("cp", []string{"-p", reportPath, targetDir + "/"}, nil)
	t.logger.Donef("$ %s", cmd.PrintableCommandArgs())
	if out, err := cmd.RunAndReturnTrimmedCombinedOutput(); err != nil {
		if errorutil.IsExitStatusError(err) {
			return fmt.Errorf("copy failed: %w, output: %s", err, out)
		}

		return fmt.Errorf("failed to run copy command: %w", err)
	}

	return nil
}

func (t testAddon) SaveBundleMetadata(outputDir string, bundleName string) error {
	type testBundle struct {
		BundleName string `json:"test-name"`
	}
	bytes, err := json.Marshal(testBundle{
		BundleName: bundleName,
	})
	if err != nil {
		return fmt.Errorf("could not encode metadata: %w", err)
	}
	if err := t.fileManager.Write(filepath.Join(outputDir, metadataFileName), string(bytes), 0600); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}
